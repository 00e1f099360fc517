package analytics

import "ops-dashboard/internal/models"

// EngineerCapacity is an engineer's weekly hour balance. Available may go
// negative and Utilization past 100 when the engineer is overbooked.
type EngineerCapacity struct {
	EngineerID  int    `json:"engineerId"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	TotalHours  int    `json:"totalHours"`
	NonProject  int    `json:"nonProject"`
	Project     int    `json:"project"`
	Available   int    `json:"available"`
	Utilization int    `json:"utilization"`
}

type TeamCapacity struct {
	TotalHours  int `json:"totalHours"`
	NonProject  int `json:"nonProject"`
	Project     int `json:"project"`
	Available   int `json:"available"`
	Utilization int `json:"utilization"`
}

type CapacityReport struct {
	Range     *Range             `json:"range,omitempty"`
	Engineers []EngineerCapacity `json:"engineers"`
	Team      TeamCapacity       `json:"team"`
}

// Capacity books task hours of projects whose schedule overlaps r and
// assignment hours of milestones whose working range overlaps r.
func Capacity(s State, r Range) CapacityReport {
	hours := bookedHours(s.Projects,
		func(p models.Project) bool { return r.Overlaps(p.StartDate, p.EndDate) },
		func(m models.Milestone) bool { return r.Overlaps(m.StartDate, m.EndDate) },
	)
	report := capacityReport(s.Engineers, hours)
	report.Range = &r
	return report
}

// CurrentCapacity books task hours of every project in an active status,
// regardless of its dates.
func CurrentCapacity(s State) CapacityReport {
	hours := bookedHours(s.Projects,
		func(p models.Project) bool { return p.Status.Active() },
		nil,
	)
	return capacityReport(s.Engineers, hours)
}

func capacityReport(engineers []models.Engineer, hours bookings) CapacityReport {
	report := CapacityReport{Engineers: make([]EngineerCapacity, 0, len(engineers))}
	for _, e := range engineers {
		c := engineerCapacity(e, hours.of(e))
		report.Engineers = append(report.Engineers, c)
		report.Team.add(c)
	}
	report.Team.finish()
	return report
}

func engineerCapacity(e models.Engineer, project int) EngineerCapacity {
	nonProject := e.NonProjectHours()
	available := e.TotalHours - nonProject - project
	return EngineerCapacity{
		EngineerID:  e.ID,
		Name:        e.Name,
		Role:        e.Role,
		TotalHours:  e.TotalHours,
		NonProject:  nonProject,
		Project:     project,
		Available:   available,
		Utilization: percent(float64(e.TotalHours-available), float64(e.TotalHours)),
	}
}

func (t *TeamCapacity) add(c EngineerCapacity) {
	t.TotalHours += c.TotalHours
	t.NonProject += c.NonProject
	t.Project += c.Project
	t.Available += c.Available
}

func (t *TeamCapacity) finish() {
	t.Utilization = percent(float64(t.NonProject+t.Project), float64(t.TotalHours))
}

// bookings holds weekly hours per engineer id, with a by-name side table for
// legacy tasks that only carry the engineer's name.
type bookings struct {
	byID   map[int]int
	byName map[string]int
}

func (b bookings) of(e models.Engineer) int {
	return b.byID[e.ID] + b.byName[e.Name]
}

func bookedHours(projects []models.Project, project func(models.Project) bool, milestone func(models.Milestone) bool) bookings {
	b := bookings{byID: map[int]int{}, byName: map[string]int{}}
	for _, p := range projects {
		if project != nil && project(p) {
			for _, t := range p.Tasks {
				if t.EngineerID > 0 {
					b.byID[t.EngineerID] += t.HoursPerWeek
				} else {
					b.byName[t.Engineer] += t.HoursPerWeek
				}
			}
		}
		if milestone == nil {
			continue
		}
		for _, m := range p.Milestones {
			if !milestone(m) {
				continue
			}
			for _, a := range m.Assignments {
				b.byID[a.EngineerID] += a.HoursPerWeek
			}
		}
	}
	return b
}

type CapacityPoint struct {
	Period      string `json:"period"`
	TotalHours  int    `json:"totalHours"`
	NonProject  int    `json:"nonProject"`
	Project     int    `json:"project"`
	Available   int    `json:"available"`
	Utilization int    `json:"utilization"`
}

type EngineerSeries struct {
	EngineerID int             `json:"engineerId"`
	Name       string          `json:"name"`
	Points     []CapacityPoint `json:"points"`
}

type CapacitySeriesReport struct {
	Periods   []Period         `json:"periods"`
	Engineers []EngineerSeries `json:"engineers"`
	Team      []CapacityPoint  `json:"team"`
}

// CapacitySeries evaluates Capacity once per period.
func CapacitySeries(s State, periods []Period) CapacitySeriesReport {
	report := CapacitySeriesReport{
		Periods:   periods,
		Engineers: make([]EngineerSeries, len(s.Engineers)),
		Team:      make([]CapacityPoint, 0, len(periods)),
	}
	for i, e := range s.Engineers {
		report.Engineers[i] = EngineerSeries{EngineerID: e.ID, Name: e.Name, Points: make([]CapacityPoint, 0, len(periods))}
	}
	for _, period := range periods {
		snap := Capacity(s, Range{Start: period.Start, End: period.End})
		for i, c := range snap.Engineers {
			report.Engineers[i].Points = append(report.Engineers[i].Points, CapacityPoint{
				Period:      period.Key,
				TotalHours:  c.TotalHours,
				NonProject:  c.NonProject,
				Project:     c.Project,
				Available:   c.Available,
				Utilization: c.Utilization,
			})
		}
		report.Team = append(report.Team, CapacityPoint{
			Period:      period.Key,
			TotalHours:  snap.Team.TotalHours,
			NonProject:  snap.Team.NonProject,
			Project:     snap.Team.Project,
			Available:   snap.Team.Available,
			Utilization: snap.Team.Utilization,
		})
	}
	return report
}
