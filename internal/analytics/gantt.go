package analytics

import (
	"sort"

	"ops-dashboard/internal/models"
)

type GanttBar struct {
	ProjectID int             `json:"projectId"`
	Name      string          `json:"name"`
	Owner     string          `json:"owner"`
	Priority  models.Priority `json:"priority"`
	Status    models.Status   `json:"status"`
	Progress  int             `json:"progress"`
	StartDate models.Date     `json:"startDate"`
	EndDate   models.Date     `json:"endDate"`

	// Week geometry relative to the range start.
	StartWeek      int `json:"startWeek"`
	EndWeek        int `json:"endWeek"`
	DurationWeeks  int `json:"durationWeeks"`
	CompletedWeeks int `json:"completedWeeks"`
	RemainingWeeks int `json:"remainingWeeks"`

	// Time-scale geometry: the visible bar and where its completed part ends.
	From        models.Date `json:"from"`
	To          models.Date `json:"to"`
	CompletedTo models.Date `json:"completedTo"`
}

type MonthTick struct {
	Week  int    `json:"week"`
	Label string `json:"label"`
}

type MilestoneMarker struct {
	ProjectID     int                    `json:"projectId"`
	ProjectName   string                 `json:"projectName"`
	MilestoneID   int                    `json:"milestoneId"`
	MilestoneName string                 `json:"milestoneName"`
	Week          int                    `json:"week"`
	PlannedDate   models.Date            `json:"plannedDate"`
	ActualDate    models.Date            `json:"actualDate"`
	Status        models.MilestoneStatus `json:"status"`
}

type Gantt struct {
	Start      models.Date       `json:"start"`
	End        models.Date       `json:"end"`
	TotalWeeks int               `json:"totalWeeks"`
	MonthTicks []MonthTick       `json:"monthTicks"`
	Bars       []GanttBar        `json:"bars"`
	Markers    []MilestoneMarker `json:"markers"`
}

// BuildGantt lays out every project whose schedule overlaps r.
func BuildGantt(projects []models.Project, r Range) Gantt {
	g := Gantt{
		Start:      r.Start,
		End:        r.End,
		TotalWeeks: ceilDiv(r.Days(), 7),
		Bars:       []GanttBar{},
		Markers:    []MilestoneMarker{},
	}
	for _, m := range Months(r) {
		g.MonthTicks = append(g.MonthTicks, MonthTick{
			Week:  weekOffset(r.Start, m.Start),
			Label: m.Start.Format("Jan 06"),
		})
	}

	for _, p := range projects {
		if !r.Overlaps(p.StartDate, p.EndDate) {
			continue
		}
		g.Bars = append(g.Bars, ganttBar(p, r))
		for _, m := range p.Milestones {
			if !r.Contains(m.PlannedDate) {
				continue
			}
			g.Markers = append(g.Markers, MilestoneMarker{
				ProjectID:     p.ID,
				ProjectName:   p.Name,
				MilestoneID:   m.ID,
				MilestoneName: m.Name,
				Week:          weekOffset(r.Start, m.PlannedDate),
				PlannedDate:   m.PlannedDate,
				ActualDate:    m.ActualDate,
				Status:        m.Status,
			})
		}
	}

	sort.SliceStable(g.Bars, func(i, j int) bool {
		a, b := g.Bars[i], g.Bars[j]
		if !a.StartDate.Equal(b.StartDate.Time) {
			return a.StartDate.Before(b.StartDate.Time)
		}
		return a.Name < b.Name
	})
	sort.SliceStable(g.Markers, func(i, j int) bool {
		return g.Markers[i].PlannedDate.Before(g.Markers[j].PlannedDate.Time)
	})
	return g
}

func ganttBar(p models.Project, r Range) GanttBar {
	from := maxDate(p.StartDate, r.Start)
	to := minDate(p.EndDate, r.End)

	startWeek := weekOffset(r.Start, from)
	endWeek := weekOffset(r.Start, to)
	duration := endWeek - startWeek

	totalProjectWeeks := floorDiv(p.StartDate.DaysUntil(p.EndDate), 7)
	completedWeeks := totalProjectWeeks * p.Progress / 100
	hidden := floorDiv(p.StartDate.DaysUntil(r.Start), 7)
	visible := min(completedWeeks, max(0, completedWeeks-hidden))
	completed := min(visible, duration)

	projectDays := p.StartDate.DaysUntil(p.EndDate)
	completedTo := p.StartDate.AddDays(round(float64(projectDays) * float64(p.Progress) / 100))
	completedTo = minDate(maxDate(completedTo, from), to)

	return GanttBar{
		ProjectID:      p.ID,
		Name:           p.Name,
		Owner:          p.Owner,
		Priority:       p.Priority,
		Status:         p.Status,
		Progress:       p.Progress,
		StartDate:      p.StartDate,
		EndDate:        p.EndDate,
		StartWeek:      startWeek,
		EndWeek:        endWeek,
		DurationWeeks:  duration,
		CompletedWeeks: completed,
		RemainingWeeks: duration - completed,
		From:           from,
		To:             to,
		CompletedTo:    completedTo,
	}
}

func weekOffset(origin, d models.Date) int {
	return floorDiv(origin.DaysUntil(d), 7)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func ceilDiv(a, b int) int {
	return -floorDiv(-a, b)
}

func maxDate(a, b models.Date) models.Date {
	if a.After(b.Time) {
		return a
	}
	return b
}

func minDate(a, b models.Date) models.Date {
	if a.Before(b.Time) {
		return a
	}
	return b
}
