package analytics

import (
	"testing"

	"ops-dashboard/internal/models"
)

func engineer(id int, name string, total int, npt ...int) models.Engineer {
	e := models.Engineer{ID: id, Name: name, TotalHours: total}
	for _, h := range npt {
		e.NonProjectTime = append(e.NonProjectTime, models.NonProjectTime{Type: "Meetings", Hours: h})
	}
	return e
}

func TestCurrentCapacity_ActiveTask(t *testing.T) {
	s := State{
		Engineers: []models.Engineer{engineer(1, "Mike Rodriguez", 40, 8, 3)},
		Projects: []models.Project{
			{ID: 1, Status: models.StatusOnTrack, Tasks: []models.Task{{EngineerID: 1, HoursPerWeek: 15}}},
			{ID: 2, Status: models.StatusPlanned, Tasks: []models.Task{{EngineerID: 1, HoursPerWeek: 20}}},
			{ID: 3, Status: models.StatusCompleted, Tasks: []models.Task{{EngineerID: 1, HoursPerWeek: 5}}},
		},
	}

	got := CurrentCapacity(s).Engineers[0]

	if got.NonProject != 11 {
		t.Errorf("NonProject = %d, want 11", got.NonProject)
	}
	if got.Project != 15 {
		t.Errorf("Project = %d, want 15", got.Project)
	}
	if got.Available != 14 {
		t.Errorf("Available = %d, want 14", got.Available)
	}
	if got.Utilization != 65 {
		t.Errorf("Utilization = %d, want 65", got.Utilization)
	}
}

func TestCurrentCapacity_ZeroHoursAndOverbooking(t *testing.T) {
	s := State{
		Engineers: []models.Engineer{
			engineer(1, "Intern", 0),
			engineer(2, "Sarah Chen", 20, 5),
		},
		Projects: []models.Project{
			{Status: models.StatusBehind, Tasks: []models.Task{{EngineerID: 1, HoursPerWeek: 4}, {EngineerID: 2, HoursPerWeek: 25}}},
		},
	}

	report := CurrentCapacity(s)

	if u := report.Engineers[0].Utilization; u != 0 {
		t.Errorf("zero-hour engineer utilization = %d, want 0", u)
	}
	over := report.Engineers[1]
	if over.Available != -10 {
		t.Errorf("Available = %d, want -10", over.Available)
	}
	if over.Utilization != 150 {
		t.Errorf("Utilization = %d, want 150", over.Utilization)
	}
}

func TestCurrentCapacity_LegacyTaskMatchesByName(t *testing.T) {
	s := State{
		Engineers: []models.Engineer{engineer(7, "Tom Williams", 40)},
		Projects: []models.Project{
			{Status: models.StatusAtRisk, Tasks: []models.Task{{Engineer: "Tom Williams", HoursPerWeek: 12}}},
		},
	}
	if got := CurrentCapacity(s).Engineers[0].Project; got != 12 {
		t.Errorf("Project = %d, want 12", got)
	}
}

func TestCapacity_TeamUtilization(t *testing.T) {
	s := State{
		Engineers: []models.Engineer{engineer(1, "A", 40, 8, 3), engineer(2, "B", 20)},
		Projects: []models.Project{
			{Status: models.StatusOnTrack, Tasks: []models.Task{{EngineerID: 1, HoursPerWeek: 15}}},
		},
	}
	team := CurrentCapacity(s).Team
	if team.TotalHours != 60 || team.Available != 34 {
		t.Errorf("team = %+v", team)
	}
	if team.Utilization != 43 {
		t.Errorf("team Utilization = %d, want 43", team.Utilization)
	}

	if u := CurrentCapacity(State{}).Team.Utilization; u != 0 {
		t.Errorf("empty team utilization = %d, want 0", u)
	}
}

func TestCapacity_WindowedByDates(t *testing.T) {
	s := State{
		Engineers: []models.Engineer{engineer(1, "Jessica Park", 40)},
		Projects: []models.Project{
			{
				Status:    models.StatusPlanned,
				StartDate: models.MustParseDate("2025-01-01"),
				EndDate:   models.MustParseDate("2025-03-31"),
				Tasks:     []models.Task{{EngineerID: 1, HoursPerWeek: 10}},
				Milestones: []models.Milestone{{
					StartDate:   models.MustParseDate("2025-04-01"),
					EndDate:     models.MustParseDate("2025-04-30"),
					Assignments: []models.Assignment{{EngineerID: 1, HoursPerWeek: 5}},
				}},
			},
			{Status: models.StatusOnTrack, Tasks: []models.Task{{EngineerID: 1, HoursPerWeek: 30}}},
		},
	}

	tests := []struct {
		name       string
		start, end string
		want       int
	}{
		{"inside project", "2025-02-01", "2025-02-28", 10},
		{"milestone only", "2025-04-01", "2025-04-30", 5},
		{"both", "2025-03-31", "2025-04-01", 15},
		{"after everything", "2025-05-01", "2025-05-31", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Range{Start: models.MustParseDate(tt.start), End: models.MustParseDate(tt.end)}
			if got := Capacity(s, r).Engineers[0].Project; got != tt.want {
				t.Errorf("Project = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCapacitySeries_Months(t *testing.T) {
	s := State{
		Engineers: []models.Engineer{engineer(1, "Mike Rodriguez", 40, 8)},
		Projects: []models.Project{{
			StartDate: models.MustParseDate("2025-01-15"),
			EndDate:   models.MustParseDate("2025-02-10"),
			Tasks:     []models.Task{{EngineerID: 1, HoursPerWeek: 10}},
		}},
	}
	r := Range{Start: models.MustParseDate("2025-01-01"), End: models.MustParseDate("2025-03-31")}

	report := CapacitySeries(s, Months(r))

	wantProject := []int{10, 10, 0}
	points := report.Engineers[0].Points
	if len(points) != len(wantProject) {
		t.Fatalf("len(points) = %d, want %d", len(points), len(wantProject))
	}
	for i, w := range wantProject {
		if points[i].Project != w {
			t.Errorf("%s Project = %d, want %d", points[i].Period, points[i].Project, w)
		}
	}
	if report.Team[0].Utilization != 45 {
		t.Errorf("team Jan utilization = %d, want 45", report.Team[0].Utilization)
	}
	if report.Team[2].Utilization != 20 {
		t.Errorf("team Mar utilization = %d, want 20", report.Team[2].Utilization)
	}
}
