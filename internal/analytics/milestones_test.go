package analytics

import (
	"testing"
	"time"

	"ops-dashboard/internal/models"
)

func TestMilestoneSummary(t *testing.T) {
	now := time.Date(2025, time.June, 15, 9, 30, 0, 0, time.UTC)
	projects := []models.Project{
		{
			ID:   1,
			Name: "FAT Protocol Development",
			Milestones: []models.Milestone{
				{ID: 3, Name: "Release", PlannedDate: models.MustParseDate("2025-09-01"), Status: models.MilestoneAtRisk},
				{ID: 1, Name: "Draft", PlannedDate: models.MustParseDate("2025-03-01"), ActualDate: models.MustParseDate("2025-03-05"), Status: models.MilestoneCompleted},
			},
		},
		{
			ID:   2,
			Name: "Quality System Upgrade",
			Milestones: []models.Milestone{
				{ID: 2, Name: "Audit", PlannedDate: models.MustParseDate("2025-05-01"), Status: models.MilestonePending},
				{ID: 4, Name: "Last year", PlannedDate: models.MustParseDate("2024-12-01"), Status: models.MilestonePending},
			},
		},
	}

	report := MilestoneSummary(projects, YearRange(2025), now)

	if report.Total != 3 {
		t.Fatalf("Total = %d, want 3", report.Total)
	}
	if report.Completed != 1 || report.AtRisk != 1 || report.Pending != 1 {
		t.Errorf("counts = %d/%d/%d, want 1/1/1", report.Completed, report.AtRisk, report.Pending)
	}
	if report.CompletionRate != 33 {
		t.Errorf("CompletionRate = %d, want 33", report.CompletionRate)
	}
	if report.Variance != -1 {
		t.Errorf("Variance = %d, want -1", report.Variance)
	}
	if report.Overdue != 1 {
		t.Errorf("Overdue = %d, want 1", report.Overdue)
	}

	order := []int{1, 2, 3}
	for i, id := range order {
		if report.Milestones[i].ID != id {
			t.Errorf("Milestones[%d].ID = %d, want %d", i, report.Milestones[i].ID, id)
		}
	}
	if row := report.Milestones[1]; !row.Overdue || row.ProjectName != "Quality System Upgrade" {
		t.Errorf("row = %+v, want overdue Audit row", row)
	}

	if len(report.Cumulative) != 12 {
		t.Fatalf("len(Cumulative) = %d, want 12", len(report.Cumulative))
	}
	want := map[string][2]int{
		"2025-01": {0, 0},
		"2025-03": {1, 1},
		"2025-05": {2, 1},
		"2025-09": {3, 1},
		"2025-12": {3, 1},
	}
	for _, point := range report.Cumulative {
		if w, ok := want[point.Period]; ok && (point.Planned != w[0] || point.Actual != w[1]) {
			t.Errorf("%s = %d/%d, want %d/%d", point.Period, point.Planned, point.Actual, w[0], w[1])
		}
	}
}

func TestMilestoneSummary_CumulativeMonotonic(t *testing.T) {
	var milestones []models.Milestone
	for i, d := range []string{"2025-01-10", "2025-01-20", "2025-04-02", "2025-07-31", "2025-12-31"} {
		m := models.Milestone{ID: i + 1, PlannedDate: models.MustParseDate(d), Status: models.MilestonePending}
		if i%2 == 0 {
			m.Status = models.MilestoneCompleted
			m.ActualDate = m.PlannedDate.AddDays(3)
		}
		milestones = append(milestones, m)
	}
	report := MilestoneSummary([]models.Project{{Milestones: milestones}}, YearRange(2025), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	prev := CumulativePoint{}
	for _, point := range report.Cumulative {
		if point.Planned < prev.Planned || point.Actual < prev.Actual {
			t.Errorf("series decreased at %s: %+v after %+v", point.Period, point, prev)
		}
		prev = point
	}
	if prev.Planned != 5 {
		t.Errorf("final planned = %d, want 5", prev.Planned)
	}
	// The Dec 31 milestone completes on Jan 3 of the next year.
	if prev.Actual != 2 {
		t.Errorf("final actual = %d, want 2", prev.Actual)
	}
}

func TestMilestoneSummary_Empty(t *testing.T) {
	report := MilestoneSummary(nil, YearRange(2025), time.Now())
	if report.Total != 0 || report.CompletionRate != 0 || report.Variance != 0 {
		t.Errorf("report = %+v, want zero counts", report)
	}
	if report.Milestones == nil {
		t.Error("Milestones should be an empty slice, not nil")
	}
}
