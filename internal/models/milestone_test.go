package models

import (
	"errors"
	"testing"
)

func TestMilestoneStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to MilestoneStatus
		want     bool
	}{
		{MilestonePending, MilestoneAtRisk, true},
		{MilestonePending, MilestoneCompleted, true},
		{MilestoneAtRisk, MilestoneCompleted, true},
		{MilestoneAtRisk, MilestoneAtRisk, true},
		{MilestoneCompleted, MilestoneCompleted, true},
		{MilestoneAtRisk, MilestonePending, false},
		{MilestoneCompleted, MilestonePending, false},
		{MilestoneCompleted, MilestoneAtRisk, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestMilestonePatch_CompletingStampsToday(t *testing.T) {
	today := MustParseDate("2025-05-02")
	m := Milestone{Name: "FAT", PlannedDate: MustParseDate("2025-04-30"), Status: MilestonePending}
	completed := MilestoneCompleted

	changes, err := MilestonePatch{Status: &completed}.Apply(&m, today)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if m.Status != MilestoneCompleted {
		t.Errorf("Status = %s, want completed", m.Status)
	}
	if !m.ActualDate.Equal(today.Time) {
		t.Errorf("ActualDate = %s, want %s", m.ActualDate, today)
	}
	if len(changes) != 2 {
		t.Fatalf("len(changes) = %d, want 2", len(changes))
	}
	if changes[0].Field != `Milestone "FAT" Actual Date` {
		t.Errorf("changes[0].Field = %q", changes[0].Field)
	}
	if changes[1].Field != `Milestone "FAT" Status` || changes[1].NewValue != "completed" {
		t.Errorf("changes[1] = %+v", changes[1])
	}
}

func TestMilestonePatch_CompletingKeepsRequestedDate(t *testing.T) {
	m := Milestone{Name: "SAT", PlannedDate: MustParseDate("2025-04-30"), Status: MilestoneAtRisk}
	completed := MilestoneCompleted
	actual := MustParseDate("2025-04-28")

	if _, err := (MilestonePatch{Status: &completed, ActualDate: &actual}).Apply(&m, MustParseDate("2025-05-10")); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if m.ActualDate.String() != "2025-04-28" {
		t.Errorf("ActualDate = %s, want 2025-04-28", m.ActualDate)
	}
}

func TestMilestonePatch_RejectsInvalidTransition(t *testing.T) {
	m := Milestone{Name: "Go live", PlannedDate: MustParseDate("2025-01-10"), Status: MilestoneCompleted, ActualDate: MustParseDate("2025-01-09")}
	pending := MilestonePending

	_, err := MilestonePatch{Status: &pending}.Apply(&m, MustParseDate("2025-02-01"))
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
	if m.Status != MilestoneCompleted || m.ActualDate.String() != "2025-01-09" {
		t.Errorf("milestone mutated on rejected transition: %+v", m)
	}
}

func TestMilestonePatch_ActualDateIgnoredUnlessCompleted(t *testing.T) {
	m := Milestone{Name: "Kickoff", PlannedDate: MustParseDate("2025-01-10"), Status: MilestonePending}
	actual := MustParseDate("2025-01-11")

	changes, err := MilestonePatch{ActualDate: &actual}.Apply(&m, MustParseDate("2025-01-12"))
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !m.ActualDate.IsZero() {
		t.Errorf("ActualDate = %s, want unset", m.ActualDate)
	}
	if len(changes) != 0 {
		t.Errorf("changes = %+v, want none", changes)
	}
}

func TestChainRanges(t *testing.T) {
	start := MustParseDate("2025-01-01")
	in := []Milestone{
		{ID: 2, PlannedDate: MustParseDate("2025-03-01")},
		{ID: 1, PlannedDate: MustParseDate("2025-02-01")},
		{ID: 3, PlannedDate: MustParseDate("2025-04-15")},
	}

	out := ChainRanges(start, in)

	want := []struct {
		id         int
		start, end string
	}{
		{1, "2025-01-01", "2025-02-01"},
		{2, "2025-02-01", "2025-03-01"},
		{3, "2025-03-01", "2025-04-15"},
	}
	for i, w := range want {
		if out[i].ID != w.id || out[i].StartDate.String() != w.start || out[i].EndDate.String() != w.end {
			t.Errorf("out[%d] = {%d %s %s}, want %+v", i, out[i].ID, out[i].StartDate, out[i].EndDate, w)
		}
	}
	if !in[0].StartDate.IsZero() {
		t.Error("ChainRanges modified its input")
	}
}

func TestChainRanges_NoProjectStart(t *testing.T) {
	in := []Milestone{{ID: 1, PlannedDate: MustParseDate("2025-02-01")}}
	out := ChainRanges(Date{}, in)
	if !out[0].StartDate.IsZero() {
		t.Errorf("StartDate = %s, want unset", out[0].StartDate)
	}
}
