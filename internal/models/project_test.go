package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestProject_Validate(t *testing.T) {
	valid := Project{
		Name:      "Battery Stacking Automation",
		Priority:  PriorityHigh,
		Status:    StatusOnTrack,
		Progress:  65,
		StartDate: MustParseDate("2024-09-01"),
		EndDate:   MustParseDate("2025-03-31"),
		Budget:    125000,
	}

	tests := []struct {
		name   string
		mutate func(p *Project)
		field  string
	}{
		{"valid", func(p *Project) {}, ""},
		{"missing name", func(p *Project) { p.Name = "  " }, "name"},
		{"progress over 100", func(p *Project) { p.Progress = 101 }, "progress"},
		{"negative progress", func(p *Project) { p.Progress = -1 }, "progress"},
		{"unknown status", func(p *Project) { p.Status = "Paused" }, "status"},
		{"unknown location", func(p *Project) { p.Location = "Cell Line" }, "location"},
		{"end before start", func(p *Project) { p.EndDate = MustParseDate("2024-08-01") }, "endDate"},
		{"bad yearly budget", func(p *Project) { p.YearlyBudgets = []YearlyBudget{{Year: 25, Amount: 10}} }, "yearlyBudgets"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := p.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("Validate() = %v, want ValidationErrors", err)
			}
			if verrs[0].Field != tt.field {
				t.Errorf("field = %q, want %q", verrs[0].Field, tt.field)
			}
		})
	}
}

func TestProject_Defaults(t *testing.T) {
	var p Project
	p.Defaults()
	if p.Priority != PriorityMedium || p.Status != StatusPlanned {
		t.Errorf("Defaults = %s/%s, want Medium/Planned", p.Priority, p.Status)
	}
}

func TestStatus_Active(t *testing.T) {
	for _, s := range []Status{StatusOnTrack, StatusAtRisk, StatusBehind} {
		if !s.Active() {
			t.Errorf("%s should be active", s)
		}
	}
	for _, s := range []Status{StatusPlanned, StatusCompleted, StatusCancelled} {
		if s.Active() {
			t.Errorf("%s should not be active", s)
		}
	}
}

func TestProjectPatch_TracksChanges(t *testing.T) {
	p := Project{Name: "FAT Protocol", Priority: PriorityMedium, Status: StatusPlanned, Progress: 10}
	name := "FAT Protocol Development"
	status := StatusOnTrack
	progress := 20
	start := MustParseDate("2025-01-06")

	changes := ProjectPatch{Name: &name, Status: &status, Progress: &progress, StartDate: &start}.Apply(&p)

	want := []ChangeHistory{
		{Field: "Name", OldValue: "FAT Protocol", NewValue: "FAT Protocol Development"},
		{Field: "Status", OldValue: "Planned", NewValue: "On Track"},
		{Field: "Start Date", OldValue: "", NewValue: "2025-01-06"},
	}
	if len(changes) != len(want) {
		t.Fatalf("len(changes) = %d, want %d: %+v", len(changes), len(want), changes)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Errorf("changes[%d] = %+v, want %+v", i, changes[i], want[i])
		}
	}
	if p.Progress != 20 {
		t.Errorf("Progress = %d, want 20", p.Progress)
	}
}

func TestProjectPatch_DropsZeroYearlyBudgets(t *testing.T) {
	p := Project{Name: "Upgrade", YearlyBudgets: []YearlyBudget{{Year: 2024, Amount: 1}}}
	budgets := []YearlyBudget{{Year: 2025, Amount: 50000}, {Year: 2026, Amount: 0}}

	ProjectPatch{YearlyBudgets: &budgets}.Apply(&p)

	if len(p.YearlyBudgets) != 1 || p.YearlyBudgets[0].Year != 2025 {
		t.Errorf("YearlyBudgets = %+v, want only 2025", p.YearlyBudgets)
	}
}

func intPtr(v int) *int { return &v }

func TestProjectPatch_OwnerIDPresence(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantSet bool
		wantID  *int
	}{
		{name: "absent", body: `{}`},
		{name: "null", body: `{"ownerId":null}`, wantSet: true},
		{name: "value", body: `{"ownerId":7}`, wantSet: true, wantID: intPtr(7)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var patch ProjectPatch
			if err := json.Unmarshal([]byte(tt.body), &patch); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if patch.OwnerID.Set != tt.wantSet {
				t.Errorf("Set = %v, want %v", patch.OwnerID.Set, tt.wantSet)
			}
			if (patch.OwnerID.Value == nil) != (tt.wantID == nil) ||
				(tt.wantID != nil && *patch.OwnerID.Value != *tt.wantID) {
				t.Errorf("Value = %v, want %v", patch.OwnerID.Value, tt.wantID)
			}

			p := Project{OwnerID: intPtr(3)}
			patch.Apply(&p)
			if !tt.wantSet && (p.OwnerID == nil || *p.OwnerID != 3) {
				t.Errorf("absent ownerId changed owner to %v", p.OwnerID)
			}
			if tt.wantSet && tt.wantID == nil && p.OwnerID != nil {
				t.Errorf("null ownerId kept owner %v", *p.OwnerID)
			}
		})
	}

	var patch ProjectPatch
	if err := json.Unmarshal([]byte(`{"ownerId":"seven"}`), &patch); err == nil {
		t.Error("expected a non-numeric ownerId to be rejected")
	}
}

func TestExpensePatch_ReturnsDelta(t *testing.T) {
	e := Expense{Amount: 6250, Description: "Robot cell", Category: "Equipment"}
	amount := 7000.0
	if delta := (ExpensePatch{Amount: &amount}).Apply(&e); delta != 750 {
		t.Errorf("delta = %v, want 750", delta)
	}
	desc := "Robot cell rev B"
	if delta := (ExpensePatch{Description: &desc}).Apply(&e); delta != 0 {
		t.Errorf("delta = %v, want 0", delta)
	}
}

func TestEngineer_Validate(t *testing.T) {
	e := Engineer{Name: "Sarah Chen", TotalHours: 40, NonProjectTime: []NonProjectTime{{Type: "", Hours: -2}}}
	var verrs ValidationErrors
	if !errors.As(e.Validate(), &verrs) {
		t.Fatal("Validate() should fail for bad non-project time")
	}
	if len(verrs) != 2 {
		t.Errorf("len(errors) = %d, want 2", len(verrs))
	}
}
