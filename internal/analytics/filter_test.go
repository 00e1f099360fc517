package analytics

import (
	"testing"

	"ops-dashboard/internal/models"
)

func filterFixture() []models.Project {
	return []models.Project{
		{ID: 1, Name: "Battery Stacking Automation", Owner: "Mike Rodriguez", Priority: models.PriorityCritical, Status: models.StatusOnTrack,
			Location: models.LocationModuleLine, StartDate: models.MustParseDate("2024-09-01"), EndDate: models.MustParseDate("2025-03-31")},
		{ID: 2, Name: "FAT Protocol Development", Owner: "Sarah Chen", Priority: models.PriorityHigh, Status: models.StatusAtRisk,
			Notes: "Waiting on customer sign-off"},
		{ID: 3, Name: "Quality System Upgrade", Owner: "Sarah Chen", Priority: models.PriorityMedium, Status: models.StatusPlanned,
			YearlyBudgets: []models.YearlyBudget{{Year: 2027, Amount: 1000}}},
	}
}

func ids(projects []models.Project) []int {
	out := make([]int, len(projects))
	for i, p := range projects {
		out[i] = p.ID
	}
	return out
}

func TestFilter_Apply(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []int
	}{
		{"empty", Filter{}, []int{1, 2, 3}},
		{"all keyword", Filter{Owner: "all", Status: "All"}, []int{1, 2, 3}},
		{"owner", Filter{Owner: "Sarah Chen"}, []int{2, 3}},
		{"priority and owner", Filter{Owner: "Sarah Chen", Priority: "High"}, []int{2}},
		{"location", Filter{Location: "Module Line"}, []int{1}},
		{"search notes case-insensitive", Filter{Search: "CUSTOMER"}, []int{2}},
		{"search owner", Filter{Search: "rodri"}, []int{1}},
		{"year by span", Filter{Year: 2024}, []int{1}},
		{"year by yearly budget", Filter{Year: 2027}, []int{3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(tt.filter.Apply(filterFixture()))
			if len(got) != len(tt.want) {
				t.Fatalf("ids = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("ids = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestQuery_Hash(t *testing.T) {
	a := Query{Filter: Filter{Owner: "Sarah Chen", Search: "Audit"}, Range: YearRange(2025)}
	b := Query{Filter: Filter{Owner: "Sarah Chen", Search: "audit"}, Range: YearRange(2025)}
	c := Query{Filter: Filter{Owner: "Sarah Chen"}, Range: YearRange(2025)}

	if a.Hash() != b.Hash() {
		t.Error("search case should not change the hash")
	}
	if a.Hash() == c.Hash() {
		t.Error("different filters hashed equal")
	}
	if key := MemoKey("gantt", 7, a); key != "analytics:gantt:7:"+a.Hash() {
		t.Errorf("MemoKey = %s", key)
	}
}
