package analytics

import (
	"testing"

	"ops-dashboard/internal/models"
)

func TestProjectBudget(t *testing.T) {
	tests := []struct {
		name          string
		budget, spent float64
		remaining     float64
		pct           int
	}{
		{"sample", 125000, 81250, 43750, 65},
		{"over budget", 10000, 12500, -2500, 125},
		{"no budget", 0, 500, -500, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProjectBudget(models.Project{Budget: tt.budget, Spent: tt.spent})
			if got.Remaining != tt.remaining {
				t.Errorf("Remaining = %v, want %v", got.Remaining, tt.remaining)
			}
			if got.SpentPct != tt.pct {
				t.Errorf("SpentPct = %d, want %d", got.SpentPct, tt.pct)
			}
		})
	}
}

func TestYearAllocation(t *testing.T) {
	spanning := models.Project{
		Budget:    300000,
		StartDate: models.MustParseDate("2024-07-01"),
		EndDate:   models.MustParseDate("2026-06-30"),
	}
	explicit := spanning
	explicit.YearlyBudgets = []models.YearlyBudget{{Year: 2025, Amount: 50000}}

	tests := []struct {
		name string
		p    models.Project
		year int
		want float64
	}{
		{"even split first year", spanning, 2024, 100000},
		{"even split last year", spanning, 2026, 100000},
		{"outside span", spanning, 2027, 0},
		{"explicit year", explicit, 2025, 50000},
		{"explicit wins over span", explicit, 2024, 0},
		{"no dates", models.Project{Budget: 1000}, 2025, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := YearAllocation(tt.p, tt.year); got != tt.want {
				t.Errorf("YearAllocation = %v, want %v", got, tt.want)
			}
		})
	}
}

func budgetFixture() []models.Project {
	return []models.Project{
		{
			ID:        1,
			Name:      "Battery Stacking Automation",
			Budget:    100000,
			Spent:     30000,
			StartDate: models.MustParseDate("2025-01-01"),
			EndDate:   models.MustParseDate("2025-12-31"),
			Expenses: []models.Expense{
				{Date: models.MustParseDate("2025-02-01"), Amount: 20000, Category: "Equipment"},
				{Date: models.MustParseDate("2025-03-01"), Amount: 10000, Category: "Labor"},
			},
		},
		{
			ID:            2,
			Name:          "Quality System Upgrade",
			Budget:        50000,
			Spent:         15000,
			YearlyBudgets: []models.YearlyBudget{{Year: 2025, Amount: 20000}, {Year: 2026, Amount: 30000}},
			Expenses: []models.Expense{
				{Date: models.MustParseDate("2024-12-15"), Amount: 5000, Category: "Labor"},
				{Date: models.MustParseDate("2025-06-01"), Amount: 10000, Category: "Equipment"},
			},
		},
	}
}

func TestBudgetSummary_AllYears(t *testing.T) {
	report := BudgetSummary(budgetFixture(), 0)

	if report.Totals.Budget != 150000 || report.Totals.Spent != 45000 || report.Totals.Remaining != 105000 {
		t.Errorf("Totals = %+v", report.Totals)
	}
	if report.Totals.SpentPct != 30 {
		t.Errorf("SpentPct = %d, want 30", report.Totals.SpentPct)
	}

	wantYears := []YearBudget{
		{Year: 2024, Budget: 0, Spent: 5000, Remaining: -5000},
		{Year: 2025, Budget: 120000, Spent: 40000, Remaining: 80000},
		{Year: 2026, Budget: 30000, Spent: 0, Remaining: 30000},
	}
	if len(report.Years) != len(wantYears) {
		t.Fatalf("Years = %+v", report.Years)
	}
	for i, w := range wantYears {
		if report.Years[i] != w {
			t.Errorf("Years[%d] = %+v, want %+v", i, report.Years[i], w)
		}
	}

	wantCats := []CategoryTotal{{"Equipment", 30000}, {"Labor", 15000}}
	for i, w := range wantCats {
		if report.Categories[i] != w {
			t.Errorf("Categories[%d] = %+v, want %+v", i, report.Categories[i], w)
		}
	}
}

func TestBudgetSummary_SingleYear(t *testing.T) {
	report := BudgetSummary(budgetFixture(), 2025)

	if len(report.Years) != 1 || report.Years[0].Year != 2025 {
		t.Fatalf("Years = %+v, want only 2025", report.Years)
	}
	if report.Years[0].Spent != 40000 {
		t.Errorf("2025 spent = %v, want 40000", report.Years[0].Spent)
	}
	if len(report.Categories) != 2 || report.Categories[1] != (CategoryTotal{"Labor", 10000}) {
		t.Errorf("Categories = %+v", report.Categories)
	}
	if report.Projects[1].Allocation != 20000 {
		t.Errorf("Allocation = %v, want 20000", report.Projects[1].Allocation)
	}
}

func TestBudgetSummary_CategoriesAreCaseSensitive(t *testing.T) {
	projects := []models.Project{{
		Expenses: []models.Expense{
			{Date: models.MustParseDate("2025-01-01"), Amount: 100, Category: "travel"},
			{Date: models.MustParseDate("2025-01-02"), Amount: 100, Category: "Travel"},
		},
	}}
	cats := BudgetSummary(projects, 0).Categories
	if len(cats) != 2 {
		t.Fatalf("Categories = %+v, want two rows", cats)
	}
	if cats[0].Category != "Travel" || cats[1].Category != "travel" {
		t.Errorf("order = %s, %s", cats[0].Category, cats[1].Category)
	}
}
