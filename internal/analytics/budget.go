package analytics

import (
	"sort"

	"ops-dashboard/internal/models"
)

type BudgetTotals struct {
	Budget    float64 `json:"budget"`
	Spent     float64 `json:"spent"`
	Remaining float64 `json:"remaining"`
	SpentPct  int     `json:"spentPct"`
}

func ProjectBudget(p models.Project) BudgetTotals {
	return totals(p.Budget, p.Spent)
}

func totals(budget, spent float64) BudgetTotals {
	return BudgetTotals{
		Budget:    budget,
		Spent:     spent,
		Remaining: budget - spent,
		SpentPct:  percent(spent, budget),
	}
}

// YearAllocation is the part of a project's budget attributed to year.
// Explicit yearly budgets win; otherwise the budget is split evenly over the
// calendar years the schedule touches.
func YearAllocation(p models.Project, year int) float64 {
	if len(p.YearlyBudgets) > 0 {
		var sum float64
		for _, yb := range p.YearlyBudgets {
			if yb.Year == year {
				sum += yb.Amount
			}
		}
		return sum
	}
	if !p.HasSpan() {
		return 0
	}
	first, last := p.StartDate.Year(), p.EndDate.Year()
	if year < first || year > last {
		return 0
	}
	return p.Budget / float64(last-first+1)
}

// allocationYears lists the years YearAllocation can be non-zero for.
func allocationYears(p models.Project) []int {
	if len(p.YearlyBudgets) > 0 {
		seen := map[int]bool{}
		years := make([]int, 0, len(p.YearlyBudgets))
		for _, yb := range p.YearlyBudgets {
			if !seen[yb.Year] {
				seen[yb.Year] = true
				years = append(years, yb.Year)
			}
		}
		return years
	}
	if !p.HasSpan() {
		return nil
	}
	var years []int
	for y := p.StartDate.Year(); y <= p.EndDate.Year(); y++ {
		years = append(years, y)
	}
	return years
}

type YearBudget struct {
	Year      int     `json:"year"`
	Budget    float64 `json:"budget"`
	Spent     float64 `json:"spent"`
	Remaining float64 `json:"remaining"`
}

type CategoryTotal struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

type ProjectBudgetRow struct {
	ProjectID int    `json:"projectId"`
	Name      string `json:"name"`
	BudgetTotals
	Allocation float64 `json:"allocation,omitempty"`
}

type BudgetReport struct {
	Year       int                `json:"year,omitempty"`
	Totals     BudgetTotals       `json:"totals"`
	Years      []YearBudget       `json:"years"`
	Categories []CategoryTotal    `json:"categories"`
	Projects   []ProjectBudgetRow `json:"projects"`
}

// BudgetSummary aggregates budgets and expenses. A non-zero year restricts
// the year rows and the category totals to that year.
func BudgetSummary(projects []models.Project, year int) BudgetReport {
	report := BudgetReport{
		Year:       year,
		Years:      []YearBudget{},
		Categories: []CategoryTotal{},
		Projects:   make([]ProjectBudgetRow, 0, len(projects)),
	}

	var budget, spent float64
	byYear := map[int]*YearBudget{}
	row := func(y int) *YearBudget {
		yb, ok := byYear[y]
		if !ok {
			yb = &YearBudget{Year: y}
			byYear[y] = yb
		}
		return yb
	}
	byCategory := map[string]float64{}

	for _, p := range projects {
		budget += p.Budget
		spent += p.Spent

		pr := ProjectBudgetRow{ProjectID: p.ID, Name: p.Name, BudgetTotals: ProjectBudget(p)}
		if year != 0 {
			pr.Allocation = YearAllocation(p, year)
		}
		report.Projects = append(report.Projects, pr)

		for _, y := range allocationYears(p) {
			if year != 0 && y != year {
				continue
			}
			row(y).Budget += YearAllocation(p, y)
		}
		for _, e := range p.Expenses {
			if e.Date.IsZero() {
				continue
			}
			y := e.Date.Year()
			if year != 0 && y != year {
				continue
			}
			row(y).Spent += e.Amount
			byCategory[e.Category] += e.Amount
		}
	}

	report.Totals = totals(budget, spent)

	for _, yb := range byYear {
		yb.Remaining = yb.Budget - yb.Spent
		report.Years = append(report.Years, *yb)
	}
	sort.Slice(report.Years, func(i, j int) bool { return report.Years[i].Year < report.Years[j].Year })

	for c, amount := range byCategory {
		report.Categories = append(report.Categories, CategoryTotal{Category: c, Amount: amount})
	}
	sort.Slice(report.Categories, func(i, j int) bool {
		a, b := report.Categories[i], report.Categories[j]
		if a.Amount != b.Amount {
			return a.Amount > b.Amount
		}
		return a.Category < b.Category
	})
	return report
}
