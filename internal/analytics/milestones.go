package analytics

import (
	"sort"
	"time"

	"ops-dashboard/internal/models"
)

type MilestoneRow struct {
	models.Milestone
	ProjectID   int    `json:"projectId"`
	ProjectName string `json:"projectName"`
	Overdue     bool   `json:"overdue"`
}

type CumulativePoint struct {
	Period  string `json:"period"`
	Planned int    `json:"planned"`
	Actual  int    `json:"actual"`
}

type MilestoneReport struct {
	Total          int               `json:"total"`
	Completed      int               `json:"completed"`
	AtRisk         int               `json:"atRisk"`
	Pending        int               `json:"pending"`
	Overdue        int               `json:"overdue"`
	CompletionRate int               `json:"completionRate"`
	Variance       int               `json:"variance"`
	Milestones     []MilestoneRow    `json:"milestones"`
	Cumulative     []CumulativePoint `json:"cumulative"`
}

// MilestoneSummary reports on the milestones planned inside r. Variance is
// completed minus the number already due, so a negative value means behind.
func MilestoneSummary(projects []models.Project, r Range, now time.Time) MilestoneReport {
	today := models.DateOf(now)
	report := MilestoneReport{Milestones: []MilestoneRow{}}

	due := 0
	for _, p := range projects {
		for _, m := range p.Milestones {
			if !r.Contains(m.PlannedDate) {
				continue
			}
			row := MilestoneRow{
				Milestone:   m,
				ProjectID:   p.ID,
				ProjectName: p.Name,
				Overdue:     m.Status != models.MilestoneCompleted && m.PlannedDate.Before(today.Time),
			}
			report.Milestones = append(report.Milestones, row)

			switch m.Status {
			case models.MilestoneCompleted:
				report.Completed++
			case models.MilestoneAtRisk:
				report.AtRisk++
			default:
				report.Pending++
			}
			if row.Overdue {
				report.Overdue++
			}
			if !m.PlannedDate.After(today.Time) {
				due++
			}
		}
	}

	sort.SliceStable(report.Milestones, func(i, j int) bool {
		return report.Milestones[i].PlannedDate.Before(report.Milestones[j].PlannedDate.Time)
	})

	report.Total = len(report.Milestones)
	report.CompletionRate = percent(float64(report.Completed), float64(report.Total))
	report.Variance = report.Completed - due
	report.Cumulative = cumulative(report.Milestones, Months(r))
	return report
}

func cumulative(rows []MilestoneRow, months []Period) []CumulativePoint {
	out := make([]CumulativePoint, 0, len(months))
	for _, month := range months {
		point := CumulativePoint{Period: month.Key}
		for _, row := range rows {
			if !row.PlannedDate.After(month.End.Time) {
				point.Planned++
			}
			if !row.ActualDate.IsZero() && !row.ActualDate.After(month.End.Time) {
				point.Actual++
			}
		}
		out = append(out, point)
	}
	return out
}
