// Package report renders dashboard aggregations as spreadsheets and archives
// them to S3-compatible storage.
package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"ops-dashboard/internal/analytics"
)

const (
	sheetProjects   = "Budget"
	sheetYears      = "Years"
	sheetCategories = "Categories"
	sheetCapacity   = "Capacity"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	projectHeaders  = []string{"Project", "Budget", "Spent", "Remaining", "Spent %", "Year Allocation"}
	yearHeaders     = []string{"Year", "Budget", "Spent", "Remaining"}
	categoryHeaders = []string{"Category", "Amount"}
	capacityHeaders = []string{"Engineer", "Role", "Total Hours", "Non-Project", "Project", "Available", "Utilization %"}
)

// Workbook lays out a budget report and a capacity snapshot on four sheets.
func Workbook(budget analytics.BudgetReport, capacity analytics.CapacityReport) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetProjects); err != nil {
		return nil, err
	}
	for _, name := range []string{sheetYears, sheetCategories, sheetCapacity} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	w := &sheetWriter{f: f, header: header}

	rows := make([][]interface{}, 0, len(budget.Projects)+1)
	for _, p := range budget.Projects {
		rows = append(rows, []interface{}{p.Name, p.Budget, p.Spent, p.Remaining, p.SpentPct, p.Allocation})
	}
	t := budget.Totals
	rows = append(rows, []interface{}{"Total", t.Budget, t.Spent, t.Remaining, t.SpentPct, nil})
	w.table(sheetProjects, projectHeaders, rows)
	last := len(rows) + 1
	w.style(sheetProjects, fmt.Sprintf("A%d", last), fmt.Sprintf("F%d", last), bold)
	w.widths(sheetProjects, []float64{32, 14, 14, 14, 10, 16})

	rows = rows[:0]
	for _, y := range budget.Years {
		rows = append(rows, []interface{}{y.Year, y.Budget, y.Spent, y.Remaining})
	}
	w.table(sheetYears, yearHeaders, rows)
	w.widths(sheetYears, []float64{8, 14, 14, 14})

	rows = rows[:0]
	for _, c := range budget.Categories {
		rows = append(rows, []interface{}{c.Category, c.Amount})
	}
	w.table(sheetCategories, categoryHeaders, rows)
	w.widths(sheetCategories, []float64{20, 14})

	rows = rows[:0]
	for _, e := range capacity.Engineers {
		rows = append(rows, []interface{}{e.Name, e.Role, e.TotalHours, e.NonProject, e.Project, e.Available, e.Utilization})
	}
	team := capacity.Team
	rows = append(rows, []interface{}{"Team", nil, team.TotalHours, team.NonProject, team.Project, team.Available, team.Utilization})
	w.table(sheetCapacity, capacityHeaders, rows)
	last = len(rows) + 1
	w.style(sheetCapacity, fmt.Sprintf("A%d", last), fmt.Sprintf("G%d", last), bold)
	w.widths(sheetCapacity, []float64{24, 28, 12, 12, 10, 10, 14})

	if w.err != nil {
		return nil, w.err
	}
	return f, nil
}

// Render serializes the workbook.
func Render(f *excelize.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("error writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetWriter keeps the first error so the layout code reads top to bottom.
type sheetWriter struct {
	f      *excelize.File
	header int
	err    error
}

func (w *sheetWriter) table(sheet string, headers []string, rows [][]interface{}) {
	if w.err != nil {
		return
	}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			w.err = err
			return
		}
		if err := w.f.SetCellValue(sheet, cell, h); err != nil {
			w.err = err
			return
		}
	}
	w.style(sheet, "A1", mustCell(len(headers), 1), w.header)

	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			w.err = err
			return
		}
		values := row
		if err := w.f.SetSheetRow(sheet, cell, &values); err != nil {
			w.err = err
			return
		}
	}
}

func (w *sheetWriter) style(sheet, from, to string, style int) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetCellStyle(sheet, from, to, style)
}

func (w *sheetWriter) widths(sheet string, widths []float64) {
	for i, width := range widths {
		if w.err != nil {
			return
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			w.err = err
			return
		}
		w.err = w.f.SetColWidth(sheet, col, col, width)
	}
}

func mustCell(col, row int) string {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		panic(err)
	}
	return cell
}
