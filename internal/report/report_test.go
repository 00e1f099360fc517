package report

import (
	"context"
	"errors"
	"testing"

	"ops-dashboard/internal/analytics"
	"ops-dashboard/internal/models"
)

func sampleBudget() analytics.BudgetReport {
	return analytics.BudgetReport{
		Totals: analytics.BudgetTotals{Budget: 125000, Spent: 81250, Remaining: 43750, SpentPct: 65},
		Years:  []analytics.YearBudget{{Year: 2025, Budget: 125000, Spent: 81250, Remaining: 43750}},
		Categories: []analytics.CategoryTotal{
			{Category: "Equipment", Amount: 60000},
			{Category: "Labor", Amount: 21250},
		},
		Projects: []analytics.ProjectBudgetRow{{
			ProjectID:    1,
			Name:         "Line 3 Retrofit",
			BudgetTotals: analytics.BudgetTotals{Budget: 125000, Spent: 81250, Remaining: 43750, SpentPct: 65},
		}},
	}
}

func sampleCapacity() analytics.CapacityReport {
	return analytics.CapacityReport{
		Engineers: []analytics.EngineerCapacity{{
			EngineerID: 1, Name: "Mike Rodriguez", Role: "Senior Operations Engineer",
			TotalHours: 40, NonProject: 11, Project: 15, Available: 14, Utilization: 65,
		}},
		Team: analytics.TeamCapacity{TotalHours: 40, NonProject: 11, Project: 15, Available: 14, Utilization: 65},
	}
}

func TestWorkbookLayout(t *testing.T) {
	f, err := Workbook(sampleBudget(), sampleCapacity())
	if err != nil {
		t.Fatalf("Workbook: %v", err)
	}

	want := []string{sheetProjects, sheetYears, sheetCategories, sheetCapacity}
	got := f.GetSheetList()
	if len(got) != len(want) {
		t.Fatalf("sheets = %v, want %v", got, want)
	}

	tests := []struct {
		sheet, cell, want string
	}{
		{sheetProjects, "A1", "Project"},
		{sheetProjects, "A2", "Line 3 Retrofit"},
		{sheetProjects, "D2", "43750"},
		{sheetProjects, "A3", "Total"},
		{sheetCategories, "A2", "Equipment"},
		{sheetCapacity, "G2", "65"},
		{sheetCapacity, "A3", "Team"},
	}
	for _, tt := range tests {
		v, err := f.GetCellValue(tt.sheet, tt.cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s!%s): %v", tt.sheet, tt.cell, err)
		}
		if v != tt.want {
			t.Errorf("%s!%s = %q, want %q", tt.sheet, tt.cell, v, tt.want)
		}
	}
}

func TestRenderOpens(t *testing.T) {
	f, err := Workbook(sampleBudget(), sampleCapacity())
	if err != nil {
		t.Fatalf("Workbook: %v", err)
	}
	data, err := Render(f)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty workbook")
	}
}

type fakePutter struct {
	bucket, object string
	size           int
	err            error
}

func (p *fakePutter) PutObject(_ context.Context, bucket, object string, data []byte, _ string) (int64, error) {
	if p.err != nil {
		return 0, p.err
	}
	p.bucket, p.object, p.size = bucket, object, len(data)
	return int64(len(data)), nil
}

func TestS3Archiver(t *testing.T) {
	putter := &fakePutter{}
	a := &S3Archiver{client: putter, bucket: "reports"}

	resp, err := a.Archive(context.Background(), "budget/2025.xlsx", []byte("xlsx"))
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if resp.Bucket != "reports" || resp.Key != "budget/2025.xlsx" || resp.Size != 4 {
		t.Errorf("unexpected response %+v", resp)
	}
	if putter.object != "budget/2025.xlsx" {
		t.Errorf("object = %q", putter.object)
	}

	putter.err = errors.New("boom")
	if _, err := a.Archive(context.Background(), "k", nil); err == nil {
		t.Error("expected upload error")
	}
}

func TestNewArchiverWithoutBucket(t *testing.T) {
	a, err := NewArchiver(ArchiveConfig{Endpoint: "s3.local"})
	if err != nil {
		t.Fatalf("NewArchiver: %v", err)
	}
	if _, err := a.Archive(context.Background(), "k", nil); !errors.Is(err, models.ErrNotConfigured) {
		t.Errorf("got %v, want ErrNotConfigured", err)
	}
}
