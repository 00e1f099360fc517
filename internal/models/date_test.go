package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDate_JSON(t *testing.T) {
	type holder struct {
		Start Date `json:"start"`
		End   Date `json:"end"`
	}

	data, err := json.Marshal(holder{Start: NewDate(2025, time.March, 4)})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if got, want := string(data), `{"start":"2025-03-04","end":null}`; got != want {
		t.Errorf("Marshal = %s, want %s", got, want)
	}

	var decoded holder
	if err := json.Unmarshal([]byte(`{"start":"2024-12-31","end":null}`), &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !decoded.Start.Equal(NewDate(2024, time.December, 31).Time) {
		t.Errorf("Start = %v, want 2024-12-31", decoded.Start)
	}
	if !decoded.End.IsZero() {
		t.Errorf("End = %v, want zero", decoded.End)
	}
}

func TestDate_UnmarshalRejectsBadInput(t *testing.T) {
	tests := []string{`"2025/01/01"`, `"yesterday"`, `20250101`}
	for _, input := range tests {
		var d Date
		if err := json.Unmarshal([]byte(input), &d); err == nil {
			t.Errorf("Unmarshal(%s) succeeded, want error", input)
		}
	}
}

func TestParseDate_EmptyIsZero(t *testing.T) {
	d, err := ParseDate("")
	if err != nil {
		t.Fatalf("ParseDate(\"\") error: %v", err)
	}
	if !d.IsZero() {
		t.Errorf("ParseDate(\"\") = %v, want zero", d)
	}
	if d.Ptr() != nil {
		t.Error("Ptr() of zero date should be nil")
	}
}

func TestDate_DaysUntil(t *testing.T) {
	from := MustParseDate("2026-12-21")
	tests := []struct {
		to   string
		want int
	}{
		{"2027-01-20", 30},
		{"2026-12-21", 0},
		{"2026-12-20", -1},
	}
	for _, tt := range tests {
		if got := from.DaysUntil(MustParseDate(tt.to)); got != tt.want {
			t.Errorf("DaysUntil(%s) = %d, want %d", tt.to, got, tt.want)
		}
	}
}

func TestDateOf_TruncatesToDay(t *testing.T) {
	d := DateOf(time.Date(2025, 6, 30, 23, 59, 0, 0, time.UTC))
	if d.String() != "2025-06-30" {
		t.Errorf("DateOf = %s, want 2025-06-30", d)
	}
	if d.Hour() != 0 || d.Minute() != 0 {
		t.Errorf("DateOf kept a time of day: %v", d.Time)
	}
}
