package analytics

import (
	"fmt"
	"strconv"
	"time"

	"ops-dashboard/internal/models"
)

const (
	RangeAll    = "all"
	RangeCustom = "custom"
	RangeMonth  = "month"
	RangeWeek   = "week"

	GranularityMonth = "month"
	GranularityWeek  = "week"
)

// Range is an inclusive span of calendar days.
type Range struct {
	Start models.Date `json:"start"`
	End   models.Date `json:"end"`
}

func (r Range) Contains(d models.Date) bool {
	return !d.IsZero() && !d.Before(r.Start.Time) && !d.After(r.End.Time)
}

// Overlaps reports whether [start, end] shares at least one day with r.
func (r Range) Overlaps(start, end models.Date) bool {
	if start.IsZero() || end.IsZero() {
		return false
	}
	return !start.After(r.End.Time) && !end.Before(r.Start.Time)
}

// Days is the number of calendar days in r.
func (r Range) Days() int {
	return r.Start.DaysUntil(r.End) + 1
}

// AllRange spans Jan 1 of last year through Dec 31 four years out.
func AllRange(now time.Time) Range {
	y := now.Year()
	return Range{
		Start: models.NewDate(y-1, time.January, 1),
		End:   models.NewDate(y+4, time.December, 31),
	}
}

func YearRange(year int) Range {
	return Range{
		Start: models.NewDate(year, time.January, 1),
		End:   models.NewDate(year, time.December, 31),
	}
}

// ParseRange resolves the range selector of the dashboard views.
func ParseRange(kind, start, end string, now time.Time) (Range, error) {
	today := models.DateOf(now)
	switch kind {
	case "", RangeAll:
		return AllRange(now), nil
	case RangeMonth:
		first := models.NewDate(today.Year(), today.Month(), 1)
		return Range{Start: first, End: models.Date{Time: first.AddDate(0, 1, -1)}}, nil
	case RangeWeek:
		monday := today.AddDays(-weekdayIndex(today))
		return Range{Start: monday, End: monday.AddDays(6)}, nil
	case RangeCustom:
		s, err := models.ParseDate(start)
		if err != nil {
			return Range{}, models.ValidationErrors{{Field: "start", Message: err.Error()}}
		}
		e, err := models.ParseDate(end)
		if err != nil {
			return Range{}, models.ValidationErrors{{Field: "end", Message: err.Error()}}
		}
		if s.IsZero() || e.IsZero() {
			return Range{}, models.ValidationErrors{{Field: "range", Message: "custom range needs start and end"}}
		}
		if e.Before(s.Time) {
			return Range{}, models.ValidationErrors{{Field: "end", Message: "end must not be before start"}}
		}
		return Range{Start: s, End: e}, nil
	}
	if len(kind) == 4 {
		if year, err := strconv.Atoi(kind); err == nil {
			return YearRange(year), nil
		}
	}
	return Range{}, models.ValidationErrors{{Field: "range", Message: fmt.Sprintf("unknown range %q", kind)}}
}

// Period is one bucket of a time series.
type Period struct {
	Key   string      `json:"key"`
	Start models.Date `json:"start"`
	End   models.Date `json:"end"`
}

// Months splits r into calendar months keyed YYYY-MM, clipped to r.
func Months(r Range) []Period {
	var out []Period
	cur := models.NewDate(r.Start.Year(), r.Start.Month(), 1)
	for !cur.After(r.End.Time) {
		next := models.Date{Time: cur.AddDate(0, 1, 0)}
		p := Period{Key: cur.Format("2006-01"), Start: cur, End: next.AddDays(-1)}
		if p.Start.Before(r.Start.Time) {
			p.Start = r.Start
		}
		if p.End.After(r.End.Time) {
			p.End = r.End
		}
		out = append(out, p)
		cur = next
	}
	return out
}

// Weeks splits r into Monday..Sunday weeks keyed by ISO week, clipped to r.
func Weeks(r Range) []Period {
	var out []Period
	cur := r.Start.AddDays(-weekdayIndex(r.Start))
	for !cur.After(r.End.Time) {
		year, week := cur.ISOWeek()
		p := Period{Key: fmt.Sprintf("%04d-W%02d", year, week), Start: cur, End: cur.AddDays(6)}
		if p.Start.Before(r.Start.Time) {
			p.Start = r.Start
		}
		if p.End.After(r.End.Time) {
			p.End = r.End
		}
		out = append(out, p)
		cur = cur.AddDays(7)
	}
	return out
}

func Periods(granularity string, r Range) ([]Period, error) {
	switch granularity {
	case "", GranularityMonth:
		return Months(r), nil
	case GranularityWeek:
		return Weeks(r), nil
	}
	return nil, models.ValidationErrors{{Field: "granularity", Message: "granularity must be month or week"}}
}

// weekdayIndex counts days since Monday.
func weekdayIndex(d models.Date) int {
	return (int(d.Weekday()) + 6) % 7
}
