package analytics

import (
	"strconv"
	"strings"

	"ops-dashboard/internal/models"
)

// Filter narrows the project list. Empty fields and "all" do not restrict.
type Filter struct {
	Owner    string `json:"owner,omitempty"`
	Priority string `json:"priority,omitempty"`
	Status   string `json:"status,omitempty"`
	Location string `json:"location,omitempty"`
	Search   string `json:"search,omitempty"`
	Year     int    `json:"year,omitempty"`
}

func unrestricted(v string) bool {
	return v == "" || strings.EqualFold(v, "all")
}

func (f Filter) Match(p models.Project) bool {
	if !unrestricted(f.Owner) && p.Owner != f.Owner {
		return false
	}
	if !unrestricted(f.Priority) && string(p.Priority) != f.Priority {
		return false
	}
	if !unrestricted(f.Status) && string(p.Status) != f.Status {
		return false
	}
	if !unrestricted(f.Location) && string(p.Location) != f.Location {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		hay := strings.ToLower(p.Name + "\x00" + p.Owner + "\x00" + p.Notes)
		if !strings.Contains(hay, needle) {
			return false
		}
	}
	if f.Year != 0 && !touchesYear(p, f.Year) {
		return false
	}
	return true
}

func (f Filter) Apply(projects []models.Project) []models.Project {
	out := make([]models.Project, 0, len(projects))
	for _, p := range projects {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

func touchesYear(p models.Project, year int) bool {
	for _, yb := range p.YearlyBudgets {
		if yb.Year == year {
			return true
		}
	}
	if !p.HasSpan() {
		return false
	}
	return p.StartDate.Year() <= year && p.EndDate.Year() >= year
}

func (f Filter) key() string {
	return strings.Join([]string{
		f.Owner, f.Priority, f.Status, f.Location, strings.ToLower(f.Search), strconv.Itoa(f.Year),
	}, "\x1f")
}
