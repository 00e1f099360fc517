package models

import (
	"strings"
	"time"
)

const DefaultTotalHours = 40

type Engineer struct {
	ID             int              `json:"id" db:"id"`
	Name           string           `json:"name" db:"name"`
	Role           string           `json:"role" db:"role"`
	TotalHours     int              `json:"totalHours" db:"total_hours"`
	NonProjectTime []NonProjectTime `json:"nonProjectTime"`
	CreatedAt      time.Time        `json:"-" db:"created_at"`
}

type NonProjectTime struct {
	ID         int    `json:"id" db:"id"`
	EngineerID int    `json:"-" db:"engineer_id"`
	Type       string `json:"type" db:"type"`
	Hours      int    `json:"hours" db:"hours"`
}

// NonProjectHours is the flat weekly total of recurring allocations.
func (e Engineer) NonProjectHours() int {
	total := 0
	for _, npt := range e.NonProjectTime {
		total += npt.Hours
	}
	return total
}

func (e Engineer) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(e.Name) == "" {
		errs.Add("name", "name is required")
	}
	if e.TotalHours < 0 {
		errs.Add("totalHours", "totalHours must not be negative")
	}
	for _, npt := range e.NonProjectTime {
		if err := npt.Validate(); err != nil {
			errs = append(errs, err.(ValidationErrors)...)
		}
	}
	return errs.Err()
}

func (n NonProjectTime) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(n.Type) == "" {
		errs.Add("type", "type is required")
	}
	if n.Hours < 0 {
		errs.Add("hours", "hours must not be negative")
	}
	return errs.Err()
}

// EngineerPatch carries the fields of a partial update; nil means unchanged.
type EngineerPatch struct {
	Name       *string `json:"name"`
	Role       *string `json:"role"`
	TotalHours *int    `json:"totalHours"`
}

func (p EngineerPatch) Apply(e *Engineer) {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Role != nil {
		e.Role = *p.Role
	}
	if p.TotalHours != nil {
		e.TotalHours = *p.TotalHours
	}
}

type NonProjectTimePatch struct {
	Type  *string `json:"type"`
	Hours *int    `json:"hours"`
}

func (p NonProjectTimePatch) Apply(n *NonProjectTime) {
	if p.Type != nil {
		n.Type = *p.Type
	}
	if p.Hours != nil {
		n.Hours = *p.Hours
	}
}
