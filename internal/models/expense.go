package models

import (
	"strings"
	"time"
)

const DefaultExpenseCategory = "Other"

// ExpenseCategories lists the categories the dashboard offers. Stored values
// are not normalized against it.
var ExpenseCategories = []string{"Equipment", "Labor", "Services", "Software", "Materials", "Travel", "Other"}

type Expense struct {
	ID          int       `json:"id" db:"id"`
	ProjectID   int       `json:"-" db:"project_id"`
	Date        Date      `json:"date" db:"date"`
	Description string    `json:"description" db:"description"`
	Amount      float64   `json:"amount" db:"amount"`
	Category    string    `json:"category" db:"category"`
	CreatedAt   time.Time `json:"-" db:"created_at"`
}

func (e *Expense) Defaults() {
	if e.Category == "" {
		e.Category = DefaultExpenseCategory
	}
}

func (e Expense) Validate() error {
	var errs ValidationErrors
	if e.Date.IsZero() {
		errs.Add("date", "date is required")
	}
	if e.Amount <= 0 {
		errs.Add("amount", "amount must be greater than 0")
	}
	if strings.TrimSpace(e.Description) == "" {
		errs.Add("description", "description is required")
	}
	return errs.Err()
}

type ExpensePatch struct {
	Date        *Date    `json:"date"`
	Description *string  `json:"description"`
	Amount      *float64 `json:"amount"`
	Category    *string  `json:"category"`
}

// Apply returns the change in amount so the project's spent can follow it.
func (p ExpensePatch) Apply(e *Expense) (delta float64) {
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Amount != nil {
		delta = *p.Amount - e.Amount
		e.Amount = *p.Amount
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	return delta
}
