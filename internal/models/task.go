package models

// Task assigns an engineer to a whole project at a weekly rate.
type Task struct {
	ID           int    `json:"id" db:"id"`
	ProjectID    int    `json:"-" db:"project_id"`
	EngineerID   int    `json:"engineerId" db:"engineer_id"`
	Engineer     string `json:"engineer"`
	HoursPerWeek int    `json:"hoursPerWeek" db:"hours_per_week"`
}

func (t Task) Validate() error {
	var errs ValidationErrors
	if t.EngineerID <= 0 && t.Engineer == "" {
		errs.Add("engineerId", "engineerId or engineer is required")
	}
	if t.HoursPerWeek < 0 {
		errs.Add("hoursPerWeek", "hoursPerWeek must not be negative")
	}
	return errs.Err()
}

// Assignment commits an engineer to a milestone's date range.
type Assignment struct {
	ID           int    `json:"id" db:"id"`
	MilestoneID  int    `json:"milestoneId" db:"milestone_id"`
	EngineerID   int    `json:"engineerId" db:"engineer_id"`
	Engineer     string `json:"engineer"`
	HoursPerWeek int    `json:"hoursPerWeek" db:"hours_per_week"`
}

func (a Assignment) Validate() error {
	var errs ValidationErrors
	if a.EngineerID <= 0 {
		errs.Add("engineerId", "engineerId is required")
	}
	if a.HoursPerWeek < 0 {
		errs.Add("hoursPerWeek", "hoursPerWeek must not be negative")
	}
	return errs.Err()
}

type HoursPatch struct {
	HoursPerWeek *int `json:"hoursPerWeek"`
}
