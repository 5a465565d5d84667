package models

import "time"

// CalendarProviderGoogle identifies Google Calendar integrations.
const CalendarProviderGoogle = "google"

// CalendarIntegration links an employee to an external calendar.
type CalendarIntegration struct {
	ID           string     `db:"id" json:"id"`
	EmployeeID   string     `db:"employee_id" json:"employee_id"`
	Provider     string     `db:"provider" json:"provider"`
	CalendarID   string     `db:"calendar_id" json:"calendar_id"`
	AccessToken  string     `db:"access_token" json:"-"`
	RefreshToken string     `db:"refresh_token" json:"-"`
	TokenExpiry  *time.Time `db:"token_expiry" json:"token_expiry,omitempty"`
	Enabled      bool       `db:"enabled" json:"enabled"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// ExternalBusyPeriod is one busy range reported by an external calendar.
type ExternalBusyPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Title string    `json:"title"`
}
