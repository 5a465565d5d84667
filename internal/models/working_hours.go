package models

// WorkingHours is one recurring weekly shift. Weekday follows time.Weekday
// (0 = Sunday); clock columns are local HH:MM:SS.
type WorkingHours struct {
	ID               string  `db:"id" json:"id"`
	EmployeeID       string  `db:"employee_id" json:"employee_id"`
	Weekday          int     `db:"weekday" json:"weekday"`
	StartTime        string  `db:"start_time" json:"start_time"`
	EndTime          string  `db:"end_time" json:"end_time"`
	PauseStart       *string `db:"pause_start" json:"pause_start,omitempty"`
	PauseEnd         *string `db:"pause_end" json:"pause_end,omitempty"`
	LeadTime         string  `db:"lead_time" json:"lead_time"`
	TimeslotInterval int     `db:"timeslot_interval" json:"timeslot_interval"`
}
