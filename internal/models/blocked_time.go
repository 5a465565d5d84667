package models

// BlockedTime is a vacation or blocked slot on one date. Multi-day vacations
// are stored as one row per date sharing GroupID.
type BlockedTime struct {
	ID         string  `db:"id" json:"id"`
	EmployeeID string  `db:"employee_id" json:"employee_id"`
	GroupID    *string `db:"group_id" json:"group_id,omitempty"`
	Date       string  `db:"date" json:"date"`
	StartTime  *string `db:"start_time" json:"start_time,omitempty"`
	EndTime    *string `db:"end_time" json:"end_time,omitempty"`
	AllDay     bool    `db:"all_day" json:"all_day"`
	Reason     string  `db:"reason" json:"reason"`
}
