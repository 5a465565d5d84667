package models

import "time"

// AppointmentStatus enumerates booking states.
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// Appointment is an existing booking. Date is the stored calendar date and may
// come back from the driver with a time suffix.
type Appointment struct {
	ID         string            `db:"id" json:"id"`
	EmployeeID string            `db:"employee_id" json:"employee_id"`
	ServiceID  string            `db:"service_id" json:"service_id"`
	Date       string            `db:"date" json:"date"`
	StartTime  time.Time         `db:"start_time" json:"start_time"`
	EndTime    time.Time         `db:"end_time" json:"end_time"`
	Status     AppointmentStatus `db:"status" json:"status"`
}
