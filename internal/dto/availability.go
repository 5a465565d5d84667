package dto

import "time"

// AvailabilityQuery asks for one service's availability in the week containing Date.
type AvailabilityQuery struct {
	Date        string   `json:"date" validate:"required"`
	ServiceID   string   `json:"serviceId" validate:"required"`
	EmployeeIDs []string `json:"employeeIds" validate:"omitempty,dive,required"`
}

// CombinedAvailabilityQuery asks for two services booked back to back.
type CombinedAvailabilityQuery struct {
	Date            string   `json:"date" validate:"required"`
	ServiceID       string   `json:"serviceId" validate:"required"`
	SecondServiceID string   `json:"secondServiceId" validate:"required"`
	EmployeeIDs     []string `json:"employeeIds" validate:"omitempty,dive,required"`
}

// AvailabilityIssue names an employee excluded or degraded in the result.
type AvailabilityIssue struct {
	EmployeeID string `json:"employeeId"`
	Reason     string `json:"reason"`
}

// SlotView is one start time with the employees offering it.
type SlotView struct {
	Start       time.Time `json:"start"`
	Time        string    `json:"time"`
	EmployeeIDs []string  `json:"employeeIds"`
}

// DayView lists the slots of one date.
type DayView struct {
	Date    string     `json:"date"`
	Weekday string     `json:"weekday"`
	Slots   []SlotView `json:"slots"`
}

// AvailabilityResponse is the week availability of one service.
type AvailabilityResponse struct {
	ServiceID string              `json:"serviceId"`
	Timezone  string              `json:"timezone"`
	WeekStart string              `json:"weekStart"`
	Days      []DayView           `json:"days"`
	Issues    []AvailabilityIssue `json:"issues,omitempty"`
}

// ServiceSlotView is one leg of a combined booking.
type ServiceSlotView struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	StartTime   string    `json:"startTime"`
	EndTime     string    `json:"endTime"`
	EmployeeIDs []string  `json:"employeeIds"`
}

// CombinedSlotView pairs the first service with the second that follows it.
type CombinedSlotView struct {
	First  ServiceSlotView `json:"firstService"`
	Second ServiceSlotView `json:"secondService"`
}

// CombinedDayView lists the combined slots of one date.
type CombinedDayView struct {
	Date    string             `json:"date"`
	Weekday string             `json:"weekday"`
	Slots   []CombinedSlotView `json:"slots"`
}

// CombinedAvailabilityResponse is the week availability of two sequential services.
type CombinedAvailabilityResponse struct {
	ServiceID       string              `json:"serviceId"`
	SecondServiceID string              `json:"secondServiceId"`
	Timezone        string              `json:"timezone"`
	WeekStart       string              `json:"weekStart"`
	Days            []CombinedDayView   `json:"days"`
	Issues          []AvailabilityIssue `json:"issues,omitempty"`
}
