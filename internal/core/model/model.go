package model

import (
	"time"
)

// WorkingTime is one check-in/check-out span of an employee.
// ClockOutTime is nil while the employee is still checked in.
type WorkingTime struct {
	ID           int64      `json:"id"`
	EmployeeID   int64      `json:"employeeId"`
	ClockInTime  time.Time  `json:"clockInTime"`
	ClockOutTime *time.Time `json:"clockOutTime,omitempty"`
	HoursWorked  float64    `json:"hoursWorked,omitempty"`
}
