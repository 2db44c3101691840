package model

import (
	"strings"
	"time"
)

// EmployeeStatus is the lifecycle state mirrored from the employee-management service.
type EmployeeStatus string

const (
	EmployeeActive     EmployeeStatus = "active"
	EmployeeOnLeave    EmployeeStatus = "on_leave"
	EmployeeSuspended  EmployeeStatus = "suspended"
	EmployeeTerminated EmployeeStatus = "terminated"
	EmployeeDeleted    EmployeeStatus = "deleted"
)

// Defaults applied when a lifecycle event omits the field.
const (
	DefaultRole           = "employee"
	DefaultEmploymentType = "permanent"
)

// Valid reports whether s is one of the known statuses.
func (s EmployeeStatus) Valid() bool {
	switch s {
	case EmployeeActive, EmployeeOnLeave, EmployeeSuspended, EmployeeTerminated, EmployeeDeleted:
		return true
	}
	return false
}

// CountsAsExisting reports whether an employee in this status may record attendance.
// Unknown statuses never count.
func (s EmployeeStatus) CountsAsExisting() bool {
	return s == EmployeeActive || s == EmployeeOnLeave
}

// EmployeeCacheRecord is the local projection of an upstream employee.
// ID is the upstream employee id and is never generated locally.
type EmployeeCacheRecord struct {
	ID             int64
	UserID         *int64
	Email          string
	FirstName      string
	LastName       string
	FullName       string
	Role           string
	JobTitle       string
	Department     *string
	Team           *string
	ManagerID      *int64
	EmploymentType string
	Status         EmployeeStatus
	JoiningDate    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	SyncedAt       time.Time
}

// FullName joins the name parts the way the upstream service displays them.
func FullName(firstName, lastName string) string {
	return strings.TrimSpace(firstName + " " + lastName)
}

// Clone returns a deep copy so callers cannot mutate a stored record through shared pointers.
func (r *EmployeeCacheRecord) Clone() *EmployeeCacheRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.UserID = cloneInt64(r.UserID)
	c.ManagerID = cloneInt64(r.ManagerID)
	c.Department = cloneString(r.Department)
	c.Team = cloneString(r.Team)
	if r.JoiningDate != nil {
		t := *r.JoiningDate
		c.JoiningDate = &t
	}
	return &c
}

// EmployeeProfile is the normalized employee view handed to the rest of the
// attendance system, whether it came from the cache or the upstream service.
type EmployeeProfile struct {
	ID             int64          `json:"id"`
	UserID         *int64         `json:"user_id"`
	Email          string         `json:"email"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	FullName       string         `json:"full_name"`
	Role           string         `json:"role"`
	JobTitle       string         `json:"job_title"`
	Department     *string        `json:"department"`
	Team           *string        `json:"team"`
	ManagerID      *int64         `json:"manager_id"`
	EmploymentType string         `json:"employment_type"`
	Status         EmployeeStatus `json:"status"`
	JoiningDate    *string        `json:"joining_date"`
}

// Profile converts the cached record into its public profile.
func (r *EmployeeCacheRecord) Profile() *EmployeeProfile {
	p := &EmployeeProfile{
		ID:             r.ID,
		UserID:         cloneInt64(r.UserID),
		Email:          r.Email,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		FullName:       r.FullName,
		Role:           r.Role,
		JobTitle:       r.JobTitle,
		Department:     cloneString(r.Department),
		Team:           cloneString(r.Team),
		ManagerID:      cloneInt64(r.ManagerID),
		EmploymentType: r.EmploymentType,
		Status:         r.Status,
	}
	if r.JoiningDate != nil {
		s := r.JoiningDate.Format(time.RFC3339)
		p.JoiningDate = &s
	}
	return p
}

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
