package employeeapi

import (
	"time"

	"attendance.service/internal/core/model"
)

// RemoteEmployee is the employee body returned by the internal endpoints of the
// employee-management service. Unknown fields are ignored.
type RemoteEmployee struct {
	ID             int64   `json:"id"`
	UserID         *int64  `json:"user_id"`
	Email          string  `json:"email"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	FullName       string  `json:"full_name"`
	Role           string  `json:"role"`
	JobTitle       string  `json:"job_title"`
	Department     *string `json:"department"`
	Team           *string `json:"team"`
	ManagerID      *int64  `json:"manager_id"`
	EmploymentType string  `json:"employment_type"`
	Status         string  `json:"status"`
	JoiningDate    *string `json:"joining_date"`
}

// Record maps the remote body onto a cache record synced at now.
// It reports false when the body lacks the id or email a cache row needs.
func (e *RemoteEmployee) Record(now time.Time) (*model.EmployeeCacheRecord, bool) {
	if e == nil || e.ID <= 0 || e.Email == "" {
		return nil, false
	}

	rec := &model.EmployeeCacheRecord{
		ID:             e.ID,
		UserID:         e.UserID,
		Email:          e.Email,
		FirstName:      e.FirstName,
		LastName:       e.LastName,
		FullName:       e.FullName,
		Role:           e.Role,
		JobTitle:       e.JobTitle,
		Department:     e.Department,
		Team:           e.Team,
		ManagerID:      e.ManagerID,
		EmploymentType: e.EmploymentType,
		Status:         model.EmployeeStatus(e.Status),
		CreatedAt:      now,
		UpdatedAt:      now,
		SyncedAt:       now,
	}
	if rec.FullName == "" {
		rec.FullName = model.FullName(e.FirstName, e.LastName)
	}
	if rec.Role == "" {
		rec.Role = model.DefaultRole
	}
	if rec.EmploymentType == "" {
		rec.EmploymentType = model.DefaultEmploymentType
	}
	if rec.Status == "" {
		rec.Status = model.EmployeeActive
	}
	if e.JoiningDate != nil {
		if t, err := model.ParseJoiningDate(*e.JoiningDate); err == nil {
			rec.JoiningDate = &t
		}
	}
	return rec.Clone(), true
}

// Profile normalizes the remote body into the same shape a cache hit produces.
func (e *RemoteEmployee) Profile() *model.EmployeeProfile {
	if rec, ok := e.Record(time.Time{}); ok {
		return rec.Profile()
	}

	p := &model.EmployeeProfile{
		ID:             e.ID,
		UserID:         e.UserID,
		Email:          e.Email,
		FirstName:      e.FirstName,
		LastName:       e.LastName,
		FullName:       e.FullName,
		Role:           e.Role,
		JobTitle:       e.JobTitle,
		Department:     e.Department,
		Team:           e.Team,
		ManagerID:      e.ManagerID,
		EmploymentType: e.EmploymentType,
		Status:         model.EmployeeStatus(e.Status),
		JoiningDate:    e.JoiningDate,
	}
	if p.FullName == "" {
		p.FullName = model.FullName(e.FirstName, e.LastName)
	}
	return p
}
