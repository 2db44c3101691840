package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"attendance.service/internal/core/model"
	"attendance.service/internal/ports/messaging"
	"attendance.service/internal/ports/repository"
	"github.com/rs/zerolog/log"
)

var ErrEmployeeNotFound = errors.New("employee does not exist")

// Check-in actions.
const (
	ActionCheckIn  = "check_in"
	ActionCheckOut = "check_out"
)

// EmployeeDirectory is the part of the employee lookup service check-in relies on.
type EmployeeDirectory interface {
	VerifyEmployeeExistsWithFallback(ctx context.Context, employeeID int64) bool
	GetEmployee(ctx context.Context, employeeID int64) *model.EmployeeProfile
}

// CheckInResult describes what a check-in/out call did.
type CheckInResult struct {
	Action        string     `json:"action"`
	WorkingTimeID int64      `json:"working_time_id"`
	EmployeeID    int64      `json:"employee_id"`
	ClockInTime   time.Time  `json:"clock_in_time"`
	ClockOutTime  *time.Time `json:"clock_out_time,omitempty"`
	HoursWorked   float64    `json:"hours_worked,omitempty"`
}

type CheckInService struct {
	repo      repository.Repository
	employees EmployeeDirectory
	publisher messaging.EventPublisher
	now       func() time.Time
}

// NewCheckInService creates a new instance of our main application service,
// wiring up the database repository, the employee lookup and the event publisher.
func NewCheckInService(repo repository.Repository, employees EmployeeDirectory, p messaging.EventPublisher) *CheckInService {
	return &CheckInService{
		repo:      repo,
		employees: employees,
		publisher: p,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ProcessCheckInOut figures out if an employee is clocking in or out by checking
// for an open work record. Unknown or inactive employees get ErrEmployeeNotFound.
func (s *CheckInService) ProcessCheckInOut(ctx context.Context, employeeID int64) (*CheckInResult, error) {
	if !s.employees.VerifyEmployeeExistsWithFallback(ctx, employeeID) {
		return nil, fmt.Errorf("%w: %d", ErrEmployeeNotFound, employeeID)
	}

	currentTime := s.now()

	openWorkTime, err := s.repo.FindLastCheckIn(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query last check-in: %w", err)
	}

	if openWorkTime == nil {
		return s.handleCheckIn(ctx, employeeID, currentTime)
	}

	return s.handleCheckOut(ctx, openWorkTime, currentTime)
}

// handleCheckIn handles the clock-in workflow.
func (s *CheckInService) handleCheckIn(ctx context.Context, employeeID int64, clockIn time.Time) (*CheckInResult, error) {
	id, err := s.repo.CreateCheckIn(ctx, employeeID, clockIn)
	if err != nil {
		return nil, fmt.Errorf("failed to create check-in record: %w", err)
	}

	data := messaging.CheckInEvent{
		AttendanceID: id,
		EmployeeID:   employeeID,
		CheckInTime:  clockIn,
		Date:         clockIn.Format(time.DateOnly),
	}
	if p := s.employees.GetEmployee(ctx, employeeID); p != nil {
		data.Email = p.Email
		data.FirstName = p.FirstName
		data.LastName = p.LastName
		data.Department = p.Department
	}
	s.publish(ctx, messaging.NewEventEnvelope(messaging.EventAttendanceCheckIn, data, clockIn))

	return &CheckInResult{
		Action:        ActionCheckIn,
		WorkingTimeID: id,
		EmployeeID:    employeeID,
		ClockInTime:   clockIn,
	}, nil
}

// handleCheckOut handles the clock-out workflow.
func (s *CheckInService) handleCheckOut(ctx context.Context, workTime *model.WorkingTime, clockOut time.Time) (*CheckInResult, error) {
	hoursWorked := clockOut.Sub(workTime.ClockInTime).Hours()

	if err := s.repo.UpdateCheckOut(ctx, workTime.ID, clockOut, hoursWorked); err != nil {
		return nil, fmt.Errorf("failed to update check-out record: %w", err)
	}

	s.publish(ctx, messaging.NewEventEnvelope(messaging.EventAttendanceCheckOut, messaging.CheckOutEvent{
		AttendanceID:     workTime.ID,
		EmployeeID:       workTime.EmployeeID,
		CheckInTime:      workTime.ClockInTime,
		CheckOutTime:     clockOut,
		Date:             workTime.ClockInTime.Format(time.DateOnly),
		TotalHoursWorked: hoursWorked,
	}, clockOut))

	return &CheckInResult{
		Action:        ActionCheckOut,
		WorkingTimeID: workTime.ID,
		EmployeeID:    workTime.EmployeeID,
		ClockInTime:   workTime.ClockInTime,
		ClockOutTime:  &clockOut,
		HoursWorked:   hoursWorked,
	}, nil
}

// publish is best effort; the attendance record is already stored.
func (s *CheckInService) publish(ctx context.Context, env messaging.EventEnvelope) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishAttendance(ctx, env); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("event_type", env.EventType).Msg("Failed to publish attendance event")
	}
}
