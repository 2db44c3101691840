package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"attendance.service/internal/core/model"
	"attendance.service/internal/ports/messaging"
)

type fakeWorkRepo struct {
	open        *model.WorkingTime
	findErr     error
	createErr   error
	createdFor  int64
	closedID    int64
	closedHours float64
}

func (r *fakeWorkRepo) CreateCheckIn(_ context.Context, employeeID int64, _ time.Time) (int64, error) {
	if r.createErr != nil {
		return 0, r.createErr
	}
	r.createdFor = employeeID
	return 77, nil
}

func (r *fakeWorkRepo) UpdateCheckOut(_ context.Context, id int64, _ time.Time, hoursWorked float64) error {
	r.closedID = id
	r.closedHours = hoursWorked
	return nil
}

func (r *fakeWorkRepo) FindLastCheckIn(_ context.Context, _ int64) (*model.WorkingTime, error) {
	return r.open, r.findErr
}

type fakeDirectory struct {
	known   map[int64]*model.EmployeeProfile
	lookups int
}

func (d *fakeDirectory) VerifyEmployeeExistsWithFallback(_ context.Context, id int64) bool {
	d.lookups++
	_, ok := d.known[id]
	return ok
}

func (d *fakeDirectory) GetEmployee(_ context.Context, id int64) *model.EmployeeProfile {
	return d.known[id]
}

type fakePublisher struct {
	events []messaging.EventEnvelope
	err    error
}

func (p *fakePublisher) PublishAttendance(_ context.Context, env messaging.EventEnvelope) error {
	p.events = append(p.events, env)
	return p.err
}

var clockIn = time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)

func newTestService(repo *fakeWorkRepo, pub *fakePublisher, now time.Time) (*CheckInService, *fakeDirectory) {
	dept := "Engineering"
	dir := &fakeDirectory{known: map[int64]*model.EmployeeProfile{
		1: {ID: 1, Email: "john.doe@company.com", FirstName: "John", LastName: "Doe", Department: &dept},
	}}
	s := NewCheckInService(repo, dir, pub)
	s.now = func() time.Time { return now }
	return s, dir
}

func TestProcessCheckInOut_UnknownEmployee(t *testing.T) {
	repo := &fakeWorkRepo{}
	pub := &fakePublisher{}
	s, _ := newTestService(repo, pub, clockIn)

	_, err := s.ProcessCheckInOut(context.Background(), 404)
	if !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
	if repo.createdFor != 0 || len(pub.events) != 0 {
		t.Fatalf("unknown employees must not touch storage or publish")
	}
}

func TestProcessCheckInOut_CheckIn(t *testing.T) {
	repo := &fakeWorkRepo{}
	pub := &fakePublisher{}
	s, _ := newTestService(repo, pub, clockIn)

	res, err := s.ProcessCheckInOut(context.Background(), 1)
	if err != nil {
		t.Fatalf("ProcessCheckInOut returned error: %v", err)
	}
	if res.Action != ActionCheckIn || res.WorkingTimeID != 77 || repo.createdFor != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(pub.events) != 1 || pub.events[0].EventType != messaging.EventAttendanceCheckIn {
		t.Fatalf("expected one check-in event, got %+v", pub.events)
	}
	data, ok := pub.events[0].Data.(messaging.CheckInEvent)
	if !ok {
		t.Fatalf("unexpected event data %T", pub.events[0].Data)
	}
	if data.Email != "john.doe@company.com" || data.Date != "2025-03-03" || data.Department == nil || *data.Department != "Engineering" {
		t.Fatalf("check-in event not enriched from the employee profile: %+v", data)
	}
}

func TestProcessCheckInOut_CheckOut(t *testing.T) {
	repo := &fakeWorkRepo{open: &model.WorkingTime{ID: 12, EmployeeID: 1, ClockInTime: clockIn}}
	pub := &fakePublisher{}
	s, _ := newTestService(repo, pub, clockIn.Add(8*time.Hour+30*time.Minute))

	res, err := s.ProcessCheckInOut(context.Background(), 1)
	if err != nil {
		t.Fatalf("ProcessCheckInOut returned error: %v", err)
	}
	if res.Action != ActionCheckOut || res.WorkingTimeID != 12 || res.ClockOutTime == nil {
		t.Fatalf("unexpected result %+v", res)
	}
	if repo.closedID != 12 || repo.closedHours != 8.5 {
		t.Fatalf("expected record 12 closed with 8.5h, got %d %v", repo.closedID, repo.closedHours)
	}
	data, ok := pub.events[0].Data.(messaging.CheckOutEvent)
	if !ok || data.TotalHoursWorked != 8.5 || pub.events[0].EventType != messaging.EventAttendanceCheckOut {
		t.Fatalf("unexpected check-out event %+v", pub.events[0])
	}
}

func TestProcessCheckInOut_PublishFailureIsNotFatal(t *testing.T) {
	repo := &fakeWorkRepo{}
	pub := &fakePublisher{err: errors.New("queue down")}
	s, _ := newTestService(repo, pub, clockIn)

	if _, err := s.ProcessCheckInOut(context.Background(), 1); err != nil {
		t.Fatalf("stored check-in must succeed when publishing fails, got %v", err)
	}
}

func TestProcessCheckInOut_StorageErrors(t *testing.T) {
	s, _ := newTestService(&fakeWorkRepo{findErr: errors.New("db down")}, &fakePublisher{}, clockIn)
	if _, err := s.ProcessCheckInOut(context.Background(), 1); err == nil {
		t.Fatalf("expected error when the lookup fails")
	}

	s, _ = newTestService(&fakeWorkRepo{createErr: errors.New("db down")}, &fakePublisher{}, clockIn)
	if _, err := s.ProcessCheckInOut(context.Background(), 1); err == nil {
		t.Fatalf("expected error when the insert fails")
	}
}
