package repository

import (
	"context"
	"errors"
	"time"

	"attendance.service/internal/core/model"
)

var (
	ErrEmployeeNotFound = errors.New("employee cache: not found")
	ErrEmailConflict    = errors.New("employee cache: email already used by another employee")
)

// Repository contract for working-time records.
type Repository interface {
	CreateCheckIn(ctx context.Context, employeeID int64, clockIn time.Time) (int64, error)
	UpdateCheckOut(ctx context.Context, id int64, clockOut time.Time, hoursWorked float64) error
	// FindLastCheckIn returns nil, nil when the employee has no open record.
	FindLastCheckIn(ctx context.Context, employeeID int64) (*model.WorkingTime, error)
}

// EmployeeStore is the keyed employee cache.
//
// Lookups return ErrEmployeeNotFound on a miss. Upsert inserts or overwrites every
// mutable field of the record with the same ID and is idempotent; it returns
// ErrEmailConflict when another non-deleted record already holds the email.
// Implementations must allow concurrent readers and concurrent upserts of
// different IDs.
type EmployeeStore interface {
	GetByID(ctx context.Context, id int64) (*model.EmployeeCacheRecord, error)
	GetByEmail(ctx context.Context, email string) (*model.EmployeeCacheRecord, error)
	Upsert(ctx context.Context, rec *model.EmployeeCacheRecord) error
	// InsertIfAbsent stores rec only when its id is unknown, atomically, and
	// reports whether it did. An existing record is never touched.
	InsertIfAbsent(ctx context.Context, rec *model.EmployeeCacheRecord) (bool, error)
	// SetStatus flips the status and refreshes updated_at/synced_at in one step.
	SetStatus(ctx context.Context, id int64, status model.EmployeeStatus, at time.Time) error
	CountByStatus(ctx context.Context, status model.EmployeeStatus) (int, error)
	Count(ctx context.Context) (int, error)
}
