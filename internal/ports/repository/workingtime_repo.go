package repository

import (
	"context"
	"errors"
	"time"

	"attendance.service/internal/core/model"
	"attendance.service/pkg/database"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	createCheckInSQL = `INSERT INTO working_times (employee_id, clock_in_time)
VALUES ($1, $2) RETURNING id`

	updateCheckOutSQL = `UPDATE working_times
   SET clock_out_time = $1,
       hours_worked = $2
 WHERE id = $3`

	findLastCheckInSQL = `SELECT id, clock_in_time
  FROM working_times
 WHERE employee_id = $1 AND clock_out_time IS NULL
 ORDER BY clock_in_time DESC
 LIMIT 1`
)

// WorkingTimeRepository is the concrete implementation for a PostgreSQL database.
type WorkingTimeRepository struct {
	db database.Queryer
}

// NewWorkingTimeRepository create new instance
func NewWorkingTimeRepository(db database.Queryer) *WorkingTimeRepository {
	return &WorkingTimeRepository{db: db}
}

var _ Repository = (*WorkingTimeRepository)(nil)

// CreateCheckIn create checkin.
func (r *WorkingTimeRepository) CreateCheckIn(ctx context.Context, employeeID int64, clockIn time.Time) (int64, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int64("app.employee_id", employeeID))

	var id int64
	if err := r.db.QueryRow(ctx, createCheckInSQL, employeeID, clockIn).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateCheckOut do checkout.
func (r *WorkingTimeRepository) UpdateCheckOut(ctx context.Context, id int64, clockOut time.Time, hoursWorked float64) error {
	_, err := r.db.Exec(ctx, updateCheckOutSQL, clockOut, hoursWorked, id)
	return err
}

// FindLastCheckIn get last open check in for a employee
func (r *WorkingTimeRepository) FindLastCheckIn(ctx context.Context, employeeID int64) (*model.WorkingTime, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int64("app.employee_id", employeeID))

	wt := &model.WorkingTime{EmployeeID: employeeID}
	err := r.db.QueryRow(ctx, findLastCheckInSQL, employeeID).Scan(&wt.ID, &wt.ClockInTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return wt, nil
}
