package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"attendance.service/internal/core/model"
	"attendance.service/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const uniqueViolationCode = "23505"

const employeeColumns = `id, user_id, email, first_name, last_name, full_name, role, job_title,
       department, team, manager_id, employment_type, status, joining_date,
       created_at, updated_at, synced_at`

const (
	selectEmployeeByIDSQL = `SELECT ` + employeeColumns + `
  FROM employee_cache
 WHERE id = $1`

	// A deleted row may share its email with a live one; the live row wins.
	selectEmployeeByEmailSQL = `SELECT ` + employeeColumns + `
  FROM employee_cache
 WHERE email = $1
 ORDER BY (status = 'deleted'), synced_at DESC
 LIMIT 1`

	upsertEmployeeSQL = `INSERT INTO employee_cache (` + employeeColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
ON CONFLICT (id) DO UPDATE
   SET user_id = EXCLUDED.user_id,
       email = EXCLUDED.email,
       first_name = EXCLUDED.first_name,
       last_name = EXCLUDED.last_name,
       full_name = EXCLUDED.full_name,
       role = EXCLUDED.role,
       job_title = EXCLUDED.job_title,
       department = EXCLUDED.department,
       team = EXCLUDED.team,
       manager_id = EXCLUDED.manager_id,
       employment_type = EXCLUDED.employment_type,
       status = EXCLUDED.status,
       joining_date = EXCLUDED.joining_date,
       updated_at = EXCLUDED.updated_at,
       synced_at = GREATEST(employee_cache.synced_at, EXCLUDED.synced_at)`

	insertEmployeeIfAbsentSQL = `INSERT INTO employee_cache (` + employeeColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
ON CONFLICT (id) DO NOTHING`

	setEmployeeStatusSQL = `UPDATE employee_cache
   SET status = $1,
       updated_at = $2,
       synced_at = GREATEST(synced_at, $2)
 WHERE id = $3`

	countEmployeesByStatusSQL = `SELECT COUNT(*) FROM employee_cache WHERE status = $1`
	countEmployeesSQL         = `SELECT COUNT(*) FROM employee_cache`
)

// EmployeeCacheRepository is the PostgreSQL EmployeeStore.
// Every operation is a single statement, so row-level atomicity comes from PostgreSQL.
type EmployeeCacheRepository struct {
	db database.Queryer
}

// NewEmployeeCacheRepository create new instance
func NewEmployeeCacheRepository(db database.Queryer) *EmployeeCacheRepository {
	return &EmployeeCacheRepository{db: db}
}

var _ EmployeeStore = (*EmployeeCacheRepository)(nil)

// GetByID fetches the cached employee by upstream id.
func (r *EmployeeCacheRepository) GetByID(ctx context.Context, id int64) (*model.EmployeeCacheRecord, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int64("app.employee_id", id))

	rec, err := scanEmployee(r.db.QueryRow(ctx, selectEmployeeByIDSQL, id))
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// GetByEmail fetches the cached employee holding email.
func (r *EmployeeCacheRepository) GetByEmail(ctx context.Context, email string) (*model.EmployeeCacheRecord, error) {
	rec, err := scanEmployee(r.db.QueryRow(ctx, selectEmployeeByEmailSQL, email))
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Upsert inserts the record or overwrites all mutable fields of the existing row.
// created_at of an existing row is kept.
func (r *EmployeeCacheRepository) Upsert(ctx context.Context, rec *model.EmployeeCacheRecord) error {
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int64("app.employee_id", rec.ID))

	_, err := r.db.Exec(ctx, upsertEmployeeSQL, employeeArgs(rec)...)
	if err != nil {
		return translateEmployeePgError(err)
	}
	return nil
}

// InsertIfAbsent inserts the record only when no row with its id exists.
// It reports whether the row was inserted.
func (r *EmployeeCacheRepository) InsertIfAbsent(ctx context.Context, rec *model.EmployeeCacheRecord) (bool, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int64("app.employee_id", rec.ID))

	tag, err := r.db.Exec(ctx, insertEmployeeIfAbsentSQL, employeeArgs(rec)...)
	if err != nil {
		return false, translateEmployeePgError(err)
	}
	return tag.RowsAffected() == 1, nil
}

func employeeArgs(rec *model.EmployeeCacheRecord) []any {
	return []any{
		rec.ID,
		rec.UserID,
		rec.Email,
		rec.FirstName,
		rec.LastName,
		rec.FullName,
		rec.Role,
		rec.JobTitle,
		rec.Department,
		rec.Team,
		rec.ManagerID,
		rec.EmploymentType,
		string(rec.Status),
		rec.JoiningDate,
		rec.CreatedAt,
		rec.UpdatedAt,
		rec.SyncedAt,
	}
}

// SetStatus flips the status of an existing row.
func (r *EmployeeCacheRepository) SetStatus(ctx context.Context, id int64, status model.EmployeeStatus, at time.Time) error {
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int64("app.employee_id", id))

	tag, err := r.db.Exec(ctx, setEmployeeStatusSQL, string(status), at, id)
	if err != nil {
		return translateEmployeePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

// CountByStatus counts cached employees in status.
func (r *EmployeeCacheRepository) CountByStatus(ctx context.Context, status model.EmployeeStatus) (int, error) {
	var n int64
	if err := r.db.QueryRow(ctx, countEmployeesByStatusSQL, string(status)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count employees by status: %w", err)
	}
	return int(n), nil
}

// Count counts all cached employees, deleted ones included.
func (r *EmployeeCacheRepository) Count(ctx context.Context) (int, error) {
	var n int64
	if err := r.db.QueryRow(ctx, countEmployeesSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("count employees: %w", err)
	}
	return int(n), nil
}

func scanEmployee(row pgx.Row) (*model.EmployeeCacheRecord, error) {
	var (
		rec        model.EmployeeCacheRecord
		userID     sql.NullInt64
		department sql.NullString
		team       sql.NullString
		managerID  sql.NullInt64
		status     string
		joining    sql.NullTime
	)

	err := row.Scan(
		&rec.ID,
		&userID,
		&rec.Email,
		&rec.FirstName,
		&rec.LastName,
		&rec.FullName,
		&rec.Role,
		&rec.JobTitle,
		&department,
		&team,
		&managerID,
		&rec.EmploymentType,
		&status,
		&joining,
		&rec.CreatedAt,
		&rec.UpdatedAt,
		&rec.SyncedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}

	rec.Status = model.EmployeeStatus(status)
	if userID.Valid {
		v := userID.Int64
		rec.UserID = &v
	}
	if managerID.Valid {
		v := managerID.Int64
		rec.ManagerID = &v
	}
	if department.Valid {
		v := department.String
		rec.Department = &v
	}
	if team.Valid {
		v := team.String
		rec.Team = &v
	}
	if joining.Valid {
		v := joining.Time.UTC()
		rec.JoiningDate = &v
	}
	return &rec, nil
}

func translateEmployeePgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return ErrEmailConflict
	}
	return err
}
