package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestWorkingTimeRepository_CheckInCheckOut(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewWorkingTimeRepository(mock)
	clockIn := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	clockOut := clockIn.Add(8 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta(createCheckInSQL)).WithArgs(int64(7), clockIn).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(11)))
	mock.ExpectExec(regexp.QuoteMeta(updateCheckOutSQL)).WithArgs(clockOut, 8.0, int64(11)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	id, err := repo.CreateCheckIn(context.Background(), 7, clockIn)
	if err != nil || id != 11 {
		t.Fatalf("expected id 11, got %d (%v)", id, err)
	}
	if err := repo.UpdateCheckOut(context.Background(), 11, clockOut, 8.0); err != nil {
		t.Fatalf("UpdateCheckOut returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWorkingTimeRepository_FindLastCheckIn(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewWorkingTimeRepository(mock)
	clockIn := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(findLastCheckInSQL)).WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "clock_in_time"}).AddRow(int64(11), clockIn))
	mock.ExpectQuery(regexp.QuoteMeta(findLastCheckInSQL)).WithArgs(int64(8)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "clock_in_time"}))

	wt, err := repo.FindLastCheckIn(context.Background(), 7)
	if err != nil || wt == nil || wt.ID != 11 || !wt.ClockInTime.Equal(clockIn) {
		t.Fatalf("unexpected open record %+v (%v)", wt, err)
	}

	wt, err = repo.FindLastCheckIn(context.Background(), 8)
	if err != nil || wt != nil {
		t.Fatalf("expected no open record, got %+v (%v)", wt, err)
	}
}
