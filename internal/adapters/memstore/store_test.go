package memstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"attendance.service/internal/core/model"
	"attendance.service/internal/ports/repository"
)

func newStore(t *testing.T) *Store {
	t.Helper()

	s, err := New()
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return s
}

func record(id int64, email string, status model.EmployeeStatus, at time.Time) *model.EmployeeCacheRecord {
	return &model.EmployeeCacheRecord{
		ID:             id,
		Email:          email,
		FirstName:      "John",
		LastName:       "Doe",
		FullName:       "John Doe",
		Role:           model.DefaultRole,
		EmploymentType: model.DefaultEmploymentType,
		Status:         status,
		CreatedAt:      at,
		UpdatedAt:      at,
		SyncedAt:       at,
	}
}

func TestStore_UpsertIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newStore(t)
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	rec := record(1, "john.doe@company.com", model.EmployeeActive, at)

	for i := 0; i < 3; i++ {
		if err := s.Upsert(ctx, rec); err != nil {
			t.Fatalf("Upsert #%d returned error: %v", i, err)
		}
	}

	n, err := s.Count(ctx)
	if err != nil || n != 1 {
		t.Fatalf("expected 1 record, got %d (%v)", n, err)
	}
	got, err := s.GetByID(ctx, 1)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if got.Email != rec.Email || got.Status != model.EmployeeActive {
		t.Fatalf("unexpected record %+v", got)
	}
}

func TestStore_UpsertKeepsCreatedAtAndMonotonicSyncedAt(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newStore(t)
	first := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	later := first.Add(time.Hour)

	if err := s.Upsert(ctx, record(1, "a@company.com", model.EmployeeActive, later)); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}
	older := record(1, "a@company.com", model.EmployeeOnLeave, first)
	if err := s.Upsert(ctx, older); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}

	got, _ := s.GetByID(ctx, 1)
	if !got.CreatedAt.Equal(later) {
		t.Fatalf("created_at should be kept, got %v", got.CreatedAt)
	}
	if !got.SyncedAt.Equal(later) {
		t.Fatalf("synced_at must not move backwards, got %v", got.SyncedAt)
	}
	if got.Status != model.EmployeeOnLeave {
		t.Fatalf("mutable fields should be overwritten, got %q", got.Status)
	}
}

func TestStore_GetMisses(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newStore(t)

	if _, err := s.GetByID(ctx, 99); !errors.Is(err, repository.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
	if _, err := s.GetByEmail(ctx, "nobody@company.com"); !errors.Is(err, repository.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
	if _, err := s.GetByEmail(ctx, ""); !errors.Is(err, repository.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound for empty email, got %v", err)
	}
}

func TestStore_EmailConflict(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newStore(t)
	at := time.Now().UTC()

	if err := s.Upsert(ctx, record(1, "shared@company.com", model.EmployeeActive, at)); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}
	err := s.Upsert(ctx, record(2, "shared@company.com", model.EmployeeActive, at))
	if !errors.Is(err, repository.ErrEmailConflict) {
		t.Fatalf("expected ErrEmailConflict, got %v", err)
	}
	if _, err := s.GetByID(ctx, 2); !errors.Is(err, repository.ErrEmployeeNotFound) {
		t.Fatalf("rejected upsert must not be stored, got %v", err)
	}
}

func TestStore_InsertIfAbsent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newStore(t)
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	if err := s.Upsert(ctx, record(1, "john.doe@company.com", model.EmployeeSuspended, at)); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}

	inserted, err := s.InsertIfAbsent(ctx, record(1, "john.doe@company.com", model.EmployeeActive, at.Add(time.Hour)))
	if err != nil || inserted {
		t.Fatalf("existing id must be left alone, got %v %v", inserted, err)
	}
	if got, _ := s.GetByID(ctx, 1); got.Status != model.EmployeeSuspended {
		t.Fatalf("existing record overwritten, status %q", got.Status)
	}

	inserted, err = s.InsertIfAbsent(ctx, record(2, "jane@company.com", model.EmployeeActive, at))
	if err != nil || !inserted {
		t.Fatalf("expected insert, got %v %v", inserted, err)
	}
	if _, err := s.InsertIfAbsent(ctx, record(3, "jane@company.com", model.EmployeeActive, at)); !errors.Is(err, repository.ErrEmailConflict) {
		t.Fatalf("expected ErrEmailConflict, got %v", err)
	}
}

func TestStore_DeletedEmailCanBeReused(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newStore(t)
	at := time.Now().UTC()

	if err := s.Upsert(ctx, record(1, "reuse@company.com", model.EmployeeActive, at)); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}
	if err := s.SetStatus(ctx, 1, model.EmployeeDeleted, at.Add(time.Minute)); err != nil {
		t.Fatalf("SetStatus returned error: %v", err)
	}
	if err := s.Upsert(ctx, record(2, "reuse@company.com", model.EmployeeActive, at)); err != nil {
		t.Fatalf("reusing a deleted employee's email should succeed: %v", err)
	}

	got, err := s.GetByEmail(ctx, "reuse@company.com")
	if err != nil || got.ID != 2 {
		t.Fatalf("expected live employee 2 for email, got %+v (%v)", got, err)
	}

	if err := s.SetStatus(ctx, 1, model.EmployeeActive, at.Add(2*time.Minute)); !errors.Is(err, repository.ErrEmailConflict) {
		t.Fatalf("reactivating into a taken email should conflict, got %v", err)
	}
}

func TestStore_SetStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newStore(t)
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	if err := s.SetStatus(ctx, 5, model.EmployeeSuspended, at); !errors.Is(err, repository.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}

	if err := s.Upsert(ctx, record(5, "e@company.com", model.EmployeeActive, at)); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}
	flip := at.Add(time.Hour)
	if err := s.SetStatus(ctx, 5, model.EmployeeSuspended, flip); err != nil {
		t.Fatalf("SetStatus returned error: %v", err)
	}

	got, _ := s.GetByID(ctx, 5)
	if got.Status != model.EmployeeSuspended || !got.UpdatedAt.Equal(flip) || !got.SyncedAt.Equal(flip) {
		t.Fatalf("unexpected record after SetStatus: %+v", got)
	}
	if got.Email != "e@company.com" || got.FullName != "John Doe" {
		t.Fatalf("SetStatus must only touch status and timestamps: %+v", got)
	}
}

func TestStore_CountByStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newStore(t)
	at := time.Now().UTC()

	statuses := []model.EmployeeStatus{model.EmployeeActive, model.EmployeeActive, model.EmployeeTerminated, model.EmployeeDeleted}
	for i, st := range statuses {
		if err := s.Upsert(ctx, record(int64(i+1), fmt.Sprintf("e%d@company.com", i), st, at)); err != nil {
			t.Fatalf("Upsert returned error: %v", err)
		}
	}

	active, _ := s.CountByStatus(ctx, model.EmployeeActive)
	terminated, _ := s.CountByStatus(ctx, model.EmployeeTerminated)
	total, _ := s.Count(ctx)
	if active != 2 || terminated != 1 || total != 4 {
		t.Fatalf("unexpected counts active=%d terminated=%d total=%d", active, terminated, total)
	}
}

func TestStore_ReturnsCopies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newStore(t)
	dept := "Engineering"
	rec := record(1, "a@company.com", model.EmployeeActive, time.Now().UTC())
	rec.Department = &dept

	if err := s.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}
	dept = "Sales"

	got, _ := s.GetByID(ctx, 1)
	if *got.Department != "Engineering" {
		t.Fatalf("store shares memory with caller: %q", *got.Department)
	}
	*got.Department = "Finance"
	again, _ := s.GetByID(ctx, 1)
	if *again.Department != "Engineering" {
		t.Fatalf("store shares memory with reader: %q", *again.Department)
	}
}

func TestStore_ConcurrentUpserts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newStore(t)
	at := time.Now().UTC()

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			if err := s.Upsert(ctx, record(id, fmt.Sprintf("e%d@company.com", id), model.EmployeeActive, at)); err != nil {
				t.Errorf("Upsert %d returned error: %v", id, err)
			}
			if _, err := s.GetByID(ctx, id); err != nil {
				t.Errorf("GetByID %d returned error: %v", id, err)
			}
		}(int64(i))
	}
	wg.Wait()

	total, _ := s.Count(ctx)
	if total != 50 {
		t.Fatalf("expected 50 records, got %d", total)
	}
}
