package memstore

import (
	"context"
	"fmt"
	"time"

	"attendance.service/internal/core/model"
	"attendance.service/internal/ports/repository"
	"github.com/hashicorp/go-memdb"
)

const (
	employeeTable = "employee_cache"

	indexID     = "id"
	indexEmail  = "email"
	indexStatus = "status"
)

func employeeSchema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			employeeTable: {
				Name: employeeTable,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: {
						Name:    indexID,
						Unique:  true,
						Indexer: &memdb.IntFieldIndex{Field: "ID"},
					},
					// Deleted rows may share an email with a live row, so the index is not unique.
					indexEmail: {
						Name:         indexEmail,
						AllowMissing: true,
						Indexer:      &memdb.StringFieldIndex{Field: "Email"},
					},
					indexStatus: {
						Name:         indexStatus,
						AllowMissing: true,
						Indexer:      &memdb.StringFieldIndex{Field: "Status"},
					},
				},
			},
		},
	}
}

// Store is an in-process EmployeeStore backed by go-memdb.
// Readers see immutable snapshots; writers are serialized by memdb.
type Store struct {
	db *memdb.MemDB
}

// New creates an empty store.
func New() (*Store, error) {
	db, err := memdb.NewMemDB(employeeSchema())
	if err != nil {
		return nil, fmt.Errorf("create employee memdb: %w", err)
	}
	return &Store{db: db}, nil
}

var _ repository.EmployeeStore = (*Store)(nil)

func (s *Store) GetByID(_ context.Context, id int64) (*model.EmployeeCacheRecord, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(employeeTable, indexID, id)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, repository.ErrEmployeeNotFound
	}
	return raw.(*model.EmployeeCacheRecord).Clone(), nil
}

// GetByEmail prefers a non-deleted holder of the email, then the most recently synced one.
func (s *Store) GetByEmail(_ context.Context, email string) (*model.EmployeeCacheRecord, error) {
	if email == "" {
		return nil, repository.ErrEmployeeNotFound
	}

	txn := s.db.Txn(false)
	defer txn.Abort()

	iter, err := txn.Get(employeeTable, indexEmail, email)
	if err != nil {
		return nil, err
	}

	var best *model.EmployeeCacheRecord
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		rec := raw.(*model.EmployeeCacheRecord)
		if best == nil || preferByEmail(rec, best) {
			best = rec
		}
	}
	if best == nil {
		return nil, repository.ErrEmployeeNotFound
	}
	return best.Clone(), nil
}

func preferByEmail(candidate, current *model.EmployeeCacheRecord) bool {
	candLive := candidate.Status != model.EmployeeDeleted
	curLive := current.Status != model.EmployeeDeleted
	if candLive != curLive {
		return candLive
	}
	return candidate.SyncedAt.After(current.SyncedAt)
}

func (s *Store) Upsert(_ context.Context, rec *model.EmployeeCacheRecord) error {
	txn := s.db.Txn(true)
	defer txn.Abort()

	if err := checkEmailFree(txn, rec.ID, rec.Email, rec.Status); err != nil {
		return err
	}

	stored := rec.Clone()
	raw, err := txn.First(employeeTable, indexID, rec.ID)
	if err != nil {
		return err
	}
	if raw != nil {
		existing := raw.(*model.EmployeeCacheRecord)
		stored.CreatedAt = existing.CreatedAt
		if existing.SyncedAt.After(stored.SyncedAt) {
			stored.SyncedAt = existing.SyncedAt
		}
	}

	if err := txn.Insert(employeeTable, stored); err != nil {
		return fmt.Errorf("insert employee %d: %w", rec.ID, err)
	}
	txn.Commit()
	return nil
}

// InsertIfAbsent checks for the id and inserts within one write transaction.
func (s *Store) InsertIfAbsent(_ context.Context, rec *model.EmployeeCacheRecord) (bool, error) {
	txn := s.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(employeeTable, indexID, rec.ID)
	if err != nil {
		return false, err
	}
	if raw != nil {
		return false, nil
	}
	if err := checkEmailFree(txn, rec.ID, rec.Email, rec.Status); err != nil {
		return false, err
	}
	if err := txn.Insert(employeeTable, rec.Clone()); err != nil {
		return false, fmt.Errorf("insert employee %d: %w", rec.ID, err)
	}
	txn.Commit()
	return true, nil
}

func (s *Store) SetStatus(_ context.Context, id int64, status model.EmployeeStatus, at time.Time) error {
	txn := s.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(employeeTable, indexID, id)
	if err != nil {
		return err
	}
	if raw == nil {
		return repository.ErrEmployeeNotFound
	}

	stored := raw.(*model.EmployeeCacheRecord).Clone()
	if err := checkEmailFree(txn, id, stored.Email, status); err != nil {
		return err
	}
	stored.Status = status
	stored.UpdatedAt = at
	if at.After(stored.SyncedAt) {
		stored.SyncedAt = at
	}

	if err := txn.Insert(employeeTable, stored); err != nil {
		return fmt.Errorf("update employee %d status: %w", id, err)
	}
	txn.Commit()
	return nil
}

// checkEmailFree enforces email uniqueness among non-deleted rows.
func checkEmailFree(txn *memdb.Txn, id int64, email string, status model.EmployeeStatus) error {
	if email == "" || status == model.EmployeeDeleted {
		return nil
	}
	iter, err := txn.Get(employeeTable, indexEmail, email)
	if err != nil {
		return err
	}
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		other := raw.(*model.EmployeeCacheRecord)
		if other.ID != id && other.Status != model.EmployeeDeleted {
			return repository.ErrEmailConflict
		}
	}
	return nil
}

func (s *Store) CountByStatus(_ context.Context, status model.EmployeeStatus) (int, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	iter, err := txn.Get(employeeTable, indexStatus, string(status))
	if err != nil {
		return 0, err
	}
	return countIter(iter), nil
}

func (s *Store) Count(_ context.Context) (int, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	iter, err := txn.Get(employeeTable, indexID)
	if err != nil {
		return 0, err
	}
	return countIter(iter), nil
}

func countIter(iter memdb.ResultIterator) int {
	n := 0
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		n++
	}
	return n
}
