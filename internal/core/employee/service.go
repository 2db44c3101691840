package employee

import (
	"context"
	"errors"
	"time"

	"attendance.service/internal/adapters/employeeapi"
	"attendance.service/internal/core/model"
	"attendance.service/internal/ports/repository"
	"github.com/rs/zerolog/log"
)

// RemoteClient is the upstream employee service used on cache misses.
// A clean miss is (false/nil, nil).
type RemoteClient interface {
	VerifyEmployeeExists(ctx context.Context, employeeID int64) (bool, error)
	GetEmployee(ctx context.Context, employeeID int64) (*employeeapi.RemoteEmployee, error)
	GetEmployeeByEmail(ctx context.Context, email string) (*employeeapi.RemoteEmployee, error)
}

// Service answers employee questions for the rest of the attendance system,
// reading the local cache first and the upstream service on a miss.
// None of its methods return errors: every failure degrades to false, nil or 0.
type Service struct {
	store     repository.EmployeeStore
	remote    RemoteClient
	writeBack bool
	now       func() time.Time
}

// NewService wires the lookup service. remote may be nil, in which case every
// miss is final. With writeBack set, profiles fetched from upstream are stored
// in the cache if no event has populated it in the meantime.
func NewService(store repository.EmployeeStore, remote RemoteClient, writeBack bool) *Service {
	return &Service{
		store:     store,
		remote:    remote,
		writeBack: writeBack,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// VerifyEmployeeExists consults the cache only. A miss or a storage error is false.
func (s *Service) VerifyEmployeeExists(ctx context.Context, employeeID int64) bool {
	exists, _ := s.verifyCached(ctx, employeeID)
	return exists
}

// VerifyEmployeeExistsWithFallback consults the cache and, when the employee is not
// cached, asks the upstream service. Upstream failures are false.
func (s *Service) VerifyEmployeeExistsWithFallback(ctx context.Context, employeeID int64) bool {
	exists, found := s.verifyCached(ctx, employeeID)
	if found {
		return exists
	}
	if s.remote == nil {
		return false
	}

	log.Ctx(ctx).Warn().Int64("employee_id", employeeID).Msg("Employee not in cache, falling back to HTTP call")
	exists, err := s.remote.VerifyEmployeeExists(ctx, employeeID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Int64("employee_id", employeeID).Msg("HTTP fallback failed")
		return false
	}
	if exists {
		log.Ctx(ctx).Info().Int64("employee_id", employeeID).Msg("Employee verified via HTTP (not in cache yet)")
	} else {
		log.Ctx(ctx).Warn().Int64("employee_id", employeeID).Msg("Employee does not exist (verified via HTTP)")
	}
	return exists
}

// verifyCached reports the existence verdict and whether the cache could decide it.
func (s *Service) verifyCached(ctx context.Context, employeeID int64) (exists, found bool) {
	rec, err := s.store.GetByID(ctx, employeeID)
	if err != nil {
		if !errors.Is(err, repository.ErrEmployeeNotFound) {
			log.Ctx(ctx).Error().Err(err).Int64("employee_id", employeeID).Msg("Error checking cache for employee")
		}
		return false, false
	}

	exists = rec.Status.CountsAsExisting()
	if exists {
		log.Ctx(ctx).Info().Int64("employee_id", employeeID).Str("status", string(rec.Status)).Msg("Employee found in cache")
	} else {
		log.Ctx(ctx).Info().Int64("employee_id", employeeID).Str("status", string(rec.Status)).Msg("Employee found in cache but inactive")
	}
	return exists, true
}

// GetEmployee returns the employee profile or nil when neither tier knows it.
func (s *Service) GetEmployee(ctx context.Context, employeeID int64) *model.EmployeeProfile {
	rec, err := s.store.GetByID(ctx, employeeID)
	switch {
	case err == nil:
		log.Ctx(ctx).Info().Int64("employee_id", employeeID).Msg("Employee found in cache")
		return rec.Profile()
	case errors.Is(err, repository.ErrEmployeeNotFound):
		log.Ctx(ctx).Info().Int64("employee_id", employeeID).Msg("Employee not in cache, falling back to HTTP")
	default:
		log.Ctx(ctx).Error().Err(err).Int64("employee_id", employeeID).Msg("Error checking cache for employee")
	}

	if s.remote == nil {
		return nil
	}
	emp, err := s.remote.GetEmployee(ctx, employeeID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Int64("employee_id", employeeID).Msg("HTTP fallback failed")
		return nil
	}
	if emp == nil {
		return nil
	}
	log.Ctx(ctx).Info().Int64("employee_id", employeeID).Msg("Employee retrieved via HTTP (not in cache yet)")
	s.storeFetched(ctx, emp)
	return emp.Profile()
}

// GetEmployeeByEmail returns the employee profile or nil when neither tier knows it.
func (s *Service) GetEmployeeByEmail(ctx context.Context, email string) *model.EmployeeProfile {
	rec, err := s.store.GetByEmail(ctx, email)
	switch {
	case err == nil:
		log.Ctx(ctx).Info().Str("email", email).Msg("Employee with email found in cache")
		return rec.Profile()
	case errors.Is(err, repository.ErrEmployeeNotFound):
		log.Ctx(ctx).Info().Str("email", email).Msg("Employee with email not in cache, falling back to HTTP")
	default:
		log.Ctx(ctx).Error().Err(err).Str("email", email).Msg("Error checking cache for employee email")
	}

	if s.remote == nil {
		return nil
	}
	emp, err := s.remote.GetEmployeeByEmail(ctx, email)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("email", email).Msg("HTTP fallback failed")
		return nil
	}
	if emp == nil {
		return nil
	}
	log.Ctx(ctx).Info().Str("email", email).Msg("Employee with email retrieved via HTTP (not in cache yet)")
	s.storeFetched(ctx, emp)
	return emp.Profile()
}

// storeFetched writes an upstream profile into the cache unless a record already exists.
func (s *Service) storeFetched(ctx context.Context, emp *employeeapi.RemoteEmployee) {
	if !s.writeBack {
		return
	}
	rec, ok := emp.Record(s.now())
	if !ok {
		log.Ctx(ctx).Warn().Int64("employee_id", emp.ID).Msg("Fetched employee lacks id or email, not caching")
		return
	}

	inserted, err := s.store.InsertIfAbsent(ctx, rec)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Int64("employee_id", rec.ID).Msg("Failed to cache fetched employee")
		return
	}
	if !inserted {
		log.Ctx(ctx).Debug().Int64("employee_id", rec.ID).Msg("Employee cached meanwhile, keeping cached record")
		return
	}
	log.Ctx(ctx).Info().Int64("employee_id", rec.ID).Msg("Cached employee fetched via HTTP")
}

// CachedEmployeeCount counts every cached record. Storage errors count as 0.
func (s *Service) CachedEmployeeCount(ctx context.Context) int {
	n, err := s.store.Count(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Error counting cached employees")
		return 0
	}
	log.Ctx(ctx).Debug().Int("count", n).Msg("Employee cache size")
	return n
}

// ActiveEmployeeCount counts cached records with status active. Storage errors count as 0.
func (s *Service) ActiveEmployeeCount(ctx context.Context) int {
	n, err := s.store.CountByStatus(ctx, model.EmployeeActive)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Error counting active employees")
		return 0
	}
	log.Ctx(ctx).Debug().Int("count", n).Msg("Active employees in cache")
	return n
}
