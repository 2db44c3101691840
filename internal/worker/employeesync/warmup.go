package employeesync

import (
	"context"
	"fmt"
	"time"

	"attendance.service/internal/adapters/employeeapi"
	"attendance.service/internal/ports/repository"
	"github.com/rs/zerolog/log"
)

const defaultWarmupPageSize = 1000

// EmployeeLister pages through the upstream employee list.
type EmployeeLister interface {
	ListEmployees(ctx context.Context, offset, limit int) ([]employeeapi.RemoteEmployee, error)
}

// WarmupResult summarizes one warm-up run.
type WarmupResult struct {
	Skipped bool
	Pages   int
	Cached  int
	Failed  int
}

// Warmup seeds an empty cache from the upstream list endpoint.
// A non-empty cache is left alone; events keep it current from there.
type Warmup struct {
	store    repository.EmployeeStore
	lister   EmployeeLister
	pageSize int
	now      func() time.Time
}

func NewWarmup(store repository.EmployeeStore, lister EmployeeLister, pageSize int) *Warmup {
	if pageSize <= 0 {
		pageSize = defaultWarmupPageSize
	}
	return &Warmup{
		store:    store,
		lister:   lister,
		pageSize: pageSize,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Run pages until a short page. Records that cannot be stored are counted and skipped;
// a failed page or count aborts the run with an error.
func (w *Warmup) Run(ctx context.Context) (WarmupResult, error) {
	var res WarmupResult

	n, err := w.store.Count(ctx)
	if err != nil {
		return res, fmt.Errorf("count cached employees: %w", err)
	}
	if n > 0 {
		log.Ctx(ctx).Info().Int("cached", n).Msg("Employee cache already populated, skipping warm-up")
		res.Skipped = true
		return res, nil
	}

	for offset := 0; ; offset += w.pageSize {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		page, err := w.lister.ListEmployees(ctx, offset, w.pageSize)
		if err != nil {
			return res, fmt.Errorf("list employees at offset %d: %w", offset, err)
		}
		res.Pages++

		for i := range page {
			rec, ok := page[i].Record(w.now())
			if !ok {
				res.Failed++
				log.Ctx(ctx).Warn().Int64("employee_id", page[i].ID).Msg("Listed employee lacks id or email, skipping")
				continue
			}
			if err := w.store.Upsert(ctx, rec); err != nil {
				res.Failed++
				log.Ctx(ctx).Error().Err(err).Int64("employee_id", rec.ID).Msg("Failed to cache listed employee")
				continue
			}
			res.Cached++
		}

		if len(page) < w.pageSize {
			break
		}
	}

	log.Ctx(ctx).Info().Int("cached", res.Cached).Int("failed", res.Failed).Int("pages", res.Pages).Msg("Employee cache warm-up finished")
	return res, nil
}
