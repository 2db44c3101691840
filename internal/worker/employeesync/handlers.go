package employeesync

import (
	"context"
	"errors"
	"time"

	"attendance.service/internal/core/model"
	"attendance.service/internal/ports/messaging"
	"attendance.service/internal/ports/repository"
	"github.com/rs/zerolog/log"
)

// Dead-letter reasons.
const (
	ReasonMalformedPayload  = "malformed_payload"
	ReasonMissingEmployeeID = "missing_employee_id"
	ReasonMissingFields     = "missing_required_fields"
	ReasonEmailConflict     = "email_conflict"
	ReasonStorageError      = "storage_error"
)

// recoveryJobTitle fills job_title when an orphan update recreates a record.
const recoveryJobTitle = "Unknown"

var errMissingFields = errors.New("event lacks email, first_name or last_name")

// Handlers apply employee lifecycle events to the cache store.
// They never return errors: failures are logged and, when a sink is configured,
// the offending event is dead-lettered.
type Handlers struct {
	store repository.EmployeeStore
	dlq   messaging.DeadLetterSink
	now   func() time.Time
}

// NewHandlers creates the handler set. dlq may be nil.
func NewHandlers(store repository.EmployeeStore, dlq messaging.DeadLetterSink) *Handlers {
	return &Handlers{
		store: store,
		dlq:   dlq,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Handle dispatches ev to the handler for its topic.
func (h *Handlers) Handle(ctx context.Context, ev Event) {
	switch ev.Topic {
	case messaging.TopicEmployeeCreated:
		h.HandleCreated(ctx, ev)
	case messaging.TopicEmployeeUpdated:
		h.HandleUpdated(ctx, ev)
	case messaging.TopicEmployeeDeleted:
		h.HandleDeleted(ctx, ev)
	case messaging.TopicEmployeeTerminated:
		h.HandleTerminated(ctx, ev)
	case messaging.TopicEmployeeSuspended:
		h.HandleSuspended(ctx, ev)
	case messaging.TopicEmployeeActivated:
		h.HandleActivated(ctx, ev)
	default:
		log.Ctx(ctx).Error().Str("topic", ev.Topic).Msg("No handler registered for topic")
	}
}

// HandleCreated inserts the employee as active, or overwrites it in place on a duplicate create.
func (h *Handlers) HandleCreated(ctx context.Context, ev Event) {
	h.run(ctx, ev, func(ctx context.Context, id int64) (string, error) {
		data := ev.Data
		if data.str("email") == "" {
			return ReasonMissingFields, errMissingFields
		}

		now := h.now()
		rec := &model.EmployeeCacheRecord{
			ID:             id,
			UserID:         data.int64Ptr("user_id"),
			Email:          data.str("email"),
			FirstName:      data.str("first_name"),
			LastName:       data.str("last_name"),
			Role:           data.strOr("role", model.DefaultRole),
			JobTitle:       data.strOr("job_title", ""),
			Department:     data.strPtr("department"),
			Team:           data.strPtr("team"),
			ManagerID:      data.int64Ptr("manager_id"),
			EmploymentType: data.strOr("employment_type", model.DefaultEmploymentType),
			Status:         model.EmployeeActive,
			JoiningDate:    joiningDate(ctx, data),
			CreatedAt:      now,
			UpdatedAt:      now,
			SyncedAt:       now,
		}
		rec.FullName = model.FullName(rec.FirstName, rec.LastName)

		existing, err := h.store.GetByID(ctx, id)
		switch {
		case err == nil:
			log.Ctx(ctx).Warn().Int64("employee_id", id).Msg("Employee already exists in cache, updating instead")
			rec.CreatedAt = existing.CreatedAt
		case !errors.Is(err, repository.ErrEmployeeNotFound):
			return ReasonStorageError, err
		}

		if err := h.store.Upsert(ctx, rec); err != nil {
			return storageReason(err), err
		}
		log.Ctx(ctx).Info().Int64("employee_id", id).Str("email", rec.Email).Msg("Employee cached from created event")
		return "", nil
	})
}

// HandleUpdated applies the change set in data.updated_fields. An update for an
// unknown employee recreates it when the event carries email and both names.
func (h *Handlers) HandleUpdated(ctx context.Context, ev Event) {
	h.run(ctx, ev, func(ctx context.Context, id int64) (string, error) {
		rec, err := h.store.GetByID(ctx, id)
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return h.recoverCreate(ctx, id, ev)
		}
		if err != nil {
			return ReasonStorageError, err
		}

		applyChanges(ctx, rec, ev.UpdatedFields())
		now := h.now()
		rec.UpdatedAt = now
		rec.SyncedAt = now

		if err := h.store.Upsert(ctx, rec); err != nil {
			return storageReason(err), err
		}
		log.Ctx(ctx).Info().Int64("employee_id", id).Msg("Employee cache updated")
		return "", nil
	})
}

func (h *Handlers) recoverCreate(ctx context.Context, id int64, ev Event) (string, error) {
	log.Ctx(ctx).Warn().Int64("employee_id", id).Msg("Employee not found in cache, attempting to create from update event")

	data := ev.Data.merged(ev.UpdatedFields())
	email, first, last := data.str("email"), data.str("first_name"), data.str("last_name")
	if email == "" || first == "" || last == "" {
		log.Ctx(ctx).Warn().Int64("employee_id", id).Msg("Update event lacks email or names, dropping it")
		return "", nil
	}

	now := h.now()
	rec := &model.EmployeeCacheRecord{
		ID:             id,
		UserID:         data.int64Ptr("user_id"),
		Email:          email,
		FirstName:      first,
		LastName:       last,
		FullName:       model.FullName(first, last),
		Role:           data.strOr("role", model.DefaultRole),
		JobTitle:       data.strOr("job_title", recoveryJobTitle),
		Department:     data.strPtr("department"),
		Team:           data.strPtr("team"),
		ManagerID:      data.int64Ptr("manager_id"),
		EmploymentType: data.strOr("employment_type", model.DefaultEmploymentType),
		Status:         model.EmployeeActive,
		JoiningDate:    joiningDate(ctx, data),
		CreatedAt:      now,
		UpdatedAt:      now,
		SyncedAt:       now,
	}
	if err := h.store.Upsert(ctx, rec); err != nil {
		return storageReason(err), err
	}
	log.Ctx(ctx).Info().Int64("employee_id", id).Msg("Created missing employee cache from update event")
	return "", nil
}

// applyChanges copies every field named in changes onto rec.
func applyChanges(ctx context.Context, rec *model.EmployeeCacheRecord, changes payload) {
	if changes.has("email") {
		if email := changes.str("email"); email != "" {
			rec.Email = email
		} else {
			log.Ctx(ctx).Warn().Int64("employee_id", rec.ID).Msg("Ignoring empty email in update")
		}
	}
	if changes.has("first_name") || changes.has("last_name") {
		if changes.has("first_name") {
			rec.FirstName = changes.str("first_name")
		}
		if changes.has("last_name") {
			rec.LastName = changes.str("last_name")
		}
		rec.FullName = model.FullName(rec.FirstName, rec.LastName)
	}
	if changes.has("role") {
		rec.Role = changes.str("role")
	}
	if changes.has("job_title") {
		rec.JobTitle = changes.str("job_title")
	}
	if changes.has("department") {
		rec.Department = changes.strPtr("department")
	}
	if changes.has("team") {
		rec.Team = changes.strPtr("team")
	}
	if changes.has("manager_id") {
		rec.ManagerID = changes.int64Ptr("manager_id")
	}
	if changes.has("employment_type") {
		rec.EmploymentType = changes.str("employment_type")
	}
	if changes.has("user_id") {
		rec.UserID = changes.int64Ptr("user_id")
	}
	if changes.has("joining_date") {
		rec.JoiningDate = joiningDate(ctx, changes)
	}
	if changes.has("status") {
		status := model.EmployeeStatus(changes.str("status"))
		if status.Valid() {
			rec.Status = status
		} else {
			log.Ctx(ctx).Warn().Int64("employee_id", rec.ID).Str("status", string(status)).Msg("Ignoring unknown status in update")
		}
	}
}

// HandleDeleted soft-deletes the employee; history keeps referencing the id.
func (h *Handlers) HandleDeleted(ctx context.Context, ev Event) {
	h.setStatus(ctx, ev, model.EmployeeDeleted)
}

func (h *Handlers) HandleTerminated(ctx context.Context, ev Event) {
	h.setStatus(ctx, ev, model.EmployeeTerminated)
}

func (h *Handlers) HandleSuspended(ctx context.Context, ev Event) {
	h.setStatus(ctx, ev, model.EmployeeSuspended)
}

func (h *Handlers) HandleActivated(ctx context.Context, ev Event) {
	h.setStatus(ctx, ev, model.EmployeeActive)
}

func (h *Handlers) setStatus(ctx context.Context, ev Event, status model.EmployeeStatus) {
	h.run(ctx, ev, func(ctx context.Context, id int64) (string, error) {
		err := h.store.SetStatus(ctx, id, status, h.now())
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			log.Ctx(ctx).Warn().Int64("employee_id", id).Str("status", string(status)).Msg("Employee not found in cache, nothing to change")
			return "", nil
		}
		if err != nil {
			return storageReason(err), err
		}
		log.Ctx(ctx).Info().Int64("employee_id", id).Str("status", string(status)).Msg("Employee status changed in cache")
		return "", nil
	})
}

// run extracts the employee id, calls apply and dead-letters any failure it reports.
func (h *Handlers) run(ctx context.Context, ev Event, apply func(ctx context.Context, id int64) (reason string, err error)) {
	l := log.Ctx(ctx).With().Str("topic", ev.Topic).Logger()
	ctx = l.WithContext(ctx)

	id, ok := ev.EmployeeID()
	if !ok {
		log.Ctx(ctx).Error().Msg("Employee event missing employee_id")
		h.deadLetter(ctx, ev, ReasonMissingEmployeeID, nil)
		return
	}
	log.Ctx(ctx).Info().Int64("employee_id", id).Msg("Processing employee event")

	reason, err := apply(ctx, id)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Int64("employee_id", id).Str("reason", reason).Msg("Error handling employee event")
		h.deadLetter(ctx, ev, reason, err)
	}
}

func (h *Handlers) deadLetter(ctx context.Context, ev Event, reason string, cause error) {
	if h.dlq == nil {
		return
	}
	dl := messaging.NewDeadLetter(ev.Topic, ev.MessageID, reason, cause, ev.Body, h.now())
	if err := h.dlq.SendDeadLetter(ctx, dl); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("reason", reason).Msg("Failed to dead-letter employee event")
	}
}

func storageReason(err error) string {
	if errors.Is(err, repository.ErrEmailConflict) {
		return ReasonEmailConflict
	}
	return ReasonStorageError
}

// joiningDate reads data.joining_date; unparsable values are dropped with a warning.
func joiningDate(ctx context.Context, data payload) *time.Time {
	raw, ok := data["joining_date"]
	if !ok || raw == nil {
		return nil
	}
	s, isString := raw.(string)
	if isString {
		if t, err := model.ParseJoiningDate(s); err == nil {
			return &t
		}
	}
	log.Ctx(ctx).Warn().Interface("joining_date", raw).Msg("Could not parse date")
	return nil
}
