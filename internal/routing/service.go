package routing

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"marksman/internal/audit"
	"marksman/internal/routing/metrics"
	id "marksman/pkg/domain"
	dErrors "marksman/pkg/domain-errors"
	"marksman/pkg/platform/sentinel"
	"marksman/pkg/requestcontext"
)

// AuditPublisher records workflow actions for the compliance trail.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// ClaimLease coordinates claim attempts across service instances before they
// reach the store's conditional update. Optional.
type ClaimLease interface {
	Acquire(ctx context.Context, itemID id.QueueItemID, userID id.UserID) (bool, error)
	Release(ctx context.Context, itemID id.QueueItemID, userID id.UserID) error
}

// EnqueueRequest carries everything the form-ingestion collaborator resolves
// before a document enters routing.
type EnqueueRequest struct {
	Document      id.DocumentID
	FormType      string
	PersonID      *id.PersonID
	RequiredRoles []Role
}

// Service owns routing-queue item state transitions and claim exclusivity.
// All operations are short and non-blocking; transitions happen only in
// response to an explicit caller action.
type Service struct {
	store   Store
	lease   ClaimLease
	audit   AuditPublisher
	metrics *metrics.Metrics
	logger  *slog.Logger
	tracer  trace.Tracer
}

func NewService(store Store, lease ClaimLease, auditor AuditPublisher, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		lease:   lease,
		audit:   auditor,
		metrics: m,
		logger:  logger,
		tracer:  otel.Tracer("marksman/routing"),
	}
}

// Enqueue creates a queue item for a recognized document. The current role
// starts at the first required role and the item waits in Pending.
func (s *Service) Enqueue(ctx context.Context, req EnqueueRequest) (*Item, error) {
	ctx, span := s.tracer.Start(ctx, "routing.Enqueue")
	defer span.End()

	if req.Document.IsZero() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "document id is required")
	}
	if req.FormType == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "form type is required")
	}
	roles := dedupeRoles(req.RequiredRoles)
	if len(roles) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "at least one required role is needed")
	}

	now := requestcontext.Now(ctx)
	item := &Item{
		ID:            id.NewQueueItemID(),
		Document:      req.Document,
		FormType:      req.FormType,
		PersonID:      req.PersonID,
		Status:        StatusPending,
		RequiredRoles: roles,
		CurrentRole:   roles[0],
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Create(ctx, item); err != nil {
		return nil, s.translate(err)
	}
	s.metrics.Enqueued.Inc()
	s.emit(ctx, audit.Event{
		Action:   audit.ActionEnqueued,
		Subject:  item.ID.String(),
		Document: item.Document.String(),
		FormType: item.FormType,
		Role:     string(item.CurrentRole),
	})
	return item, nil
}

// Claim takes the exclusive claim for userID. The caller's roles must include
// the role the item is currently waiting on; required-roles order is
// authoritative, so holding a later role in the chain does not make a caller
// eligible yet.
func (s *Service) Claim(ctx context.Context, itemID id.QueueItemID, userID id.UserID, roles []Role) (*Item, error) {
	ctx, span := s.tracer.Start(ctx, "routing.Claim")
	defer span.End()

	if userID.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	item, err := s.store.Get(ctx, itemID)
	if err != nil {
		return nil, s.translate(err)
	}
	if item.Status.Terminal() {
		return nil, dErrors.New(dErrors.CodeInvalidState, "item is "+string(item.Status))
	}
	if !slices.Contains(roles, item.CurrentRole) {
		return nil, dErrors.New(dErrors.CodeRoleNotEligible, "caller does not hold role "+string(item.CurrentRole))
	}

	if s.lease != nil {
		ok, err := s.lease.Acquire(ctx, itemID, userID)
		switch {
		case errors.Is(err, sentinel.ErrUnavailable):
			// The lease only short-circuits contention; the store's
			// conditional claim stays authoritative, so an unreachable
			// lease backend degrades rather than blocking claims.
			s.logger.WarnContext(ctx, "claim lease unavailable, falling back to store", "item_id", itemID, "error", err)
		case err != nil:
			return nil, dErrors.Wrap(dErrors.CodeInternal, "claim coordination failed", err)
		case !ok:
			s.metrics.ClaimConflicts.Inc()
			return nil, dErrors.New(dErrors.CodeAlreadyClaimed, "item is claimed by another user")
		}
	}

	claimed, err := s.store.Claim(ctx, itemID, userID, requestcontext.Now(ctx))
	if err != nil {
		s.releaseLease(ctx, itemID, userID)
		if errors.Is(err, sentinel.ErrConflict) {
			s.metrics.ClaimConflicts.Inc()
			return nil, dErrors.New(dErrors.CodeAlreadyClaimed, "item is claimed by another user")
		}
		return nil, s.translate(err)
	}
	s.metrics.Claims.Inc()
	s.emit(ctx, audit.Event{
		Actor:   userID.String(),
		Action:  audit.ActionClaimed,
		Subject: claimed.ID.String(),
		Role:    string(claimed.CurrentRole),
	})
	return claimed, nil
}

// RecordAction signs off the current role. Only the claim holder may act. The
// current role joins the completed set, the pointer advances past any roles
// already satisfied out of order, the claim clears, and the item completes
// when no required role remains.
func (s *Service) RecordAction(ctx context.Context, itemID id.QueueItemID, userID id.UserID, note string) (*Item, error) {
	ctx, span := s.tracer.Start(ctx, "routing.RecordAction")
	defer span.End()

	item, err := s.store.Get(ctx, itemID)
	if err != nil {
		return nil, s.translate(err)
	}
	if item.Status.Terminal() {
		return nil, dErrors.New(dErrors.CodeInvalidState, "item is "+string(item.Status))
	}
	if !item.ClaimedByUser(userID) {
		return nil, dErrors.New(dErrors.CodeNotClaimed, "caller does not hold the claim")
	}

	updated := item.Clone()
	acted := updated.CurrentRole
	updated.CompletedRoles = append(updated.CompletedRoles, acted)
	updated.ClaimedBy = nil
	updated.ClaimedAt = nil
	updated.LastActionNote = note
	updated.UpdatedAt = requestcontext.Now(ctx)
	if next, ok := updated.NextRole(); ok {
		updated.CurrentRole = next
		updated.Status = StatusPending
	} else {
		updated.CurrentRole = ""
		updated.Status = StatusCompleted
	}

	if err := s.store.Update(ctx, updated, item.UpdatedAt); err != nil {
		return nil, s.translate(err)
	}
	s.releaseLease(ctx, itemID, userID)
	s.metrics.Actions.Inc()
	if updated.Status == StatusCompleted {
		s.metrics.Completed.Inc()
	}
	s.emit(ctx, audit.Event{
		Actor:   userID.String(),
		Action:  audit.ActionRecorded,
		Subject: updated.ID.String(),
		Role:    string(acted),
		Note:    note,
	})
	return updated, nil
}

// Release clears the claim without advancing the chain.
func (s *Service) Release(ctx context.Context, itemID id.QueueItemID, userID id.UserID) (*Item, error) {
	ctx, span := s.tracer.Start(ctx, "routing.Release")
	defer span.End()

	item, err := s.store.Get(ctx, itemID)
	if err != nil {
		return nil, s.translate(err)
	}
	if !item.ClaimedByUser(userID) {
		return nil, dErrors.New(dErrors.CodeNotClaimed, "caller does not hold the claim")
	}

	updated := item.Clone()
	updated.ClaimedBy = nil
	updated.ClaimedAt = nil
	updated.Status = StatusPending
	updated.UpdatedAt = requestcontext.Now(ctx)
	if err := s.store.Update(ctx, updated, item.UpdatedAt); err != nil {
		return nil, s.translate(err)
	}
	s.releaseLease(ctx, itemID, userID)
	s.emit(ctx, audit.Event{
		Actor:   userID.String(),
		Action:  audit.ActionReleased,
		Subject: updated.ID.String(),
		Role:    string(updated.CurrentRole),
	})
	return updated, nil
}

// Cancel terminates routing from any non-terminal state.
func (s *Service) Cancel(ctx context.Context, itemID id.QueueItemID, userID id.UserID, note string) (*Item, error) {
	ctx, span := s.tracer.Start(ctx, "routing.Cancel")
	defer span.End()

	item, err := s.store.Get(ctx, itemID)
	if err != nil {
		return nil, s.translate(err)
	}
	if item.Status.Terminal() {
		return nil, dErrors.New(dErrors.CodeInvalidState, "item is "+string(item.Status))
	}

	holder := item.ClaimedBy
	updated := item.Clone()
	updated.Status = StatusCancelled
	updated.ClaimedBy = nil
	updated.ClaimedAt = nil
	updated.LastActionNote = note
	updated.UpdatedAt = requestcontext.Now(ctx)
	if err := s.store.Update(ctx, updated, item.UpdatedAt); err != nil {
		return nil, s.translate(err)
	}
	if holder != nil {
		s.releaseLease(ctx, itemID, *holder)
	}
	s.metrics.Cancelled.Inc()
	s.emit(ctx, audit.Event{
		Actor:   userID.String(),
		Action:  audit.ActionCancelled,
		Subject: updated.ID.String(),
		Note:    note,
	})
	return updated, nil
}

// Inbox is a read-only filtered view of the queue. No mutation.
func (s *Service) Inbox(ctx context.Context, filter Filter) ([]*Item, error) {
	ctx, span := s.tracer.Start(ctx, "routing.Inbox")
	defer span.End()
	items, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, s.translate(err)
	}
	return items, nil
}

// Get returns one item by id.
func (s *Service) Get(ctx context.Context, itemID id.QueueItemID) (*Item, error) {
	item, err := s.store.Get(ctx, itemID)
	if err != nil {
		return nil, s.translate(err)
	}
	return item, nil
}

// translate maps store sentinels to domain errors; persistence failures pass
// through wrapped so the caller sees them unchanged in kind.
func (s *Service) translate(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "queue item not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "queue item conflict")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.New(dErrors.CodeInvalidState, "item state does not allow this operation")
	default:
		return dErrors.Wrap(dErrors.CodeInternal, "routing store failure", err)
	}
}

func (s *Service) releaseLease(ctx context.Context, itemID id.QueueItemID, userID id.UserID) {
	if s.lease == nil {
		return
	}
	if err := s.lease.Release(ctx, itemID, userID); err != nil {
		s.logger.WarnContext(ctx, "claim lease release failed", "item_id", itemID, "error", err)
	}
}

// emit is best-effort: a failed audit append never rolls back a completed
// queue mutation.
func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", event.Action, "subject", event.Subject, "error", err)
	}
}

func dedupeRoles(roles []Role) []Role {
	seen := make(map[Role]struct{}, len(roles))
	out := make([]Role, 0, len(roles))
	for _, r := range roles {
		if r == "" {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
