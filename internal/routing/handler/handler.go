package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"marksman/internal/routing"
	id "marksman/pkg/domain"
	dErrors "marksman/pkg/domain-errors"
	"marksman/pkg/platform/httputil"
	"marksman/pkg/requestcontext"
)

// Service defines the workflow operations the handler exposes.
type Service interface {
	Enqueue(ctx context.Context, req routing.EnqueueRequest) (*routing.Item, error)
	Claim(ctx context.Context, itemID id.QueueItemID, userID id.UserID, roles []routing.Role) (*routing.Item, error)
	RecordAction(ctx context.Context, itemID id.QueueItemID, userID id.UserID, note string) (*routing.Item, error)
	Release(ctx context.Context, itemID id.QueueItemID, userID id.UserID) (*routing.Item, error)
	Cancel(ctx context.Context, itemID id.QueueItemID, userID id.UserID, note string) (*routing.Item, error)
	Inbox(ctx context.Context, filter routing.Filter) ([]*routing.Item, error)
	Get(ctx context.Context, itemID id.QueueItemID) (*routing.Item, error)
}

// Handler wires signature-routing endpoints to the workflow service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts routing endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/routing/items", h.HandleEnqueue)
	r.Get("/routing/items/{itemID}", h.HandleGet)
	r.Post("/routing/items/{itemID}/claim", h.HandleClaim)
	r.Post("/routing/items/{itemID}/action", h.HandleRecordAction)
	r.Post("/routing/items/{itemID}/release", h.HandleRelease)
	r.Post("/routing/items/{itemID}/cancel", h.HandleCancel)
	r.Get("/routing/inbox", h.HandleInbox)
}

// HandleEnqueue handles POST /routing/items.
func (h *Handler) HandleEnqueue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[EnqueueRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	documentID, err := id.ParseDocumentID(req.DocumentID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	personID, err := parsePersonID(req.PersonID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	item, err := h.service.Enqueue(ctx, routing.EnqueueRequest{
		Document:      documentID,
		FormType:      req.FormType,
		PersonID:      personID,
		RequiredRoles: stringsToRoles(req.RequiredRoles),
	})
	if err != nil {
		h.logError(ctx, "enqueue failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, fromItem(item))
}

// HandleGet handles GET /routing/items/{itemID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	itemID, err := id.ParseQueueItemID(chi.URLParam(r, "itemID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	item, err := h.service.Get(ctx, itemID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromItem(item))
}

// HandleClaim handles POST /routing/items/{itemID}/claim. The claimant's
// roles come from the authenticated token, not the request body.
func (h *Handler) HandleClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	itemID, err := id.ParseQueueItemID(chi.URLParam(r, "itemID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	item, err := h.service.Claim(ctx, itemID, userID, stringsToRoles(requestcontext.Roles(ctx)))
	if err != nil {
		h.logError(ctx, "claim failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromItem(item))
}

// HandleRecordAction handles POST /routing/items/{itemID}/action.
func (h *Handler) HandleRecordAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	itemID, err := id.ParseQueueItemID(chi.URLParam(r, "itemID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[ActionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	item, err := h.service.RecordAction(ctx, itemID, userID, req.Note)
	if err != nil {
		h.logError(ctx, "record action failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromItem(item))
}

// HandleRelease handles POST /routing/items/{itemID}/release.
func (h *Handler) HandleRelease(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	itemID, err := id.ParseQueueItemID(chi.URLParam(r, "itemID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	item, err := h.service.Release(ctx, itemID, userID)
	if err != nil {
		h.logError(ctx, "release failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromItem(item))
}

// HandleCancel handles POST /routing/items/{itemID}/cancel.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	itemID, err := id.ParseQueueItemID(chi.URLParam(r, "itemID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[ActionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	item, err := h.service.Cancel(ctx, itemID, userID, req.Note)
	if err != nil {
		h.logError(ctx, "cancel failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromItem(item))
}

// HandleInbox handles GET /routing/inbox?role=&status=&form_type=.
func (h *Handler) HandleInbox(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	items, err := h.service.Inbox(ctx, routing.Filter{
		Role:     routing.Role(r.URL.Query().Get("role")),
		Status:   routing.Status(r.URL.Query().Get("status")),
		FormType: r.URL.Query().Get("form_type"),
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"items": fromItems(items)})
}

func (h *Handler) requireUser(w http.ResponseWriter, ctx context.Context) (id.UserID, bool) {
	userID := requestcontext.UserID(ctx)
	if userID.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.UserID{}, false
	}
	return userID, true
}

func (h *Handler) logError(ctx context.Context, msg, requestID string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", requestID,
		"code", dErrors.CodeOf(err),
		"error", err,
	)
}
