package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"marksman/internal/compliance"
	"marksman/internal/display"
	id "marksman/pkg/domain"
	"marksman/pkg/platform/httputil"
	"marksman/pkg/requestcontext"
)

// EvaluateRequest is the wire shape for an administrative compliance check.
type EvaluateRequest struct {
	PersonID               string      `json:"person_id"`
	DeclarationCompletedOn *time.Time  `json:"declaration_completed_on,omitempty"`
	ScreeningCompletedOn   *time.Time  `json:"screening_completed_on,omitempty"`
	TrainingCompletedOn    *time.Time  `json:"training_completed_on,omitempty"`
	ScreeningHistory       []time.Time `json:"screening_history,omitempty"`
}

type validityResponse struct {
	Completed bool      `json:"completed"`
	Valid     bool      `json:"valid"`
	Warning   bool      `json:"warning"`
	ExpiresOn time.Time `json:"expires_on,omitzero"`
}

// EvaluateResponse returns per-requirement validity plus the aggregate gate.
type EvaluateResponse struct {
	Declaration  validityResponse    `json:"declaration"`
	Screening    validityResponse    `json:"screening"`
	Training     validityResponse    `json:"training"`
	AdminCurrent bool                `json:"admin_current"`
	Severity     compliance.Severity `json:"severity"`
	DisplayClass display.Class       `json:"display_class"`
}

// Handler wires the compliance endpoint to the aggregator.
type Handler struct {
	aggregator *compliance.Aggregator
	logger     *slog.Logger
}

func New(aggregator *compliance.Aggregator, logger *slog.Logger) *Handler {
	return &Handler{aggregator: aggregator, logger: logger}
}

// Register mounts compliance endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/compliance/evaluate", h.HandleEvaluate)
}

// HandleEvaluate handles POST /compliance/evaluate.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[EvaluateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	personID, err := id.ParsePersonID(req.PersonID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	assessment := h.aggregator.EvaluateSet(compliance.RequirementSet{
		PersonID:               personID,
		DeclarationCompletedOn: req.DeclarationCompletedOn,
		ScreeningCompletedOn:   req.ScreeningCompletedOn,
		TrainingCompletedOn:    req.TrainingCompletedOn,
		ScreeningHistory:       req.ScreeningHistory,
	}, requestcontext.Now(ctx))

	h.logger.InfoContext(ctx, "compliance evaluated",
		"request_id", requestID,
		"person_id", personID,
		"admin_current", assessment.AdminCurrent,
		"severity", assessment.Severity,
	)
	httputil.WriteJSON(w, http.StatusOK, EvaluateResponse{
		Declaration:  toValidity(assessment.Declaration),
		Screening:    toValidity(assessment.Screening),
		Training:     toValidity(assessment.Training),
		AdminCurrent: assessment.AdminCurrent,
		Severity:     assessment.Severity,
		DisplayClass: display.FromSeverity(assessment.Severity),
	})
}

func toValidity(v compliance.Validity) validityResponse {
	return validityResponse{
		Completed: v.Completed,
		Valid:     v.Valid,
		Warning:   v.Warning,
		ExpiresOn: v.ExpiresOn,
	}
}
