package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"marksman/internal/compliance"
	"marksman/internal/display"
	"marksman/internal/qualification"
	"marksman/internal/qualification/metrics"
	"marksman/pkg/platform/httputil"
	"marksman/pkg/requestcontext"
)

// Handler wires the qualification evaluation endpoint to the evaluator and
// aggregator. Both are pure; the handler owns decode, clock, and logging.
type Handler struct {
	evaluator  *qualification.Evaluator
	aggregator *compliance.Aggregator
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

func New(evaluator *qualification.Evaluator, aggregator *compliance.Aggregator, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		evaluator:  evaluator,
		aggregator: aggregator,
		logger:     logger,
		metrics:    m,
	}
}

// Register mounts qualification endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/qualifications/evaluate", h.HandleEvaluate)
}

// HandleEvaluate handles POST /qualifications/evaluate.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[EvaluateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rec, err := req.ToRecord()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	asOf := requestcontext.Now(ctx)
	st, err := h.evaluator.Evaluate(rec, asOf)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.metrics.Observe(outcome(st))

	adminBlocked := false
	class := display.FromQualification(st)
	if set := req.ToRequirementSet(rec.PersonID); set != nil {
		assessment := h.aggregator.EvaluateSet(*set, asOf)
		adminBlocked = assessment.Blocks()
		class = display.FromGated(st, assessment)
	}

	h.logger.InfoContext(ctx, "qualification evaluated",
		"request_id", requestID,
		"person_id", rec.PersonID,
		"weapon", rec.Weapon,
		"category", rec.Category.String(),
		"display_class", class,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, fromStatus(st, adminBlocked, class))
}

func outcome(st qualification.Status) string {
	switch {
	case st.Disqualified:
		return "disqualified"
	case st.SustainmentDue:
		return "sustainment_due"
	default:
		return "current"
	}
}
