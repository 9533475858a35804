package qualification

import (
	"time"

	dErrors "marksman/pkg/domain-errors"
)

const (
	// lapseDays is the sustainment window: a record with no sustainment
	// event lapses after this many days (rounded out to month start).
	lapseDays = 240

	// sustainedValidityDays extends a sustained record's validity, measured
	// from the original qualifying date.
	sustainedValidityDays = 365

	// ExpirationWarningDays is the advance-warning threshold on the hard
	// expiration date. Display-only; it never changes qualification state.
	ExpirationWarningDays = 30

	// defaultSustainmentDays is the CAT II sustainment-due threshold, used
	// for every category unless the policy overrides it.
	defaultSustainmentDays = 120
)

// SustainmentPolicy maps categories to their sustainment-due threshold in
// days. Kept configurable per category rather than a single hardcoded
// constant so tier-specific windows can diverge without code changes.
type SustainmentPolicy map[Category]int

// DefaultSustainmentPolicy returns the standing thresholds.
func DefaultSustainmentPolicy() SustainmentPolicy {
	return SustainmentPolicy{
		CategoryI:   defaultSustainmentDays,
		CategoryII:  defaultSustainmentDays,
		CategoryIII: defaultSustainmentDays,
		CategoryIV:  defaultSustainmentDays,
	}
}

// Days returns the threshold for a category, falling back to the default for
// categories the policy does not name.
func (p SustainmentPolicy) Days(c Category) int {
	if d, ok := p[c]; ok && d > 0 {
		return d
	}
	return defaultSustainmentDays
}

// Evaluator computes currency status snapshots. It holds no per-record state;
// one instance serves all callers concurrently.
type Evaluator struct {
	policy SustainmentPolicy
}

// NewEvaluator builds an evaluator. A nil policy selects the defaults.
func NewEvaluator(policy SustainmentPolicy) *Evaluator {
	if policy == nil {
		policy = DefaultSustainmentPolicy()
	}
	return &Evaluator{policy: policy}
}

// Evaluate derives the Status for one record as of the given instant. Pure:
// identical inputs always produce identical output.
//
// An absent qualifying date is a caller contract violation and is rejected
// before any computation. Missing or out-of-band scores are NOT errors; they
// map to a non-qualified result.
func (e *Evaluator) Evaluate(rec Record, asOf time.Time) (Status, error) {
	if rec.DateQualified.IsZero() {
		return Status{}, dErrors.New(dErrors.CodeValidation, "date qualified is required")
	}

	pass, waived := e.scorePass(rec)

	expires := rec.DateQualified.AddDate(1, 0, 0)

	lapseAnchor := rec.DateQualified.AddDate(0, 0, lapseDays)
	if rec.Sustainment != nil {
		lapseAnchor = rec.DateQualified.AddDate(0, 0, sustainedValidityDays)
	}
	lapsesOn := firstOfMonthAfter(lapseAnchor)

	// The due window measures from the qualifying date, or from the
	// sustainment date once a sustainment event is on file.
	sustainAnchor := rec.DateQualified
	if rec.Sustainment != nil {
		sustainAnchor = rec.Sustainment.Date
	}
	dueOn := sustainAnchor.AddDate(0, 0, e.policy.Days(rec.Category))

	st := Status{
		ScoreWaived:          waived,
		ExpiresOn:            expires,
		DaysUntilExpiration:  daysBetween(asOf, expires),
		SustainmentDueOn:     dueOn,
		DaysUntilSustainment: daysBetween(asOf, dueOn),
		LapsesOn:             lapsesOn,
	}

	switch {
	case !pass:
		st.Disqualified = true
	case !asOf.Before(lapsesOn):
		st.Disqualified = true
	case !asOf.Before(dueOn):
		st.Qualified = true
		st.SustainmentDue = true
	default:
		st.Qualified = true
	}
	return st, nil
}

// scorePass checks every required sub-course against its band. The
// qualified-underway flag waives the CAT II course-of-fire component (the
// practical course) as a score waiver only; it does not move any window.
func (e *Evaluator) scorePass(rec Record) (pass, waived bool) {
	reqs := Requirements(rec.Weapon, rec.Category)
	if len(reqs) == 0 {
		return false, false
	}
	for _, req := range reqs {
		if rec.QualifiedUnderway && rec.Weapon == WeaponHandgun &&
			rec.Category == CategoryII && req.Course == SubCoursePractical {
			waived = true
			continue
		}
		score, ok := rec.Scores[req.Course]
		if !ok || !req.Band.Contains(score) {
			return false, waived
		}
	}
	return true, waived
}

// NeedingSustainment filters a person's records down to those currently
// qualified but inside the sustainment-due window, using the per-category
// thresholds. Records with validation problems are skipped rather than
// failing the sweep.
func (e *Evaluator) NeedingSustainment(recs []Record, asOf time.Time) []Record {
	var out []Record
	for _, rec := range recs {
		st, err := e.Evaluate(rec, asOf)
		if err != nil {
			continue
		}
		if st.Qualified && st.SustainmentDue {
			out = append(out, rec)
		}
	}
	return out
}

// firstOfMonthAfter returns midnight on the first day of the calendar month
// following t.
func firstOfMonthAfter(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location())
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
