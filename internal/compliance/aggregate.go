package compliance

import (
	"time"

	dErrors "marksman/pkg/domain-errors"
)

// warningDays is the advance-warning window at the tail of each validity
// period.
const warningDays = 30

// periodEnd returns the expiration of a completion date under the kind's
// validity period: one year for the declaration form and screening, three
// months for quarterly training.
func periodEnd(kind RequirementKind, completedOn time.Time) time.Time {
	if kind == RequirementTraining {
		return completedOn.AddDate(0, 3, 0)
	}
	return completedOn.AddDate(1, 0, 0)
}

// Validate computes validity for a single requirement completion. A zero
// completion date is a caller contract violation, never silently defaulted.
func Validate(kind RequirementKind, completedOn, asOf time.Time) (Validity, error) {
	if completedOn.IsZero() {
		return Validity{}, dErrors.New(dErrors.CodeValidation, "completion date is required for "+string(kind))
	}
	expires := periodEnd(kind, completedOn)
	valid := !asOf.After(expires)
	return Validity{
		Completed: true,
		Valid:     valid,
		Warning:   valid && !asOf.Before(expires.AddDate(0, 0, -warningDays)),
		ExpiresOn: expires,
	}, nil
}

// Aggregator evaluates a person's administrative requirement set. Stateless;
// one instance serves all callers concurrently.
type Aggregator struct{}

func NewAggregator() *Aggregator { return &Aggregator{} }

// EvaluateSet derives per-requirement validity and the aggregate admin gate.
// A requirement never completed yields an invalid (red) entry rather than an
// error; the set itself is legitimate input for a person with gaps on file.
func (a *Aggregator) EvaluateSet(set RequirementSet, asOf time.Time) Assessment {
	out := Assessment{
		Declaration: validityOf(RequirementDeclaration, set.DeclarationCompletedOn, asOf),
		Screening:   validityOf(RequirementScreening, screeningAnchor(set), asOf),
		Training:    validityOf(RequirementTraining, set.TrainingCompletedOn, asOf),
	}
	out.AdminCurrent = out.Declaration.Valid && out.Screening.Valid && out.Training.Valid

	switch {
	case !out.AdminCurrent:
		out.Severity = SeverityRed
	case out.Declaration.Warning || out.Screening.Warning || out.Training.Warning:
		out.Severity = SeverityOrange
	default:
		out.Severity = SeverityGreen
	}
	return out
}

// screeningAnchor selects the date screening validity anchors to: the
// earliest screening form on file. The set's own completion field is only a
// fallback for records with no history rows.
func screeningAnchor(set RequirementSet) *time.Time {
	if len(set.ScreeningHistory) == 0 {
		return set.ScreeningCompletedOn
	}
	earliest := set.ScreeningHistory[0]
	for _, d := range set.ScreeningHistory[1:] {
		if d.Before(earliest) {
			earliest = d
		}
	}
	return &earliest
}

func validityOf(kind RequirementKind, completedOn *time.Time, asOf time.Time) Validity {
	if completedOn == nil || completedOn.IsZero() {
		return Validity{}
	}
	v, err := Validate(kind, *completedOn, asOf)
	if err != nil {
		return Validity{}
	}
	return v
}
