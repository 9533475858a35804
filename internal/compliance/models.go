package compliance

import (
	"time"

	id "marksman/pkg/domain"
)

// RequirementKind names one administrative requirement tracked per person.
type RequirementKind string

const (
	RequirementDeclaration RequirementKind = "declaration_form"
	RequirementScreening   RequirementKind = "screening"
	RequirementTraining    RequirementKind = "quarterly_training"
)

// RequirementSet is the per-person administrative record. Upserted
// replace-on-save by the persistence collaborator. Each kind carries at most
// one current completion date; screening additionally tracks the full history
// of screening forms on file.
type RequirementSet struct {
	PersonID id.PersonID

	DeclarationCompletedOn *time.Time
	ScreeningCompletedOn   *time.Time
	TrainingCompletedOn    *time.Time

	// ScreeningHistory holds every screening form date on file. Validity
	// anchors to the EARLIEST entry, not the latest; renewals do not reset
	// the window. This is deliberate renewal-window design, not a bug.
	ScreeningHistory []time.Time
}

// Validity is the derived state of one requirement.
type Validity struct {
	Completed bool
	Valid     bool
	Warning   bool
	ExpiresOn time.Time
}

// Severity is the aggregate admin severity consumed by the display mapper.
type Severity string

const (
	SeverityGreen  Severity = "green"
	SeverityOrange Severity = "orange"
	SeverityRed    Severity = "red"
)

// Assessment combines per-requirement validity with the aggregate gate.
type Assessment struct {
	Declaration Validity
	Screening   Validity
	Training    Validity

	// AdminCurrent is a strict AND over the three requirements. There is no
	// partial-credit state.
	AdminCurrent bool
	Severity     Severity
}

// Blocks reports whether this assessment admin-blocks an otherwise-current
// weapon qualification. The gate is cross-cutting: it applies independent of
// the qualification's own status.
func (a Assessment) Blocks() bool { return !a.AdminCurrent }
