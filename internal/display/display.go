// Package display maps evaluator and aggregator output to the
// toolkit-neutral display class consumed by the presentation layer. The UI
// owns the enum-to-color mapping; no brush or color object crosses this
// boundary.
package display

import (
	"marksman/internal/compliance"
	"marksman/internal/qualification"
)

// Class is the display classification for one row.
type Class string

const (
	ClassCurrent       Class = "current"
	ClassWarning       Class = "warning"
	ClassOverdue       Class = "overdue"
	ClassNotApplicable Class = "not_applicable"
)

// FromQualification derives the class for a qualification status.
// Precedence: disqualified over sustainment-due over the 30-day expiration
// warning; otherwise current.
func FromQualification(st qualification.Status) Class {
	switch {
	case st.Disqualified:
		return ClassOverdue
	case st.SustainmentDue:
		return ClassWarning
	case st.DaysUntilExpiration <= qualification.ExpirationWarningDays:
		return ClassWarning
	default:
		return ClassCurrent
	}
}

// FromGated applies the cross-cutting admin gate on top of a qualification's
// own class. An admin-blocked row displays overdue regardless of how current
// the weapon qualification itself is.
func FromGated(st qualification.Status, admin compliance.Assessment) Class {
	if admin.Blocks() {
		return ClassOverdue
	}
	return FromQualification(st)
}

// FromSeverity derives the class for the aggregate admin row.
func FromSeverity(sev compliance.Severity) Class {
	switch sev {
	case compliance.SeverityGreen:
		return ClassCurrent
	case compliance.SeverityOrange:
		return ClassWarning
	case compliance.SeverityRed:
		return ClassOverdue
	default:
		return ClassNotApplicable
	}
}
