package handler

import (
	"time"

	"marksman/internal/display"
	"marksman/internal/qualification"
)

// EvaluateResponse returns the derived status snapshot plus the display class
// the presentation layer renders from.
type EvaluateResponse struct {
	Qualified      bool `json:"qualified"`
	Disqualified   bool `json:"disqualified"`
	SustainmentDue bool `json:"sustainment_due"`
	ScoreWaived    bool `json:"score_waived"`

	ExpiresOn           time.Time `json:"expires_on"`
	DaysUntilExpiration int       `json:"days_until_expiration"`

	SustainmentDueOn     time.Time `json:"sustainment_due_on"`
	DaysUntilSustainment int       `json:"days_until_sustainment"`

	LapsesOn time.Time `json:"lapses_on"`

	AdminBlocked bool          `json:"admin_blocked"`
	DisplayClass display.Class `json:"display_class"`
}

func fromStatus(st qualification.Status, adminBlocked bool, class display.Class) EvaluateResponse {
	return EvaluateResponse{
		Qualified:            st.Qualified,
		Disqualified:         st.Disqualified,
		SustainmentDue:       st.SustainmentDue,
		ScoreWaived:          st.ScoreWaived,
		ExpiresOn:            st.ExpiresOn,
		DaysUntilExpiration:  st.DaysUntilExpiration,
		SustainmentDueOn:     st.SustainmentDueOn,
		DaysUntilSustainment: st.DaysUntilSustainment,
		LapsesOn:             st.LapsesOn,
		AdminBlocked:         adminBlocked,
		DisplayClass:         class,
	}
}
