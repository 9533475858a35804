package handler

import (
	"time"

	"marksman/internal/compliance"
	"marksman/internal/qualification"
	id "marksman/pkg/domain"
	dErrors "marksman/pkg/domain-errors"
)

// EvaluateRequest is the wire shape for a qualification evaluation. The
// optional admin block carries the person's administrative requirement set so
// the response can apply the cross-cutting admin gate in the same round trip.
type EvaluateRequest struct {
	PersonID          string         `json:"person_id"`
	Weapon            string         `json:"weapon"`
	Category          int            `json:"category"`
	DateQualified     time.Time      `json:"date_qualified"`
	LiveFireSession   string         `json:"live_fire_session,omitempty"`
	Scores            map[string]int `json:"scores"`
	Sustainment       *Sustainment   `json:"sustainment,omitempty"`
	QualifiedUnderway bool           `json:"qualified_underway"`

	Admin *AdminSet `json:"admin,omitempty"`
}

// Sustainment is one sustainment live-fire event attached to the record.
type Sustainment struct {
	Date  time.Time `json:"date"`
	Score int       `json:"score"`
}

// AdminSet mirrors the person's administrative requirement set on the wire.
type AdminSet struct {
	DeclarationCompletedOn *time.Time  `json:"declaration_completed_on,omitempty"`
	ScreeningCompletedOn   *time.Time  `json:"screening_completed_on,omitempty"`
	TrainingCompletedOn    *time.Time  `json:"training_completed_on,omitempty"`
	ScreeningHistory       []time.Time `json:"screening_history,omitempty"`
}

// ToRecord validates identifiers and builds the domain record.
func (r EvaluateRequest) ToRecord() (qualification.Record, error) {
	personID, err := id.ParsePersonID(r.PersonID)
	if err != nil {
		return qualification.Record{}, err
	}
	category := qualification.Category(r.Category)
	if category < qualification.CategoryI || category > qualification.CategoryIV {
		return qualification.Record{}, dErrors.New(dErrors.CodeBadRequest, "category must be between 1 and 4")
	}

	rec := qualification.Record{
		PersonID:          personID,
		Weapon:            qualification.Weapon(r.Weapon),
		Category:          category,
		DateQualified:     r.DateQualified,
		Scores:            make(qualification.Scores, len(r.Scores)),
		QualifiedUnderway: r.QualifiedUnderway,
	}
	for course, score := range r.Scores {
		rec.Scores[qualification.SubCourse(course)] = score
	}
	if r.Sustainment != nil {
		rec = qualification.ApplySustainment(rec, r.Sustainment.Date, r.Sustainment.Score)
	}
	if r.LiveFireSession != "" {
		sessionID, err := id.ParseSessionID(r.LiveFireSession)
		if err != nil {
			return qualification.Record{}, err
		}
		rec.LiveFireSession = &sessionID
	}
	return rec, nil
}

// ToRequirementSet builds the admin set when the request carries one.
func (r EvaluateRequest) ToRequirementSet(personID id.PersonID) *compliance.RequirementSet {
	if r.Admin == nil {
		return nil
	}
	return &compliance.RequirementSet{
		PersonID:               personID,
		DeclarationCompletedOn: r.Admin.DeclarationCompletedOn,
		ScreeningCompletedOn:   r.Admin.ScreeningCompletedOn,
		TrainingCompletedOn:    r.Admin.TrainingCompletedOn,
		ScreeningHistory:       r.Admin.ScreeningHistory,
	}
}
