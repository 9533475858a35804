package qualification

import (
	"time"

	id "marksman/pkg/domain"
)

// Category is the weapon qualification tier. It determines which sub-courses
// apply and which sustainment window governs the record.
type Category int

const (
	CategoryI Category = iota + 1
	CategoryII
	CategoryIII
	CategoryIV
)

func (c Category) String() string {
	switch c {
	case CategoryI:
		return "CAT I"
	case CategoryII:
		return "CAT II"
	case CategoryIII:
		return "CAT III"
	case CategoryIV:
		return "CAT IV"
	}
	return "unknown"
}

// Weapon identifies the weapon platform a record qualifies on.
type Weapon string

const (
	WeaponHandgun Weapon = "handgun"
	WeaponRifle   Weapon = "rifle"
	WeaponShotgun Weapon = "shotgun"
	WeaponM240    Weapon = "m240"
	WeaponM2      Weapon = "m2"
	WeaponM2A1    Weapon = "m2a1"
)

// SubCourse identifies one scored component of a qualification course.
type SubCourse string

const (
	SubCourseHQC          SubCourse = "hqc"
	SubCourseNHQC         SubCourse = "nhqc"
	SubCourseLowLight     SubCourse = "low_light"
	SubCoursePractical    SubCourse = "practical"
	SubCourseRifle        SubCourse = "rifle_course"
	SubCourseCourseOfFire SubCourse = "course_of_fire"
)

// Scores holds the variable, weapon-dependent set of sub-course scores.
type Scores map[SubCourse]int

// Sustainment is a follow-up live-fire event recorded against an existing
// qualification. Sustainment fields are the only mutation a record sees after
// creation.
type Sustainment struct {
	Date  time.Time
	Score int
}

// Record is one weapons-qualification entry for a person. Created when a
// live-fire session or form is recorded; immutable except for sustainment,
// which is appended later via ApplySustainment.
type Record struct {
	PersonID          id.PersonID
	Weapon            Weapon
	Category          Category
	DateQualified     time.Time
	LiveFireSession   *id.SessionID
	Scores            Scores
	Sustainment       *Sustainment
	QualifiedUnderway bool
}

// ApplySustainment returns a copy of the record with the sustainment event
// recorded. The original record is not modified.
func ApplySustainment(rec Record, date time.Time, score int) Record {
	rec.Sustainment = &Sustainment{Date: date, Score: score}
	return rec
}

// Status is the derived currency snapshot for one record. It is recomputed on
// read, never persisted as source of truth.
//
// Invariant: exactly one of {qualified-and-current, sustainment-due,
// disqualified} holds; Disqualified implies !Qualified, SustainmentDue
// implies Qualified.
type Status struct {
	Qualified      bool
	Disqualified   bool
	SustainmentDue bool

	// ScoreWaived marks that the course-of-fire component was waived under
	// the qualified-underway policy.
	ScoreWaived bool

	// Hard expiration, independent of sustainment. Drives the 30-day
	// advance-warning display only.
	ExpiresOn           time.Time
	DaysUntilExpiration int

	SustainmentDueOn     time.Time
	DaysUntilSustainment int

	// LapsesOn is the first day the record counts as lapsed.
	LapsesOn time.Time
}
