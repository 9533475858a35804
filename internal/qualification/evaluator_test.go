package qualification

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	id "marksman/pkg/domain"
	dErrors "marksman/pkg/domain-errors"
)

type EvaluatorSuite struct {
	suite.Suite
	eval *Evaluator
	asOf time.Time
}

func TestEvaluatorSuite(t *testing.T) {
	suite.Run(t, new(EvaluatorSuite))
}

func (s *EvaluatorSuite) SetupTest() {
	s.eval = NewEvaluator(nil)
	// Fixed clock keeps month-boundary arithmetic deterministic.
	s.asOf = time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
}

func (s *EvaluatorSuite) record(weapon Weapon, category Category, daysAgo int, scores Scores) Record {
	return Record{
		PersonID:      id.PersonID(uuid.New()),
		Weapon:        weapon,
		Category:      category,
		DateQualified: s.asOf.AddDate(0, 0, -daysAgo),
		Scores:        scores,
	}
}

func (s *EvaluatorSuite) TestValidation() {
	s.Run("missing qualifying date is rejected before computing", func() {
		_, err := s.eval.Evaluate(Record{Weapon: WeaponShotgun, Scores: Scores{SubCoursePractical: 100}}, s.asOf)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *EvaluatorSuite) TestScoreCombination() {
	s.Run("CAT I handgun qualifies on a single passing HQC score", func() {
		st, err := s.eval.Evaluate(s.record(WeaponHandgun, CategoryI, 10, Scores{SubCourseHQC: 180}), s.asOf)
		s.Require().NoError(err)
		s.True(st.Qualified)
		s.False(st.Disqualified)
	})

	s.Run("out-of-band score is a non-qualified result, not an error", func() {
		st, err := s.eval.Evaluate(s.record(WeaponHandgun, CategoryI, 10, Scores{SubCourseHQC: 241}), s.asOf)
		s.Require().NoError(err)
		s.False(st.Qualified)
		s.True(st.Disqualified)
	})

	s.Run("missing sub-course score fails that course", func() {
		st, err := s.eval.Evaluate(s.record(WeaponHandgun, CategoryII, 10, Scores{
			SubCourseNHQC:     200,
			SubCourseLowLight: 15,
		}), s.asOf)
		s.Require().NoError(err)
		s.True(st.Disqualified)
	})

	s.Run("CAT II requires all three courses", func() {
		st, err := s.eval.Evaluate(s.record(WeaponHandgun, CategoryII, 10, Scores{
			SubCourseNHQC:      200,
			SubCourseLowLight:  15,
			SubCoursePractical: 12,
		}), s.asOf)
		s.Require().NoError(err)
		s.True(st.Qualified)
		s.False(st.ScoreWaived)
	})

	s.Run("qualified underway waives the CAT II course of fire", func() {
		rec := s.record(WeaponHandgun, CategoryII, 10, Scores{
			SubCourseNHQC:     200,
			SubCourseLowLight: 15,
		})
		rec.QualifiedUnderway = true
		st, err := s.eval.Evaluate(rec, s.asOf)
		s.Require().NoError(err)
		s.True(st.Qualified)
		s.True(st.ScoreWaived)
	})

	s.Run("waiver does not cover the other CAT II courses", func() {
		rec := s.record(WeaponHandgun, CategoryII, 10, Scores{SubCourseNHQC: 200})
		rec.QualifiedUnderway = true
		st, err := s.eval.Evaluate(rec, s.asOf)
		s.Require().NoError(err)
		s.True(st.Disqualified)
	})

	s.Run("rifle requires both courses", func() {
		st, err := s.eval.Evaluate(s.record(WeaponRifle, 0, 10, Scores{
			SubCourseRifle:    140,
			SubCourseLowLight: 20,
		}), s.asOf)
		s.Require().NoError(err)
		s.True(st.Qualified)

		st, err = s.eval.Evaluate(s.record(WeaponRifle, 0, 10, Scores{
			SubCourseRifle:    140,
			SubCourseLowLight: 13,
		}), s.asOf)
		s.Require().NoError(err)
		s.True(st.Disqualified)
	})

	s.Run("crew-served course of fire has no ceiling", func() {
		st, err := s.eval.Evaluate(s.record(WeaponM240, CategoryIII, 10, Scores{SubCourseCourseOfFire: 350}), s.asOf)
		s.Require().NoError(err)
		s.True(st.Qualified)

		st, err = s.eval.Evaluate(s.record(WeaponM2, CategoryIV, 10, Scores{SubCourseCourseOfFire: 99}), s.asOf)
		s.Require().NoError(err)
		s.True(st.Disqualified)
	})
}

func (s *EvaluatorSuite) TestTemporalWindows() {
	passing := Scores{
		SubCourseNHQC:      200,
		SubCourseLowLight:  15,
		SubCoursePractical: 14,
	}

	s.Run("inside the sustainment window the record is current", func() {
		st, err := s.eval.Evaluate(s.record(WeaponHandgun, CategoryII, 100, passing), s.asOf)
		s.Require().NoError(err)
		s.True(st.Qualified)
		s.False(st.SustainmentDue)
		s.False(st.Disqualified)
	})

	s.Run("150 days without sustainment is qualified but due", func() {
		st, err := s.eval.Evaluate(s.record(WeaponHandgun, CategoryII, 150, passing), s.asOf)
		s.Require().NoError(err)
		s.True(st.Qualified)
		s.True(st.SustainmentDue)
		s.False(st.Disqualified)
	})

	s.Run("lapse begins the first of the month after day 240", func() {
		// 241 days before 2026-09-01 puts day 240 on 2026-08-31, so the
		// lapse boundary is exactly the first of September.
		st, err := s.eval.Evaluate(s.record(WeaponHandgun, CategoryII, 241, passing), s.asOf)
		s.Require().NoError(err)
		s.True(st.Disqualified)
		s.False(st.Qualified)
		s.False(st.SustainmentDue)
	})

	s.Run("one day before the month boundary is still sustainment-due", func() {
		rec := s.record(WeaponHandgun, CategoryII, 241, passing)
		st, err := s.eval.Evaluate(rec, s.asOf.AddDate(0, 0, -1))
		s.Require().NoError(err)
		s.False(st.Disqualified)
		s.True(st.SustainmentDue)
	})

	s.Run("a sustainment event extends validity to a year from qualification", func() {
		rec := s.record(WeaponHandgun, CategoryII, 300, passing)
		rec = ApplySustainment(rec, s.asOf.AddDate(0, 0, -100), 15)
		st, err := s.eval.Evaluate(rec, s.asOf)
		s.Require().NoError(err)
		s.True(st.Qualified)
		s.False(st.Disqualified)
		s.False(st.SustainmentDue)
	})

	s.Run("the due window re-anchors to the sustainment date", func() {
		rec := s.record(WeaponHandgun, CategoryII, 300, passing)
		rec = ApplySustainment(rec, s.asOf.AddDate(0, 0, -150), 15)
		st, err := s.eval.Evaluate(rec, s.asOf)
		s.Require().NoError(err)
		s.True(st.Qualified)
		s.True(st.SustainmentDue)
	})

	s.Run("even a sustained record lapses after the extended window", func() {
		rec := s.record(WeaponHandgun, CategoryII, 400, passing)
		rec = ApplySustainment(rec, s.asOf.AddDate(0, 0, -250), 15)
		st, err := s.eval.Evaluate(rec, s.asOf)
		s.Require().NoError(err)
		s.True(st.Disqualified)
	})

	s.Run("per-category policy overrides the due threshold", func() {
		eval := NewEvaluator(SustainmentPolicy{CategoryII: 200})
		st, err := eval.Evaluate(s.record(WeaponHandgun, CategoryII, 150, passing), s.asOf)
		s.Require().NoError(err)
		s.True(st.Qualified)
		s.False(st.SustainmentDue)
	})
}

func (s *EvaluatorSuite) TestDerivedFields() {
	passing := Scores{SubCourseHQC: 200}

	s.Run("hard expiration is one year from qualification", func() {
		rec := s.record(WeaponHandgun, CategoryI, 100, passing)
		st, err := s.eval.Evaluate(rec, s.asOf)
		s.Require().NoError(err)
		s.Equal(rec.DateQualified.AddDate(1, 0, 0), st.ExpiresOn)
		s.Equal(265, st.DaysUntilExpiration)
	})

	s.Run("days until sustainment counts down from the threshold", func() {
		st, err := s.eval.Evaluate(s.record(WeaponHandgun, CategoryI, 100, passing), s.asOf)
		s.Require().NoError(err)
		s.Equal(20, st.DaysUntilSustainment)
	})

	s.Run("evaluation is pure", func() {
		rec := s.record(WeaponHandgun, CategoryI, 150, passing)
		first, err := s.eval.Evaluate(rec, s.asOf)
		s.Require().NoError(err)
		second, err := s.eval.Evaluate(rec, s.asOf)
		s.Require().NoError(err)
		s.Equal(first, second)
	})
}

func (s *EvaluatorSuite) TestNeedingSustainment() {
	passing := Scores{SubCourseHQC: 200}
	current := s.record(WeaponHandgun, CategoryI, 50, passing)
	due := s.record(WeaponHandgun, CategoryI, 150, passing)
	lapsed := s.record(WeaponHandgun, CategoryI, 300, passing)
	invalid := Record{Weapon: WeaponHandgun, Category: CategoryI, Scores: passing}

	got := s.eval.NeedingSustainment([]Record{current, due, lapsed, invalid}, s.asOf)
	s.Require().Len(got, 1)
	s.Equal(due.PersonID, got[0].PersonID)
}

// TestStatusInvariant sweeps a wide date range and asserts the three-state
// invariant holds everywhere: exactly one of current, due, disqualified.
func (s *EvaluatorSuite) TestStatusInvariant() {
	passing := Scores{SubCourseHQC: 200}
	for daysAgo := 1; daysAgo <= 500; daysAgo += 7 {
		st, err := s.eval.Evaluate(s.record(WeaponHandgun, CategoryI, daysAgo, passing), s.asOf)
		s.Require().NoError(err)

		states := 0
		if st.Qualified && !st.SustainmentDue {
			states++
		}
		if st.Qualified && st.SustainmentDue {
			states++
		}
		if st.Disqualified {
			states++
		}
		s.Equalf(1, states, "exactly one state must hold at %d days", daysAgo)
		if st.Disqualified {
			s.False(st.Qualified)
			s.False(st.SustainmentDue)
		}
	}
}
