package qualification

// Band is an inclusive pass band for one sub-course. A zero Max means the
// course has no ceiling (crew-served course of fire).
type Band struct {
	Min int
	Max int
}

// Contains reports whether a score falls inside the band. Endpoints pass.
func (b Band) Contains(score int) bool {
	if score < b.Min {
		return false
	}
	if b.Max > 0 && score > b.Max {
		return false
	}
	return true
}

// CourseRequirement pairs a sub-course with its pass band.
type CourseRequirement struct {
	Course SubCourse
	Band   Band
}

// crewServedCategory maps crew-served platforms to their fixed tier.
var crewServedCategory = map[Weapon]Category{
	WeaponM240: CategoryIII,
	WeaponM2:   CategoryIV,
	WeaponM2A1: CategoryIV,
}

// CategoryFor resolves the category implied by a crew-served weapon. For
// handgun the tier comes from the record itself; rifle and shotgun carry no
// tier of their own.
func CategoryFor(w Weapon) (Category, bool) {
	c, ok := crewServedCategory[w]
	return c, ok
}

// Requirements returns the scored components a record must pass, in course
// order. Returns nil for weapon/category combinations with no defined course.
func Requirements(w Weapon, c Category) []CourseRequirement {
	switch w {
	case WeaponHandgun:
		switch c {
		case CategoryI:
			return []CourseRequirement{
				{Course: SubCourseHQC, Band: Band{Min: 180, Max: 240}},
			}
		case CategoryII:
			return []CourseRequirement{
				{Course: SubCourseNHQC, Band: Band{Min: 180, Max: 240}},
				{Course: SubCourseLowLight, Band: Band{Min: 12, Max: 18}},
				{Course: SubCoursePractical, Band: Band{Min: 12, Max: 18}},
			}
		}
		return nil
	case WeaponRifle:
		return []CourseRequirement{
			{Course: SubCourseRifle, Band: Band{Min: 140, Max: 200}},
			{Course: SubCourseLowLight, Band: Band{Min: 14, Max: 20}},
		}
	case WeaponShotgun:
		return []CourseRequirement{
			{Course: SubCoursePractical, Band: Band{Min: 90, Max: 162}},
		}
	case WeaponM240, WeaponM2, WeaponM2A1:
		if tier, ok := crewServedCategory[w]; !ok || tier != c {
			return nil
		}
		return []CourseRequirement{
			{Course: SubCourseCourseOfFire, Band: Band{Min: 100}},
		}
	}
	return nil
}
