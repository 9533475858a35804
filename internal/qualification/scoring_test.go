package qualification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBandBoundaries verifies the boundary-inclusive pass bands: endpoints
// pass, anything strictly outside fails.
func TestBandBoundaries(t *testing.T) {
	cases := []struct {
		name  string
		band  Band
		score int
		pass  bool
	}{
		{"below min fails", Band{Min: 180, Max: 240}, 179, false},
		{"min endpoint passes", Band{Min: 180, Max: 240}, 180, true},
		{"mid band passes", Band{Min: 180, Max: 240}, 200, true},
		{"max endpoint passes", Band{Min: 180, Max: 240}, 240, true},
		{"above max fails", Band{Min: 180, Max: 240}, 241, false},
		{"open ceiling min passes", Band{Min: 100}, 100, true},
		{"open ceiling high passes", Band{Min: 100}, 400, true},
		{"open ceiling below min fails", Band{Min: 100}, 99, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.pass, tc.band.Contains(tc.score))
		})
	}
}

func TestRequirements(t *testing.T) {
	t.Run("handgun CAT I is the single HQC course", func(t *testing.T) {
		reqs := Requirements(WeaponHandgun, CategoryI)
		require.Len(t, reqs, 1)
		assert.Equal(t, SubCourseHQC, reqs[0].Course)
		assert.Equal(t, Band{Min: 180, Max: 240}, reqs[0].Band)
	})

	t.Run("handgun CAT II needs all three courses", func(t *testing.T) {
		reqs := Requirements(WeaponHandgun, CategoryII)
		require.Len(t, reqs, 3)
		assert.Equal(t, SubCourseNHQC, reqs[0].Course)
		assert.Equal(t, SubCourseLowLight, reqs[1].Course)
		assert.Equal(t, SubCoursePractical, reqs[2].Course)
	})

	t.Run("rifle needs course and low-light", func(t *testing.T) {
		reqs := Requirements(WeaponRifle, 0)
		require.Len(t, reqs, 2)
		assert.Equal(t, Band{Min: 140, Max: 200}, reqs[0].Band)
		assert.Equal(t, Band{Min: 14, Max: 20}, reqs[1].Band)
	})

	t.Run("shotgun practical band", func(t *testing.T) {
		reqs := Requirements(WeaponShotgun, 0)
		require.Len(t, reqs, 1)
		assert.Equal(t, Band{Min: 90, Max: 162}, reqs[0].Band)
	})

	t.Run("crew-served weapons bind to their tier", func(t *testing.T) {
		require.Len(t, Requirements(WeaponM240, CategoryIII), 1)
		require.Len(t, Requirements(WeaponM2, CategoryIV), 1)
		require.Len(t, Requirements(WeaponM2A1, CategoryIV), 1)
		assert.Nil(t, Requirements(WeaponM240, CategoryII))
	})

	t.Run("unknown combinations have no course", func(t *testing.T) {
		assert.Nil(t, Requirements(WeaponHandgun, CategoryIII))
		assert.Nil(t, Requirements(Weapon("slingshot"), CategoryI))
	})

	t.Run("category resolution for crew-served platforms", func(t *testing.T) {
		c, ok := CategoryFor(WeaponM240)
		require.True(t, ok)
		assert.Equal(t, CategoryIII, c)
		c, ok = CategoryFor(WeaponM2A1)
		require.True(t, ok)
		assert.Equal(t, CategoryIV, c)
		_, ok = CategoryFor(WeaponHandgun)
		assert.False(t, ok)
	})
}
