package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FortunateNaruto/pokemon-ranger/game/stat"
)

func TestCalcStatValues_SentinelHasNoValidValues(t *testing.T) {
	set := CalcStatValues(stat.Attack, 20, 60, 0, 3, stat.Invalid, []stat.Regime{stat.Neutral})
	assert.Empty(t, set.Valid)
	assert.NotEmpty(t, set.Possible)
}

func TestCalcStatValues_ValidSubsetOfPossible(t *testing.T) {
	r := stat.IVRange{Min: 10, Max: 20}
	set := CalcStatValues(stat.Speed, 35, 55, 16, 4, r, []stat.Regime{stat.Negative, stat.Neutral})
	possible := make(map[int]bool)
	for _, v := range set.Possible {
		possible[v] = true
	}
	for _, v := range set.Valid {
		assert.True(t, possible[v], "valid value %d missing from possible", v)
	}
}

func TestCalcStatValues_Deduplicates(t *testing.T) {
	// At low levels many IVs share a value; the sets must not repeat it.
	set := CalcStatValues(stat.Defense, 5, 40, 0, 3, stat.Full, []stat.Regime{stat.Neutral, stat.Positive})
	seen := make(map[int]bool)
	for _, v := range set.Possible {
		assert.False(t, seen[v], "duplicate %d", v)
		seen[v] = true
	}
	// Sorted ascending.
	for i := 1; i < len(set.Possible); i++ {
		assert.Greater(t, set.Possible[i], set.Possible[i-1])
	}
}

func TestCalcPossibleStats_RespectsNature(t *testing.T) {
	tr := starter()
	ranges := rangesWith(nil)
	nature := stat.Nature{Decreased: stat.StatPtr(stat.SpAttack), Increased: stat.StatPtr(stat.Attack)}

	// Attack is confirmed increased: only the positive projection remains.
	got := CalcPossibleStats(stat.Attack, 0, 10, tr, ranges, nature)
	want := CalcStatValues(stat.Attack, 10, 60, 0, 3, stat.Full, []stat.Regime{stat.Positive})
	assert.Equal(t, want, got)

	// HP only ever projects through the neutral modifier.
	got = CalcPossibleStats(stat.HP, 0, 10, tr, ranges, nature)
	want = CalcStatValues(stat.HP, 10, 45, 0, 3, stat.Full, []stat.Regime{stat.Neutral})
	assert.Equal(t, want, got)
}

func TestCalcPossibleStats_MergesRegimeIntervals(t *testing.T) {
	tr := starter()
	ranges := rangesWith(map[stat.Stat]RangeSet{
		stat.Speed: {
			Negative: stat.IVRange{Min: 0, Max: 5},
			Neutral:  stat.IVRange{Min: 20, Max: 25},
			Positive: stat.Invalid,
		},
	})
	got := CalcPossibleStats(stat.Speed, 0, 30, tr, ranges, stat.Nature{})
	assert.NotEmpty(t, got.Valid)
	// The dead positive regime contributes nothing valid, but its
	// possible values still appear since no nature knowledge excludes it.
	neg := CalcStatValues(stat.Speed, 30, 45, 0, 3, stat.IVRange{Min: 0, Max: 5}, []stat.Regime{stat.Negative})
	for _, v := range neg.Valid {
		assert.Contains(t, got.Valid, v)
	}
}
