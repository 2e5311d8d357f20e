package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FortunateNaruto/pokemon-ranger/game/stat"
)

func starter() *Tracker {
	return &Tracker{
		Name:          "torchic",
		Generation:    3,
		StartingLevel: 5,
		BaseStats:     []stat.Values{{45, 60, 40, 70, 50, 45}},
	}
}

func TestCalcIVRange_NoObservationsFullRange(t *testing.T) {
	tr := starter()
	for _, st := range stat.All {
		rs := CalcIVRange(st, tr)
		for _, regime := range stat.Regimes {
			assert.Equal(t, stat.Full, rs.Regime(regime), "%v %v", st, regime)
		}
		assert.Equal(t, stat.Full, rs.Combined, "%v combined", st)
	}
}

func TestCalcIVRange_NarrowingIsMonotonic(t *testing.T) {
	tr := starter()
	prev := CalcIVRange(stat.Attack, tr)

	// Record attack at successive levels; intervals may only shrink or die.
	for level := 6; level <= 20; level++ {
		observed := stat.Value(stat.Attack, level, 60, 17, 0, stat.Neutral, 3)
		tr.Record(0, level, stat.Attack, observed)
		next := CalcIVRange(stat.Attack, tr)
		for _, regime := range stat.Regimes {
			p, n := prev.Regime(regime), next.Regime(regime)
			if !p.Valid() {
				assert.False(t, n.Valid(), "level %d %v: regime revived", level, regime)
				continue
			}
			if n.Valid() {
				assert.GreaterOrEqual(t, n.Min, p.Min, "level %d %v", level, regime)
				assert.LessOrEqual(t, n.Max, p.Max, "level %d %v", level, regime)
			}
		}
		prev = next
	}
	// The true IV must survive in the neutral regime.
	assert.True(t, prev.Neutral.Contains(17))
}

func TestCalcIVRange_ContradictionIsPermanent(t *testing.T) {
	tr := starter()
	// Impossible attack value at level 10 kills every regime.
	tr.Record(0, 10, stat.Attack, 999)
	// A later consistent observation must not revive them.
	tr.Record(0, 11, stat.Attack, stat.Value(stat.Attack, 11, 60, 10, 0, stat.Neutral, 3))

	rs := CalcIVRange(stat.Attack, tr)
	for _, regime := range stat.Regimes {
		assert.False(t, rs.Regime(regime).Valid(), "%v", regime)
	}
	assert.False(t, rs.Combined.Valid())
}

func TestCalcIVRange_HPIgnoresNature(t *testing.T) {
	tr := starter()
	tr.Record(0, 12, stat.HP, stat.Value(stat.HP, 12, 45, 20, 0, stat.Neutral, 3))

	rs := CalcIVRange(stat.HP, tr)
	assert.Equal(t, rs.Neutral, rs.Negative)
	assert.Equal(t, rs.Neutral, rs.Positive)
	assert.True(t, rs.Neutral.Contains(20))
}

func TestCalcIVRange_StaticOverride(t *testing.T) {
	tr := starter()
	tr.StaticIVs = map[stat.Stat]int{stat.Speed: 20}
	tr.StaticNature = &stat.Nature{Decreased: stat.StatPtr(stat.Speed)}

	rs := CalcIVRange(stat.Speed, tr)
	pinned := stat.IVRange{Min: 20, Max: 20}
	assert.Equal(t, pinned, rs.Negative)
	assert.False(t, rs.Neutral.Valid())
	assert.False(t, rs.Positive.Valid())
	assert.Equal(t, pinned, rs.Combined)
}

func TestCalcIVRange_StaticOverrideBeatsDirectInput(t *testing.T) {
	tr := starter()
	tr.DirectInput = true
	tr.DirectInputIVs = stat.Values{1, 1, 1, 1, 1, 1}
	tr.StaticIVs = map[stat.Stat]int{stat.Defense: 30}

	rs := CalcIVRange(stat.Defense, tr)
	assert.Equal(t, stat.IVRange{Min: 30, Max: 30}, rs.Combined)
}

func TestCalcIVRange_DirectInputPins(t *testing.T) {
	tr := starter()
	tr.DirectInput = true
	tr.DirectInputIVs = stat.Values{31, 31, 31, 31, 31, 31}
	tr.ManualPositive = stat.StatPtr(stat.Attack)

	rs := CalcIVRange(stat.Attack, tr)
	assert.Equal(t, stat.IVRange{Min: 31, Max: 31}, rs.Positive)
	assert.False(t, rs.Neutral.Valid())
	assert.False(t, rs.Negative.Valid())

	// An uninvolved stat keeps negative and neutral open but cannot be
	// the increased one.
	rs = CalcIVRange(stat.Speed, tr)
	assert.True(t, rs.Negative.Valid())
	assert.True(t, rs.Neutral.Valid())
	assert.False(t, rs.Positive.Valid())
}

// Single observation crafted so only IV 31 under the increased regime
// can produce it: attack 14 at level 5 with 36 attack EVs.
func TestCalcIVRange_PositiveOnlySpread(t *testing.T) {
	tr := &Tracker{
		Name:          "pos-only",
		Generation:    3,
		StartingLevel: 5,
		BaseStats:     []stat.Values{{45, 60, 45, 25, 45, 55}},
		EVSegments:    map[int]stat.Values{0: {0, 36, 0, 0, 0, 0}},
	}
	require.Equal(t, 14, stat.Value(stat.Attack, 5, 60, 31, 36, stat.Positive, 3))
	tr.Record(0, 5, stat.Attack, 14)

	rs := CalcIVRange(stat.Attack, tr)
	assert.Equal(t, stat.IVRange{Min: 31, Max: 31}, rs.Positive)
	assert.False(t, rs.Neutral.Valid())
	assert.False(t, rs.Negative.Valid())

	ranges := make(map[stat.Stat]RangeSet)
	for _, st := range stat.All {
		ranges[st] = CalcIVRange(st, tr)
	}
	nature := CalcNature(ranges, tr)
	require.NotNil(t, nature.Increased)
	assert.Equal(t, stat.Attack, *nature.Increased)
	assert.Nil(t, nature.Decreased)
}

func TestEVsAt_SegmentLookup(t *testing.T) {
	tr := starter()
	tr.EVSegments = map[int]stat.Values{
		1:  {0, 4, 0, 0, 0, 0},
		10: {0, 12, 0, 0, 0, 8},
	}
	assert.Equal(t, stat.Values{}, tr.EVsAt(0))
	assert.Equal(t, stat.Values{0, 4, 0, 0, 0, 0}, tr.EVsAt(5))
	assert.Equal(t, stat.Values{0, 12, 0, 0, 0, 8}, tr.EVsAt(10))
	assert.Equal(t, stat.Values{0, 12, 0, 0, 0, 8}, tr.EVsAt(50))
}

func TestResetFrom(t *testing.T) {
	tr := starter()
	tr.Record(0, 6, stat.Attack, 12)
	tr.Record(0, 9, stat.Attack, 14)
	tr.Record(1, 20, stat.Speed, 40)

	tr.ResetFrom(9)
	assert.Len(t, tr.Observations[0], 1)
	_, secondStage := tr.Observations[1]
	assert.False(t, secondStage)
}
