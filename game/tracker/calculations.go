package tracker

import (
	"sort"
	"time"

	"github.com/FortunateNaruto/pokemon-ranger/game/hiddenpower"
	"github.com/FortunateNaruto/pokemon-ranger/game/stat"
)

// Calculations is the aggregate derived view for one tracker: narrowed
// IV ranges per stat, the confirmed nature, the resolved hidden power
// type (nil when undetermined), and tracker-scoped variables.
type Calculations struct {
	Tracker     string                 `json:"tracker"`
	IVRanges    map[stat.Stat]RangeSet `json:"ivRanges"`
	Nature      stat.Nature            `json:"nature"`
	HiddenPower *string                `json:"hiddenPower"`
	Variables   map[string]any         `json:"variables,omitempty"`
	BuiltAt     time.Time              `json:"builtAt"`
}

// Build re-derives the full Calculations from the tracker's current
// state. Every call starts from scratch: narrow each stat per regime,
// infer the nature, fold the nature knowledge back into the combined
// intervals, then resolve hidden power from the surviving candidates.
func Build(t *Tracker) *Calculations {
	ranges := make(map[stat.Stat]RangeSet, len(stat.All))
	for _, st := range stat.All {
		ranges[st] = CalcIVRange(st, t)
	}

	nature := CalcNature(ranges, t)

	candidates := make(map[stat.Stat][]int, len(stat.All))
	for _, st := range stat.All {
		rs := ranges[st]
		admissible := stat.AdmissibleRegimes(st, nature)
		combined := stat.Invalid
		ivSet := make(map[int]bool)
		for _, regime := range stat.Regimes {
			if !admissible.Has(regime) {
				continue
			}
			r := rs.Regime(regime)
			combined = combined.Union(r)
			for _, iv := range r.Values() {
				ivSet[iv] = true
			}
		}
		rs.Combined = combined
		ranges[st] = rs

		ivs := make([]int, 0, len(ivSet))
		for iv := range ivSet {
			ivs = append(ivs, iv)
		}
		sort.Ints(ivs)
		candidates[st] = ivs
	}

	calc := &Calculations{
		Tracker:  t.Name,
		IVRanges: ranges,
		Nature:   nature,
		BuiltAt:  time.Now(),
	}
	if hp, ok := hiddenpower.Resolve(candidates); ok {
		calc.HiddenPower = &hp
	}
	return calc
}
