package tracker

import (
	"sort"

	"github.com/FortunateNaruto/pokemon-ranger/game/stat"
)

// StatValueSet holds the stat values reachable for display purposes.
// Possible ignores narrowing (any IV in [0,31]); Valid only uses IVs
// inside the narrowed interval. Values reachable through several
// IV/modifier pairs appear once.
type StatValueSet struct {
	Possible []int `json:"possible"`
	Valid    []int `json:"valid"`
}

// CalcStatValues projects an IV interval and a set of admissible regimes
// onto stat values. An invalid interval contributes nothing to Valid.
func CalcStatValues(st stat.Stat, level, base, ev, generation int, r stat.IVRange, regimes []stat.Regime) StatValueSet {
	possible := make(map[int]bool)
	valid := make(map[int]bool)
	for _, regime := range regimes {
		for iv := 0; iv <= stat.MaxIV; iv++ {
			v := stat.Value(st, level, base, iv, ev, regime, generation)
			possible[v] = true
			if r.Contains(iv) {
				valid[v] = true
			}
		}
	}
	return StatValueSet{Possible: sortedValues(possible), Valid: sortedValues(valid)}
}

// CalcPossibleStats resolves the admissible regimes for a stat under the
// current nature knowledge and merges each regime's projection over its
// own narrowed interval.
func CalcPossibleStats(st stat.Stat, evolution, level int, t *Tracker, ranges map[stat.Stat]RangeSet, nature stat.Nature) StatValueSet {
	admissible := stat.AdmissibleRegimes(st, nature)
	base := t.BaseStat(evolution, st)
	ev := t.EVsAt(level)[st]

	var out StatValueSet
	for _, regime := range stat.Regimes {
		if !admissible.Has(regime) {
			continue
		}
		part := CalcStatValues(st, level, base, ev, t.Generation, ranges[st].Regime(regime), []stat.Regime{regime})
		out.Possible = mergeValues(out.Possible, part.Possible)
		out.Valid = mergeValues(out.Valid, part.Valid)
	}
	return out
}

func sortedValues(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

func mergeValues(a, b []int) []int {
	set := make(map[int]bool, len(a)+len(b))
	for _, v := range a {
		set[v] = true
	}
	for _, v := range b {
		set[v] = true
	}
	return sortedValues(set)
}
