package tracker

import "github.com/FortunateNaruto/pokemon-ranger/game/stat"

// natureFallback is the defined degenerate result when no viable
// decreased or increased candidate exists at all. Both roles point at
// attack, the confirmed-neutral encoding.
func natureFallback() stat.Nature {
	return stat.Nature{
		Decreased: stat.StatPtr(stat.Attack),
		Increased: stat.StatPtr(stat.Attack),
	}
}

// CalcNature deduces the nature roles from the six per-stat range sets.
// A configured static nature is authoritative. Otherwise a role is
// forced by a manual pin, or by a stat whose other two regimes are both
// contradicted; a remaining role is inferred by elimination when exactly
// one candidate is left. Unresolvable roles stay nil.
func CalcNature(ranges map[stat.Stat]RangeSet, t *Tracker) stat.Nature {
	if t.StaticNature != nil {
		return *t.StaticNature
	}

	var negCandidates, posCandidates []stat.Stat
	for _, st := range stat.All {
		if st == stat.HP {
			continue
		}
		rs := ranges[st]
		if rs.Negative.Valid() {
			negCandidates = append(negCandidates, st)
		}
		if rs.Positive.Valid() {
			posCandidates = append(posCandidates, st)
		}
	}
	if len(negCandidates) == 0 || len(posCandidates) == 0 {
		return natureFallback()
	}

	decreased := t.ManualNegative
	if decreased == nil {
		decreased = soleSurvivor(ranges, stat.Negative)
	}
	increased := t.ManualPositive
	if increased == nil {
		increased = soleSurvivor(ranges, stat.Positive)
	}

	if increased != nil && decreased == nil {
		if rem := without(negCandidates, *increased); len(rem) == 1 {
			decreased = stat.StatPtr(rem[0])
		}
	}
	if decreased != nil && increased == nil {
		if rem := without(posCandidates, *decreased); len(rem) == 1 {
			increased = stat.StatPtr(rem[0])
		}
	}
	return stat.Nature{Decreased: decreased, Increased: increased}
}

// soleSurvivor finds a stat for which only the given regime remains
// observationally consistent, which forces that stat into the regime's
// nature role.
func soleSurvivor(ranges map[stat.Stat]RangeSet, regime stat.Regime) *stat.Stat {
	for _, st := range stat.All {
		if st == stat.HP {
			continue
		}
		rs := ranges[st]
		if !rs.Regime(regime).Valid() {
			continue
		}
		others := 0
		for _, r := range stat.Regimes {
			if r != regime && rs.Regime(r).Valid() {
				others++
			}
		}
		if others == 0 {
			return stat.StatPtr(st)
		}
	}
	return nil
}

func without(stats []stat.Stat, excluded stat.Stat) []stat.Stat {
	out := make([]stat.Stat, 0, len(stats))
	for _, st := range stats {
		if st != excluded {
			out = append(out, st)
		}
	}
	return out
}
