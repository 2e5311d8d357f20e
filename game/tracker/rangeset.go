package tracker

import "github.com/FortunateNaruto/pokemon-ranger/game/stat"

// RangeSet holds, for one stat, the IV interval surviving each nature
// regime plus the combined interval over the regimes still in play.
type RangeSet struct {
	Negative stat.IVRange `json:"negative"`
	Neutral  stat.IVRange `json:"neutral"`
	Positive stat.IVRange `json:"positive"`
	Combined stat.IVRange `json:"combined"`
}

// Regime returns the interval for the given regime.
func (rs RangeSet) Regime(r stat.Regime) stat.IVRange {
	switch r {
	case stat.Negative:
		return rs.Negative
	case stat.Positive:
		return rs.Positive
	default:
		return rs.Neutral
	}
}

func (rs *RangeSet) setRegime(r stat.Regime, iv stat.IVRange) {
	switch r {
	case stat.Negative:
		rs.Negative = iv
	case stat.Positive:
		rs.Positive = iv
	default:
		rs.Neutral = iv
	}
}

// CalcIVRange narrows the IV interval for one stat against everything
// the tracker knows. Three mutually exclusive paths, in priority order:
// a static IV override, direct-input mode, and inference from recorded
// observations.
func CalcIVRange(st stat.Stat, t *Tracker) RangeSet {
	if iv, ok := t.StaticIVs[st]; ok {
		var nature stat.Nature
		if t.StaticNature != nil {
			nature = *t.StaticNature
		}
		return pinnedRangeSet(st, iv, nature)
	}
	if t.DirectInput {
		nature := stat.Nature{Decreased: t.ManualNegative, Increased: t.ManualPositive}
		return pinnedRangeSet(st, t.DirectInputIVs[st], nature)
	}
	return observedRangeSet(st, t)
}

// pinnedRangeSet collapses every regime to the single known IV, except
// regimes the nature knowledge rules out for this stat.
func pinnedRangeSet(st stat.Stat, iv int, nature stat.Nature) RangeSet {
	admissible := stat.AdmissibleRegimes(st, nature)
	pinned := stat.IVRange{Min: iv, Max: iv}
	var rs RangeSet
	for _, r := range stat.Regimes {
		if admissible.Has(r) {
			rs.setRegime(r, pinned)
		} else {
			rs.setRegime(r, stat.Invalid)
		}
	}
	rs.Combined = pinned
	return rs
}

// observedRangeSet intersects, per regime, the IVs whose formula output
// matches every recorded observation. A regime contradicted by any
// observation collapses permanently to the invalid interval. HP always
// evaluates under the neutral modifier.
func observedRangeSet(st stat.Stat, t *Tracker) RangeSet {
	var rs RangeSet
	for _, regime := range stat.Regimes {
		cur := stat.Full
		for _, evo := range sortedEvolutions(t.Observations) {
			base := t.BaseStat(evo, st)
			levels := t.Observations[evo]
			for _, level := range sortedKeys(levels) {
				observed, ok := levels[level][st]
				if !ok {
					continue
				}
				if !cur.Valid() {
					break
				}
				mod := regime
				if st == stat.HP {
					mod = stat.Neutral
				}
				ev := t.EVsAt(level)[st]
				cur = matchingIVs(cur, st, level, base, ev, mod, t.Generation, observed)
			}
		}
		rs.setRegime(regime, cur)
	}
	rs.Combined = rs.Negative.Union(rs.Neutral).Union(rs.Positive)
	return rs
}

// matchingIVs returns the sub-interval of cur whose formula output equals
// the observed value. The formula is monotone in the IV, so the matching
// set is contiguous and its bounds are exact.
func matchingIVs(cur stat.IVRange, st stat.Stat, level, base, ev int, regime stat.Regime, generation, observed int) stat.IVRange {
	lo, hi := -1, -1
	for iv := cur.Min; iv <= cur.Max; iv++ {
		if stat.Value(st, level, base, iv, ev, regime, generation) != observed {
			continue
		}
		if lo < 0 {
			lo = iv
		}
		hi = iv
	}
	if lo < 0 {
		return stat.Invalid
	}
	return stat.IVRange{Min: lo, Max: hi}
}
