package stat

import "math"

// Value computes the in-game stat value at the given level.
//
// HP has its own formula in every generation. Other stats use the
// legacy stat-experience formula for generations 1-2 (natures did not
// exist yet) and the nature-modified formula from generation 3 on.
// Inputs are assumed valid: level >= 1, iv in [0,MaxIV], ev >= 0.
func Value(st Stat, level, base, iv, ev int, regime Regime, generation int) int {
	if st == HP {
		return hpValue(level, base, iv, ev, generation)
	}
	if generation <= 2 {
		return legacyCore(level, base, iv, ev) + 5
	}
	return applyRegime(coreValue(level, base, iv, ev)+5, regime)
}

func hpValue(level, base, iv, ev, generation int) int {
	if generation <= 2 {
		return legacyCore(level, base, iv, ev) + level + 10
	}
	return coreValue(level, base, iv, ev) + level + 10
}

// coreValue is the shared pre-modifier term of the modern formula.
func coreValue(level, base, iv, ev int) int {
	return (2*base + iv + ev/4) * level / 100
}

// legacyCore is the generation 1-2 term. EVs are stat experience there,
// contributing ceil(sqrt(ev))/4 points, and the base stat is doubled
// together with the IV.
func legacyCore(level, base, iv, ev int) int {
	statExp := int(math.Ceil(math.Sqrt(float64(ev)))) / 4
	return ((base+iv)*2 + statExp) * level / 100
}

// applyRegime applies the 0.9/1.0/1.1 nature multiplier with exact
// integer arithmetic (floor of n*9/10 and n*11/10 for non-negative n).
func applyRegime(n int, r Regime) int {
	switch r {
	case Negative:
		return n * 9 / 10
	case Positive:
		return n * 11 / 10
	default:
		return n
	}
}
