// Package hiddenpower derives the hidden power type from the parity of
// the six individual values, working over the IV candidates that survive
// interval narrowing rather than a single known spread.
package hiddenpower

import (
	"strings"

	"go.uber.org/zap"

	"github.com/FortunateNaruto/pokemon-ranger/game/stat"
)

// Types are the sixteen hidden power types, indexed by the derived type index.
var Types = [16]string{
	"fighting", "flying", "poison", "ground",
	"rock", "bug", "ghost", "steel",
	"fire", "water", "grass", "electric",
	"psychic", "ice", "dragon", "dark",
}

// typeTokens is the full set of type names accepted in species type
// definitions. Normal and Fairy cannot be hidden power types but are
// valid species types.
var typeTokens = map[string]bool{
	"normal": true, "fighting": true, "flying": true, "poison": true,
	"ground": true, "rock": true, "bug": true, "ghost": true,
	"steel": true, "fire": true, "water": true, "grass": true,
	"electric": true, "psychic": true, "ice": true, "dragon": true,
	"dark": true, "fairy": true,
}

// ParseTypeDefinition splits a "Fire/Flying" style type definition into
// lowercase type names. The first token outside the known type set aborts
// the parse: the result is nil and onErr is called once with that token.
func ParseTypeDefinition(raw string, onErr stat.ErrorFunc) []string {
	var out []string
	for _, tok := range strings.Split(raw, "/") {
		name := strings.ToLower(strings.TrimSpace(tok))
		if !typeTokens[name] {
			if onErr == nil {
				onErr = func(msg string) {
					zap.L().Warn("unknown type token", zap.String("token", msg))
				}
			}
			onErr(tok)
			return nil
		}
		out = append(out, name)
	}
	return out
}

// parityWeights map each stat to its term in the hidden power index sum.
// Speed sits between Defense and SpAttack in the bit layout.
var parityWeights = map[stat.Stat]int{
	stat.HP:        1,
	stat.Attack:    2,
	stat.Defense:   4,
	stat.Speed:     8,
	stat.SpAttack:  16,
	stat.SpDefense: 32,
}

// Resolve enumerates all 64 parity combinations over the six stats,
// weights each by the fraction of the stat's candidate IVs matching that
// parity, and returns the hidden power type of the most probable
// combination. Ties keep the first combination in enumeration order.
// The second return is false when every combination has zero probability.
func Resolve(candidates map[stat.Stat][]int) (string, bool) {
	var oddFraction [6]float64
	for _, st := range stat.All {
		ivs := candidates[st]
		if len(ivs) == 0 {
			return "", false
		}
		odd := 0
		for _, iv := range ivs {
			if iv%2 == 1 {
				odd++
			}
		}
		oddFraction[st] = float64(odd) / float64(len(ivs))
	}

	bestProb := 0.0
	bestIndex := -1
	for combo := 0; combo < 64; combo++ {
		prob := 1.0
		sum := 0
		for _, st := range stat.All {
			if combo&(1<<uint(st)) != 0 {
				prob *= oddFraction[st]
				sum += parityWeights[st]
			} else {
				prob *= 1 - oddFraction[st]
			}
		}
		if prob > bestProb {
			bestProb = prob
			bestIndex = sum * 15 / 63
		}
	}
	if bestIndex < 0 {
		return "", false
	}
	return Types[bestIndex], true
}
