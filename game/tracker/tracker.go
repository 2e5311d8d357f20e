// Package tracker implements the IV inference core: interval narrowing
// from recorded stat observations, nature inference, stat value
// projection, and the per-tracker calculation registry.
package tracker

import (
	"sort"

	"github.com/FortunateNaruto/pokemon-ranger/game/stat"
)

// Tracker is the aggregate record for one tracked creature. It is owned
// by its REST collaborators; the core only reads it and derives views.
type Tracker struct {
	Name          string
	Generation    int
	StartingLevel int

	// BaseStats holds one stat line per evolution stage.
	BaseStats []stat.Values

	// EVSegments maps a segment start level to the cumulative EVs in
	// effect from that level on.
	EVSegments map[int]stat.Values

	// Observations maps evolution stage -> level -> stat -> observed value.
	// Sparse: levels without entries constrain nothing.
	Observations map[int]map[int]map[stat.Stat]int

	// StaticIVs pins a stat to a known individual value.
	StaticIVs map[stat.Stat]int

	// StaticNature, when set, is authoritative and skips inference.
	StaticNature *stat.Nature

	// DirectInput switches the tracker to manually entered IVs.
	DirectInput    bool
	DirectInputIVs stat.Values

	// ManualNegative and ManualPositive pin nature roles independently
	// of a full nature definition.
	ManualNegative *stat.Stat
	ManualPositive *stat.Stat
}

// EVsAt returns the cumulative EVs in effect at the given level: the
// segment with the greatest start level not exceeding it.
func (t *Tracker) EVsAt(level int) stat.Values {
	best := -1
	var out stat.Values
	for start, vals := range t.EVSegments {
		if start <= level && start > best {
			best = start
			out = vals
		}
	}
	return out
}

// BaseStat returns the base stat for an evolution stage, clamping the
// stage to the known rows.
func (t *Tracker) BaseStat(evolution int, st stat.Stat) int {
	if len(t.BaseStats) == 0 {
		return 0
	}
	if evolution < 0 {
		evolution = 0
	}
	if evolution >= len(t.BaseStats) {
		evolution = len(t.BaseStats) - 1
	}
	return t.BaseStats[evolution][st]
}

// Record stores one observation, creating nested maps as needed.
func (t *Tracker) Record(evolution, level int, st stat.Stat, value int) {
	if t.Observations == nil {
		t.Observations = make(map[int]map[int]map[stat.Stat]int)
	}
	if t.Observations[evolution] == nil {
		t.Observations[evolution] = make(map[int]map[stat.Stat]int)
	}
	if t.Observations[evolution][level] == nil {
		t.Observations[evolution][level] = make(map[stat.Stat]int)
	}
	t.Observations[evolution][level][st] = value
}

// ResetFrom drops every observation at or above the given level.
func (t *Tracker) ResetFrom(level int) {
	for evo, levels := range t.Observations {
		for lvl := range levels {
			if lvl >= level {
				delete(levels, lvl)
			}
		}
		if len(levels) == 0 {
			delete(t.Observations, evo)
		}
	}
}

func sortedKeys(m map[int]map[stat.Stat]int) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

func sortedEvolutions(m map[int]map[int]map[stat.Stat]int) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
