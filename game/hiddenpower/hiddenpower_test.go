package hiddenpower

import (
	"testing"

	"github.com/FortunateNaruto/pokemon-ranger/game/stat"
)

func pinned(ivs [6]int) map[stat.Stat][]int {
	out := make(map[stat.Stat][]int)
	for _, st := range stat.All {
		out[st] = []int{ivs[st]}
	}
	return out
}

func TestParseTypeDefinition(t *testing.T) {
	got := ParseTypeDefinition("Fire/Flying", nil)
	if len(got) != 2 || got[0] != "fire" || got[1] != "flying" {
		t.Errorf("got %v", got)
	}
	if got := ParseTypeDefinition("water", nil); len(got) != 1 || got[0] != "water" {
		t.Errorf("got %v", got)
	}
}

func TestParseTypeDefinition_UnknownToken(t *testing.T) {
	calls := 0
	var offending string
	got := ParseTypeDefinition("Fire/Sound", func(msg string) {
		calls++
		offending = msg
	})
	if got != nil {
		t.Errorf("got %v, want nil", got)
	}
	if calls != 1 || offending != "Sound" {
		t.Errorf("callback calls=%d token=%q", calls, offending)
	}
}

func TestResolve_KnownSpreads(t *testing.T) {
	// All even IVs: every parity bit 0, index 0.
	typ, ok := Resolve(pinned([6]int{0, 0, 0, 0, 0, 0}))
	if !ok || typ != "fighting" {
		t.Errorf("all even: got %q ok=%v", typ, ok)
	}
	// All odd IVs: every bit 1, sum 63, index 15.
	typ, ok = Resolve(pinned([6]int{31, 31, 31, 31, 31, 31}))
	if !ok || typ != "dark" {
		t.Errorf("all odd: got %q ok=%v", typ, ok)
	}
	// hp/def/spDef/speed odd, atk/spAtk even: 1+4+32+8 = 45, 45*15/63 = 10.
	typ, ok = Resolve(pinned([6]int{31, 30, 31, 30, 31, 31}))
	if !ok || typ != "grass" {
		t.Errorf("mixed spread: got %q ok=%v", typ, ok)
	}
}

func TestResolve_AlwaysAKnownType(t *testing.T) {
	valid := make(map[string]bool, len(Types))
	for _, name := range Types {
		valid[name] = true
	}
	// Sweep parity patterns through pinned spreads.
	for pattern := 0; pattern < 64; pattern++ {
		var ivs [6]int
		for _, st := range stat.All {
			if pattern&(1<<uint(st)) != 0 {
				ivs[st] = 1
			}
		}
		typ, ok := Resolve(pinned(ivs))
		if !ok {
			t.Fatalf("pattern %d: undetermined", pattern)
		}
		if !valid[typ] {
			t.Fatalf("pattern %d: unknown type %q", pattern, typ)
		}
	}
}

func TestResolve_WeightedByIntervalFraction(t *testing.T) {
	// Attack has IVs {4,5,6}: even parity wins at 2/3. Everything else
	// is pinned even, so the winner is the all-even combination.
	cands := pinned([6]int{0, 0, 0, 0, 0, 0})
	cands[stat.Attack] = []int{4, 5, 6}
	typ, ok := Resolve(cands)
	if !ok || typ != "fighting" {
		t.Errorf("got %q ok=%v", typ, ok)
	}
}

func TestResolve_TieBreakFirstCombination(t *testing.T) {
	// A perfect 50/50 stat ties two combinations; the earlier one in
	// enumeration order (bit clear) must win.
	cands := pinned([6]int{0, 0, 0, 0, 0, 0})
	cands[stat.Speed] = []int{0, 1}
	typ, ok := Resolve(cands)
	if !ok || typ != "fighting" {
		t.Errorf("got %q ok=%v", typ, ok)
	}
}

func TestResolve_Undetermined(t *testing.T) {
	cands := pinned([6]int{0, 0, 0, 0, 0, 0})
	cands[stat.Defense] = nil
	if typ, ok := Resolve(cands); ok {
		t.Errorf("expected undetermined, got %q", typ)
	}
}
