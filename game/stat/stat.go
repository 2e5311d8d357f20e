package stat

import "fmt"

// Stat identifies one of the six tracked stats.
type Stat int

const (
	HP Stat = iota
	Attack
	Defense
	SpAttack
	SpDefense
	Speed
)

// All lists the stats in canonical order (HP first, Speed last).
var All = [6]Stat{HP, Attack, Defense, SpAttack, SpDefense, Speed}

var statNames = [6]string{"hp", "attack", "defense", "spAttack", "spDefense", "speed"}

func (s Stat) String() string {
	if s < 0 || int(s) >= len(statNames) {
		return fmt.Sprintf("stat(%d)", int(s))
	}
	return statNames[s]
}

// Parse resolves a stat name ("hp", "attack", ...) to its Stat.
func Parse(name string) (Stat, error) {
	for i, n := range statNames {
		if n == name {
			return Stat(i), nil
		}
	}
	return 0, fmt.Errorf("stat: unknown stat %q", name)
}

// MarshalText encodes the stat as its canonical name. Going through
// TextMarshaler keeps map[Stat] keys readable in JSON.
func (s Stat) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a stat from its canonical name.
func (s *Stat) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Values holds one integer per stat, indexed by Stat.
type Values [6]int

// Regime is the nature modifier applied to a single stat.
type Regime int

const (
	Negative Regime = iota // nature-decreased, ×0.9
	Neutral                // unaffected, ×1.0
	Positive               // nature-increased, ×1.1
)

// Regimes lists the regimes in canonical order.
var Regimes = [3]Regime{Negative, Neutral, Positive}

var regimeNames = [3]string{"negative", "neutral", "positive"}

func (r Regime) String() string {
	if r < 0 || int(r) >= len(regimeNames) {
		return fmt.Sprintf("regime(%d)", int(r))
	}
	return regimeNames[r]
}

// RegimeSet marks which regimes are admissible, indexed by Regime.
type RegimeSet [3]bool

// Has reports whether the regime is in the set.
func (rs RegimeSet) Has(r Regime) bool { return rs[r] }

// Nature is the confirmed or partially inferred nature assignment.
// A nil component means that role is still unknown. Both components
// set to the same stat marks the nature as confirmed neutral.
type Nature struct {
	Decreased *Stat `json:"decreased"`
	Increased *Stat `json:"increased"`
}

// ConfirmedNeutral reports whether both roles point at the same stat,
// the encoding for a nature known to modify nothing.
func (n Nature) ConfirmedNeutral() bool {
	return n.Decreased != nil && n.Increased != nil && *n.Decreased == *n.Increased
}

// AdmissibleRegimes resolves which modifier regimes can still apply to a
// stat under the current nature knowledge. HP is never nature-modified.
// A confirmed role pins its stat to a single regime and excludes that
// regime everywhere else.
func AdmissibleRegimes(st Stat, n Nature) RegimeSet {
	if st == HP {
		return RegimeSet{Neutral: true}
	}
	if n.ConfirmedNeutral() {
		return RegimeSet{Neutral: true}
	}
	set := RegimeSet{Negative: true, Neutral: true, Positive: true}
	if n.Decreased != nil {
		if *n.Decreased == st {
			return RegimeSet{Negative: true}
		}
		set[Negative] = false
	}
	if n.Increased != nil {
		if *n.Increased == st {
			return RegimeSet{Positive: true}
		}
		set[Positive] = false
	}
	return set
}

// StatPtr returns a pointer to the given stat, for Nature components.
func StatPtr(s Stat) *Stat { return &s }
