package stat

import (
	"encoding/json"
	"testing"
)

func TestParseAndString(t *testing.T) {
	for _, st := range All {
		parsed, err := Parse(st.String())
		if err != nil {
			t.Fatalf("%v: %v", st, err)
		}
		if parsed != st {
			t.Errorf("round trip %v -> %v", st, parsed)
		}
	}
	if _, err := Parse("evasion"); err == nil {
		t.Error("expected error for unknown stat")
	}
}

func TestStatAsJSONMapKey(t *testing.T) {
	data, err := json.Marshal(map[Stat]int{SpAttack: 31})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"spAttack":31}` {
		t.Errorf("got %s", data)
	}
	var back map[Stat]int
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back[SpAttack] != 31 {
		t.Errorf("got %v", back)
	}
}

func TestAdmissibleRegimes_Unknown(t *testing.T) {
	set := AdmissibleRegimes(Attack, Nature{})
	for _, r := range Regimes {
		if !set.Has(r) {
			t.Errorf("regime %v excluded with no nature knowledge", r)
		}
	}
}

func TestAdmissibleRegimes_HPNeutralOnly(t *testing.T) {
	set := AdmissibleRegimes(HP, Nature{Increased: StatPtr(HP), Decreased: StatPtr(Speed)})
	if !set.Has(Neutral) || set.Has(Positive) || set.Has(Negative) {
		t.Errorf("hp regimes = %v, want neutral only", set)
	}
}

func TestAdmissibleRegimes_ConfirmedRoles(t *testing.T) {
	n := Nature{Decreased: StatPtr(SpAttack), Increased: StatPtr(Attack)}

	set := AdmissibleRegimes(Attack, n)
	if !set.Has(Positive) || set.Has(Neutral) || set.Has(Negative) {
		t.Errorf("increased stat: %v", set)
	}
	set = AdmissibleRegimes(SpAttack, n)
	if !set.Has(Negative) || set.Has(Neutral) || set.Has(Positive) {
		t.Errorf("decreased stat: %v", set)
	}
	set = AdmissibleRegimes(Speed, n)
	if !set.Has(Neutral) || set.Has(Positive) || set.Has(Negative) {
		t.Errorf("uninvolved stat: %v", set)
	}
}

func TestAdmissibleRegimes_PartialKnowledge(t *testing.T) {
	// Increased known, decreased unknown: other stats may still be the
	// decreased one, but cannot be increased.
	n := Nature{Increased: StatPtr(Attack)}
	set := AdmissibleRegimes(Speed, n)
	if !set.Has(Negative) || !set.Has(Neutral) || set.Has(Positive) {
		t.Errorf("got %v", set)
	}
}

func TestAdmissibleRegimes_ConfirmedNeutral(t *testing.T) {
	n := Nature{Decreased: StatPtr(Attack), Increased: StatPtr(Attack)}
	if !n.ConfirmedNeutral() {
		t.Fatal("expected confirmed neutral")
	}
	for _, st := range All {
		set := AdmissibleRegimes(st, n)
		if !set.Has(Neutral) || set.Has(Positive) || set.Has(Negative) {
			t.Errorf("%v: %v", st, set)
		}
	}
}
