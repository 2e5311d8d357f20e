package stat

import (
	"encoding/json"
	"fmt"
)

// MaxIV is the largest individual value a stat can carry.
const MaxIV = 31

// IVRange is a closed interval of candidate individual values.
// The zero of the type is not meaningful; use Full or Invalid.
type IVRange struct {
	Min int
	Max int
}

// Invalid marks an interval ruled out by contradictory observations.
// It serializes as [-1,-1].
var Invalid = IVRange{Min: -1, Max: -1}

// Full covers every possible individual value.
var Full = IVRange{Min: 0, Max: MaxIV}

// Valid reports whether the interval holds at least one value.
func (r IVRange) Valid() bool { return r.Min >= 0 && r.Max >= r.Min }

// Size returns the number of values in the interval, 0 if invalid.
func (r IVRange) Size() int {
	if !r.Valid() {
		return 0
	}
	return r.Max - r.Min + 1
}

// Contains reports whether iv lies inside the interval.
func (r IVRange) Contains(iv int) bool {
	return r.Valid() && iv >= r.Min && iv <= r.Max
}

// Values enumerates the interval, empty if invalid.
func (r IVRange) Values() []int {
	if !r.Valid() {
		return nil
	}
	out := make([]int, 0, r.Size())
	for iv := r.Min; iv <= r.Max; iv++ {
		out = append(out, iv)
	}
	return out
}

// Overlaps reports whether the two intervals share any value.
func (r IVRange) Overlaps(o IVRange) bool {
	return r.Valid() && o.Valid() && r.Min <= o.Max && o.Min <= r.Max
}

// Union returns the bounding interval of both. An invalid side is ignored.
func (r IVRange) Union(o IVRange) IVRange {
	if !r.Valid() {
		return o
	}
	if !o.Valid() {
		return r
	}
	out := r
	if o.Min < out.Min {
		out.Min = o.Min
	}
	if o.Max > out.Max {
		out.Max = o.Max
	}
	return out
}

// MarshalJSON encodes the interval as a [min,max] pair; Invalid as [-1,-1].
func (r IVRange) MarshalJSON() ([]byte, error) {
	if !r.Valid() {
		return json.Marshal([2]int{-1, -1})
	}
	return json.Marshal([2]int{r.Min, r.Max})
}

// UnmarshalJSON decodes a [min,max] pair produced by MarshalJSON.
func (r *IVRange) UnmarshalJSON(data []byte) error {
	var pair [2]int
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if pair[0] < 0 || pair[1] < pair[0] {
		*r = Invalid
		return nil
	}
	if pair[1] > MaxIV {
		return fmt.Errorf("stat: iv range %v out of bounds", pair)
	}
	*r = IVRange{Min: pair[0], Max: pair[1]}
	return nil
}
