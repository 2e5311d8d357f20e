package stat

import (
	"encoding/json"

	"go.uber.org/zap"
)

// ErrorFunc receives a description of malformed textual input. Parsing
// never fails hard: the caller gets a zero fallback and exactly one
// callback invocation per bad input.
type ErrorFunc func(msg string)

func logError(onErr ErrorFunc) ErrorFunc {
	if onErr != nil {
		return onErr
	}
	return func(msg string) {
		zap.L().Warn("stat parse error", zap.String("input", msg))
	}
}

// ParseStatLine decodes a JSON six-number array ("[45,60,45,25,45,55]")
// into per-stat Values. Anything else yields all zeroes and one onErr call.
func ParseStatLine(raw string, onErr ErrorFunc) Values {
	onErr = logError(onErr)
	var nums []int
	if err := json.Unmarshal([]byte(raw), &nums); err != nil {
		onErr(raw)
		return Values{}
	}
	if len(nums) != len(All) {
		onErr(raw)
		return Values{}
	}
	var out Values
	copy(out[:], nums)
	return out
}
