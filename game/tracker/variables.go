package tracker

import "strconv"

// VariableType tags a route-level variable with its declared type.
type VariableType string

const (
	VariableNumber  VariableType = "number"
	VariableBoolean VariableType = "boolean"
	VariableString  VariableType = "string"
)

// CoerceVariable converts a raw string value according to its declared
// type tag: a float64 for numbers (0 when unparseable), true only for
// the literal "true", otherwise the string unchanged. A nil raw value
// means "no value" and coerces to nil.
func CoerceVariable(typ VariableType, raw *string) any {
	if raw == nil {
		return nil
	}
	switch typ {
	case VariableNumber:
		n, _ := strconv.ParseFloat(*raw, 64)
		return n
	case VariableBoolean:
		return *raw == "true"
	default:
		return *raw
	}
}
