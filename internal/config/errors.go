package config

import "fmt"

// ValueError reports a configuration value rejected by validation.
// Values are never clamped; the caller gets the field, the offending value and why.
type ValueError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// CheckUnit validates that v lies in [0, 1]. Used for opacity and alpha values.
func CheckUnit(field string, v float64) error {
	if v < 0 || v > 1 {
		return &ValueError{Field: field, Value: v, Reason: "must be between 0.0 and 1.0"}
	}
	return nil
}

// checkRange validates that v lies in [lo, hi].
func checkRange(field string, v, lo, hi int) error {
	if v < lo || v > hi {
		return &ValueError{Field: field, Value: v, Reason: fmt.Sprintf("must be between %d and %d", lo, hi)}
	}
	return nil
}
