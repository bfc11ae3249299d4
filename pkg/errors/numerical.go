package errors

import (
	"math"
)

// CheckValues checks if values contain NaN or Inf and returns a ValueError
// if numerical instability is detected. Up to five offending values are
// reported in the error message.
func CheckValues(operation string, values []float64) error {
	var bad []string
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			bad = append(bad, formatValue(v))
			if len(bad) >= 5 {
				break
			}
		}
	}
	if len(bad) == 0 {
		return nil
	}
	msg := "non-finite values detected: ["
	for i, s := range bad {
		if i > 0 {
			msg += ", "
		}
		msg += s
	}
	msg += "]"
	return NewValueError(operation, msg)
}

func formatValue(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	default:
		return "?"
	}
}

// SafeDivide performs division with protection against division by zero.
// Returns 0 if denominator is zero or close to zero.
func SafeDivide(numerator, denominator float64) float64 {
	if math.Abs(denominator) < 1e-10 {
		return 0
	}
	return numerator / denominator
}
