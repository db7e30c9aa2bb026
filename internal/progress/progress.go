// Package progress derives display state for a case's timeline: step icons
// and connectors, percentage complete, the next hearing and date labels.
// Everything here is a pure function of its inputs.
package progress

import (
	"fmt"
	"math"
)

// InvalidCaseDataError reports a step pair that cannot produce a percentage.
type InvalidCaseDataError struct {
	Current int
	Total   int
	Reason  string
}

func (e *InvalidCaseDataError) Error() string {
	return fmt.Sprintf("invalid case progress %d/%d: %s", e.Current, e.Total, e.Reason)
}

// Percentage returns 100 * current / total. Out-of-range input is rejected
// rather than clamped, so the result is always within [0, 100].
func Percentage(current, total int) (float64, error) {
	switch {
	case total < 1:
		return 0, &InvalidCaseDataError{Current: current, Total: total, Reason: "total steps must be positive"}
	case current < 1:
		return 0, &InvalidCaseDataError{Current: current, Total: total, Reason: "current step must be at least 1"}
	case current > total:
		return 0, &InvalidCaseDataError{Current: current, Total: total, Reason: "current step exceeds total steps"}
	}
	return 100 * float64(current) / float64(total), nil
}

// RoundedPercentage is Percentage rounded to a whole number for display.
func RoundedPercentage(current, total int) (int, error) {
	p, err := Percentage(current, total)
	if err != nil {
		return 0, err
	}
	return int(math.Round(p)), nil
}
