package schedule

import "fmt"

// Rules reported by ValidationError.
const (
	RuleNumeric  = "numeric"
	RuleRange    = "range"
	RuleRequired = "required"
)

// ValidationError is returned when a submitted field violates its domain.
// Nothing is sent to the suggestion backend when this is returned.
type ValidationError struct {
	// Field is the JSON name of the offending field.
	Field string
	// Rule is one of the Rule* constants.
	Rule string
	// Message is a human readable description of the rule.
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}
