package suggest

import (
	"errors"

	"github.com/raterudder/chargeadvisor/pkg/schedule"
)

// FailureMessage is what callers show for any ServiceError.
const FailureMessage = "Failed to generate suggestions. Please try again."

// ErrInFlight is returned by Session.Submit while an earlier submission for
// the same session has not finished.
var ErrInFlight = errors.New("a suggestion request is already in progress")

// ServiceError is returned when the suggestion backend could not be reached
// or returned something that could not be mapped into a ScheduleResult.
// Callers may resubmit; nothing is retried automatically.
type ServiceError struct {
	Err error
}

func (e *ServiceError) Error() string {
	return "suggestion service failed: " + e.Err.Error()
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// UserMessage returns the message a caller should display for err.
// Validation errors are reported field by field, everything else gets the
// generic failure notice.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var verr *schedule.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	if errors.Is(err, ErrInFlight) {
		return ErrInFlight.Error()
	}
	return FailureMessage
}
