// Package schedule turns a submitted charging-preferences form into a
// validated types.ScheduleRequest. It never talks to the network.
package schedule

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/raterudder/chargeadvisor/pkg/types"
)

type percentRange struct {
	field    string
	min, max float64
}

var (
	currentBatteryRange = percentRange{field: "currentBatteryPercentage", min: 0, max: 100}
	preferredLevelRange = percentRange{field: "preferredChargeLevel", min: 1, max: 100}
)

// Build coerces and validates the form and returns the request to send to
// the suggestion backend. history is the already formatted charging history.
// The first violation is returned as a *ValidationError.
func Build(form types.ScheduleForm, history string) (types.ScheduleRequest, error) {
	current, err := currentBatteryRange.parse(form.CurrentBatteryPercentage)
	if err != nil {
		return types.ScheduleRequest{}, err
	}
	preferred, err := preferredLevelRange.parse(form.PreferredChargeLevel)
	if err != nil {
		return types.ScheduleRequest{}, err
	}

	req := types.ScheduleRequest{
		ChargingHistory:          history,
		CurrentBatteryPercentage: current,
		PreferredChargeLevel:     preferred,
		EnergyCost:               form.EnergyCost,
		StartLocation:            form.StartLocation,
		EndLocation:              form.EndLocation,
	}
	if err := Validate(req); err != nil {
		return types.ScheduleRequest{}, err
	}
	return req, nil
}

// Validate checks an already typed request against the same rules as Build.
func Validate(req types.ScheduleRequest) error {
	if err := currentBatteryRange.check(req.CurrentBatteryPercentage); err != nil {
		return err
	}
	if err := preferredLevelRange.check(req.PreferredChargeLevel); err != nil {
		return err
	}
	if strings.TrimSpace(req.EnergyCost) == "" {
		return &ValidationError{
			Field:   "energyCost",
			Rule:    RuleRequired,
			Message: "is required",
		}
	}
	return nil
}

func (r percentRange) parse(v types.FormValue) (float64, error) {
	s := strings.TrimSpace(string(v))
	if s == "" {
		return 0, r.notNumeric()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, r.notNumeric()
	}
	return f, r.check(f)
}

func (r percentRange) check(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return r.notNumeric()
	}
	if f < r.min || f > r.max {
		return &ValidationError{
			Field:   r.field,
			Rule:    RuleRange,
			Message: fmt.Sprintf("must be between %g and %g", r.min, r.max),
		}
	}
	return nil
}

func (r percentRange) notNumeric() error {
	return &ValidationError{
		Field:   r.field,
		Rule:    RuleNumeric,
		Message: "must be a number",
	}
}
