package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ScheduleRequest is everything the suggestion backend is told about the
// vehicle, the user's preferences and their tariff.
type ScheduleRequest struct {
	// ChargingHistory is a free-text log of past sessions.
	ChargingHistory          string  `json:"chargingHistory"`
	CurrentBatteryPercentage float64 `json:"currentBatteryPercentage"`
	PreferredChargeLevel     float64 `json:"preferredChargeLevel"`
	// EnergyCost is intentionally free text so peak/off-peak structures can
	// be described.
	EnergyCost    string `json:"energyCost"`
	StartLocation string `json:"startLocation"`
	EndLocation   string `json:"endLocation"`
}

// HasTrip returns true if both trip locations were supplied, which is the only
// case where a trip estimate is asked for.
func (r ScheduleRequest) HasTrip() bool {
	return r.StartLocation != "" && r.EndLocation != ""
}

// ScheduleResult is the suggestion returned for a ScheduleRequest.
type ScheduleResult struct {
	SuggestedSchedule    string `json:"suggestedSchedule"`
	EstimatedCostSavings string `json:"estimatedCostSavings"`
	BatteryLifeBenefits  string `json:"batteryLifeBenefits"`
	// EstimatedChargeForTrip is empty unless the request had both locations.
	EstimatedChargeForTrip string `json:"estimatedChargeForTrip"`
}

// ScheduleForm is the raw form submission. The percentages come from text
// inputs and are coerced to numbers when the request is built.
type ScheduleForm struct {
	CurrentBatteryPercentage FormValue `json:"currentBatteryPercentage"`
	PreferredChargeLevel     FormValue `json:"preferredChargeLevel"`
	EnergyCost               string    `json:"energyCost"`
	StartLocation            string    `json:"startLocation,omitempty"`
	EndLocation              string    `json:"endLocation,omitempty"`
	// ChargingHistory is optional; the server fills it in from the user's
	// recent sessions when it is empty.
	ChargingHistory string `json:"chargingHistory,omitempty"`
}

// FormValue holds a value typed into a form field. Both JSON numbers and JSON
// strings decode into it so clients don't have to convert inputs themselves.
type FormValue string

// UnmarshalJSON implements json.Unmarshaler.
func (v *FormValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*v = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = FormValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("form value must be a number or a string: %w", err)
	}
	*v = FormValue(n.String())
	return nil
}
