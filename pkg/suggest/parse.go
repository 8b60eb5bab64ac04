package suggest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/raterudder/chargeadvisor/pkg/types"
)

var (
	jsonFenceOpen  = []byte("```json")
	plainFenceOpen = []byte("```")
	jsonNull       = []byte("null")
)

// ParseResult maps the backend's JSON answer onto a ScheduleResult. The
// first three fields must be present as strings. The trip estimate may be
// missing or null and is then empty.
func ParseResult(raw []byte) (types.ScheduleResult, error) {
	raw = stripFence(bytes.TrimSpace(raw))
	if len(raw) == 0 {
		return types.ScheduleResult{}, errors.New("empty response")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return types.ScheduleResult{}, fmt.Errorf("response is not a JSON object: %w", err)
	}
	if fields == nil {
		return types.ScheduleResult{}, errors.New("response is null")
	}

	var res types.ScheduleResult
	targets := map[string]*string{
		"suggestedSchedule":      &res.SuggestedSchedule,
		"estimatedCostSavings":   &res.EstimatedCostSavings,
		"batteryLifeBenefits":    &res.BatteryLifeBenefits,
		"estimatedChargeForTrip": &res.EstimatedChargeForTrip,
	}
	for _, f := range OutputFields {
		v, ok := fields[f.Name]
		optional := f.Name == "estimatedChargeForTrip"
		if !ok || bytes.Equal(bytes.TrimSpace(v), jsonNull) {
			if optional {
				continue
			}
			return types.ScheduleResult{}, fmt.Errorf("response missing %s", f.Name)
		}
		if err := json.Unmarshal(v, targets[f.Name]); err != nil {
			return types.ScheduleResult{}, fmt.Errorf("response field %s is not a string: %w", f.Name, err)
		}
	}
	return res, nil
}

// stripFence removes a markdown code fence some models wrap JSON in even when
// asked for application/json.
func stripFence(b []byte) []byte {
	switch {
	case bytes.HasPrefix(b, jsonFenceOpen):
		b = b[len(jsonFenceOpen):]
	case bytes.HasPrefix(b, plainFenceOpen):
		b = b[len(plainFenceOpen):]
	default:
		return b
	}
	b = bytes.TrimSuffix(bytes.TrimSpace(b), plainFenceOpen)
	return bytes.TrimSpace(b)
}
