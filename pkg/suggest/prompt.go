package suggest

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/raterudder/chargeadvisor/pkg/types"
)

// TripEfficiencyMilesPerKWH is the vehicle efficiency the backend is told to
// assume when estimating the charge needed for a trip.
const TripEfficiencyMilesPerKWH = 4

// OutputField describes one field of the required output shape.
type OutputField struct {
	Name        string
	Description string
}

// OutputFields is the shape every backend must return, in display order.
var OutputFields = []OutputField{
	{
		Name:        "suggestedSchedule",
		Description: "A suggested charging schedule, including start time and duration, to optimize cost savings and battery life.",
	},
	{
		Name:        "estimatedCostSavings",
		Description: "An estimate of the cost savings that the user can expect by following the suggested charging schedule.",
	},
	{
		Name:        "batteryLifeBenefits",
		Description: "An explanation of the benefits to battery life of following the suggested charging schedule.",
	},
	{
		Name:        "estimatedChargeForTrip",
		Description: "The estimated battery percentage needed to travel between the start and end locations. Should be returned only if both locations are provided.",
	},
}

const promptText = `You are an AI assistant specializing in optimizing electric vehicle charging schedules.
Your goal is to analyze the user's charging history, their current vehicle state, preferences, and travel plans to provide a comprehensive charging recommendation.

Analyze the following data:
- Charging History: {{.ChargingHistory}}
- Current Battery Percentage: {{.CurrentBatteryPercentage}}%
- User's Preferred Charge Level: {{.PreferredChargeLevel}}%
- Local Energy Cost: {{.EnergyCost}}
- Trip Start Location: {{.StartLocation}}
- Trip End Location: {{.EndLocation}}

Based on this information, provide the following:
1.  A suggested charging schedule in a clear, concise format (e.g., "Start charging at 11:00 PM for 3 hours and 30 minutes.").
2.  An estimate of the potential cost savings compared to their typical charging habits.
3.  A brief explanation of how this schedule benefits the vehicle's battery longevity.
4.  If both a start and end location are provided, calculate and return the estimated battery percentage required for the trip. If not, leave this field blank. Assume an average EV efficiency of {{.MilesPerKWH}} miles/kWh.
`

var promptTemplate = template.Must(template.New("suggestChargingSchedule").Parse(promptText))

type promptData struct {
	types.ScheduleRequest
	MilesPerKWH int
}

// RenderPrompt interpolates the request into the fixed instruction.
func RenderPrompt(req types.ScheduleRequest) (string, error) {
	var b strings.Builder
	err := promptTemplate.Execute(&b, promptData{
		ScheduleRequest: req,
		MilesPerKWH:     TripEfficiencyMilesPerKWH,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return b.String(), nil
}
