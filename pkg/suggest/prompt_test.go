package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPrompt(t *testing.T) {
	t.Run("Interpolates Request", func(t *testing.T) {
		req := scenarioOneRequest()
		req.StartLocation = "San Francisco, CA"
		req.EndLocation = "Los Angeles, CA"

		prompt, err := RenderPrompt(req)
		require.NoError(t, err)
		assert.Contains(t, prompt, "- Charging History: - 2024-07-28, 01:00 AM, 30.2 kWh, 4h 15m\n")
		assert.Contains(t, prompt, "- Current Battery Percentage: 20%\n")
		assert.Contains(t, prompt, "- User's Preferred Charge Level: 80%\n")
		assert.Contains(t, prompt, "- Local Energy Cost: 12 cents per kWh\n")
		assert.Contains(t, prompt, "- Trip Start Location: San Francisco, CA\n")
		assert.Contains(t, prompt, "- Trip End Location: Los Angeles, CA\n")
		assert.Contains(t, prompt, "Assume an average EV efficiency of 4 miles/kWh.")
	})

	t.Run("Fractional Percentages Kept", func(t *testing.T) {
		req := scenarioOneRequest()
		req.CurrentBatteryPercentage = 20.5
		prompt, err := RenderPrompt(req)
		require.NoError(t, err)
		assert.Contains(t, prompt, "- Current Battery Percentage: 20.5%\n")
	})

	t.Run("Missing Locations Render Empty", func(t *testing.T) {
		prompt, err := RenderPrompt(scenarioOneRequest())
		require.NoError(t, err)
		assert.Contains(t, prompt, "- Trip Start Location: \n")
		assert.Contains(t, prompt, "- Trip End Location: \n")
	})

	t.Run("Text Is Not Escaped", func(t *testing.T) {
		req := scenarioOneRequest()
		req.EnergyCost = "<$0.12 & peak>"
		prompt, err := RenderPrompt(req)
		require.NoError(t, err)
		assert.Contains(t, prompt, "- Local Energy Cost: <$0.12 & peak>\n")
	})
}

func TestOutputFields(t *testing.T) {
	names := make([]string, 0, len(OutputFields))
	for _, f := range OutputFields {
		names = append(names, f.Name)
		assert.NotEmpty(t, f.Description, f.Name)
	}
	assert.Equal(t, []string{"suggestedSchedule", "estimatedCostSavings", "batteryLifeBenefits", "estimatedChargeForTrip"}, names)
}
