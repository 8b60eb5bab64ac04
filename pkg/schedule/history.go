package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/raterudder/chargeadvisor/pkg/types"
)

// FormatHistory renders sessions as the text log the suggestion backend
// reads, one "- date, start time, energy, duration" line per session.
func FormatHistory(sessions []types.ChargingSession) string {
	var b strings.Builder
	for i, s := range sessions {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(
			&b,
			"- %s, %s, %.1f kWh, %s",
			s.TSStart.Format(time.DateOnly),
			s.TSStart.Format("03:04 PM"),
			s.EnergyKWH,
			formatDuration(s.Duration()),
		)
	}
	return b.String()
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	return fmt.Sprintf("%dh %dm", h, m)
}
