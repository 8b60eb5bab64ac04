package suggest

import (
	"context"
	"log/slog"

	"github.com/raterudder/chargeadvisor/pkg/log"
	"github.com/raterudder/chargeadvisor/pkg/types"
	"github.com/stretchr/testify/mock"
)

func init() {
	log.SetDefaultLogLevel(slog.LevelError)
}

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, req types.ScheduleRequest) (types.ScheduleResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(types.ScheduleResult), args.Error(1)
}

// stubGenerator is a deterministic backend that only fills in the trip
// estimate when both locations are present.
type stubGenerator struct {
	calls int
}

func (s *stubGenerator) Generate(ctx context.Context, req types.ScheduleRequest) (types.ScheduleResult, error) {
	s.calls++
	res := types.ScheduleResult{
		SuggestedSchedule:    "Start charging at 11:00 PM for 3 hours.",
		EstimatedCostSavings: "$1.50/month",
		BatteryLifeBenefits:  "Reduces heat stress.",
	}
	if req.HasTrip() {
		res.EstimatedChargeForTrip = "Approximately 35% of battery for " + req.StartLocation + " to " + req.EndLocation + "."
	}
	return res, nil
}

// blockingGenerator waits for the context or release before answering.
type blockingGenerator struct {
	started chan struct{}
	release chan struct{}
}

func newBlockingGenerator() *blockingGenerator {
	return &blockingGenerator{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (b *blockingGenerator) Generate(ctx context.Context, req types.ScheduleRequest) (types.ScheduleResult, error) {
	b.started <- struct{}{}
	select {
	case <-ctx.Done():
		return types.ScheduleResult{}, ctx.Err()
	case <-b.release:
		return types.ScheduleResult{SuggestedSchedule: "later"}, nil
	}
}

func scenarioOneRequest() types.ScheduleRequest {
	return types.ScheduleRequest{
		ChargingHistory:          "- 2024-07-28, 01:00 AM, 30.2 kWh, 4h 15m",
		CurrentBatteryPercentage: 20,
		PreferredChargeLevel:     80,
		EnergyCost:               "12 cents per kWh",
	}
}
