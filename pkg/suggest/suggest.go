// Package suggest asks a generative model for a charging schedule.
//
// A Service wraps a Generator (the model backend) and turns every backend
// failure into a *ServiceError. Each call is independent: nothing is cached
// and nothing is retried.
package suggest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/raterudder/chargeadvisor/pkg/log"
	"github.com/raterudder/chargeadvisor/pkg/schedule"
	"github.com/raterudder/chargeadvisor/pkg/types"
)

// Generator produces a suggestion for a request with exactly one call to its
// backend.
type Generator interface {
	Generate(ctx context.Context, req types.ScheduleRequest) (types.ScheduleResult, error)
}

// Suggester is implemented by Service. Callers depend on it so tests can
// substitute their own.
type Suggester interface {
	Suggest(ctx context.Context, req types.ScheduleRequest) (types.ScheduleResult, error)
}

// Service is safe for concurrent use and holds no state between calls.
type Service struct {
	gen     Generator
	metrics *Metrics
}

var _ Suggester = (*Service)(nil)

// NewService returns a Service using gen. metrics may be nil.
func NewService(gen Generator, metrics *Metrics) *Service {
	return &Service{
		gen:     gen,
		metrics: metrics,
	}
}

// Suggest validates req, calls the generator once and returns either the
// complete result or an error. On error the result is always the zero value.
func (s *Service) Suggest(ctx context.Context, req types.ScheduleRequest) (types.ScheduleResult, error) {
	call := newCallFSM()
	if err := schedule.Validate(req); err != nil {
		advance(ctx, call, callEventFail)
		s.metrics.observe(OutcomeInvalid, 0)
		return types.ScheduleResult{}, err
	}

	log.Ctx(ctx).DebugContext(
		ctx,
		"requesting charging schedule suggestion",
		slog.Float64("currentBatteryPercentage", req.CurrentBatteryPercentage),
		slog.Float64("preferredChargeLevel", req.PreferredChargeLevel),
		slog.Bool("hasTrip", req.HasTrip()),
	)

	advance(ctx, call, callEventSend)
	start := time.Now()
	res, err := s.gen.Generate(ctx, req)
	took := time.Since(start)
	if err != nil {
		advance(ctx, call, callEventFail)
		s.metrics.observe(OutcomeFailed, took)
		log.Ctx(ctx).WarnContext(ctx, "charging schedule suggestion failed", slog.Duration("took", took), slog.Any("error", err))
		var serr *ServiceError
		if errors.As(err, &serr) {
			return types.ScheduleResult{}, serr
		}
		return types.ScheduleResult{}, &ServiceError{Err: err}
	}

	advance(ctx, call, callEventReceive)
	s.metrics.observe(OutcomeSucceeded, took)
	log.Ctx(ctx).InfoContext(
		ctx,
		"charging schedule suggestion generated",
		slog.Duration("took", took),
		slog.Bool("hasTripEstimate", res.EstimatedChargeForTrip != ""),
	)
	return res, nil
}
