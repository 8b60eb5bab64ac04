package suggest

import (
	"context"
	"log/slog"

	"github.com/looplab/fsm"

	"github.com/raterudder/chargeadvisor/pkg/log"
)

// States of a single Service.Suggest call.
const (
	callIdle       = "idle"
	callRequesting = "requesting"
	callSucceeded  = "succeeded"
	callFailed     = "failed"
)

const (
	callEventSend    = "send"
	callEventReceive = "receive"
	callEventFail    = "fail"
)

// newCallFSM tracks one backend call. Succeeded and failed are terminal.
func newCallFSM() *fsm.FSM {
	return fsm.NewFSM(
		callIdle,
		fsm.Events{
			{Name: callEventSend, Src: []string{callIdle}, Dst: callRequesting},
			{Name: callEventReceive, Src: []string{callRequesting}, Dst: callSucceeded},
			{Name: callEventFail, Src: []string{callIdle, callRequesting}, Dst: callFailed},
		},
		fsm.Callbacks{
			"enter_state": func(ctx context.Context, e *fsm.Event) {
				log.Ctx(ctx).DebugContext(ctx, "suggestion call transition", slog.String("from", e.Src), slog.String("to", e.Dst))
			},
		},
	)
}

// advance fires event and only logs a failure, the call's outcome is decided
// by the backend result and not by bookkeeping.
func advance(ctx context.Context, f *fsm.FSM, event string) {
	if err := f.Event(ctx, event); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "invalid suggestion call transition", slog.String("event", event), slog.String("state", f.Current()), slog.Any("error", err))
	}
}
