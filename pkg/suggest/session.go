package suggest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/looplab/fsm"

	"github.com/raterudder/chargeadvisor/pkg/log"
	"github.com/raterudder/chargeadvisor/pkg/types"
)

// Caller-side states of a Session.
const (
	StateIdle    = "idle"
	StateLoading = "loading"
	StateSuccess = "success"
	StateError   = "error"
)

const (
	eventSubmit  = "submit"
	eventSucceed = "succeed"
	eventFail    = "fail"
)

// Snapshot is the externally visible state of a Session.
type Snapshot struct {
	State     string                `json:"state"`
	Result    *types.ScheduleResult `json:"result,omitempty"`
	Error     string                `json:"error,omitempty"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

// Session is the state a caller keeps around its suggestion requests. Only
// one submission may be loading at a time and a new submission clears the
// previous result so it is never shown as current.
type Session struct {
	mu        sync.Mutex
	fsm       *fsm.FSM
	result    types.ScheduleResult
	err       error
	updatedAt time.Time
}

// NewSession returns an idle Session.
func NewSession() *Session {
	s := &Session{updatedAt: time.Now()}
	s.fsm = fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{Name: eventSubmit, Src: []string{StateIdle, StateSuccess, StateError}, Dst: StateLoading},
			{Name: eventSucceed, Src: []string{StateLoading}, Dst: StateSuccess},
			{Name: eventFail, Src: []string{StateLoading}, Dst: StateError},
		},
		fsm.Callbacks{
			"enter_state": func(ctx context.Context, e *fsm.Event) {
				log.Ctx(ctx).DebugContext(ctx, "suggestion session transition", slog.String("from", e.Src), slog.String("to", e.Dst))
			},
		},
	)
	return s
}

// Submit runs req through sug. It returns ErrInFlight without calling sug if
// a previous submission has not finished.
func (s *Session) Submit(ctx context.Context, sug Suggester, req types.ScheduleRequest) (types.ScheduleResult, error) {
	if err := s.transition(ctx, eventSubmit, func() {
		s.result = types.ScheduleResult{}
		s.err = nil
	}); err != nil {
		return types.ScheduleResult{}, err
	}

	res, err := sug.Suggest(ctx, req)

	if err != nil {
		if terr := s.transition(ctx, eventFail, func() { s.err = err }); terr != nil {
			return types.ScheduleResult{}, terr
		}
		return types.ScheduleResult{}, err
	}
	if terr := s.transition(ctx, eventSucceed, func() { s.result = res }); terr != nil {
		return types.ScheduleResult{}, terr
	}
	return res, nil
}

func (s *Session) transition(ctx context.Context, event string, apply func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event == eventSubmit && s.fsm.Is(StateLoading) {
		return ErrInFlight
	}
	if err := s.fsm.Event(ctx, event); err != nil {
		return fmt.Errorf("suggestion session %s: %w", event, err)
	}
	apply()
	s.updatedAt = time.Now()
	return nil
}

// Snapshot returns the current state. Result is only set in StateSuccess.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State:     s.fsm.Current(),
		UpdatedAt: s.updatedAt,
	}
	switch snap.State {
	case StateSuccess:
		res := s.result
		snap.Result = &res
	case StateError:
		snap.Error = UserMessage(s.err)
	}
	return snap
}

// Sessions keeps one in-memory Session per user.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessions returns an empty Sessions.
func NewSessions() *Sessions {
	return &Sessions{
		sessions: make(map[string]*Session),
	}
}

// Get returns the user's Session, creating an idle one if needed.
func (m *Sessions) Get(userID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[userID]; ok {
		return s
	}
	s := NewSession()
	m.sessions[userID] = s
	return s
}
