package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/raterudder/chargeadvisor/pkg/types"
)

// DemoChargingSessions returns the sessions every user of the static
// provider sees, newest first.
func DemoChargingSessions() []types.ChargingSession {
	session := func(id, start string, d time.Duration, kwh, cost float64) types.ChargingSession {
		ts, err := time.ParseInLocation("2006-01-02 03:04 PM", start, time.UTC)
		if err != nil {
			panic(fmt.Sprintf("bad demo session start %q: %v", start, err))
		}
		return types.ChargingSession{
			ID:          id,
			ChargerName: "Home Charger",
			TSStart:     ts,
			TSEnd:       ts.Add(d),
			EnergyKWH:   kwh,
			CostDollars: cost,
		}
	}
	return []types.ChargingSession{
		session("1", "2024-07-28 01:00 AM", 4*time.Hour+15*time.Minute, 30.2, 3.62),
		session("2", "2024-07-26 11:30 PM", 2*time.Hour+30*time.Minute, 18.0, 2.16),
		session("3", "2024-07-24 02:00 AM", 5*time.Hour, 35.0, 4.20),
		session("4", "2024-07-22 10:45 PM", 3*time.Hour+45*time.Minute, 26.8, 3.21),
		session("5", "2024-07-20 01:30 AM", 1*time.Hour+55*time.Minute, 13.5, 1.62),
		session("6", "2024-07-18 12:15 AM", 6*time.Hour+10*time.Minute, 42.1, 5.05),
	}
}

// Static serves the demo charging history and keeps users in memory. It is
// the default provider for local development.
type Static struct {
	mu    sync.RWMutex
	users map[string]types.User
}

var _ Database = (*Static)(nil)

// NewStatic returns an empty Static provider.
func NewStatic() *Static {
	return &Static{
		users: make(map[string]types.User),
	}
}

// ListChargingSessions returns the demo sessions for any user.
func (s *Static) ListChargingSessions(ctx context.Context, userID string, limit int) ([]types.ChargingSession, error) {
	if userID == "" {
		return nil, fmt.Errorf("userID cannot be empty")
	}
	sessions := DemoChargingSessions()
	if limit > 0 && limit < len(sessions) {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

func (s *Static) GetUser(ctx context.Context, userID string) (types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return types.User{}, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	return u, nil
}

func (s *Static) CreateUser(ctx context.Context, user types.User) error {
	if user.ID == "" {
		return fmt.Errorf("user ID cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; ok {
		return fmt.Errorf("user %s already exists", user.ID)
	}
	s.users[user.ID] = user
	return nil
}

func (s *Static) Close() error {
	return nil
}
