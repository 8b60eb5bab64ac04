package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/raterudder/chargeadvisor/pkg/log"
	"github.com/raterudder/chargeadvisor/pkg/storage/storagemock"
	"github.com/raterudder/chargeadvisor/pkg/suggest"
	"github.com/raterudder/chargeadvisor/pkg/types"
)

func init() {
	log.SetDefaultLogLevel(slog.LevelError)
}

type mockSuggester struct {
	mock.Mock
}

func (m *mockSuggester) Suggest(ctx context.Context, req types.ScheduleRequest) (types.ScheduleResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(types.ScheduleResult), args.Error(1)
}

var _ suggest.Suggester = (*mockSuggester)(nil)

// fakeVerifier accepts "valid-token" for user1 and "other-token" for user2.
func fakeVerifier(ctx context.Context, rawIDToken string) (identity, error) {
	switch rawIDToken {
	case "valid-token":
		return identity{UserID: "user1", PhoneNumber: "+15555550100", Expiry: time.Now().Add(time.Hour)}, nil
	case "other-token":
		return identity{UserID: "user2", Email: "user2@example.com", Expiry: time.Now().Add(time.Hour)}, nil
	}
	return identity{}, errors.New("token is invalid")
}

func newTestServer(sug suggest.Suggester, db *storagemock.MockDatabase) *Server {
	return &Server{
		suggester:         sug,
		sessions:          suggest.NewSessions(),
		storage:           db,
		firebaseProjectID: "test-project",
		verifier:          fakeVerifier,
		serverName:        "chargeadvisor-test",
	}
}

func newBypassServer(sug suggest.Suggester, db *storagemock.MockDatabase) *Server {
	return &Server{
		suggester:  sug,
		sessions:   suggest.NewSessions(),
		storage:    db,
		bypassAuth: true,
		serverName: "chargeadvisor-test",
	}
}
