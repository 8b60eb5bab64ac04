package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raterudder/chargeadvisor/pkg/types"
)

func TestStatic(t *testing.T) {
	ctx := context.Background()
	s := NewStatic()
	defer s.Close()

	t.Run("Sessions", func(t *testing.T) {
		sessions, err := s.ListChargingSessions(ctx, "user1", 0)
		require.NoError(t, err)
		require.Len(t, sessions, 6)

		assert.Equal(t, "2024-07-28 01:00", sessions[0].TSStart.Format("2006-01-02 15:04"))
		assert.Equal(t, "4h15m0s", sessions[0].Duration().String())
		assert.Equal(t, 30.2, sessions[0].EnergyKWH)
		assert.Equal(t, 3.62, sessions[0].CostDollars)
		assert.Equal(t, "2024-07-26 23:30", sessions[1].TSStart.Format("2006-01-02 15:04"))

		for i := 1; i < len(sessions); i++ {
			assert.True(t, sessions[i-1].TSStart.After(sessions[i].TSStart), "sessions should be newest first")
		}
	})

	t.Run("Limit", func(t *testing.T) {
		sessions, err := s.ListChargingSessions(ctx, "user1", 3)
		require.NoError(t, err)
		assert.Len(t, sessions, 3)

		sessions, err = s.ListChargingSessions(ctx, "user1", 100)
		require.NoError(t, err)
		assert.Len(t, sessions, 6)
	})

	t.Run("EmptyUserID", func(t *testing.T) {
		_, err := s.ListChargingSessions(ctx, "", 0)
		assert.ErrorContains(t, err, "userID cannot be empty")
	})

	t.Run("Users", func(t *testing.T) {
		_, err := s.GetUser(ctx, "u1")
		assert.ErrorIs(t, err, ErrUserNotFound)

		u := types.User{ID: "u1", PhoneNumber: "+15555550100"}
		require.NoError(t, s.CreateUser(ctx, u))
		assert.Error(t, s.CreateUser(ctx, u))

		got, err := s.GetUser(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, u, got)
	})
}
