package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/levenlabs/go-lflag"

	"github.com/raterudder/chargeadvisor/pkg/types"
)

var (
	ErrUserNotFound = errors.New("user not found")
)

// Database is the read side the suggestion flow needs: who the user is and
// which charging sessions they had.
type Database interface {
	// History
	// ListChargingSessions returns the user's most recent sessions, newest
	// first. A limit of 0 or less returns every session.
	ListChargingSessions(ctx context.Context, userID string, limit int) ([]types.ChargingSession, error)

	// Users
	GetUser(ctx context.Context, userID string) (types.User, error)
	CreateUser(ctx context.Context, user types.User) error

	// Lifecycle
	Close() error
}

// Configured sets up the Storage provider based on flags.
func Configured() Database {
	provider := lflag.String("storage-provider", "static", "Storage provider to use (available: static, firestore)")

	var p struct{ Database }

	fs := configuredFirestore()

	lflag.Do(func() {
		switch *provider {
		case "static":
			p.Database = NewStatic()
		case "firestore":
			if err := fs.Validate(); err != nil {
				panic(fmt.Sprintf("firestore validation failed: %v", err))
			}
			p.Database = fs
			if err := fs.Init(context.Background()); err != nil {
				panic(fmt.Sprintf("firestore init failed: %v", err))
			}
		default:
			panic(fmt.Sprintf("unknown storage provider: %s", *provider))
		}
	})

	return &p
}
