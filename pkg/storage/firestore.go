package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/levenlabs/go-lflag"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/raterudder/chargeadvisor/pkg/log"
	"github.com/raterudder/chargeadvisor/pkg/types"
)

// FirestoreProvider implements Database using Google Cloud Firestore.
// Charging sessions live under users/{userID}/charging_sessions and each
// document stores the session as a JSON string next to its start time.
type FirestoreProvider struct {
	client    *firestore.Client
	projectID string
	database  string
}

var _ Database = (*FirestoreProvider)(nil)

// configuredFirestore sets up the Firestore provider.
// It registers flags for configuration.
func configuredFirestore() *FirestoreProvider {
	projectID := lflag.String("firestore-project-id", "", "Google Cloud Project ID for Firestore")
	database := lflag.String("firestore-database", "", "Google Cloud Firestore Database")
	emulator := lflag.String("firestore-emulator", "", "Use Firestore emulator")

	f := &FirestoreProvider{}

	lflag.Do(func() {
		f.projectID = *projectID
		f.database = *database

		// set this because that's how firestore client expects it
		if *emulator != "" {
			os.Setenv("FIRESTORE_EMULATOR_HOST", *emulator)
		}
	})

	return f
}

// NewFirestore returns an uninitialized provider for the given project and
// database. Init must be called before use.
func NewFirestore(projectID, database string) *FirestoreProvider {
	return &FirestoreProvider{
		projectID: projectID,
		database:  database,
	}
}

// Validate checks if the provider is properly configured.
func (f *FirestoreProvider) Validate() error {
	// an empty project ID is detected from the environment
	return nil
}

// Init initializes the Firestore client.
// This must be called before using the provider methods.
func (f *FirestoreProvider) Init(ctx context.Context) error {
	projectID := f.projectID
	if projectID == "" {
		projectID = firestore.DetectProjectID
	}
	database := f.database
	if database == "" {
		database = firestore.DefaultDatabaseID
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, database)
	if err != nil {
		return fmt.Errorf("failed to create firestore client (project=%s, database=%s): %w", projectID, database, err)
	}
	f.client = client
	return nil
}

// Close closes the Firestore client connection.
func (f *FirestoreProvider) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func (f *FirestoreProvider) sessionsCollection(userID string) (*firestore.CollectionRef, error) {
	if userID == "" {
		return nil, fmt.Errorf("userID cannot be empty")
	}
	return f.client.Collection("users").Doc(userID).Collection("charging_sessions"), nil
}

// ListChargingSessions returns sessions ordered by start time, newest first.
// Malformed documents are logged and skipped.
func (f *FirestoreProvider) ListChargingSessions(ctx context.Context, userID string, limit int) ([]types.ChargingSession, error) {
	coll, err := f.sessionsCollection(userID)
	if err != nil {
		return nil, err
	}
	q := coll.OrderBy("timestamp", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}
	iter := q.Documents(ctx)
	defer iter.Stop()

	var sessions []types.ChargingSession
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating charging sessions: %w", err)
		}

		val, err := doc.DataAt("json")
		if err != nil {
			log.Ctx(ctx).WarnContext(ctx, "charging session doc missing json", slog.String("userID", userID), slog.String("sessionID", doc.Ref.ID))
			continue
		}
		jsonStr, ok := val.(string)
		if !ok {
			log.Ctx(ctx).WarnContext(ctx, "charging session doc json not string", slog.String("userID", userID), slog.String("sessionID", doc.Ref.ID))
			continue
		}

		var s types.ChargingSession
		if err := json.Unmarshal([]byte(jsonStr), &s); err != nil {
			log.Ctx(ctx).WarnContext(ctx, "failed to unmarshal charging session", slog.String("userID", userID), slog.String("sessionID", doc.Ref.ID), slog.Any("err", err))
			continue
		}
		if s.ID == "" {
			s.ID = doc.Ref.ID
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

// InsertChargingSession stores a session for the user, replacing any session
// with the same ID. Only the seed command writes sessions.
func (f *FirestoreProvider) InsertChargingSession(ctx context.Context, userID string, session types.ChargingSession) error {
	if session.ID == "" {
		return fmt.Errorf("charging session ID cannot be empty")
	}
	jsonBytes, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal charging session: %w", err)
	}

	coll, err := f.sessionsCollection(userID)
	if err != nil {
		return err
	}
	_, err = coll.Doc(session.ID).Set(ctx, map[string]interface{}{
		"json":      string(jsonBytes),
		"timestamp": session.TSStart,
		"version":   types.CurrentChargingSessionVersion,
	})
	if err != nil {
		return fmt.Errorf("failed to insert charging session %s: %w", session.ID, err)
	}
	return nil
}

func (f *FirestoreProvider) GetUser(ctx context.Context, userID string) (types.User, error) {
	if userID == "" {
		return types.User{}, fmt.Errorf("userID cannot be empty")
	}
	doc, err := f.client.Collection("users").Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return types.User{}, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
		}
		return types.User{}, fmt.Errorf("failed to get user %s: %w", userID, err)
	}

	val, err := doc.DataAt("json")
	if err != nil {
		log.Ctx(ctx).WarnContext(ctx, "user doc missing json", slog.String("userID", userID))
		return types.User{}, fmt.Errorf("user %s missing json: %w", userID, err)
	}
	jsonStr, ok := val.(string)
	if !ok {
		log.Ctx(ctx).WarnContext(ctx, "user doc json not string", slog.String("userID", userID))
		return types.User{}, fmt.Errorf("user %s json not string", userID)
	}

	var user types.User
	if err := json.Unmarshal([]byte(jsonStr), &user); err != nil {
		return types.User{}, fmt.Errorf("failed to unmarshal user %s: %w", userID, err)
	}
	return user, nil
}

func (f *FirestoreProvider) CreateUser(ctx context.Context, user types.User) error {
	if user.ID == "" {
		return fmt.Errorf("user ID cannot be empty")
	}
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user %s: %w", user.ID, err)
	}
	_, err = f.client.Collection("users").Doc(user.ID).Create(ctx, map[string]interface{}{
		"json": string(userJSON),
	})
	if err != nil {
		return fmt.Errorf("failed to create user %s: %w", user.ID, err)
	}
	return nil
}
