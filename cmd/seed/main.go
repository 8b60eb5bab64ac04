package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/levenlabs/go-lflag"

	"github.com/raterudder/chargeadvisor/pkg/log"
	"github.com/raterudder/chargeadvisor/pkg/storage"
	"github.com/raterudder/chargeadvisor/pkg/types"
)

const (
	// typical overnight home charging
	chargerKW       = 7.2
	dollarsPerKWH   = 0.12
	batteryCapacity = 75.0
)

func main() {
	emulator := lflag.String("firestore-emulator", "127.0.0.1:8087", "Firestore emulator address")
	projectID := lflag.String("firestore-project-id", "demo-chargeadvisor", "Project ID used with the emulator")
	userID := lflag.String("user-id", types.UserIDLocal, "User to seed charging sessions for")
	history := lflag.Duration("history", 30*24*time.Hour, "How far back to generate charging sessions")
	lflag.Configure()

	os.Setenv("FIRESTORE_EMULATOR_HOST", *emulator)

	ctx := context.Background()
	ctx = log.WithAttrs(ctx, slog.String("userID", *userID))

	fs := storage.NewFirestore(*projectID, "")
	if err := fs.Init(ctx); err != nil {
		panic(err)
	}
	defer fs.Close()

	log.Ctx(ctx).InfoContext(ctx, "seeding charging sessions")

	var count int
	for _, s := range storage.DemoChargingSessions() {
		s.ID = "demo-" + s.ID
		if err := fs.InsertChargingSession(ctx, *userID, s); err != nil {
			panic(err)
		}
		count++
	}

	// Use a new random source
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	end := time.Now().Truncate(24 * time.Hour)
	for day := end.Add(-*history); day.Before(end); day = day.Add(24 * time.Hour) {
		// plug in roughly every other night
		if rng.Float64() < 0.5 {
			continue
		}
		// between 10 PM and 2 AM
		start := day.Add(22*time.Hour + time.Duration(rng.Intn(240))*time.Minute)
		// refill between 15% and 60% of the battery
		kwh := math.Round(batteryCapacity*(0.15+rng.Float64()*0.45)*10) / 10
		duration := time.Duration(kwh / chargerKW * float64(time.Hour)).Round(time.Minute)

		s := types.ChargingSession{
			ID:          start.UTC().Format(time.RFC3339),
			ChargerName: "Home Charger",
			TSStart:     start,
			TSEnd:       start.Add(duration),
			EnergyKWH:   kwh,
			CostDollars: math.Round(kwh*dollarsPerKWH*100) / 100,
		}
		if err := fs.InsertChargingSession(ctx, *userID, s); err != nil {
			panic(fmt.Errorf("failed to insert session %s: %w", s.ID, err))
		}
		count++
	}

	log.Ctx(ctx).InfoContext(ctx, "seeded charging sessions", slog.Int("count", count))
}
