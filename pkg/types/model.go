package types

import "time"

const (
	CurrentChargingSessionVersion = 1

	// UserIDLocal is the user every request is attributed to when
	// authentication is bypassed for local development.
	UserIDLocal = "local"
)

// User represents a signed-in user of the system. Users sign in with a phone
// number so Email is frequently empty.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// ChargingSession is a single completed charge of the vehicle.
type ChargingSession struct {
	ID          string    `json:"id"`
	ChargerName string    `json:"chargerName,omitempty"`
	TSStart     time.Time `json:"tsStart"`
	TSEnd       time.Time `json:"tsEnd"`
	EnergyKWH   float64   `json:"energyKWH"`
	// CostDollars is what the session cost at the tariff in effect.
	CostDollars float64 `json:"costDollars"`
}

// Duration returns how long the vehicle was charging.
func (s ChargingSession) Duration() time.Duration {
	if s.TSEnd.Before(s.TSStart) {
		return 0
	}
	return s.TSEnd.Sub(s.TSStart)
}
