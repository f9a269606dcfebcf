// Package kv holds the flat key-value store every collection is persisted in.
// Each key stores one JSON document; a missing key reads as nil.
package kv

import "context"

// Collection keys.
const (
	Users         = "users"
	Doctors       = "doctors"
	Ashas         = "ashas"
	Pharmacies    = "pharmacies"
	Patients      = "patients"
	HealthRecords = "healthRecords"
	Visits        = "visits"
	Messages      = "messages"
	Prescriptions = "prescriptions"
	Medicines     = "medicines"
	Orders        = "orders"
	Bills         = "bills"
	OTPs          = "otps"
	Session       = "session"
	Cart          = "cart"
)

// Store is implemented by every backend.
type Store interface {
	// Get returns nil, nil when the key has never been written.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
}
