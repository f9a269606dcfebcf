// Package storage implements the typed CRUD layer over the flat key-value
// store. Every collection is a JSON array read in full, modified and written
// back; cross-collection references are plain id strings with no enforcement.
package storage

import (
	"context"
	"sync"
	"time"

	"github.com/harentsoaR/esannidhi-api/internal/kv"
	"go.uber.org/zap"
)

type Service struct {
	store  kv.Store
	logger *zap.Logger
	now    func() time.Time

	// serializes read-modify-write cycles; not a transaction across restarts
	mu sync.Mutex
}

func New(store kv.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Store exposes the underlying key-value store, e.g. for health checks.
func (s *Service) Store() kv.Store {
	return s.store
}

// Now returns the service clock.
func (s *Service) Now() time.Time {
	return s.now()
}

// SetClock replaces the clock. Tests only.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
