package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harentsoaR/esannidhi-api/internal/kv"
	"github.com/harentsoaR/esannidhi-api/internal/models"
)

// GetSession returns the current session pointer, or nil when nobody is logged in.
func (s *Service) GetSession(ctx context.Context) (*models.Session, error) {
	data, err := s.store.Get(ctx, kv.Session)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to load session: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("storage: failed to decode session: %w", err)
	}
	return &sess, nil
}

func (s *Service) SetSession(ctx context.Context, sess models.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("storage: failed to encode session: %w", err)
	}
	if err := s.store.Set(ctx, kv.Session, data); err != nil {
		return fmt.Errorf("storage: failed to persist session: %w", err)
	}
	return nil
}

func (s *Service) ClearSession(ctx context.Context) error {
	if err := s.store.Delete(ctx, kv.Session); err != nil {
		return fmt.Errorf("storage: failed to clear session: %w", err)
	}
	return nil
}

// ListOTPs returns every stored code, expired ones included.
func (s *Service) ListOTPs(ctx context.Context) ([]models.OTP, error) {
	return load[models.OTP](ctx, s.store, kv.OTPs)
}

// MutateOTPs runs fn on the otps collection under the service lock.
func (s *Service) MutateOTPs(ctx context.Context, fn func([]models.OTP) ([]models.OTP, error)) error {
	return mutate(ctx, s, kv.OTPs, fn)
}
