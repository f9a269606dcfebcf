// Package otp issues and checks short-lived numeric codes. Codes live in the
// otps collection and are looked up by a linear scan on phone and purpose.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/harentsoaR/esannidhi-api/internal/models"
	"github.com/harentsoaR/esannidhi-api/internal/storage"
	"go.uber.org/zap"
)

const (
	CodeLength = 6
	DefaultTTL = 5 * time.Minute

	// MaxAttempts wrong guesses burn the code.
	MaxAttempts = 5
)

var (
	// ErrInvalid is returned when no code matches phone, purpose and code
	ErrInvalid = errors.New("invalid otp")

	// ErrExpired is returned when the matching code is past its expiry
	ErrExpired = errors.New("otp expired")

	// ErrTooManyAttempts is returned on the guess that burns the code
	ErrTooManyAttempts = errors.New("too many otp attempts, request a new code")

	// ErrUnknownPurpose is returned for purposes other than register, login, reset
	ErrUnknownPurpose = errors.New("unknown otp purpose")
)

// Sender delivers a code to a phone.
type Sender interface {
	SendOTP(ctx context.Context, phone, code string, purpose models.OTPPurpose) error
}

type Service struct {
	store   *storage.Service
	sender  Sender
	ttl     time.Duration
	logger  *zap.Logger
	metrics *Metrics
	newCode func() (string, error)
}

func NewService(store *storage.Service, sender Sender, ttl time.Duration, logger *zap.Logger, metrics *Metrics) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:   store,
		sender:  sender,
		ttl:     ttl,
		logger:  logger,
		metrics: metrics,
		newCode: randomCode,
	}
}

func randomCode() (string, error) {
	max := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("otp: failed to read random: %w", err)
	}
	return fmt.Sprintf("%0*d", CodeLength, n.Int64()), nil
}

func validPurpose(p models.OTPPurpose) bool {
	switch p {
	case models.OTPRegister, models.OTPLogin, models.OTPReset:
		return true
	}
	return false
}

// Generate stores a fresh code for phone and purpose, replacing any earlier
// one, and hands it to the sender.
func (s *Service) Generate(ctx context.Context, phone string, purpose models.OTPPurpose) (*models.OTP, error) {
	if !validPurpose(purpose) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPurpose, purpose)
	}
	phone = storage.NormalizePhone(phone)
	if phone == "" {
		return nil, fmt.Errorf("%w: phone is required", storage.ErrInvalidInput)
	}
	code, err := s.newCode()
	if err != nil {
		return nil, err
	}

	now := s.store.Now()
	entry := models.OTP{
		Phone:     phone,
		Purpose:   purpose,
		Code:      code,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	err = s.store.MutateOTPs(ctx, func(items []models.OTP) ([]models.OTP, error) {
		kept := items[:0]
		for _, o := range items {
			if o.Phone == phone && o.Purpose == purpose {
				continue
			}
			kept = append(kept, o)
		}
		return append(kept, entry), nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.observe("generated", purpose)

	if s.sender != nil {
		if err := s.sender.SendOTP(ctx, phone, code, purpose); err != nil {
			s.logger.Error("otp delivery failed", zap.String("phone", phone), zap.Error(err))
			return nil, fmt.Errorf("otp: delivery failed: %w", err)
		}
	}
	return &entry, nil
}

// Verify consumes the code on success. An expired code is removed and
// reported as ErrExpired. A wrong code counts against the stored one, which
// is dropped after MaxAttempts misses.
func (s *Service) Verify(ctx context.Context, phone string, purpose models.OTPPurpose, code string) error {
	phone = storage.NormalizePhone(phone)
	now := s.store.Now()

	var result error
	err := s.store.MutateOTPs(ctx, func(items []models.OTP) ([]models.OTP, error) {
		for i, o := range items {
			if o.Phone != phone || o.Purpose != purpose {
				continue
			}
			if o.Expired(now) {
				result = ErrExpired
				return append(items[:i], items[i+1:]...), nil
			}
			if o.Code != code {
				items[i].Attempts++
				if items[i].Attempts >= MaxAttempts {
					result = ErrTooManyAttempts
					return append(items[:i], items[i+1:]...), nil
				}
				result = ErrInvalid
				return items, nil
			}
			return append(items[:i], items[i+1:]...), nil
		}
		result = ErrInvalid
		return items, nil
	})
	if err != nil {
		return err
	}

	switch {
	case result == nil:
		s.metrics.observe("verified", purpose)
	case errors.Is(result, ErrExpired):
		s.metrics.observe("expired", purpose)
	case errors.Is(result, ErrTooManyAttempts):
		s.metrics.observe("locked", purpose)
	default:
		s.metrics.observe("rejected", purpose)
	}
	return result
}

// PurgeExpired drops every expired code and returns how many were removed.
func (s *Service) PurgeExpired(ctx context.Context) (int, error) {
	now := s.store.Now()
	removed := 0
	err := s.store.MutateOTPs(ctx, func(items []models.OTP) ([]models.OTP, error) {
		kept := items[:0]
		for _, o := range items {
			if o.Expired(now) {
				removed++
				continue
			}
			kept = append(kept, o)
		}
		return kept, nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
