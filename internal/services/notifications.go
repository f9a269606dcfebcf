package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/harentsoaR/esannidhi-api/internal/models"
	"go.uber.org/zap"
)

const (
	ModeLog      = "log"
	ModeTextbelt = "textbelt"

	DefaultTextbeltURL = "https://textbelt.com"
)

var ErrSMSRejected = errors.New("sms rejected by provider")

type NotificationConfig struct {
	Mode        string
	TextbeltURL string
	TextbeltKey string
	// CountryCode is prepended to 10-digit local numbers before sending.
	CountryCode string
}

// NotificationService delivers SMS. In log mode messages are only logged,
// which is how codes reach the user in a demo setup.
type NotificationService struct {
	mode        string
	key         string
	countryCode string
	client      *resty.Client
	logger      *zap.Logger
}

func NewNotificationService(cfg NotificationConfig, logger *zap.Logger) (*NotificationService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = ModeLog
	}
	if mode != ModeLog && mode != ModeTextbelt {
		return nil, fmt.Errorf("unknown sms mode %q", cfg.Mode)
	}
	baseURL := cfg.TextbeltURL
	if baseURL == "" {
		baseURL = DefaultTextbeltURL
	}
	countryCode := cfg.CountryCode
	if countryCode == "" {
		countryCode = "+91"
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &NotificationService{
		mode:        mode,
		key:         cfg.TextbeltKey,
		countryCode: countryCode,
		client:      client,
		logger:      logger,
	}, nil
}

func (s *NotificationService) Mode() string {
	return s.mode
}

// SendOTP delivers a one-time code.
func (s *NotificationService) SendOTP(ctx context.Context, phone, code string, purpose models.OTPPurpose) error {
	msg := fmt.Sprintf("Your E-Sannidhi %s code is %s. It expires in a few minutes.", purpose, code)
	if s.mode == ModeLog {
		s.logger.Info("otp issued", zap.String("phone", phone), zap.String("purpose", string(purpose)), zap.String("code", code))
		return nil
	}
	return s.SendSMS(ctx, phone, msg)
}

// NotifyVisitRequested tells a doctor a consultation is waiting.
func (s *NotificationService) NotifyVisitRequested(doctor *models.Doctor, visit *models.Visit) {
	if doctor == nil || doctor.Phone == "" {
		s.logger.Warn("visit sms not sent: doctor has no phone", zap.String("visit", visit.ID.Hex()))
		return
	}
	body := fmt.Sprintf("New consultation request from %s: %s", visit.PatientName, visit.Symptoms)
	s.dispatch(doctor.Phone, body)
}

// NotifyOrderStatus tells the ordering account where its order stands.
func (s *NotificationService) NotifyOrderStatus(phone string, order *models.Order) {
	if phone == "" {
		return
	}
	body := fmt.Sprintf("Your medicine order %s is now %s. Total Rs %.2f.", shortID(order.ID.Hex()), order.Status, order.Total)
	s.dispatch(phone, body)
}

// dispatch sends in a goroutine so it never blocks an API response.
func (s *NotificationService) dispatch(phone, body string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.SendSMS(ctx, phone, body); err != nil {
			s.logger.Error("sms delivery failed", zap.String("phone", phone), zap.Error(err))
		}
	}()
}

type textbeltResponse struct {
	Success        bool   `json:"success"`
	TextID         string `json:"textId"`
	QuotaRemaining int    `json:"quotaRemaining"`
	Error          string `json:"error"`
}

// SendSMS posts one message. Log mode only records it.
func (s *NotificationService) SendSMS(ctx context.Context, phone, message string) error {
	if s.mode == ModeLog {
		s.logger.Info("sms", zap.String("phone", phone), zap.String("message", message))
		return nil
	}

	var result textbeltResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"phone":   s.international(phone),
			"message": message,
			"key":     s.key,
		}).
		SetResult(&result).
		SetError(&result).
		Post("/text")
	if err != nil {
		return fmt.Errorf("failed to call textbelt: %w", err)
	}
	if !result.Success {
		s.logger.Warn("textbelt rejected sms",
			zap.String("phone", phone),
			zap.Int("status_code", resp.StatusCode()),
			zap.String("reason", result.Error),
		)
		return fmt.Errorf("%w: %s", ErrSMSRejected, result.Error)
	}
	s.logger.Info("sms sent", zap.String("phone", phone), zap.String("text_id", result.TextID), zap.Int("quota_remaining", result.QuotaRemaining))
	return nil
}

func (s *NotificationService) international(phone string) string {
	if strings.HasPrefix(phone, "+") || len(phone) != 10 {
		return phone
	}
	return s.countryCode + phone
}

func shortID(id string) string {
	if len(id) > 6 {
		return id[len(id)-6:]
	}
	return id
}
