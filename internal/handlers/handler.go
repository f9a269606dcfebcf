package handlers

import (
	"github.com/harentsoaR/esannidhi-api/internal/auth"
	"github.com/harentsoaR/esannidhi-api/internal/models"
	"github.com/harentsoaR/esannidhi-api/internal/otp"
	"github.com/harentsoaR/esannidhi-api/internal/storage"
	"go.uber.org/zap"
)

// Notifier sends best-effort SMS about domain events.
type Notifier interface {
	NotifyVisitRequested(doctor *models.Doctor, visit *models.Visit)
	NotifyOrderStatus(phone string, order *models.Order)
}

type Handler struct {
	Store    *storage.Service
	Auth     *auth.Service
	OTP      *otp.Service
	Notifier Notifier
	Logger   *zap.Logger
}

func NewHandler(store *storage.Service, authSvc *auth.Service, otpSvc *otp.Service, notifier Notifier, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Store:    store,
		Auth:     authSvc,
		OTP:      otpSvc,
		Notifier: notifier,
		Logger:   logger,
	}
}
