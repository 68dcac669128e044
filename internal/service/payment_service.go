package service

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/socialoura/spotyz/internal/gateway"
)

var currencyPattern = regexp.MustCompile(`^[a-z]{3}$`)

type PaymentGateway interface {
	CreateIntent(ctx context.Context, secretKey string, amount int64, currency string) (*gateway.Intent, error)
}

// IntentRecorder is told about every payment intent handed to a client.
type IntentRecorder interface {
	Open(intentID string)
}

type PaymentService struct {
	gateway  PaymentGateway
	settings *SettingsService
	checkout IntentRecorder
	logger   *slog.Logger
}

func NewPaymentService(gw PaymentGateway, settings *SettingsService, checkout IntentRecorder, logger *slog.Logger) *PaymentService {
	return &PaymentService{gateway: gw, settings: settings, checkout: checkout, logger: logger}
}

// CreateIntent starts a card payment of amount minor units. Gateway failures are
// returned as *gateway.Error.
func (s *PaymentService) CreateIntent(ctx context.Context, amount int64, currency string) (*gateway.Intent, error) {
	if amount <= 0 {
		return nil, invalidf("amount must be a positive integer")
	}
	currency = strings.ToLower(strings.TrimSpace(currency))
	if !currencyPattern.MatchString(currency) {
		return nil, invalidf("currency must be a 3-letter code")
	}

	key, err := s.settings.StripeSecretKey(ctx)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, ErrNotConfigured
	}

	intent, err := s.gateway.CreateIntent(ctx, key, amount, currency)
	if err != nil {
		return nil, err
	}
	if s.checkout != nil {
		s.checkout.Open(intent.ID)
	}
	s.logger.Info("payment intent created", "intent_id", intent.ID, "amount", amount, "currency", currency)
	return intent, nil
}

// PublishableKey is handed to the browser to mount the card element.
func (s *PaymentService) PublishableKey(ctx context.Context) (string, error) {
	key, err := s.settings.StripePublishableKey(ctx)
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", ErrNotConfigured
	}
	return key, nil
}
