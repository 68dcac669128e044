package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/socialoura/spotyz/internal/models"
)

type SettingsService struct {
	store          SettingsStore
	envSecret      string
	envPublishable string
}

// StripeSettings is the admin view of the payment keys. The secret is never returned
// in full.
type StripeSettings struct {
	SecretKey      string `json:"secretKey"`
	PublishableKey string `json:"publishableKey"`
	SecretSource   string `json:"secretSource"`
	Configured     bool   `json:"configured"`
}

type StripeSettingsInput struct {
	SecretKey      *string
	PublishableKey *string
}

func NewSettingsService(store SettingsStore, envSecret, envPublishable string) *SettingsService {
	return &SettingsService{store: store, envSecret: envSecret, envPublishable: envPublishable}
}

// StripeSecretKey prefers the stored key and falls back to the environment.
func (s *SettingsService) StripeSecretKey(ctx context.Context) (string, error) {
	key, _, err := s.lookup(ctx, models.SettingStripeSecretKey, s.envSecret)
	return key, err
}

func (s *SettingsService) StripePublishableKey(ctx context.Context) (string, error) {
	key, _, err := s.lookup(ctx, models.SettingStripePublishableKey, s.envPublishable)
	return key, err
}

func (s *SettingsService) Stripe(ctx context.Context) (*StripeSettings, error) {
	secret, source, err := s.lookup(ctx, models.SettingStripeSecretKey, s.envSecret)
	if err != nil {
		return nil, err
	}
	publishable, err := s.StripePublishableKey(ctx)
	if err != nil {
		return nil, err
	}
	return &StripeSettings{
		SecretKey:      MaskSecret(secret),
		PublishableKey: publishable,
		SecretSource:   source,
		Configured:     secret != "",
	}, nil
}

func (s *SettingsService) UpdateStripe(ctx context.Context, input StripeSettingsInput) (*StripeSettings, error) {
	if input.SecretKey == nil && input.PublishableKey == nil {
		return nil, invalidf("nothing to update")
	}
	if input.SecretKey != nil {
		key := strings.TrimSpace(*input.SecretKey)
		if key != "" && !strings.HasPrefix(key, "sk_") && !strings.HasPrefix(key, "rk_") {
			return nil, invalidf("secret key must start with sk_ or rk_")
		}
		if err := s.store.Set(ctx, models.SettingStripeSecretKey, key); err != nil {
			return nil, err
		}
	}
	if input.PublishableKey != nil {
		key := strings.TrimSpace(*input.PublishableKey)
		if key != "" && !strings.HasPrefix(key, "pk_") {
			return nil, invalidf("publishable key must start with pk_")
		}
		if err := s.store.Set(ctx, models.SettingStripePublishableKey, key); err != nil {
			return nil, err
		}
	}
	return s.Stripe(ctx)
}

func (s *SettingsService) lookup(ctx context.Context, key, fallback string) (string, string, error) {
	value, err := s.store.Get(ctx, key)
	if err != nil {
		return "", "", fmt.Errorf("read setting: %w", err)
	}
	if value != "" {
		return value, "database", nil
	}
	if fallback != "" {
		return fallback, "environment", nil
	}
	return "", "", nil
}

// MaskSecret keeps the key prefix and last four characters.
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 12 {
		return strings.Repeat("*", len(secret))
	}
	prefix := secret[:3]
	if i := strings.Index(secret[3:], "_"); i >= 0 && i < 8 {
		prefix = secret[:3+i+1]
	}
	return prefix + "****" + secret[len(secret)-4:]
}
