// Package gateway creates card payment intents with Stripe.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

type Intent struct {
	ID           string
	ClientSecret string
}

// Error is a failure reported by Stripe, with the status and message to forward.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("stripe: %d %s", e.Status, e.Message)
}

type Options struct {
	// URL overrides the API base, e.g. for stripe-mock.
	URL        string
	HTTPClient *http.Client
}

type Stripe struct {
	backends *stripe.Backends
}

// NewStripe builds a client that never retries: a failed create is reported to the
// caller once.
func NewStripe(opts Options) *Stripe {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	cfg := &stripe.BackendConfig{
		HTTPClient:        httpClient,
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	}
	if opts.URL != "" {
		cfg.URL = stripe.String(opts.URL)
	}
	api := stripe.GetBackendWithConfig(stripe.APIBackend, cfg)
	return &Stripe{backends: &stripe.Backends{API: api, Connect: api, Uploads: api}}
}

// CreateIntent creates a card-only payment intent for amount minor units.
func (s *Stripe) CreateIntent(ctx context.Context, secretKey string, amount int64, currency string) (*Intent, error) {
	sc := client.New(secretKey, s.backends)
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	pi, err := sc.PaymentIntents.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			status := stripeErr.HTTPStatusCode
			if status == 0 {
				status = http.StatusBadGateway
			}
			return nil, &Error{Status: status, Code: string(stripeErr.Code), Message: stripeErr.Msg}
		}
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}
