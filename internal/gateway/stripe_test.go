package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		assert.True(t, strings.HasSuffix(r.Header.Get("Authorization"), "sk_test_123"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "2900", r.PostForm.Get("amount"))
		assert.Equal(t, "usd", r.PostForm.Get("currency"))
		assert.Equal(t, "card", r.PostForm.Get("payment_method_types[0]"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_3Ptest","object":"payment_intent","amount":2900,"currency":"usd","client_secret":"pi_3Ptest_secret_abc","status":"requires_payment_method"}`))
	}))
	defer srv.Close()

	gw := NewStripe(Options{URL: srv.URL, HTTPClient: srv.Client()})
	intent, err := gw.CreateIntent(context.Background(), "sk_test_123", 2900, "usd")
	require.NoError(t, err)
	assert.Equal(t, "pi_3Ptest", intent.ID)
	assert.Equal(t, "pi_3Ptest_secret_abc", intent.ClientSecret)
}

func TestCreateIntentForwardsStripeError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"type":"api_error","code":"rate_limit","message":"Stripe is busy"}}`))
	}))
	defer srv.Close()

	gw := NewStripe(Options{URL: srv.URL, HTTPClient: srv.Client()})
	_, err := gw.CreateIntent(context.Background(), "sk_test_123", 2900, "usd")

	var gwErr *Error
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, http.StatusServiceUnavailable, gwErr.Status)
	assert.Equal(t, "Stripe is busy", gwErr.Message)
	assert.Equal(t, int32(1), calls.Load())
}
