package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialoura/spotyz/internal/checkout"
	"github.com/socialoura/spotyz/internal/gateway"
	"github.com/socialoura/spotyz/internal/models"
	"github.com/socialoura/spotyz/internal/notify"
	"github.com/socialoura/spotyz/internal/repository/memory"
	"github.com/socialoura/spotyz/internal/service"
	"github.com/socialoura/spotyz/pkg/logger"
)

const testSecret = "test-token-secret"

type fakeGateway struct {
	intent *gateway.Intent
	err    error
	calls  int
}

func (f *fakeGateway) CreateIntent(_ context.Context, _ string, _ int64, _ string) (*gateway.Intent, error) {
	f.calls++
	return f.intent, f.err
}

type fakeEmbeds struct {
	sent []notify.Embed
}

func (f *fakeEmbeds) SendEmbed(_ context.Context, embed notify.Embed) error {
	f.sent = append(f.sent, embed)
	return nil
}

type testEnv struct {
	server  *Server
	gateway *fakeGateway
	promos  *service.PromoService
	tracker *checkout.Tracker
	embeds  *fakeEmbeds
}

func newTestEnv(t *testing.T, opts ...func(*Deps)) *testEnv {
	t.Helper()
	log := logger.Discard()

	orderStore := memory.NewOrderStore()
	expenseStore := memory.NewExpenseStore()
	promos, err := service.NewPromoService(memory.NewPromoStore())
	require.NoError(t, err)

	tracker := checkout.NewTracker()
	gw := &fakeGateway{intent: &gateway.Intent{ID: "pi_3Nabc", ClientSecret: "pi_3Nabc_secret_xyz"}}
	settings := service.NewSettingsService(memory.NewSettingsStore(), "sk_test_1234567890", "pk_test_abc")
	embeds := &fakeEmbeds{}

	deps := Deps{
		Logger:    log,
		Auth:      service.NewAuthService(service.AuthConfig{Username: "admin", Password: "hunter22", Secret: testSecret, TTL: time.Hour}, memory.NewAdminUserStore()),
		Pricing:   service.NewPricingService(memory.NewPricingStore(), log),
		Promos:    promos,
		Orders:    service.NewOrderService(orderStore, promos, nil, tracker, log),
		Payments:  service.NewPaymentService(gw, settings, tracker, log),
		Settings:  settings,
		Expenses:  service.NewExpenseService(expenseStore),
		Analytics: service.NewAnalyticsService(orderStore, expenseStore),
		Exports:   service.NewExportService(orderStore, nil),
		Support:   service.NewSupportService(nil, ""),
		Checkout:  tracker,
		Discord:   embeds,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	return &testEnv{
		server:  NewServer(":0", deps),
		gateway: gw,
		promos:  promos,
		tracker: tracker,
		embeds:  embeds,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)

	var decoded map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(rec.Body.Bytes(), &decoded)
	}
	return rec, decoded
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	rec, body := e.do(t, http.MethodPost, "/api/admin/login", map[string]string{"username": "admin", "password": "hunter22"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func orderPayload(paymentID string) map[string]any {
	return map[string]any{
		"username":  "@artist",
		"email":     "fan@example.com",
		"platform":  "instagram",
		"followers": 1000,
		"amount":    29.90,
		"currency":  "eur",
		"paymentId": paymentID,
		"language":  "fr",
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rec, body := env.do(t, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestCreatePaymentIntent(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodPost, "/api/create-payment-intent", map[string]any{"amount": 2990, "currency": "EUR"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(body["paymentIntentId"].(string), "pi_"))
	assert.Equal(t, "pi_3Nabc_secret_xyz", body["clientSecret"])

	rec, body = env.do(t, http.MethodGet, "/api/checkout/pi_3Nabc", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(checkout.StatePaymentOpen), body["state"])
}

func TestCreatePaymentIntentErrors(t *testing.T) {
	t.Run("invalid amount", func(t *testing.T) {
		env := newTestEnv(t)
		rec, body := env.do(t, http.MethodPost, "/api/create-payment-intent", map[string]any{"amount": 0, "currency": "eur"}, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "amount must be a positive integer", body["error"])
		assert.Zero(t, env.gateway.calls)
	})

	t.Run("gateway error is forwarded", func(t *testing.T) {
		env := newTestEnv(t)
		env.gateway.intent = nil
		env.gateway.err = &gateway.Error{Status: http.StatusPaymentRequired, Code: "card_declined", Message: "Your card was declined."}
		rec, body := env.do(t, http.MethodPost, "/api/create-payment-intent", map[string]any{"amount": 100, "currency": "eur"}, "")
		assert.Equal(t, http.StatusPaymentRequired, rec.Code)
		assert.Equal(t, "Your card was declined.", body["error"])
		assert.Equal(t, 1, env.gateway.calls)
	})

	t.Run("not configured", func(t *testing.T) {
		env := newTestEnv(t, func(d *Deps) {
			settings := service.NewSettingsService(memory.NewSettingsStore(), "", "")
			d.Payments = service.NewPaymentService(&fakeGateway{}, settings, nil, logger.Discard())
		})
		rec, body := env.do(t, http.MethodPost, "/api/create-payment-intent", map[string]any{"amount": 100, "currency": "eur"}, "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "service is not configured", body["error"])
	})
}

func TestStripeConfig(t *testing.T) {
	env := newTestEnv(t)
	rec, body := env.do(t, http.MethodGet, "/api/stripe-config", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pk_test_abc", body["publishableKey"])
}

func TestCreateOrderIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	env.tracker.Open("pi_order_1")

	rec, first := env.do(t, http.MethodPost, "/api/orders/create", orderPayload("pi_order_1"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, first["success"])
	assert.NotContains(t, first, "message")

	rec, second := env.do(t, http.MethodPost, "/api/orders/create", orderPayload("pi_order_1"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Order already exists", second["message"])
	assert.Equal(t, first["orderId"], second["orderId"])

	session, ok := env.tracker.Get("pi_order_1")
	require.True(t, ok)
	assert.Equal(t, checkout.StateSuccess, session.State)

	token := env.login(t)
	rec, _ = env.do(t, http.MethodGet, "/api/admin/orders", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var orders []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, 29.9, orders[0]["amount"])
	assert.Equal(t, "fr", orders[0]["language"])
	assert.Equal(t, "pending", orders[0]["order_status"])
}

func TestCreateOrderValidation(t *testing.T) {
	env := newTestEnv(t)
	payload := orderPayload("pi_bad")
	payload["email"] = "not-an-email"
	rec, body := env.do(t, http.MethodPost, "/api/orders/create", payload, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "a valid email is required", body["error"])
}

func TestCreateOrderRedeemsPromo(t *testing.T) {
	env := newTestEnv(t)
	maxUses := 1
	_, err := env.promos.Create(context.Background(), service.PromoInput{
		Code: "launch", DiscountType: models.DiscountFixed, DiscountValue: decimal.RequireFromString("5"), MaxUses: &maxUses,
	})
	require.NoError(t, err)

	payload := orderPayload("pi_promo")
	payload["promoCode"] = "LAUNCH"
	payload["discount"] = 5
	rec, _ := env.do(t, http.MethodPost, "/api/orders/create", payload, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := env.do(t, http.MethodPost, "/api/promo-codes/validate", map[string]any{"code": "launch", "price": 29.90}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["valid"])
	assert.Equal(t, "Promo code usage limit reached", body["error"])
}

func TestPricingFallsBackToDefaults(t *testing.T) {
	env := newTestEnv(t)
	rec, _ := env.do(t, http.MethodGet, "/api/admin/pricing", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var doc map[string][]map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.NotEmpty(t, doc["instagram"])
	assert.Equal(t, float64(1000), doc["instagram"][0]["followers"])
}

func TestPricingReplace(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	doc := map[string]any{"tiktok": []map[string]any{{"followers": 250, "price": 4.5}}}
	rec, _ := env.do(t, http.MethodPut, "/api/admin/pricing", doc, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/api/admin/pricing", nil, "")
	assert.JSONEq(t, `{"tiktok":[{"followers":250,"price":4.50}]}`, rec.Body.String())

	bad := map[string]any{"myspace": []map[string]any{{"followers": 1, "price": 1}}}
	rec, _ = env.do(t, http.MethodPut, "/api/admin/pricing", bad, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminRoutesRequireValidToken(t *testing.T) {
	env := newTestEnv(t)

	expired, err := service.NewAuthService(service.AuthConfig{Secret: testSecret, TTL: -time.Hour}, nil).Issue("admin")
	require.NoError(t, err)
	forged, err := service.NewAuthService(service.AuthConfig{Secret: "other-secret", TTL: time.Hour}, nil).Issue("admin")
	require.NoError(t, err)

	cases := map[string]struct {
		token string
		want  string
	}{
		"missing": {token: "", want: "missing bearer token"},
		"garbage": {token: "not.a.jwt", want: "invalid or expired token"},
		"forged":  {token: forged, want: "invalid or expired token"},
		"expired": {token: expired, want: "invalid or expired token"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec, body := env.do(t, http.MethodGet, "/api/admin/orders", nil, tc.token)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tc.want, body["error"])
		})
	}

	rec, _ := env.do(t, http.MethodGet, "/api/admin/orders", nil, env.login(t))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	env := newTestEnv(t)
	rec, body := env.do(t, http.MethodPost, "/api/admin/login", map[string]string{"username": "admin", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid credentials", body["error"])
}

func TestValidatePromo(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.promos.Create(ctx, service.PromoInput{
		Code: "SUMMER10", DiscountType: models.DiscountPercentage, DiscountValue: decimal.RequireFromString("10"),
	})
	require.NoError(t, err)
	inactive := false
	_, err = env.promos.Create(ctx, service.PromoInput{
		Code: "PAUSED", DiscountType: models.DiscountFixed, DiscountValue: decimal.RequireFromString("3"), IsActive: &inactive,
	})
	require.NoError(t, err)

	rec, body := env.do(t, http.MethodPost, "/api/promo-codes/validate", map[string]any{"code": "summer10", "price": 29.90}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["valid"])
	assert.Equal(t, "SUMMER10", body["code"])
	assert.Equal(t, 2.99, body["discount"])
	assert.Equal(t, 26.91, body["finalPrice"])
	assert.Equal(t, "percentage", body["discountType"])
	assert.Equal(t, float64(10), body["discountValue"])

	rejections := map[string]string{
		"NOPE":   "Invalid promo code",
		"PAUSED": "Promo code is inactive",
	}
	for code, msg := range rejections {
		rec, body := env.do(t, http.MethodPost, "/api/promo-codes/validate", map[string]any{"code": code, "price": 10}, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, code)
		assert.Equal(t, false, body["valid"], code)
		assert.Equal(t, msg, body["error"], code)
	}
}

func TestPromoAdminCRUD(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rec, created := env.do(t, http.MethodPost, "/api/admin/promo-codes", map[string]any{
		"discount_type": "fixed", "discount_value": 5, "max_uses": 10, "expires_at": "2030-01-01",
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	code, _ := created["code"].(string)
	assert.Len(t, code, 8)
	assert.Equal(t, true, created["is_active"])
	id := int(created["id"].(float64))

	path := "/api/admin/promo-codes/" + strconv.Itoa(id)
	rec, toggled := env.do(t, http.MethodPost, path+"/toggle", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, toggled["is_active"])

	rec, _ = env.do(t, http.MethodPost, "/api/admin/promo-codes", map[string]any{
		"code": strings.ToLower(code), "discount_type": "fixed", "discount_value": 1,
	}, token)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = env.do(t, http.MethodDelete, path, nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = env.do(t, http.MethodDelete, path, nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPromoExpiresAtEndOfListedDay(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)
	today := time.Now().UTC().Truncate(24 * time.Hour)

	rec, created := env.do(t, http.MethodPost, "/api/admin/promo-codes", map[string]any{
		"code": "LASTDAY", "discount_type": "fixed", "discount_value": 5,
		"expires_at": today.Format("2006-01-02"),
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, today.AddDate(0, 0, 1).Format(time.RFC3339), created["expires_at"])

	rec, body := env.do(t, http.MethodPost, "/api/promo-codes/validate", map[string]any{"code": "lastday", "price": 29.90}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["valid"])

	exact := today.Add(time.Hour).Format(time.RFC3339)
	rec, created = env.do(t, http.MethodPost, "/api/admin/promo-codes", map[string]any{
		"code": "EXACT", "discount_type": "fixed", "discount_value": 5, "expires_at": exact,
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, exact, created["expires_at"])
}

func TestOrderAdminMutations(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)
	_, created := env.do(t, http.MethodPost, "/api/orders/create", orderPayload("pi_admin"), "")
	path := "/api/admin/orders/" + strconv.Itoa(int(created["orderId"].(float64)))

	rec, updated := env.do(t, http.MethodPatch, path, map[string]any{"order_status": "completed", "notes": "delivered"}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "completed", updated["order_status"])
	assert.Equal(t, "delivered", updated["notes"])

	rec, _ = env.do(t, http.MethodPatch, path, map[string]any{"order_status": "lost"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = env.do(t, http.MethodPost, "/api/admin/orders/export", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "orders-")
	assert.Contains(t, rec.Body.String(), "pi_admin")

	rec, _ = env.do(t, http.MethodDelete, path, nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = env.do(t, http.MethodPatch, path, map[string]any{"notes": "x"}, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExpensesAndAnalytics(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)
	env.do(t, http.MethodPost, "/api/orders/create", orderPayload("pi_a1"), "")

	today := time.Now().UTC().Format(dayLayout)
	rec, expense := env.do(t, http.MethodPost, "/api/admin/expenses", map[string]any{"date": today, "amount": 10, "campaign": "brand"}, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, today, expense["date"])

	rec, report := env.do(t, http.MethodGet, "/api/admin/analytics?from="+today+"&to="+today, nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), report["orders"])
	assert.Equal(t, 29.9, report["revenue"])
	assert.Equal(t, float64(10), report["adSpend"])
	assert.Equal(t, 19.9, report["netRevenue"])

	rec, _ = env.do(t, http.MethodGet, "/api/admin/analytics?from=yesterday", nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStripeSettingsMasked(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rec, body := env.do(t, http.MethodPut, "/api/admin/settings/stripe", map[string]any{"secretKey": "sk_live_abcdefghij9999"}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sk_live_****9999", body["secretKey"])
	assert.NotContains(t, rec.Body.String(), "abcdefghij")

	rec, _ = env.do(t, http.MethodPut, "/api/admin/settings/stripe", map[string]any{"publishableKey": "sk_wrong"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutEvents(t *testing.T) {
	env := newTestEnv(t)
	env.tracker.Open("pi_flow")

	rec, body := env.do(t, http.MethodPost, "/api/checkout/pi_flow/events", map[string]string{"event": "submitPayment"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "paymentProcessing", body["state"])

	rec, _ = env.do(t, http.MethodPost, "/api/checkout/pi_flow/events", map[string]string{"event": "openPayment"}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = env.do(t, http.MethodPost, "/api/checkout/pi_flow/events", map[string]string{"event": "dance"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = env.do(t, http.MethodPost, "/api/checkout/pi_missing/events", map[string]string{"event": "close"}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDiscordRelayIsRateLimited(t *testing.T) {
	env := newTestEnv(t, func(d *Deps) {
		d.RateLimitRPS = 0.001
		d.RateLimitBurst = 2
	})
	payload := map[string]any{"title": "Hello", "description": "from the site"}

	for i := 0; i < 2; i++ {
		rec, _ := env.do(t, http.MethodPost, "/api/discord-notification", payload, "")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec, body := env.do(t, http.MethodPost, "/api/discord-notification", payload, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate limit exceeded", body["error"])
	assert.Len(t, env.embeds.sent, 2)
}

func TestSupportMessageWithoutMailer(t *testing.T) {
	env := newTestEnv(t)
	rec, body := env.do(t, http.MethodPost, "/api/support-message", map[string]string{"message": "help", "email": "fan@example.com"}, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "service is not configured", body["error"])

	rec, body = env.do(t, http.MethodPost, "/api/support-message", map[string]string{"message": "", "email": "fan@example.com"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "message is required", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/promo-codes/validate", map[string]any{"code": "NOPE", "price": 10}, "")

	rec, _ := env.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `promo_validations_total{result="rejected"} 1`)
}
