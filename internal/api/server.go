package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/socialoura/spotyz/internal/checkout"
	"github.com/socialoura/spotyz/internal/metrics"
	"github.com/socialoura/spotyz/internal/notify"
	"github.com/socialoura/spotyz/internal/service"
)

// EmbedSender relays ad-hoc embeds to the team chat.
type EmbedSender interface {
	SendEmbed(ctx context.Context, embed notify.Embed) error
}

// Pages registers server-rendered storefront routes.
type Pages interface {
	Register(r chi.Router)
}

type Deps struct {
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Auth      *service.AuthService
	Pricing   *service.PricingService
	Promos    *service.PromoService
	Orders    *service.OrderService
	Payments  *service.PaymentService
	Settings  *service.SettingsService
	Expenses  *service.ExpenseService
	Analytics *service.AnalyticsService
	Exports   *service.ExportService
	Support   *service.SupportService
	Checkout  *checkout.Tracker
	// Discord may be nil when no webhook is configured.
	Discord EmbedSender
	Pages   Pages

	RateLimitRPS   float64
	RateLimitBurst int
}

type Server struct {
	addr      string
	log       *slog.Logger
	metrics   *metrics.Metrics
	auth      *service.AuthService
	pricing   *service.PricingService
	promos    *service.PromoService
	orders    *service.OrderService
	payments  *service.PaymentService
	settings  *service.SettingsService
	expenses  *service.ExpenseService
	analytics *service.AnalyticsService
	exports   *service.ExportService
	support   *service.SupportService
	checkout  *checkout.Tracker
	discord   EmbedSender
	router    *chi.Mux
}

func NewServer(addr string, deps Deps) *Server {
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	r := chi.NewRouter()
	s := &Server{
		addr:      addr,
		log:       deps.Logger,
		metrics:   deps.Metrics,
		auth:      deps.Auth,
		pricing:   deps.Pricing,
		promos:    deps.Promos,
		orders:    deps.Orders,
		payments:  deps.Payments,
		settings:  deps.Settings,
		expenses:  deps.Expenses,
		analytics: deps.Analytics,
		exports:   deps.Exports,
		support:   deps.Support,
		checkout:  deps.Checkout,
		discord:   deps.Discord,
		router:    r,
	}

	rps, burst := deps.RateLimitRPS, deps.RateLimitBurst
	if rps <= 0 {
		rps = 1
	}
	if burst <= 0 {
		burst = 5
	}
	limiter := newIPLimiter(rps, burst, 3*time.Minute)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Post("/create-payment-intent", s.handleCreatePaymentIntent)
		api.Get("/stripe-config", s.handleStripeConfig)
		api.Post("/promo-codes/validate", s.handleValidatePromo)
		api.Post("/orders/create", s.handleCreateOrder)
		api.Get("/checkout/{intentID}", s.handleCheckoutState)
		api.Post("/checkout/{intentID}/events", s.handleCheckoutEvent)

		api.Group(func(limited chi.Router) {
			limited.Use(limiter.Middleware)
			limited.Post("/admin/login", s.handleLogin)
			limited.Post("/support-message", s.handleSupportMessage)
			limited.Post("/discord-notification", s.handleDiscordNotification)
		})

		api.Get("/admin/pricing", s.handleGetPricing)

		api.Group(func(protected chi.Router) {
			protected.Use(s.requireAdmin)
			protected.Put("/admin/pricing", s.handlePutPricing)
			protected.Route("/admin/orders", func(r chi.Router) {
				r.Get("/", s.handleListOrders)
				r.Post("/export", s.handleExportOrders)
				r.Patch("/{id}", s.handleUpdateOrder)
				r.Delete("/{id}", s.handleDeleteOrder)
			})
			protected.Route("/admin/promo-codes", func(r chi.Router) {
				r.Get("/", s.handleListPromos)
				r.Post("/", s.handleCreatePromo)
				r.Put("/{id}", s.handleUpdatePromo)
				r.Delete("/{id}", s.handleDeletePromo)
				r.Post("/{id}/toggle", s.handleTogglePromo)
			})
			protected.Route("/admin/expenses", func(r chi.Router) {
				r.Get("/", s.handleListExpenses)
				r.Post("/", s.handleCreateExpense)
				r.Delete("/{id}", s.handleDeleteExpense)
			})
			protected.Get("/admin/settings/stripe", s.handleGetStripeSettings)
			protected.Put("/admin/settings/stripe", s.handlePutStripeSettings)
			protected.Get("/admin/analytics", s.handleAnalytics)
		})
	})

	if deps.Pages != nil {
		deps.Pages.Register(r)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Error("http shutdown error", "err", err)
		}
	}()

	s.log.Info("http server listening", "addr", s.addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}
