package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/resend/resend-go/v2"

	"github.com/socialoura/spotyz/internal/api"
	"github.com/socialoura/spotyz/internal/checkout"
	"github.com/socialoura/spotyz/internal/config"
	"github.com/socialoura/spotyz/internal/database"
	"github.com/socialoura/spotyz/internal/gateway"
	"github.com/socialoura/spotyz/internal/metrics"
	"github.com/socialoura/spotyz/internal/notify"
	"github.com/socialoura/spotyz/internal/repository"
	"github.com/socialoura/spotyz/internal/repository/cache"
	"github.com/socialoura/spotyz/internal/repository/memory"
	"github.com/socialoura/spotyz/internal/service"
	"github.com/socialoura/spotyz/internal/storage"
	"github.com/socialoura/spotyz/internal/storefront"
	"github.com/socialoura/spotyz/pkg/logger"
)

type stores struct {
	pricing  service.PricingStore
	orders   service.OrderStore
	promos   service.PromoStore
	settings service.SettingsStore
	admins   service.AdminUserStore
	expenses service.ExpenseStore
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logr := logger.New(cfg.LogLevel)
	if cfg.GeneratedTokenSecret {
		logr.Warn("ADMIN_TOKEN_SECRET is not set, admin tokens will not survive a restart")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var db *sql.DB
	var st stores
	if cfg.PostgresURL != "" {
		db, err = database.Connect(ctx, cfg.PostgresURL)
		if err != nil {
			log.Fatalf("database connect: %v", err)
		}
		defer db.Close()

		if err := database.Migrate(ctx, db); err != nil {
			log.Fatalf("database migrate: %v", err)
		}
		st = stores{
			pricing:  repository.NewPricingRepository(db),
			orders:   repository.NewOrderRepository(db),
			promos:   repository.NewPromoRepository(db),
			settings: repository.NewSettingsRepository(db),
			admins:   repository.NewAdminUserRepository(db),
			expenses: repository.NewExpenseRepository(db),
		}
	} else {
		logr.Warn("POSTGRES_URL is not set, using in-memory stores; data is lost on restart")
		st = stores{
			pricing:  memory.NewPricingStore(),
			orders:   memory.NewOrderStore(),
			promos:   memory.NewPromoStore(),
			settings: memory.NewSettingsStore(),
			admins:   memory.NewAdminUserStore(),
			expenses: memory.NewExpenseStore(),
		}
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logr.Warn("redis unreachable, pricing cache will fall through", "addr", cfg.RedisAddr, "err", err)
		}
		cancel()
		st.pricing = cache.NewPricingCache(st.pricing, rdb, cfg.PricingCacheTTL, logr)
	}

	m := metrics.New()
	tracker := checkout.NewTracker()
	go tracker.Run(ctx, time.Minute, 2*time.Hour)

	dispatcher := notify.NewDispatcher(cfg.NotifyTimeout, logr, m)
	var (
		mailer service.SupportMailer
		relay  api.EmbedSender
	)
	if cfg.DiscordWebhookURL != "" {
		discord := notify.NewDiscord(cfg.DiscordWebhookURL)
		dispatcher.Add(discord)
		relay = discord
	}
	if cfg.ResendAPIKey != "" {
		email := notify.NewEmail(resend.NewClient(cfg.ResendAPIKey), cfg.EmailFrom)
		dispatcher.Add(email)
		mailer = email
	}
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != 0 {
		tg, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			logr.Error("telegram notifier disabled", "err", err)
		} else {
			dispatcher.Add(tg)
		}
	}
	if len(cfg.KafkaBrokers) > 0 {
		producer := notify.NewKafka(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
		defer producer.Close()
		dispatcher.Add(producer)
	}
	logr.Info("order notifications", "channels", dispatcher.Channels())

	var uploader service.FileUploader
	if cfg.S3Enabled() {
		u, err := storage.NewUploader(storage.Config{
			Endpoint:     cfg.S3Endpoint,
			Region:       cfg.S3Region,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			Bucket:       cfg.S3Bucket,
			UsePathStyle: cfg.S3UsePathStyle,
			Prefix:       cfg.S3Prefix,
			LinkTTL:      cfg.S3LinkTTL,
		})
		if err != nil {
			log.Fatalf("storage uploader: %v", err)
		}
		uploader = u
	}

	promoService, err := service.NewPromoService(st.promos)
	if err != nil {
		log.Fatalf("promo service: %v", err)
	}
	pricingService := service.NewPricingService(st.pricing, logr)
	settingsService := service.NewSettingsService(st.settings, cfg.StripeSecretKey, cfg.StripePublishableKey)

	pages, err := storefront.New(pricingService, storefront.GoogleAds{
		ID:              cfg.GoogleAdsID,
		ConversionLabel: cfg.GoogleAdsConversionLabel,
	}, cfg.BaseURL, logr)
	if err != nil {
		log.Fatalf("storefront: %v", err)
	}

	server := api.NewServer(cfg.HTTPAddr, api.Deps{
		Logger:  logr,
		Metrics: m,
		Auth: service.NewAuthService(service.AuthConfig{
			Username: cfg.AdminUsername,
			Password: cfg.AdminPassword,
			Secret:   cfg.AdminTokenSecret,
			TTL:      cfg.AdminTokenTTL,
		}, st.admins),
		Pricing:        pricingService,
		Promos:         promoService,
		Orders:         service.NewOrderService(st.orders, promoService, dispatcher, tracker, logr),
		Payments:       service.NewPaymentService(gateway.NewStripe(gateway.Options{}), settingsService, tracker, logr),
		Settings:       settingsService,
		Expenses:       service.NewExpenseService(st.expenses),
		Analytics:      service.NewAnalyticsService(st.orders, st.expenses),
		Exports:        service.NewExportService(st.orders, uploader),
		Support:        service.NewSupportService(mailer, cfg.SupportEmail),
		Checkout:       tracker,
		Discord:        relay,
		Pages:          pages,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logr.Error("http server stopped", "err", err)
	}

	waitNotifications(dispatcher, logr)
}

// waitNotifications gives in-flight order notifications a chance to finish.
func waitNotifications(d *notify.Dispatcher, logr *slog.Logger) {
	done := make(chan struct{})
	go func() {
		d.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(15 * time.Second):
		logr.Warn("gave up waiting for order notifications")
	}
}
