package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the storefront and its integrations.
type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	BaseURL  string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	PostgresURL string `env:"POSTGRES_URL"`

	AdminUsername    string        `env:"ADMIN_USERNAME"`
	AdminPassword    string        `env:"ADMIN_PASSWORD"`
	AdminTokenSecret string        `env:"ADMIN_TOKEN_SECRET"`
	AdminTokenTTL    time.Duration `env:"ADMIN_TOKEN_TTL" envDefault:"24h"`

	StripeSecretKey      string `env:"STRIPE_SECRET_KEY"`
	StripePublishableKey string `env:"STRIPE_PUBLISHABLE_KEY"`

	ResendAPIKey      string `env:"RESEND_API_KEY"`
	EmailFrom         string `env:"EMAIL_FROM" envDefault:"Socialoura <noreply@socialoura.com>"`
	SupportEmail      string `env:"SUPPORT_EMAIL"`
	DiscordWebhookURL string `env:"DISCORD_WEBHOOK_URL"`

	GoogleAdsID              string `env:"NEXT_PUBLIC_GOOGLE_ADS_ID"`
	GoogleAdsConversionLabel string `env:"NEXT_PUBLIC_GOOGLE_ADS_CONVERSION_LABEL"`

	RedisAddr       string        `env:"REDIS_ADDR"`
	PricingCacheTTL time.Duration `env:"PRICING_CACHE_TTL" envDefault:"5m"`

	KafkaBrokers    []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaOrderTopic string   `env:"KAFKA_ORDER_TOPIC" envDefault:"orders"`

	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   int64  `env:"TELEGRAM_CHAT_ID"`

	S3Endpoint     string        `env:"S3_ENDPOINT"`
	S3Region       string        `env:"S3_REGION"`
	S3AccessKey    string        `env:"S3_ACCESS_KEY"`
	S3SecretKey    string        `env:"S3_SECRET_KEY"`
	S3Bucket       string        `env:"S3_BUCKET"`
	S3UsePathStyle bool          `env:"S3_USE_PATH_STYLE" envDefault:"false"`
	S3Prefix       string        `env:"S3_PREFIX" envDefault:"exports"`
	S3LinkTTL      time.Duration `env:"S3_LINK_TTL" envDefault:"15m"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"1"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"5"`

	NotifyTimeout time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"10s"`

	// GeneratedTokenSecret is set when ADMIN_TOKEN_SECRET was empty and a random
	// per-process secret was generated instead.
	GeneratedTokenSecret bool `env:"-"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := loadEnvFile(); err != nil {
		return Config{}, err
	}
	return parse(env.Options{})
}

// LoadFrom parses configuration from the given variables only.
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.KafkaBrokers = compact(cfg.KafkaBrokers)

	if cfg.AdminTokenSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return Config{}, err
		}
		cfg.AdminTokenSecret = secret
		cfg.GeneratedTokenSecret = true
	}
	if cfg.AdminTokenTTL <= 0 {
		return Config{}, fmt.Errorf("ADMIN_TOKEN_TTL must be positive")
	}
	if cfg.RateLimitRPS <= 0 || cfg.RateLimitBurst <= 0 {
		return Config{}, fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if cfg.S3Bucket != "" {
		var missing []string
		if cfg.S3Region == "" {
			missing = append(missing, "S3_REGION")
		}
		if cfg.S3AccessKey == "" {
			missing = append(missing, "S3_ACCESS_KEY")
		}
		if cfg.S3SecretKey == "" {
			missing = append(missing, "S3_SECRET_KEY")
		}
		if len(missing) > 0 {
			return Config{}, fmt.Errorf("missing required environment variables: %v", missing)
		}
	}

	return cfg, nil
}

// S3Enabled reports whether order exports should go to object storage.
func (c Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

func compact(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func loadEnvFile() error {
	candidates := []string{}
	if custom, ok := os.LookupEnv("CONFIG_ENV_PATH"); ok && custom != "" {
		candidates = append(candidates, custom)
	}
	candidates = append(candidates,
		filepath.Join("configs", ".env"),
		".env",
	)

	for _, path := range candidates {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("access env file %s: %w", path, err)
		}
		if info.IsDir() {
			continue
		}
		// Load keeps variables already present in the environment.
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
		return nil
	}
	return nil
}
