package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
	PlatformYouTube   Platform = "youtube"
	PlatformSpotify   Platform = "spotify"
)

// Platforms lists every storefront platform in display order.
var Platforms = []Platform{PlatformInstagram, PlatformTikTok, PlatformYouTube, PlatformSpotify}

func (p Platform) Valid() bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// PaymentStatusCompleted is the only payment status an order is created with.
const PaymentStatusCompleted = "completed"

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

func (d DiscountType) Valid() bool {
	return d == DiscountPercentage || d == DiscountFixed
}

type PricingTier struct {
	Followers int             `json:"followers"`
	Price     decimal.Decimal `json:"price"`
}

// MarshalJSON writes the price as a JSON number with two decimals.
func (t PricingTier) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Followers int         `json:"followers"`
		Price     json.Number `json:"price"`
	}{
		Followers: t.Followers,
		Price:     json.Number(t.Price.StringFixed(2)),
	})
}

// PricingDocument holds every platform's tiers; it is stored and replaced as a whole.
type PricingDocument map[Platform][]PricingTier

type Order struct {
	ID            int64           `json:"id"`
	Username      string          `json:"username"`
	Email         string          `json:"email"`
	Platform      Platform        `json:"platform"`
	Followers     int             `json:"followers"`
	Price         decimal.Decimal `json:"price"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PromoCode     string          `json:"promo_code,omitempty"`
	Discount      decimal.Decimal `json:"discount"`
	PaymentID     string          `json:"payment_id"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	OrderStatus   OrderStatus     `json:"order_status"`
	Notes         string          `json:"notes"`
	Language      string          `json:"language"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type PromoCode struct {
	ID            int64           `json:"id"`
	Code          string          `json:"code"`
	DiscountType  DiscountType    `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	MaxUses       *int            `json:"max_uses"`
	CurrentUses   int             `json:"current_uses"`
	ExpiresAt     *time.Time      `json:"expires_at"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type AdminUser struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

type AdExpense struct {
	ID        int64           `json:"id"`
	Date      time.Time       `json:"date"`
	Amount    decimal.Decimal `json:"amount"`
	Campaign  string          `json:"campaign"`
	Notes     string          `json:"notes"`
	CreatedAt time.Time       `json:"created_at"`
}

// Setting keys stored in the settings table.
const (
	SettingStripeSecretKey      = "stripe_secret_key"
	SettingStripePublishableKey = "stripe_publishable_key"
)

// OrderFilter bounds order listings by creation time; To is exclusive.
type OrderFilter struct {
	From *time.Time
	To   *time.Time
}

type OrderUpdate struct {
	OrderStatus *OrderStatus
	Notes       *string
}

// DateRange bounds expense listings by date; To is exclusive.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

type SupportMessage struct {
	Message  string
	Email    string
	Language string
}
