package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/socialoura/spotyz/internal/models"
)

const dayLayout = "2006-01-02"

type orderView struct {
	ID            int64              `json:"id"`
	Username      string             `json:"username"`
	Email         string             `json:"email"`
	Platform      models.Platform    `json:"platform"`
	Followers     int                `json:"followers"`
	Price         float64            `json:"price"`
	Amount        float64            `json:"amount"`
	Currency      string             `json:"currency"`
	PromoCode     string             `json:"promo_code,omitempty"`
	Discount      float64            `json:"discount"`
	PaymentID     string             `json:"payment_id"`
	Status        string             `json:"status"`
	PaymentStatus string             `json:"payment_status"`
	OrderStatus   models.OrderStatus `json:"order_status"`
	Notes         string             `json:"notes"`
	Language      string             `json:"language"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

func newOrderView(o models.Order) orderView {
	return orderView{
		ID:            o.ID,
		Username:      o.Username,
		Email:         o.Email,
		Platform:      o.Platform,
		Followers:     o.Followers,
		Price:         money(o.Price),
		Amount:        money(o.Amount),
		Currency:      o.Currency,
		PromoCode:     o.PromoCode,
		Discount:      money(o.Discount),
		PaymentID:     o.PaymentID,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		OrderStatus:   o.OrderStatus,
		Notes:         o.Notes,
		Language:      o.Language,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

type promoView struct {
	ID            int64               `json:"id"`
	Code          string              `json:"code"`
	DiscountType  models.DiscountType `json:"discount_type"`
	DiscountValue float64             `json:"discount_value"`
	MaxUses       *int                `json:"max_uses"`
	CurrentUses   int                 `json:"current_uses"`
	ExpiresAt     *time.Time          `json:"expires_at"`
	IsActive      bool                `json:"is_active"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func newPromoView(p models.PromoCode) promoView {
	return promoView{
		ID:            p.ID,
		Code:          p.Code,
		DiscountType:  p.DiscountType,
		DiscountValue: money(p.DiscountValue),
		MaxUses:       p.MaxUses,
		CurrentUses:   p.CurrentUses,
		ExpiresAt:     p.ExpiresAt,
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

type expenseView struct {
	ID        int64     `json:"id"`
	Date      string    `json:"date"`
	Amount    float64   `json:"amount"`
	Campaign  string    `json:"campaign"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

func newExpenseView(e models.AdExpense) expenseView {
	return expenseView{
		ID:        e.ID,
		Date:      e.Date.UTC().Format(dayLayout),
		Amount:    money(e.Amount),
		Campaign:  e.Campaign,
		Notes:     e.Notes,
		CreatedAt: e.CreatedAt,
	}
}

func mapSlice[T, V any](items []T, fn func(T) V) []V {
	out := make([]V, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}

func money(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

// parseDay accepts YYYY-MM-DD or RFC 3339.
func parseDay(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(dayLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", value)
	}
	return t, nil
}

// parseExpiry reads a bare date as the end of that day, so a code listed as
// expiring on a date still works through it.
func parseExpiry(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(dayLayout, value); err == nil {
		return t.AddDate(0, 0, 1), nil
	}
	return parseDay(value)
}

// dayRange reads ?from=&to= as inclusive days and returns a half-open range.
func dayRange(r *http.Request) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse(dayLayout, v)
		if err != nil {
			return nil, nil, fmt.Errorf("from must be YYYY-MM-DD")
		}
		from = &t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse(dayLayout, v)
		if err != nil {
			return nil, nil, fmt.Errorf("to must be YYYY-MM-DD")
		}
		t = t.AddDate(0, 0, 1)
		to = &t
	}
	if from != nil && to != nil && !from.Before(*to) {
		return nil, nil, fmt.Errorf("from must not be after to")
	}
	return from, to, nil
}
