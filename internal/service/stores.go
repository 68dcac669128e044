package service

import (
	"context"

	"github.com/socialoura/spotyz/internal/models"
)

// Stores are satisfied by both the Postgres repositories and the memory package.

type PricingStore interface {
	Get(ctx context.Context) (models.PricingDocument, error)
	Put(ctx context.Context, doc models.PricingDocument) error
}

type OrderStore interface {
	FindByPaymentID(ctx context.Context, paymentID string) (*models.Order, error)
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	Create(ctx context.Context, o *models.Order) (*models.Order, error)
	List(ctx context.Context, filter models.OrderFilter) ([]models.Order, error)
	Update(ctx context.Context, id int64, update models.OrderUpdate) (*models.Order, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type PromoStore interface {
	GetByCode(ctx context.Context, code string) (*models.PromoCode, error)
	GetByID(ctx context.Context, id int64) (*models.PromoCode, error)
	List(ctx context.Context) ([]models.PromoCode, error)
	Create(ctx context.Context, promo *models.PromoCode) (*models.PromoCode, error)
	Update(ctx context.Context, promo *models.PromoCode) (*models.PromoCode, error)
	SetActive(ctx context.Context, id int64, active bool) (*models.PromoCode, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Redeem(ctx context.Context, code string) (bool, error)
}

type SettingsStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type AdminUserStore interface {
	FindByUsername(ctx context.Context, username string) (*models.AdminUser, error)
}

type ExpenseStore interface {
	List(ctx context.Context, rng models.DateRange) ([]models.AdExpense, error)
	Create(ctx context.Context, e *models.AdExpense) (*models.AdExpense, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
