package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jaevor/go-nanoid"
	"github.com/shopspring/decimal"

	"github.com/socialoura/spotyz/internal/models"
	"github.com/socialoura/spotyz/internal/repository"
)

const (
	promoAlphabet   = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	promoCodeLength = 8
)

var hundred = decimal.NewFromInt(100)

type PromoService struct {
	store    PromoStore
	generate func() string
	now      func() time.Time
}

// PromoQuote is the result of a successful validation.
type PromoQuote struct {
	Code          string
	DiscountType  models.DiscountType
	DiscountValue decimal.Decimal
	Discount      decimal.Decimal
	FinalPrice    decimal.Decimal
}

type PromoInput struct {
	Code          string
	DiscountType  models.DiscountType
	DiscountValue decimal.Decimal
	MaxUses       *int
	ExpiresAt     *time.Time
	IsActive      *bool
}

func NewPromoService(store PromoStore) (*PromoService, error) {
	generate, err := nanoid.CustomASCII(promoAlphabet, promoCodeLength)
	if err != nil {
		return nil, fmt.Errorf("init promo code generator: %w", err)
	}
	return &PromoService{store: store, generate: generate, now: time.Now}, nil
}

// Validate checks a code against a price without consuming a use.
func (s *PromoService) Validate(ctx context.Context, code string, price decimal.Decimal) (*PromoQuote, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, invalidf("code is required")
	}
	if !price.IsPositive() {
		return nil, invalidf("price must be a positive number")
	}

	promo, err := s.store.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("get promo: %w", err)
	}
	if promo == nil {
		return nil, ErrPromoUnknown
	}
	if !promo.IsActive {
		return nil, ErrPromoInactive
	}
	if promo.ExpiresAt != nil && !promo.ExpiresAt.After(s.now()) {
		return nil, ErrPromoExpired
	}
	if promo.MaxUses != nil && promo.CurrentUses >= *promo.MaxUses {
		return nil, ErrPromoExhausted
	}

	discount := Discount(promo.DiscountType, promo.DiscountValue, price)
	return &PromoQuote{
		Code:          promo.Code,
		DiscountType:  promo.DiscountType,
		DiscountValue: promo.DiscountValue,
		Discount:      discount,
		FinalPrice:    price.Sub(discount).Round(2),
	}, nil
}

// Discount computes the amount taken off price. Fixed discounts never exceed the price.
func Discount(kind models.DiscountType, value, price decimal.Decimal) decimal.Decimal {
	switch kind {
	case models.DiscountPercentage:
		return price.Mul(value).Div(hundred).Round(2)
	case models.DiscountFixed:
		return decimal.Min(value, price)
	}
	return decimal.Zero
}

// Redeem consumes one use. It reports false when the code is unknown or exhausted.
func (s *PromoService) Redeem(ctx context.Context, code string) (bool, error) {
	ok, err := s.store.Redeem(ctx, strings.TrimSpace(code))
	if err != nil {
		return false, fmt.Errorf("redeem promo: %w", err)
	}
	return ok, nil
}

func (s *PromoService) List(ctx context.Context) ([]models.PromoCode, error) {
	return s.store.List(ctx)
}

func (s *PromoService) Create(ctx context.Context, input PromoInput) (*models.PromoCode, error) {
	if err := validatePromoInput(input); err != nil {
		return nil, err
	}
	code := normalizeCode(input.Code)
	if code == "" {
		code = s.generate()
	}
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	promo := &models.PromoCode{
		Code:          code,
		DiscountType:  input.DiscountType,
		DiscountValue: input.DiscountValue,
		MaxUses:       input.MaxUses,
		ExpiresAt:     input.ExpiresAt,
		IsActive:      active,
	}
	created, err := s.store.Create(ctx, promo)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, fmt.Errorf("promo code %s: %w", code, ErrConflict)
	}
	return created, err
}

func (s *PromoService) Update(ctx context.Context, id int64, input PromoInput) (*models.PromoCode, error) {
	if err := validatePromoInput(input); err != nil {
		return nil, err
	}
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}
	if code := normalizeCode(input.Code); code != "" {
		existing.Code = code
	}
	existing.DiscountType = input.DiscountType
	existing.DiscountValue = input.DiscountValue
	existing.MaxUses = input.MaxUses
	existing.ExpiresAt = input.ExpiresAt
	if input.IsActive != nil {
		existing.IsActive = *input.IsActive
	}

	updated, err := s.store.Update(ctx, existing)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, fmt.Errorf("promo code %s: %w", existing.Code, ErrConflict)
	}
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}
	return updated, nil
}

// Toggle flips the active flag.
func (s *PromoService) Toggle(ctx context.Context, id int64) (*models.PromoCode, error) {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}
	updated, err := s.store.SetActive(ctx, id, !existing.IsActive)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}
	return updated, nil
}

func (s *PromoService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func validatePromoInput(input PromoInput) error {
	if !input.DiscountType.Valid() {
		return invalidf("discount_type must be percentage or fixed")
	}
	if !input.DiscountValue.IsPositive() {
		return invalidf("discount_value must be positive")
	}
	if input.DiscountType == models.DiscountPercentage && input.DiscountValue.GreaterThan(hundred) {
		return invalidf("percentage discount cannot exceed 100")
	}
	if input.MaxUses != nil && *input.MaxUses <= 0 {
		return invalidf("max_uses must be positive when set")
	}
	if code := normalizeCode(input.Code); len(code) > 64 {
		return invalidf("code is too long")
	}
	return nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
