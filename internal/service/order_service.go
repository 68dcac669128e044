package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/socialoura/spotyz/internal/models"
	"github.com/socialoura/spotyz/internal/repository"
)

const defaultCurrency = "eur"

// OrderNotifier receives freshly created orders. Implementations must not block.
type OrderNotifier interface {
	OrderCreated(order models.Order)
}

// CheckoutRecorder is told when a payment intent turned into an order.
type CheckoutRecorder interface {
	Complete(intentID string)
}

type OrderService struct {
	orders   OrderStore
	promos   *PromoService
	notifier OrderNotifier
	checkout CheckoutRecorder
	logger   *slog.Logger
}

type CreateOrderInput struct {
	Username  string
	Email     string
	Platform  models.Platform
	Followers int
	Price     *decimal.Decimal
	Amount    decimal.Decimal
	Currency  string
	PaymentID string
	PromoCode string
	Discount  decimal.Decimal
	Language  string
}

type CreateOrderResult struct {
	Order *models.Order
	// Replayed is set when an order for the payment already existed.
	Replayed bool
}

func NewOrderService(orders OrderStore, promos *PromoService, notifier OrderNotifier, checkout CheckoutRecorder, logger *slog.Logger) *OrderService {
	return &OrderService{orders: orders, promos: promos, notifier: notifier, checkout: checkout, logger: logger}
}

// Create records a paid order once per payment id. Repeated calls return the first order.
func (s *OrderService) Create(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error) {
	order, err := buildOrder(input)
	if err != nil {
		return nil, err
	}

	existing, err := s.orders.FindByPaymentID(ctx, order.PaymentID)
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	if existing != nil {
		return &CreateOrderResult{Order: existing, Replayed: true}, nil
	}

	created, err := s.orders.Create(ctx, order)
	if errors.Is(err, repository.ErrDuplicate) {
		existing, err := s.orders.FindByPaymentID(ctx, order.PaymentID)
		if err != nil {
			return nil, fmt.Errorf("find order after conflict: %w", err)
		}
		if existing == nil {
			return nil, fmt.Errorf("order for payment %s vanished after conflict", order.PaymentID)
		}
		return &CreateOrderResult{Order: existing, Replayed: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if created.PromoCode != "" && s.promos != nil {
		redeemed, err := s.promos.Redeem(ctx, created.PromoCode)
		switch {
		case err != nil:
			s.logger.Error("redeem promo code", "code", created.PromoCode, "order_id", created.ID, "err", err)
		case !redeemed:
			s.logger.Warn("promo code not redeemed", "code", created.PromoCode, "order_id", created.ID)
		}
	}
	if s.checkout != nil {
		s.checkout.Complete(created.PaymentID)
	}
	if s.notifier != nil {
		s.notifier.OrderCreated(*created)
	}

	s.logger.Info("order created", "order_id", created.ID, "payment_id", created.PaymentID, "platform", created.Platform)
	return &CreateOrderResult{Order: created}, nil
}

func buildOrder(input CreateOrderInput) (*models.Order, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, invalidf("username is required")
	}
	email := strings.TrimSpace(input.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalidf("a valid email is required")
	}
	platform := models.Platform(strings.ToLower(string(input.Platform)))
	if !platform.Valid() {
		return nil, invalidf("unknown platform %q", input.Platform)
	}
	if input.Followers <= 0 {
		return nil, invalidf("followers must be positive")
	}
	if !input.Amount.IsPositive() {
		return nil, invalidf("amount must be positive")
	}
	paymentID := strings.TrimSpace(input.PaymentID)
	if paymentID == "" {
		return nil, invalidf("paymentId is required")
	}
	if input.Discount.IsNegative() {
		return nil, invalidf("discount cannot be negative")
	}

	currency := strings.ToLower(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = defaultCurrency
	}
	language := strings.ToLower(strings.TrimSpace(input.Language))
	if language != "fr" {
		language = "en"
	}
	price := input.Amount.Add(input.Discount)
	if input.Price != nil && input.Price.IsPositive() {
		price = *input.Price
	}

	return &models.Order{
		Username:      username,
		Email:         email,
		Platform:      platform,
		Followers:     input.Followers,
		Price:         price,
		Amount:        input.Amount,
		Currency:      currency,
		PromoCode:     normalizeCode(input.PromoCode),
		Discount:      input.Discount,
		PaymentID:     paymentID,
		Status:        models.PaymentStatusCompleted,
		PaymentStatus: models.PaymentStatusCompleted,
		OrderStatus:   models.OrderStatusPending,
		Language:      language,
	}, nil
}

func (s *OrderService) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	return s.orders.List(ctx, filter)
}

func (s *OrderService) Update(ctx context.Context, id int64, update models.OrderUpdate) (*models.Order, error) {
	if update.OrderStatus == nil && update.Notes == nil {
		return nil, invalidf("nothing to update")
	}
	if update.OrderStatus != nil && !update.OrderStatus.Valid() {
		return nil, invalidf("unknown order_status %q", *update.OrderStatus)
	}
	updated, err := s.orders.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}
	return updated, nil
}

func (s *OrderService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.orders.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
