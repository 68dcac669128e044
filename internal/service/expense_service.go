package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/socialoura/spotyz/internal/models"
)

type ExpenseService struct {
	store ExpenseStore
}

type ExpenseInput struct {
	Date     time.Time
	Amount   decimal.Decimal
	Campaign string
	Notes    string
}

func NewExpenseService(store ExpenseStore) *ExpenseService {
	return &ExpenseService{store: store}
}

func (s *ExpenseService) List(ctx context.Context, rng models.DateRange) ([]models.AdExpense, error) {
	return s.store.List(ctx, rng)
}

func (s *ExpenseService) Create(ctx context.Context, input ExpenseInput) (*models.AdExpense, error) {
	if input.Date.IsZero() {
		return nil, invalidf("date is required")
	}
	if !input.Amount.IsPositive() {
		return nil, invalidf("amount must be positive")
	}
	y, m, d := input.Date.Date()
	return s.store.Create(ctx, &models.AdExpense{
		Date:     time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Amount:   input.Amount.Round(2),
		Campaign: strings.TrimSpace(input.Campaign),
		Notes:    strings.TrimSpace(input.Notes),
	})
}

func (s *ExpenseService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
