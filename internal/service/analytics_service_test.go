package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialoura/spotyz/internal/models"
	"github.com/socialoura/spotyz/internal/repository/memory"
)

func TestSummarize(t *testing.T) {
	day1 := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)
	orders := []models.Order{
		{Platform: models.PlatformInstagram, Amount: dec("29.90"), OrderStatus: models.OrderStatusCompleted, CreatedAt: day1},
		{Platform: models.PlatformInstagram, Amount: dec("25.41"), Discount: dec("4.49"), PromoCode: "SAVE15", OrderStatus: models.OrderStatusPending, CreatedAt: day1},
		{Platform: models.PlatformTikTok, Amount: dec("12.90"), OrderStatus: models.OrderStatusCancelled, CreatedAt: day2},
		{Platform: models.PlatformSpotify, Amount: dec("9.90"), Discount: dec("1"), PromoCode: "SAVE15", OrderStatus: models.OrderStatusProcessing, CreatedAt: day2},
	}
	expenses := []models.AdExpense{{Amount: dec("20")}, {Amount: dec("10.5")}}

	r := Summarize(orders, expenses)

	assert.Equal(t, 4, r.Orders)
	assert.Equal(t, 65.21, r.Revenue)
	assert.Equal(t, 21.74, r.AverageOrderValue)
	assert.Equal(t, 5.49, r.Discounts)
	assert.Equal(t, PlatformStats{Orders: 2, Revenue: 55.31}, r.ByPlatform[models.PlatformInstagram])
	assert.Equal(t, PlatformStats{Orders: 1, Revenue: 0}, r.ByPlatform[models.PlatformTikTok])
	assert.Equal(t, 1, r.ByStatus[models.OrderStatusCancelled])
	require.Len(t, r.Daily, 2)
	assert.Equal(t, DailyStats{Date: "2026-05-01", Orders: 2, Revenue: 55.31}, r.Daily[0])
	assert.Equal(t, DailyStats{Date: "2026-05-02", Orders: 2, Revenue: 9.9}, r.Daily[1])
	require.Len(t, r.Promos, 1)
	assert.Equal(t, PromoStats{Code: "SAVE15", Orders: 2, Discount: 5.49}, r.Promos[0])
	assert.Equal(t, 30.5, r.AdSpend)
	assert.Equal(t, 34.71, r.NetRevenue)
	require.NotNil(t, r.ROAS)
	assert.Equal(t, 2.14, *r.ROAS)
}

func TestSummarizeEmpty(t *testing.T) {
	r := Summarize(nil, nil)
	assert.Zero(t, r.Orders)
	assert.Zero(t, r.AverageOrderValue)
	assert.Nil(t, r.ROAS)
	assert.NotNil(t, r.Daily)
}

func TestAnalyticsReportRange(t *testing.T) {
	ctx := context.Background()
	orders := memory.NewOrderStore()
	expenses := memory.NewExpenseStore()
	for i, at := range []time.Time{
		time.Date(2026, 4, 30, 23, 0, 0, 0, time.UTC),
		time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC),
		time.Date(2026, 5, 31, 22, 0, 0, 0, time.UTC),
		time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
	} {
		_, err := orders.Create(ctx, &models.Order{
			PaymentID:   "pi_" + string(rune('a'+i)),
			Platform:    models.PlatformYouTube,
			Amount:      dec("10"),
			OrderStatus: models.OrderStatusPending,
			CreatedAt:   at,
		})
		require.NoError(t, err)
	}
	svc := NewExpenseService(expenses)
	_, err := svc.Create(ctx, ExpenseInput{Date: time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC), Amount: dec("5"), Campaign: " spring "})
	require.NoError(t, err)

	from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	report, err := NewAnalyticsService(orders, expenses).Report(ctx, models.DateRange{From: &from, To: &to})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Orders)
	assert.Equal(t, 20.0, report.Revenue)
	assert.Equal(t, 5.0, report.AdSpend)
	assert.Equal(t, "2026-05-01", report.From)
	assert.Equal(t, "2026-05-31", report.To)
}

func TestExpenseService(t *testing.T) {
	ctx := context.Background()
	svc := NewExpenseService(memory.NewExpenseStore())

	_, err := svc.Create(ctx, ExpenseInput{Amount: dec("5")})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Create(ctx, ExpenseInput{Date: time.Now(), Amount: dec("-5")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	created, err := svc.Create(ctx, ExpenseInput{Date: time.Date(2026, 5, 10, 15, 30, 0, 0, time.UTC), Amount: dec("12.345"), Campaign: " brand "})
	require.NoError(t, err)
	assert.Equal(t, "brand", created.Campaign)
	assert.True(t, created.Amount.Equal(dec("12.35")))
	assert.Equal(t, time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC), created.Date)

	list, err := svc.List(ctx, models.DateRange{})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), ErrNotFound)
}
