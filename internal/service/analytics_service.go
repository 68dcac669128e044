package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/socialoura/spotyz/internal/models"
)

const dayLayout = "2006-01-02"

type AnalyticsService struct {
	orders   OrderStore
	expenses ExpenseStore
}

type PlatformStats struct {
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

type DailyStats struct {
	Date    string  `json:"date"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

type PromoStats struct {
	Code     string  `json:"code"`
	Orders   int     `json:"orders"`
	Discount float64 `json:"discount"`
}

// Report aggregates orders and ad spend. Cancelled orders are counted but bring no
// revenue.
type Report struct {
	From              string                            `json:"from,omitempty"`
	To                string                            `json:"to,omitempty"`
	Orders            int                               `json:"orders"`
	Revenue           float64                           `json:"revenue"`
	AverageOrderValue float64                           `json:"averageOrderValue"`
	Discounts         float64                           `json:"discounts"`
	ByPlatform        map[models.Platform]PlatformStats `json:"byPlatform"`
	ByStatus          map[models.OrderStatus]int        `json:"byStatus"`
	Daily             []DailyStats                      `json:"daily"`
	Promos            []PromoStats                      `json:"promos"`
	AdSpend           float64                           `json:"adSpend"`
	NetRevenue        float64                           `json:"netRevenue"`
	ROAS              *float64                          `json:"roas"`
}

func NewAnalyticsService(orders OrderStore, expenses ExpenseStore) *AnalyticsService {
	return &AnalyticsService{orders: orders, expenses: expenses}
}

// Report covers [rng.From, rng.To).
func (s *AnalyticsService) Report(ctx context.Context, rng models.DateRange) (*Report, error) {
	orders, err := s.orders.List(ctx, models.OrderFilter{From: rng.From, To: rng.To})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	var expenses []models.AdExpense
	if s.expenses != nil {
		expenses, err = s.expenses.List(ctx, rng)
		if err != nil {
			return nil, fmt.Errorf("list expenses: %w", err)
		}
	}
	report := Summarize(orders, expenses)
	if rng.From != nil {
		report.From = rng.From.UTC().Format(dayLayout)
	}
	if rng.To != nil {
		report.To = rng.To.UTC().Add(-time.Nanosecond).Format(dayLayout)
	}
	return report, nil
}

// Summarize builds a report from already loaded rows.
func Summarize(orders []models.Order, expenses []models.AdExpense) *Report {
	type bucket struct {
		orders  int
		revenue decimal.Decimal
	}
	var (
		revenue   decimal.Decimal
		discounts decimal.Decimal
		paid      int
		platforms = map[models.Platform]*bucket{}
		days      = map[string]*bucket{}
		promos    = map[string]*PromoStats{}
		promoDisc = map[string]decimal.Decimal{}
	)
	report := &Report{
		Orders:     len(orders),
		ByPlatform: map[models.Platform]PlatformStats{},
		ByStatus:   map[models.OrderStatus]int{},
		Daily:      []DailyStats{},
		Promos:     []PromoStats{},
	}

	for _, o := range orders {
		report.ByStatus[o.OrderStatus]++

		p := platforms[o.Platform]
		if p == nil {
			p = &bucket{}
			platforms[o.Platform] = p
		}
		day := o.CreatedAt.UTC().Format(dayLayout)
		d := days[day]
		if d == nil {
			d = &bucket{}
			days[day] = d
		}
		p.orders++
		d.orders++

		if o.PromoCode != "" {
			ps := promos[o.PromoCode]
			if ps == nil {
				ps = &PromoStats{Code: o.PromoCode}
				promos[o.PromoCode] = ps
			}
			ps.Orders++
			promoDisc[o.PromoCode] = promoDisc[o.PromoCode].Add(o.Discount)
		}

		if o.OrderStatus == models.OrderStatusCancelled {
			continue
		}
		paid++
		revenue = revenue.Add(o.Amount)
		discounts = discounts.Add(o.Discount)
		p.revenue = p.revenue.Add(o.Amount)
		d.revenue = d.revenue.Add(o.Amount)
	}

	for platform, b := range platforms {
		report.ByPlatform[platform] = PlatformStats{Orders: b.orders, Revenue: money(b.revenue)}
	}
	for day, b := range days {
		report.Daily = append(report.Daily, DailyStats{Date: day, Orders: b.orders, Revenue: money(b.revenue)})
	}
	sort.Slice(report.Daily, func(i, j int) bool { return report.Daily[i].Date < report.Daily[j].Date })
	for code, ps := range promos {
		ps.Discount = money(promoDisc[code])
		report.Promos = append(report.Promos, *ps)
	}
	sort.Slice(report.Promos, func(i, j int) bool {
		if report.Promos[i].Orders == report.Promos[j].Orders {
			return report.Promos[i].Code < report.Promos[j].Code
		}
		return report.Promos[i].Orders > report.Promos[j].Orders
	})

	var spend decimal.Decimal
	for _, e := range expenses {
		spend = spend.Add(e.Amount)
	}

	report.Revenue = money(revenue)
	report.Discounts = money(discounts)
	if paid > 0 {
		report.AverageOrderValue = money(revenue.Div(decimal.NewFromInt(int64(paid))))
	}
	report.AdSpend = money(spend)
	report.NetRevenue = money(revenue.Sub(spend))
	if spend.IsPositive() {
		roas := money(revenue.Div(spend))
		report.ROAS = &roas
	}
	return report
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
