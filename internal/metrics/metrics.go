package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestDuration *prometheus.HistogramVec
	PaymentIntentsTotal *prometheus.CounterVec
	OrdersTotal         *prometheus.CounterVec
	OrderRevenueTotal   *prometheus.CounterVec
	PromoValidations    *prometheus.CounterVec
	NotificationsTotal  *prometheus.CounterVec
}

// New registers the storefront collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency by route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		PaymentIntentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_intents_total",
				Help: "Payment intents requested, by result",
			},
			[]string{"result"},
		),
		OrdersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orders_total",
				Help: "Order create calls, by outcome (created or replayed)",
			},
			[]string{"outcome", "platform"},
		),
		OrderRevenueTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_revenue_total",
				Help: "Charged amount of created orders",
			},
			[]string{"currency"},
		),
		PromoValidations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "promo_validations_total",
				Help: "Promo code validations, by result",
			},
			[]string{"result"},
		),
		NotificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifications_total",
				Help: "Order notifications, by channel and result",
			},
			[]string{"channel", "result"},
		),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
