// Package notify fans freshly created orders out to email, chat and event channels.
// Delivery is best-effort: failures are logged and counted, never retried.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/socialoura/spotyz/internal/metrics"
	"github.com/socialoura/spotyz/internal/models"
)

type Notifier interface {
	Name() string
	NotifyOrder(ctx context.Context, order models.Order) error
}

type Dispatcher struct {
	notifiers []Notifier
	timeout   time.Duration
	logger    *slog.Logger
	metrics   *metrics.Metrics
	wg        sync.WaitGroup
}

func NewDispatcher(timeout time.Duration, logger *slog.Logger, m *metrics.Metrics, notifiers ...Notifier) *Dispatcher {
	return &Dispatcher{notifiers: notifiers, timeout: timeout, logger: logger, metrics: m}
}

// Add registers another channel. Not safe to call once orders are flowing.
func (d *Dispatcher) Add(n Notifier) {
	d.notifiers = append(d.notifiers, n)
}

func (d *Dispatcher) Channels() []string {
	names := make([]string, 0, len(d.notifiers))
	for _, n := range d.notifiers {
		names = append(names, n.Name())
	}
	return names
}

// OrderCreated returns immediately; each channel runs in its own goroutine with a
// timeout detached from the request.
func (d *Dispatcher) OrderCreated(order models.Order) {
	for _, n := range d.notifiers {
		d.wg.Add(1)
		go func(n Notifier) {
			defer d.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			defer cancel()

			result := "ok"
			if err := n.NotifyOrder(ctx, order); err != nil {
				result = "error"
				d.logger.Warn("order notification failed", "channel", n.Name(), "order_id", order.ID, "err", err)
			}
			if d.metrics != nil {
				d.metrics.NotificationsTotal.WithLabelValues(n.Name(), result).Inc()
			}
		}(n)
	}
}

// Wait blocks until in-flight notifications finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
