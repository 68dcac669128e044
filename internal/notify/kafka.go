package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/socialoura/spotyz/internal/models"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OrderEvent is published once per created order.
type OrderEvent struct {
	Type      string    `json:"type"`
	OrderID   int64     `json:"orderId"`
	PaymentID string    `json:"paymentId"`
	Platform  string    `json:"platform"`
	Followers int       `json:"followers"`
	Amount    string    `json:"amount"`
	Currency  string    `json:"currency"`
	PromoCode string    `json:"promoCode,omitempty"`
	Discount  string    `json:"discount"`
	Language  string    `json:"language"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

type Kafka struct {
	writer messageWriter
}

func NewKafka(brokers []string, topic string) *Kafka {
	return &Kafka{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			// Notifications are best-effort; do not retry.
			MaxAttempts: 1,
		},
	}
}

func (k *Kafka) Name() string { return "kafka" }

func (k *Kafka) NotifyOrder(ctx context.Context, order models.Order) error {
	event := OrderEvent{
		Type:      "order.created",
		OrderID:   order.ID,
		PaymentID: order.PaymentID,
		Platform:  string(order.Platform),
		Followers: order.Followers,
		Amount:    order.Amount.StringFixed(2),
		Currency:  order.Currency,
		PromoCode: order.PromoCode,
		Discount:  order.Discount.StringFixed(2),
		Language:  order.Language,
		Username:  order.Username,
		CreatedAt: order.CreatedAt,
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(order.ID, 10)),
		Value: value,
		Time:  time.Now(),
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish order event: %w", err)
	}
	return nil
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
