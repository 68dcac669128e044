package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/socialoura/spotyz/internal/models"
)

type chatSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts a short order summary to the operators' chat.
type Telegram struct {
	bot    chatSender
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) NotifyOrder(ctx context.Context, order models.Order) error {
	var b strings.Builder
	fmt.Fprintf(&b, "New order #%d\n", order.ID)
	fmt.Fprintf(&b, "%s · %d · %s %s\n", order.Platform, order.Followers, order.Amount.StringFixed(2), strings.ToUpper(order.Currency))
	fmt.Fprintf(&b, "Account: %s\n", order.Username)
	fmt.Fprintf(&b, "Email: %s\n", order.Email)
	if order.PromoCode != "" {
		fmt.Fprintf(&b, "Promo: %s (-%s)\n", order.PromoCode, order.Discount.StringFixed(2))
	}

	msg := tgbotapi.NewMessage(t.chatID, b.String())
	msg.DisableWebPagePreview = true

	// The bot API client has no context support; give up once the caller has.
	done := make(chan error, 1)
	go func() {
		_, err := t.bot.Send(msg)
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send telegram message: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
