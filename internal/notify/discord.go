package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/socialoura/spotyz/internal/models"
)

const (
	colorGreen = 0x22c55e
	maxFields  = 25
)

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type Embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

type Discord struct {
	webhookURL string
	httpClient *http.Client
}

func NewDiscord(webhookURL string) *Discord {
	return &Discord{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (d *Discord) Name() string { return "discord" }

func (d *Discord) NotifyOrder(ctx context.Context, order models.Order) error {
	fields := []EmbedField{
		{Name: "Platform", Value: string(order.Platform), Inline: true},
		{Name: "Quantity", Value: strconv.Itoa(order.Followers), Inline: true},
		{Name: "Amount", Value: order.Amount.StringFixed(2) + " " + strings.ToUpper(order.Currency), Inline: true},
		{Name: "Username", Value: order.Username},
		{Name: "Email", Value: order.Email},
		{Name: "Payment", Value: order.PaymentID},
	}
	if order.PromoCode != "" {
		fields = append(fields, EmbedField{Name: "Promo", Value: order.PromoCode + " (-" + order.Discount.StringFixed(2) + ")", Inline: true})
	}
	return d.SendEmbed(ctx, Embed{
		Title:     fmt.Sprintf("New order #%d", order.ID),
		Color:     colorGreen,
		Fields:    fields,
		Timestamp: order.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// SendEmbed posts one embed to the webhook.
func (d *Discord) SendEmbed(ctx context.Context, embed Embed) error {
	if len(embed.Fields) > maxFields {
		embed.Fields = embed.Fields[:maxFields]
	}
	body, err := json.Marshal(map[string]any{"embeds": []Embed{embed}})
	if err != nil {
		return fmt.Errorf("marshal embed: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("discord webhook status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
