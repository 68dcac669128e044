package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/resend/resend-go/v2"

	"github.com/socialoura/spotyz/internal/models"
)

type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// Email sends order confirmations to customers and relays support messages.
type Email struct {
	sender emailSender
	from   string
}

// NewEmail wraps a Resend client.
func NewEmail(client *resend.Client, from string) *Email {
	return &Email{sender: client.Emails, from: from}
}

func (e *Email) Name() string { return "email" }

type orderMail struct {
	Subject string
	Heading string
	Intro   string
	Rows    [][2]string
	Footer  string
}

var mailTemplate = template.Must(template.New("mail").Parse(`<!doctype html>
<html><body style="font-family:Arial,sans-serif;color:#111">
<h2>{{.Heading}}</h2>
<p>{{.Intro}}</p>
<table cellpadding="6" style="border-collapse:collapse">
{{range .Rows}}<tr><td style="color:#666">{{index . 0}}</td><td><strong>{{index . 1}}</strong></td></tr>
{{end}}</table>
<p style="color:#666">{{.Footer}}</p>
</body></html>`))

func (e *Email) NotifyOrder(ctx context.Context, order models.Order) error {
	mail := orderConfirmation(order)
	var body bytes.Buffer
	if err := mailTemplate.Execute(&body, mail); err != nil {
		return fmt.Errorf("render order email: %w", err)
	}
	_, err := e.sender.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    e.from,
		To:      []string{order.Email},
		Subject: mail.Subject,
		Html:    body.String(),
	})
	if err != nil {
		return fmt.Errorf("send order email: %w", err)
	}
	return nil
}

func orderConfirmation(order models.Order) orderMail {
	amount := order.Amount.StringFixed(2) + " " + strings.ToUpper(order.Currency)
	if order.Language == "fr" {
		return orderMail{
			Subject: fmt.Sprintf("Confirmation de commande #%d", order.ID),
			Heading: "Merci pour votre commande !",
			Intro:   "Votre paiement a bien été reçu. Notre équipe démarre la livraison sous 24 heures.",
			Rows: [][2]string{
				{"Commande", fmt.Sprintf("#%d", order.ID)},
				{"Plateforme", string(order.Platform)},
				{"Compte", order.Username},
				{"Quantité", fmt.Sprintf("%d", order.Followers)},
				{"Montant", amount},
			},
			Footer: "Répondez à cet e-mail pour toute question.",
		}
	}
	return orderMail{
		Subject: fmt.Sprintf("Order confirmation #%d", order.ID),
		Heading: "Thank you for your order!",
		Intro:   "We received your payment. Our team starts delivery within 24 hours.",
		Rows: [][2]string{
			{"Order", fmt.Sprintf("#%d", order.ID)},
			{"Platform", string(order.Platform)},
			{"Account", order.Username},
			{"Quantity", fmt.Sprintf("%d", order.Followers)},
			{"Amount", amount},
		},
		Footer: "Reply to this email if you have any question.",
	}
}

// SendSupport forwards a contact form message; replies go straight to the customer.
func (e *Email) SendSupport(ctx context.Context, to string, msg models.SupportMessage) error {
	mail := orderMail{
		Subject: "Support request from " + msg.Email,
		Heading: "New support message",
		Intro:   msg.Message,
		Rows: [][2]string{
			{"From", msg.Email},
			{"Language", msg.Language},
		},
	}
	var body bytes.Buffer
	if err := mailTemplate.Execute(&body, mail); err != nil {
		return fmt.Errorf("render support email: %w", err)
	}
	_, err := e.sender.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    e.from,
		To:      []string{to},
		ReplyTo: msg.Email,
		Subject: mail.Subject,
		Html:    body.String(),
		Text:    msg.Message,
	})
	if err != nil {
		return fmt.Errorf("send support email: %w", err)
	}
	return nil
}
