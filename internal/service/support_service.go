package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/socialoura/spotyz/internal/models"
)

const maxSupportMessage = 5000

type SupportMailer interface {
	SendSupport(ctx context.Context, to string, msg models.SupportMessage) error
}

type SupportService struct {
	mailer SupportMailer
	to     string
}

// NewSupportService forwards contact form messages to the support inbox. A nil mailer
// or empty inbox leaves the form disabled.
func NewSupportService(mailer SupportMailer, to string) *SupportService {
	return &SupportService{mailer: mailer, to: to}
}

func (s *SupportService) Send(ctx context.Context, msg models.SupportMessage) error {
	msg.Message = strings.TrimSpace(msg.Message)
	msg.Email = strings.TrimSpace(msg.Email)
	if msg.Message == "" {
		return invalidf("message is required")
	}
	if utf8.RuneCountInString(msg.Message) > maxSupportMessage {
		return invalidf("message is too long")
	}
	if _, err := mail.ParseAddress(msg.Email); err != nil {
		return invalidf("a valid email is required")
	}
	if msg.Language != "fr" {
		msg.Language = "en"
	}
	if s.mailer == nil || s.to == "" {
		return ErrNotConfigured
	}
	if err := s.mailer.SendSupport(ctx, s.to, msg); err != nil {
		return fmt.Errorf("send support message: %w", err)
	}
	return nil
}
