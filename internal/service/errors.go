package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("already exists")
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotConfigured is returned when a required integration has no credentials.
	ErrNotConfigured = errors.New("not configured")
)

// ValidationError carries a message safe to show to API clients.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

func invalidf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// PromoRejection is a promo code refusal with a stable client-facing message.
type PromoRejection struct {
	Message string
}

func (e *PromoRejection) Error() string { return e.Message }

var (
	ErrPromoUnknown   = &PromoRejection{Message: "Invalid promo code"}
	ErrPromoInactive  = &PromoRejection{Message: "Promo code is inactive"}
	ErrPromoExpired   = &PromoRejection{Message: "Promo code has expired"}
	ErrPromoExhausted = &PromoRejection{Message: "Promo code usage limit reached"}
)
