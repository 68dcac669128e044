package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/socialoura/spotyz/internal/checkout"
	"github.com/socialoura/spotyz/internal/models"
	"github.com/socialoura/spotyz/internal/notify"
	"github.com/socialoura/spotyz/internal/service"
)

type paymentIntentRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func (s *Server) handleCreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req paymentIntentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.metrics.PaymentIntentsTotal.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	intent, err := s.payments.CreateIntent(r.Context(), req.Amount, req.Currency)
	if err != nil {
		s.metrics.PaymentIntentsTotal.WithLabelValues("error").Inc()
		s.fail(w, r, err)
		return
	}
	s.metrics.PaymentIntentsTotal.WithLabelValues("created").Inc()
	writeJSON(w, http.StatusOK, map[string]string{
		"clientSecret":    intent.ClientSecret,
		"paymentIntentId": intent.ID,
	})
}

func (s *Server) handleStripeConfig(w http.ResponseWriter, r *http.Request) {
	key, err := s.payments.PublishableKey(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"publishableKey": key})
}

type validatePromoRequest struct {
	Code  string          `json:"code"`
	Price decimal.Decimal `json:"price"`
}

func (s *Server) handleValidatePromo(w http.ResponseWriter, r *http.Request) {
	var req validatePromoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"valid": false, "error": err.Error()})
		return
	}
	quote, err := s.promos.Validate(r.Context(), req.Code, req.Price)
	if err != nil {
		var (
			rejection  *service.PromoRejection
			validation *service.ValidationError
		)
		switch {
		case errors.As(err, &rejection):
			s.metrics.PromoValidations.WithLabelValues("rejected").Inc()
			writeJSON(w, http.StatusBadRequest, map[string]any{"valid": false, "error": rejection.Message})
		case errors.As(err, &validation):
			s.metrics.PromoValidations.WithLabelValues("invalid").Inc()
			writeJSON(w, http.StatusBadRequest, map[string]any{"valid": false, "error": validation.Msg})
		default:
			s.internalError(w, r, err)
		}
		return
	}
	s.metrics.PromoValidations.WithLabelValues("accepted").Inc()
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":         true,
		"code":          quote.Code,
		"discount":      money(quote.Discount),
		"finalPrice":    money(quote.FinalPrice),
		"discountType":  quote.DiscountType,
		"discountValue": money(quote.DiscountValue),
	})
}

type createOrderRequest struct {
	Username  string           `json:"username"`
	Email     string           `json:"email"`
	Platform  models.Platform  `json:"platform"`
	Followers int              `json:"followers"`
	Price     *decimal.Decimal `json:"price"`
	Amount    decimal.Decimal  `json:"amount"`
	Currency  string           `json:"currency"`
	PaymentID string           `json:"paymentId"`
	PromoCode string           `json:"promoCode"`
	Discount  decimal.Decimal  `json:"discount"`
	Language  string           `json:"language"`
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := s.orders.Create(r.Context(), service.CreateOrderInput{
		Username:  req.Username,
		Email:     req.Email,
		Platform:  req.Platform,
		Followers: req.Followers,
		Price:     req.Price,
		Amount:    req.Amount,
		Currency:  req.Currency,
		PaymentID: req.PaymentID,
		PromoCode: req.PromoCode,
		Discount:  req.Discount,
		Language:  req.Language,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	order := result.Order
	if result.Replayed {
		s.metrics.OrdersTotal.WithLabelValues("replayed", string(order.Platform)).Inc()
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"orderId": order.ID,
			"message": "Order already exists",
		})
		return
	}
	s.metrics.OrdersTotal.WithLabelValues("created", string(order.Platform)).Inc()
	s.metrics.OrderRevenueTotal.WithLabelValues(order.Currency).Add(money(order.Amount))
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "orderId": order.ID})
}

func (s *Server) handleGetPricing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.pricing.Get(r.Context()))
}

func (s *Server) handleCheckoutState(w http.ResponseWriter, r *http.Request) {
	session, ok := s.checkout.Get(chi.URLParam(r, "intentID"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown payment intent")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

type checkoutEventRequest struct {
	Event checkout.Event `json:"event"`
}

func (s *Server) handleCheckoutEvent(w http.ResponseWriter, r *http.Request) {
	var req checkoutEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !req.Event.Valid() {
		writeError(w, http.StatusBadRequest, "unknown event")
		return
	}
	session, err := s.checkout.Apply(chi.URLParam(r, "intentID"), req.Event)
	switch {
	case errors.Is(err, checkout.ErrUnknownIntent):
		writeError(w, http.StatusNotFound, "unknown payment intent")
	case errors.Is(err, checkout.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		s.internalError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, session)
	}
}

type supportRequest struct {
	Message  string `json:"message"`
	Email    string `json:"email"`
	Language string `json:"language"`
}

func (s *Server) handleSupportMessage(w http.ResponseWriter, r *http.Request) {
	var req supportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	err := s.support.Send(r.Context(), models.SupportMessage{
		Message:  req.Message,
		Email:    req.Email,
		Language: req.Language,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type discordRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Fields      []notify.EmbedField `json:"fields"`
	Color       int                 `json:"color"`
}

func (s *Server) handleDiscordNotification(w http.ResponseWriter, r *http.Request) {
	var req discordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if s.discord == nil {
		s.fail(w, r, service.ErrNotConfigured)
		return
	}
	err := s.discord.SendEmbed(r.Context(), notify.Embed{
		Title:       req.Title,
		Description: req.Description,
		Color:       req.Color,
		Fields:      req.Fields,
	})
	if err != nil {
		s.log.Warn("discord relay failed", "err", err)
		writeError(w, http.StatusBadGateway, "failed to deliver notification")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
