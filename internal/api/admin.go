package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/socialoura/spotyz/internal/models"
	"github.com/socialoura/spotyz/internal/service"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	token, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.log.Info("admin login", "username", req.Username)
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handlePutPricing(w http.ResponseWriter, r *http.Request) {
	var doc models.PricingDocument
	if err := decodeJSON(w, r, &doc); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.pricing.Replace(r.Context(), doc); err != nil {
		s.fail(w, r, err)
		return
	}
	s.log.Info("pricing replaced", "admin", adminFrom(r.Context()).Username)
	writeJSON(w, http.StatusOK, s.pricing.Get(r.Context()))
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	from, to, err := dayRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	orders, err := s.orders.List(r.Context(), models.OrderFilter{From: from, To: to})
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(orders, newOrderView))
}

type updateOrderRequest struct {
	OrderStatus *models.OrderStatus `json:"order_status"`
	Notes       *string             `json:"notes"`
}

func (s *Server) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req updateOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	order, err := s.orders.Update(r.Context(), id, models.OrderUpdate{OrderStatus: req.OrderStatus, Notes: req.Notes})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newOrderView(*order))
}

func (s *Server) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.orders.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleExportOrders(w http.ResponseWriter, r *http.Request) {
	from, to, err := dayRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	export, err := s.exports.Orders(r.Context(), models.OrderFilter{From: from, To: to})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if export.URL != "" {
		writeJSON(w, http.StatusOK, map[string]string{"url": export.URL, "fileName": export.FileName})
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(export.Data)
}

type promoRequest struct {
	Code          string              `json:"code"`
	DiscountType  models.DiscountType `json:"discount_type"`
	DiscountValue decimal.Decimal     `json:"discount_value"`
	MaxUses       *int                `json:"max_uses"`
	ExpiresAt     *string             `json:"expires_at"`
	IsActive      *bool               `json:"is_active"`
}

func (req promoRequest) input() (service.PromoInput, error) {
	input := service.PromoInput{
		Code:          req.Code,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		MaxUses:       req.MaxUses,
		IsActive:      req.IsActive,
	}
	if req.ExpiresAt != nil && *req.ExpiresAt != "" {
		t, err := parseExpiry(*req.ExpiresAt)
		if err != nil {
			return input, err
		}
		input.ExpiresAt = &t
	}
	return input, nil
}

func (s *Server) handleListPromos(w http.ResponseWriter, r *http.Request) {
	promos, err := s.promos.List(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(promos, newPromoView))
}

func (s *Server) handleCreatePromo(w http.ResponseWriter, r *http.Request) {
	var req promoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	input, err := req.input()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	promo, err := s.promos.Create(r.Context(), input)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newPromoView(*promo))
}

func (s *Server) handleUpdatePromo(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req promoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	input, err := req.input()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	promo, err := s.promos.Update(r.Context(), id, input)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPromoView(*promo))
}

func (s *Server) handleTogglePromo(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	promo, err := s.promos.Toggle(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPromoView(*promo))
}

func (s *Server) handleDeletePromo(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.promos.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	from, to, err := dayRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	expenses, err := s.expenses.List(r.Context(), models.DateRange{From: from, To: to})
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(expenses, newExpenseView))
}

type expenseRequest struct {
	Date     string          `json:"date"`
	Amount   decimal.Decimal `json:"amount"`
	Campaign string          `json:"campaign"`
	Notes    string          `json:"notes"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var date time.Time
	if req.Date != "" {
		parsed, err := parseDay(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		date = parsed
	}
	expense, err := s.expenses.Create(r.Context(), service.ExpenseInput{
		Date:     date,
		Amount:   req.Amount,
		Campaign: req.Campaign,
		Notes:    req.Notes,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newExpenseView(*expense))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.expenses.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleGetStripeSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.settings.Stripe(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

type stripeSettingsRequest struct {
	SecretKey      *string `json:"secretKey"`
	PublishableKey *string `json:"publishableKey"`
}

func (s *Server) handlePutStripeSettings(w http.ResponseWriter, r *http.Request) {
	var req stripeSettingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	settings, err := s.settings.UpdateStripe(r.Context(), service.StripeSettingsInput{
		SecretKey:      req.SecretKey,
		PublishableKey: req.PublishableKey,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.log.Info("stripe settings updated", "admin", adminFrom(r.Context()).Username)
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	from, to, err := dayRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	report, err := s.analytics.Report(r.Context(), models.DateRange{From: from, To: to})
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
