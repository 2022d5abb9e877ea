// Package handler содержит HTTP-обработчики API платёжного сервиса.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mvoronin/payment-system/internal/middleware"
	"github.com/mvoronin/payment-system/internal/model"
	"github.com/mvoronin/payment-system/internal/store"
	"github.com/mvoronin/payment-system/internal/validation"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	MakePayment(ctx context.Context, req model.PaymentRequest) (model.PaymentResult, error)
	GetAccount(ctx context.Context, number string) (*model.Account, error)
}

// Handler реализует HTTP-обработчики API платёжного сервиса.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
	}
}

type paymentRequest struct {
	DebtorAccountNumber string          `json:"debtor_account_number"`
	Amount              decimal.Decimal `json:"amount"`
	PaymentScheme       string          `json:"payment_scheme"`
}

type accountResponse struct {
	Number         string          `json:"number"`
	Balance        decimal.Decimal `json:"balance"`
	Status         string          `json:"status"`
	AllowedSchemes model.SchemeSet `json:"allowed_payment_schemes"`
}

type paymentResponse struct {
	Success        bool             `json:"success"`
	UpdatedAccount *accountResponse `json:"updated_account,omitempty"`
}

func newAccountResponse(acc *model.Account) *accountResponse {
	return &accountResponse{
		Number:         acc.Number,
		Balance:        acc.Balance,
		Status:         string(acc.Status),
		AllowedSchemes: acc.AllowedSchemes,
	}
}

// MakePayment принимает запрос на списание и возвращает итог авторизации.
// Отклонённый платёж отдаётся со статусом 402 и телом с success=false.
func (h *Handler) MakePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if !validation.IsValidAccountNumber(req.DebtorAccountNumber) {
		http.Error(w, http.StatusText(http.StatusUnprocessableEntity), http.StatusUnprocessableEntity)
		return
	}

	scheme, ok := model.ParsePaymentScheme(req.PaymentScheme)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnprocessableEntity), http.StatusUnprocessableEntity)
		return
	}

	result, err := h.service.MakePayment(r.Context(), model.PaymentRequest{
		DebtorAccountNumber: req.DebtorAccountNumber,
		Amount:              req.Amount,
		Scheme:              scheme,
	})
	if err != nil {
		h.logger.Error("make payment error", zap.Error(err), zap.String("account", req.DebtorAccountNumber))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resp := paymentResponse{Success: result.Success}
	if result.UpdatedAccount != nil {
		resp.UpdatedAccount = newAccountResponse(result.UpdatedAccount)
	}

	w.Header().Set("Content-Type", "application/json")
	if !result.Success {
		w.WriteHeader(http.StatusPaymentRequired)
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("encode payment response", zap.Error(err))
	}
}

// GetAccount возвращает текущее состояние счёта по номеру.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	if !validation.IsValidAccountNumber(number) {
		http.Error(w, http.StatusText(http.StatusUnprocessableEntity), http.StatusUnprocessableEntity)
		return
	}

	acc, err := h.service.GetAccount(r.Context(), number)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		h.logger.Error("get account error", zap.Error(err), zap.String("account", number))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(newAccountResponse(acc)); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
}
