package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/smarttoll/backend/internal/middleware"
	"github.com/smarttoll/backend/internal/models"
	"github.com/smarttoll/backend/internal/services"
)

// WalletService is the wallet surface the HTTP layer depends on.
type WalletService interface {
	RechargeWallet(ctx context.Context, accountID int64, amount models.Amount) (models.Amount, error)
	WalletStatement(ctx context.Context, accountID int64, limit int) (*services.WalletStatement, error)
	AccountSummary(ctx context.Context, accountID int64) (*models.AccountSummary, error)
}

type WalletHandler struct {
	service   WalletService
	validator *services.ValidationHelper
}

func NewWalletHandler(service WalletService) *WalletHandler {
	return &WalletHandler{
		service:   service,
		validator: services.NewValidationHelper(),
	}
}

type RechargeRequest struct {
	Amount models.Amount `json:"amount" validate:"required,gt=0" swaggertype:"string" example:"200.00"`
}

type RechargeResponse struct {
	AccountID int64         `json:"account_id"`
	Balance   models.Amount `json:"balance" swaggertype:"string"`
}

// accountAccess allows admins and operators on every account and users on their own.
func accountAccess(w http.ResponseWriter, r *http.Request, accountID int64) bool {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		return true
	}
	if claims.Role == models.RoleUser && claims.UserID != accountID {
		services.SendErrorResponse(w, "Insufficient permissions", http.StatusForbidden, nil)
		return false
	}
	return true
}

// Recharge adds funds to an account's wallet
// @Summary Recharge wallet
// @Description Credit the wallet of an account, creating it on first recharge
// @Tags wallets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param accountId path int true "Account ID"
// @Param request body RechargeRequest true "Recharge amount"
// @Success 200 {object} RechargeResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /wallets/{accountId}/recharge [post]
func (h *WalletHandler) Recharge(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathID(w, chi.URLParam(r, "accountId"), "account id")
	if !ok || !accountAccess(w, r, accountID) {
		return
	}

	var req RechargeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	balance, err := h.service.RechargeWallet(r.Context(), accountID, req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RechargeResponse{AccountID: accountID, Balance: balance})
}

// GetWallet returns the wallet balance with its recent ledger entries
// @Summary Wallet statement
// @Tags wallets
// @Produce json
// @Security BearerAuth
// @Param accountId path int true "Account ID"
// @Param limit query int false "Maximum entries (default 50, max 500)"
// @Success 200 {object} services.WalletStatement
// @Failure 404 {object} services.ErrorResponse
// @Router /wallets/{accountId} [get]
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathID(w, chi.URLParam(r, "accountId"), "account id")
	if !ok || !accountAccess(w, r, accountID) {
		return
	}

	statement, err := h.service.WalletStatement(r.Context(), accountID, queryLimit(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statement)
}

// AccountSummary totals an account's toll activity
// @Summary Account toll summary
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Param accountId path int true "Account ID"
// @Success 200 {object} models.AccountSummary
// @Router /accounts/{accountId}/summary [get]
func (h *WalletHandler) AccountSummary(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathID(w, chi.URLParam(r, "accountId"), "account id")
	if !ok || !accountAccess(w, r, accountID) {
		return
	}

	summary, err := h.service.AccountSummary(r.Context(), accountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
