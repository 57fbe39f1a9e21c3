package handler

import (
	"net/http"

	"roomhub-commerce-api/internal/service"
	"roomhub-commerce-api/pkg/response"
)

// WalletHandler handles coin balance, history and reward claims.
type WalletHandler struct {
	ledger *service.LedgerService
}

// NewWalletHandler creates a new wallet handler.
func NewWalletHandler(ledger *service.LedgerService) *WalletHandler {
	return &WalletHandler{ledger: ledger}
}

// BalanceResponse exposes both the cached counter and the ledger-derived sum.
type BalanceResponse struct {
	Coins   int64 `json:"coins"`
	Derived int64 `json:"derived"`
}

// Balance handles GET /api/v1/wallet
func (h *WalletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	cached, derived, err := h.ledger.Balance(r.Context(), userID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, BalanceResponse{Coins: cached, Derived: derived})
}

// History handles GET /api/v1/wallet/transactions
func (h *WalletHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 20)

	entries, total, err := h.ledger.History(r.Context(), userID, page, limit)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSONWithMeta(w, http.StatusOK, entries, page, limit, total)
}

// RewardResponse is the body returned by a successful reward claim.
type RewardResponse struct {
	Awarded int64 `json:"awarded"`
}

// ClaimDailyLogin handles POST /api/v1/wallet/rewards/daily-login
func (h *WalletHandler) ClaimDailyLogin(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	amount, err := h.ledger.ClaimDailyLogin(r.Context(), userID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, RewardResponse{Awarded: amount})
}

// ClaimRegistration handles POST /api/v1/wallet/rewards/registration
func (h *WalletHandler) ClaimRegistration(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	amount, err := h.ledger.ClaimRegistrationReward(r.Context(), userID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, RewardResponse{Awarded: amount})
}
