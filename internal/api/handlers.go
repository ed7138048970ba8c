package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"wallet-staking-go/internal/models"
	"wallet-staking-go/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const sessionHeader = "X-Session-Token"

type connectRequest struct {
	Address    string `json:"address"`
	ChainID    string `json:"chain_id"`
	WalletKind string `json:"wallet_kind"`
}

type authRequest struct {
	Address   string `json:"address"`
	Signature string `json:"signature"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"` // unix seconds
}

type amountRequest struct {
	Amount string `json:"amount"`
}

type exchangeRequest struct {
	Amount string `json:"amount"`
	From   string `json:"from"` // "primary" or "token"
}

type stakeRequest struct {
	Amount       string `json:"amount"`
	DurationDays int    `json:"duration_days"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// requireSession gates update endpoints: the token must be live and bound to
// the wallet address in the URL. Validation slides the session window.
func (s *Service) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.requireAuth {
			next.ServeHTTP(w, r)
			return
		}

		token := r.Header.Get(sessionHeader)
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing session token"})
			return
		}

		sess, err := s.engine.TouchSession(token)
		if err != nil {
			writeError(w, err)
			return
		}
		if sess.WalletAddress != chi.URLParam(r, "address") {
			writeJSON(w, http.StatusForbidden, errorResponse{Error: "session does not match wallet"})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Service) handleConnectWallet(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if !decodeBody(w, r, &req) {
		return
	}

	conn, err := s.engine.ConnectWallet(req.Address, req.ChainID, req.WalletKind)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, conn)
}

func (s *Service) handleWalletStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.WalletStatus(chi.URLParam(r, "address")))
}

func (s *Service) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.engine.AuthenticateWeb3(req.Address, req.Signature, req.Message, time.Unix(req.Timestamp, 0))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Service) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get(sessionHeader)
	if token == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing session token"})
		return
	}
	s.engine.Logout(token)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := s.engine.Balance(chi.URLParam(r, "address"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

func (s *Service) handleDeposit(w http.ResponseWriter, r *http.Request) {
	amount, ok := decodeAmount(w, r)
	if !ok {
		return
	}

	tx, err := s.engine.Deposit(chi.URLParam(r, "address"), amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Service) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	amount, ok := decodeAmount(w, r)
	if !ok {
		return
	}

	tx, err := s.engine.Withdraw(chi.URLParam(r, "address"), amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Service) handleExchange(w http.ResponseWriter, r *http.Request) {
	var req exchangeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid amount"})
		return
	}

	from := models.Currency(req.From)
	if from != models.CurrencyPrimary && from != models.CurrencyToken {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "from must be primary or token"})
		return
	}

	result, err := s.engine.Exchange(chi.URLParam(r, "address"), amount, from)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Service) handleStake(w http.ResponseWriter, r *http.Request) {
	var req stakeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid amount"})
		return
	}

	pool, err := s.engine.Stake(chi.URLParam(r, "address"), amount, req.DurationDays)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pool)
}

func (s *Service) handleClaim(w http.ResponseWriter, r *http.Request) {
	tx, err := s.engine.ClaimStake(chi.URLParam(r, "address"), chi.URLParam(r, "poolID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Service) handlePools(w http.ResponseWriter, r *http.Request) {
	pools, err := s.engine.Pools(chi.URLParam(r, "address"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pools)
}

func (s *Service) handleAchievements(w http.ResponseWriter, r *http.Request) {
	list, err := s.engine.Achievements(chi.URLParam(r, "address"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Service) handleTransactions(w http.ResponseWriter, r *http.Request) {
	history, err := s.engine.TransactionHistory(chi.URLParam(r, "address"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func decodeAmount(w http.ResponseWriter, r *http.Request) (decimal.Decimal, bool) {
	var req amountRequest
	if !decodeBody(w, r, &req) {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid amount"})
		return decimal.Zero, false
	}
	return amount, true
}

// writeError maps the core error taxonomy to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrInvalidAmount),
		errors.Is(err, store.ErrInvalidDuration),
		errors.Is(err, store.ErrStaleRequest):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrInvalidSignature),
		errors.Is(err, store.ErrSessionExpired):
		status = http.StatusUnauthorized
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrPoolNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrInsufficientBalance),
		errors.Is(err, store.ErrPoolNotMatured),
		errors.Is(err, store.ErrAlreadyClaimed):
		status = http.StatusConflict
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("Failed to encode response", zap.Error(err))
	}
}
