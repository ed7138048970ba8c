package api

import (
	"context"
	"net/http"

	"wallet-staking-go/internal/engine"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Service exposes the engine's operation surface over HTTP. Update endpoints
// are session-gated unless auth is disabled for local development.
type Service struct {
	engine      *engine.Engine
	requireAuth bool
}

func NewService(e *engine.Engine, requireAuth bool) *Service {
	return &Service{engine: e, requireAuth: requireAuth}
}

// Router builds the HTTP routing table.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/wallet/connect", s.handleConnectWallet)
		r.Get("/wallet/{address}/status", s.handleWalletStatus)

		r.Post("/auth/web3", s.handleAuthenticate)
		r.Post("/auth/logout", s.handleLogout)

		r.Route("/users/{address}", func(r chi.Router) {
			r.Get("/balance", s.handleBalance)
			r.Get("/pools", s.handlePools)
			r.Get("/achievements", s.handleAchievements)
			r.Get("/transactions", s.handleTransactions)

			r.Group(func(r chi.Router) {
				r.Use(s.requireSession)
				r.Post("/deposit", s.handleDeposit)
				r.Post("/withdraw", s.handleWithdraw)
				r.Post("/exchange", s.handleExchange)
				r.Post("/stake", s.handleStake)
				r.Post("/stake/{poolID}/claim", s.handleClaim)
			})
		})
	})

	return r
}

func (s *Service) HealthCheck(_ context.Context) error {
	// The engine is in-process; being able to read settings means the state
	// store is live.
	_ = s.engine.Settings()
	return nil
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.HealthCheck(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
