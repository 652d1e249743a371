package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/GlebRadaev/creator-ledger/docs"
	adminhandlers "github.com/GlebRadaev/creator-ledger/internal/handlers/admin"
	callbackhandlers "github.com/GlebRadaev/creator-ledger/internal/handlers/callbacks"
	creatorhandlers "github.com/GlebRadaev/creator-ledger/internal/handlers/creator"
	"github.com/GlebRadaev/creator-ledger/internal/observability"
	"github.com/GlebRadaev/creator-ledger/internal/service"
	"github.com/GlebRadaev/creator-ledger/pkg/auth"
	"github.com/GlebRadaev/creator-ledger/pkg/signature"
)

const requestTimeout = 30 * time.Second

type CreatorHandler interface {
	GetBalance(w http.ResponseWriter, r *http.Request)
	CreatePayout(w http.ResponseWriter, r *http.Request)
	ListPayouts(w http.ResponseWriter, r *http.Request)
	GetPayout(w http.ResponseWriter, r *http.Request)
	CancelPayout(w http.ResponseWriter, r *http.Request)
}

type AdminHandler interface {
	ListPayouts(w http.ResponseWriter, r *http.Request)
	History(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Process(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
	GetCreatorBalance(w http.ResponseWriter, r *http.Request)
	SetPayoutStatus(w http.ResponseWriter, r *http.Request)
	ReleaseHolds(w http.ResponseWriter, r *http.Request)
	Reconcile(w http.ResponseWriter, r *http.Request)
	Repair(w http.ResponseWriter, r *http.Request)
}

type CallbackHandler interface {
	PurchaseCompleted(w http.ResponseWriter, r *http.Request)
	CreatorRegistered(w http.ResponseWriter, r *http.Request)
	CompletePayout(w http.ResponseWriter, r *http.Request)
	FailPayout(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	CreatorHandler  CreatorHandler
	AdminHandler    AdminHandler
	CallbackHandler CallbackHandler

	jwtService    auth.JWTServiceInterface
	webhookSecret string
	rateLimit     int
}

func New(s *service.Services, jwtService auth.JWTServiceInterface, webhookSecret string, rateLimit int) *Handlers {
	return &Handlers{
		CreatorHandler:  creatorhandlers.New(s.BalanceService, s.PayoutService),
		AdminHandler:    adminhandlers.New(s.BalanceService, s.PayoutService, s.ExecutorService, s.ReleaseService, s.ReconcileService),
		CallbackHandler: callbackhandlers.New(s.AccrualService, s.BalanceService, s.ExecutorService),
		jwtService:      jwtService,
		webhookSecret:   webhookSecret,
		rateLimit:       rateLimit,
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(requestTimeout),
		observability.Middleware,
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	r.Handle("/metrics", observability.Handler())

	r.Route("/api/creator", func(r chi.Router) {
		r.Use(auth.Middleware(h.jwtService), auth.RequireRole(auth.RoleCreator))
		r.Get("/balance", h.CreatorHandler.GetBalance)
		r.Route("/payouts", func(r chi.Router) {
			r.With(h.payoutRateLimit()).Post("/", h.CreatorHandler.CreatePayout)
			r.Get("/", h.CreatorHandler.ListPayouts)
			r.Get("/{id}", h.CreatorHandler.GetPayout)
			r.Post("/{id}/cancel", h.CreatorHandler.CancelPayout)
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(auth.Middleware(h.jwtService), auth.RequireRole(auth.RoleAdmin))
		r.Route("/payouts", func(r chi.Router) {
			r.Get("/", h.AdminHandler.ListPayouts)
			r.Get("/{id}/history", h.AdminHandler.History)
			r.Post("/{id}/approve", h.AdminHandler.Approve)
			r.Post("/{id}/reject", h.AdminHandler.Reject)
			r.Post("/{id}/process", h.AdminHandler.Process)
			r.Post("/{id}/cancel", h.AdminHandler.Cancel)
		})
		r.Route("/creators/{creatorID}", func(r chi.Router) {
			r.Get("/balance", h.AdminHandler.GetCreatorBalance)
			r.Put("/payout-status", h.AdminHandler.SetPayoutStatus)
		})
		r.Post("/holds/release", h.AdminHandler.ReleaseHolds)
		r.Post("/reconciliation", h.AdminHandler.Reconcile)
		r.Post("/reconciliation/{creatorID}/repair", h.AdminHandler.Repair)
	})

	r.Group(func(r chi.Router) {
		r.Use(signature.Middleware(h.webhookSecret))
		r.Post("/api/internal/purchases/completed", h.CallbackHandler.PurchaseCompleted)
		r.Post("/api/internal/creators", h.CallbackHandler.CreatorRegistered)
		r.Post("/api/provider/payouts/{id}/complete", h.CallbackHandler.CompletePayout)
		r.Post("/api/provider/payouts/{id}/fail", h.CallbackHandler.FailPayout)
	})

	return r
}

// payoutRateLimit throttles payout creation per creator, falling back to the client IP.
func (h *Handlers) payoutRateLimit() func(http.Handler) http.Handler {
	return httprate.Limit(h.rateLimit, time.Minute, httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
		if id, _, ok := auth.FromContext(r.Context()); ok {
			return id.String(), nil
		}
		return httprate.KeyByIP(r)
	}))
}
