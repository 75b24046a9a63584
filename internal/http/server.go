// Package http exposes the JSON API under /api/v1, plus health and
// metrics endpoints.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/singleflight"

	"karkhana/internal/cache"
	"karkhana/internal/finance"
	"karkhana/internal/services"
	"karkhana/internal/storage"
)

type Server struct {
	http.Server
	repo   *storage.SQLiteRepository
	ledger *services.LedgerService

	// Dashboard summaries are cached per month and recomputed at most
	// once concurrently; every mutation purges the cache.
	summaryCache *cache.LRUCache[finance.Summary]
	summaryGroup singleflight.Group

	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

type Options struct {
	Addr              string
	DashboardCacheTTL time.Duration
}

func NewServer(opts Options, repo *storage.SQLiteRepository, ledger *services.LedgerService) *Server {
	if opts.DashboardCacheTTL <= 0 {
		opts.DashboardCacheTTL = 60 * time.Second
	}

	s := &Server{
		repo:         repo,
		ledger:       ledger,
		summaryCache: cache.NewLRUCache[finance.Summary](24, opts.DashboardCacheTTL),
		rateLimiter:  newRateLimiter(120),
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(securityHeaders)
	r.Use(requestLogger)
	r.Use(metricsMiddleware)
	r.Use(s.rateLimiter.middleware)

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/wallets", func(r chi.Router) {
			r.Get("/", s.handleListWallets)
			r.Post("/", s.handleCreateWallet)
			r.Get("/{id}", s.handleGetWallet)
			r.Put("/{id}", s.handleUpdateWallet)
			r.Delete("/{id}", s.handleDeleteWallet)
			r.Post("/reconcile", s.handleReconcileAllWallets)
			r.Post("/{id}/reconcile", s.handleReconcileWallet)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.handleListTransactions)
			r.Post("/", s.handleCreateTransaction)
			r.Get("/{id}", s.handleGetTransaction)
			r.Put("/{id}", s.handleUpdateTransaction)
			r.Delete("/{id}", s.handleDeleteTransaction)
		})

		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", s.handleListContacts)
			r.Post("/", s.handleCreateContact)
			r.Get("/{id}", s.handleGetContact)
			r.Put("/{id}", s.handleUpdateContact)
			r.Delete("/{id}", s.handleDeleteContact)
			r.Get("/{id}/balance", s.handleContactBalance)
			r.Get("/{id}/transactions", s.handleContactTransactions)
			r.Post("/{id}/settle", s.handleSettleContact)
		})

		r.Route("/staff", func(r chi.Router) {
			r.Get("/", s.handleListStaff)
			r.Post("/", s.handleCreateStaff)
			r.Get("/{id}", s.handleGetStaff)
			r.Put("/{id}", s.handleUpdateStaff)
			r.Delete("/{id}", s.handleDeleteStaff)
			r.Put("/{id}/attendance", s.handleMarkAttendance)
			r.Get("/{id}/attendance", s.handleListAttendance)
			r.Post("/{id}/advances", s.handleCreateAdvance)
			r.Get("/{id}/advances", s.handleListAdvances)
			r.Get("/{id}/payroll", s.handlePayroll)
		})

		r.Route("/estimates", func(r chi.Router) { s.documentRoutes(r, storage.DocEstimate) })
		r.Route("/measurements", func(r chi.Router) { s.documentRoutes(r, storage.DocMeasurement) })
		r.Route("/bills", func(r chi.Router) {
			s.documentRoutes(r, storage.DocBill)
			r.Put("/{id}/status", s.handleUpdateBillStatus)
		})

		r.Route("/suppliers", func(r chi.Router) {
			r.Get("/", s.handleListSuppliers)
			r.Post("/", s.handleCreateSupplier)
			r.Put("/{id}", s.handleUpdateSupplier)
			r.Delete("/{id}", s.handleDeleteSupplier)
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", s.handleListInventory)
			r.Post("/", s.handleCreateInventoryItem)
			r.Put("/{id}", s.handleUpdateInventoryItem)
			r.Delete("/{id}", s.handleDeleteInventoryItem)
		})

		r.Route("/purchases", func(r chi.Router) {
			r.Get("/", s.handleListPurchases)
			r.Post("/", s.handleCreatePurchase)
			r.Get("/{id}", s.handleGetPurchase)
		})

		r.Route("/shopping-list", func(r chi.Router) {
			r.Get("/", s.handleListShoppingItems)
			r.Post("/", s.handleAddShoppingItem)
			r.Put("/{id}/done", s.handleSetShoppingItemDone)
			r.Delete("/{id}", s.handleDeleteShoppingItem)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.handleListCategories)
			r.Post("/", s.handleCreateCategory)
			r.Delete("/{id}", s.handleDeleteCategory)
		})

		r.Route("/budgets", func(r chi.Router) {
			r.Get("/", s.handleListBudgets)
			r.Put("/", s.handleSetBudget)
			r.Delete("/{id}", s.handleDeleteBudget)
		})

		r.Get("/dashboard/financials", s.handleDashboardFinancials)
	})

	s.Server = http.Server{
		Addr:    opts.Addr,
		Handler: r,
	}
	return s
}

func (s *Server) documentRoutes(r chi.Router, kind storage.DocKind) {
	r.Get("/", s.handleListDocuments(kind))
	r.Post("/", s.handleCreateDocument(kind))
	r.Get("/{id}", s.handleGetDocument(kind))
	r.Put("/{id}", s.handleUpdateDocument(kind))
	r.Delete("/{id}", s.handleDeleteDocument(kind))
}

// invalidateSummaries drops cached dashboard summaries after any mutation
// that can change the financial picture.
func (s *Server) invalidateSummaries() {
	s.summaryCache.Purge()
}

func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.repo.ListWallets(r.Context()); err != nil {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
