// Package metrics registers the Prometheus instruments exposed on
// /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "karkhana_http_request_duration_seconds",
		Help:    "HTTP request latency by route, method, and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method", "status"})

	TransactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "karkhana_transactions_total",
		Help: "Ledger transactions created, by type.",
	}, []string{"type"})

	ReconcilesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "karkhana_wallet_reconciles_total",
		Help: "Wallet balance rebuilds performed.",
	})

	DriftRepairedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "karkhana_wallet_drift_repaired_total",
		Help: "Wallet reconciles that found and repaired a nonzero drift.",
	})

	DashboardCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "karkhana_dashboard_cache_requests_total",
		Help: "Dashboard summary lookups, by cache outcome.",
	}, []string{"outcome"})

	ReconcileMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "karkhana_reconcile_messages_total",
		Help: "Wallet-dirty messages handled by the worker, by result.",
	}, []string{"result"})
)
