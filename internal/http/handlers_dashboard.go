package http

import (
	"net/http"

	"karkhana/internal/finance"
	"karkhana/internal/metrics"
)

// handleDashboardFinancials serves the monthly summary. Summaries are
// expensive to build (full ledger snapshot), so they are cached per month
// and concurrent misses for the same month share one computation.
func (s *Server) handleDashboardFinancials(w http.ResponseWriter, r *http.Request) {
	month, ok := monthQuery(w, r)
	if !ok {
		return
	}
	key := month.String()

	if cached, hit := s.summaryCache.Get(key); hit {
		metrics.DashboardCacheHits.WithLabelValues("hit").Inc()
		respondJSON(w, http.StatusOK, toSummaryResponse(cached))
		return
	}
	metrics.DashboardCacheHits.WithLabelValues("miss").Inc()

	v, err, _ := s.summaryGroup.Do(key, func() (any, error) {
		summary, err := s.ledger.MonthlySummary(r.Context(), month)
		if err != nil {
			return nil, err
		}
		s.summaryCache.Set(key, summary)
		return summary, nil
	})
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toSummaryResponse(v.(finance.Summary)))
}
