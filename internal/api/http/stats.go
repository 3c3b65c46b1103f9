package http

import (
	"net/http"
	"strconv"

	"github.com/traveltalk/server/internal/api/service"
	"github.com/traveltalk/server/pkg/httpx"
	"github.com/traveltalk/server/pkg/slogx"
)

// StatsHandler serves the aggregated admin dashboard numbers.
type StatsHandler struct {
	Stats *service.StatsService
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	st, err := h.Stats.Aggregate(ctx, days)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to aggregate stats", "error", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Database error"})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, st)
}
