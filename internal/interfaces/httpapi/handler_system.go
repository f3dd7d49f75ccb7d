package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/scoreboard-wall/internal/platform/metrics"
	"github.com/riskibarqy/scoreboard-wall/internal/platform/resilience"
	"github.com/riskibarqy/scoreboard-wall/internal/usecase"
)

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeSuccess(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz reports 503 until the first snapshot is published, and again once the refresh
// loop keeps failing.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := h.snapshots.Status()
	if !status.IsReady() {
		reason := "no snapshot published yet"
		if status.ConsecutiveFailures > 0 {
			reason = fmt.Sprintf("%d consecutive refresh failures: %s", status.ConsecutiveFailures, status.LastError)
		}
		writeError(ctx, w, fmt.Errorf("%w: %s", usecase.ErrSnapshotUnavailable, reason))
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetStatus")
	defer span.End()

	status := h.snapshots.Status()
	breakers := map[string]resilience.CircuitState{}
	if h.breakers != nil {
		breakers = h.breakers.BreakerStates()
	}
	feeds := h.feedHealth.Snapshot()
	if feeds == nil {
		feeds = []metrics.FeedStatus{}
	}

	writeSuccess(ctx, w, http.StatusOK, statusDTO{
		Ready:     status.IsReady(),
		IsLoading: h.snapshots.Snapshot().IsLoading,
		Publisher: status,
		Feeds:     feeds,
		Breakers:  breakers,
	})
}

func (h *Handler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagues")
	defer span.End()

	specs := h.registry.Leagues()
	items := make([]leagueDTO, 0, len(specs))
	for _, spec := range specs {
		items = append(items, leagueToDTO(spec, h.registry.WindowFor(spec.Category)))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeague")
	defer span.End()

	sport := strings.TrimSpace(r.PathValue("sport"))
	key := strings.TrimSpace(r.PathValue("league"))
	spec, ok := h.registry.Lookup(sport, key)
	if !ok {
		h.logger.DebugContext(ctx, "league lookup missed", "sport", sport, "league", key)
		writeError(ctx, w, fmt.Errorf("%w: league %s/%s", usecase.ErrNotFound, sport, key))
		return
	}
	writeSuccess(ctx, w, http.StatusOK, leagueToDTO(spec, h.registry.WindowFor(spec.Category)))
}

func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFavorites")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.favorites.Teams())
}
