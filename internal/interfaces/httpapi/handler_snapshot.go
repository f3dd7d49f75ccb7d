package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/riskibarqy/scoreboard-wall/internal/domain/game"
	"github.com/riskibarqy/scoreboard-wall/internal/domain/league"
	"github.com/riskibarqy/scoreboard-wall/internal/usecase"
)

type listGamesQuery struct {
	Category string `validate:"omitempty,max=16"`
	State    string `validate:"omitempty,oneof=pre in post"`
	League   string `validate:"omitempty,max=64"`
	Favorite bool
	Limit    int `validate:"gte=0,lte=500"`
}

func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSnapshot")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, snapshotToDTO(h.snapshots.Snapshot(), h.favorites))
}

// ListGames filters the published games without changing their order.
func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGames")
	defer span.End()

	query, err := parseListGamesQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, query); err != nil {
		writeError(ctx, w, err)
		return
	}

	category := league.NormalizeCategory(query.Category)
	if query.Category != "" && !h.registry.HasCategory(category) {
		writeError(ctx, w, fmt.Errorf("%w: unknown category %q", usecase.ErrInvalidInput, query.Category))
		return
	}

	snap := h.snapshots.Snapshot()
	games := make([]game.Game, 0, len(snap.Games))
	for _, g := range snap.Games {
		if category != "" && g.Category != category {
			continue
		}
		if query.State != "" && g.Status.State != game.State(query.State) {
			continue
		}
		if query.League != "" && !strings.EqualFold(g.League, query.League) {
			continue
		}
		if query.Favorite && !h.favorites.IsFavoriteGame(g) {
			continue
		}
		games = append(games, g)
		if query.Limit > 0 && len(games) == query.Limit {
			break
		}
	}

	writeSuccess(ctx, w, http.StatusOK, newListDTO(snap, gamesToDTO(games, h.favorites)))
}

func (h *Handler) ListNews(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListNews")
	defer span.End()

	snap := h.snapshots.Snapshot()
	writeSuccess(ctx, w, http.StatusOK, newListDTO(snap, snap.News))
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTransactions")
	defer span.End()

	snap := h.snapshots.Snapshot()
	writeSuccess(ctx, w, http.StatusOK, newListDTO(snap, snap.Transactions))
}

func (h *Handler) ListInjuries(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListInjuries")
	defer span.End()

	snap := h.snapshots.Snapshot()
	writeSuccess(ctx, w, http.StatusOK, newListDTO(snap, snap.Injuries))
}

func parseListGamesQuery(r *http.Request) (listGamesQuery, error) {
	values := r.URL.Query()
	out := listGamesQuery{
		Category: strings.TrimSpace(values.Get("category")),
		State:    strings.ToLower(strings.TrimSpace(values.Get("state"))),
		League:   strings.TrimSpace(values.Get("league")),
	}

	if raw := strings.TrimSpace(values.Get("favorite")); raw != "" {
		favorite, err := strconv.ParseBool(raw)
		if err != nil {
			return listGamesQuery{}, fmt.Errorf("%w: favorite must be a boolean", usecase.ErrInvalidInput)
		}
		out.Favorite = favorite
	}
	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return listGamesQuery{}, fmt.Errorf("%w: limit must be an integer", usecase.ErrInvalidInput)
		}
		out.Limit = limit
	}
	return out, nil
}
