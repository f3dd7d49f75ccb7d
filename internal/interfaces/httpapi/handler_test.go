package httpapi

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/riskibarqy/scoreboard-wall/internal/domain/favorite"
	"github.com/riskibarqy/scoreboard-wall/internal/domain/feed"
	"github.com/riskibarqy/scoreboard-wall/internal/domain/game"
	"github.com/riskibarqy/scoreboard-wall/internal/domain/league"
	"github.com/riskibarqy/scoreboard-wall/internal/domain/snapshot"
	"github.com/riskibarqy/scoreboard-wall/internal/platform/logging"
	"github.com/riskibarqy/scoreboard-wall/internal/platform/metrics"
	"github.com/riskibarqy/scoreboard-wall/internal/platform/resilience"
	"github.com/riskibarqy/scoreboard-wall/internal/usecase"
	"github.com/stretchr/testify/require"
)

type stubReader struct {
	snap   snapshot.Snapshot
	status usecase.PublisherStatus
}

func (s stubReader) Snapshot() snapshot.Snapshot     { return s.snap }
func (s stubReader) Status() usecase.PublisherStatus { return s.status }

type stubBreakers map[string]resilience.CircuitState

func (s stubBreakers) BreakerStates() map[string]resilience.CircuitState { return s }

var publishedAt = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func testGame(id string, category league.Category, state game.State, home, away string) game.Game {
	return game.Game{
		ID:       id,
		Category: category,
		League:   "nfl",
		Status:   game.Status{State: state},
		Competitors: []game.Competitor{
			{Team: game.Team{Abbreviation: home}, HomeAway: game.SideHome},
			{Team: game.Team{Abbreviation: away}, HomeAway: game.SideAway},
		},
	}
}

func publishedReader() stubReader {
	return stubReader{
		snap: snapshot.Snapshot{
			ID:          "snap-1",
			GeneratedAt: publishedAt,
			Games: []game.Game{
				testGame("1", league.CategoryNFL, game.StateIn, "KC", "DEN"),
				testGame("2", league.CategoryNBA, game.StateIn, "LAL", "GS"),
				testGame("3", league.CategoryNFL, game.StatePre, "DAL", "NYG"),
			},
			News: []feed.Article{{Headline: "Trade deadline", Category: league.CategoryNBA}},
		},
		status: usecase.PublisherStatus{LastSuccess: publishedAt, Interval: "1m0s"},
	}
}

func newTestRouter(reader SnapshotReader, health *metrics.FeedHealth, breakers BreakerReporter) http.Handler {
	handler := NewHandler(reader, league.DefaultRegistry(), favorite.NewSet(favorite.Defaults()), health, breakers, logging.NewNop())
	return NewRouter(handler, logging.NewNop(), []string{"*"}, metrics.NewRecorder().Handler())
}

func serve(t *testing.T, router http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestGetSnapshot_BeforeFirstPublish(t *testing.T) {
	t.Parallel()

	router := newTestRouter(stubReader{snap: snapshot.Empty()}, nil, nil)
	rec := serve(t, router, "/v1/snapshot")
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeBody(t, rec)["data"].(map[string]any)
	require.Equal(t, []any{}, data["games"])
	require.Equal(t, []any{}, data["news"])
	require.NotContains(t, data, "generatedAt")
}

func TestGetSnapshot_MarksFavorites(t *testing.T) {
	t.Parallel()

	rec := serve(t, newTestRouter(publishedReader(), nil, nil), "/v1/snapshot")
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeBody(t, rec)["data"].(map[string]any)
	require.Equal(t, "snap-1", data["id"])
	games := data["games"].([]any)
	require.Len(t, games, 3)
	require.Equal(t, true, games[0].(map[string]any)["favorite"])
	require.Equal(t, false, games[1].(map[string]any)["favorite"])
}

func TestListGames_FiltersKeepOrder(t *testing.T) {
	t.Parallel()

	router := newTestRouter(publishedReader(), nil, nil)

	rec := serve(t, router, "/v1/games?category=nfl")
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]any)
	require.EqualValues(t, 2, data["count"])
	items := data["items"].([]any)
	require.Equal(t, "1", items[0].(map[string]any)["id"])
	require.Equal(t, "3", items[1].(map[string]any)["id"])

	rec = serve(t, router, "/v1/games?state=in&limit=1")
	data = decodeBody(t, rec)["data"].(map[string]any)
	require.EqualValues(t, 1, data["count"])

	rec = serve(t, router, "/v1/games?favorite=true")
	data = decodeBody(t, rec)["data"].(map[string]any)
	require.EqualValues(t, 1, data["count"])
}

func TestListGames_RejectsBadQuery(t *testing.T) {
	t.Parallel()

	router := newTestRouter(publishedReader(), nil, nil)
	for _, target := range []string{
		"/v1/games?state=halftime",
		"/v1/games?category=CRICKET",
		"/v1/games?limit=abc",
		"/v1/games?limit=9000",
		"/v1/games?favorite=maybe",
	} {
		rec := serve(t, router, target)
		require.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestAuxFeeds_ReturnListEnvelope(t *testing.T) {
	t.Parallel()

	router := newTestRouter(publishedReader(), nil, nil)

	data := decodeBody(t, serve(t, router, "/v1/news"))["data"].(map[string]any)
	require.EqualValues(t, 1, data["count"])

	for _, target := range []string{"/v1/transactions", "/v1/injuries"} {
		data := decodeBody(t, serve(t, router, target))["data"].(map[string]any)
		require.EqualValues(t, 0, data["count"], target)
		require.Equal(t, []any{}, data["items"], target)
	}
}

func TestReadyz(t *testing.T) {
	t.Parallel()

	rec := serve(t, newTestRouter(stubReader{snap: snapshot.Empty()}, nil, nil), "/readyz")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serve(t, newTestRouter(publishedReader(), nil, nil), "/readyz")
	require.Equal(t, http.StatusOK, rec.Code)

	failing := publishedReader()
	failing.status.ConsecutiveFailures = 3
	failing.status.LastError = "upstream down"
	rec = serve(t, newTestRouter(failing, nil, nil), "/readyz")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), "upstream down")
}

func TestGetStatus_IncludesFeedHealthAndBreakers(t *testing.T) {
	t.Parallel()

	health := metrics.NewFeedHealth()
	health.RecordFailure("scoreboard", "hockey/nhl", errors.New("503"))
	breakers := stubBreakers{"scoreboard:hockey/nhl": resilience.CircuitStateOpen}

	rec := serve(t, newTestRouter(publishedReader(), health, breakers), "/v1/status")
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeBody(t, rec)["data"].(map[string]any)
	require.Equal(t, true, data["ready"])
	require.Len(t, data["feeds"].([]any), 1)
	require.Equal(t, "open", data["breakers"].(map[string]any)["scoreboard:hockey/nhl"])
}

func TestLeagues(t *testing.T) {
	t.Parallel()

	router := newTestRouter(publishedReader(), nil, nil)

	data := decodeBody(t, serve(t, router, "/v1/leagues"))["data"].([]any)
	require.Len(t, data, league.DefaultRegistry().Len())
	first := data[0].(map[string]any)
	require.Equal(t, "football/nfl", first["key"])
	require.Equal(t, "168h0m0s", first["window"].(map[string]any)["lookahead"])

	rec := serve(t, router, "/v1/leagues/hockey/nhl")
	require.Equal(t, http.StatusOK, rec.Code)
	window := decodeBody(t, rec)["data"].(map[string]any)["window"].(map[string]any)
	require.Equal(t, "today", window["lookahead"])

	rec = serve(t, router, "/v1/leagues/hockey/khl")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthzAndMetrics(t *testing.T) {
	t.Parallel()

	router := newTestRouter(publishedReader(), nil, nil)
	require.Equal(t, http.StatusOK, serve(t, router, "/healthz").Code)

	rec := serve(t, router, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRecoverPanic_WritesInternalError(t *testing.T) {
	t.Parallel()

	handler := recoverPanic(logging.NewNop(), http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/snapshot", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
