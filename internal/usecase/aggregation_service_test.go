package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/scoreboard-wall/internal/domain/favorite"
	"github.com/riskibarqy/scoreboard-wall/internal/domain/feed"
	"github.com/riskibarqy/scoreboard-wall/internal/domain/game"
	"github.com/riskibarqy/scoreboard-wall/internal/domain/league"
	usecasemock "github.com/riskibarqy/scoreboard-wall/internal/mocks/usecase"
	"github.com/riskibarqy/scoreboard-wall/internal/platform/logging"
	"github.com/riskibarqy/scoreboard-wall/internal/platform/metrics"
	"github.com/riskibarqy/scoreboard-wall/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

var (
	nfl   = league.Spec{SportKey: "football", LeagueKey: "nfl", Category: league.CategoryNFL, Feeds: []league.Feed{league.FeedNews}}
	nba   = league.Spec{SportKey: "basketball", LeagueKey: "nba", Category: league.CategoryNBA, Feeds: []league.Feed{league.FeedNews}}
	nhl   = league.Spec{SportKey: "hockey", LeagueKey: "nhl", Category: league.CategoryNHL}
	mlb   = league.Spec{SportKey: "baseball", LeagueKey: "mlb", Category: league.CategoryMLB}
	ncaam = league.Spec{SportKey: "basketball", LeagueKey: "mens-college-basketball", Category: league.CategoryNCAAM}
)

func newRegistry(t *testing.T, specs ...league.Spec) *league.Registry {
	t.Helper()
	if len(specs) == 0 {
		specs = []league.Spec{nfl, nba, nhl, mlb, ncaam}
	}
	r, err := league.NewRegistry(specs, league.DefaultWindows())
	require.NoError(t, err)
	return r
}

func newService(t *testing.T, provider usecase.FeedProvider, favorites favorite.Set, specs ...league.Spec) *usecase.AggregationService {
	t.Helper()
	return usecase.NewAggregationService(
		newRegistry(t, specs...),
		provider,
		favorites,
		usecase.AggregationConfig{Location: time.UTC, Workers: 4},
		logging.NewNop(),
		metrics.NewRecorder(),
	)
}

func mkGame(id string, category league.Category, state game.State, start time.Time, home, away string) game.Game {
	return game.Game{
		ID:       id,
		Category: category,
		RawStart: start.Format(time.RFC3339),
		Start:    start,
		Status:   game.Status{State: state},
		Competitors: []game.Competitor{
			{Team: game.Team{Abbreviation: home}, HomeAway: game.SideHome},
			{Team: game.Team{Abbreviation: away}, HomeAway: game.SideAway},
		},
	}
}

func ids(games []game.Game) []string {
	out := make([]string, 0, len(games))
	for _, g := range games {
		out = append(out, g.ID)
	}
	return out
}

// stubProvider serves canned per-league responses. Delays scramble completion order.
type stubProvider struct {
	games  map[string][]game.Game
	news   map[string][]feed.Article
	errs   map[string]error
	delays map[string]time.Duration

	mu      sync.Mutex
	queries map[string]usecase.ScoreboardQuery
}

func (p *stubProvider) FetchScoreboard(_ context.Context, spec league.Spec, query usecase.ScoreboardQuery) ([]game.Game, error) {
	p.mu.Lock()
	if p.queries == nil {
		p.queries = make(map[string]usecase.ScoreboardQuery)
	}
	p.queries[spec.Key()] = query
	p.mu.Unlock()

	if d := p.delays[spec.Key()]; d > 0 {
		time.Sleep(d)
	}
	if err := p.errs[spec.Key()]; err != nil {
		return nil, err
	}
	return p.games[spec.Key()], nil
}

func (p *stubProvider) FetchNews(_ context.Context, spec league.Spec) ([]feed.Article, error) {
	return p.news[spec.Key()], nil
}

func (p *stubProvider) FetchTransactions(context.Context, league.Spec) ([]feed.Transaction, error) {
	return nil, nil
}

func (p *stubProvider) FetchInjuries(context.Context, league.Spec) ([]feed.InjuryReport, error) {
	return nil, nil
}

func TestAggregate_DedupKeepsLastSeenRecord(t *testing.T) {
	t.Parallel()

	first := mkGame("g1", league.CategoryNFL, game.StatePre, testNow.Add(2*time.Hour), "KC", "DEN")
	first.Name = "first copy"
	second := mkGame("g1", league.CategoryNBA, game.StatePre, testNow.Add(3*time.Hour), "BOS", "MIA")
	second.Name = "second copy"

	provider := &stubProvider{games: map[string][]game.Game{
		nfl.Key(): {first, mkGame("g2", league.CategoryNFL, game.StatePre, testNow.Add(time.Hour), "PHI", "DAL")},
		nba.Key(): {second, mkGame("g3", league.CategoryNBA, game.StatePre, testNow.Add(4*time.Hour), "NY", "LAL")},
		nhl.Key(): {mkGame("g2", league.CategoryNHL, game.StatePre, testNow.Add(time.Hour), "NYR", "BOS")},
	}}

	snap, err := newService(t, provider, favorite.Set{}).AggregateAt(context.Background(), testNow)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"g1", "g2", "g3"}, ids(snap.Games))
	for _, g := range snap.Games {
		switch g.ID {
		case "g1":
			assert.Equal(t, "second copy", g.Name)
			assert.Equal(t, league.CategoryNBA, g.Category)
		case "g2":
			assert.Equal(t, league.CategoryNHL, g.Category)
		}
	}
}

func TestAggregate_FinishedGamesOnlyFromToday(t *testing.T) {
	t.Parallel()

	yesterday := mkGame("yesterday", league.CategoryMLB, game.StatePost, testNow.Add(-16*time.Hour), "NYY", "BOS")
	earlyToday := mkGame("early", league.CategoryMLB, game.StatePost, time.Date(2026, 10, 17, 0, 5, 0, 0, time.UTC), "LAD", "SD")
	lateToday := mkGame("late", league.CategoryMLB, game.State("final"), time.Date(2026, 10, 17, 23, 30, 0, 0, time.UTC), "HOU", "SEA")
	nflLastWeek := mkGame("nfl-old", league.CategoryNFL, game.StatePost, testNow.Add(-24*time.Hour), "KC", "BUF")

	provider := &stubProvider{games: map[string][]game.Game{
		mlb.Key(): {yesterday, earlyToday, lateToday},
		nfl.Key(): {nflLastWeek},
	}}

	snap, err := newService(t, provider, favorite.Set{}).AggregateAt(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, []string{"early", "late"}, ids(snap.Games))
}

func TestAggregate_UpcomingGamesRespectCategoryWindow(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{games: map[string][]game.Game{
		nfl.Key(): {
			mkGame("nfl-6d", league.CategoryNFL, game.StatePre, testNow.Add(6*24*time.Hour), "KC", "LV"),
			mkGame("nfl-8d", league.CategoryNFL, game.StatePre, testNow.Add(8*24*time.Hour), "KC", "LAC"),
			mkGame("nfl-yesterday", league.CategoryNFL, game.StatePre, testNow.Add(-13*time.Hour), "KC", "DEN"),
		},
		mlb.Key(): {
			mkGame("mlb-tonight", league.CategoryMLB, game.StatePre, testNow.Add(6*time.Hour), "NYY", "TOR"),
			mkGame("mlb-tomorrow", league.CategoryMLB, game.StatePre, testNow.Add(14*time.Hour), "NYY", "TB"),
			mkGame("mlb-live", league.CategoryMLB, game.StateIn, testNow.Add(-time.Hour), "LAD", "SF"),
		},
		ncaam.Key(): {
			mkGame("ncaam-2d", league.CategoryNCAAM, game.StatePre, testNow.Add(48*time.Hour), "DUKE", "UNC"),
			mkGame("ncaam-4d", league.CategoryNCAAM, game.StatePre, testNow.Add(96*time.Hour), "KU", "UK"),
		},
	}}

	snap, err := newService(t, provider, favorite.Set{}).AggregateAt(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, []string{"mlb-live", "mlb-tonight", "ncaam-2d", "nfl-6d"}, ids(snap.Games))
}

func TestAggregate_WindowBoundsAreInclusive(t *testing.T) {
	t.Parallel()

	midnight := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	endOfDay := time.Date(2026, 10, 17, 23, 59, 59, int(999*time.Millisecond), time.UTC)
	provider := &stubProvider{games: map[string][]game.Game{
		mlb.Key(): {
			mkGame("at-midnight", league.CategoryMLB, game.StatePre, midnight, "A", "B"),
			mkGame("at-end", league.CategoryMLB, game.StatePre, endOfDay, "C", "D"),
			mkGame("after-end", league.CategoryMLB, game.StatePre, endOfDay.Add(time.Millisecond), "E", "F"),
		},
		nfl.Key(): {
			mkGame("nfl-limit", league.CategoryNFL, game.StatePre, testNow.Add(7*24*time.Hour), "G", "H"),
		},
	}}

	snap, err := newService(t, provider, favorite.Set{}).AggregateAt(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, []string{"at-midnight", "at-end", "nfl-limit"}, ids(snap.Games))
}

func TestAggregate_ExcludesUnparseableStart(t *testing.T) {
	t.Parallel()

	valid := mkGame("ok", league.CategoryNBA, game.StatePre, testNow.Add(time.Hour), "BOS", "MIA")
	rawOnly := game.Game{ID: "raw", Category: league.CategoryNBA, RawStart: testNow.Add(2 * time.Hour).Format("2006-01-02T15:04Z"), Status: game.Status{State: game.StatePre}}
	broken := game.Game{ID: "broken", Category: league.CategoryNBA, RawStart: "TBD", Status: game.Status{State: game.StatePre}}
	missing := game.Game{ID: "missing", Category: league.CategoryNBA, Status: game.Status{State: game.StateIn}}

	provider := &stubProvider{games: map[string][]game.Game{nba.Key(): {valid, rawOnly, broken, missing}}}

	snap, err := newService(t, provider, favorite.Set{}).AggregateAt(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, []string{"ok", "raw"}, ids(snap.Games))
	assert.False(t, snap.Games[1].Start.IsZero())
}

func TestAggregate_SortByStateThenFavoriteThenStart(t *testing.T) {
	t.Parallel()

	favorites := favorite.NewSet(map[league.Category][]string{league.CategoryNBA: {"BOS"}})
	provider := &stubProvider{games: map[string][]game.Game{
		nba.Key(): {
			mkGame("final", league.CategoryNBA, game.StatePost, testNow.Add(-3*time.Hour), "BOS", "NY"),
			mkGame("pre-plain-late", league.CategoryNBA, game.StatePre, testNow.Add(9*time.Hour), "DEN", "PHX"),
			mkGame("pre-favorite", league.CategoryNBA, game.StatePre, testNow.Add(7*time.Hour), "MIA", "BOS"),
			mkGame("pre-plain-early", league.CategoryNBA, game.StatePre, testNow.Add(time.Hour), "LAL", "GSW"),
			mkGame("live", league.CategoryNBA, game.StateIn, testNow.Add(-time.Hour), "CHI", "DET"),
		},
	}}

	snap, err := newService(t, provider, favorites).AggregateAt(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, []string{"live", "pre-favorite", "pre-plain-early", "pre-plain-late", "final"}, ids(snap.Games))
}

func TestAggregate_FailedLeagueDegradesToEmpty(t *testing.T) {
	t.Parallel()

	provider := usecasemock.NewFeedProvider(t)
	isNHL := func(spec league.Spec) bool { return spec.LeagueKey == "nhl" }

	provider.
		On("FetchScoreboard", mock.Anything, mock.MatchedBy(isNHL), mock.Anything).
		Return(nil, errors.New("nhl upstream status=503")).
		Once()
	provider.
		On("FetchScoreboard", mock.Anything, mock.MatchedBy(func(spec league.Spec) bool { return !isNHL(spec) }), mock.Anything).
		Return(func(_ context.Context, spec league.Spec, _ usecase.ScoreboardQuery) ([]game.Game, error) {
			return []game.Game{mkGame(spec.LeagueKey+"-1", spec.Category, game.StatePre, testNow.Add(time.Hour), "A", "B")}, nil
		}).
		Twice()

	bare := func(spec league.Spec) league.Spec { spec.Feeds = nil; return spec }
	service := newService(t, provider, favorite.Set{}, bare(nfl), bare(nba), nhl)

	snap, err := service.AggregateAt(context.Background(), testNow)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"nfl-1", "nba-1"}, ids(snap.Games))
}

func TestAggregate_PanickingAdapterIsIsolated(t *testing.T) {
	t.Parallel()

	provider := usecasemock.NewFeedProvider(t)
	provider.
		On("FetchScoreboard", mock.Anything, mock.Anything, mock.Anything).
		Return(func(_ context.Context, spec league.Spec, _ usecase.ScoreboardQuery) ([]game.Game, error) {
			if spec.LeagueKey == "nhl" {
				panic("unexpected payload")
			}
			return []game.Game{mkGame(spec.LeagueKey+"-1", spec.Category, game.StatePre, testNow.Add(time.Hour), "A", "B")}, nil
		})

	service := newService(t, provider, favorite.Set{}, nhl, mlb)
	snap, err := service.AggregateAt(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, []string{"mlb-1"}, ids(snap.Games))
}

func TestAggregate_AuxiliaryFeedsCappedInFetchOrder(t *testing.T) {
	t.Parallel()

	articles := func(prefix string, n int) []feed.Article {
		out := make([]feed.Article, n)
		for i := range out {
			out[i] = feed.Article{ID: fmt.Sprintf("%s-%d", prefix, i), Headline: "h"}
		}
		return out
	}
	provider := &stubProvider{
		news:   map[string][]feed.Article{nfl.Key(): articles("nfl", 40), nba.Key(): articles("nba", 40)},
		delays: map[string]time.Duration{nfl.Key(): 20 * time.Millisecond},
	}

	snap, err := newService(t, provider, favorite.Set{}).AggregateAt(context.Background(), testNow)
	require.NoError(t, err)
	require.Len(t, snap.News, 50)
	assert.Equal(t, "nfl-0", snap.News[0].ID)
	assert.Equal(t, "nfl-39", snap.News[39].ID)
	assert.Equal(t, "nba-0", snap.News[40].ID)
	assert.Equal(t, "nba-9", snap.News[49].ID)
	assert.Empty(t, snap.Transactions)
	assert.Empty(t, snap.Injuries)
}

func TestAggregate_IdenticalInputsProduceIdenticalOutput(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		games: map[string][]game.Game{
			nfl.Key(): {
				mkGame("a", league.CategoryNFL, game.StatePre, testNow.Add(time.Hour), "KC", "LV"),
				mkGame("b", league.CategoryNFL, game.StatePre, testNow.Add(time.Hour), "DAL", "NYG"),
			},
			nba.Key(): {
				mkGame("c", league.CategoryNBA, game.StatePre, testNow.Add(time.Hour), "BOS", "MIA"),
				mkGame("a", league.CategoryNBA, game.StateIn, testNow, "LAL", "GSW"),
			},
			mlb.Key(): {mkGame("d", league.CategoryMLB, game.StatePost, testNow.Add(-2*time.Hour), "NYY", "BOS")},
		},
		news:   map[string][]feed.Article{nba.Key(): {{ID: "n1"}}, nfl.Key(): {{ID: "n2"}}},
		delays: map[string]time.Duration{nfl.Key(): 15 * time.Millisecond, mlb.Key(): 5 * time.Millisecond},
	}
	service := newService(t, provider, favorite.NewSet(favorite.Defaults()))

	first, err := service.AggregateAt(context.Background(), testNow)
	require.NoError(t, err)
	second, err := service.AggregateAt(context.Background(), testNow)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"a", "c", "b", "d"}, ids(first.Games))
	assert.Equal(t, []string{"n2", "n1"}, []string{first.News[0].ID, first.News[1].ID})
}

func TestAggregate_ScoreboardQueryFollowsFetchWindow(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{}
	_, err := newService(t, provider, favorite.Set{}).AggregateAt(context.Background(), testNow)
	require.NoError(t, err)

	provider.mu.Lock()
	defer provider.mu.Unlock()
	assert.Equal(t, usecase.ScoreboardQuery{Limit: 50, Dates: "20261017-20261024"}, provider.queries[nfl.Key()])
	assert.Equal(t, usecase.ScoreboardQuery{Limit: 250, Dates: "20261017-20261020", Groups: "50"}, provider.queries[ncaam.Key()])
	assert.Equal(t, usecase.ScoreboardQuery{Limit: 50, Dates: "20261017-20261017"}, provider.queries[mlb.Key()])
}

func TestAggregate_InjuriesServedFromCache(t *testing.T) {
	t.Parallel()

	provider := usecasemock.NewFeedProvider(t)
	reports := []feed.InjuryReport{{Category: league.CategoryNFL, Team: "Kansas City Chiefs"}}
	provider.On("FetchScoreboard", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil).Times(3)
	provider.On("FetchInjuries", mock.Anything, mock.Anything).Return(nil, errors.New("boom")).Once()
	provider.On("FetchInjuries", mock.Anything, mock.Anything).Return(reports, nil).Once()

	spec := league.Spec{SportKey: "football", LeagueKey: "nfl", Category: league.CategoryNFL, Feeds: []league.Feed{league.FeedInjuries}}
	registry, err := league.NewRegistry([]league.Spec{spec}, league.DefaultWindows())
	require.NoError(t, err)
	service := usecase.NewAggregationService(registry, provider, favorite.Set{}, usecase.AggregationConfig{
		Location:       time.UTC,
		InjuryCacheTTL: 10 * time.Minute,
	}, logging.NewNop(), nil)

	first, err := service.AggregateAt(context.Background(), testNow)
	require.NoError(t, err)
	assert.Empty(t, first.Injuries)

	for i := 0; i < 2; i++ {
		snap, err := service.AggregateAt(context.Background(), testNow)
		require.NoError(t, err)
		assert.Equal(t, reports, snap.Injuries)
	}
}

func TestAggregate_CancelledContextReturnsError(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newService(t, &stubProvider{}, favorite.Set{}).AggregateAt(ctx, testNow)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
