package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/scoreboard-wall/internal/domain/favorite"
	"github.com/riskibarqy/scoreboard-wall/internal/domain/feed"
	"github.com/riskibarqy/scoreboard-wall/internal/domain/game"
	"github.com/riskibarqy/scoreboard-wall/internal/domain/league"
	"github.com/riskibarqy/scoreboard-wall/internal/domain/snapshot"
	"github.com/riskibarqy/scoreboard-wall/internal/platform/cache"
	"github.com/riskibarqy/scoreboard-wall/internal/platform/logging"
	"github.com/riskibarqy/scoreboard-wall/internal/platform/metrics"
	"github.com/riskibarqy/scoreboard-wall/internal/platform/resilience"
	"github.com/sourcegraph/conc/panics"
)

const (
	DefaultFetchWorkers = 16
	DefaultAuxFeedLimit = 50

	dropReasonUnparseableStart = "unparseable_start"
	dropReasonOutOfWindow      = "out_of_window"
)

type AggregationConfig struct {
	// Location is the display time zone used for "today". Nil means time.Local.
	Location       *time.Location
	Workers        int
	AuxFeedLimit   int
	InjuryCacheTTL time.Duration
}

// AggregationService runs one fetch-merge-filter-sort cycle over every tracked league.
type AggregationService struct {
	registry  *league.Registry
	provider  FeedProvider
	favorites favorite.Set
	cfg       AggregationConfig
	logger    *logging.Logger
	metrics   *metrics.Recorder
	injuries  *cache.Store[[]feed.InjuryReport]
	now       func() time.Time
}

func NewAggregationService(
	registry *league.Registry,
	provider FeedProvider,
	favorites favorite.Set,
	cfg AggregationConfig,
	logger *logging.Logger,
	recorder *metrics.Recorder,
) *AggregationService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultFetchWorkers
	}
	if cfg.AuxFeedLimit <= 0 {
		cfg.AuxFeedLimit = DefaultAuxFeedLimit
	}

	return &AggregationService{
		registry:  registry,
		provider:  provider,
		favorites: favorites,
		cfg:       cfg,
		logger:    logger.Named("pipeline"),
		metrics:   recorder,
		injuries:  cache.NewStore[[]feed.InjuryReport](cfg.InjuryCacheTTL),
		now:       time.Now,
	}
}

func (s *AggregationService) Registry() *league.Registry {
	return s.registry
}

// leagueResult is one registry slot. Slots are filled by concurrent tasks and read in
// registry order, so completion order never leaks into the output.
type leagueResult struct {
	games        []game.Game
	news         []feed.Article
	transactions []feed.Transaction
	injuries     []feed.InjuryReport
}

// Aggregate runs a cycle at the current wall-clock time.
func (s *AggregationService) Aggregate(ctx context.Context) (snapshot.Snapshot, error) {
	return s.AggregateAt(ctx, s.now())
}

// AggregateAt runs a cycle for the given instant. Upstream failures degrade their slot to
// empty; only cancellation or an internal failure returns an error.
func (s *AggregationService) AggregateAt(ctx context.Context, now time.Time) (snapshot.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AggregationService.Aggregate")
	defer span.End()

	if s.registry == nil || s.provider == nil {
		return snapshot.Snapshot{}, fmt.Errorf("%w: aggregation is not fully configured", ErrDependencyUnavailable)
	}

	day := league.DayOf(now, s.cfg.Location)
	specs := s.registry.Leagues()

	slots, err := s.fanOut(ctx, specs, now, day)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	if err := ctx.Err(); err != nil {
		return snapshot.Snapshot{}, crerr.Wrap(err, "aggregation cycle cancelled")
	}

	var (
		games        []game.Game
		news         []feed.Article
		transactions []feed.Transaction
		injuries     []feed.InjuryReport
	)
	for _, slot := range slots {
		games = append(games, slot.games...)
		news = append(news, slot.news...)
		transactions = append(transactions, slot.transactions...)
		injuries = append(injuries, slot.injuries...)
	}

	games = dedupGames(games)
	games = s.filterWindow(ctx, games, now, day)
	s.sortGames(games)

	return snapshot.Snapshot{
		GeneratedAt:  now,
		Games:        games,
		News:         capItems(news, s.cfg.AuxFeedLimit),
		Transactions: capItems(transactions, s.cfg.AuxFeedLimit),
		Injuries:     capItems(injuries, s.cfg.AuxFeedLimit),
	}, nil
}

func (s *AggregationService) fanOut(ctx context.Context, specs []league.Spec, now time.Time, day league.Day) ([]leagueResult, error) {
	slots := make([]leagueResult, len(specs))

	tasks := make([]func(), 0, len(specs)*(1+len(league.AuxiliaryFeeds)))
	for i, spec := range specs {
		slot := &slots[i]
		window := s.registry.WindowFor(spec.Category)
		query := ScoreboardQuery{
			Limit:  window.FetchLimit,
			Dates:  league.DateRange(day.Start, window.FutureLimit(now, day), s.cfg.Location),
			Groups: window.GroupFilter,
		}

		tasks = append(tasks, func() {
			slot.games = fetchSlice(ctx, s, spec, league.FeedScoreboard, func(ctx context.Context) ([]game.Game, error) {
				return s.provider.FetchScoreboard(ctx, spec, query)
			})
		})
		if spec.Serves(league.FeedNews) {
			tasks = append(tasks, func() {
				slot.news = fetchSlice(ctx, s, spec, league.FeedNews, func(ctx context.Context) ([]feed.Article, error) {
					return s.provider.FetchNews(ctx, spec)
				})
			})
		}
		if spec.Serves(league.FeedTransactions) {
			tasks = append(tasks, func() {
				slot.transactions = fetchSlice(ctx, s, spec, league.FeedTransactions, func(ctx context.Context) ([]feed.Transaction, error) {
					return s.provider.FetchTransactions(ctx, spec)
				})
			})
		}
		if spec.Serves(league.FeedInjuries) {
			tasks = append(tasks, func() {
				slot.injuries = s.fetchInjuries(ctx, spec)
			})
		}
	}

	pool, err := ants.NewPool(min(s.cfg.Workers, len(tasks)))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, task := range tasks {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			task()
		}); err != nil {
			workers.Done()
			workers.Wait()
			return nil, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}
	workers.Wait()

	return slots, nil
}

// fetchSlice is the fault-isolation boundary for one upstream call: errors and panics are
// logged and counted, and the slice degrades to nil for this cycle.
func fetchSlice[T any](
	ctx context.Context,
	s *AggregationService,
	spec league.Spec,
	name league.Feed,
	fetch func(context.Context) ([]T, error),
) []T {
	var (
		items []T
		err   error
	)
	start := time.Now()

	var catcher panics.Catcher
	catcher.Try(func() {
		items, err = fetch(ctx)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		items, err = nil, recovered.AsError()
	}
	elapsed := time.Since(start)

	if err == nil {
		s.metrics.RecordFetch(string(name), spec.Key(), elapsed, metrics.OutcomeSuccess, nil)
		return items
	}
	if ctx.Err() != nil {
		return nil
	}

	outcome := metrics.OutcomeFailure
	if errors.Is(err, resilience.ErrCircuitOpen) {
		outcome = metrics.OutcomeRejected
	}
	s.metrics.RecordFetch(string(name), spec.Key(), elapsed, outcome, err)
	s.logger.WarnContext(ctx, "upstream fetch failed, slice degraded to empty",
		"feed", string(name),
		"league", spec.Key(),
		"category", string(spec.Category),
		"duration", elapsed,
		"error", err,
	)
	return nil
}

// fetchInjuries goes through the auxiliary TTL cache. Failed loads are not cached.
func (s *AggregationService) fetchInjuries(ctx context.Context, spec league.Spec) []feed.InjuryReport {
	load := func(ctx context.Context) ([]feed.InjuryReport, error) {
		return s.provider.FetchInjuries(ctx, spec)
	}
	if !s.injuries.Enabled() {
		return fetchSlice(ctx, s, spec, league.FeedInjuries, load)
	}

	key := spec.Key()
	if cached, ok := s.injuries.Get(ctx, key); ok {
		s.metrics.RecordCacheLookup(true)
		return cached
	}
	s.metrics.RecordCacheLookup(false)
	return fetchSlice(ctx, s, spec, league.FeedInjuries, func(ctx context.Context) ([]feed.InjuryReport, error) {
		return s.injuries.GetOrLoad(ctx, key, load)
	})
}

// dedupGames keeps one entry per id. The last-seen record wins and takes the slot of the
// first occurrence.
func dedupGames(games []game.Game) []game.Game {
	index := make(map[string]int, len(games))
	out := make([]game.Game, 0, len(games))
	for _, g := range games {
		if i, ok := index[g.ID]; ok {
			out[i] = g
			continue
		}
		index[g.ID] = len(out)
		out = append(out, g)
	}
	return out
}

func (s *AggregationService) filterWindow(ctx context.Context, games []game.Game, now time.Time, day league.Day) []game.Game {
	out := make([]game.Game, 0, len(games))
	for _, g := range games {
		if !g.HasStart() {
			start, ok := game.ParseStart(g.RawStart)
			if !ok {
				s.metrics.RecordDroppedGame(dropReasonUnparseableStart)
				s.logger.WarnContext(ctx, "excluding game with unparseable start",
					"game_id", g.ID,
					"league", g.League,
					"raw_start", g.RawStart,
				)
				continue
			}
			g.Start = start
		}

		if !s.inWindow(g, now, day) {
			s.metrics.RecordDroppedGame(dropReasonOutOfWindow)
			continue
		}
		out = append(out, g)
	}
	return out
}

// inWindow keeps finished games only when they started today; everything else must start
// between local midnight and the category's future limit, both inclusive.
func (s *AggregationService) inWindow(g game.Game, now time.Time, day league.Day) bool {
	if g.Status.State.IsFinished() {
		return day.Contains(g.Start)
	}
	limit := s.registry.WindowFor(g.Category).FutureLimit(now, day)
	return !g.Start.Before(day.Start) && !g.Start.After(limit)
}

type rankedGame struct {
	game     game.Game
	priority int
	favorite bool
}

// sortGames orders by state priority, then favorites first, then start time. The sort is
// stable so equal keys keep flatten order.
func (s *AggregationService) sortGames(games []game.Game) {
	ranked := make([]rankedGame, len(games))
	for i, g := range games {
		ranked[i] = rankedGame{
			game:     g,
			priority: g.Status.State.Priority(),
			favorite: s.favorites.IsFavoriteGame(g),
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.priority != b.priority {
			return a.priority < b.priority
		}
		if a.favorite != b.favorite {
			return a.favorite
		}
		return a.game.Start.Before(b.game.Start)
	})

	for i := range ranked {
		games[i] = ranked[i].game
	}
}

func capItems[T any](items []T, limit int) []T {
	if len(items) > limit {
		items = items[:limit]
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}
