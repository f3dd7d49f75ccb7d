package usecase

import (
	"context"

	"github.com/riskibarqy/scoreboard-wall/internal/domain/feed"
	"github.com/riskibarqy/scoreboard-wall/internal/domain/game"
	"github.com/riskibarqy/scoreboard-wall/internal/domain/league"
)

// ScoreboardQuery carries the per-category fetch window to the scoreboard adapter.
type ScoreboardQuery struct {
	Limit  int
	Dates  string
	Groups string
}

// FeedProvider is the upstream boundary. Implementations return errors; the pipeline turns
// them into empty slices for the cycle.
type FeedProvider interface {
	FetchScoreboard(ctx context.Context, spec league.Spec, query ScoreboardQuery) ([]game.Game, error)
	FetchNews(ctx context.Context, spec league.Spec) ([]feed.Article, error)
	FetchTransactions(ctx context.Context, spec league.Spec) ([]feed.Transaction, error)
	FetchInjuries(ctx context.Context, spec league.Spec) ([]feed.InjuryReport, error)
}
