package httpapi

import (
	"time"

	"github.com/riskibarqy/scoreboard-wall/internal/domain/favorite"
	"github.com/riskibarqy/scoreboard-wall/internal/domain/feed"
	"github.com/riskibarqy/scoreboard-wall/internal/domain/game"
	"github.com/riskibarqy/scoreboard-wall/internal/domain/league"
	"github.com/riskibarqy/scoreboard-wall/internal/domain/snapshot"
	"github.com/riskibarqy/scoreboard-wall/internal/platform/metrics"
	"github.com/riskibarqy/scoreboard-wall/internal/platform/resilience"
	"github.com/riskibarqy/scoreboard-wall/internal/usecase"
)

type gameDTO struct {
	game.Game
	Favorite bool `json:"favorite"`
}

type snapshotDTO struct {
	ID           string              `json:"id,omitempty"`
	GeneratedAt  *time.Time          `json:"generatedAt,omitempty"`
	IsLoading    bool                `json:"isLoading"`
	Games        []gameDTO           `json:"games"`
	News         []feed.Article      `json:"news"`
	Transactions []feed.Transaction  `json:"transactions"`
	Injuries     []feed.InjuryReport `json:"injuries"`
}

type listDTO[T any] struct {
	GeneratedAt *time.Time `json:"generatedAt,omitempty"`
	IsLoading   bool       `json:"isLoading"`
	Count       int        `json:"count"`
	Items       []T        `json:"items"`
}

type fetchWindowDTO struct {
	Lookahead   string `json:"lookahead"`
	TodayOnly   bool   `json:"todayOnly"`
	FetchLimit  int    `json:"fetchLimit"`
	GroupFilter string `json:"groupFilter,omitempty"`
}

type leagueDTO struct {
	Key       string          `json:"key"`
	SportKey  string          `json:"sportKey"`
	LeagueKey string          `json:"leagueKey"`
	Category  league.Category `json:"category"`
	Feeds     []league.Feed   `json:"feeds"`
	Window    fetchWindowDTO  `json:"window"`
}

type statusDTO struct {
	Ready     bool                               `json:"ready"`
	IsLoading bool                               `json:"isLoading"`
	Publisher usecase.PublisherStatus            `json:"publisher"`
	Feeds     []metrics.FeedStatus               `json:"feeds"`
	Breakers  map[string]resilience.CircuitState `json:"breakers"`
}

func generatedAt(s snapshot.Snapshot) *time.Time {
	if !s.Published() {
		return nil
	}
	at := s.GeneratedAt
	return &at
}

func gamesToDTO(games []game.Game, favorites favorite.Set) []gameDTO {
	out := make([]gameDTO, 0, len(games))
	for _, g := range games {
		out = append(out, gameDTO{Game: g, Favorite: favorites.IsFavoriteGame(g)})
	}
	return out
}

func snapshotToDTO(s snapshot.Snapshot, favorites favorite.Set) snapshotDTO {
	return snapshotDTO{
		ID:           s.ID,
		GeneratedAt:  generatedAt(s),
		IsLoading:    s.IsLoading,
		Games:        gamesToDTO(s.Games, favorites),
		News:         nonNil(s.News),
		Transactions: nonNil(s.Transactions),
		Injuries:     nonNil(s.Injuries),
	}
}

func newListDTO[T any](s snapshot.Snapshot, items []T) listDTO[T] {
	items = nonNil(items)
	return listDTO[T]{
		GeneratedAt: generatedAt(s),
		IsLoading:   s.IsLoading,
		Count:       len(items),
		Items:       items,
	}
}

func leagueToDTO(spec league.Spec, window league.FetchWindow) leagueDTO {
	lookahead := "today"
	if !window.TodayOnly && window.Lookahead > 0 {
		lookahead = window.Lookahead.String()
	}
	return leagueDTO{
		Key:       spec.Key(),
		SportKey:  spec.SportKey,
		LeagueKey: spec.LeagueKey,
		Category:  spec.Category,
		Feeds:     nonNil(spec.Feeds),
		Window: fetchWindowDTO{
			Lookahead:   lookahead,
			TodayOnly:   window.TodayOnly,
			FetchLimit:  window.FetchLimit,
			GroupFilter: window.GroupFilter,
		},
	}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
