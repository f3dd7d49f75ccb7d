package league

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	defaultFetchLimit = 50
	collegeFetchLimit = 250
)

// DefaultWindow applies to every category without its own entry: today only.
var DefaultWindow = FetchWindow{TodayOnly: true, FetchLimit: defaultFetchLimit}

// DefaultWindows holds the categories that look past today.
func DefaultWindows() map[Category]FetchWindow {
	return map[Category]FetchWindow{
		CategoryNFL:   {Lookahead: 7 * 24 * time.Hour, FetchLimit: defaultFetchLimit},
		CategoryNCAAF: {Lookahead: 3 * 24 * time.Hour, FetchLimit: collegeFetchLimit, GroupFilter: "80"},
		CategoryNCAAM: {Lookahead: 3 * 24 * time.Hour, FetchLimit: collegeFetchLimit, GroupFilter: "50"},
	}
}

var proFeeds = []Feed{FeedNews, FeedTransactions, FeedInjuries}

// DefaultSpecs is the tracked league list in display order.
func DefaultSpecs() []Spec {
	return []Spec{
		{SportKey: "football", LeagueKey: "nfl", Category: CategoryNFL, Feeds: proFeeds},
		{SportKey: "football", LeagueKey: "college-football", Category: CategoryNCAAF, Feeds: []Feed{FeedNews}},
		{SportKey: "basketball", LeagueKey: "nba", Category: CategoryNBA, Feeds: proFeeds},
		{SportKey: "basketball", LeagueKey: "wnba", Category: CategoryWNBA, Feeds: []Feed{FeedNews, FeedTransactions}},
		{SportKey: "basketball", LeagueKey: "mens-college-basketball", Category: CategoryNCAAM, Feeds: []Feed{FeedNews}},
		{SportKey: "baseball", LeagueKey: "mlb", Category: CategoryMLB, Feeds: proFeeds},
		{SportKey: "hockey", LeagueKey: "nhl", Category: CategoryNHL, Feeds: proFeeds},
		{SportKey: "soccer", LeagueKey: "eng.1", Category: CategorySoccer, Feeds: []Feed{FeedNews}},
		{SportKey: "soccer", LeagueKey: "usa.1", Category: CategorySoccer, Feeds: []Feed{FeedNews}},
		{SportKey: "soccer", LeagueKey: "uefa.champions", Category: CategorySoccer},
	}
}

// Registry is the immutable set of tracked leagues and their fetch windows.
type Registry struct {
	specs   []Spec
	windows map[Category]FetchWindow
}

// NewRegistry validates every spec and window. Duplicate sport/league pairs are rejected.
func NewRegistry(specs []Spec, windows map[Category]FetchWindow) (*Registry, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("league registry requires at least one league")
	}

	validate := validator.New()
	seen := make(map[string]struct{}, len(specs))
	out := make([]Spec, 0, len(specs))
	for i, spec := range specs {
		if err := validate.Struct(spec); err != nil {
			return nil, fmt.Errorf("invalid league spec #%d: %w", i, err)
		}
		if _, ok := seen[spec.Key()]; ok {
			return nil, fmt.Errorf("duplicate league spec %s", spec.Key())
		}
		seen[spec.Key()] = struct{}{}

		spec.Feeds = append([]Feed(nil), spec.Feeds...)
		out = append(out, spec)
	}

	copied := make(map[Category]FetchWindow, len(windows))
	for category, window := range windows {
		if err := validate.Struct(window); err != nil {
			return nil, fmt.Errorf("invalid fetch window for %s: %w", category, err)
		}
		copied[category] = window
	}

	return &Registry{specs: out, windows: copied}, nil
}

// DefaultRegistry panics only if the built-in tables are invalid.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultSpecs(), DefaultWindows())
	if err != nil {
		panic(err)
	}
	return r
}

// Leagues returns a copy of the tracked leagues in registry order.
func (r *Registry) Leagues() []Spec {
	out := make([]Spec, len(r.specs))
	copy(out, r.specs)
	return out
}

func (r *Registry) Len() int {
	return len(r.specs)
}

func (r *Registry) WindowFor(category Category) FetchWindow {
	if window, ok := r.windows[category]; ok {
		return window
	}
	return DefaultWindow
}

func (r *Registry) Lookup(sportKey, leagueKey string) (Spec, bool) {
	for _, spec := range r.specs {
		if spec.SportKey == sportKey && spec.LeagueKey == leagueKey {
			return spec, true
		}
	}
	return Spec{}, false
}

// Categories lists distinct categories in first-seen registry order.
func (r *Registry) Categories() []Category {
	seen := make(map[Category]struct{}, len(r.specs))
	out := make([]Category, 0, len(r.specs))
	for _, spec := range r.specs {
		if _, ok := seen[spec.Category]; ok {
			continue
		}
		seen[spec.Category] = struct{}{}
		out = append(out, spec.Category)
	}
	return out
}

func (r *Registry) HasCategory(category Category) bool {
	for _, spec := range r.specs {
		if spec.Category == category {
			return true
		}
	}
	return false
}
