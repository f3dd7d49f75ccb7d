package favorite

import (
	"fmt"
	"sort"
	"strings"

	"github.com/riskibarqy/scoreboard-wall/internal/domain/game"
	"github.com/riskibarqy/scoreboard-wall/internal/domain/league"
)

// Set holds favorite team abbreviations per category. It only boosts sort order and never
// filters games. The zero value has no favorites.
type Set struct {
	teams map[league.Category]map[string]struct{}
}

func NewSet(teams map[league.Category][]string) Set {
	s := Set{teams: make(map[league.Category]map[string]struct{}, len(teams))}
	for category, abbrs := range teams {
		s.add(category, abbrs...)
	}
	return s
}

// Defaults is the built-in favorite list.
func Defaults() map[league.Category][]string {
	return map[league.Category][]string{
		league.CategoryNFL:   {"KC", "PHI"},
		league.CategoryNBA:   {"BOS", "NY"},
		league.CategoryMLB:   {"NYY", "LAD"},
		league.CategoryNHL:   {"NYR"},
		league.CategoryNCAAF: {"MICH"},
	}
}

func (s *Set) add(category league.Category, abbrs ...string) {
	category = league.NormalizeCategory(string(category))
	if category == "" {
		return
	}
	if s.teams == nil {
		s.teams = make(map[league.Category]map[string]struct{})
	}
	bucket, ok := s.teams[category]
	if !ok {
		bucket = make(map[string]struct{}, len(abbrs))
		s.teams[category] = bucket
	}
	for _, abbr := range abbrs {
		abbr = strings.ToUpper(strings.TrimSpace(abbr))
		if abbr == "" {
			continue
		}
		bucket[abbr] = struct{}{}
	}
}

// Merge returns a new set holding the union of s and other.
func (s Set) Merge(other Set) Set {
	out := Set{teams: make(map[league.Category]map[string]struct{}, len(s.teams)+len(other.teams))}
	for _, src := range []Set{s, other} {
		for category, bucket := range src.teams {
			for abbr := range bucket {
				out.add(category, abbr)
			}
		}
	}
	return out
}

func (s Set) Contains(category league.Category, abbreviation string) bool {
	bucket, ok := s.teams[league.NormalizeCategory(string(category))]
	if !ok {
		return false
	}
	_, ok = bucket[strings.ToUpper(strings.TrimSpace(abbreviation))]
	return ok
}

// IsFavoriteGame reports whether any competitor of g is a favorite for g's category.
// Games without competitor data are never favorites.
func (s Set) IsFavoriteGame(g game.Game) bool {
	for _, abbr := range g.Abbreviations() {
		if s.Contains(g.Category, abbr) {
			return true
		}
	}
	return false
}

// Teams lists the favorites per category with abbreviations sorted.
func (s Set) Teams() map[league.Category][]string {
	out := make(map[league.Category][]string, len(s.teams))
	for category, bucket := range s.teams {
		abbrs := make([]string, 0, len(bucket))
		for abbr := range bucket {
			abbrs = append(abbrs, abbr)
		}
		sort.Strings(abbrs)
		out[category] = abbrs
	}
	return out
}

// Parse reads the "NFL:KC|PHI,NBA:BOS" form used by configuration.
func Parse(raw string) (Set, error) {
	var s Set
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return s, nil
	}

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		category, teams, ok := strings.Cut(part, ":")
		if !ok || strings.TrimSpace(category) == "" {
			return Set{}, fmt.Errorf("invalid favorite entry %q, expected CATEGORY:ABBR|ABBR", part)
		}
		s.add(league.Category(category), strings.Split(teams, "|")...)
	}
	return s, nil
}
