package game

import (
	"strings"
	"time"

	"github.com/riskibarqy/scoreboard-wall/internal/domain/league"
)

// State is the coarse lifecycle of an event as reported upstream.
type State string

const (
	StatePre  State = "pre"
	StateIn   State = "in"
	StatePost State = "post"
)

// NormalizeState lowercases the upstream value and folds the legacy "final" into post.
func NormalizeState(value string) State {
	state := State(strings.ToLower(strings.TrimSpace(value)))
	if state == "final" {
		return StatePost
	}
	return state
}

func (s State) IsFinished() bool {
	return NormalizeState(string(s)) == StatePost
}

// Priority ranks live before upcoming before everything else.
func (s State) Priority() int {
	switch NormalizeState(string(s)) {
	case StateIn:
		return 1
	case StatePre:
		return 2
	default:
		return 3
	}
}

type Team struct {
	ID           string `json:"id"`
	Abbreviation string `json:"abbreviation"`
	DisplayName  string `json:"displayName"`
	Logo         string `json:"logo,omitempty"`
}

const (
	SideHome = "home"
	SideAway = "away"
)

type Competitor struct {
	Team     Team   `json:"team"`
	Score    string `json:"score,omitempty"`
	HomeAway string `json:"homeAway"`
	Winner   bool   `json:"winner,omitempty"`
}

type Status struct {
	State       State  `json:"state"`
	Detail      string `json:"detail,omitempty"`
	ShortDetail string `json:"shortDetail,omitempty"`
	Period      int    `json:"period,omitempty"`
	Clock       string `json:"clock,omitempty"`
	Completed   bool   `json:"completed"`
}

// Game is one event as returned by a scoreboard feed, tagged with its category.
type Game struct {
	ID          string          `json:"id"`
	Category    league.Category `json:"category"`
	League      string          `json:"league"`
	Name        string          `json:"name,omitempty"`
	ShortName   string          `json:"shortName,omitempty"`
	RawStart    string          `json:"date"`
	Start       time.Time       `json:"start"`
	Competitors []Competitor    `json:"competitors"`
	Status      Status          `json:"status"`
	Venue       string          `json:"venue,omitempty"`
	Broadcasts  []string        `json:"broadcasts,omitempty"`
}

// HasStart reports whether RawStart parsed into a usable timestamp.
func (g Game) HasStart() bool {
	return !g.Start.IsZero()
}

func (g Game) Home() (Competitor, bool) {
	return g.side(SideHome)
}

func (g Game) Away() (Competitor, bool) {
	return g.side(SideAway)
}

func (g Game) side(side string) (Competitor, bool) {
	for _, c := range g.Competitors {
		if strings.EqualFold(c.HomeAway, side) {
			return c, true
		}
	}
	return Competitor{}, false
}

// Abbreviations lists non-empty competitor abbreviations in upstream order.
func (g Game) Abbreviations() []string {
	out := make([]string, 0, len(g.Competitors))
	for _, c := range g.Competitors {
		if abbr := strings.TrimSpace(c.Team.Abbreviation); abbr != "" {
			out = append(out, abbr)
		}
	}
	return out
}
