package snapshot

import (
	"time"

	"github.com/riskibarqy/scoreboard-wall/internal/domain/feed"
	"github.com/riskibarqy/scoreboard-wall/internal/domain/game"
)

// Snapshot is one complete result of an aggregation cycle. A published snapshot is never
// modified; the next cycle replaces it.
type Snapshot struct {
	ID           string              `json:"id"`
	GeneratedAt  time.Time           `json:"generatedAt"`
	Games        []game.Game         `json:"games"`
	News         []feed.Article      `json:"news"`
	Transactions []feed.Transaction  `json:"transactions"`
	Injuries     []feed.InjuryReport `json:"injuries"`
	IsLoading    bool                `json:"isLoading"`
}

// Empty is the state shown before the first cycle publishes.
func Empty() Snapshot {
	return Snapshot{
		Games:        []game.Game{},
		News:         []feed.Article{},
		Transactions: []feed.Transaction{},
		Injuries:     []feed.InjuryReport{},
	}
}

// Published reports whether the snapshot came from a completed cycle.
func (s Snapshot) Published() bool {
	return !s.GeneratedAt.IsZero()
}
