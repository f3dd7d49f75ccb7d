package feed

import (
	"time"

	"github.com/riskibarqy/scoreboard-wall/internal/domain/league"
)

// Article is one news headline for a league.
type Article struct {
	ID          string          `json:"id,omitempty"`
	Category    league.Category `json:"category"`
	League      string          `json:"league"`
	Headline    string          `json:"headline"`
	Description string          `json:"description,omitempty"`
	Published   time.Time       `json:"published"`
	URL         string          `json:"url,omitempty"`
	ImageURL    string          `json:"imageUrl,omitempty"`
}

// Transaction is one roster move reported for a league.
type Transaction struct {
	Category    league.Category `json:"category"`
	League      string          `json:"league"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Team        string          `json:"team,omitempty"`
	TeamLogo    string          `json:"teamLogo,omitempty"`
}

// Injury is one player entry inside a team report.
type Injury struct {
	Athlete    string    `json:"athlete"`
	Position   string    `json:"position,omitempty"`
	Status     string    `json:"status"`
	Type       string    `json:"type,omitempty"`
	Comment    string    `json:"comment,omitempty"`
	Date       time.Time `json:"date"`
	ReturnDate string    `json:"returnDate,omitempty"`
}

// InjuryReport groups the injuries of one team.
type InjuryReport struct {
	Category league.Category `json:"category"`
	League   string          `json:"league"`
	TeamID   string          `json:"teamId,omitempty"`
	Team     string          `json:"team"`
	Injuries []Injury        `json:"injuries"`
}
