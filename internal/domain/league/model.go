package league

import (
	"strings"
	"time"
)

// Category is the display-level bucket one or more upstream leagues map into.
type Category string

const (
	CategoryNFL    Category = "NFL"
	CategoryNCAAF  Category = "NCAAF"
	CategoryNBA    Category = "NBA"
	CategoryWNBA   Category = "WNBA"
	CategoryNCAAM  Category = "NCAAM"
	CategoryMLB    Category = "MLB"
	CategoryNHL    Category = "NHL"
	CategorySoccer Category = "SOCCER"
)

func NormalizeCategory(value string) Category {
	return Category(strings.ToUpper(strings.TrimSpace(value)))
}

// Feed names one upstream endpoint served per league.
type Feed string

const (
	FeedScoreboard   Feed = "scoreboard"
	FeedNews         Feed = "news"
	FeedTransactions Feed = "transactions"
	FeedInjuries     Feed = "injuries"
)

// AuxiliaryFeeds lists the non-score feeds in publish order.
var AuxiliaryFeeds = []Feed{FeedNews, FeedTransactions, FeedInjuries}

// Spec identifies one upstream sport/league pairing and the category it is shown under.
type Spec struct {
	SportKey  string   `json:"sportKey" validate:"required"`
	LeagueKey string   `json:"leagueKey" validate:"required"`
	Category  Category `json:"category" validate:"required"`
	Feeds     []Feed   `json:"feeds,omitempty" validate:"dive,oneof=news transactions injuries"`
}

// Key is the "sport/league" path fragment used for upstream URLs and metric labels.
func (s Spec) Key() string {
	return s.SportKey + "/" + s.LeagueKey
}

func (s Spec) Serves(feed Feed) bool {
	for _, f := range s.Feeds {
		if f == feed {
			return true
		}
	}
	return false
}

// FetchWindow is the per-category request policy: how far ahead to look and how many
// events to ask for.
type FetchWindow struct {
	Lookahead   time.Duration `json:"lookahead"`
	TodayOnly   bool          `json:"todayOnly"`
	FetchLimit  int           `json:"fetchLimit" validate:"gt=0"`
	GroupFilter string        `json:"groupFilter,omitempty"`
}

// FutureLimit is the latest start time a non-finished game may have to be shown.
func (w FetchWindow) FutureLimit(now time.Time, day Day) time.Time {
	if w.TodayOnly || w.Lookahead <= 0 {
		return day.End
	}
	return now.Add(w.Lookahead)
}
