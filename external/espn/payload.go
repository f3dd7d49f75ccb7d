package espn

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/riskibarqy/scoreboard-wall/internal/domain/feed"
	"github.com/riskibarqy/scoreboard-wall/internal/domain/game"
	"github.com/riskibarqy/scoreboard-wall/internal/domain/league"
)

// flexString accepts ids the site API sends as either strings or numbers.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		value, err := strconv.Unquote(string(data))
		if err != nil {
			return err
		}
		*f = flexString(value)
		return nil
	}
	*f = flexString(data)
	return nil
}

type scoreboardEnvelope struct {
	Events []eventPayload `json:"events"`
}

type eventPayload struct {
	ID           flexString           `json:"id"`
	Date         string               `json:"date"`
	Name         string               `json:"name"`
	ShortName    string               `json:"shortName"`
	Competitions []competitionPayload `json:"competitions"`
	Status       statusPayload        `json:"status"`
}

type competitionPayload struct {
	Date        string              `json:"date"`
	Competitors []competitorPayload `json:"competitors"`
	Venue       struct {
		FullName string `json:"fullName"`
	} `json:"venue"`
	Broadcasts []struct {
		Names []string `json:"names"`
	} `json:"broadcasts"`
}

type competitorPayload struct {
	HomeAway string      `json:"homeAway"`
	Score    flexString  `json:"score"`
	Winner   bool        `json:"winner"`
	Team     teamPayload `json:"team"`
}

type teamPayload struct {
	ID           flexString `json:"id"`
	Abbreviation string     `json:"abbreviation"`
	DisplayName  string     `json:"displayName"`
	Logo         string     `json:"logo"`
	Logos        []struct {
		Href string `json:"href"`
	} `json:"logos"`
}

func (t teamPayload) logo() string {
	if t.Logo != "" {
		return t.Logo
	}
	for _, l := range t.Logos {
		if l.Href != "" {
			return l.Href
		}
	}
	return ""
}

type statusPayload struct {
	DisplayClock string `json:"displayClock"`
	Period       int    `json:"period"`
	Type         struct {
		State       string `json:"state"`
		Completed   bool   `json:"completed"`
		Detail      string `json:"detail"`
		ShortDetail string `json:"shortDetail"`
	} `json:"type"`
}

type newsEnvelope struct {
	Articles []articlePayload `json:"articles"`
}

type articlePayload struct {
	ID          flexString `json:"id"`
	Headline    string     `json:"headline"`
	Description string     `json:"description"`
	Published   string     `json:"published"`
	Links       struct {
		Web struct {
			Href string `json:"href"`
		} `json:"web"`
	} `json:"links"`
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
}

type transactionsEnvelope struct {
	Transactions []transactionPayload `json:"transactions"`
}

type transactionPayload struct {
	Date        string      `json:"date"`
	Description string      `json:"description"`
	Team        teamPayload `json:"team"`
}

type injuriesEnvelope struct {
	Injuries []teamInjuryPayload `json:"injuries"`
}

type teamInjuryPayload struct {
	ID          flexString      `json:"id"`
	DisplayName string          `json:"displayName"`
	Injuries    []injuryPayload `json:"injuries"`
}

type injuryPayload struct {
	Status       string `json:"status"`
	Date         string `json:"date"`
	ShortComment string `json:"shortComment"`
	Athlete      struct {
		DisplayName string `json:"displayName"`
		Position    struct {
			Abbreviation string `json:"abbreviation"`
		} `json:"position"`
	} `json:"athlete"`
	Details struct {
		Type       string `json:"type"`
		ReturnDate string `json:"returnDate"`
	} `json:"details"`
}

// mapEvents tags every event with the league's category. Events without an id cannot be
// deduplicated and are dropped; a missing or bad date is left for the pipeline to reject.
func mapEvents(spec league.Spec, events []eventPayload) []game.Game {
	out := make([]game.Game, 0, len(events))
	for _, event := range events {
		id := strings.TrimSpace(string(event.ID))
		if id == "" {
			continue
		}

		g := game.Game{
			ID:        id,
			Category:  spec.Category,
			League:    spec.Key(),
			Name:      event.Name,
			ShortName: event.ShortName,
			RawStart:  event.Date,
			Status: game.Status{
				State:       game.NormalizeState(event.Status.Type.State),
				Detail:      event.Status.Type.Detail,
				ShortDetail: event.Status.Type.ShortDetail,
				Period:      event.Status.Period,
				Clock:       event.Status.DisplayClock,
				Completed:   event.Status.Type.Completed,
			},
		}
		if len(event.Competitions) > 0 {
			competition := event.Competitions[0]
			if g.RawStart == "" {
				g.RawStart = competition.Date
			}
			g.Venue = competition.Venue.FullName
			for _, c := range competition.Competitors {
				g.Competitors = append(g.Competitors, game.Competitor{
					Team: game.Team{
						ID:           string(c.Team.ID),
						Abbreviation: c.Team.Abbreviation,
						DisplayName:  c.Team.DisplayName,
						Logo:         c.Team.logo(),
					},
					Score:    string(c.Score),
					HomeAway: strings.ToLower(c.HomeAway),
					Winner:   c.Winner,
				})
			}
			for _, b := range competition.Broadcasts {
				g.Broadcasts = append(g.Broadcasts, b.Names...)
			}
		}
		if start, ok := game.ParseStart(g.RawStart); ok {
			g.Start = start
		}
		out = append(out, g)
	}
	return out
}

func mapArticles(spec league.Spec, items []articlePayload) []feed.Article {
	out := make([]feed.Article, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Headline) == "" {
			continue
		}
		article := feed.Article{
			ID:          string(item.ID),
			Category:    spec.Category,
			League:      spec.Key(),
			Headline:    item.Headline,
			Description: item.Description,
			URL:         item.Links.Web.Href,
		}
		if published, ok := game.ParseStart(item.Published); ok {
			article.Published = published
		}
		if len(item.Images) > 0 {
			article.ImageURL = item.Images[0].URL
		}
		out = append(out, article)
	}
	return out
}

func mapTransactions(spec league.Spec, items []transactionPayload) []feed.Transaction {
	out := make([]feed.Transaction, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Description) == "" {
			continue
		}
		tx := feed.Transaction{
			Category:    spec.Category,
			League:      spec.Key(),
			Description: item.Description,
			Team:        item.Team.DisplayName,
			TeamLogo:    item.Team.logo(),
		}
		if date, ok := game.ParseStart(item.Date); ok {
			tx.Date = date
		}
		out = append(out, tx)
	}
	return out
}

func mapInjuries(spec league.Spec, items []teamInjuryPayload) []feed.InjuryReport {
	out := make([]feed.InjuryReport, 0, len(items))
	for _, item := range items {
		report := feed.InjuryReport{
			Category: spec.Category,
			League:   spec.Key(),
			TeamID:   string(item.ID),
			Team:     item.DisplayName,
			Injuries: make([]feed.Injury, 0, len(item.Injuries)),
		}
		for _, injury := range item.Injuries {
			entry := feed.Injury{
				Athlete:    injury.Athlete.DisplayName,
				Position:   injury.Athlete.Position.Abbreviation,
				Status:     injury.Status,
				Type:       injury.Details.Type,
				Comment:    injury.ShortComment,
				ReturnDate: injury.Details.ReturnDate,
			}
			if date, ok := game.ParseStart(injury.Date); ok {
				entry.Date = date
			}
			report.Injuries = append(report.Injuries, entry)
		}
		out = append(out, report)
	}
	return out
}
