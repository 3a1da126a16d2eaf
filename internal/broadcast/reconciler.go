package broadcast

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/fortuna/vesta/internal/upstream"
)

// DefaultAbbreviationMap translates the feed's shortened team
// abbreviations to the canonical scheme used by the stats provider.
// Canonical abbreviations absent from the table pass through unchanged.
func DefaultAbbreviationMap() map[string]string {
	return map[string]string{
		"GS":   "GSW", // Golden State Warriors
		"SA":   "SAS", // San Antonio Spurs
		"NO":   "NOP", // New Orleans Pelicans
		"NY":   "NYK", // New York Knicks
		"UTAH": "UTA", // Utah Jazz
		"WSH":  "WAS", // Washington Wizards
	}
}

// Fetcher is the feed surface the reconciler needs.
type Fetcher interface {
	FetchSchedule(ctx context.Context, date time.Time) ([]ScheduleEvent, error)
}

// Reconciler matches feed events to games by normalized home/away
// abbreviation pair and merges broadcast entries onto the games.
type Reconciler struct {
	feed    Fetcher
	abbrMap map[string]string
}

// NewReconciler creates a reconciler with an immutable abbreviation
// table. The table is copied so later caller mutations cannot leak in.
func NewReconciler(feed Fetcher, abbrMap map[string]string) *Reconciler {
	copied := make(map[string]string, len(abbrMap))
	for k, v := range abbrMap {
		copied[strings.ToUpper(k)] = strings.ToUpper(v)
	}
	return &Reconciler{
		feed:    feed,
		abbrMap: copied,
	}
}

// Normalize maps a feed abbreviation to its canonical form.
func (r *Reconciler) Normalize(abbr string) string {
	abbr = strings.ToUpper(strings.TrimSpace(abbr))
	if canonical, ok := r.abbrMap[abbr]; ok {
		return canonical
	}
	return abbr
}

// EnrichGames attaches broadcast entries to the games played on date.
// Failures here never fail the primary game path: a feed error or an
// unmatched game just leaves that game's broadcast list empty.
func (r *Reconciler) EnrichGames(ctx context.Context, date time.Time, games []upstream.Game) []upstream.Game {
	if len(games) == 0 {
		return games
	}

	events, err := r.feed.FetchSchedule(ctx, date)
	if err != nil {
		log.Printf("[broadcast] schedule feed unavailable for %s: %v", date.Format("2006-01-02"), err)
		return games
	}

	lookup := r.buildLookup(events)

	for i := range games {
		game := &games[i]
		if game.HomeTeam == nil || game.VisitorTeam == nil {
			continue
		}
		key := r.matchKey(game.VisitorTeam.Abbreviation, game.HomeTeam.Abbreviation)
		if broadcasts, ok := lookup[key]; ok {
			game.Broadcasts = broadcasts
		}
	}

	return games
}

// buildLookup indexes feed events by "{awayAbbr}@{homeAbbr}" with both
// sides normalized.
func (r *Reconciler) buildLookup(events []ScheduleEvent) map[string][]upstream.Broadcast {
	lookup := make(map[string][]upstream.Broadcast)

	for _, event := range events {
		if len(event.Competitions) == 0 {
			continue
		}
		comp := event.Competitions[0]

		var home, away string
		for _, competitor := range comp.Competitors {
			switch competitor.HomeAway {
			case "home":
				home = competitor.Team.Abbreviation
			case "away":
				away = competitor.Team.Abbreviation
			}
		}
		if home == "" || away == "" {
			continue
		}

		var broadcasts []upstream.Broadcast
		for _, entry := range comp.Broadcasts {
			for _, name := range entry.Names {
				broadcasts = append(broadcasts, upstream.Broadcast{
					Network: name,
					Market:  entry.Market,
				})
			}
		}
		if len(broadcasts) == 0 {
			continue
		}

		lookup[r.matchKey(away, home)] = broadcasts
	}

	return lookup
}

func (r *Reconciler) matchKey(awayAbbr, homeAbbr string) string {
	return fmt.Sprintf("%s@%s", r.Normalize(awayAbbr), r.Normalize(homeAbbr))
}
