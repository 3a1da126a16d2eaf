package broadcast_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fortuna/vesta/internal/broadcast"
	"github.com/fortuna/vesta/internal/upstream"
)

type fakeFeed struct {
	events []broadcast.ScheduleEvent
	err    error
}

func (f *fakeFeed) FetchSchedule(ctx context.Context, date time.Time) ([]broadcast.ScheduleEvent, error) {
	return f.events, f.err
}

func event(homeAbbr, awayAbbr string, entries ...broadcast.FeedEntry) broadcast.ScheduleEvent {
	comp := broadcast.Competition{Broadcasts: entries}

	home := broadcast.Competitor{HomeAway: "home"}
	home.Team.Abbreviation = homeAbbr
	away := broadcast.Competitor{HomeAway: "away"}
	away.Team.Abbreviation = awayAbbr
	comp.Competitors = []broadcast.Competitor{home, away}

	return broadcast.ScheduleEvent{Competitions: []broadcast.Competition{comp}}
}

func game(homeAbbr, visitorAbbr string) upstream.Game {
	return upstream.Game{
		HomeTeam:    &upstream.Team{ID: 1, Abbreviation: homeAbbr},
		VisitorTeam: &upstream.Team{ID: 2, Abbreviation: visitorAbbr},
	}
}

func TestNormalize(t *testing.T) {
	r := broadcast.NewReconciler(&fakeFeed{}, broadcast.DefaultAbbreviationMap())

	tests := []struct {
		in   string
		want string
	}{
		{"GS", "GSW"},
		{"SA", "SAS"},
		{"NO", "NOP"},
		{"NY", "NYK"},
		{"UTAH", "UTA"},
		{"WSH", "WAS"},
		{"BOS", "BOS"},   // canonical passes through
		{"gs", "GSW"},    // case-insensitive
		{" LAL ", "LAL"}, // whitespace trimmed
	}

	for _, tt := range tests {
		if got := r.Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEnrichGamesMatchesAcrossAbbreviationSchemes(t *testing.T) {
	// The feed says GS, the primary source says GSW; the join must
	// still land.
	feed := &fakeFeed{events: []broadcast.ScheduleEvent{
		event("GS", "BOS", broadcast.FeedEntry{Market: "national", Names: []string{"ESPN"}}),
	}}
	r := broadcast.NewReconciler(feed, broadcast.DefaultAbbreviationMap())

	games := r.EnrichGames(context.Background(), time.Now(), []upstream.Game{game("GSW", "BOS")})

	if len(games[0].Broadcasts) != 1 {
		t.Fatalf("broadcast count = %d, want 1", len(games[0].Broadcasts))
	}
	b := games[0].Broadcasts[0]
	if b.Network != "ESPN" || b.Market != "national" {
		t.Errorf("broadcast = %+v, want ESPN/national", b)
	}
}

func TestEnrichGamesUnmatchedGameStaysEmpty(t *testing.T) {
	feed := &fakeFeed{events: []broadcast.ScheduleEvent{
		event("LAL", "DEN", broadcast.FeedEntry{Market: "national", Names: []string{"TNT"}}),
	}}
	r := broadcast.NewReconciler(feed, broadcast.DefaultAbbreviationMap())

	games := r.EnrichGames(context.Background(), time.Now(), []upstream.Game{game("GSW", "BOS")})

	if len(games[0].Broadcasts) != 0 {
		t.Errorf("broadcasts = %v, want none for an unmatched game", games[0].Broadcasts)
	}
}

func TestEnrichGamesFeedFailureIsSoft(t *testing.T) {
	feed := &fakeFeed{err: errors.New("feed down")}
	r := broadcast.NewReconciler(feed, broadcast.DefaultAbbreviationMap())

	games := r.EnrichGames(context.Background(), time.Now(), []upstream.Game{game("GSW", "BOS")})

	if len(games) != 1 {
		t.Fatalf("game count = %d, want the original games back", len(games))
	}
	if len(games[0].Broadcasts) != 0 {
		t.Errorf("broadcasts = %v, want none on feed failure", games[0].Broadcasts)
	}
}

func TestEnrichGamesMultipleNetworks(t *testing.T) {
	feed := &fakeFeed{events: []broadcast.ScheduleEvent{
		event("NY", "SA",
			broadcast.FeedEntry{Market: "national", Names: []string{"ABC", "ESPN"}},
			broadcast.FeedEntry{Market: "home", Names: []string{"MSG"}},
		),
	}}
	r := broadcast.NewReconciler(feed, broadcast.DefaultAbbreviationMap())

	games := r.EnrichGames(context.Background(), time.Now(), []upstream.Game{game("NYK", "SAS")})

	if len(games[0].Broadcasts) != 3 {
		t.Fatalf("broadcast count = %d, want 3", len(games[0].Broadcasts))
	}
}
