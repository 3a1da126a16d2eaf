package aggregate_test

import (
	"testing"

	"github.com/fortuna/vesta/internal/aggregate"
	"github.com/fortuna/vesta/internal/store"
	"github.com/fortuna/vesta/internal/upstream"
)

func finalGame(homeID, visitorID, homeScore, visitorScore int) *upstream.Game {
	return &upstream.Game{
		ID:               501,
		Date:             "2025-01-10",
		Season:           2024,
		Status:           "Final",
		HomeTeam:         &upstream.Team{ID: homeID},
		HomeTeamScore:    homeScore,
		VisitorTeam:      &upstream.Team{ID: visitorID},
		VisitorTeamScore: visitorScore,
	}
}

func TestBuildGameLogEntryHomeWin(t *testing.T) {
	stat := upstream.Stat{
		Min:  "34:12",
		Pts:  25,
		Team: &upstream.Team{ID: 1},
		Game: finalGame(1, 2, 110, 100),
	}

	entry, err := aggregate.BuildGameLogEntry(99, stat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if entry.IsHome == nil || !*entry.IsHome {
		t.Error("is_home should be true for the home team's player")
	}
	if entry.OpponentID == nil || *entry.OpponentID != 2 {
		t.Errorf("opponent_id = %v, want 2", entry.OpponentID)
	}
	if entry.Result == nil || *entry.Result != "W" {
		t.Errorf("result = %v, want W", entry.Result)
	}
	if entry.FinalScore == nil || *entry.FinalScore != "110-100" {
		t.Errorf("final_score = %v, want 110-100", entry.FinalScore)
	}
	if entry.DNP {
		t.Error("dnp should be false with minutes played")
	}
	if entry.Min == nil || *entry.Min != "34:12" {
		t.Errorf("min = %v, want 34:12", entry.Min)
	}
	if entry.Started != nil {
		t.Error("started must stay nil until lineup data is applied")
	}
}

func TestBuildGameLogEntryVisitorLoss(t *testing.T) {
	stat := upstream.Stat{
		Min:  "20:00",
		Team: &upstream.Team{ID: 2},
		Game: finalGame(1, 2, 110, 100),
	}

	entry, err := aggregate.BuildGameLogEntry(99, stat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if entry.IsHome == nil || *entry.IsHome {
		t.Error("is_home should be false for the visiting team's player")
	}
	if entry.OpponentID == nil || *entry.OpponentID != 1 {
		t.Errorf("opponent_id = %v, want 1", entry.OpponentID)
	}
	if entry.Result == nil || *entry.Result != "L" {
		t.Errorf("result = %v, want L", entry.Result)
	}
	// Score reads from the player's side.
	if entry.FinalScore == nil || *entry.FinalScore != "100-110" {
		t.Errorf("final_score = %v, want 100-110", entry.FinalScore)
	}
}

func TestBuildGameLogEntryBareTeamIDs(t *testing.T) {
	// The stats endpoints return home_team_id/visitor_team_id as bare
	// integers instead of nested objects.
	stat := upstream.Stat{
		Min:  "12:00",
		Team: &upstream.Team{ID: 7},
		Game: &upstream.Game{
			ID:            502,
			Date:          "2025-01-11",
			Season:        2024,
			Status:        "Final",
			HomeTeamID:    7,
			VisitorTeamID: 8,
		},
	}

	entry, err := aggregate.BuildGameLogEntry(99, stat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.OpponentID == nil || *entry.OpponentID != 8 {
		t.Errorf("opponent_id = %v, want 8", entry.OpponentID)
	}
	if entry.IsHome == nil || !*entry.IsHome {
		t.Error("is_home should resolve from the bare id shape")
	}
}

func TestBuildGameLogEntryUnplayedGame(t *testing.T) {
	stat := upstream.Stat{
		Min:  "30:00",
		Team: &upstream.Team{ID: 1},
		Game: &upstream.Game{
			ID:          503,
			Status:      "7:30 PM ET",
			HomeTeam:    &upstream.Team{ID: 1},
			VisitorTeam: &upstream.Team{ID: 2},
		},
	}

	entry, err := aggregate.BuildGameLogEntry(99, stat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Result != nil {
		t.Errorf("result = %v, want nil without scores", entry.Result)
	}
	if entry.FinalScore != nil {
		t.Errorf("final_score = %v, want nil without scores", entry.FinalScore)
	}
}

func TestBuildGameLogEntryTie(t *testing.T) {
	// A tie cannot happen in a final game, but a live game mid-period
	// can show equal scores; result must stay nil.
	stat := upstream.Stat{
		Min:  "18:00",
		Team: &upstream.Team{ID: 1},
		Game: finalGame(1, 2, 95, 95),
	}

	entry, err := aggregate.BuildGameLogEntry(99, stat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Result != nil {
		t.Errorf("result = %v, want nil on equal scores", entry.Result)
	}
}

func TestBuildGameLogEntryDNP(t *testing.T) {
	stat := upstream.Stat{
		Min:  "0:00",
		Team: &upstream.Team{ID: 1},
		Game: finalGame(1, 2, 110, 100),
	}

	entry, err := aggregate.BuildGameLogEntry(99, stat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !entry.DNP {
		t.Error("dnp should be true for zero minutes")
	}
	if entry.Min != nil {
		t.Errorf("min = %v, want nil for a DNP", entry.Min)
	}
}

func TestBuildGameLogEntryRejectsMalformedLines(t *testing.T) {
	tests := []struct {
		name string
		stat upstream.Stat
	}{
		{"missing team", upstream.Stat{Game: finalGame(1, 2, 1, 0)}},
		{"missing game", upstream.Stat{Team: &upstream.Team{ID: 1}}},
		{"game without team ids", upstream.Stat{
			Team: &upstream.Team{ID: 1},
			Game: &upstream.Game{ID: 504},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := aggregate.BuildGameLogEntry(99, tt.stat); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestApplyStarters(t *testing.T) {
	entries := []store.GameLogEntry{
		{GameID: 1},
		{GameID: 2},
		{GameID: 3},
	}

	aggregate.ApplyStarters(entries, map[int]bool{1: true, 2: false})

	if entries[0].Started == nil || !*entries[0].Started {
		t.Error("game 1 should be marked started")
	}
	if entries[1].Started == nil || *entries[1].Started {
		t.Error("game 2 should be marked not started")
	}
	if entries[2].Started != nil {
		t.Error("game 3 has no lineup data and must stay nil")
	}
}
