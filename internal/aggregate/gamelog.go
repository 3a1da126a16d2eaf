package aggregate

import (
	"fmt"

	"github.com/fortuna/vesta/internal/store"
	"github.com/fortuna/vesta/internal/upstream"
)

// BuildGameLogEntry derives a game-log entry from a raw stat line.
//
// The opponent is "the other team in the game", which requires resolving
// both game team ids; the stats endpoints return them as bare integers
// while the games endpoints nest objects, and both shapes are accepted.
// Result is W/L from the player's side of the final score, nil on a tie
// or when scores are missing. Started is left nil here and populated from
// lineup data by the caller.
func BuildGameLogEntry(playerID int, stat upstream.Stat) (store.GameLogEntry, error) {
	if err := stat.Validate(); err != nil {
		return store.GameLogEntry{}, fmt.Errorf("game log: %w", err)
	}

	game := stat.Game
	homeID, _ := game.HomeID()
	visitorID, _ := game.VisitorID()

	isHome := stat.Team.ID == homeID
	opponentID := homeID
	if isHome {
		opponentID = visitorID
	}

	entry := store.GameLogEntry{
		PlayerID:  playerID,
		GameID:    game.ID,
		GameDate:  game.Date,
		Season:    game.Season,
		TeamID:    stat.Team.ID,
		IsHome:    &isHome,
		DNP:       !stat.Min.Played(),
		PlusMinus: stat.PlusMinus,
	}
	if opponentID != 0 {
		entry.OpponentID = &opponentID
	}

	if game.HomeTeamScore != 0 || game.VisitorTeamScore != 0 || game.IsFinal() {
		playerScore, oppScore := game.VisitorTeamScore, game.HomeTeamScore
		if isHome {
			playerScore, oppScore = game.HomeTeamScore, game.VisitorTeamScore
		}

		score := fmt.Sprintf("%d-%d", playerScore, oppScore)
		entry.FinalScore = &score

		switch {
		case playerScore > oppScore:
			entry.Result = strPtr("W")
		case playerScore < oppScore:
			entry.Result = strPtr("L")
		}
	}

	if stat.Min.Played() {
		min := stat.Min.String()
		entry.Min = &min
	}

	entry.Pts = f64Ptr(stat.Pts)
	entry.Reb = f64Ptr(stat.Reb)
	entry.Ast = f64Ptr(stat.Ast)
	entry.Stl = f64Ptr(stat.Stl)
	entry.Blk = f64Ptr(stat.Blk)
	entry.Turnover = f64Ptr(stat.Turnover)
	entry.Pf = f64Ptr(stat.Pf)
	entry.Fgm = f64Ptr(stat.Fgm)
	entry.Fga = f64Ptr(stat.Fga)
	entry.Fg3m = f64Ptr(stat.Fg3m)
	entry.Fg3a = f64Ptr(stat.Fg3a)
	entry.Ftm = f64Ptr(stat.Ftm)
	entry.Fta = f64Ptr(stat.Fta)
	entry.Oreb = f64Ptr(stat.Oreb)
	entry.Dreb = f64Ptr(stat.Dreb)

	return entry, nil
}

// ApplyStarters fills Started on entries covered by the starter map.
// Entries for games without lineup data keep a nil Started.
func ApplyStarters(entries []store.GameLogEntry, startedByGame map[int]bool) {
	for i := range entries {
		if started, ok := startedByGame[entries[i].GameID]; ok {
			s := started
			entries[i].Started = &s
		}
	}
}

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }
