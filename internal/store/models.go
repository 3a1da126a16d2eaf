package store

import (
	"time"
)

// Team is immutable franchise reference data. Abbreviation is the join
// key for cross-source matching and must be normalized before comparison.
type Team struct {
	ID           int       `json:"id" db:"id"`
	Conference   string    `json:"conference" db:"conference"`
	Division     string    `json:"division" db:"division"`
	City         string    `json:"city" db:"city"`
	Name         string    `json:"name" db:"name"`
	FullName     string    `json:"full_name" db:"full_name"`
	Abbreviation string    `json:"abbreviation" db:"abbreviation"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Player is a player bio row.
type Player struct {
	ID           int       `json:"id" db:"id"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	TeamID       *int      `json:"team_id" db:"team_id"`
	Position     *string   `json:"position" db:"position"`
	JerseyNumber *string   `json:"jersey_number" db:"jersey_number"`
	Height       *string   `json:"height" db:"height"`
	Weight       *string   `json:"weight" db:"weight"`
	Country      *string   `json:"country" db:"country"`
	DraftYear    *int      `json:"draft_year" db:"draft_year"`
	DraftRound   *int      `json:"draft_round" db:"draft_round"`
	DraftNumber  *int      `json:"draft_number" db:"draft_number"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// PlayerSeasonStat is one player's aggregate for one season on one team.
// A player traded mid-season has one row per team; rows with zero
// qualifying games are never persisted. Conflict key:
// (player_id, season, team_id).
type PlayerSeasonStat struct {
	PlayerID    int       `json:"player_id" db:"player_id"`
	Season      int       `json:"season" db:"season"`
	TeamID      int       `json:"team_id" db:"team_id"`
	Team        *Team     `json:"team,omitempty" db:"-"`
	GamesPlayed int       `json:"games_played" db:"games_played"`
	Min         float64   `json:"min" db:"min"`
	Pts         float64   `json:"pts" db:"pts"`
	Reb         float64   `json:"reb" db:"reb"`
	Ast         float64   `json:"ast" db:"ast"`
	Stl         float64   `json:"stl" db:"stl"`
	Blk         float64   `json:"blk" db:"blk"`
	Turnover    float64   `json:"turnover" db:"turnover"`
	Pf          float64   `json:"pf" db:"pf"`
	Fgm         float64   `json:"fgm" db:"fgm"`
	Fga         float64   `json:"fga" db:"fga"`
	FgPct       float64   `json:"fg_pct" db:"fg_pct"`
	Fg3m        float64   `json:"fg3m" db:"fg3m"`
	Fg3a        float64   `json:"fg3a" db:"fg3a"`
	Fg3Pct      float64   `json:"fg3_pct" db:"fg3_pct"`
	Ftm         float64   `json:"ftm" db:"ftm"`
	Fta         float64   `json:"fta" db:"fta"`
	FtPct       float64   `json:"ft_pct" db:"ft_pct"`
	Oreb        float64   `json:"oreb" db:"oreb"`
	Dreb        float64   `json:"dreb" db:"dreb"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// TeamSeasonStat is one team's aggregate for one season. Conflict key:
// (team_id, season).
type TeamSeasonStat struct {
	TeamID      int       `json:"team_id" db:"team_id"`
	Season      int       `json:"season" db:"season"`
	GamesPlayed int       `json:"games_played" db:"games_played"`
	Min         float64   `json:"min" db:"min"`
	Pts         float64   `json:"pts" db:"pts"`
	Reb         float64   `json:"reb" db:"reb"`
	Ast         float64   `json:"ast" db:"ast"`
	Stl         float64   `json:"stl" db:"stl"`
	Blk         float64   `json:"blk" db:"blk"`
	Turnover    float64   `json:"turnover" db:"turnover"`
	Pf          float64   `json:"pf" db:"pf"`
	Fgm         float64   `json:"fgm" db:"fgm"`
	Fga         float64   `json:"fga" db:"fga"`
	FgPct       float64   `json:"fg_pct" db:"fg_pct"`
	Fg3m        float64   `json:"fg3m" db:"fg3m"`
	Fg3a        float64   `json:"fg3a" db:"fg3a"`
	Fg3Pct      float64   `json:"fg3_pct" db:"fg3_pct"`
	Ftm         float64   `json:"ftm" db:"ftm"`
	Fta         float64   `json:"fta" db:"fta"`
	FtPct       float64   `json:"ft_pct" db:"ft_pct"`
	Oreb        float64   `json:"oreb" db:"oreb"`
	Dreb        float64   `json:"dreb" db:"dreb"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// GameLogEntry is one player's participation record for one game, with
// fields derived from the game record (opponent, result, home flag) that
// are not present on the raw stat line. Conflict key:
// (player_id, game_id).
type GameLogEntry struct {
	PlayerID   int      `json:"player_id" db:"player_id"`
	GameID     int      `json:"game_id" db:"game_id"`
	GameDate   string   `json:"game_date" db:"game_date"`
	Season     int      `json:"season" db:"season"`
	TeamID     int      `json:"team_id" db:"team_id"`
	OpponentID *int     `json:"opponent_id" db:"opponent_id"`
	IsHome     *bool    `json:"is_home" db:"is_home"`
	Result     *string  `json:"result" db:"result"`
	FinalScore *string  `json:"final_score" db:"final_score"`
	DNP        bool     `json:"dnp" db:"dnp"`
	Started    *bool    `json:"started" db:"started"`
	Min        *string  `json:"min" db:"min"`
	Pts        *float64 `json:"pts" db:"pts"`
	Reb        *float64 `json:"reb" db:"reb"`
	Ast        *float64 `json:"ast" db:"ast"`
	Stl        *float64 `json:"stl" db:"stl"`
	Blk        *float64 `json:"blk" db:"blk"`
	Turnover   *float64 `json:"turnover" db:"turnover"`
	Pf         *float64 `json:"pf" db:"pf"`
	Fgm        *float64 `json:"fgm" db:"fgm"`
	Fga        *float64 `json:"fga" db:"fga"`
	Fg3m       *float64 `json:"fg3m" db:"fg3m"`
	Fg3a       *float64 `json:"fg3a" db:"fg3a"`
	Ftm        *float64 `json:"ftm" db:"ftm"`
	Fta        *float64 `json:"fta" db:"fta"`
	Oreb       *float64 `json:"oreb" db:"oreb"`
	Dreb       *float64 `json:"dreb" db:"dreb"`
	PlusMinus  *int     `json:"plus_minus" db:"plus_minus"`

	// Joined for API responses, not stored on the row.
	Team     *Team `json:"team,omitempty" db:"-"`
	Opponent *Team `json:"opponent,omitempty" db:"-"`
}

// LineupRecord is a game's lineup. Once any starter data exists the
// record is immutable; lineups do not change after tip-off.
type LineupRecord struct {
	GameID   int             `json:"game_id" db:"game_id"`
	Starters []int           `json:"starters" db:"starters"`
	Entries  []LineupPlayer  `json:"data" db:"data"`
	CachedAt time.Time       `json:"cached_at" db:"cached_at"`
}

// LineupPlayer is one player's slot within a LineupRecord.
type LineupPlayer struct {
	PlayerID int    `json:"player_id"`
	TeamID   int    `json:"team_id"`
	Starter  bool   `json:"starter"`
	Position string `json:"position"`
}

// PlayerInjury is a player's current injury designation. The table is a
// snapshot of the provider's injury report; a player with no row is
// healthy as far as the provider knows.
type PlayerInjury struct {
	PlayerID    int       `json:"player_id" db:"player_id"`
	Status      string    `json:"status" db:"status"`
	ReturnDate  *string   `json:"return_date" db:"return_date"`
	Description *string   `json:"description" db:"description"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// HasStarter reports whether playerID started the game.
func (l *LineupRecord) HasStarter(playerID int) bool {
	for _, id := range l.Starters {
		if id == playerID {
			return true
		}
	}
	return false
}
