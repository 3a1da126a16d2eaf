package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Page is the envelope every paginated endpoint returns.
type Page struct {
	Data []json.RawMessage `json:"data"`
	Meta Meta              `json:"meta"`
}

// Meta carries pagination metadata.
type Meta struct {
	NextCursor *Cursor `json:"next_cursor"`
	PerPage    int     `json:"per_page"`
}

// Cursor is the opaque pagination token. The provider has returned it both
// as a number and as a string across API versions, so both are accepted.
type Cursor string

func (c *Cursor) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*c = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Cursor(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("cursor is neither string nor number: %s", data)
	}
	*c = Cursor(n.String())
	return nil
}

func (c Cursor) String() string { return string(c) }

// Minutes is a playing-time value. The stats endpoints return it as
// "34:12", "34", or a bare number depending on season and endpoint.
type Minutes string

func (m *Minutes) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*m = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = Minutes(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("minutes is neither string nor number: %s", data)
	}
	*m = Minutes(n.String())
	return nil
}

// Float returns whole minutes played. Seconds are dropped, matching how
// the provider reports season averages.
func (m Minutes) Float() float64 {
	s := string(m)
	if s == "" {
		return 0
	}
	if idx := strings.Index(s, ":"); idx >= 0 {
		s = s[:idx]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// Played reports whether the line represents actual playing time. Zero
// minutes is the provider's DNP signal.
func (m Minutes) Played() bool { return m.Float() > 0 }

func (m Minutes) String() string { return string(m) }

// Team is reference data for a franchise.
type Team struct {
	ID           int    `json:"id"`
	Conference   string `json:"conference"`
	Division     string `json:"division"`
	City         string `json:"city"`
	Name         string `json:"name"`
	FullName     string `json:"full_name"`
	Abbreviation string `json:"abbreviation"`
}

// Player is a player bio as returned by the players endpoints.
type Player struct {
	ID           int    `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Position     string `json:"position"`
	Height       string `json:"height"`
	Weight       string `json:"weight"`
	JerseyNumber string `json:"jersey_number"`
	College      string `json:"college"`
	Country      string `json:"country"`
	DraftYear    *int   `json:"draft_year"`
	DraftRound   *int   `json:"draft_round"`
	DraftNumber  *int   `json:"draft_number"`
	Team         *Team  `json:"team"`
	TeamID       int    `json:"team_id"`
}

// CurrentTeamID resolves the player's team id from whichever shape the
// endpoint returned (nested team object or bare team_id).
func (p *Player) CurrentTeamID() (int, bool) {
	if p.Team != nil && p.Team.ID != 0 {
		return p.Team.ID, true
	}
	if p.TeamID != 0 {
		return p.TeamID, true
	}
	return 0, false
}

// Broadcast is a TV/streaming entry attached to a game.
type Broadcast struct {
	Network string `json:"network"`
	Market  string `json:"market"` // "national", "home", or "away"
}

// Game is a game record. Team references come in two shapes: the games
// endpoints nest full team objects while the stats endpoints return bare
// home_team_id/visitor_team_id integers. Both are kept and resolved
// through HomeID/VisitorID so callers never touch the raw fields.
type Game struct {
	ID               int         `json:"id"`
	Date             string      `json:"date"`
	Season           int         `json:"season"`
	Status           string      `json:"status"`
	Period           int         `json:"period"`
	Time             string      `json:"time"`
	Postseason       bool        `json:"postseason"`
	HomeTeam         *Team       `json:"home_team"`
	HomeTeamID       int         `json:"home_team_id"`
	HomeTeamScore    int         `json:"home_team_score"`
	VisitorTeam      *Team       `json:"visitor_team"`
	VisitorTeamID    int         `json:"visitor_team_id"`
	VisitorTeamScore int         `json:"visitor_team_score"`
	Broadcasts       []Broadcast `json:"broadcasts,omitempty"`
}

// HomeID resolves the home team id from whichever shape is present.
func (g *Game) HomeID() (int, bool) {
	if g.HomeTeam != nil && g.HomeTeam.ID != 0 {
		return g.HomeTeam.ID, true
	}
	if g.HomeTeamID != 0 {
		return g.HomeTeamID, true
	}
	return 0, false
}

// VisitorID resolves the visitor team id from whichever shape is present.
func (g *Game) VisitorID() (int, bool) {
	if g.VisitorTeam != nil && g.VisitorTeam.ID != 0 {
		return g.VisitorTeam.ID, true
	}
	if g.VisitorTeamID != 0 {
		return g.VisitorTeamID, true
	}
	return 0, false
}

// IsFinal reports game finality as the upstream encodes it.
func (g *Game) IsFinal() bool {
	return strings.EqualFold(g.Status, "Final")
}

// Stat is one player's box-score line for one game.
type Stat struct {
	ID        int     `json:"id"`
	Min       Minutes `json:"min"`
	Fgm       float64 `json:"fgm"`
	Fga       float64 `json:"fga"`
	FgPct     float64 `json:"fg_pct"`
	Fg3m      float64 `json:"fg3m"`
	Fg3a      float64 `json:"fg3a"`
	Fg3Pct    float64 `json:"fg3_pct"`
	Ftm       float64 `json:"ftm"`
	Fta       float64 `json:"fta"`
	FtPct     float64 `json:"ft_pct"`
	Oreb      float64 `json:"oreb"`
	Dreb      float64 `json:"dreb"`
	Reb       float64 `json:"reb"`
	Ast       float64 `json:"ast"`
	Stl       float64 `json:"stl"`
	Blk       float64 `json:"blk"`
	Turnover  float64 `json:"turnover"`
	Pf        float64 `json:"pf"`
	Pts       float64 `json:"pts"`
	PlusMinus *int    `json:"plus_minus"`
	Player    *Player `json:"player"`
	Team      *Team   `json:"team"`
	Game      *Game   `json:"game"`
}

// Validate checks the invariants the aggregator relies on: a stat line is
// scoped to exactly one team and one game. Malformed upstream payloads
// fail here instead of propagating zero values.
func (s *Stat) Validate() error {
	if s.Team == nil || s.Team.ID == 0 {
		return fmt.Errorf("stat line %d has no team reference", s.ID)
	}
	if s.Game == nil {
		return fmt.Errorf("stat line %d has no game reference", s.ID)
	}
	if _, ok := s.Game.HomeID(); !ok {
		return fmt.Errorf("stat line %d: game %d has no home team in either shape", s.ID, s.Game.ID)
	}
	if _, ok := s.Game.VisitorID(); !ok {
		return fmt.Errorf("stat line %d: game %d has no visitor team in either shape", s.ID, s.Game.ID)
	}
	return nil
}

// SeasonStatValues are the per-game means from the season-average
// endpoints. The provider names turnovers "tov" there.
type SeasonStatValues struct {
	GP       int     `json:"gp"`
	Min      float64 `json:"min"`
	Pts      float64 `json:"pts"`
	Reb      float64 `json:"reb"`
	Ast      float64 `json:"ast"`
	Stl      float64 `json:"stl"`
	Blk      float64 `json:"blk"`
	Tov      float64 `json:"tov"`
	Pf       float64 `json:"pf"`
	Fgm      float64 `json:"fgm"`
	Fga      float64 `json:"fga"`
	FgPct    float64 `json:"fg_pct"`
	Fg3m     float64 `json:"fg3m"`
	Fg3a     float64 `json:"fg3a"`
	Fg3Pct   float64 `json:"fg3_pct"`
	Ftm      float64 `json:"ftm"`
	Fta      float64 `json:"fta"`
	FtPct    float64 `json:"ft_pct"`
	Oreb     float64 `json:"oreb"`
	Dreb     float64 `json:"dreb"`
}

// SeasonAverageRow is one player's season summary.
type SeasonAverageRow struct {
	Player Player           `json:"player"`
	Season int              `json:"season"`
	Stats  SeasonStatValues `json:"stats"`
}

// TeamSeasonAverageRow is one team's season summary.
type TeamSeasonAverageRow struct {
	Team   Team             `json:"team"`
	Season int              `json:"season"`
	Stats  SeasonStatValues `json:"stats"`
}

// StandingRow is one team's record for a season.
type StandingRow struct {
	Team           Team `json:"team"`
	ConferenceRank int  `json:"conference_rank"`
	DivisionRank   int  `json:"division_rank"`
	Wins           int  `json:"wins"`
	Losses         int  `json:"losses"`
	HomeWins       int  `json:"home_wins"`
	HomeLosses     int  `json:"home_losses"`
	RoadWins       int  `json:"road_wins"`
	RoadLosses     int  `json:"road_losses"`
	Season         int  `json:"season"`
}

// LineupEntry is one player's slot in a game lineup.
type LineupEntry struct {
	Player   *Player `json:"player"`
	Team     *Team   `json:"team"`
	Starter  bool    `json:"starter"`
	Position string  `json:"position"`
}

// InjuryRow is one entry in the provider's injury report.
type InjuryRow struct {
	Player      *Player `json:"player"`
	Status      string  `json:"status"`
	ReturnDate  *string `json:"return_date"`
	Description *string `json:"description"`
}
