// Package aggregate reduces raw per-game stat lines into team totals,
// per-team season averages, and enriched game-log entries. Every
// computation is a pure fold over its input slice.
package aggregate

import (
	"github.com/fortuna/vesta/internal/upstream"
)

// TeamTotals is the summed box-score line for one team in one game.
type TeamTotals struct {
	Min      string  `json:"min"`
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
	Reb      float64 `json:"reb"`
	Ast      float64 `json:"ast"`
	Stl      float64 `json:"stl"`
	Blk      float64 `json:"blk"`
	Turnover float64 `json:"turnover"`
	Pf       float64 `json:"pf"`
	Pts      float64 `json:"pts"`
}

// teamTotalMinutes is the fixed team minute total for a regulation game
// (5 players on the floor for 48 minutes).
const teamTotalMinutes = "240:00"

// SumTeamTotals folds player stat lines into a team total. Shooting
// percentages are derived with a zero-attempts guard so the result never
// carries a NaN.
func SumTeamTotals(stats []upstream.Stat) TeamTotals {
	var t TeamTotals
	for _, s := range stats {
		t.Fgm += s.Fgm
		t.Fga += s.Fga
		t.Fg3m += s.Fg3m
		t.Fg3a += s.Fg3a
		t.Ftm += s.Ftm
		t.Fta += s.Fta
		t.Oreb += s.Oreb
		t.Dreb += s.Dreb
		t.Reb += s.Reb
		t.Ast += s.Ast
		t.Stl += s.Stl
		t.Blk += s.Blk
		t.Turnover += s.Turnover
		t.Pf += s.Pf
		t.Pts += s.Pts
	}

	t.Min = teamTotalMinutes
	t.FgPct = pct(t.Fgm, t.Fga)
	t.Fg3Pct = pct(t.Fg3m, t.Fg3a)
	t.FtPct = pct(t.Ftm, t.Fta)
	return t
}

// pct derives makes/attempts with 0 for zero attempts, never NaN.
func pct(makes, attempts float64) float64 {
	if attempts <= 0 {
		return 0
	}
	return makes / attempts
}
