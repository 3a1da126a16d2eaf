package aggregate

import (
	"sort"
	"time"

	"github.com/fortuna/vesta/internal/store"
	"github.com/fortuna/vesta/internal/upstream"
)

// PerTeamSeasonAverages partitions a player's stat lines for one season
// by team and folds each partition into a season-average row.
//
// Lines with zero minutes are DNPs and are excluded from every mean and
// from games_played. A team with no qualifying lines is omitted entirely,
// never emitted as a zero row: a player who suited up for N teams gets
// exactly N rows, each with games_played > 0.
func PerTeamSeasonAverages(playerID, season int, lines []upstream.Stat) []store.PlayerSeasonStat {
	type teamLines struct {
		team  *upstream.Team
		lines []upstream.Stat
	}

	byTeam := make(map[int]*teamLines)
	for _, line := range lines {
		if line.Team == nil || line.Team.ID == 0 {
			continue
		}
		if !line.Min.Played() {
			continue
		}
		tl, ok := byTeam[line.Team.ID]
		if !ok {
			tl = &teamLines{team: line.Team}
			byTeam[line.Team.ID] = tl
		}
		tl.lines = append(tl.lines, line)
	}

	rows := make([]store.PlayerSeasonStat, 0, len(byTeam))
	for teamID, tl := range byTeam {
		n := float64(len(tl.lines))

		var sum store.PlayerSeasonStat
		for _, l := range tl.lines {
			sum.Min += l.Min.Float()
			sum.Pts += l.Pts
			sum.Reb += l.Reb
			sum.Ast += l.Ast
			sum.Stl += l.Stl
			sum.Blk += l.Blk
			sum.Turnover += l.Turnover
			sum.Pf += l.Pf
			sum.Fgm += l.Fgm
			sum.Fga += l.Fga
			sum.Fg3m += l.Fg3m
			sum.Fg3a += l.Fg3a
			sum.Ftm += l.Ftm
			sum.Fta += l.Fta
			sum.Oreb += l.Oreb
			sum.Dreb += l.Dreb
		}

		rows = append(rows, store.PlayerSeasonStat{
			PlayerID:    playerID,
			Season:      season,
			TeamID:      teamID,
			Team:        convertTeam(tl.team),
			GamesPlayed: len(tl.lines),
			Min:         sum.Min / n,
			Pts:         sum.Pts / n,
			Reb:         sum.Reb / n,
			Ast:         sum.Ast / n,
			Stl:         sum.Stl / n,
			Blk:         sum.Blk / n,
			Turnover:    sum.Turnover / n,
			Pf:          sum.Pf / n,
			Fgm:         sum.Fgm / n,
			Fga:         sum.Fga / n,
			FgPct:       pct(sum.Fgm, sum.Fga),
			Fg3m:        sum.Fg3m / n,
			Fg3a:        sum.Fg3a / n,
			Fg3Pct:      pct(sum.Fg3m, sum.Fg3a),
			Ftm:         sum.Ftm / n,
			Fta:         sum.Fta / n,
			FtPct:       pct(sum.Ftm, sum.Fta),
			Oreb:        sum.Oreb / n,
			Dreb:        sum.Dreb / n,
		})
	}

	// Most-played team first, team id as tiebreak, so output is stable.
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].GamesPlayed != rows[j].GamesPlayed {
			return rows[i].GamesPlayed > rows[j].GamesPlayed
		}
		return rows[i].TeamID < rows[j].TeamID
	})

	return rows
}

func convertTeam(t *upstream.Team) *store.Team {
	if t == nil {
		return nil
	}
	return &store.Team{
		ID:           t.ID,
		Conference:   t.Conference,
		Division:     t.Division,
		City:         t.City,
		Name:         t.Name,
		FullName:     t.FullName,
		Abbreviation: t.Abbreviation,
		UpdatedAt:    time.Time{},
	}
}
