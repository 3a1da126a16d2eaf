package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fortuna/vesta/internal/store"
	"github.com/lib/pq"
)

// SeasonStatsRepository handles player and team season aggregates.
type SeasonStatsRepository struct {
	db *store.Database
}

// NewSeasonStatsRepository creates a new season stats repository.
func NewSeasonStatsRepository(db *store.Database) *SeasonStatsRepository {
	return &SeasonStatsRepository{db: db}
}

const playerSeasonColumns = `player_id, season, team_id, games_played, min, pts, reb, ast, stl, blk,
	turnover, pf, fgm, fga, fg_pct, fg3m, fg3a, fg3_pct, ftm, fta, ft_pct, oreb, dreb, updated_at`

// UpsertPlayerSeasons writes per-team season rows on the
// (player_id, season, team_id) conflict key. Rows with zero games are
// the caller's responsibility to filter; they are never valid here.
func (r *SeasonStatsRepository) UpsertPlayerSeasons(ctx context.Context, rows []store.PlayerSeasonStat) error {
	if len(rows) == 0 {
		return nil
	}

	var (
		placeholders []string
		args         []interface{}
	)
	for i, s := range rows {
		if s.GamesPlayed <= 0 {
			return fmt.Errorf("refusing to persist zero-game season row for player %d season %d team %d", s.PlayerID, s.Season, s.TeamID)
		}

		base := i * 23
		ph := make([]string, 23)
		for j := range ph {
			ph[j] = fmt.Sprintf("$%d", base+j+1)
		}
		placeholders = append(placeholders, "("+strings.Join(ph, ", ")+", NOW())")
		args = append(args,
			s.PlayerID, s.Season, s.TeamID, s.GamesPlayed, s.Min, s.Pts, s.Reb, s.Ast, s.Stl, s.Blk,
			s.Turnover, s.Pf, s.Fgm, s.Fga, s.FgPct, s.Fg3m, s.Fg3a, s.Fg3Pct, s.Ftm, s.Fta, s.FtPct,
			s.Oreb, s.Dreb,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO player_season_stats (%s)
		VALUES %s
		ON CONFLICT (player_id, season, team_id) DO UPDATE SET
			games_played = EXCLUDED.games_played,
			min = EXCLUDED.min, pts = EXCLUDED.pts, reb = EXCLUDED.reb,
			ast = EXCLUDED.ast, stl = EXCLUDED.stl, blk = EXCLUDED.blk,
			turnover = EXCLUDED.turnover, pf = EXCLUDED.pf,
			fgm = EXCLUDED.fgm, fga = EXCLUDED.fga, fg_pct = EXCLUDED.fg_pct,
			fg3m = EXCLUDED.fg3m, fg3a = EXCLUDED.fg3a, fg3_pct = EXCLUDED.fg3_pct,
			ftm = EXCLUDED.ftm, fta = EXCLUDED.fta, ft_pct = EXCLUDED.ft_pct,
			oreb = EXCLUDED.oreb, dreb = EXCLUDED.dreb,
			updated_at = NOW()
	`, playerSeasonColumns, strings.Join(placeholders, ", "))

	if _, err := r.db.DB().ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upserting %d player season rows: %w", len(rows), err)
	}

	return nil
}

// GetPlayerSeasons returns all season rows for a player, newest season
// first, most-played team first within a season.
func (r *SeasonStatsRepository) GetPlayerSeasons(ctx context.Context, playerID int) ([]*store.PlayerSeasonStat, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM player_season_stats
		WHERE player_id = $1
		ORDER BY season DESC, games_played DESC
	`, playerSeasonColumns)

	rows, err := r.db.DB().QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("querying player %d seasons: %w", playerID, err)
	}
	defer rows.Close()

	return scanPlayerSeasons(rows)
}

// GetSeasonStats returns season rows for a season filtered by team ids
// and/or player ids. Team filtering goes through the player's current
// team, matching how roster views are queried.
func (r *SeasonStatsRepository) GetSeasonStats(ctx context.Context, season int, teamIDs, playerIDs []int) ([]*store.PlayerSeasonStat, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM player_season_stats pss
		WHERE pss.season = $1
	`, prefixColumns("pss", playerSeasonColumns))
	args := []interface{}{season}

	if len(teamIDs) > 0 {
		args = append(args, pq.Array(teamIDs))
		query += fmt.Sprintf(` AND pss.player_id IN (SELECT id FROM players WHERE team_id = ANY($%d))`, len(args))
	}
	if len(playerIDs) > 0 {
		args = append(args, pq.Array(playerIDs))
		query += fmt.Sprintf(` AND pss.player_id = ANY($%d)`, len(args))
	}

	query += ` ORDER BY pss.player_id, pss.games_played DESC`

	rows, err := r.db.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying season %d stats: %w", season, err)
	}
	defer rows.Close()

	return scanPlayerSeasons(rows)
}

// UpsertTeamSeasons writes team aggregates on the (team_id, season)
// conflict key.
func (r *SeasonStatsRepository) UpsertTeamSeasons(ctx context.Context, rows []store.TeamSeasonStat) error {
	if len(rows) == 0 {
		return nil
	}

	var (
		placeholders []string
		args         []interface{}
	)
	for i, s := range rows {
		base := i * 22
		ph := make([]string, 22)
		for j := range ph {
			ph[j] = fmt.Sprintf("$%d", base+j+1)
		}
		placeholders = append(placeholders, "("+strings.Join(ph, ", ")+", NOW())")
		args = append(args,
			s.TeamID, s.Season, s.GamesPlayed, s.Min, s.Pts, s.Reb, s.Ast, s.Stl, s.Blk,
			s.Turnover, s.Pf, s.Fgm, s.Fga, s.FgPct, s.Fg3m, s.Fg3a, s.Fg3Pct, s.Ftm, s.Fta, s.FtPct,
			s.Oreb, s.Dreb,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO team_season_stats (team_id, season, games_played, min, pts, reb, ast, stl, blk,
			turnover, pf, fgm, fga, fg_pct, fg3m, fg3a, fg3_pct, ftm, fta, ft_pct, oreb, dreb, updated_at)
		VALUES %s
		ON CONFLICT (team_id, season) DO UPDATE SET
			games_played = EXCLUDED.games_played,
			min = EXCLUDED.min, pts = EXCLUDED.pts, reb = EXCLUDED.reb,
			ast = EXCLUDED.ast, stl = EXCLUDED.stl, blk = EXCLUDED.blk,
			turnover = EXCLUDED.turnover, pf = EXCLUDED.pf,
			fgm = EXCLUDED.fgm, fga = EXCLUDED.fga, fg_pct = EXCLUDED.fg_pct,
			fg3m = EXCLUDED.fg3m, fg3a = EXCLUDED.fg3a, fg3_pct = EXCLUDED.fg3_pct,
			ftm = EXCLUDED.ftm, fta = EXCLUDED.fta, ft_pct = EXCLUDED.ft_pct,
			oreb = EXCLUDED.oreb, dreb = EXCLUDED.dreb,
			updated_at = NOW()
	`, strings.Join(placeholders, ", "))

	if _, err := r.db.DB().ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upserting %d team season rows: %w", len(rows), err)
	}

	return nil
}

func scanPlayerSeasons(rows *sql.Rows) ([]*store.PlayerSeasonStat, error) {
	var stats []*store.PlayerSeasonStat
	for rows.Next() {
		s := &store.PlayerSeasonStat{}
		if err := rows.Scan(
			&s.PlayerID, &s.Season, &s.TeamID, &s.GamesPlayed, &s.Min, &s.Pts, &s.Reb,
			&s.Ast, &s.Stl, &s.Blk, &s.Turnover, &s.Pf, &s.Fgm, &s.Fga, &s.FgPct,
			&s.Fg3m, &s.Fg3a, &s.Fg3Pct, &s.Ftm, &s.Fta, &s.FtPct, &s.Oreb, &s.Dreb,
			&s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning season row: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// prefixColumns qualifies a comma-separated column list with an alias.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
