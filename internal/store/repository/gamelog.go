package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/fortuna/vesta/internal/store"
)

// GameLogRepository handles per-game participation records.
type GameLogRepository struct {
	db *store.Database
}

// NewGameLogRepository creates a new game log repository.
func NewGameLogRepository(db *store.Database) *GameLogRepository {
	return &GameLogRepository{db: db}
}

const gameLogColumns = `player_id, game_id, game_date, season, team_id, opponent_id, is_home,
	result, final_score, dnp, started, min, pts, reb, ast, stl, blk, turnover, pf,
	fgm, fga, fg3m, fg3a, ftm, fta, oreb, dreb, plus_minus`

// UpsertBatch writes game-log entries on the (player_id, game_id)
// conflict key. Callers chunk input to respect payload limits.
func (r *GameLogRepository) UpsertBatch(ctx context.Context, entries []store.GameLogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	var (
		placeholders []string
		args         []interface{}
	)
	for i, e := range entries {
		base := i * 28
		ph := make([]string, 28)
		for j := range ph {
			ph[j] = fmt.Sprintf("$%d", base+j+1)
		}
		placeholders = append(placeholders, "("+strings.Join(ph, ", ")+", NOW())")
		args = append(args,
			e.PlayerID, e.GameID, e.GameDate, e.Season, e.TeamID, e.OpponentID, e.IsHome,
			e.Result, e.FinalScore, e.DNP, e.Started, e.Min, e.Pts, e.Reb, e.Ast, e.Stl, e.Blk,
			e.Turnover, e.Pf, e.Fgm, e.Fga, e.Fg3m, e.Fg3a, e.Ftm, e.Fta, e.Oreb, e.Dreb, e.PlusMinus,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO player_game_log (%s, updated_at)
		VALUES %s
		ON CONFLICT (player_id, game_id) DO UPDATE SET
			game_date = EXCLUDED.game_date,
			season = EXCLUDED.season,
			team_id = EXCLUDED.team_id,
			opponent_id = EXCLUDED.opponent_id,
			is_home = EXCLUDED.is_home,
			result = EXCLUDED.result,
			final_score = EXCLUDED.final_score,
			dnp = EXCLUDED.dnp,
			started = COALESCE(EXCLUDED.started, player_game_log.started),
			min = EXCLUDED.min,
			pts = EXCLUDED.pts, reb = EXCLUDED.reb, ast = EXCLUDED.ast,
			stl = EXCLUDED.stl, blk = EXCLUDED.blk, turnover = EXCLUDED.turnover,
			pf = EXCLUDED.pf, fgm = EXCLUDED.fgm, fga = EXCLUDED.fga,
			fg3m = EXCLUDED.fg3m, fg3a = EXCLUDED.fg3a,
			ftm = EXCLUDED.ftm, fta = EXCLUDED.fta,
			oreb = EXCLUDED.oreb, dreb = EXCLUDED.dreb,
			plus_minus = EXCLUDED.plus_minus,
			updated_at = NOW()
	`, gameLogColumns, strings.Join(placeholders, ", "))

	if _, err := r.db.DB().ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upserting %d game log entries: %w", len(entries), err)
	}

	return nil
}

// GetPlayerSeason returns a player's game log for one season, newest
// game first.
func (r *GameLogRepository) GetPlayerSeason(ctx context.Context, playerID, season int) ([]store.GameLogEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM player_game_log
		WHERE player_id = $1 AND season = $2
		ORDER BY game_date DESC
	`, gameLogColumns)

	rows, err := r.db.DB().QueryContext(ctx, query, playerID, season)
	if err != nil {
		return nil, fmt.Errorf("querying game log for player %d season %d: %w", playerID, season, err)
	}
	defer rows.Close()

	var entries []store.GameLogEntry
	for rows.Next() {
		var e store.GameLogEntry
		if err := rows.Scan(
			&e.PlayerID, &e.GameID, &e.GameDate, &e.Season, &e.TeamID, &e.OpponentID, &e.IsHome,
			&e.Result, &e.FinalScore, &e.DNP, &e.Started, &e.Min, &e.Pts, &e.Reb, &e.Ast, &e.Stl,
			&e.Blk, &e.Turnover, &e.Pf, &e.Fgm, &e.Fga, &e.Fg3m, &e.Fg3a, &e.Ftm, &e.Fta,
			&e.Oreb, &e.Dreb, &e.PlusMinus,
		); err != nil {
			return nil, fmt.Errorf("scanning game log entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
