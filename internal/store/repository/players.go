package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fortuna/vesta/internal/store"
	"github.com/lib/pq"
)

// PlayerRepository handles player bio data access.
type PlayerRepository struct {
	db *store.Database
}

// NewPlayerRepository creates a new player repository.
func NewPlayerRepository(db *store.Database) *PlayerRepository {
	return &PlayerRepository{db: db}
}

const playerColumns = `id, first_name, last_name, team_id, position, jersey_number,
	height, weight, country, draft_year, draft_round, draft_number, updated_at`

// Upsert inserts or updates a single player by id.
func (r *PlayerRepository) Upsert(ctx context.Context, player *store.Player) error {
	return r.UpsertBatch(ctx, []*store.Player{player})
}

// UpsertBatch writes players in one multi-row statement. Callers chunk
// input to respect payload limits; this executes whatever it is given.
func (r *PlayerRepository) UpsertBatch(ctx context.Context, players []*store.Player) error {
	if len(players) == 0 {
		return nil
	}

	var (
		placeholders []string
		args         []interface{}
	)
	for i, p := range players {
		base := i * 12
		placeholders = append(placeholders, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, NOW())",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9, base+10, base+11, base+12,
		))
		args = append(args,
			p.ID, p.FirstName, p.LastName, p.TeamID, p.Position, p.JerseyNumber,
			p.Height, p.Weight, p.Country, p.DraftYear, p.DraftRound, p.DraftNumber,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO players (id, first_name, last_name, team_id, position, jersey_number,
			height, weight, country, draft_year, draft_round, draft_number, updated_at)
		VALUES %s
		ON CONFLICT (id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			team_id = EXCLUDED.team_id,
			position = EXCLUDED.position,
			jersey_number = EXCLUDED.jersey_number,
			height = EXCLUDED.height,
			weight = EXCLUDED.weight,
			country = EXCLUDED.country,
			draft_year = EXCLUDED.draft_year,
			draft_round = EXCLUDED.draft_round,
			draft_number = EXCLUDED.draft_number,
			updated_at = NOW()
	`, strings.Join(placeholders, ", "))

	if _, err := r.db.DB().ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upserting %d players: %w", len(players), err)
	}

	return nil
}

// GetByID returns a single player. A missing player returns
// (nil, sql.ErrNoRows) so callers can distinguish absence from failure.
func (r *PlayerRepository) GetByID(ctx context.Context, playerID int) (*store.Player, error) {
	query := fmt.Sprintf(`SELECT %s FROM players WHERE id = $1`, playerColumns)

	player := &store.Player{}
	err := r.db.DB().QueryRowContext(ctx, query, playerID).Scan(
		&player.ID, &player.FirstName, &player.LastName, &player.TeamID,
		&player.Position, &player.JerseyNumber, &player.Height, &player.Weight,
		&player.Country, &player.DraftYear, &player.DraftRound, &player.DraftNumber,
		&player.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("querying player %d: %w", playerID, err)
	}

	return player, nil
}

// GetByTeamIDs returns the players currently on the given teams.
func (r *PlayerRepository) GetByTeamIDs(ctx context.Context, teamIDs []int) ([]*store.Player, error) {
	if len(teamIDs) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(teamIDs))
	args := make([]interface{}, len(teamIDs))
	for i, id := range teamIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT %s FROM players
		WHERE team_id IN (%s)
		ORDER BY last_name, first_name
	`, playerColumns, strings.Join(placeholders, ", "))

	rows, err := r.db.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying players by team: %w", err)
	}
	defer rows.Close()

	return scanPlayers(rows)
}

// GetByIDs returns players keyed by id. Missing ids are simply absent.
func (r *PlayerRepository) GetByIDs(ctx context.Context, playerIDs []int) (map[int]*store.Player, error) {
	if len(playerIDs) == 0 {
		return map[int]*store.Player{}, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM players WHERE id = ANY($1)`, playerColumns)

	rows, err := r.db.DB().QueryContext(ctx, query, pq.Array(playerIDs))
	if err != nil {
		return nil, fmt.Errorf("querying players by id: %w", err)
	}
	defer rows.Close()

	players, err := scanPlayers(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[int]*store.Player, len(players))
	for _, player := range players {
		byID[player.ID] = player
	}
	return byID, nil
}

func scanPlayers(rows *sql.Rows) ([]*store.Player, error) {
	var players []*store.Player
	for rows.Next() {
		player := &store.Player{}
		if err := rows.Scan(
			&player.ID, &player.FirstName, &player.LastName, &player.TeamID,
			&player.Position, &player.JerseyNumber, &player.Height, &player.Weight,
			&player.Country, &player.DraftYear, &player.DraftRound, &player.DraftNumber,
			&player.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning player: %w", err)
		}
		players = append(players, player)
	}

	return players, rows.Err()
}
