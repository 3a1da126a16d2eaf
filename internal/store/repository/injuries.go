package repository

import (
	"context"
	"fmt"

	"github.com/fortuna/vesta/internal/store"
	"github.com/lib/pq"
)

// InjuryRepository holds the provider's injury report snapshot.
type InjuryRepository struct {
	db *store.Database
}

// NewInjuryRepository creates a new injury repository.
func NewInjuryRepository(db *store.Database) *InjuryRepository {
	return &InjuryRepository{db: db}
}

// ReplaceAll swaps the snapshot for a fresh one. The provider's report
// is authoritative, so players no longer listed are cleared rather than
// left stale.
func (r *InjuryRepository) ReplaceAll(ctx context.Context, injuries []*store.PlayerInjury) error {
	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning injury snapshot: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM player_injuries`); err != nil {
		return fmt.Errorf("clearing injury snapshot: %w", err)
	}

	query := `
		INSERT INTO player_injuries (player_id, status, return_date, description, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (player_id) DO UPDATE SET
			status = EXCLUDED.status,
			return_date = EXCLUDED.return_date,
			description = EXCLUDED.description,
			updated_at = NOW()
	`

	for _, injury := range injuries {
		if _, err := tx.ExecContext(ctx, query,
			injury.PlayerID, injury.Status, injury.ReturnDate, injury.Description,
		); err != nil {
			return fmt.Errorf("inserting injury for player %d: %w", injury.PlayerID, err)
		}
	}

	return tx.Commit()
}

// Get returns a player's injury row, or nil when the player is not on
// the report.
func (r *InjuryRepository) Get(ctx context.Context, playerID int) (*store.PlayerInjury, error) {
	injuries, err := r.GetByPlayerIDs(ctx, []int{playerID})
	if err != nil {
		return nil, err
	}
	return injuries[playerID], nil
}

// GetByPlayerIDs returns injury rows keyed by player id. Players not on
// the report have no entry.
func (r *InjuryRepository) GetByPlayerIDs(ctx context.Context, playerIDs []int) (map[int]*store.PlayerInjury, error) {
	if len(playerIDs) == 0 {
		return map[int]*store.PlayerInjury{}, nil
	}

	query := `
		SELECT player_id, status, return_date, description, updated_at
		FROM player_injuries
		WHERE player_id = ANY($1)
	`

	rows, err := r.db.DB().QueryContext(ctx, query, pq.Array(playerIDs))
	if err != nil {
		return nil, fmt.Errorf("querying injuries: %w", err)
	}
	defer rows.Close()

	injuries := make(map[int]*store.PlayerInjury)
	for rows.Next() {
		injury := &store.PlayerInjury{}
		if err := rows.Scan(
			&injury.PlayerID, &injury.Status, &injury.ReturnDate, &injury.Description, &injury.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning injury: %w", err)
		}
		injuries[injury.PlayerID] = injury
	}

	return injuries, rows.Err()
}
