package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/fortuna/vesta/internal/store"
	"github.com/lib/pq"
)

// LineupRepository handles frozen game lineups.
type LineupRepository struct {
	db *store.Database
}

// NewLineupRepository creates a new lineup repository.
func NewLineupRepository(db *store.Database) *LineupRepository {
	return &LineupRepository{db: db}
}

// Get returns the lineup record for a game, or (nil, nil) when absent.
func (r *LineupRepository) Get(ctx context.Context, gameID int) (*store.LineupRecord, error) {
	query := `SELECT game_id, starters, data, cached_at FROM lineups WHERE game_id = $1`

	record := &store.LineupRecord{}
	var starters pq.Int64Array
	var data []byte

	err := r.db.DB().QueryRowContext(ctx, query, gameID).Scan(
		&record.GameID, &starters, &data, &record.CachedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying lineup for game %d: %w", gameID, err)
	}

	record.Starters = make([]int, len(starters))
	for i, id := range starters {
		record.Starters[i] = int(id)
	}

	if err := json.Unmarshal(data, &record.Entries); err != nil {
		return nil, fmt.Errorf("decoding lineup entries for game %d: %w", gameID, err)
	}

	return record, nil
}

// GetByGameIDs returns lineup records for the given games, keyed by
// game id. Games without lineup data are simply absent from the map.
func (r *LineupRepository) GetByGameIDs(ctx context.Context, gameIDs []int) (map[int]*store.LineupRecord, error) {
	if len(gameIDs) == 0 {
		return map[int]*store.LineupRecord{}, nil
	}

	query := `SELECT game_id, starters, data, cached_at FROM lineups WHERE game_id = ANY($1)`

	rows, err := r.db.DB().QueryContext(ctx, query, pq.Array(gameIDs))
	if err != nil {
		return nil, fmt.Errorf("querying lineups: %w", err)
	}
	defer rows.Close()

	records := make(map[int]*store.LineupRecord)
	for rows.Next() {
		record := &store.LineupRecord{}
		var starters pq.Int64Array
		var data []byte

		if err := rows.Scan(&record.GameID, &starters, &data, &record.CachedAt); err != nil {
			return nil, fmt.Errorf("scanning lineup: %w", err)
		}

		record.Starters = make([]int, len(starters))
		for i, id := range starters {
			record.Starters[i] = int(id)
		}
		if err := json.Unmarshal(data, &record.Entries); err != nil {
			return nil, fmt.Errorf("decoding lineup entries for game %d: %w", record.GameID, err)
		}

		records[record.GameID] = record
	}

	return records, rows.Err()
}

// Upsert writes a lineup record. Lineups freeze at tip-off, so the only
// legitimate overwrite is replacing an empty record with a populated one.
func (r *LineupRepository) Upsert(ctx context.Context, record *store.LineupRecord) error {
	data, err := json.Marshal(record.Entries)
	if err != nil {
		return fmt.Errorf("encoding lineup entries for game %d: %w", record.GameID, err)
	}

	starters := make(pq.Int64Array, len(record.Starters))
	for i, id := range record.Starters {
		starters[i] = int64(id)
	}

	query := `
		INSERT INTO lineups (game_id, starters, data, cached_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (game_id) DO UPDATE SET
			starters = EXCLUDED.starters,
			data = EXCLUDED.data,
			cached_at = NOW()
	`

	if _, err := r.db.DB().ExecContext(ctx, query, record.GameID, starters, data); err != nil {
		return fmt.Errorf("upserting lineup for game %d: %w", record.GameID, err)
	}

	return nil
}
