package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fortuna/vesta/internal/store"
	"github.com/lib/pq"
)

// TeamRepository handles team reference data access.
type TeamRepository struct {
	db *store.Database
}

// NewTeamRepository creates a new team repository.
func NewTeamRepository(db *store.Database) *TeamRepository {
	return &TeamRepository{db: db}
}

// Upsert inserts or updates a team by id.
func (r *TeamRepository) Upsert(ctx context.Context, team *store.Team) error {
	query := `
		INSERT INTO teams (id, conference, division, city, name, full_name, abbreviation, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (id) DO UPDATE SET
			conference = EXCLUDED.conference,
			division = EXCLUDED.division,
			city = EXCLUDED.city,
			name = EXCLUDED.name,
			full_name = EXCLUDED.full_name,
			abbreviation = EXCLUDED.abbreviation,
			updated_at = NOW()
	`

	_, err := r.db.DB().ExecContext(ctx, query,
		team.ID, team.Conference, team.Division, team.City, team.Name, team.FullName, team.Abbreviation,
	)
	if err != nil {
		return fmt.Errorf("upserting team %d: %w", team.ID, err)
	}

	return nil
}

// GetAll returns all teams ordered by abbreviation.
func (r *TeamRepository) GetAll(ctx context.Context) ([]*store.Team, error) {
	query := `
		SELECT id, conference, division, city, name, full_name, abbreviation, updated_at
		FROM teams
		ORDER BY abbreviation
	`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying teams: %w", err)
	}
	defer rows.Close()

	return scanTeams(rows)
}

// GetByID returns a single team.
func (r *TeamRepository) GetByID(ctx context.Context, teamID int) (*store.Team, error) {
	query := `
		SELECT id, conference, division, city, name, full_name, abbreviation, updated_at
		FROM teams
		WHERE id = $1
	`

	team := &store.Team{}
	err := r.db.DB().QueryRowContext(ctx, query, teamID).Scan(
		&team.ID, &team.Conference, &team.Division, &team.City,
		&team.Name, &team.FullName, &team.Abbreviation, &team.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("team %d not found", teamID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying team %d: %w", teamID, err)
	}

	return team, nil
}

// GetByIDs returns the teams with the given ids, keyed by id.
func (r *TeamRepository) GetByIDs(ctx context.Context, teamIDs []int) (map[int]*store.Team, error) {
	if len(teamIDs) == 0 {
		return map[int]*store.Team{}, nil
	}

	query := `
		SELECT id, conference, division, city, name, full_name, abbreviation, updated_at
		FROM teams
		WHERE id = ANY($1)
	`

	rows, err := r.db.DB().QueryContext(ctx, query, pq.Array(teamIDs))
	if err != nil {
		return nil, fmt.Errorf("querying teams by ids: %w", err)
	}
	defer rows.Close()

	teams, err := scanTeams(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[int]*store.Team, len(teams))
	for _, team := range teams {
		byID[team.ID] = team
	}
	return byID, nil
}

func scanTeams(rows *sql.Rows) ([]*store.Team, error) {
	var teams []*store.Team
	for rows.Next() {
		team := &store.Team{}
		if err := rows.Scan(
			&team.ID, &team.Conference, &team.Division, &team.City,
			&team.Name, &team.FullName, &team.Abbreviation, &team.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning team: %w", err)
		}
		teams = append(teams, team)
	}

	return teams, rows.Err()
}
