package service

import (
	"context"
	"fmt"

	"github.com/fortuna/vesta/internal/store"
)

// TeamLister lists stored teams.
type TeamLister interface {
	GetAll(ctx context.Context) ([]*store.Team, error)
}

// RosterLister lists stored players by team.
type RosterLister interface {
	GetByTeamIDs(ctx context.Context, teamIDs []int) ([]*store.Player, error)
}

// TeamService serves team reference data and rosters out of the store.
// The sync driver keeps both tables warm; this path never reaches
// upstream.
type TeamService struct {
	teams   TeamLister
	rosters RosterLister
}

// NewTeamService creates a new team service.
func NewTeamService(teams TeamLister, rosters RosterLister) *TeamService {
	return &TeamService{
		teams:   teams,
		rosters: rosters,
	}
}

// GetTeams returns all stored teams ordered by abbreviation.
func (s *TeamService) GetTeams(ctx context.Context) ([]*store.Team, error) {
	teams, err := s.teams.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying teams: %w", err)
	}
	return teams, nil
}

// GetRoster returns the players currently on a team.
func (s *TeamService) GetRoster(ctx context.Context, teamID int) ([]*store.Player, error) {
	players, err := s.rosters.GetByTeamIDs(ctx, []int{teamID})
	if err != nil {
		return nil, fmt.Errorf("querying roster for team %d: %w", teamID, err)
	}
	return players, nil
}
