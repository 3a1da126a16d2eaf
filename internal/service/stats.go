package service

import (
	"context"
	"fmt"
	"log"

	"github.com/fortuna/vesta/internal/store"
	"github.com/fortuna/vesta/internal/store/repository"
)

// PlayerSeasonLine pairs a season-average row with the player it
// belongs to and that player's injury designation, if any.
type PlayerSeasonLine struct {
	Player *store.Player           `json:"player"`
	Injury *store.PlayerInjury     `json:"injury"`
	Stats  *store.PlayerSeasonStat `json:"stats"`
}

// StatsService answers filtered season-average queries out of the store.
// This path never reaches upstream; the sync driver keeps the rows warm.
type StatsService struct {
	seasonRepo *repository.SeasonStatsRepository
	playerRepo *repository.PlayerRepository
	injuryRepo *repository.InjuryRepository
}

// NewStatsService creates a new stats query service.
func NewStatsService(seasonRepo *repository.SeasonStatsRepository, playerRepo *repository.PlayerRepository, injuryRepo *repository.InjuryRepository) *StatsService {
	return &StatsService{
		seasonRepo: seasonRepo,
		playerRepo: playerRepo,
		injuryRepo: injuryRepo,
	}
}

// GetSeasonStats returns season averages for a season, filtered by team
// ids and/or player ids. At least one filter is required.
func (s *StatsService) GetSeasonStats(ctx context.Context, season int, teamIDs, playerIDs []int) ([]PlayerSeasonLine, error) {
	if len(teamIDs) == 0 && len(playerIDs) == 0 {
		return nil, fmt.Errorf("season stats query requires team or player filters")
	}

	rows, err := s.seasonRepo.GetSeasonStats(ctx, season, teamIDs, playerIDs)
	if err != nil {
		return nil, fmt.Errorf("querying season stats: %w", err)
	}

	ids := make([]int, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.PlayerID)
	}

	players, err := s.playerRepo.GetByIDs(ctx, ids)
	if err != nil {
		log.Printf("[stats] ⚠️ player join failed: %v", err)
		players = map[int]*store.Player{}
	}

	injuries, err := s.injuryRepo.GetByPlayerIDs(ctx, ids)
	if err != nil {
		log.Printf("[stats] ⚠️ injury join failed: %v", err)
		injuries = map[int]*store.PlayerInjury{}
	}

	lines := make([]PlayerSeasonLine, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, PlayerSeasonLine{
			Player: players[row.PlayerID],
			Stats:  row,
		})
	}

	return attachInjuries(lines, injuries), nil
}

// attachInjuries joins the injury snapshot onto stat lines. Players not
// on the report keep a nil injury.
func attachInjuries(lines []PlayerSeasonLine, injuries map[int]*store.PlayerInjury) []PlayerSeasonLine {
	for i := range lines {
		if lines[i].Stats == nil {
			continue
		}
		lines[i].Injury = injuries[lines[i].Stats.PlayerID]
	}
	return lines
}
