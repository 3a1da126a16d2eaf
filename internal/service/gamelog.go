package service

import (
	"context"
	"errors"
	"log"
	"sort"
	"strconv"

	"github.com/fortuna/vesta/internal/aggregate"
	"github.com/fortuna/vesta/internal/store"
	"github.com/fortuna/vesta/internal/store/repository"
	"github.com/fortuna/vesta/internal/upstream"
)

// gameLogBatchSize bounds a single game-log upsert statement.
const gameLogBatchSize = 50

// GameLog is a player's season of enriched game entries, newest first.
type GameLog struct {
	PlayerID int                  `json:"player_id"`
	Season   int                  `json:"season"`
	Games    []store.GameLogEntry `json:"games"`
}

// GameLogService serves per-player game logs.
type GameLogService struct {
	paginator   *upstream.Paginator
	gameLogRepo *repository.GameLogRepository
	teamRepo    *repository.TeamRepository
	lineups     *LineupService
}

// NewGameLogService creates a new game-log service.
func NewGameLogService(paginator *upstream.Paginator, gameLogRepo *repository.GameLogRepository, teamRepo *repository.TeamRepository, lineups *LineupService) *GameLogService {
	return &GameLogService{
		paginator:   paginator,
		gameLogRepo: gameLogRepo,
		teamRepo:    teamRepo,
		lineups:     lineups,
	}
}

// GetGameLog returns a player's game log for a season. Stored entries
// are served directly; otherwise the season's stat lines are fetched,
// enriched with opponent/result/starter data, persisted, and returned.
func (s *GameLogService) GetGameLog(ctx context.Context, playerID, season int) (*GameLog, error) {
	cached, err := s.gameLogRepo.GetPlayerSeason(ctx, playerID, season)
	if err != nil {
		log.Printf("[gamelog] ⚠️ store read failed for player %d season %d: %v", playerID, season, err)
	}
	if len(cached) > 0 {
		s.attachTeams(ctx, cached)
		return &GameLog{PlayerID: playerID, Season: season, Games: cached}, nil
	}

	lines, err := upstream.FetchAllInto[upstream.Stat](ctx, s.paginator, "/stats", queryValues(
		"seasons[]", strconv.Itoa(season),
		"player_ids[]", strconv.Itoa(playerID),
		"per_page", "100",
		"postseason", "false",
	), statPageLimit)
	if err != nil {
		var partial *upstream.PartialError
		if !errors.As(err, &partial) {
			return nil, err
		}
		log.Printf("[gamelog] ⚠️ partial stats for player %d season %d after %d pages: %v", playerID, season, partial.Pages, err)
	}

	entries := make([]store.GameLogEntry, 0, len(lines))
	for _, line := range lines {
		entry, err := aggregate.BuildGameLogEntry(playerID, line)
		if err != nil {
			log.Printf("[gamelog] skipping malformed stat line %d: %v", line.ID, err)
			continue
		}
		entries = append(entries, entry)
	}

	// Starter flags come from lineup data where it exists; games without
	// a lineup keep a nil started.
	var playedGames []int
	for _, entry := range entries {
		if !entry.DNP {
			playedGames = append(playedGames, entry.GameID)
		}
	}
	if len(playedGames) > 0 {
		aggregate.ApplyStarters(entries, s.lineups.StarterLookup(ctx, playerID, playedGames))
	}

	if ctx.Err() == nil {
		s.persist(ctx, entries)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].GameDate > entries[j].GameDate
	})
	s.attachTeams(ctx, entries)

	return &GameLog{PlayerID: playerID, Season: season, Games: entries}, nil
}

func (s *GameLogService) persist(ctx context.Context, entries []store.GameLogEntry) {
	for i := 0; i < len(entries); i += gameLogBatchSize {
		batch := entries[i:min(i+gameLogBatchSize, len(entries))]
		if err := s.gameLogRepo.UpsertBatch(ctx, batch); err != nil {
			log.Printf("[gamelog] ⚠️ persisting %d entries: %v", len(batch), err)
		}
	}
}

// attachTeams fills the team and opponent join fields.
func (s *GameLogService) attachTeams(ctx context.Context, entries []store.GameLogEntry) {
	idSet := make(map[int]bool)
	for _, entry := range entries {
		if entry.TeamID != 0 {
			idSet[entry.TeamID] = true
		}
		if entry.OpponentID != nil {
			idSet[*entry.OpponentID] = true
		}
	}
	if len(idSet) == 0 {
		return
	}

	teamIDs := make([]int, 0, len(idSet))
	for id := range idSet {
		teamIDs = append(teamIDs, id)
	}

	teams, err := s.teamRepo.GetByIDs(ctx, teamIDs)
	if err != nil {
		log.Printf("[gamelog] ⚠️ team join failed: %v", err)
		return
	}

	for i := range entries {
		entries[i].Team = teams[entries[i].TeamID]
		if entries[i].OpponentID != nil {
			entries[i].Opponent = teams[*entries[i].OpponentID]
		}
	}
}
