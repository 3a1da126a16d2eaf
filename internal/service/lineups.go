package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/fortuna/vesta/internal/cachepolicy"
	"github.com/fortuna/vesta/internal/store"
	"github.com/fortuna/vesta/internal/store/repository"
	"github.com/fortuna/vesta/internal/upstream"
	"github.com/jonboulle/clockwork"
)

// starterFetchLimit bounds how many uncached lineups a single game-log
// request will fetch from upstream.
const starterFetchLimit = 20

// LineupService serves game lineups and starter lookups. Lineups freeze
// at tip-off, so any record with starter data is permanent.
type LineupService struct {
	client     *upstream.Client
	lineupRepo *repository.LineupRepository
	policy     *cachepolicy.Engine
	clock      clockwork.Clock
}

// NewLineupService creates a new lineup service.
func NewLineupService(client *upstream.Client, lineupRepo *repository.LineupRepository, policy *cachepolicy.Engine, clock clockwork.Clock) *LineupService {
	return &LineupService{
		client:     client,
		lineupRepo: lineupRepo,
		policy:     policy,
		clock:      clock,
	}
}

// GetLineups returns the lineup record for a game. A game with no lineup
// data yet returns an empty record, which is never persisted.
func (s *LineupService) GetLineups(ctx context.Context, gameID int) (*store.LineupRecord, error) {
	cached, err := s.lineupRepo.Get(ctx, gameID)
	if err != nil {
		log.Printf("[lineups] ⚠️ store read failed for game %d: %v", gameID, err)
	}
	if cached != nil && s.policy.Lineups(len(cached.Starters)) {
		return cached, nil
	}

	record, err := s.fetchLineups(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if len(record.Entries) > 0 && ctx.Err() == nil {
		if err := s.lineupRepo.Upsert(ctx, record); err != nil {
			log.Printf("[lineups] ⚠️ store write failed for game %d: %v", gameID, err)
		}
	}

	return record, nil
}

// StarterLookup reports, per game id, whether playerID started. Games
// without lineup data are absent from the result. Uncached games are
// fetched from upstream up to starterFetchLimit per call; the rest wait
// for a later request.
func (s *LineupService) StarterLookup(ctx context.Context, playerID int, gameIDs []int) map[int]bool {
	started := make(map[int]bool)

	cached, err := s.lineupRepo.GetByGameIDs(ctx, gameIDs)
	if err != nil {
		log.Printf("[lineups] ⚠️ bulk store read failed: %v", err)
		cached = map[int]*store.LineupRecord{}
	}

	var missing []int
	for _, gameID := range gameIDs {
		if record, ok := cached[gameID]; ok && len(record.Starters) > 0 {
			started[gameID] = record.HasStarter(playerID)
			continue
		}
		missing = append(missing, gameID)
	}
	if len(missing) > starterFetchLimit {
		missing = missing[:starterFetchLimit]
	}

	for _, gameID := range missing {
		if ctx.Err() != nil {
			break
		}

		record, err := s.fetchLineups(ctx, gameID)
		if err != nil {
			continue
		}
		if len(record.Entries) == 0 {
			continue
		}

		if err := s.lineupRepo.Upsert(ctx, record); err != nil {
			log.Printf("[lineups] ⚠️ store write failed for game %d: %v", gameID, err)
		}
		started[gameID] = record.HasStarter(playerID)

		select {
		case <-ctx.Done():
			return started
		case <-s.clock.After(100 * time.Millisecond):
		}
	}

	return started
}

// fetchLineups pulls a game's lineup entries from upstream. A 404 means
// no lineup data exists yet and yields an empty record.
func (s *LineupService) fetchLineups(ctx context.Context, gameID int) (*store.LineupRecord, error) {
	record := &store.LineupRecord{
		GameID:   gameID,
		Starters: []int{},
		Entries:  []store.LineupPlayer{},
		CachedAt: s.clock.Now(),
	}

	body, err := s.client.Get(ctx, "/lineups", queryValues(
		"game_ids[]", strconv.Itoa(gameID),
		"per_page", "100",
	))
	if err != nil {
		var notFound *upstream.NotFoundError
		if errors.As(err, &notFound) {
			return record, nil
		}
		return nil, err
	}

	var envelope struct {
		Data []upstream.LineupEntry `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decoding lineups for game %d: %w", gameID, err)
	}

	for _, entry := range envelope.Data {
		if entry.Player == nil || entry.Player.ID == 0 {
			continue
		}
		player := store.LineupPlayer{
			PlayerID: entry.Player.ID,
			Starter:  entry.Starter,
			Position: entry.Position,
		}
		if entry.Team != nil {
			player.TeamID = entry.Team.ID
		}
		record.Entries = append(record.Entries, player)

		if entry.Starter {
			record.Starters = append(record.Starters, entry.Player.ID)
		}
	}

	return record, nil
}
