package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"

	"github.com/fortuna/vesta/internal/cache"
	"github.com/fortuna/vesta/internal/cachepolicy"
	"github.com/fortuna/vesta/internal/upstream"
	"github.com/jonboulle/clockwork"
)

// TeamStanding is one team's record, keyed by abbreviation in a
// StandingsMap for cross-source lookups.
type TeamStanding struct {
	Wins           int    `json:"wins"`
	Losses         int    `json:"losses"`
	Conference     string `json:"conference"`
	ConferenceRank int    `json:"conference_rank"`
}

// StandingsMap maps canonical team abbreviation to standing.
type StandingsMap map[string]TeamStanding

// StandingsService serves the standings read path.
type StandingsService struct {
	client *upstream.Client
	cache  cache.Store
	policy *cachepolicy.Engine
	clock  clockwork.Clock
}

// NewStandingsService creates a new standings service.
func NewStandingsService(client *upstream.Client, store cache.Store, policy *cachepolicy.Engine, clock clockwork.Clock) *StandingsService {
	return &StandingsService{
		client: client,
		cache:  store,
		policy: policy,
		clock:  clock,
	}
}

// GetStandings returns the standings map for a season. Standings move
// whenever any game finishes, so the cache window is short regardless of
// season.
func (s *StandingsService) GetStandings(ctx context.Context, season int) (StandingsMap, error) {
	key := cache.StandingsKey(season)

	if entry, err := s.cache.Get(ctx, key); err == nil && entry != nil {
		if s.policy.Standings(entry.CachedAt) {
			var cached StandingsMap
			if err := json.Unmarshal(entry.Payload, &cached); err == nil {
				return cached, nil
			}
		}
	}

	body, err := s.client.Get(ctx, "/standings", queryValues("season", strconv.Itoa(season)))
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data []upstream.StandingRow `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decoding standings for season %d: %w", season, err)
	}

	standings := make(StandingsMap, len(envelope.Data))
	for _, row := range envelope.Data {
		standings[row.Team.Abbreviation] = TeamStanding{
			Wins:           row.Wins,
			Losses:         row.Losses,
			Conference:     row.Team.Conference,
			ConferenceRank: row.ConferenceRank,
		}
	}

	if ctx.Err() != nil {
		return standings, ctx.Err()
	}
	if err := s.cache.Upsert(ctx, key, standings, s.clock.Now()); err != nil {
		log.Printf("[standings] ⚠️ cache write failed for %s: %v", key, err)
	}

	return standings, nil
}
