package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"

	"github.com/fortuna/vesta/internal/aggregate"
	"github.com/fortuna/vesta/internal/cache"
	"github.com/fortuna/vesta/internal/cachepolicy"
	"github.com/fortuna/vesta/internal/upstream"
	"github.com/jonboulle/clockwork"
)

// BoxScore is a game's full per-team breakdown.
type BoxScore struct {
	Game        upstream.Game `json:"game"`
	HomeTeam    TeamBox       `json:"home_team"`
	VisitorTeam TeamBox       `json:"visitor_team"`
}

// TeamBox is one team's side of a box score.
type TeamBox struct {
	Team    *upstream.Team       `json:"team"`
	Players []upstream.Stat      `json:"players"`
	Totals  aggregate.TeamTotals `json:"totals"`
}

// BoxScoreService serves the box-score read path.
type BoxScoreService struct {
	client *upstream.Client
	cache  cache.Store
	policy *cachepolicy.Engine
	clock  clockwork.Clock
}

// NewBoxScoreService creates a new box-score service.
func NewBoxScoreService(client *upstream.Client, store cache.Store, policy *cachepolicy.Engine, clock clockwork.Clock) *BoxScoreService {
	return &BoxScoreService{
		client: client,
		cache:  store,
		policy: policy,
		clock:  clock,
	}
}

// GetBoxScore returns the box score for gameID. A final game's cached box
// score is served forever; in-progress games refetch after a short TTL.
// The game record and the stat lines are two independent upstream calls
// issued concurrently.
func (s *BoxScoreService) GetBoxScore(ctx context.Context, gameID int) (*BoxScore, error) {
	key := cache.BoxScoreKey(gameID)

	if entry, err := s.cache.Get(ctx, key); err == nil && entry != nil {
		var cached BoxScore
		if err := json.Unmarshal(entry.Payload, &cached); err == nil {
			if s.policy.BoxScore(cached.Game.Status, entry.CachedAt) {
				return &cached, nil
			}
		}
	}

	type statsResult struct {
		stats []upstream.Stat
		err   error
	}
	statsCh := make(chan statsResult, 1)

	go func() {
		body, err := s.client.Get(ctx, "/stats", queryValues(
			"game_ids[]", strconv.Itoa(gameID),
			"per_page", "100",
		))
		if err != nil {
			statsCh <- statsResult{err: err}
			return
		}
		var envelope struct {
			Data []upstream.Stat `json:"data"`
		}
		if err := json.Unmarshal(body, &envelope); err != nil {
			statsCh <- statsResult{err: fmt.Errorf("decoding stats for game %d: %w", gameID, err)}
			return
		}
		statsCh <- statsResult{stats: envelope.Data}
	}()

	gameBody, gameErr := s.client.Get(ctx, fmt.Sprintf("/games/%d", gameID), nil)
	stats := <-statsCh

	if gameErr != nil {
		return nil, gameErr
	}
	if stats.err != nil {
		return nil, stats.err
	}

	var gameEnvelope struct {
		Data upstream.Game `json:"data"`
	}
	if err := json.Unmarshal(gameBody, &gameEnvelope); err != nil {
		return nil, fmt.Errorf("decoding game %d: %w", gameID, err)
	}
	game := gameEnvelope.Data

	if game.HomeTeam == nil || game.VisitorTeam == nil {
		return nil, fmt.Errorf("game %d is missing team records", gameID)
	}

	var homeStats, visitorStats []upstream.Stat
	for _, line := range stats.stats {
		if line.Team == nil {
			continue
		}
		switch line.Team.ID {
		case game.HomeTeam.ID:
			homeStats = append(homeStats, line)
		case game.VisitorTeam.ID:
			visitorStats = append(visitorStats, line)
		}
	}

	box := &BoxScore{
		Game: game,
		HomeTeam: TeamBox{
			Team:    game.HomeTeam,
			Players: homeStats,
			Totals:  aggregate.SumTeamTotals(homeStats),
		},
		VisitorTeam: TeamBox{
			Team:    game.VisitorTeam,
			Players: visitorStats,
			Totals:  aggregate.SumTeamTotals(visitorStats),
		},
	}

	if ctx.Err() != nil {
		return box, ctx.Err()
	}
	if err := s.cache.Upsert(ctx, key, box, s.clock.Now()); err != nil {
		log.Printf("[boxscore] ⚠️ cache write failed for %s: %v", key, err)
	}

	return box, nil
}
