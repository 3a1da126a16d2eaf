// Package service implements the read paths: each request runs as one
// sequential pipeline of cache check, upstream fetch, enrichment, and
// write-back, with at most a small fixed fan-out of upstream calls.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/fortuna/vesta/internal/broadcast"
	"github.com/fortuna/vesta/internal/cache"
	"github.com/fortuna/vesta/internal/cachepolicy"
	"github.com/fortuna/vesta/internal/upstream"
	"github.com/jonboulle/clockwork"
)

// GameService serves the games-by-date read path.
type GameService struct {
	client     *upstream.Client
	cache      cache.Store
	policy     *cachepolicy.Engine
	reconciler *broadcast.Reconciler
	clock      clockwork.Clock
}

// NewGameService creates a new game service.
func NewGameService(client *upstream.Client, store cache.Store, policy *cachepolicy.Engine, reconciler *broadcast.Reconciler, clock clockwork.Clock) *GameService {
	return &GameService{
		client:     client,
		cache:      store,
		policy:     policy,
		reconciler: reconciler,
		clock:      clock,
	}
}

// GetGamesByDate returns the games played on date, broadcast-enriched.
// The cached list is served while the policy holds it valid; a date with
// potentially live games is always refetched.
func (s *GameService) GetGamesByDate(ctx context.Context, date time.Time) ([]upstream.Game, error) {
	key := cache.GamesKey(date)

	if entry, err := s.cache.Get(ctx, key); err == nil && entry != nil {
		if s.policy.GamesByDate(date, entry.CachedAt) {
			var games []upstream.Game
			if err := json.Unmarshal(entry.Payload, &games); err == nil {
				return games, nil
			}
		}
	}

	body, err := s.client.Get(ctx, "/games", queryValues("dates[]", date.Format("2006-01-02")))
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data []upstream.Game `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decoding games for %s: %w", date.Format("2006-01-02"), err)
	}

	games := s.reconciler.EnrichGames(ctx, date, envelope.Data)

	// A cancelled request writes nothing back.
	if ctx.Err() != nil {
		return games, ctx.Err()
	}
	if err := s.cache.Upsert(ctx, key, games, s.clock.Now()); err != nil {
		log.Printf("[games] ⚠️ cache write failed for %s: %v", key, err)
	}

	return games, nil
}
