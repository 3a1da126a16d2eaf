// Package cachepolicy decides whether cached records are still usable.
//
// Freshness costs API quota, so it is only paid where the data can still
// change. Two signals decide that everywhere: game finality and elapsed
// time since the game's date. The policy never touches the store; it is a
// set of pure functions over an injected clock.
package cachepolicy

import (
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	// GamesTTL bounds how long a same-window game list is trusted.
	GamesTTL = 30 * time.Minute

	// BoxScoreTTL bounds how long a non-final box score is trusted.
	BoxScoreTTL = 5 * time.Minute

	// StandingsTTL applies unconditionally; standings move whenever any
	// game finishes.
	StandingsTTL = 5 * time.Minute

	// historicalAge is the point past which a game date can no longer
	// host a live game.
	historicalAge = 24 * time.Hour
)

// Engine evaluates cache validity per entity kind.
type Engine struct {
	clock clockwork.Clock
}

// NewEngine creates a policy engine on the real clock.
func NewEngine() *Engine {
	return NewEngineWithClock(clockwork.NewRealClock())
}

// NewEngineWithClock creates a policy engine on the given clock.
func NewEngineWithClock(clock clockwork.Clock) *Engine {
	return &Engine{clock: clock}
}

// GamesByDate reports whether a cached game list for gameDate is valid.
// Today is never valid (games may be live), dates more than 24h in the
// past are always valid, anything else gets GamesTTL from cache time.
func (e *Engine) GamesByDate(gameDate time.Time, cachedAt time.Time) bool {
	now := e.clock.Now()

	day := func(t time.Time) time.Time {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	if day(gameDate).Equal(day(now)) {
		return false
	}
	if now.Sub(gameDate) > historicalAge {
		return true
	}
	return now.Sub(cachedAt) < GamesTTL
}

// BoxScore reports whether a cached box score is valid. A final game's
// box score never changes; everything else gets BoxScoreTTL.
func (e *Engine) BoxScore(gameStatus string, cachedAt time.Time) bool {
	if IsFinal(gameStatus) {
		return true
	}
	return e.clock.Now().Sub(cachedAt) < BoxScoreTTL
}

// Standings reports whether cached standings are valid.
func (e *Engine) Standings(cachedAt time.Time) bool {
	return e.clock.Now().Sub(cachedAt) < StandingsTTL
}

// SeasonStats reports whether a cached season aggregate is valid. Once an
// aggregate exists with games_played > 0 it holds for the process run;
// staleness is the sync driver's job, not the read path's.
func (e *Engine) SeasonStats(gamesPlayed int) bool {
	return gamesPlayed > 0
}

// Lineups reports whether a cached lineup is valid. Lineups freeze at
// tip-off: any starter data means the record is permanent.
func (e *Engine) Lineups(starterCount int) bool {
	return starterCount > 0
}

// IsFinal reports whether a game status string means the game is over.
func IsFinal(status string) bool {
	return strings.EqualFold(status, "Final")
}
