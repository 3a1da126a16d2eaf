package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/fortuna/vesta/internal/aggregate"
	"github.com/fortuna/vesta/internal/store"
	"github.com/fortuna/vesta/internal/store/repository"
	"github.com/fortuna/vesta/internal/upstream"
	"github.com/jonboulle/clockwork"
)

const (
	// backfillBatchSize is how many seasons are fetched concurrently
	// during profile backfill. Game-stat pages are heavy, so this stays
	// small.
	backfillBatchSize = 2

	// backfillBatchDelay is the pause between backfill batches.
	backfillBatchDelay = 500 * time.Millisecond

	// statPageLimit bounds pagination for a single player-season fetch.
	statPageLimit = 10
)

// PlayerProfile is a player bio with per-team season averages, newest
// season first, and the player's current injury designation when one
// is on the report.
type PlayerProfile struct {
	Player  *store.Player             `json:"player"`
	Team    *store.Team               `json:"team,omitempty"`
	Injury  *store.PlayerInjury       `json:"injury"`
	Seasons []*store.PlayerSeasonStat `json:"seasons"`
}

// PlayerService serves player profiles, backfilling season aggregates
// that the store does not have yet.
type PlayerService struct {
	client     *upstream.Client
	paginator  *upstream.Paginator
	playerRepo *repository.PlayerRepository
	teamRepo   *repository.TeamRepository
	seasonRepo *repository.SeasonStatsRepository
	injuryRepo *repository.InjuryRepository
	clock      clockwork.Clock
}

// NewPlayerService creates a new player service.
func NewPlayerService(client *upstream.Client, paginator *upstream.Paginator, playerRepo *repository.PlayerRepository, teamRepo *repository.TeamRepository, seasonRepo *repository.SeasonStatsRepository, injuryRepo *repository.InjuryRepository, clock clockwork.Clock) *PlayerService {
	return &PlayerService{
		client:     client,
		paginator:  paginator,
		playerRepo: playerRepo,
		teamRepo:   teamRepo,
		seasonRepo: seasonRepo,
		injuryRepo: injuryRepo,
		clock:      clock,
	}
}

// GetProfile returns a player's bio and per-team season averages.
//
// Season rows already in the store are authoritative and served as-is.
// Seasons in the player's plausible range that have no stored row are
// backfilled from raw stat lines, two seasons at a time, and persisted
// for the next request. A season where the player never took the floor
// produces no row at all.
func (s *PlayerService) GetProfile(ctx context.Context, playerID int) (*PlayerProfile, error) {
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if errors.Is(err, sql.ErrNoRows) {
		player, err = s.fetchPlayer(ctx, playerID)
	}
	if err != nil {
		return nil, err
	}

	seasons, err := s.seasonRepo.GetPlayerSeasons(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("fetching season stats: %w", err)
	}

	missing := missingSeasons(seasons, player.DraftYear, s.clock.Now())

	backfilled, err := s.backfillSeasons(ctx, playerID, missing)
	if err != nil {
		return nil, err
	}
	seasons = append(seasons, backfilled...)

	sort.Slice(seasons, func(i, j int) bool {
		if seasons[i].Season != seasons[j].Season {
			return seasons[i].Season > seasons[j].Season
		}
		return seasons[i].GamesPlayed > seasons[j].GamesPlayed
	})

	if err := s.attachTeams(ctx, seasons); err != nil {
		log.Printf("[players] ⚠️ team join failed for player %d: %v", playerID, err)
	}

	profile := &PlayerProfile{Player: player, Seasons: seasons}
	if player.TeamID != nil {
		if team, err := s.teamRepo.GetByID(ctx, *player.TeamID); err == nil {
			profile.Team = team
		}
	}
	if injury, err := s.injuryRepo.Get(ctx, playerID); err == nil {
		profile.Injury = injury
	} else {
		log.Printf("[players] ⚠️ injury lookup failed for player %d: %v", playerID, err)
	}

	return profile, nil
}

// missingSeasons lists the seasons in a player's plausible range that
// have no stored row. Any stored row covers its season, including the
// single current-team summary the sync job writes, so a covered season
// is never recomputed into a per-team split.
func missingSeasons(seasons []*store.PlayerSeasonStat, draftYear *int, now time.Time) []int {
	covered := make(map[int]bool, len(seasons))
	for _, row := range seasons {
		covered[row.Season] = true
	}

	var missing []int
	for _, season := range seasonRange(draftYear, now) {
		if !covered[season] {
			missing = append(missing, season)
		}
	}
	return missing
}

// backfillSeasons computes and persists per-team averages for seasons
// the store has no rows for, backfillBatchSize seasons at a time.
func (s *PlayerService) backfillSeasons(ctx context.Context, playerID int, missing []int) ([]*store.PlayerSeasonStat, error) {
	var collected []*store.PlayerSeasonStat

	for i := 0; i < len(missing); i += backfillBatchSize {
		if err := ctx.Err(); err != nil {
			return collected, err
		}

		batch := missing[i:min(i+backfillBatchSize, len(missing))]
		results := make([][]store.PlayerSeasonStat, len(batch))

		var wg sync.WaitGroup
		for j, season := range batch {
			wg.Add(1)
			go func(j, season int) {
				defer wg.Done()
				rows, err := s.computeSeason(ctx, playerID, season)
				if err != nil {
					log.Printf("[players] ⚠️ backfill failed for player %d season %d: %v", playerID, season, err)
					return
				}
				results[j] = rows
			}(j, season)
		}
		wg.Wait()

		for _, rows := range results {
			if len(rows) == 0 {
				continue
			}
			if err := s.seasonRepo.UpsertPlayerSeasons(ctx, rows); err != nil {
				log.Printf("[players] ⚠️ persisting backfill for player %d: %v", playerID, err)
			}
			for k := range rows {
				collected = append(collected, &rows[k])
			}
		}

		if i+backfillBatchSize < len(missing) {
			select {
			case <-ctx.Done():
				return collected, ctx.Err()
			case <-s.clock.After(backfillBatchDelay):
			}
		}
	}

	return collected, nil
}

// computeSeason fetches a player's raw stat lines for one season and
// folds them into per-team averages. A partial pagination result is
// still aggregated; a later full sync closes the gap.
func (s *PlayerService) computeSeason(ctx context.Context, playerID, season int) ([]store.PlayerSeasonStat, error) {
	lines, err := upstream.FetchAllInto[upstream.Stat](ctx, s.paginator, "/stats", queryValues(
		"seasons[]", strconv.Itoa(season),
		"player_ids[]", strconv.Itoa(playerID),
		"per_page", "100",
	), statPageLimit)
	if err != nil {
		var partial *upstream.PartialError
		if !errors.As(err, &partial) {
			return nil, err
		}
		log.Printf("[players] ⚠️ partial stats for player %d season %d after %d pages: %v", playerID, season, partial.Pages, err)
	}

	return aggregate.PerTeamSeasonAverages(playerID, season, lines), nil
}

// attachTeams fills the Team join field on rows that lack it.
func (s *PlayerService) attachTeams(ctx context.Context, seasons []*store.PlayerSeasonStat) error {
	var teamIDs []int
	for _, row := range seasons {
		if row.Team == nil && row.TeamID != 0 {
			teamIDs = append(teamIDs, row.TeamID)
		}
	}
	if len(teamIDs) == 0 {
		return nil
	}

	teams, err := s.teamRepo.GetByIDs(ctx, teamIDs)
	if err != nil {
		return err
	}
	for _, row := range seasons {
		if row.Team == nil {
			row.Team = teams[row.TeamID]
		}
	}
	return nil
}

// fetchPlayer pulls a player bio from upstream and stores it.
func (s *PlayerService) fetchPlayer(ctx context.Context, playerID int) (*store.Player, error) {
	body, err := s.client.Get(ctx, fmt.Sprintf("/players/%d", playerID), nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data upstream.Player `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decoding player %d: %w", playerID, err)
	}

	player := convertPlayer(envelope.Data)
	if ctx.Err() == nil {
		if err := s.playerRepo.Upsert(ctx, player); err != nil {
			log.Printf("[players] ⚠️ caching player %d: %v", playerID, err)
		}
	}

	return player, nil
}

func convertPlayer(p upstream.Player) *store.Player {
	player := &store.Player{
		ID:           p.ID,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Position:     nilIfEmpty(p.Position),
		JerseyNumber: nilIfEmpty(p.JerseyNumber),
		Height:       nilIfEmpty(p.Height),
		Weight:       nilIfEmpty(p.Weight),
		Country:      nilIfEmpty(p.Country),
		DraftYear:    p.DraftYear,
		DraftRound:   p.DraftRound,
		DraftNumber:  p.DraftNumber,
	}
	if teamID, ok := p.CurrentTeamID(); ok {
		player.TeamID = &teamID
	}
	return player
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
