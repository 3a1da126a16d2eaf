// Package sync refreshes the store from the stats provider. The jobs
// (teams, players, player season averages, team season averages, the
// injury report) are independent; a failing job reports its error
// without aborting the others.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"time"

	"github.com/fortuna/vesta/internal/store"
	"github.com/fortuna/vesta/internal/store/repository"
	"github.com/fortuna/vesta/internal/upstream"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const (
	// upsertChunkSize bounds a single batch upsert.
	upsertChunkSize = 100

	// playerPageLimit bounds the players pagination run; the league has
	// a few thousand active and historical players at 100 per page.
	playerPageLimit = 100

	// seasonAveragePageLimit bounds the season-average pagination runs.
	seasonAveragePageLimit = 100
)

// Job names accepted by the "only" selector.
const (
	JobTeams       = "teams"
	JobPlayers     = "players"
	JobPlayerStats = "player_stats"
	JobTeamStats   = "team_stats"
	JobInjuries    = "injuries"
)

// JobResult is the outcome of one sync job. Retryable marks failures
// worth rerunning later (throttling, transport, provider 5xx) as
// opposed to permanent ones.
type JobResult struct {
	Records   int    `json:"records"`
	Error     string `json:"error,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// Report is the outcome of one sync run.
type Report struct {
	JobID       string               `json:"job_id"`
	Season      int                  `json:"season"`
	StartedAt   time.Time            `json:"started_at"`
	CompletedAt time.Time            `json:"completed_at"`
	Jobs        map[string]JobResult `json:"jobs"`
}

// Driver runs the sync jobs.
type Driver struct {
	client     *upstream.Client
	paginator  *upstream.Paginator
	teamRepo   *repository.TeamRepository
	playerRepo *repository.PlayerRepository
	seasonRepo *repository.SeasonStatsRepository
	injuryRepo *repository.InjuryRepository
	clock      clockwork.Clock
}

// NewDriver creates a sync driver.
func NewDriver(client *upstream.Client, paginator *upstream.Paginator, teamRepo *repository.TeamRepository, playerRepo *repository.PlayerRepository, seasonRepo *repository.SeasonStatsRepository, injuryRepo *repository.InjuryRepository, clock clockwork.Clock) *Driver {
	return &Driver{
		client:     client,
		paginator:  paginator,
		teamRepo:   teamRepo,
		playerRepo: playerRepo,
		seasonRepo: seasonRepo,
		injuryRepo: injuryRepo,
		clock:      clock,
	}
}

// Run executes the sync jobs for a season. An empty "only" runs every
// job in order; a job name runs just that one. Unknown names error.
func (d *Driver) Run(ctx context.Context, season int, only string) (*Report, error) {
	jobs := []string{JobTeams, JobPlayers, JobPlayerStats, JobTeamStats, JobInjuries}
	if only != "" {
		switch only {
		case JobTeams, JobPlayers, JobPlayerStats, JobTeamStats, JobInjuries:
			jobs = []string{only}
		default:
			return nil, fmt.Errorf("unknown sync job %q", only)
		}
	}

	report := &Report{
		JobID:     uuid.New().String(),
		Season:    season,
		StartedAt: d.clock.Now(),
		Jobs:      make(map[string]JobResult, len(jobs)),
	}

	log.Printf("[sync] run %s starting (season %d, jobs %v)", report.JobID, season, jobs)

	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		var (
			count int
			err   error
		)
		switch job {
		case JobTeams:
			count, err = d.syncTeams(ctx)
		case JobPlayers:
			count, err = d.syncPlayers(ctx)
		case JobPlayerStats:
			count, err = d.syncPlayerStats(ctx, season)
		case JobTeamStats:
			count, err = d.syncTeamStats(ctx, season)
		case JobInjuries:
			count, err = d.syncInjuries(ctx)
		}

		result := JobResult{Records: count}
		if err != nil {
			result.Error = err.Error()
			result.Retryable = upstream.IsRetryable(err)
			log.Printf("[sync] ⚠️ job %s failed: %v", job, err)
		} else {
			log.Printf("[sync] ✓ job %s synced %d records", job, count)
		}
		report.Jobs[job] = result
	}

	report.CompletedAt = d.clock.Now()
	return report, nil
}

// syncTeams refreshes the teams table. The league fits in one page.
func (d *Driver) syncTeams(ctx context.Context) (int, error) {
	body, err := d.client.Get(ctx, "/teams", nil)
	if err != nil {
		return 0, err
	}

	var envelope struct {
		Data []upstream.Team `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return 0, fmt.Errorf("decoding teams: %w", err)
	}

	for _, team := range envelope.Data {
		row := &store.Team{
			ID:           team.ID,
			Conference:   team.Conference,
			Division:     team.Division,
			City:         team.City,
			Name:         team.Name,
			FullName:     team.FullName,
			Abbreviation: team.Abbreviation,
		}
		if err := d.teamRepo.Upsert(ctx, row); err != nil {
			return 0, fmt.Errorf("upserting team %d: %w", team.ID, err)
		}
	}

	return len(envelope.Data), nil
}

// syncPlayers refreshes the players table from the full paginated list.
func (d *Driver) syncPlayers(ctx context.Context) (int, error) {
	players, err := upstream.FetchAllInto[upstream.Player](ctx, d.paginator, "/players",
		pageQuery(nil), playerPageLimit)
	if err != nil {
		if !isPartial(err) {
			return 0, err
		}
		log.Printf("[sync] ⚠️ players pagination incomplete, syncing %d fetched: %v", len(players), err)
	}

	for start := 0; start < len(players); start += upsertChunkSize {
		chunk := players[start:min(start+upsertChunkSize, len(players))]

		rows := make([]*store.Player, 0, len(chunk))
		for _, p := range chunk {
			rows = append(rows, convertPlayer(p))
		}
		if err := d.playerRepo.UpsertBatch(ctx, rows); err != nil {
			return start, fmt.Errorf("upserting players: %w", err)
		}
	}

	return len(players), nil
}

// syncPlayerStats refreshes player season averages for a season from the
// provider's season-summary endpoint. Rows without games played or a
// resolvable team are skipped; zero-game rows are never persisted.
func (d *Driver) syncPlayerStats(ctx context.Context, season int) (int, error) {
	averages, err := upstream.FetchAllInto[upstream.SeasonAverageRow](ctx, d.paginator,
		"/season_averages/general", pageQuery(map[string]string{
			"season":      strconv.Itoa(season),
			"season_type": "regular",
			"type":        "base",
		}), seasonAveragePageLimit)
	if err != nil {
		if !isPartial(err) {
			return 0, err
		}
		log.Printf("[sync] ⚠️ season averages pagination incomplete, syncing %d fetched: %v", len(averages), err)
	}

	rows := make([]store.PlayerSeasonStat, 0, len(averages))
	for _, row := range averages {
		teamID, ok := row.Player.CurrentTeamID()
		if !ok || row.Stats.GP <= 0 {
			continue
		}
		rows = append(rows, store.PlayerSeasonStat{
			PlayerID:    row.Player.ID,
			Season:      row.Season,
			TeamID:      teamID,
			GamesPlayed: row.Stats.GP,
			Min:         row.Stats.Min,
			Pts:         row.Stats.Pts,
			Reb:         row.Stats.Reb,
			Ast:         row.Stats.Ast,
			Stl:         row.Stats.Stl,
			Blk:         row.Stats.Blk,
			Turnover:    row.Stats.Tov,
			Pf:          row.Stats.Pf,
			Fgm:         row.Stats.Fgm,
			Fga:         row.Stats.Fga,
			FgPct:       row.Stats.FgPct,
			Fg3m:        row.Stats.Fg3m,
			Fg3a:        row.Stats.Fg3a,
			Fg3Pct:      row.Stats.Fg3Pct,
			Ftm:         row.Stats.Ftm,
			Fta:         row.Stats.Fta,
			FtPct:       row.Stats.FtPct,
			Oreb:        row.Stats.Oreb,
			Dreb:        row.Stats.Dreb,
		})
	}

	for start := 0; start < len(rows); start += upsertChunkSize {
		chunk := rows[start:min(start+upsertChunkSize, len(rows))]
		if err := d.seasonRepo.UpsertPlayerSeasons(ctx, chunk); err != nil {
			return start, fmt.Errorf("upserting player season stats: %w", err)
		}
	}

	return len(rows), nil
}

// syncTeamStats refreshes team season averages for a season.
func (d *Driver) syncTeamStats(ctx context.Context, season int) (int, error) {
	averages, err := upstream.FetchAllInto[upstream.TeamSeasonAverageRow](ctx, d.paginator,
		"/team_season_averages/general", pageQuery(map[string]string{
			"season":      strconv.Itoa(season),
			"season_type": "regular",
			"type":        "base",
		}), 5)
	if err != nil && !isPartial(err) {
		return 0, err
	}

	rows := make([]store.TeamSeasonStat, 0, len(averages))
	for _, row := range averages {
		if row.Team.ID == 0 {
			continue
		}
		rows = append(rows, store.TeamSeasonStat{
			TeamID:      row.Team.ID,
			Season:      row.Season,
			GamesPlayed: row.Stats.GP,
			Min:         row.Stats.Min,
			Pts:         row.Stats.Pts,
			Reb:         row.Stats.Reb,
			Ast:         row.Stats.Ast,
			Stl:         row.Stats.Stl,
			Blk:         row.Stats.Blk,
			Turnover:    row.Stats.Tov,
			Pf:          row.Stats.Pf,
			Fgm:         row.Stats.Fgm,
			Fga:         row.Stats.Fga,
			FgPct:       row.Stats.FgPct,
			Fg3m:        row.Stats.Fg3m,
			Fg3a:        row.Stats.Fg3a,
			Fg3Pct:      row.Stats.Fg3Pct,
			Ftm:         row.Stats.Ftm,
			Fta:         row.Stats.Fta,
			FtPct:       row.Stats.FtPct,
			Oreb:        row.Stats.Oreb,
			Dreb:        row.Stats.Dreb,
		})
	}

	if err := d.seasonRepo.UpsertTeamSeasons(ctx, rows); err != nil {
		return 0, fmt.Errorf("upserting team season stats: %w", err)
	}

	return len(rows), nil
}

// syncInjuries replaces the injury snapshot with the provider's current
// report. A partial pagination run is not applied; a half snapshot would
// clear injuries that are still active.
func (d *Driver) syncInjuries(ctx context.Context) (int, error) {
	report, err := upstream.FetchAllInto[upstream.InjuryRow](ctx, d.paginator,
		"/player_injuries", pageQuery(nil), 10)
	if err != nil {
		return 0, err
	}

	rows := make([]*store.PlayerInjury, 0, len(report))
	for _, entry := range report {
		if entry.Player == nil || entry.Player.ID == 0 {
			continue
		}
		rows = append(rows, &store.PlayerInjury{
			PlayerID:    entry.Player.ID,
			Status:      entry.Status,
			ReturnDate:  entry.ReturnDate,
			Description: entry.Description,
		})
	}

	if err := d.injuryRepo.ReplaceAll(ctx, rows); err != nil {
		return 0, fmt.Errorf("replacing injury snapshot: %w", err)
	}

	return len(rows), nil
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

func isPartial(err error) bool {
	var partial *upstream.PartialError
	return errors.As(err, &partial)
}

// pageQuery builds the query for a paginated endpoint with per_page
// pinned at the provider maximum.
func pageQuery(params map[string]string) url.Values {
	q := url.Values{}
	q.Set("per_page", "100")
	for k, v := range params {
		q.Set(k, v)
	}
	return q
}
