package rest

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fortuna/vesta/internal/service"
	vsync "github.com/fortuna/vesta/internal/sync"
	"github.com/fortuna/vesta/internal/upstream"
	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	games      *service.GameService
	boxScores  *service.BoxScoreService
	standings  *service.StandingsService
	teams      *service.TeamService
	players    *service.PlayerService
	gameLogs   *service.GameLogService
	lineups    *service.LineupService
	stats      *service.StatsService
	syncDriver *vsync.Driver
	syncSecret string
	clock      clockwork.Clock

	healthChecks map[string]func(context.Context) error
}

// HandlerConfig wires the handler's collaborators.
type HandlerConfig struct {
	Games      *service.GameService
	BoxScores  *service.BoxScoreService
	Standings  *service.StandingsService
	Teams      *service.TeamService
	Players    *service.PlayerService
	GameLogs   *service.GameLogService
	Lineups    *service.LineupService
	Stats      *service.StatsService
	SyncDriver *vsync.Driver
	SyncSecret string
	Clock      clockwork.Clock

	// HealthChecks are pinged by /health, keyed by dependency name.
	HealthChecks map[string]func(context.Context) error
}

// NewHandler creates a new handler
func NewHandler(cfg HandlerConfig) *Handler {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Handler{
		games:        cfg.Games,
		boxScores:    cfg.BoxScores,
		standings:    cfg.Standings,
		teams:        cfg.Teams,
		players:      cfg.Players,
		gameLogs:     cfg.GameLogs,
		lineups:      cfg.Lineups,
		stats:        cfg.Stats,
		syncDriver:   cfg.SyncDriver,
		syncSecret:   cfg.SyncSecret,
		clock:        clock,
		healthChecks: cfg.HealthChecks,
	}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	deps := make(map[string]string, len(h.healthChecks))

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	for name, check := range h.healthChecks {
		if err := check(ctx); err != nil {
			status = "degraded"
			deps[name] = err.Error()
		} else {
			deps[name] = "ok"
		}
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	respondJSON(w, code, map[string]interface{}{
		"status":       status,
		"service":      "vesta",
		"dependencies": deps,
	})
}

// GetGamesByDate returns all games on a specific date, with broadcasts
func (h *Handler) GetGamesByDate(w http.ResponseWriter, r *http.Request) {
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		dateStr = h.clock.Now().UTC().Format("2006-01-02")
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	games, err := h.games.GetGamesByDate(r.Context(), date)
	if err != nil {
		respondServiceError(w, r, "Failed to fetch games", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"data": games})
}

// GetBoxScore returns a game's box score
func (h *Handler) GetBoxScore(w http.ResponseWriter, r *http.Request) {
	gameID, err := pathInt(r, "gameID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid game ID", err)
		return
	}

	box, err := h.boxScores.GetBoxScore(r.Context(), gameID)
	if err != nil {
		respondServiceError(w, r, "Failed to fetch box score", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"data": box})
}

// GetStandings returns the standings map for a season
func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	season, err := h.seasonParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid season", err)
		return
	}

	standings, err := h.standings.GetStandings(r.Context(), season)
	if err != nil {
		respondServiceError(w, r, "Failed to fetch standings", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"data": standings})
}

// GetTeams returns all teams
func (h *Handler) GetTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teams.GetTeams(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch teams", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"data": teams})
}

// GetRoster returns a team's current players
func (h *Handler) GetRoster(w http.ResponseWriter, r *http.Request) {
	teamID, err := pathInt(r, "teamID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid team ID", err)
		return
	}

	players, err := h.teams.GetRoster(r.Context(), teamID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch roster", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"data": players})
}

// GetPlayer returns a player profile with per-team season averages
func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	playerID, err := pathInt(r, "playerID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid player ID", err)
		return
	}

	profile, err := h.players.GetProfile(r.Context(), playerID)
	if err != nil {
		respondServiceError(w, r, "Failed to fetch player", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"data": profile})
}

// GetGameLog returns a player's game log for a season
func (h *Handler) GetGameLog(w http.ResponseWriter, r *http.Request) {
	playerID, err := pathInt(r, "playerID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid player ID", err)
		return
	}

	season, err := h.seasonParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid season", err)
		return
	}

	gameLog, err := h.gameLogs.GetGameLog(r.Context(), playerID, season)
	if err != nil {
		respondServiceError(w, r, "Failed to fetch game log", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"data": gameLog})
}

// GetPlayerStats returns stored season averages filtered by team or
// player ids
func (h *Handler) GetPlayerStats(w http.ResponseWriter, r *http.Request) {
	season, err := h.seasonParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid season", err)
		return
	}

	teamIDs, err := idListParam(r, "team_ids")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid team_ids", err)
		return
	}
	playerIDs, err := idListParam(r, "player_ids")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid player_ids", err)
		return
	}
	if len(teamIDs) == 0 && len(playerIDs) == 0 {
		respondError(w, http.StatusBadRequest, "Must provide team_ids or player_ids", nil)
		return
	}

	lines, err := h.stats.GetSeasonStats(r.Context(), season, teamIDs, playerIDs)
	if err != nil {
		respondServiceError(w, r, "Failed to fetch player stats", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"data":   lines,
		"season": season,
	})
}

// GetLineups returns the lineup record for a game
func (h *Handler) GetLineups(w http.ResponseWriter, r *http.Request) {
	gameID, err := pathInt(r, "gameID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid game ID", err)
		return
	}

	record, err := h.lineups.GetLineups(r.Context(), gameID)
	if err != nil {
		respondServiceError(w, r, "Failed to fetch lineups", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"data":     record.Entries,
		"starters": record.Starters,
	})
}

// TriggerSync runs the sync jobs. Requires the bearer sync secret.
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		respondError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	season, err := h.seasonParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid season", err)
		return
	}
	only := r.URL.Query().Get("only")

	report, err := h.syncDriver.Run(r.Context(), season, only)
	if err != nil {
		if report == nil {
			respondError(w, http.StatusBadRequest, "Sync failed", err)
			return
		}
		respondServiceError(w, r, "Sync failed", err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

func (h *Handler) authorized(r *http.Request) bool {
	if h.syncSecret == "" {
		return false
	}
	auth := r.Header.Get("Authorization")
	expected := "Bearer " + h.syncSecret
	return subtle.ConstantTimeCompare([]byte(auth), []byte(expected)) == 1
}

// seasonParam parses the season query parameter, defaulting to the
// season in progress.
func (h *Handler) seasonParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("season")
	if raw == "" {
		return service.CurrentSeason(h.clock.Now()), nil
	}
	return strconv.Atoi(raw)
}

func pathInt(r *http.Request, name string) (int, error) {
	return strconv.Atoi(mux.Vars(r)[name])
}

// idListParam parses a comma-separated id list query parameter.
func idListParam(r *http.Request, name string) ([]int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]int, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// respondServiceError maps service failures onto HTTP statuses: missing
// upstream records are 404, provider throttling is 429, other provider
// failures are 502, and a caller that has gone away gets nothing.
func respondServiceError(w http.ResponseWriter, r *http.Request, message string, err error) {
	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		return
	}

	var (
		notFound  *upstream.NotFoundError
		rateLimit *upstream.RateLimitError
		upstreamE *upstream.UpstreamError
		transport *upstream.TransportError
	)
	switch {
	case errors.As(err, &notFound):
		respondError(w, http.StatusNotFound, "Not found", err)
	case errors.As(err, &rateLimit):
		respondError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", err)
	case errors.As(err, &upstreamE), errors.As(err, &transport):
		respondError(w, http.StatusBadGateway, message, err)
	default:
		respondError(w, http.StatusInternalServerError, message, err)
	}
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	json.NewEncoder(w).Encode(response)
}
