package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fortuna/vesta/internal/api/rest"
	"github.com/fortuna/vesta/internal/broadcast"
	"github.com/fortuna/vesta/internal/cache"
	"github.com/fortuna/vesta/internal/cachepolicy"
	"github.com/fortuna/vesta/internal/service"
	"github.com/fortuna/vesta/internal/store"
	"github.com/fortuna/vesta/internal/upstream"
	"github.com/jonboulle/clockwork"
)

var handlerNow = time.Date(2025, time.January, 15, 19, 0, 0, 0, time.UTC)

// nilStore is a cache.Store with nothing in it that drops writes.
type nilStore struct{}

func (nilStore) Get(ctx context.Context, key string) (*cache.Entry, error) { return nil, nil }
func (nilStore) Upsert(ctx context.Context, key string, payload any, cachedAt time.Time) error {
	return nil
}

type quietFeed struct{}

func (quietFeed) FetchSchedule(ctx context.Context, date time.Time) ([]broadcast.ScheduleEvent, error) {
	return nil, nil
}

func newTestRouter(t *testing.T, cfg rest.HandlerConfig) http.Handler {
	t.Helper()
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewFakeClockAt(handlerNow)
	}
	return rest.NewServer("0", rest.NewHandler(cfg)).Router()
}

func gamesServiceFor(t *testing.T, body string) *service.GameService {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	clock := clockwork.NewFakeClockAt(handlerNow)
	return service.NewGameService(
		upstream.NewClient("test-key", upstream.WithBaseURL(srv.URL)),
		nilStore{},
		cachepolicy.NewEngineWithClock(clock),
		broadcast.NewReconciler(quietFeed{}, broadcast.DefaultAbbreviationMap()),
		clock,
	)
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]func(context.Context) error
		wantCode   int
		wantStatus string
	}{
		{
			name: "all dependencies up",
			checks: map[string]func(context.Context) error{
				"postgres": func(context.Context) error { return nil },
				"redis":    func(context.Context) error { return nil },
			},
			wantCode:   http.StatusOK,
			wantStatus: "healthy",
		},
		{
			name: "one dependency down",
			checks: map[string]func(context.Context) error{
				"postgres": func(context.Context) error { return nil },
				"redis":    func(context.Context) error { return errors.New("connection refused") },
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "degraded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, rest.HandlerConfig{HealthChecks: tt.checks})

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			var body struct {
				Status string `json:"status"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decoding body: %v", err)
			}
			if body.Status != tt.wantStatus {
				t.Errorf("status field = %q, want %q", body.Status, tt.wantStatus)
			}
		})
	}
}

func TestGetGamesByDate(t *testing.T) {
	router := newTestRouter(t, rest.HandlerConfig{
		Games: gamesServiceFor(t, `{"data":[{"id":42,"status":"Final"}]}`),
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/games?date=2025-01-10", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Data []upstream.Game `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(body.Data) != 1 || body.Data[0].ID != 42 {
		t.Errorf("data = %+v, want game 42", body.Data)
	}
}

func TestGetGamesByDateRejectsBadDate(t *testing.T) {
	router := newTestRouter(t, rest.HandlerConfig{
		Games: gamesServiceFor(t, `{"data":[]}`),
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/games?date=01-15-2025", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestTriggerSyncAuthorization(t *testing.T) {
	tests := []struct {
		name     string
		secret   string
		header   string
		wantCode int
	}{
		{"missing header", "s3cret", "", http.StatusUnauthorized},
		{"wrong token", "s3cret", "Bearer nope", http.StatusUnauthorized},
		{"raw token without scheme", "s3cret", "s3cret", http.StatusUnauthorized},
		{"empty configured secret rejects everything", "", "Bearer ", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// No driver is wired; an unauthorized request must be
			// rejected before the sync path is reached.
			router := newTestRouter(t, rest.HandlerConfig{SyncSecret: tt.secret})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/stats", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}

func TestUpstreamFailureMapsToBadGateway(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	clock := clockwork.NewFakeClockAt(handlerNow)
	games := service.NewGameService(
		upstream.NewClient("test-key", upstream.WithBaseURL(srv.URL)),
		nilStore{},
		cachepolicy.NewEngineWithClock(clock),
		broadcast.NewReconciler(quietFeed{}, broadcast.DefaultAbbreviationMap()),
		clock,
	)
	router := newTestRouter(t, rest.HandlerConfig{Games: games})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/games?date=2025-01-10", nil))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

type staticTeamLister struct {
	teams []*store.Team
}

func (f staticTeamLister) GetAll(ctx context.Context) ([]*store.Team, error) {
	return f.teams, nil
}

type staticRosterLister struct {
	players []*store.Player
}

func (f staticRosterLister) GetByTeamIDs(ctx context.Context, teamIDs []int) ([]*store.Player, error) {
	return f.players, nil
}

func TestGetTeamsRoute(t *testing.T) {
	teams := service.NewTeamService(
		staticTeamLister{teams: []*store.Team{
			{ID: 1, Abbreviation: "BOS"},
			{ID: 2, Abbreviation: "GSW"},
		}},
		staticRosterLister{},
	)
	router := newTestRouter(t, rest.HandlerConfig{Teams: teams})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/teams", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Data []store.Team `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(body.Data) != 2 || body.Data[0].Abbreviation != "BOS" {
		t.Errorf("data = %+v, want BOS then GSW", body.Data)
	}
}

func TestGetRosterRoute(t *testing.T) {
	teams := service.NewTeamService(
		staticTeamLister{},
		staticRosterLister{players: []*store.Player{
			{ID: 101, LastName: "Tatum"},
		}},
	)
	router := newTestRouter(t, rest.HandlerConfig{Teams: teams})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/teams/1/roster", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Data []store.Player `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(body.Data) != 1 || body.Data[0].ID != 101 {
		t.Errorf("data = %+v, want player 101", body.Data)
	}
}

func TestGetStandingsWrapsDataEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"team":{"id":1,"abbreviation":"BOS","conference":"East"},"wins":30,"losses":10,"conference_rank":1}]}`))
	}))
	t.Cleanup(srv.Close)

	clock := clockwork.NewFakeClockAt(handlerNow)
	standings := service.NewStandingsService(
		upstream.NewClient("test-key", upstream.WithBaseURL(srv.URL)),
		nilStore{},
		cachepolicy.NewEngineWithClock(clock),
		clock,
	)
	router := newTestRouter(t, rest.HandlerConfig{Standings: standings})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/standings?season=2024", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Data service.StandingsMap `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Data["BOS"].Wins != 30 {
		t.Errorf("data.BOS = %+v, want 30 wins", body.Data["BOS"])
	}
}
