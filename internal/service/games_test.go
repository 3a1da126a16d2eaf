package service_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fortuna/vesta/internal/broadcast"
	"github.com/fortuna/vesta/internal/cache"
	"github.com/fortuna/vesta/internal/cachepolicy"
	"github.com/fortuna/vesta/internal/service"
	"github.com/fortuna/vesta/internal/upstream"
	"github.com/jonboulle/clockwork"
)

var testNow = time.Date(2025, time.January, 15, 19, 0, 0, 0, time.UTC)

// memStore is an in-memory cache.Store.
type memStore struct {
	entries map[string]*cache.Entry
}

func newMemStore() *memStore {
	return &memStore{entries: map[string]*cache.Entry{}}
}

func (m *memStore) Get(ctx context.Context, key string) (*cache.Entry, error) {
	return m.entries[key], nil
}

func (m *memStore) Upsert(ctx context.Context, key string, payload any, cachedAt time.Time) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	m.entries[key] = &cache.Entry{Payload: body, CachedAt: cachedAt}
	return nil
}

func (m *memStore) seed(t *testing.T, key string, payload any, cachedAt time.Time) {
	t.Helper()
	if err := m.Upsert(context.Background(), key, payload, cachedAt); err != nil {
		t.Fatalf("seeding cache: %v", err)
	}
}

// emptyFeed is a broadcast.Fetcher with no events.
type emptyFeed struct{}

func (emptyFeed) FetchSchedule(ctx context.Context, date time.Time) ([]broadcast.ScheduleEvent, error) {
	return nil, nil
}

func upstreamClient(t *testing.T, handler http.HandlerFunc) *upstream.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return upstream.NewClient("test-key", upstream.WithBaseURL(srv.URL))
}

func newGameService(t *testing.T, store cache.Store, handler http.HandlerFunc) *service.GameService {
	t.Helper()
	clock := clockwork.NewFakeClockAt(testNow)
	return service.NewGameService(
		upstreamClient(t, handler),
		store,
		cachepolicy.NewEngineWithClock(clock),
		broadcast.NewReconciler(emptyFeed{}, broadcast.DefaultAbbreviationMap()),
		clock,
	)
}

func TestGetGamesByDateHistoricalServedFromCache(t *testing.T) {
	var upstreamCalls atomic.Int32
	store := newMemStore()

	historical := testNow.Add(-72 * time.Hour)
	store.seed(t, cache.GamesKey(historical),
		[]upstream.Game{{ID: 7, Status: "Final"}}, testNow.Add(-30*24*time.Hour))

	svc := newGameService(t, store, func(w http.ResponseWriter, r *http.Request) {
		upstreamCalls.Add(1)
		w.Write([]byte(`{"data":[]}`))
	})

	games, err := svc.GetGamesByDate(context.Background(), historical)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(games) != 1 || games[0].ID != 7 {
		t.Errorf("games = %+v, want the cached game", games)
	}
	if upstreamCalls.Load() != 0 {
		t.Error("a historical date must not reach upstream")
	}
}

func TestGetGamesByDateTodayAlwaysRefetches(t *testing.T) {
	var upstreamCalls atomic.Int32
	store := newMemStore()

	// Cache written seconds ago; today is still never valid.
	store.seed(t, cache.GamesKey(testNow),
		[]upstream.Game{{ID: 7, Status: "Final"}}, testNow.Add(-time.Second))

	svc := newGameService(t, store, func(w http.ResponseWriter, r *http.Request) {
		upstreamCalls.Add(1)
		if got := r.URL.Query().Get("dates[]"); got != "2025-01-15" {
			t.Errorf("dates[] = %q, want 2025-01-15", got)
		}
		w.Write([]byte(`{"data":[{"id":8,"status":"2nd Qtr"}]}`))
	})

	games, err := svc.GetGamesByDate(context.Background(), testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if upstreamCalls.Load() != 1 {
		t.Fatal("today's games must be refetched")
	}
	if len(games) != 1 || games[0].ID != 8 {
		t.Errorf("games = %+v, want the fresh game", games)
	}

	// The fresh result replaces the cached entry.
	entry := store.entries[cache.GamesKey(testNow)]
	if entry == nil || !entry.CachedAt.Equal(testNow) {
		t.Error("fresh fetch should be written back with the current time")
	}
}

func TestGetGamesByDateUpstreamErrorPropagates(t *testing.T) {
	svc := newGameService(t, newMemStore(), func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	if _, err := svc.GetGamesByDate(context.Background(), testNow); err == nil {
		t.Fatal("expected error")
	}
}
