package upstream_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fortuna/vesta/internal/upstream"
)

func newTestPaginator(t *testing.T, handler http.HandlerFunc) *upstream.Paginator {
	t.Helper()
	client, _ := newTestClient(t, handler)
	return upstream.NewPaginator(client).WithPageDelay(time.Microsecond)
}

// pageHandler serves numbered pages, chaining them with cursors.
func pageHandler(pages []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := 0
		if cursor := r.URL.Query().Get("cursor"); cursor != "" {
			fmt.Sscanf(cursor, "page-%d", &page)
		}

		next := ""
		if page+1 < len(pages) {
			next = fmt.Sprintf(`"page-%d"`, page+1)
		} else {
			next = "null"
		}
		fmt.Fprintf(w, `{"data":%s,"meta":{"next_cursor":%s,"per_page":100}}`, pages[page], next)
	}
}

func TestFetchAllFollowsCursors(t *testing.T) {
	p := newTestPaginator(t, pageHandler([]string{
		`[{"id":1},{"id":2}]`,
		`[{"id":3}]`,
		`[{"id":4}]`,
	}))

	records, err := p.FetchAll(context.Background(), "/stats", nil, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 4 {
		t.Errorf("record count = %d, want 4", len(records))
	}
}

func TestFetchAllStopsAtMaxPages(t *testing.T) {
	// Every page points at another page; the bound must stop the loop.
	var calls atomic.Int32
	p := newTestPaginator(t, func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		fmt.Fprintf(w, `{"data":[{"id":%d}],"meta":{"next_cursor":"page-%d","per_page":100}}`, n, n)
	})

	records, err := p.FetchAll(context.Background(), "/stats", nil, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("record count = %d, want 3", len(records))
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("page fetches = %d, want 3", got)
	}
}

func TestFetchAllMidSequenceFailureKeepsRecords(t *testing.T) {
	var calls atomic.Int32
	p := newTestPaginator(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) >= 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		pageHandler([]string{
			`[{"id":1}]`,
			`[{"id":2}]`,
			`[{"id":3}]`,
		})(w, r)
	})

	records, err := p.FetchAll(context.Background(), "/stats", nil, 10)

	var partial *upstream.PartialError
	if !errors.As(err, &partial) {
		t.Fatalf("error = %v, want PartialError", err)
	}
	if partial.Pages != 2 {
		t.Errorf("partial pages = %d, want 2", partial.Pages)
	}
	if len(records) != 2 {
		t.Errorf("record count = %d, want the 2 pages fetched before the failure", len(records))
	}

	var upErr *upstream.UpstreamError
	if !errors.As(err, &upErr) {
		t.Error("PartialError should unwrap to the underlying failure")
	}
}

func TestFetchAllFirstPageFailure(t *testing.T) {
	p := newTestPaginator(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	records, err := p.FetchAll(context.Background(), "/stats", nil, 10)
	if err == nil {
		t.Fatal("expected error")
	}
	var partial *upstream.PartialError
	if errors.As(err, &partial) {
		t.Error("a first-page failure is total, not partial")
	}
	if records != nil {
		t.Errorf("records = %v, want nil", records)
	}
}

func TestFetchAllCursorShapes(t *testing.T) {
	// The provider has returned cursors both as numbers and strings.
	var calls atomic.Int32
	p := newTestPaginator(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			fmt.Fprint(w, `{"data":[{"id":1}],"meta":{"next_cursor":25,"per_page":100}}`)
			return
		}
		if got := r.URL.Query().Get("cursor"); got != "25" {
			t.Errorf("cursor = %q, want %q", got, "25")
		}
		fmt.Fprint(w, `{"data":[{"id":2}],"meta":{"next_cursor":null,"per_page":100}}`)
	})

	records, err := p.FetchAll(context.Background(), "/stats", nil, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("record count = %d, want 2", len(records))
	}
}

func TestFetchAllIntoDecodes(t *testing.T) {
	type row struct {
		ID int `json:"id"`
	}

	p := newTestPaginator(t, pageHandler([]string{
		`[{"id":1},{"id":2}]`,
		`[{"id":3}]`,
	}))

	rows, err := upstream.FetchAllInto[row](context.Background(), p, "/stats", nil, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []row{{1}, {2}, {3}}
	if len(rows) != len(want) {
		t.Fatalf("row count = %d, want %d", len(rows), len(want))
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, rows[i], want[i])
		}
	}
}

func TestMinutesShapes(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		float  float64
		played bool
	}{
		{"clock string", `"34:12"`, 34, true},
		{"whole string", `"28"`, 28, true},
		{"bare number", `31`, 31, true},
		{"zero clock", `"0:00"`, 0, false},
		{"zero string", `"0"`, 0, false},
		{"null", `null`, 0, false},
		{"empty string", `""`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m upstream.Minutes
			if err := json.Unmarshal([]byte(tt.raw), &m); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got := m.Float(); got != tt.float {
				t.Errorf("Float() = %v, want %v", got, tt.float)
			}
			if got := m.Played(); got != tt.played {
				t.Errorf("Played() = %v, want %v", got, tt.played)
			}
		})
	}
}

func TestGameTeamRefShapes(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		homeID  int
		visitID int
	}{
		{
			name:    "nested objects",
			raw:     `{"id":1,"home_team":{"id":14},"visitor_team":{"id":21}}`,
			homeID:  14,
			visitID: 21,
		},
		{
			name:    "bare ids",
			raw:     `{"id":1,"home_team_id":14,"visitor_team_id":21}`,
			homeID:  14,
			visitID: 21,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var g upstream.Game
			if err := json.Unmarshal([]byte(tt.raw), &g); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}

			home, ok := g.HomeID()
			if !ok || home != tt.homeID {
				t.Errorf("HomeID() = %d,%v, want %d,true", home, ok, tt.homeID)
			}
			visitor, ok := g.VisitorID()
			if !ok || visitor != tt.visitID {
				t.Errorf("VisitorID() = %d,%v, want %d,true", visitor, ok, tt.visitID)
			}
		})
	}
}
