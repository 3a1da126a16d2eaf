// Package broadcast joins TV/network information from the secondary
// schedule feed onto game records. The join is a soft enrichment: any
// feed failure leaves games untouched.
package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultBaseURL is the secondary schedule feed root.
	DefaultBaseURL = "https://site.api.espn.com/apis/site/v2/sports/basketball/nba"
)

// Client fetches the secondary broadcast-schedule feed.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a feed client. An empty baseURL uses the default.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// ScheduleEvent is one game in the feed.
type ScheduleEvent struct {
	Competitions []Competition `json:"competitions"`
}

// Competition holds the competitors and broadcast entries for an event.
type Competition struct {
	Competitors []Competitor `json:"competitors"`
	Broadcasts  []FeedEntry  `json:"broadcasts"`
}

// Competitor is one side of an event.
type Competitor struct {
	HomeAway string `json:"homeAway"`
	Team     struct {
		Abbreviation string `json:"abbreviation"`
	} `json:"team"`
}

// FeedEntry is a broadcast entry: a market classifier plus the networks
// carrying the game there.
type FeedEntry struct {
	Market string   `json:"market"`
	Names  []string `json:"names"`
}

type scheduleResponse struct {
	Events []ScheduleEvent `json:"events"`
}

// FetchSchedule fetches the feed for a date.
func (c *Client) FetchSchedule(ctx context.Context, date time.Time) ([]ScheduleEvent, error) {
	url := fmt.Sprintf("%s/scoreboard?dates=%s", c.baseURL, date.Format("20060102"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building schedule request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching schedule: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("schedule feed returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading schedule response: %w", err)
	}

	var parsed scheduleResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decoding schedule response: %w", err)
	}

	return parsed.Events, nil
}
