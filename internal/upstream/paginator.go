package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	// DefaultMaxPages bounds a pagination run against runaway cursor loops.
	DefaultMaxPages = 50

	// DefaultPageDelay is the pause between page fetches to stay under the
	// provider's rate limit.
	DefaultPageDelay = 150 * time.Millisecond
)

// Paginator drives a Client across cursor-linked pages.
type Paginator struct {
	client    *Client
	clock     clockwork.Clock
	pageDelay time.Duration
}

// NewPaginator creates a paginator over the given client.
func NewPaginator(client *Client) *Paginator {
	return &Paginator{
		client:    client,
		clock:     client.clock,
		pageDelay: DefaultPageDelay,
	}
}

// WithPageDelay overrides the inter-page delay.
func (p *Paginator) WithPageDelay(d time.Duration) *Paginator {
	p.pageDelay = d
	return p
}

// FetchAll follows meta.next_cursor across pages until the cursor runs
// out or maxPages is hit, and returns the accumulated records.
//
// A mid-sequence failure does not discard earlier pages: the records
// fetched so far are returned together with a PartialError, since a later
// full resync can always fill the gap. Cancellation likewise returns the
// accumulated records with the context's error.
func (p *Paginator) FetchAll(ctx context.Context, path string, query url.Values, maxPages int) ([]json.RawMessage, error) {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}

	var records []json.RawMessage
	for page := 0; page < maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return records, err
		}

		body, err := p.client.Get(ctx, path, q)
		if err != nil {
			if ctx.Err() != nil {
				return records, ctx.Err()
			}
			if page == 0 {
				return nil, err
			}
			return records, &PartialError{Pages: page, Err: err}
		}

		var envelope Page
		if err := json.Unmarshal(body, &envelope); err != nil {
			wrapped := fmt.Errorf("decoding page %d of %s: %w", page+1, path, err)
			if page == 0 {
				return nil, wrapped
			}
			return records, &PartialError{Pages: page, Err: wrapped}
		}

		records = append(records, envelope.Data...)

		if envelope.Meta.NextCursor == nil || envelope.Meta.NextCursor.String() == "" {
			break
		}
		q.Set("cursor", envelope.Meta.NextCursor.String())

		select {
		case <-ctx.Done():
			return records, ctx.Err()
		case <-p.clock.After(p.pageDelay):
		}
	}

	return records, nil
}

// FetchAllInto fetches all pages and decodes each record into T.
// Records that fail to decode surface as an error; pagination failures
// keep their fail-soft semantics.
func FetchAllInto[T any](ctx context.Context, p *Paginator, path string, query url.Values, maxPages int) ([]T, error) {
	raw, fetchErr := p.FetchAll(ctx, path, query, maxPages)
	if fetchErr != nil {
		var partial *PartialError
		if !errors.As(fetchErr, &partial) && ctx.Err() == nil {
			return nil, fetchErr
		}
	}

	out := make([]T, 0, len(raw))
	for i, r := range raw {
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			return nil, fmt.Errorf("decoding record %d of %s: %w", i, path, err)
		}
		out = append(out, v)
	}

	return out, fetchErr
}
