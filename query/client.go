// Package query is the façade over edition resolution, fetching, caching and
// parsing: given a date selector and an ICAO code (or "all"), it returns
// typed entities, triggering resolve, fetch, parse and index work on demand
// and caching at every layer.
package query

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/eaip-lib/eaip"
	"github.com/eaip-lib/eaip/cache"
	"github.com/eaip-lib/eaip/fetch"
	"github.com/eaip-lib/eaip/repo"
	"github.com/eaip-lib/eaip/resolve"
)

// Client answers airfield queries against resolved eAIP editions.
//
// A Client is safe for concurrent use. Repositories are created lazily, one
// per resolved edition, and never shared across editions.
type Client struct {
	opts     *eaip.Options
	store    *cache.Store
	fetcher  *fetch.Fetcher
	resolver *resolve.Resolver
	logger   *zap.Logger

	mu    sync.Mutex
	repos map[string]*repo.Repository // keyed by edition ID
}

// New creates a Client with the given options.
func New(opts ...eaip.Option) (*Client, error) {
	o := eaip.DefaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	store := cache.NewStore(o.CacheDir, cache.WithLogger(o.Logger))
	fetcher := fetch.New(store, o.BaseURL,
		fetch.WithHTTPClient(o.HTTPClient),
		fetch.WithRetryMax(o.RetryMax),
		fetch.WithRateLimit(o.RateLimit, o.RateBurst),
		fetch.WithBypassCache(o.BypassCache),
		fetch.WithLogger(o.Logger),
	)
	resolver := resolve.New(store, fetcher,
		resolve.WithTTL(o.ListingTTL),
		resolve.WithLogger(o.Logger),
	)

	return &Client{
		opts:     o,
		store:    store,
		fetcher:  fetcher,
		resolver: resolver,
		logger:   o.Logger,
		repos:    make(map[string]*repo.Repository),
	}, nil
}

// Resolver exposes the edition resolver, e.g. to inspect a degraded
// (stale-listing) resolution via LastListing.
func (c *Client) Resolver() *resolve.Resolver { return c.resolver }

// CacheDir returns the cache root directory in use.
func (c *Client) CacheDir() string { return c.store.Root() }

// GetAirfield returns the airfield with the given ICAO code in the edition
// selected by sel. A code the edition's index does not list fails with
// ErrUnknownAirfield.
func (c *Client) GetAirfield(ctx context.Context, icao string, sel eaip.DateSelector) (*eaip.Airfield, error) {
	r, err := c.repository(ctx, sel)
	if err != nil {
		return nil, err
	}
	return r.Airfield(ctx, icao)
}

// AirfieldCodes returns every ICAO code in the selected edition's index, in
// listing order.
func (c *Client) AirfieldCodes(ctx context.Context, sel eaip.DateSelector) ([]string, error) {
	r, err := c.repository(ctx, sel)
	if err != nil {
		return nil, err
	}
	return r.Codes(ctx)
}

// Airfields returns every airfield in the selected edition, in index order.
// Convenience over AirfieldStream for callers that want the whole set.
func (c *Client) Airfields(ctx context.Context, sel eaip.DateSelector) ([]*eaip.Airfield, error) {
	// The stream is abandoned on the first failed element; cancelling and
	// draining releases its workers before returning.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream := c.AirfieldStream(ctx, sel)
	var out []*eaip.Airfield
	for res := range stream {
		if res.Err != nil {
			cancel()
			for range stream {
			}
			return nil, res.Err
		}
		out = append(out, res.Airfield)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// repository returns the repository for the edition sel resolves to,
// creating it on first use. One repository per edition, never reused across
// editions.
func (c *Client) repository(ctx context.Context, sel eaip.DateSelector) (*repo.Repository, error) {
	edition, err := c.resolver.Resolve(ctx, sel)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.repos[edition.ID]; ok {
		return r, nil
	}
	r := repo.New(edition, c.fetcher, c.store, repo.WithLogger(c.logger))
	c.repos[edition.ID] = r
	return r, nil
}
