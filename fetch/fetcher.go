// Package fetch retrieves raw eAIP documents over HTTP.
//
// The fetcher consults the cache store before any network call, retries
// transient failures with exponential backoff, deduplicates concurrent
// requests for the same document, and rate-limits outbound traffic. A
// definitive remote 404 is never retried.
package fetch

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/eaip-lib/eaip"
)

// maxDocumentSize bounds a single document read. eAIP pages are at most a
// few megabytes.
const maxDocumentSize = 32 * 1024 * 1024

// Fetcher retrieves raw documents, writing every network result back through
// the cache store before returning it.
type Fetcher struct {
	store   Store
	baseURL string
	client  *retryablehttp.Client
	limiter *rate.Limiter
	group   singleflight.Group
	logger  *zap.Logger
	bypass  bool
}

// Store is the cache surface the fetcher consults before the network.
type Store interface {
	Get(ref eaip.DocumentRef) (*eaip.RawDocument, bool, error)
	Put(ref eaip.DocumentRef, body []byte) (*eaip.RawDocument, error)
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.client.HTTPClient = client
		}
	}
}

// WithRetryMax bounds retry attempts for transient failures.
func WithRetryMax(n int) Option {
	return func(f *Fetcher) {
		if n >= 0 {
			f.client.RetryMax = n
		}
	}
}

// WithRateLimit throttles outbound requests.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(f *Fetcher) {
		if limit > 0 && burst > 0 {
			f.limiter = rate.NewLimiter(limit, burst)
		}
	}
}

// WithLogger sets the fetcher's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithBypassCache forces network fetches even for cached documents. Results
// are still written back through the store.
func WithBypassCache(bypass bool) Option {
	return func(f *Fetcher) {
		f.bypass = bypass
	}
}

// New creates a Fetcher resolving locators against baseURL and caching
// through store.
func New(store Store, baseURL string, opts ...Option) *Fetcher {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 4
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 8 * time.Second
	rc.Logger = nil

	f := &Fetcher{
		store:   store,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  rc,
		limiter: rate.NewLimiter(rate.Limit(8), 4),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the raw document for ref, from cache when possible.
//
// The listing document carries a freshness window owned by the resolver, so
// listing fetches always go to the network here; the resolver decides when a
// cached listing may be served instead.
func (f *Fetcher) Fetch(ctx context.Context, ref eaip.DocumentRef) (*eaip.RawDocument, error) {
	if ref.Kind != eaip.KindListing && !f.bypass {
		doc, ok, err := f.store.Get(ref)
		if err != nil {
			return nil, err
		}
		if ok {
			f.logger.Debug("fetch served from cache",
				zap.String("edition", ref.Edition.ID),
				zap.String("locator", ref.Locator))
			return doc, nil
		}
	}

	// Concurrent misses for the same document collapse into one download.
	url := f.URL(ref)
	v, err, shared := f.group.Do(url, func() (any, error) {
		return f.download(ctx, ref, url)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		f.logger.Debug("fetch deduplicated", zap.String("url", url))
	}
	return v.(*eaip.RawDocument), nil
}

// URL returns the absolute URL a ref resolves to. Edition-scoped documents
// live under the edition identifier; the listing lives at the publication
// root.
func (f *Fetcher) URL(ref eaip.DocumentRef) string {
	locator := strings.TrimLeft(ref.Locator, "/")
	if ref.Edition.IsZero() {
		return f.baseURL + "/" + locator
	}
	return f.baseURL + "/" + ref.Edition.ID + "/" + locator
}

func (f *Fetcher) download(ctx context.Context, ref eaip.DocumentRef, url string) (*eaip.RawDocument, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "building request for %s", url)
	}

	f.logger.Debug("fetching document", zap.String("url", url))

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eaip.NewNetworkError(url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// Definitive absence in this edition. Not retried.
		return nil, errors.Wrapf(eaip.ErrNotFound, "%s %s", ref.Kind, ref.Locator)
	case resp.StatusCode != http.StatusOK:
		return nil, eaip.NewNetworkError(url, errors.Newf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, eaip.NewNetworkError(url, err)
	}

	doc, err := f.store.Put(ref, body)
	if err != nil {
		return nil, err
	}
	return doc, nil
}
