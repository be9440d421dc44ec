package eaip

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the publication root of the UK NATS eAIP.
const DefaultBaseURL = "https://www.aurora.nats.co.uk/htmlAIP/Publications"

// Option configures a query client.
type Option func(*Options)

// Options holds all configuration consumed by the query client. The cache
// directory is the one externally configurable setting the core requires;
// everything else has working defaults.
type Options struct {
	// CacheDir is the root of the on-disk document cache, created on first
	// use. Defaults to ~/.cache/eaip-lib.
	CacheDir string

	// BaseURL is the publication root all document locators are resolved
	// against.
	BaseURL string

	// HTTPClient is the transport used for fetches. Retry and backoff are
	// layered on top of it.
	HTTPClient *http.Client

	// RetryMax bounds retry attempts for transient network failures.
	RetryMax int

	// RateLimit throttles outbound requests; the publication host is a
	// shared public service.
	RateLimit rate.Limit
	RateBurst int

	// ListingTTL is the freshness window for the edition listing. A cached
	// listing older than this is re-fetched. Defaults to one AIRAC cycle.
	ListingTTL time.Duration

	// BypassCache forces raw documents to be re-fetched from the network
	// even when cached; results are still written back through the cache.
	BypassCache bool

	// StreamWorkers is the number of concurrent detail fetches backing
	// AirfieldStream. Emission order is always index order.
	StreamWorkers int

	// Logger receives debug/warn events. Defaults to a no-op logger.
	Logger *zap.Logger
}

// DefaultOptions returns the default configuration.
func DefaultOptions() *Options {
	return &Options{
		CacheDir:      defaultCacheDir(),
		BaseURL:       DefaultBaseURL,
		HTTPClient:    &http.Client{Timeout: 30 * time.Second},
		RetryMax:      4,
		RateLimit:     rate.Limit(8),
		RateBurst:     4,
		ListingTTL:    AIRACCycle,
		StreamWorkers: 4,
		Logger:        zap.NewNop(),
	}
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".cache", "eaip-lib")
}

// WithCacheDir sets the cache root directory.
func WithCacheDir(dir string) Option {
	return func(o *Options) {
		if dir != "" {
			o.CacheDir = dir
		}
	}
}

// WithBaseURL sets the publication root URL.
func WithBaseURL(url string) Option {
	return func(o *Options) {
		if url != "" {
			o.BaseURL = url
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *Options) {
		if client != nil {
			o.HTTPClient = client
		}
	}
}

// WithRetryMax bounds the retry attempts for transient failures.
func WithRetryMax(n int) Option {
	return func(o *Options) {
		if n >= 0 {
			o.RetryMax = n
		}
	}
}

// WithRateLimit throttles outbound requests to limit per second with the
// given burst.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(o *Options) {
		if limit > 0 && burst > 0 {
			o.RateLimit = limit
			o.RateBurst = burst
		}
	}
}

// WithListingTTL overrides the edition listing freshness window.
func WithListingTTL(ttl time.Duration) Option {
	return func(o *Options) {
		if ttl > 0 {
			o.ListingTTL = ttl
		}
	}
}

// WithBypassCache forces raw documents to be re-fetched from the network.
// Parsed results are still written back through the cache.
func WithBypassCache(bypass bool) Option {
	return func(o *Options) {
		o.BypassCache = bypass
	}
}

// WithStreamWorkers sets the number of concurrent detail fetches backing
// AirfieldStream.
func WithStreamWorkers(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.StreamWorkers = n
		}
	}
}

// WithLogger sets the logger. The library is silent by default.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}
