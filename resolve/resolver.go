// Package resolve discovers published eAIP editions and maps "latest" or
// "as of date" requests to one concrete, immutable edition.
//
// The publication listing is the only document in the system with a
// freshness window: new editions appear every AIRAC cycle, so a cached
// listing older than one cycle is re-fetched. When the re-fetch fails but a
// stale copy exists, resolution degrades to the stale copy instead of
// failing outright; the degradation is logged and visible on the returned
// listing.
package resolve

import (
	"context"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/eaip-lib/eaip"
	"github.com/eaip-lib/eaip/parse"
)

// DefaultListingLocator is the publication listing path under the base URL.
const DefaultListingLocator = "index-en-GB.html"

// editionHrefRe recognizes edition links in the listing by their AIRAC
// identifier, e.g. "2020-10-09-AIRAC".
var editionHrefRe = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})-AIRAC`)

// Fetcher is the document retrieval surface the resolver depends on.
type Fetcher interface {
	Fetch(ctx context.Context, ref eaip.DocumentRef) (*eaip.RawDocument, error)
}

// Store is the cache surface the resolver uses to apply the listing
// freshness window.
type Store interface {
	Get(ref eaip.DocumentRef) (*eaip.RawDocument, bool, error)
}

// Listing is one observation of the publication listing: the known editions
// sorted by effective date descending. Stale marks a degraded result served
// from an expired cache entry because the remote was unreachable.
type Listing struct {
	Editions  []eaip.Edition
	FetchedAt time.Time
	Stale     bool
}

// Resolver maps date selectors to concrete editions.
type Resolver struct {
	store   Store
	fetcher Fetcher
	locator string
	ttl     time.Duration
	logger  *zap.Logger

	mu   sync.Mutex
	last *Listing
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithListingLocator overrides the listing document path.
func WithListingLocator(locator string) Option {
	return func(r *Resolver) {
		if locator != "" {
			r.locator = locator
		}
	}
}

// WithTTL overrides the listing freshness window.
func WithTTL(ttl time.Duration) Option {
	return func(r *Resolver) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithLogger sets the resolver's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a Resolver reading the listing through fetcher and applying
// the freshness window against store.
func New(store Store, fetcher Fetcher, opts ...Option) *Resolver {
	r := &Resolver{
		store:   store,
		fetcher: fetcher,
		locator: DefaultListingLocator,
		ttl:     eaip.AIRACCycle,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve maps a date selector to a concrete edition.
func (r *Resolver) Resolve(ctx context.Context, sel eaip.DateSelector) (eaip.Edition, error) {
	if sel.IsLatest() {
		return r.Latest(ctx)
	}
	return r.AsOf(ctx, sel.Date())
}

// Latest returns the most recently published edition.
func (r *Resolver) Latest(ctx context.Context) (eaip.Edition, error) {
	listing, err := r.listing(ctx)
	if err != nil {
		return eaip.Edition{}, err
	}
	if len(listing.Editions) == 0 {
		return eaip.Edition{}, errors.Wrap(eaip.ErrNoEditionAvailable, "listing is empty")
	}
	return listing.Editions[0], nil
}

// AsOf returns the most recent edition whose effective date is at or before
// date. Publications are not retroactive: a date before the earliest edition
// has no answer.
func (r *Resolver) AsOf(ctx context.Context, date time.Time) (eaip.Edition, error) {
	listing, err := r.listing(ctx)
	if err != nil {
		return eaip.Edition{}, err
	}
	for _, ed := range listing.Editions {
		if !ed.EffectiveDate.After(date) {
			return ed, nil
		}
	}
	return eaip.Edition{}, errors.Wrapf(eaip.ErrNoEditionAvailable,
		"no edition effective on or before %s", date.Format("2006-01-02"))
}

// LastListing returns the most recent listing observation, or nil before the
// first resolution. Callers use it to detect a degraded (stale) resolution.
func (r *Resolver) LastListing() *Listing {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func (r *Resolver) listingRef() eaip.DocumentRef {
	return eaip.DocumentRef{Kind: eaip.KindListing, Locator: r.locator}
}

// listing returns the current edition listing, applying the freshness
// window: serve a young cached copy, re-fetch an old one, and fall back to
// the stale copy with a degraded marker when the re-fetch fails.
func (r *Resolver) listing(ctx context.Context) (*Listing, error) {
	ref := r.listingRef()

	cached, haveCached, err := r.store.Get(ref)
	if err != nil {
		return nil, err
	}
	if haveCached && time.Since(cached.FetchedAt) < r.ttl {
		return r.remember(cached, false)
	}

	doc, err := r.fetcher.Fetch(ctx, ref)
	if err != nil {
		if haveCached {
			r.logger.Warn("listing re-fetch failed, serving stale cached listing",
				zap.Time("fetchedAt", cached.FetchedAt),
				zap.Error(err))
			return r.remember(cached, true)
		}
		return nil, errors.Mark(err, eaip.ErrNoEditionAvailable)
	}
	return r.remember(doc, false)
}

func (r *Resolver) remember(doc *eaip.RawDocument, stale bool) (*Listing, error) {
	editions, err := parseListing(doc.Body, doc.FetchedAt)
	if err != nil {
		return nil, err
	}
	listing := &Listing{Editions: editions, FetchedAt: doc.FetchedAt, Stale: stale}

	r.mu.Lock()
	r.last = listing
	r.mu.Unlock()
	return listing, nil
}

// parseListing scans the listing document for edition links and returns the
// editions sorted by effective date descending, ties broken by identifier.
// Ties should not occur for distinct editions; the ordering is defensive.
func parseListing(body []byte, discoveredAt time.Time) ([]eaip.Edition, error) {
	links, err := parse.Links(body)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var editions []eaip.Edition
	for _, link := range links {
		m := editionHrefRe.FindStringSubmatch(link.Href)
		if m == nil {
			continue
		}
		id := m[0]
		if seen[id] {
			continue
		}
		seen[id] = true

		effective, err := time.ParseInLocation("2006-01-02", m[1], time.UTC)
		if err != nil {
			continue
		}
		editions = append(editions, eaip.Edition{
			EffectiveDate: effective,
			ID:            id,
			DiscoveredAt:  discoveredAt,
		})
	}

	if len(editions) == 0 {
		return nil, eaip.NewMalformedDocumentError(eaip.KindListing, "edition links")
	}

	sort.Slice(editions, func(i, j int) bool {
		if !editions[i].EffectiveDate.Equal(editions[j].EffectiveDate) {
			return editions[i].EffectiveDate.After(editions[j].EffectiveDate)
		}
		return editions[i].ID < editions[j].ID
	})
	return editions, nil
}
