// Package repo indexes the parsed entities of one resolved edition.
//
// A Repository is bound to exactly one edition and is never reused across
// editions: entities from different editions are distinct even when their
// content matches. Materialization is lazy. The index document is parsed at
// most once per instance; each airfield detail is parsed only when asked
// for, and parsed artifacts persist in the cache store so a later process
// skips both the fetch and the parse.
package repo

import (
	"context"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/eaip-lib/eaip"
	"github.com/eaip-lib/eaip/cache"
	"github.com/eaip-lib/eaip/parse"
)

// indexLocator is the edition-relative path of the airfield menu.
const indexLocator = "html/eAIP/EG-menu-en-GB.html"

// detailDir is the directory the menu's relative detail links resolve
// against.
const detailDir = "html/eAIP/"

// Fetcher is the document retrieval surface the repository depends on.
type Fetcher interface {
	Fetch(ctx context.Context, ref eaip.DocumentRef) (*eaip.RawDocument, error)
}

// Artifacts is the parsed-artifact surface of the cache store.
type Artifacts interface {
	GetAirfield(edition eaip.Edition, icao string) (*eaip.Airfield, bool, error)
	PutAirfield(a *eaip.Airfield) error
}

// Repository is the in-memory entity index for one edition.
type Repository struct {
	edition   eaip.Edition
	fetcher   Fetcher
	artifacts Artifacts
	logger    *zap.Logger

	mu       sync.Mutex
	loaded   bool
	codes    []string          // index listing order
	locators map[string]string // icao -> edition-relative detail locator

	airfields *cache.LRU[string, *eaip.Airfield]
}

// Option configures a Repository.
type Option func(*Repository)

// WithLogger sets the repository's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a Repository bound to edition.
func New(edition eaip.Edition, fetcher Fetcher, artifacts Artifacts, opts ...Option) *Repository {
	r := &Repository{
		edition:   edition,
		fetcher:   fetcher,
		artifacts: artifacts,
		logger:    zap.NewNop(),
		airfields: cache.NewLRU[string, *eaip.Airfield](256),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Edition returns the edition this repository is bound to.
func (r *Repository) Edition() eaip.Edition { return r.edition }

// Codes returns every ICAO code in the edition's index, in listing order.
// The index document is fetched and parsed at most once per instance.
func (r *Repository) Codes(ctx context.Context) ([]string, error) {
	if err := r.ensureIndex(ctx); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.codes))
	copy(out, r.codes)
	return out, nil
}

// Airfield returns the parsed airfield for icao, materializing it on first
// access. A code absent from the edition's index is ErrUnknownAirfield.
func (r *Repository) Airfield(ctx context.Context, icao string) (*eaip.Airfield, error) {
	if err := r.ensureIndex(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	locator, known := r.locators[icao]
	r.mu.Unlock()
	if !known {
		return nil, errors.Wrapf(eaip.ErrUnknownAirfield, "%s in edition %s", icao, r.edition.ID)
	}

	if a, ok := r.airfields.Get(icao); ok {
		return a, nil
	}

	// A prior process run may have left the parsed artifact on disk.
	if a, ok, err := r.artifacts.GetAirfield(r.edition, icao); err != nil {
		return nil, err
	} else if ok {
		r.airfields.Set(icao, a)
		return a, nil
	}

	doc, err := r.fetcher.Fetch(ctx, eaip.DocumentRef{
		Edition: r.edition,
		Kind:    eaip.KindAirfieldDetail,
		Locator: locator,
	})
	if err != nil {
		return nil, err
	}

	a, err := parse.ParseAirfieldDetail(r.edition, doc.Body, icao)
	if err != nil {
		return nil, err
	}

	if err := r.artifacts.PutAirfield(a); err != nil {
		return nil, err
	}
	r.airfields.Set(icao, a)

	r.logger.Debug("airfield materialized",
		zap.String("icao", icao),
		zap.String("edition", r.edition.ID))
	return a, nil
}

// ensureIndex fetches and parses the index document once.
func (r *Repository) ensureIndex(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loaded {
		return nil
	}

	doc, err := r.fetcher.Fetch(ctx, eaip.DocumentRef{
		Edition: r.edition,
		Kind:    eaip.KindAirfieldIndex,
		Locator: indexLocator,
	})
	if err != nil {
		return err
	}

	entries, err := parse.ParseIndex(doc.Body)
	if err != nil {
		return err
	}

	r.codes = make([]string, 0, len(entries))
	r.locators = make(map[string]string, len(entries))
	for _, e := range entries {
		r.codes = append(r.codes, e.ICAO)
		r.locators[e.ICAO] = detailLocator(e.Locator)
	}
	r.loaded = true
	return nil
}

// detailLocator resolves a menu-relative href to an edition-relative path.
func detailLocator(href string) string {
	href = strings.TrimPrefix(href, "./")
	if strings.HasPrefix(href, "/") || strings.HasPrefix(href, "html/") {
		return strings.TrimPrefix(href, "/")
	}
	return detailDir + href
}
