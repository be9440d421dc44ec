package eaip

import (
	"time"
)

// AIRACCycle is the fixed interval between successive eAIP editions. A cached
// edition listing older than one cycle is treated as stale.
const AIRACCycle = 28 * 24 * time.Hour

// Edition identifies one immutable published release of the eAIP.
// Created by edition resolution; never mutated.
type Edition struct {
	// EffectiveDate is the publication's own stated effective date, at day
	// precision in UTC. It is the natural ordering key.
	EffectiveDate time.Time `json:"effectiveDate"`

	// ID is the opaque edition identifier from the source's listing,
	// unique per effective date (e.g. "2020-10-09-AIRAC").
	ID string `json:"id"`

	// DiscoveredAt records when resolution first observed this edition.
	DiscoveredAt time.Time `json:"discoveredAt"`
}

// IsZero reports whether e is the zero Edition.
func (e Edition) IsZero() bool { return e.ID == "" }

func (e Edition) String() string { return e.ID }

// DocumentKind names the role of a raw document within an edition.
type DocumentKind string

// Document kinds.
const (
	// KindListing is the publication listing enumerating available editions.
	// It is the only document with a freshness window; everything else is
	// permanently cacheable.
	KindListing DocumentKind = "listing"
	// KindAirfieldIndex is the per-edition menu of airfields.
	KindAirfieldIndex DocumentKind = "airfield-index"
	// KindAirfieldDetail is the per-airfield AD 2 detail page.
	KindAirfieldDetail DocumentKind = "airfield-detail"
)

// DocumentRef references one raw document within an edition. Immutable.
type DocumentRef struct {
	Edition Edition      `json:"edition"`
	Kind    DocumentKind `json:"kind"`
	// Locator is the edition-relative path of the document.
	Locator string `json:"locator"`
}

// RawDocument is the fetched bytes of a DocumentRef. Once persisted it is
// owned by the cache store; the fetcher only produces it transiently.
type RawDocument struct {
	Ref       DocumentRef `json:"ref"`
	Body      []byte      `json:"body"`
	FetchedAt time.Time   `json:"fetchedAt"`
}

// DateSelector selects which edition a query runs against. The zero value
// selects the latest published edition.
type DateSelector struct {
	date time.Time
}

// Latest selects the most recently published edition.
func Latest() DateSelector { return DateSelector{} }

// AsOf selects the most recent edition whose effective date is at or before
// date. Publications are not retroactive, so a date before the earliest known
// edition resolves to nothing.
func AsOf(date time.Time) DateSelector { return DateSelector{date: date} }

// IsLatest reports whether the selector asks for the latest edition.
func (s DateSelector) IsLatest() bool { return s.date.IsZero() }

// Date returns the as-of date. Only meaningful when IsLatest is false.
func (s DateSelector) Date() time.Time { return s.date }

func (s DateSelector) String() string {
	if s.IsLatest() {
		return "latest"
	}
	return s.date.Format("2006-01-02")
}
