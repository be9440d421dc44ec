package eaip

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Sentinel errors for the failure classes a caller may want to branch on.
// They survive wrapping; test with errors.Is.
var (
	// ErrNotFound reports that the remote responded definitively that a
	// document locator does not exist in the requested edition. Never retried.
	ErrNotFound = errors.New("document not found in edition")

	// ErrNoEditionAvailable reports that resolution found no published edition
	// satisfying the request: either no edition has an effective date at or
	// before the requested date, or the listing is unreachable and no cached
	// snapshot exists.
	ErrNoEditionAvailable = errors.New("no edition available")

	// ErrUnknownAirfield reports that the resolved edition's index does not
	// contain the requested ICAO code.
	ErrUnknownAirfield = errors.New("unknown airfield")

	// ErrNetwork marks transport failures that persisted through retries.
	ErrNetwork = errors.New("network failure")

	// ErrMalformed marks structural parse failures.
	ErrMalformed = errors.New("malformed document")
)

// NetworkError wraps a transport failure that survived the retry policy.
// errors.Is(err, ErrNetwork) reports true for it.
type NetworkError struct {
	URL string
	Err error
}

// NewNetworkError wraps err as a NetworkError for url.
func NewNetworkError(url string, err error) error {
	return errors.Mark(&NetworkError{URL: url, Err: err}, ErrNetwork)
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// MalformedDocumentError reports that a document is missing a structural
// marker the parser requires. It means the entity is absent for the edition,
// not that bad data was returned. errors.Is(err, ErrMalformed) reports true.
type MalformedDocumentError struct {
	Kind   DocumentKind
	Anchor string
}

// NewMalformedDocumentError reports a missing structural anchor in a document
// of the given kind.
func NewMalformedDocumentError(kind DocumentKind, anchor string) error {
	return errors.Mark(&MalformedDocumentError{Kind: kind, Anchor: anchor}, ErrMalformed)
}

func (e *MalformedDocumentError) Error() string {
	return fmt.Sprintf("malformed %s document: missing %s", e.Kind, e.Anchor)
}
