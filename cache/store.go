package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/eaip-lib/eaip"
)

// metaDir holds documents that are not scoped to an edition, i.e. the
// publication listing.
const metaDir = "_meta"

// Store is the file-system document cache. One Store owns one cache root;
// independent Stores pointed at isolated roots do not interact.
type Store struct {
	root   string
	logger *zap.Logger

	// mem fronts the disk for raw documents, keyed by entry path.
	mem *LRU[string, *eaip.RawDocument]
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the store's logger.
func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMemoryCapacity sets the in-memory layer capacity in documents.
func WithMemoryCapacity(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.mem = NewLRU[string, *eaip.RawDocument](n)
		}
	}
}

// NewStore creates a Store rooted at dir. The directory is created lazily on
// first write.
func NewStore(dir string, opts ...StoreOption) *Store {
	s := &Store{
		root:   dir,
		logger: zap.NewNop(),
		mem:    NewLRU[string, *eaip.RawDocument](256),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the cache root directory.
func (s *Store) Root() string { return s.root }

// Get returns the cached raw document for ref, or ok=false on a miss.
// FetchedAt is recovered from the entry's modification time.
func (s *Store) Get(ref eaip.DocumentRef) (*eaip.RawDocument, bool, error) {
	path := s.documentPath(ref)

	if doc, ok := s.mem.Get(path); ok {
		s.logger.Debug("cache memory hit", zap.String("path", path))
		return doc, true, nil
	}

	body, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "reading cache entry %s", path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, false, errors.Wrapf(err, "stating cache entry %s", path)
	}

	doc := &eaip.RawDocument{Ref: ref, Body: body, FetchedAt: info.ModTime()}
	s.mem.Set(path, doc)
	s.logger.Debug("cache disk hit", zap.String("path", path))
	return doc, true, nil
}

// Put stores body for ref and returns the persisted document. Editions are
// immutable, so a repeat Put for the same ref is idempotent: last writer wins
// with content expected identical.
func (s *Store) Put(ref eaip.DocumentRef, body []byte) (*eaip.RawDocument, error) {
	path := s.documentPath(ref)
	if err := s.writeAtomic(path, body); err != nil {
		return nil, err
	}

	doc := &eaip.RawDocument{Ref: ref, Body: body, FetchedAt: time.Now()}
	s.mem.Set(path, doc)
	return doc, nil
}

// Has reports whether a document for ref is cached.
func (s *Store) Has(ref eaip.DocumentRef) (bool, error) {
	path := s.documentPath(ref)
	if _, ok := s.mem.Get(path); ok {
		return true, nil
	}
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Wrapf(err, "stating cache entry %s", path)
}

// GetAirfield returns the cached parsed airfield for (edition, icao), or
// ok=false on a miss.
func (s *Store) GetAirfield(edition eaip.Edition, icao string) (*eaip.Airfield, bool, error) {
	path := s.airfieldPath(edition, icao)

	body, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "reading parsed artifact %s", path)
	}

	var a eaip.Airfield
	if err := json.Unmarshal(body, &a); err != nil {
		// The raw document is still cached, so a corrupt artifact is
		// recoverable: discard it and report a miss so the caller re-parses.
		s.logger.Warn("discarding corrupt parsed artifact",
			zap.String("path", path),
			zap.Error(err))
		os.Remove(path)
		return nil, false, nil
	}
	return &a, true, nil
}

// PutAirfield stores a parsed airfield artifact keyed by its edition and
// ICAO code.
func (s *Store) PutAirfield(a *eaip.Airfield) error {
	body, err := json.Marshal(a)
	if err != nil {
		return errors.Wrapf(err, "encoding airfield %s", a.ICAO)
	}
	return s.writeAtomic(s.airfieldPath(a.Edition, a.ICAO), body)
}

// writeAtomic writes body to path via a temp file and rename, so readers
// never observe a torn entry.
func (s *Store) writeAtomic(path string, body []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating cache directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return errors.Wrap(err, "creating temp cache entry")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrapf(err, "writing cache entry %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "closing cache entry %s", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "committing cache entry %s", path)
	}
	return nil
}

func (s *Store) documentPath(ref eaip.DocumentRef) string {
	edition := metaDir
	if !ref.Edition.IsZero() {
		edition = sanitize(ref.Edition.ID)
	}
	name := string(ref.Kind) + "-" + sanitize(ref.Locator)
	return filepath.Join(s.root, edition, name)
}

func (s *Store) airfieldPath(edition eaip.Edition, icao string) string {
	return filepath.Join(s.root, sanitize(edition.ID), "parsed", "airfield", sanitize(icao)+".json")
}

// sanitize maps a locator to a safe flat file name.
func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
