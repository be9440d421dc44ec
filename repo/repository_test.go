package repo

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eaip-lib/eaip"
	"github.com/eaip-lib/eaip/cache"
)

const menuHTML = `<div id="AD-2details">
  <div class="Hx"><a id="AD-2.EGKKplus" href="EG-AD-2.EGKK-en-GB.html">EGKK &#8212; GATWICK</a></div>
  <div class="Hx"><a id="AD-2.EGLLplus" href="EG-AD-2.EGLL-en-GB.html">EGLL &#8212; HEATHROW</a></div>
</div>`

const egkkHTML = `<html><body>
<h4 class="Title">EGKK AD 2.1 AERODROME LOCATION INDICATOR AND NAME</h4>
<p>EGKK &#8212; GATWICK</p>
<h4 class="Title">EGKK AD 2.18 ATS COMMUNICATION FACILITIES</h4>
<table>
  <tr><th>Service</th><th>Callsign</th><th>Frequency</th></tr>
  <tr><td>TWR</td><td>Gatwick Tower</td><td>124.230 MHz</td></tr>
</table>
</body></html>`

const egllHTML = `<html><body>
<h4 class="Title">EGLL AD 2.1 AERODROME LOCATION INDICATOR AND NAME</h4>
<p>EGLL &#8212; HEATHROW</p>
</body></html>`

func testEdition() eaip.Edition {
	return eaip.Edition{
		EffectiveDate: time.Date(2020, 10, 9, 0, 0, 0, 0, time.UTC),
		ID:            "2020-10-09-AIRAC",
	}
}

// mapFetcher serves canned documents by locator and counts fetches.
type mapFetcher struct {
	mu    sync.Mutex
	docs  map[string][]byte
	calls map[string]int
}

func newMapFetcher() *mapFetcher {
	f := &mapFetcher{
		docs:  make(map[string][]byte),
		calls: make(map[string]int),
	}
	f.docs[indexLocator] = []byte(menuHTML)
	f.docs["html/eAIP/EG-AD-2.EGKK-en-GB.html"] = []byte(egkkHTML)
	f.docs["html/eAIP/EG-AD-2.EGLL-en-GB.html"] = []byte(egllHTML)
	return f
}

func (f *mapFetcher) Fetch(ctx context.Context, ref eaip.DocumentRef) (*eaip.RawDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[ref.Locator]++
	body, ok := f.docs[ref.Locator]
	if !ok {
		return nil, errors.Wrapf(eaip.ErrNotFound, "%s", ref.Locator)
	}
	return &eaip.RawDocument{Ref: ref, Body: body, FetchedAt: time.Now()}, nil
}

func (f *mapFetcher) count(locator string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[locator]
}

func TestRepository_Codes(t *testing.T) {
	fetcher := newMapFetcher()
	r := New(testEdition(), fetcher, cache.NewStore(t.TempDir()))

	codes, err := r.Codes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"EGKK", "EGLL"}, codes, "codes keep index listing order")

	// Memoized: a second call re-parses nothing.
	_, err = r.Codes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.count(indexLocator))
}

func TestRepository_Airfield(t *testing.T) {
	fetcher := newMapFetcher()
	r := New(testEdition(), fetcher, cache.NewStore(t.TempDir()))
	ctx := context.Background()

	a, err := r.Airfield(ctx, "EGKK")
	require.NoError(t, err)
	assert.Equal(t, "EGKK", a.ICAO)
	assert.Equal(t, "Gatwick", a.Name)
	assert.Equal(t, testEdition(), a.Edition)
	require.Len(t, a.Radios, 1)
	assert.Equal(t, 124.230, a.Radios[0].FrequencyMHz)

	// Second lookup is memoized: identical data, zero further fetches.
	again, err := r.Airfield(ctx, "EGKK")
	require.NoError(t, err)
	assert.Equal(t, a, again)
	assert.Equal(t, 1, fetcher.count("html/eAIP/EG-AD-2.EGKK-en-GB.html"))
}

func TestRepository_UnknownAirfield(t *testing.T) {
	r := New(testEdition(), newMapFetcher(), cache.NewStore(t.TempDir()))

	_, err := r.Airfield(context.Background(), "ZZZZ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, eaip.ErrUnknownAirfield))
}

func TestRepository_ArtifactCacheSurvivesInstances(t *testing.T) {
	store := cache.NewStore(t.TempDir())
	first := newMapFetcher()
	r1 := New(testEdition(), first, store)

	_, err := r1.Airfield(context.Background(), "EGKK")
	require.NoError(t, err)
	assert.Equal(t, 1, first.count("html/eAIP/EG-AD-2.EGKK-en-GB.html"))

	// A fresh repository over the same store finds the parsed artifact and
	// never fetches the detail document.
	second := newMapFetcher()
	r2 := New(testEdition(), second, store)

	a, err := r2.Airfield(context.Background(), "EGKK")
	require.NoError(t, err)
	assert.Equal(t, "Gatwick", a.Name)
	assert.Equal(t, 0, second.count("html/eAIP/EG-AD-2.EGKK-en-GB.html"))
}

func TestRepository_CorruptArtifactReparsed(t *testing.T) {
	dir := t.TempDir()
	store := cache.NewStore(dir)
	first := newMapFetcher()
	r1 := New(testEdition(), first, store)

	_, err := r1.Airfield(context.Background(), "EGKK")
	require.NoError(t, err)

	// Corrupt the persisted artifact on disk.
	var artifact string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err == nil && strings.HasSuffix(path, ".json") {
			artifact = path
		}
		return err
	})
	require.NoError(t, err)
	require.NotEmpty(t, artifact)
	require.NoError(t, os.WriteFile(artifact, []byte("not json"), 0o644))

	// A fresh repository falls back to the raw document and re-parses
	// instead of failing the code permanently.
	second := newMapFetcher()
	r2 := New(testEdition(), second, store)

	a, err := r2.Airfield(context.Background(), "EGKK")
	require.NoError(t, err)
	assert.Equal(t, "Gatwick", a.Name)
	assert.Equal(t, 1, second.count("html/eAIP/EG-AD-2.EGKK-en-GB.html"))
}

func TestRepository_MalformedDetailPropagates(t *testing.T) {
	fetcher := newMapFetcher()
	fetcher.docs["html/eAIP/EG-AD-2.EGLL-en-GB.html"] = []byte("<html><body>broken</body></html>")
	r := New(testEdition(), fetcher, cache.NewStore(t.TempDir()))

	_, err := r.Airfield(context.Background(), "EGLL")
	require.Error(t, err)
	assert.True(t, errors.Is(err, eaip.ErrMalformed))
}

func TestDetailLocator(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"EG-AD-2.EGKK-en-GB.html", "html/eAIP/EG-AD-2.EGKK-en-GB.html"},
		{"./EG-AD-2.EGKK-en-GB.html", "html/eAIP/EG-AD-2.EGKK-en-GB.html"},
		{"html/eAIP/EG-AD-2.EGKK-en-GB.html", "html/eAIP/EG-AD-2.EGKK-en-GB.html"},
		{"/html/eAIP/EG-AD-2.EGKK-en-GB.html", "html/eAIP/EG-AD-2.EGKK-en-GB.html"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, detailLocator(tt.href))
	}
}
