package resolve

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eaip-lib/eaip"
)

const listingHTML = `<html><body>
<a href="2020-10-09-AIRAC/html/index-en-GB.html">09 OCT 2020</a>
<a href="2020-09-10-AIRAC/html/index-en-GB.html">10 SEP 2020</a>
<a href="2020-08-13-AIRAC/html/index-en-GB.html">13 AUG 2020</a>
<a href="style/common.css">not an edition</a>
</body></html>`

type fakeStore struct {
	doc *eaip.RawDocument
}

func (s *fakeStore) Get(ref eaip.DocumentRef) (*eaip.RawDocument, bool, error) {
	if s.doc == nil {
		return nil, false, nil
	}
	return s.doc, true, nil
}

type fakeFetcher struct {
	calls int
	body  []byte
	err   error
}

func (f *fakeFetcher) Fetch(ctx context.Context, ref eaip.DocumentRef) (*eaip.RawDocument, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &eaip.RawDocument{Ref: ref, Body: f.body, FetchedAt: time.Now()}, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolver_Latest(t *testing.T) {
	fetcher := &fakeFetcher{body: []byte(listingHTML)}
	r := New(&fakeStore{}, fetcher)

	ed, err := r.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2020-10-09-AIRAC", ed.ID)
	assert.Equal(t, date(2020, 10, 9), ed.EffectiveDate)
	assert.Equal(t, 1, fetcher.calls)
}

func TestResolver_AsOf(t *testing.T) {
	tests := []struct {
		name    string
		asOf    time.Time
		want    string
		wantErr bool
	}{
		{name: "exact effective date", asOf: date(2020, 10, 9), want: "2020-10-09-AIRAC"},
		{name: "between editions", asOf: date(2020, 9, 20), want: "2020-09-10-AIRAC"},
		{name: "after latest", asOf: date(2021, 1, 1), want: "2020-10-09-AIRAC"},
		{name: "before earliest", asOf: date(2020, 1, 1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(&fakeStore{}, &fakeFetcher{body: []byte(listingHTML)})
			ed, err := r.AsOf(context.Background(), tt.asOf)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, eaip.ErrNoEditionAvailable))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ed.ID)
		})
	}
}

func TestResolver_Resolve(t *testing.T) {
	r := New(&fakeStore{}, &fakeFetcher{body: []byte(listingHTML)})

	ed, err := r.Resolve(context.Background(), eaip.Latest())
	require.NoError(t, err)
	assert.Equal(t, "2020-10-09-AIRAC", ed.ID)

	ed, err = r.Resolve(context.Background(), eaip.AsOf(date(2020, 9, 20)))
	require.NoError(t, err)
	assert.Equal(t, "2020-09-10-AIRAC", ed.ID)
}

func TestResolver_FreshCachedListingSkipsNetwork(t *testing.T) {
	store := &fakeStore{doc: &eaip.RawDocument{
		Body:      []byte(listingHTML),
		FetchedAt: time.Now().Add(-time.Hour),
	}}
	fetcher := &fakeFetcher{err: errors.New("network must not be touched")}

	r := New(store, fetcher)
	ed, err := r.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2020-10-09-AIRAC", ed.ID)
	assert.Equal(t, 0, fetcher.calls)
}

func TestResolver_StaleListingRefetched(t *testing.T) {
	store := &fakeStore{doc: &eaip.RawDocument{
		Body:      []byte(listingHTML),
		FetchedAt: time.Now().Add(-2 * eaip.AIRACCycle),
	}}
	fetcher := &fakeFetcher{body: []byte(listingHTML)}

	r := New(store, fetcher)
	_, err := r.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls, "a listing older than one cycle must be re-fetched")
	assert.False(t, r.LastListing().Stale)
}

func TestResolver_StaleFallbackWhenRefetchFails(t *testing.T) {
	store := &fakeStore{doc: &eaip.RawDocument{
		Body:      []byte(listingHTML),
		FetchedAt: time.Now().Add(-2 * eaip.AIRACCycle),
	}}
	fetcher := &fakeFetcher{err: eaip.NewNetworkError("http://example.test", errors.New("timeout"))}

	r := New(store, fetcher)
	ed, err := r.Latest(context.Background())
	require.NoError(t, err, "stale fallback must not fail outright")
	assert.Equal(t, "2020-10-09-AIRAC", ed.ID)

	listing := r.LastListing()
	require.NotNil(t, listing)
	assert.True(t, listing.Stale, "fallback result must carry the degraded marker")
}

func TestResolver_UnreachableWithoutCache(t *testing.T) {
	fetcher := &fakeFetcher{err: eaip.NewNetworkError("http://example.test", errors.New("timeout"))}

	r := New(&fakeStore{}, fetcher)
	_, err := r.Latest(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, eaip.ErrNoEditionAvailable))
	assert.True(t, errors.Is(err, eaip.ErrNetwork), "the underlying cause stays visible")
}

func TestResolver_MalformedListing(t *testing.T) {
	r := New(&fakeStore{}, &fakeFetcher{body: []byte("<html><body>no links</body></html>")})

	_, err := r.Latest(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, eaip.ErrMalformed))
}

func TestParseListing_TieBrokenByID(t *testing.T) {
	doc := `<html><body>
	<a href="2020-10-09-AIRAC/b.html">B</a>
	<a href="2020-10-09-AIRAC/a.html">A</a>
	</body></html>`

	// Same date, same identifier: deduplicated, not duplicated.
	editions, err := parseListing([]byte(doc), time.Now())
	require.NoError(t, err)
	assert.Len(t, editions, 1)
}

func TestParseListing_Order(t *testing.T) {
	editions, err := parseListing([]byte(listingHTML), time.Now())
	require.NoError(t, err)
	require.Len(t, editions, 3)
	assert.Equal(t, "2020-10-09-AIRAC", editions[0].ID)
	assert.Equal(t, "2020-09-10-AIRAC", editions[1].ID)
	assert.Equal(t, "2020-08-13-AIRAC", editions[2].ID)
}
