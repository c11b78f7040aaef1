package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/xiaot623/gogo/foodshare/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testBase = domain.Point{Lat: 51.3766938, Lon: -2.3234206}

const sampleCatalog = `[
	{"id": 1, "title": "Bananas", "description": "A bunch of ripe bananas.", "tags": ["fruit", "vegan"], "image": "/bananas.jpg"},
	{"id": 2, "title": "Bread", "description": "Baked too much bread.", "tags": ["bakery"], "image": "/bread.jpg", "listerUsername": "oh-yeast"},
	{"id": 3, "title": "Potatoes", "description": "Spare potatoes.", "tags": ["vegetable", "vegan"], "image": "/potato.jpg"}
]`

func TestParseAugmentsPositions(t *testing.T) {
	c, err := Parse([]byte(sampleCatalog), testBase)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	for _, l := range c.Listings() {
		want := PositionFor(l.ID, testBase)
		assert.Equal(t, want.Lat, l.Lat)
		assert.Equal(t, want.Lon, l.Lon)
		assert.Nil(t, l.Distance)
	}

	// Same id, same position across independent loads.
	again, err := Parse([]byte(sampleCatalog), testBase)
	require.NoError(t, err)
	assert.Equal(t, c.Listings(), again.Listings())
}

func TestParseRejectsMalformedEntries(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not an array", `{"id": 1}`},
		{"missing title", `[{"id": 1, "description": "d", "tags": [], "image": "i"}]`},
		{"missing tags", `[{"id": 1, "title": "t", "description": "d", "image": "i"}]`},
		{"missing id", `[{"title": "t", "description": "d", "tags": [], "image": "i"}]`},
		{"missing image", `[{"id": 1, "title": "t", "description": "d", "tags": []}]`},
		{"wrong type", `[{"id": "one", "title": "t", "description": "d", "tags": [], "image": "i"}]`},
		{"duplicate id", `[
			{"id": 1, "title": "t", "description": "d", "tags": [], "image": "i"},
			{"id": 1, "title": "u", "description": "d", "tags": [], "image": "i"}
		]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), testBase)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrLoadFailed))
		})
	}
}

func TestCatalogTagsSortedUnique(t *testing.T) {
	c, err := Parse([]byte(sampleCatalog), testBase)
	require.NoError(t, err)
	assert.Equal(t, []string{"bakery", "fruit", "vegan", "vegetable"}, c.Tags())
}

func TestCatalogGetReturnsCopy(t *testing.T) {
	c, err := Parse([]byte(sampleCatalog), testBase)
	require.NoError(t, err)

	l, ok := c.Get(1)
	require.True(t, ok)
	l.Tags[0] = "mutated"

	again, _ := c.Get(1)
	assert.Equal(t, "fruit", again.Tags[0])

	_, ok = c.Get(99)
	assert.False(t, ok)
	assert.True(t, c.Contains(3))
	assert.False(t, c.Contains(4))
}

type blockingSource struct {
	release chan struct{}
	data    []byte
}

func (s *blockingSource) Fetch(ctx context.Context) ([]byte, error) {
	select {
	case <-s.release:
		return s.data, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestLoaderNotReadyUntilResolved(t *testing.T) {
	src := &blockingSource{release: make(chan struct{}), data: []byte(sampleCatalog)}
	l := NewLoader(src, testBase, nil)
	l.Start(context.Background())

	state, _ := l.State()
	assert.Equal(t, domain.CatalogStateLoading, state)
	_, err := l.Catalog()
	assert.ErrorIs(t, err, ErrNotReady)

	close(src.release)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	c, err := l.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	state, _ = l.State()
	assert.Equal(t, domain.CatalogStateReady, state)
}

func TestLoaderFailureIsTerminal(t *testing.T) {
	l := NewLoader(FileSource{Path: filepath.Join(t.TempDir(), "missing.json")}, testBase, nil)
	_, err := l.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLoadFailed)

	state, stateErr := l.State()
	assert.Equal(t, domain.CatalogStateFailed, state)
	assert.ErrorIs(t, stateErr, ErrLoadFailed)

	// No automatic retry.
	l.Start(context.Background())
	_, err = l.Catalog()
	assert.ErrorIs(t, err, ErrLoadFailed)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0o644))

	l := NewLoader(NewSource(path), testBase, nil)
	c, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())
}

func TestHTTPSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/listings.json" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleCatalog))
	}))
	defer server.Close()

	src := NewSource(server.URL + "/listings.json")
	_, isHTTP := src.(*HTTPSource)
	require.True(t, isHTTP)

	data, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, sampleCatalog, string(data))

	_, err = NewSource(server.URL + "/missing").Fetch(context.Background())
	assert.Error(t, err)
}
