package rpc

import (
	"context"
	"net"
	"net/rpc/jsonrpc"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/foodshare/internal/adapter/ingress"
	"github.com/xiaot623/gogo/foodshare/internal/catalog"
	"github.com/xiaot623/gogo/foodshare/internal/config"
	"github.com/xiaot623/gogo/foodshare/internal/domain"
	"github.com/xiaot623/gogo/foodshare/internal/service"
	"github.com/xiaot623/gogo/foodshare/internal/study"
	"github.com/xiaot623/gogo/foodshare/tests/helpers"
)

type staticSource []byte

func (s staticSource) Fetch(ctx context.Context) ([]byte, error) { return s, nil }

const testCatalog = `[
	{"id": 1, "title": "Bananas", "description": "Ripe bananas.", "tags": ["fruit"], "image": "/bananas.jpg"},
	{"id": 2, "title": "Bread", "description": "Sourdough.", "tags": ["bakery"], "image": "/bread.jpg"}
]`

const testStudy = `
participant: P03
methodOrder: [filter]
trials:
  filter:
    - {id: 1, targetId: 1, prompt: Find some fruit}
`

func startServer(t *testing.T, catalogJSON, studyYAML string) string {
	t.Helper()
	cfg := &config.Config{
		BaseLocation:   domain.Point{Lat: 51.3766938, Lon: -2.3234206},
		UserLocation:   domain.Point{Lat: 51.369837, Lon: -2.3655009},
		FuzzyThreshold: 0.4,
		MissFlagDelay:  time.Second,
	}
	studyCfg, err := study.ParseConfig([]byte(studyYAML))
	require.NoError(t, err)

	loader := catalog.NewLoader(staticSource(catalogJSON), cfg.BaseLocation, nil)
	svc := service.New(loader, studyCfg, helpers.NewTestSQLiteStore(t), ingress.NewClient("", nil), cfg, nil, nil)
	require.NoError(t, svc.Prepare(context.Background()))
	t.Cleanup(svc.Close)

	srv, err := NewServer(svc, nil)
	require.NoError(t, err)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	served := make(chan error, 1)
	go func() { served <- srv.Serve(ln) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		assert.NoError(t, srv.Shutdown(ctx))
		assert.NoError(t, <-served)
	})
	return ln.Addr().String()
}

func TestStudyRPC(t *testing.T) {
	addr := startServer(t, testCatalog, testStudy)
	client, err := jsonrpc.Dial("tcp", addr)
	require.NoError(t, err)
	defer client.Close()

	var snap domain.SessionSnapshot
	require.NoError(t, client.Call("Study.Snapshot", &Empty{}, &snap))
	assert.Equal(t, domain.SessionStateAwaitingStart, snap.State)
	assert.Equal(t, "P03", snap.Participant)

	var started domain.TransitionResponse
	require.NoError(t, client.Call("Study.Start", &Empty{}, &started))
	assert.True(t, started.Changed)

	tags := []string{"fruit"}
	var params domain.UpdateParamsResponse
	require.NoError(t, client.Call("Study.UpdateParams", &domain.UpdateParamsRequest{Tags: &tags}, &params))
	assert.True(t, params.Changed)
	assert.Equal(t, []string{"fruit"}, params.Params.Tags)

	var render domain.ListingsResponse
	require.NoError(t, client.Call("Study.Listings", &Empty{}, &render))
	require.Len(t, render.Listings, 1)
	assert.Equal(t, 1, render.Listings[0].ID)

	target := 1
	var sel domain.SelectResponse
	err = client.Call("Study.Select", &domain.SelectRequest{}, &sel)
	assert.Error(t, err)

	require.NoError(t, client.Call("Study.Select", &domain.SelectRequest{ListingID: &target}, &sel))
	assert.True(t, sel.Hit)
	assert.Equal(t, domain.SessionStateComplete, sel.Session.State)

	var cont domain.TransitionResponse
	require.NoError(t, client.Call("Study.Continue", &Empty{}, &cont))
	assert.False(t, cont.Changed)
}

func TestStudyRPCSelectsListingZero(t *testing.T) {
	catalogJSON := `[
	{"id": 0, "title": "Carrots", "description": "A bag of carrots.", "tags": ["vegetable"], "image": "/carrots.jpg"},
	{"id": 1, "title": "Bananas", "description": "Ripe bananas.", "tags": ["fruit"], "image": "/bananas.jpg"}
]`
	studyYAML := `
participant: P04
methodOrder: [search]
trials:
  search:
    - {id: 1, targetId: 0, prompt: Find the carrots}
`
	client, err := jsonrpc.Dial("tcp", startServer(t, catalogJSON, studyYAML))
	require.NoError(t, err)
	defer client.Close()

	var started domain.TransitionResponse
	require.NoError(t, client.Call("Study.Start", &Empty{}, &started))

	zero := 0
	var sel domain.SelectResponse
	require.NoError(t, client.Call("Study.Select", &domain.SelectRequest{ListingID: &zero}, &sel))
	assert.True(t, sel.Hit)
	require.NotNil(t, sel.Result)
	assert.Equal(t, 0, sel.Result.SelectedID)
	assert.Equal(t, domain.SessionStateComplete, sel.Session.State)
}
