package v1

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/foodshare/internal/domain"
)

func TestStreamEvents(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)
	h.RegisterRoutes(e)
	ts := httptest.NewServer(e)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/session/events"
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer ws.Close()

	resp, err := http.Post(ts.URL+"/v1/session/start", echo.MIMEApplicationJSON, nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(ts.URL+"/v1/session/select", echo.MIMEApplicationJSON, strings.NewReader(`{"listing_id": 3}`))
	require.NoError(t, err)
	resp.Body.Close()

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev domain.Event
	require.NoError(t, ws.ReadJSON(&ev))
	assert.Equal(t, domain.EventTypeTrialStarted, ev.Type)
	assert.Equal(t, 1, ev.TrialID)

	require.NoError(t, ws.ReadJSON(&ev))
	assert.Equal(t, domain.EventTypeMissFlagged, ev.Type)
	require.NotNil(t, ev.ListingID)
	assert.Equal(t, 3, *ev.ListingID)
}
