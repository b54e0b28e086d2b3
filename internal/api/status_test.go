package api

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const statusPageBody = `{
	"config": {"statusPageMessage": "All systems go"},
	"incident": null,
	"publicGroupList": [
		{"name": "Game Servers", "monitorList": [{"id": 1, "name": "EU Node"}, {"id": 2, "name": "US Node"}]}
	],
	"maintenanceList": []
}`

const heartbeatBody = `{
	"heartbeatList": {
		"1": [{"status": 1, "ping": 23.5}, {"status": 1, "ping": 25.1}],
		"2": [{"status": 1, "ping": 40}, {"status": 0, "ping": 0}]
	},
	"uptimeList": {"1_24": 0.9995}
}`

type fakeStatusAPI struct {
	pageHits      atomic.Int64
	heartbeatHits atomic.Int64
	failing       atomic.Bool
}

func (f *fakeStatusAPI) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/status-page", func(w http.ResponseWriter, r *http.Request) {
		f.pageHits.Add(1)
		if f.failing.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(statusPageBody))
	})
	mux.HandleFunc("/heartbeat", func(w http.ResponseWriter, r *http.Request) {
		f.heartbeatHits.Add(1)
		if f.failing.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(heartbeatBody))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newStatusClient(t *testing.T, clock clockwork.Clock) (*StatusClient, *fakeStatusAPI) {
	t.Helper()
	api := &fakeStatusAPI{}
	srv := api.server(t)
	client := NewStatusClient(srv.URL+"/status-page", srv.URL+"/heartbeat", clock, zap.NewNop())
	return client, api
}

func TestStatusFetch(t *testing.T) {
	client, _ := newStatusClient(t, clockwork.NewFakeClock())

	result, err := client.Fetch(false)
	require.NoError(t, err)
	assert.False(t, result.Cached)
	assert.False(t, result.Stale)

	snapshot := result.Snapshot
	require.Len(t, snapshot.Groups, 1)
	assert.Equal(t, "Game Servers", snapshot.Groups[0].Name)
	assert.Equal(t, "All systems go", snapshot.Message)

	beat, ok := snapshot.LatestHeartbeat(1)
	require.True(t, ok)
	assert.Equal(t, monitorUp, beat.Status)
	assert.InDelta(t, 25.1, beat.Ping, 0.01)

	_, ok = snapshot.LatestHeartbeat(99)
	assert.False(t, ok)
}

func TestStatusUptimePercent(t *testing.T) {
	client, _ := newStatusClient(t, clockwork.NewFakeClock())
	result, err := client.Fetch(false)
	require.NoError(t, err)
	snapshot := result.Snapshot

	// Monitor 1 has an explicit 24h uptime entry.
	assert.InDelta(t, 99.95, snapshot.UptimePercent(1), 0.001)
	// Monitor 2 falls back to the up-ratio of its heartbeats.
	assert.InDelta(t, 50.0, snapshot.UptimePercent(2), 0.001)
	// Unknown monitors read as fully up.
	assert.InDelta(t, 100.0, snapshot.UptimePercent(99), 0.001)
}

func TestStatusFetchHonorsCache(t *testing.T) {
	clock := clockwork.NewFakeClock()
	client, api := newStatusClient(t, clock)

	_, err := client.Fetch(false)
	require.NoError(t, err)

	clock.Advance(statusCacheTTL - time.Second)
	result, err := client.Fetch(false)
	require.NoError(t, err)
	assert.True(t, result.Cached)
	assert.Equal(t, int64(1), api.pageHits.Load())

	clock.Advance(2 * time.Second)
	result, err = client.Fetch(false)
	require.NoError(t, err)
	assert.False(t, result.Cached)
	assert.Equal(t, int64(2), api.pageHits.Load())
}

func TestStatusFetchForceBypassesCache(t *testing.T) {
	client, api := newStatusClient(t, clockwork.NewFakeClock())

	_, err := client.Fetch(false)
	require.NoError(t, err)

	result, err := client.Fetch(true)
	require.NoError(t, err)
	assert.False(t, result.Cached)
	assert.Equal(t, int64(2), api.pageHits.Load())
}

func TestStatusFetchServesStaleOnFailure(t *testing.T) {
	clock := clockwork.NewFakeClock()
	client, api := newStatusClient(t, clock)

	_, err := client.Fetch(false)
	require.NoError(t, err)

	api.failing.Store(true)
	clock.Advance(statusCacheTTL + time.Second)

	result, err := client.Fetch(false)
	require.NoError(t, err)
	assert.True(t, result.Cached)
	assert.True(t, result.Stale)
	assert.Equal(t, "All systems go", result.Snapshot.Message)
}

func TestStatusFetchErrorWithoutCache(t *testing.T) {
	client, api := newStatusClient(t, clockwork.NewFakeClock())
	api.failing.Store(true)

	_, err := client.Fetch(false)
	assert.Error(t, err)
}
