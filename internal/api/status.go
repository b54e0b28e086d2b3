package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

const statusCacheTTL = 5 * time.Minute

// Monitor heartbeat states as the status-page API reports them.
const (
	monitorDown     = 0
	monitorUp       = 1
	monitorDegraded = 2
)

type StatusMonitor struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type StatusGroup struct {
	Name        string          `json:"name"`
	MonitorList []StatusMonitor `json:"monitorList"`
}

type StatusIncident struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Style   string `json:"style"`
	Pin     bool   `json:"pin"`
}

type Heartbeat struct {
	Status int     `json:"status"`
	Ping   float64 `json:"ping"`
}

type MaintenanceTimeslot struct {
	StartDate string `json:"startDate"`
}

type MaintenanceWindow struct {
	Title        string                `json:"title"`
	Active       bool                  `json:"active"`
	Status       string                `json:"status"`
	TimeslotList []MaintenanceTimeslot `json:"timeslotList"`
}

type statusPageResponse struct {
	Config struct {
		StatusPageMessage string `json:"statusPageMessage"`
	} `json:"config"`
	Incident        *StatusIncident     `json:"incident"`
	PublicGroupList []StatusGroup       `json:"publicGroupList"`
	MaintenanceList []MaintenanceWindow `json:"maintenanceList"`
}

type heartbeatResponse struct {
	HeartbeatList map[string][]Heartbeat `json:"heartbeatList"`
	UptimeList    map[string]float64     `json:"uptimeList"`
}

// StatusSnapshot merges the status-page structure with the heartbeat
// feed; the heartbeat feed is what carries per-monitor uptime and ping.
type StatusSnapshot struct {
	Incident    *StatusIncident
	Groups      []StatusGroup
	Heartbeats  map[string][]Heartbeat
	Uptime      map[string]float64
	Maintenance []MaintenanceWindow
	Message     string
}

// LatestHeartbeat returns the newest heartbeat for a monitor, or false
// when the feed has none.
func (s *StatusSnapshot) LatestHeartbeat(monitorID int) (Heartbeat, bool) {
	beats := s.Heartbeats[fmt.Sprintf("%d", monitorID)]
	if len(beats) == 0 {
		return Heartbeat{}, false
	}
	return beats[len(beats)-1], true
}

// UptimePercent prefers the API-provided 24h uptime and falls back to the
// up-ratio of the raw heartbeats. No heartbeats at all reads as 100%.
func (s *StatusSnapshot) UptimePercent(monitorID int) float64 {
	if ratio, ok := s.Uptime[fmt.Sprintf("%d_24", monitorID)]; ok {
		return ratio * 100
	}
	beats := s.Heartbeats[fmt.Sprintf("%d", monitorID)]
	if len(beats) == 0 {
		return 100
	}
	up := 0
	for _, beat := range beats {
		if beat.Status == monitorUp {
			up++
		}
	}
	return float64(up) / float64(len(beats)) * 100
}

// StatusResult is a fetch outcome: Stale marks expired cache served
// because the API was unreachable.
type StatusResult struct {
	Snapshot *StatusSnapshot
	Cached   bool
	Stale    bool
}

// StatusClient fetches and caches the external status-page API. Responses
// are cached for five minutes; on fetch failure an expired cache is still
// served rather than failing the command.
type StatusClient struct {
	httpClient   *http.Client
	clock        clockwork.Clock
	statusURL    string
	heartbeatURL string
	l            *zap.Logger

	mu       sync.Mutex
	cached   *StatusSnapshot
	cachedAt time.Time
}

func NewStatusClient(statusURL, heartbeatURL string, clock clockwork.Clock, l *zap.Logger) *StatusClient {
	return &StatusClient{
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		clock:        clock,
		statusURL:    statusURL,
		heartbeatURL: heartbeatURL,
		l:            l,
	}
}

// Fetch returns the merged status snapshot, honoring the cache unless
// force is set.
func (c *StatusClient) Fetch(force bool) (StatusResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !force && c.cached != nil && c.clock.Now().Sub(c.cachedAt) < statusCacheTTL {
		return StatusResult{Snapshot: c.cached, Cached: true}, nil
	}

	snapshot, err := c.fetch()
	if err != nil {
		c.l.Error("failed to fetch status data", zap.Error(err))
		if c.cached != nil {
			return StatusResult{Snapshot: c.cached, Cached: true, Stale: true}, nil
		}
		return StatusResult{}, err
	}

	c.cached = snapshot
	c.cachedAt = c.clock.Now()
	return StatusResult{Snapshot: snapshot}, nil
}

func (c *StatusClient) fetch() (*StatusSnapshot, error) {
	var page statusPageResponse
	if err := c.getJSON(c.statusURL, &page); err != nil {
		return nil, fmt.Errorf("status api: %w", err)
	}
	var heartbeat heartbeatResponse
	if err := c.getJSON(c.heartbeatURL, &heartbeat); err != nil {
		return nil, fmt.Errorf("heartbeat api: %w", err)
	}

	return &StatusSnapshot{
		Incident:    page.Incident,
		Groups:      page.PublicGroupList,
		Heartbeats:  heartbeat.HeartbeatList,
		Uptime:      heartbeat.UptimeList,
		Maintenance: page.MaintenanceList,
		Message:     page.Config.StatusPageMessage,
	}, nil
}

func (c *StatusClient) getJSON(url string, out any) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mamba Host-Discord-Bot/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
