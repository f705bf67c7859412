// Package status provides a thread-safe status tracker for the countdown
// daemon. It is read by the HTTP handlers and the heartbeat.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/countdown/internal/logic"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	Initial            uint32
	RefreshUs          int64
	Levels             int
	ToneHz             int
	HeartbeatMs        int64
	CancelAlarmOnReset bool
	Broker             string
	HTTPPort           string
	WSBroker           string // Websocket broker URL for browser MQTT (empty = disabled)
}

// Diagnostics counts hardware and queue failures that the countdown
// tolerates.
type Diagnostics struct {
	ToneErrors    uint64
	DisplayErrors uint64
	Dropped       uint64
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Countdown     logic.State
	Counts        logic.EventCounts
	Diagnostics   Diagnostics
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
			Countdown: logic.State{Remaining: cfg.Initial},
		},
	}
}

// Update sets the countdown state, event counts and diagnostics.
// Called from runLoop on every status tick.
func (t *Tracker) Update(state logic.State, counts logic.EventCounts, diag Diagnostics) {
	t.mu.Lock()
	t.snap.Countdown = state
	t.snap.Counts = counts
	t.snap.Diagnostics = diag
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
