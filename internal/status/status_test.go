package status

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/countdown/internal/logic"
)

func TestNewTracker(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := Config{Initial: 10, RefreshUs: 500, Levels: 4, Broker: "tcp://localhost:1883", HTTPPort: ":80"}
	tr := NewTracker(start, cfg)

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.Config.RefreshUs != 500 {
		t.Errorf("Config.RefreshUs: got %d, want 500", snap.Config.RefreshUs)
	}
	if snap.Config.HTTPPort != ":80" {
		t.Errorf("Config.HTTPPort: got %q, want %q", snap.Config.HTTPPort, ":80")
	}
	if snap.Countdown.Remaining != 10 {
		t.Errorf("initial remaining: got %d, want 10", snap.Countdown.Remaining)
	}
	if snap.Countdown.Phase() != logic.PhaseIdle {
		t.Errorf("initial phase: got %s, want IDLE", snap.Countdown.Phase())
	}
	if snap.MQTTConnected {
		t.Error("expected MQTTConnected=false initially")
	}
}

func TestUpdateAndSnapshot(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.Update(
		logic.State{Remaining: 4, Running: true},
		logic.EventCounts{Started: 3, Alarms: 1},
		Diagnostics{ToneErrors: 2, Dropped: 1},
	)

	snap := tr.Snapshot()
	if snap.Countdown.Remaining != 4 || !snap.Countdown.Running {
		t.Errorf("Countdown: got %+v", snap.Countdown)
	}
	if snap.Counts.Started != 3 {
		t.Errorf("Counts.Started: got %d, want 3", snap.Counts.Started)
	}
	if snap.Counts.Alarms != 1 {
		t.Errorf("Counts.Alarms: got %d, want 1", snap.Counts.Alarms)
	}
	if snap.Diagnostics.ToneErrors != 2 || snap.Diagnostics.Dropped != 1 {
		t.Errorf("Diagnostics: got %+v", snap.Diagnostics)
	}
}

func TestSetMQTTConnected(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.SetMQTTConnected(true)
	if !tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}

	tr.SetMQTTConnected(false)
	if tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=false")
	}
}

func TestSetNetwork(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	if tr.Snapshot().Network != nil {
		t.Error("expected nil Network initially")
	}

	net := &NetworkInfo{Type: "wifi", IP: "192.168.1.42", Status: "connected"}
	tr.SetNetwork(net)

	snap := tr.Snapshot()
	if snap.Network == nil {
		t.Fatal("expected non-nil Network")
	}
	if snap.Network.IP != "192.168.1.42" {
		t.Errorf("Network.IP: got %q, want %q", snap.Network.IP, "192.168.1.42")
	}
}

func TestSnapshotUptime(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		StartTime: start,
		Now:       start.Add(15 * time.Minute),
	}

	if snap.Uptime() != 15*time.Minute {
		t.Errorf("Uptime: got %v, want 15m", snap.Uptime())
	}
}

func TestSnapshotNowIsSet(t *testing.T) {
	tr := NewTracker(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Config{})

	before := time.Now()
	snap := tr.Snapshot()
	after := time.Now()

	if snap.Now.Before(before) || snap.Now.After(after) {
		t.Errorf("Now (%v) not between %v and %v", snap.Now, before, after)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	tr.Update(logic.State{Remaining: 9, Running: true}, logic.EventCounts{Started: 1}, Diagnostics{})

	snap1 := tr.Snapshot()

	tr.Update(logic.State{Remaining: 10}, logic.EventCounts{Started: 1, Resets: 1}, Diagnostics{})

	// snap1 should still reflect old state
	if snap1.Countdown.Remaining != 9 || !snap1.Countdown.Running {
		t.Error("snapshot should be a copy; countdown was modified")
	}
	if snap1.Counts.Resets != 0 {
		t.Error("snapshot should be a copy; counts were modified")
	}
}

func TestFormatJSON(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Countdown:     logic.State{Remaining: 0, Running: true, Blinking: true, BlinkCount: 3, Toning: true},
		Counts:        logic.EventCounts{Started: 5, Stopped: 2, Resets: 1, Alarms: 1},
		Diagnostics:   Diagnostics{DisplayErrors: 7},
		StartTime:     start,
		Now:           start.Add(15 * time.Minute),
		MQTTConnected: true,
		Config: Config{
			Initial: 10, RefreshUs: 500, Levels: 4, ToneHz: 440, HeartbeatMs: 900000,
			CancelAlarmOnReset: true, Broker: "tcp://localhost:1883", HTTPPort: ":80",
		},
	}

	data := FormatJSON(snap)

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	s := parsed.Status
	if s.Phase != "ALARM" {
		t.Errorf("Phase: got %q, want ALARM", s.Phase)
	}
	if s.Remaining != 0 || !s.Running || !s.Toning || s.BlinkCount != 3 {
		t.Errorf("countdown fields: got %+v", s)
	}
	if s.UptimeSeconds != 900 {
		t.Errorf("UptimeSeconds: got %d, want 900", s.UptimeSeconds)
	}
	if !s.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if s.Counts.Started != 5 || s.Counts.Stopped != 2 || s.Counts.Resets != 1 || s.Counts.Alarms != 1 {
		t.Errorf("Counts: got %+v", s.Counts)
	}
	if s.Diagnostics.DisplayErrors != 7 {
		t.Errorf("Diagnostics.DisplayErrors: got %d, want 7", s.Diagnostics.DisplayErrors)
	}
	if s.Config.ToneHz != 440 || s.Config.Levels != 4 || !s.Config.CancelAlarmOnReset {
		t.Errorf("Config: got %+v", s.Config)
	}
	// Event and Reason should be omitted
	if s.Event != "" {
		t.Errorf("expected empty Event for web format, got %q", s.Event)
	}
	if s.Reason != "" {
		t.Errorf("expected empty Reason for web format, got %q", s.Reason)
	}
}

func TestFormatJSONPhases(t *testing.T) {
	tests := []struct {
		name  string
		state logic.State
		want  string
	}{
		{"idle", logic.State{Remaining: 10}, "IDLE"},
		{"running", logic.State{Remaining: 5, Running: true}, "RUNNING"},
		{"alarm_tone", logic.State{Toning: true}, "ALARM"},
		{"alarm_blink_stopped", logic.State{Blinking: true}, "ALARM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var parsed StatusJSON
			if err := json.Unmarshal(FormatJSON(Snapshot{Countdown: tt.state}), &parsed); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if parsed.Status.Phase != tt.want {
				t.Errorf("Phase: got %q, want %q", parsed.Status.Phase, tt.want)
			}
		})
	}
}

func TestFormatStatusEvent(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Countdown:     logic.State{Remaining: 6, Running: true},
		Counts:        logic.EventCounts{Started: 3},
		StartTime:     start,
		Now:           start.Add(15 * time.Minute),
		MQTTConnected: true,
		Config:        Config{Broker: "tcp://localhost:1883"},
	}

	data := FormatStatusEvent(snap, "HEARTBEAT", "")

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Status.Event != "HEARTBEAT" {
		t.Errorf("Event: got %q, want HEARTBEAT", parsed.Status.Event)
	}
	if parsed.Status.Reason != "" {
		t.Errorf("Reason: got %q, want empty", parsed.Status.Reason)
	}
	if parsed.Status.Remaining != 6 {
		t.Errorf("Remaining: got %d, want 6", parsed.Status.Remaining)
	}
	if parsed.Status.UptimeSeconds != 900 {
		t.Errorf("UptimeSeconds: got %d, want 900", parsed.Status.UptimeSeconds)
	}
}

func TestFormatStatusEventShutdown(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		StartTime: start,
		Now:       start.Add(30 * time.Minute),
		Config:    Config{Broker: "tcp://localhost:1883"},
	}

	data := FormatStatusEvent(snap, "SHUTDOWN", "SIGTERM")

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Status.Event != "SHUTDOWN" {
		t.Errorf("Event: got %q, want SHUTDOWN", parsed.Status.Event)
	}
	if parsed.Status.Reason != "SIGTERM" {
		t.Errorf("Reason: got %q, want SIGTERM", parsed.Status.Reason)
	}
}

func TestFormatStatusEventOmitsReasonWhenEmpty(t *testing.T) {
	snap := Snapshot{
		StartTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Now:       time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC),
	}

	data := FormatStatusEvent(snap, "STARTUP", "")

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	status := raw["status"].(map[string]interface{})
	if _, exists := status["reason"]; exists {
		t.Error("reason should be omitted when empty")
	}
	if status["event"] != "STARTUP" {
		t.Errorf("event: got %v, want STARTUP", status["event"])
	}
	if _, exists := status["network"]; exists {
		t.Error("network should be omitted when unknown")
	}
}

func TestFormatJSONWithNetwork(t *testing.T) {
	snap := Snapshot{
		StartTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Now:       time.Date(2026, 1, 1, 0, 1, 0, 0, time.UTC),
		Network:   &NetworkInfo{Type: "wifi", IP: "192.168.1.42", Status: "connected", SSID: "MyNet"},
		Config:    Config{Broker: "tcp://localhost:1883"},
	}

	data := FormatJSON(snap)

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Status.Network == nil {
		t.Fatal("expected Network in JSON")
	}
	if parsed.Status.Network.IP != "192.168.1.42" {
		t.Errorf("Network.IP: got %q, want 192.168.1.42", parsed.Status.Network.IP)
	}
	if parsed.Status.Network.SSID != "MyNet" {
		t.Errorf("Network.SSID: got %q, want MyNet", parsed.Status.Network.SSID)
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	var wg sync.WaitGroup

	// Writer
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			tr.Update(logic.State{Remaining: uint32(i % 10)}, logic.EventCounts{Started: i}, Diagnostics{})
			tr.SetMQTTConnected(i%2 == 0)
			tr.SetNetwork(&NetworkInfo{IP: "1.2.3.4"})
		}
	}()

	// Reader
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			snap := tr.Snapshot()
			_ = FormatJSON(snap)
		}
	}()

	wg.Wait()
}
