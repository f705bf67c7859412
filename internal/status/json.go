package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string          `json:"event,omitempty"`
	Reason        string          `json:"reason,omitempty"`
	Remaining     uint32          `json:"remaining"`
	Running       bool            `json:"running"`
	Phase         string          `json:"phase"`
	BlinkCount    uint32          `json:"blink_count"`
	Toning        bool            `json:"toning"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	StartTime     string          `json:"start_time"`
	Timestamp     string          `json:"timestamp"`
	MQTT          MQTTStatus      `json:"mqtt"`
	Counts        CountsJSON      `json:"event_counts"`
	Diagnostics   DiagnosticsJSON `json:"diagnostics"`
	Network       *NetworkJSON    `json:"network,omitempty"`
	Config        ConfigJSON      `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Started   int `json:"started"`
	Stopped   int `json:"stopped"`
	Resets    int `json:"resets"`
	Alarms    int `json:"alarms"`
	AlarmDone int `json:"alarm_done"`
}

// DiagnosticsJSON is the JSON representation of tolerated failures.
type DiagnosticsJSON struct {
	ToneErrors    uint64 `json:"tone_errors"`
	DisplayErrors uint64 `json:"display_errors"`
	DroppedEvents uint64 `json:"dropped_events"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Initial            uint32 `json:"initial"`
	RefreshUs          int64  `json:"refresh_us"`
	Levels             int    `json:"levels"`
	ToneHz             int    `json:"tone_hz"`
	HeartbeatMs        int64  `json:"heartbeat_ms"`
	CancelAlarmOnReset bool   `json:"cancel_alarm_on_reset"`
	Broker             string `json:"broker"`
	HTTPPort           string `json:"http_port"`
	WSBroker           string `json:"ws_broker,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	c := snap.Countdown
	return StatusInner{
		Remaining:     c.Remaining,
		Running:       c.Running,
		Phase:         string(c.Phase()),
		BlinkCount:    c.BlinkCount,
		Toning:        c.Toning,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Started:   snap.Counts.Started,
			Stopped:   snap.Counts.Stopped,
			Resets:    snap.Counts.Resets,
			Alarms:    snap.Counts.Alarms,
			AlarmDone: snap.Counts.AlarmDone,
		},
		Diagnostics: DiagnosticsJSON{
			ToneErrors:    snap.Diagnostics.ToneErrors,
			DisplayErrors: snap.Diagnostics.DisplayErrors,
			DroppedEvents: snap.Diagnostics.Dropped,
		},
		Config: ConfigJSON{
			Initial:            snap.Config.Initial,
			RefreshUs:          snap.Config.RefreshUs,
			Levels:             snap.Config.Levels,
			ToneHz:             snap.Config.ToneHz,
			HeartbeatMs:        snap.Config.HeartbeatMs,
			CancelAlarmOnReset: snap.Config.CancelAlarmOnReset,
			Broker:             snap.Config.Broker,
			HTTPPort:           snap.Config.HTTPPort,
			WSBroker:           snap.Config.WSBroker,
		},
	}
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
