// Package mqtt publishes countdown and system events to an MQTT broker.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/countdown/internal/logic"
)

// Topic is the MQTT topic for countdown events.
const Topic = "timer/countdown/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "timer/countdown/system"

// System event names.
const (
	SystemStartup     = "STARTUP"
	SystemShutdown    = "SHUTDOWN"
	SystemHeartbeat   = "HEARTBEAT"
	SystemReconnected = "RECONNECTED"
	SystemOffline     = "OFFLINE"
)

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a countdown event to the broker.
	// A failed publish is reported, never fatal.
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent is a lifecycle event such as STARTUP, SHUTDOWN or HEARTBEAT.
type SystemEvent struct {
	Timestamp  time.Time
	Event      string
	Reason     string // shutdown signal, if any
	RawPayload []byte // pre-formatted payload, sent as is when set
	Retained   bool
}

// Payload is the MQTT message body for countdown events.
type Payload struct {
	Countdown CountdownPayload `json:"countdown"`
}

// CountdownPayload contains the countdown event details.
type CountdownPayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Remaining uint32 `json:"remaining"`
	Running   bool   `json:"running"`
	Phase     string `json:"phase"`
}

// FormatPayload creates the JSON payload for a countdown event.
func FormatPayload(event logic.Event) ([]byte, error) {
	payload := Payload{
		Countdown: CountdownPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(event.Type),
			Remaining: event.Remaining,
			Running:   event.Running,
			Phase:     string(event.Phase),
		},
	}
	return json.Marshal(payload)
}

// SystemPayload is the body for system events that carry no status
// snapshot, such as the will message and RECONNECTED.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// WillPayload is the last-will message the broker sends if the daemon
// disappears without a clean disconnect. It carries no timestamp.
func WillPayload() []byte {
	data, _ := json.Marshal(SystemPayload{
		System: SystemPayloadInner{Event: SystemOffline, Reason: "connection lost"},
	})
	return data
}
