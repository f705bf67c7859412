package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/countdown/internal/logic"
)

func TestFormatPayload(t *testing.T) {
	event := logic.Event{
		Timestamp: time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Type:      logic.EventStarted,
		Remaining: 7,
		Running:   true,
		Phase:     logic.PhaseRunning,
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Countdown.Timestamp != "2026-02-02T22:18:12Z" {
		t.Errorf("unexpected timestamp: %s", parsed.Countdown.Timestamp)
	}
	if parsed.Countdown.Event != "STARTED" {
		t.Errorf("unexpected event: %s", parsed.Countdown.Event)
	}
	if parsed.Countdown.Remaining != 7 {
		t.Errorf("unexpected remaining: %d", parsed.Countdown.Remaining)
	}
	if !parsed.Countdown.Running {
		t.Error("expected running true")
	}
	if parsed.Countdown.Phase != "RUNNING" {
		t.Errorf("unexpected phase: %s", parsed.Countdown.Phase)
	}
}

func TestFormatPayloadExactJSON(t *testing.T) {
	event := logic.Event{
		Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Type:      logic.EventAlarm,
		Remaining: 0,
		Running:   true,
		Phase:     logic.PhaseAlarm,
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `{"countdown":{"timestamp":"2026-01-01T00:00:00Z","event":"ALARM","remaining":0,"running":true,"phase":"ALARM"}}`
	if string(payload) != want {
		t.Errorf("payload:\n got %s\nwant %s", payload, want)
	}
}

func TestFormatPayloadAllEventTypes(t *testing.T) {
	tests := []struct {
		eventType logic.EventType
		phase     logic.Phase
		wantEvent string
	}{
		{logic.EventStarted, logic.PhaseRunning, "STARTED"},
		{logic.EventStopped, logic.PhaseIdle, "STOPPED"},
		{logic.EventReset, logic.PhaseIdle, "RESET"},
		{logic.EventAlarm, logic.PhaseAlarm, "ALARM"},
		{logic.EventAlarmDone, logic.PhaseRunning, "ALARM_DONE"},
	}

	for _, tt := range tests {
		t.Run(string(tt.eventType), func(t *testing.T) {
			payload, err := FormatPayload(logic.Event{Timestamp: time.Now(), Type: tt.eventType, Phase: tt.phase})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			var parsed Payload
			if err := json.Unmarshal(payload, &parsed); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if parsed.Countdown.Event != tt.wantEvent {
				t.Errorf("event: got %s, want %s", parsed.Countdown.Event, tt.wantEvent)
			}
			if parsed.Countdown.Phase != string(tt.phase) {
				t.Errorf("phase: got %s, want %s", parsed.Countdown.Phase, tt.phase)
			}
		})
	}
}

func TestFormatPayloadTimezoneConversion(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	event := logic.Event{
		Timestamp: time.Date(2026, 2, 3, 3, 0, 0, 0, loc),
		Type:      logic.EventReset,
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Countdown.Timestamp != "2026-02-02T22:00:00Z" {
		t.Errorf("timestamp should be UTC, got %s", parsed.Countdown.Timestamp)
	}
}

func TestTopics(t *testing.T) {
	if Topic != "timer/countdown/events" {
		t.Errorf("unexpected topic: %s", Topic)
	}
	if TopicSystem != "timer/countdown/system" {
		t.Errorf("unexpected system topic: %s", TopicSystem)
	}
}

func TestFormatSystemPayloadExactJSON(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 3, 14, 30, 0, 0, time.UTC),
		Event:     SystemShutdown,
		Reason:    "SIGTERM",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `{"system":{"timestamp":"2026-02-03T14:30:00Z","event":"SHUTDOWN","reason":"SIGTERM"}}`
	if string(payload) != want {
		t.Errorf("payload:\n got %s\nwant %s", payload, want)
	}
}

func TestFormatSystemPayloadOmitsEmptyReason(t *testing.T) {
	payload, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Date(2026, 2, 3, 14, 30, 0, 0, time.UTC),
		Event:     SystemReconnected,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `{"system":{"timestamp":"2026-02-03T14:30:00Z","event":"RECONNECTED"}}`
	if string(payload) != want {
		t.Errorf("payload:\n got %s\nwant %s", payload, want)
	}
}

func TestFormatSystemPayloadRawPassthrough(t *testing.T) {
	raw := []byte(`{"status":{"event":"HEARTBEAT"}}`)
	payload, err := FormatSystemPayload(SystemEvent{Event: SystemHeartbeat, RawPayload: raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("raw payload should pass through, got %s", payload)
	}
}

func TestWillPayloadFormat(t *testing.T) {
	var parsed SystemPayload
	if err := json.Unmarshal(WillPayload(), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.System.Event != SystemOffline {
		t.Errorf("event: got %s, want %s", parsed.System.Event, SystemOffline)
	}
	if parsed.System.Reason == "" {
		t.Error("will payload should carry a reason")
	}
	if parsed.System.Timestamp != "" {
		t.Errorf("will payload has no meaningful timestamp, got %s", parsed.System.Timestamp)
	}
}

func TestFakePublisher(t *testing.T) {
	pub := NewFakePublisher()

	event := logic.Event{Timestamp: time.Now(), Type: logic.EventStarted, Remaining: 10, Running: true, Phase: logic.PhaseRunning}
	if err := pub.Publish(event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(pub.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(pub.Events))
	}
	if pub.Events[0].Type != logic.EventStarted {
		t.Errorf("unexpected event type: %s", pub.Events[0].Type)
	}
	if len(pub.Payloads) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(pub.Payloads))
	}
}

func TestFakePublisherError(t *testing.T) {
	pub := NewFakePublisher()
	pub.PublishError = errors.New("connection failed")

	if err := pub.Publish(logic.Event{Type: logic.EventStopped}); err == nil {
		t.Error("expected error")
	}
	if len(pub.Events) != 0 {
		t.Error("event should not be recorded on error")
	}

	pub.PublishSystemError = errors.New("connection failed")
	if err := pub.PublishSystem(SystemEvent{Event: SystemShutdown}); err == nil {
		t.Error("expected system error")
	}
	if len(pub.SystemEvents) != 0 {
		t.Error("system event should not be recorded on error")
	}
}

func TestFakePublisherMixedEvents(t *testing.T) {
	pub := NewFakePublisher()

	_ = pub.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: SystemStartup, Retained: true})
	_ = pub.Publish(logic.Event{Timestamp: time.Now(), Type: logic.EventStarted})
	_ = pub.Publish(logic.Event{Timestamp: time.Now(), Type: logic.EventAlarm})
	_ = pub.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: SystemShutdown, Reason: "SIGINT"})

	events := pub.PublishedEvents()
	if len(events) != 2 || events[0].Type != logic.EventStarted || events[1].Type != logic.EventAlarm {
		t.Errorf("unexpected countdown events: %+v", events)
	}
	sys := pub.PublishedSystemEvents()
	if len(sys) != 2 || sys[0].Event != SystemStartup || sys[1].Event != SystemShutdown {
		t.Errorf("unexpected system events: %+v", sys)
	}
	if !sys[0].Retained {
		t.Error("retained flag should be recorded")
	}
}

func TestFakePublisherReset(t *testing.T) {
	pub := NewFakePublisher()
	_ = pub.Publish(logic.Event{Type: logic.EventStarted})
	_ = pub.PublishSystem(SystemEvent{Event: SystemStartup})
	_ = pub.Close()
	pub.Connected = true
	pub.PublishError = errors.New("x")

	pub.Reset()

	if len(pub.Events) != 0 || len(pub.Payloads) != 0 || len(pub.SystemEvents) != 0 || len(pub.SystemPayloads) != 0 {
		t.Error("reset should clear recorded events")
	}
	if pub.Closed || pub.Connected || pub.PublishError != nil {
		t.Error("reset should clear flags and errors")
	}

	if err := pub.Publish(logic.Event{Type: logic.EventReset}); err != nil {
		t.Errorf("publisher should be reusable after reset: %v", err)
	}
}

func TestFakePublisherIsConnected(t *testing.T) {
	var status ConnectionStatus = NewFakePublisher()
	if status.IsConnected() {
		t.Error("fake should start disconnected")
	}
	status.(*FakePublisher).Connected = true
	if !status.IsConnected() {
		t.Error("expected connected")
	}
}
