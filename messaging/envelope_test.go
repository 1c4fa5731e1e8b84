package messaging

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDecodeEnvelope_PositionReport(t *testing.T) {
	data := []byte(`{
		"msg_type": "position_report",
		"msg_id": "abc-123",
		"station_id": "driver-app-42",
		"timestamp": "2026-08-14T12:00:00Z",
		"payload": {
			"callsign": "42",
			"latitude": 51.5033,
			"longitude": -0.1195,
			"timestamp": "2026-08-14T11:59:58Z"
		}
	}`)

	env, err := DecodeEnvelope(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.MsgType != "position_report" {
		t.Errorf("msg_type = %q, want %q", env.MsgType, "position_report")
	}
	if env.StationID != "driver-app-42" {
		t.Errorf("station_id = %q, want %q", env.StationID, "driver-app-42")
	}

	report, ok := env.Payload.(PositionReport)
	if !ok {
		t.Fatalf("payload type = %T, want PositionReport", env.Payload)
	}
	if report.Callsign != "42" {
		t.Errorf("callsign = %q, want %q", report.Callsign, "42")
	}
	if report.Latitude != 51.5033 {
		t.Errorf("latitude = %f, want 51.5033", report.Latitude)
	}
	if report.Longitude != -0.1195 {
		t.Errorf("longitude = %f, want -0.1195", report.Longitude)
	}
}

func TestDecodeEnvelope_StateChange(t *testing.T) {
	data := []byte(`{
		"msg_type": "state_change",
		"msg_id": "msg-2",
		"station_id": "core",
		"timestamp": "2026-08-14T12:00:00Z",
		"payload": {
			"callsign": "17",
			"from_state": "available",
			"to_state": "busy",
			"color": "yellow",
			"reason": "status:busy-family:meter-on"
		}
	}`)

	env, err := DecodeEnvelope(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	change, ok := env.Payload.(StateChangeEvent)
	if !ok {
		t.Fatalf("payload type = %T, want StateChangeEvent", env.Payload)
	}
	if change.Callsign != "17" {
		t.Errorf("callsign = %q, want %q", change.Callsign, "17")
	}
	if change.ToState != "busy" {
		t.Errorf("to_state = %q, want %q", change.ToState, "busy")
	}
	if change.Color != "yellow" {
		t.Errorf("color = %q, want %q", change.Color, "yellow")
	}
}

func TestDecodeEnvelope_UnknownType(t *testing.T) {
	data := []byte(`{
		"msg_type": "bogus",
		"msg_id": "msg-x",
		"station_id": "core",
		"timestamp": "2026-08-14T12:00:00Z",
		"payload": {}
	}`)

	_, err := DecodeEnvelope(data)
	if err == nil {
		t.Fatal("expected error for unknown msg_type")
	}
}

func TestDecodeEnvelope_InvalidJSON(t *testing.T) {
	_, err := DecodeEnvelope([]byte(`not json`))
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestDecodeEnvelope_InvalidPayload(t *testing.T) {
	data := []byte(`{
		"msg_type": "position_report",
		"msg_id": "msg-y",
		"station_id": "driver-app-9",
		"timestamp": "2026-08-14T12:00:00Z",
		"payload": "not an object"
	}`)

	_, err := DecodeEnvelope(data)
	if err == nil {
		t.Fatal("expected error for invalid payload")
	}
}

func TestNewEnvelope(t *testing.T) {
	callsign := "42"
	payload := AssignmentEvent{BookingID: "384781", Callsign: &callsign, Tier: "direct", Assigned: true}
	env := NewEnvelope("booking_assignment", "core", payload)

	if env.MsgType != "booking_assignment" {
		t.Errorf("msg_type = %q, want %q", env.MsgType, "booking_assignment")
	}
	if env.StationID != "core" {
		t.Errorf("station_id = %q, want %q", env.StationID, "core")
	}
	if env.MsgID == "" {
		t.Error("msg_id should not be empty")
	}
	if env.Timestamp.IsZero() {
		t.Error("timestamp should not be zero")
	}

	event, ok := env.Payload.(AssignmentEvent)
	if !ok {
		t.Fatalf("payload type = %T, want AssignmentEvent", env.Payload)
	}
	if event.BookingID != "384781" {
		t.Errorf("booking_id = %q, want %q", event.BookingID, "384781")
	}
}

func TestEnvelopeEncode(t *testing.T) {
	env := NewEnvelope("state_change", "core", StateChangeEvent{
		Callsign:  "7",
		FromState: "busy",
		ToState:   "available",
		Color:     "green",
		Reason:    "status:available-family",
	})

	data, err := env.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal encoded: %v", err)
	}

	if decoded["msg_type"] != "state_change" {
		t.Errorf("msg_type = %v, want %q", decoded["msg_type"], "state_change")
	}
	payload, ok := decoded["payload"].(map[string]any)
	if !ok {
		t.Fatalf("payload type = %T, want map", decoded["payload"])
	}
	if payload["to_state"] != "available" {
		t.Errorf("to_state = %v, want %q", payload["to_state"], "available")
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	original := NewEnvelope("position_report", "driver-app-19", PositionReport{
		Callsign:  "19",
		Latitude:  53.4808,
		Longitude: -2.2426,
		Timestamp: time.Date(2026, 8, 14, 11, 58, 0, 0, time.UTC),
	})

	data, err := original.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := DecodeEnvelope(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if decoded.MsgType != original.MsgType {
		t.Errorf("msg_type = %q, want %q", decoded.MsgType, original.MsgType)
	}
	report, ok := decoded.Payload.(PositionReport)
	if !ok {
		t.Fatalf("payload type = %T, want PositionReport", decoded.Payload)
	}
	if report.Callsign != "19" {
		t.Errorf("callsign = %q, want %q", report.Callsign, "19")
	}
	if report.Latitude != 53.4808 {
		t.Errorf("latitude = %f, want 53.4808", report.Latitude)
	}
}

func TestPositionTopic(t *testing.T) {
	topic := PositionTopic("cabwatch/positions", "42")
	if topic != "cabwatch/positions/42" {
		t.Errorf("topic = %q, want %q", topic, "cabwatch/positions/42")
	}
}

func TestCallsignFromTopic(t *testing.T) {
	tests := []struct {
		topic string
		want  string
	}{
		{"cabwatch/positions/42", "42"},
		{"cabwatch/positions/", ""},
		{"cabwatch/positions", ""},
		{"cabwatch/positions/42/extra", ""},
		{"other/topic", ""},
	}
	for _, tt := range tests {
		got := CallsignFromTopic("cabwatch/positions", tt.topic)
		if got != tt.want {
			t.Errorf("CallsignFromTopic(%q) = %q, want %q", tt.topic, got, tt.want)
		}
	}
}
