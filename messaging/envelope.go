package messaging

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RawEnvelope is used for two-stage unmarshalling: first decode the envelope,
// then decode payload based on msg_type.
type RawEnvelope struct {
	MsgType   string          `json:"msg_type"`
	MsgID     string          `json:"msg_id"`
	StationID string          `json:"station_id"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// DecodeEnvelope unmarshals a raw message into a typed Envelope with the correct payload type.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var raw RawEnvelope
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	env := &Envelope{
		MsgType:   raw.MsgType,
		MsgID:     raw.MsgID,
		StationID: raw.StationID,
		Timestamp: raw.Timestamp,
	}

	var payload any
	switch raw.MsgType {
	case "position_report":
		var p PositionReport
		if err := json.Unmarshal(raw.Payload, &p); err != nil {
			return nil, fmt.Errorf("decode position_report payload: %w", err)
		}
		payload = p
	case "state_change":
		var p StateChangeEvent
		if err := json.Unmarshal(raw.Payload, &p); err != nil {
			return nil, fmt.Errorf("decode state_change payload: %w", err)
		}
		payload = p
	case "booking_assignment":
		var p AssignmentEvent
		if err := json.Unmarshal(raw.Payload, &p); err != nil {
			return nil, fmt.Errorf("decode booking_assignment payload: %w", err)
		}
		payload = p
	case "fleet_summary":
		var p FleetSummary
		if err := json.Unmarshal(raw.Payload, &p); err != nil {
			return nil, fmt.Errorf("decode fleet_summary payload: %w", err)
		}
		payload = p
	case "unknown_status":
		var p UnknownStatusAlert
		if err := json.Unmarshal(raw.Payload, &p); err != nil {
			return nil, fmt.Errorf("decode unknown_status payload: %w", err)
		}
		payload = p
	default:
		return nil, fmt.Errorf("unknown msg_type: %s", raw.MsgType)
	}
	env.Payload = payload
	return env, nil
}

// NewEnvelope creates an outbound envelope with a new UUID and timestamp.
func NewEnvelope(msgType, stationID string, payload any) *Envelope {
	return &Envelope{
		MsgType:   msgType,
		MsgID:     uuid.New().String(),
		StationID: stationID,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

// Encode marshals an envelope to JSON.
func (e *Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// PositionTopic returns the per-vehicle topic a driver app publishes to.
func PositionTopic(prefix, callsign string) string {
	return prefix + "/" + callsign
}

// CallsignFromTopic extracts the trailing callsign segment from a
// per-vehicle positions topic. Returns "" if the topic has no suffix.
func CallsignFromTopic(prefix, topic string) string {
	rest := strings.TrimPrefix(topic, prefix+"/")
	if rest == topic || rest == "" || strings.Contains(rest, "/") {
		return ""
	}
	return rest
}
