package messaging

import (
	"testing"
	"time"
)

type fakeSink struct {
	callsign string
	lat, lng float64
	ts       time.Time
	calls    int
}

func (s *fakeSink) RecordPosition(callsign string, lat, lng float64, ts time.Time) {
	s.callsign = callsign
	s.lat = lat
	s.lng = lng
	s.ts = ts
	s.calls++
}

func TestPositionConsumer_RoutesReport(t *testing.T) {
	sink := &fakeSink{}
	c := &PositionConsumer{prefix: "cabwatch/positions", sink: sink}

	env := NewEnvelope("position_report", "driver-app-42", PositionReport{
		Callsign:  "42",
		Latitude:  51.5,
		Longitude: -0.12,
		Timestamp: time.Date(2026, 8, 14, 12, 0, 0, 0, time.UTC),
	})
	data, _ := env.Encode()

	c.handleMessage("cabwatch/positions/42", data)

	if sink.calls != 1 {
		t.Fatalf("calls = %d, want 1", sink.calls)
	}
	if sink.callsign != "42" {
		t.Errorf("callsign = %q, want %q", sink.callsign, "42")
	}
	if sink.lat != 51.5 {
		t.Errorf("lat = %f, want 51.5", sink.lat)
	}
}

func TestPositionConsumer_CallsignFromTopic(t *testing.T) {
	sink := &fakeSink{}
	c := &PositionConsumer{prefix: "cabwatch/positions", sink: sink}

	// Report body omits the callsign; the topic suffix carries it.
	env := NewEnvelope("position_report", "driver-app-7", PositionReport{
		Latitude:  53.48,
		Longitude: -2.24,
		Timestamp: time.Date(2026, 8, 14, 12, 0, 0, 0, time.UTC),
	})
	data, _ := env.Encode()

	c.handleMessage("cabwatch/positions/7", data)

	if sink.calls != 1 {
		t.Fatalf("calls = %d, want 1", sink.calls)
	}
	if sink.callsign != "7" {
		t.Errorf("callsign = %q, want %q", sink.callsign, "7")
	}
}

func TestPositionConsumer_DropsGarbage(t *testing.T) {
	sink := &fakeSink{}
	c := &PositionConsumer{prefix: "cabwatch/positions", sink: sink}

	c.handleMessage("cabwatch/positions/42", []byte(`not json`))
	c.handleMessage("cabwatch/positions", mustEncode(t, NewEnvelope("position_report", "x", PositionReport{})))

	if sink.calls != 0 {
		t.Errorf("calls = %d, want 0", sink.calls)
	}
}

func mustEncode(t *testing.T, env *Envelope) []byte {
	t.Helper()
	data, err := env.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return data
}
