package messaging

import (
	"log"
	"time"
)

// PositionSink receives decoded GPS fixes from the positions topic.
type PositionSink interface {
	RecordPosition(callsign string, lat, lng float64, ts time.Time)
}

// PositionConsumer subscribes to the per-vehicle positions topics and
// routes decoded reports to the sink.
type PositionConsumer struct {
	client *Client
	prefix string
	sink   PositionSink
}

func NewPositionConsumer(client *Client, prefix string, sink PositionSink) *PositionConsumer {
	return &PositionConsumer{
		client: client,
		prefix: prefix,
		sink:   sink,
	}
}

// Start subscribes to the positions topic. Over MQTT driver apps each
// publish to prefix/<callsign>, so the subscription is a single-level
// wildcard; over Kafka everything arrives on the prefix topic itself.
func (c *PositionConsumer) Start() error {
	topic := c.prefix
	if c.client.backend == "mqtt" {
		topic = c.prefix + "/+"
	}
	return c.client.Subscribe(topic, c.handleMessage)
}

func (c *PositionConsumer) handleMessage(topic string, payload []byte) {
	env, err := DecodeEnvelope(payload)
	if err != nil {
		log.Printf("positions: decode error: %v", err)
		return
	}

	report, ok := env.Payload.(PositionReport)
	if !ok {
		log.Printf("positions: unexpected payload type: %T", env.Payload)
		return
	}

	callsign := report.Callsign
	if callsign == "" {
		callsign = CallsignFromTopic(c.prefix, topic)
	}
	if callsign == "" {
		log.Printf("positions: report with no callsign on %s", topic)
		return
	}

	ts := report.Timestamp
	if ts.IsZero() {
		ts = env.Timestamp
	}
	c.sink.RecordPosition(callsign, report.Latitude, report.Longitude, ts)
}
