package render

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/huangsam/deadreck/internal/contract"
	"github.com/huangsam/deadreck/schema"
)

const (
	connectTimeout = 5 * time.Second
	quiesceMillis  = 250
	publishQoS     = 1
)

// ErrConnectTimeout is returned when the broker does not answer in time.
var ErrConnectTimeout = errors.New("mqtt connect timed out")

// publisher is the part of mqtt.Client the sink needs.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload any) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTTSink publishes each stage as a JSON document on <topic>/<name>/<stage>.
type MQTTSink struct {
	Topic  string
	client publisher
}

var _ contract.RenderSink = &MQTTSink{} // Compile-time check

// Payload is the message body published for a stage.
type Payload struct {
	Name    string           `json:"name"`
	Stage   schema.Stage     `json:"stage"`
	Labels  [3]string        `json:"labels"`
	Samples []schema.Sample3 `json:"samples"`
}

// NewMQTTSink connects to the broker and returns a ready sink.
func NewMQTTSink(broker, topic, clientID string) (*MQTTSink, error) {
	if broker == "" {
		return nil, fmt.Errorf("mqtt sink requires a broker URL")
	}
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(connectTimeout).
		SetAutoReconnect(false)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("%w: %s", ErrConnectTimeout, broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to mqtt broker %s: %w", broker, err)
	}
	contract.LogInfo("Connected to MQTT broker", map[string]any{"broker": broker, "topic": topic})
	return newMQTTSink(client, topic), nil
}

func newMQTTSink(client publisher, topic string) *MQTTSink {
	if topic == "" {
		topic = contract.DefaultMQTTTopic
	}
	return &MQTTSink{Topic: topic, client: client}
}

// TopicFor returns the topic a series is published on.
func (s *MQTTSink) TopicFor(series schema.LabeledSeries) string {
	return fmt.Sprintf("%s/%s/%s", s.Topic, series.Name, series.Stage)
}

// Render implements the RenderSink interface.
func (s *MQTTSink) Render(ctx context.Context, series schema.LabeledSeries) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if series.Series.Empty() {
		return fmt.Errorf("render %s: %w", series.Stage, schema.ErrEmptySeries)
	}
	body, err := json.Marshal(Payload{
		Name:    series.Name,
		Stage:   series.Stage,
		Labels:  series.Labels,
		Samples: series.Series,
	})
	if err != nil {
		return err
	}

	token := s.client.Publish(s.TopicFor(series), publishQoS, false, body)
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close implements the RenderSink interface.
func (s *MQTTSink) Close() error {
	s.client.Disconnect(quiesceMillis)
	return nil
}
