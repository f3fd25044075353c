package render

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/danmuck/demprobe/internal/protocol"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

var ErrNoTopic = errors.New("render: mqtt topic is required")

type MQTTConfig struct {
	Broker   string
	Topic    string
	ClientID string
}

// Batch is the payload published for one lookup.
type Batch struct {
	Count   int      `json:"count"`
	Records []Record `json:"records"`
}

// MQTT publishes each batch as one JSON message, QoS 0 and not retained.
type MQTT struct {
	client mqtt.Client
	topic  string
}

func NewMQTT(client mqtt.Client, topic string) (*MQTT, error) {
	if topic == "" {
		return nil, ErrNoTopic
	}
	return &MQTT{client: client, topic: topic}, nil
}

// DialMQTT connects to cfg.Broker and returns a sink publishing to cfg.Topic.
func DialMQTT(ctx context.Context, cfg MQTTConfig) (*MQTT, error) {
	if cfg.Topic == "" {
		return nil, ErrNoTopic
	}
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetConnectTimeout(10 * time.Second)
	client := mqtt.NewClient(opts)
	if err := wait(ctx, client.Connect()); err != nil {
		return nil, fmt.Errorf("render: connect %s: %w", cfg.Broker, err)
	}
	return &MQTT{client: client, topic: cfg.Topic}, nil
}

func (s *MQTT) Emit(ctx context.Context, records []protocol.CombinedRecord) error {
	payload, err := json.Marshal(Batch{Count: len(records), Records: toRecords(records)})
	if err != nil {
		return fmt.Errorf("render: marshal batch: %w", err)
	}
	if err := wait(ctx, s.client.Publish(s.topic, 0, false, payload)); err != nil {
		return fmt.Errorf("render: publish %s: %w", s.topic, err)
	}
	return nil
}

// Close disconnects, allowing 250ms for in-flight work.
func (s *MQTT) Close() {
	s.client.Disconnect(250)
}

func wait(ctx context.Context, token mqtt.Token) error {
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}
