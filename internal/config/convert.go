package config

import (
	"time"

	"github.com/danmuck/demprobe/internal/pointsrc"
	"github.com/danmuck/demprobe/internal/probe"
	"github.com/danmuck/demprobe/internal/protocol/frame"
	"github.com/danmuck/demprobe/internal/render"
	"github.com/danmuck/demprobe/internal/transport"
)

func (c Config) Probe() probe.Config {
	return probe.Config{
		Transport: transport.Config{
			BaseURL: c.EndpointBaseURL,
			Timeout: time.Duration(c.TimeoutMS) * time.Millisecond,
			Limits:  frame.Limits{MaxBodyBytes: c.MaxResponseBytes},
		},
		BinaryPath:    c.BinaryPath,
		QualityPath:   c.QualityPath,
		CSVPath:       c.CSVPath,
		BatchSize:     c.BatchSize,
		MaxInFlight:   c.MaxInFlight,
		RatePerSecond: c.RatePerSecond,
		StrictDecode:  c.StrictDecode,
	}
}

func (c Config) SerialPort() pointsrc.SerialConfig {
	return pointsrc.SerialConfig{
		Port:     c.Serial.Port,
		BaudRate: c.Serial.BaudRate,
	}
}

func (c Config) MQTTSink() render.MQTTConfig {
	return render.MQTTConfig{
		Broker:   c.MQTT.Broker,
		Topic:    c.MQTT.Topic,
		ClientID: c.MQTT.ClientID,
	}
}
