package config

import (
	"github.com/danmuck/demprobe/internal/pointsrc"
	"github.com/danmuck/demprobe/internal/probe"
)

func Default() Config {
	p := probe.DefaultConfig()
	serial := pointsrc.DefaultSerialConfig()
	return Config{
		EndpointBaseURL:  p.Transport.BaseURL,
		TimeoutMS:        p.Transport.Timeout.Milliseconds(),
		BinaryPath:       p.BinaryPath,
		QualityPath:      p.QualityPath,
		CSVPath:          p.CSVPath,
		BatchSize:        p.BatchSize,
		MaxInFlight:      p.MaxInFlight,
		RatePerSecond:    p.RatePerSecond,
		StrictDecode:     p.StrictDecode,
		MaxResponseBytes: p.Transport.Limits.MaxBodyBytes,
		Serial: SerialConfig{
			Port:     serial.Port,
			BaudRate: serial.BaudRate,
		},
		MQTT: MQTTConfig{
			Topic:    "demprobe/results",
			ClientID: "demprobe",
		},
	}
}
