package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

var (
	ErrUnknownKeys    = errors.New("config: unknown keys")
	ErrInvalidTimeout = errors.New("config: timeout_ms must be positive")
	ErrInvalidLimit   = errors.New("config: max_response_bytes must be positive")
	ErrMQTTTopic      = errors.New("config: mqtt.topic is required when mqtt.broker is set")
)

type MQTTConfig struct {
	Broker   string `toml:"broker"`
	Topic    string `toml:"topic"`
	ClientID string `toml:"client_id"`
}

type SerialConfig struct {
	Port     string `toml:"port"`
	BaudRate uint   `toml:"baud_rate"`
}

// Config is the demprobe file format.
type Config struct {
	EndpointBaseURL  string       `toml:"endpoint_base_url"`
	TimeoutMS        int64        `toml:"timeout_ms"`
	BinaryPath       string       `toml:"binary_path"`
	QualityPath      string       `toml:"quality_path"`
	CSVPath          string       `toml:"csv_path"`
	BatchSize        int          `toml:"batch_size"`
	MaxInFlight      int          `toml:"max_in_flight"`
	RatePerSecond    float64      `toml:"rate_per_second"`
	StrictDecode     bool         `toml:"strict_decode"`
	MaxResponseBytes int64        `toml:"max_response_bytes"`
	Serial           SerialConfig `toml:"serial"`
	MQTT             MQTTConfig   `toml:"mqtt"`
}

// Load decodes path over Default and validates the result.
// Keys the file format does not define are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return Config{}, fmt.Errorf("%w in %s: %s", ErrUnknownKeys, path, strings.Join(keys, ", "))
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.EndpointBaseURL = strings.TrimSpace(c.EndpointBaseURL)
	c.BinaryPath = strings.TrimSpace(c.BinaryPath)
	c.QualityPath = strings.TrimSpace(c.QualityPath)
	c.CSVPath = strings.TrimSpace(c.CSVPath)
	c.Serial.Port = strings.TrimSpace(c.Serial.Port)
	c.MQTT.Broker = strings.TrimSpace(c.MQTT.Broker)
	c.MQTT.Topic = strings.TrimSpace(c.MQTT.Topic)
}

func (c Config) Validate() error {
	if c.TimeoutMS <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxResponseBytes <= 0 {
		return ErrInvalidLimit
	}
	if err := c.Probe().Validate(); err != nil {
		return err
	}
	if c.MQTT.Broker != "" && c.MQTT.Topic == "" {
		return ErrMQTTTopic
	}
	return nil
}
