package probe

import (
	"errors"

	"github.com/danmuck/demprobe/internal/transport"
)

var (
	ErrInvalidBatchSize   = errors.New("probe: batch_size must be positive")
	ErrInvalidMaxInFlight = errors.New("probe: max_in_flight must be positive")
	ErrInvalidRate        = errors.New("probe: rate_per_second must not be negative")
	ErrInvalidPath        = errors.New("probe: endpoint paths must not be empty")
)

const (
	DefaultBinaryPath = "/process_binary"
	DefaultCSVPath    = "/process_csv"
	// DefaultBatchSize is the lookup service's per-request point limit.
	DefaultBatchSize   = 10000
	DefaultMaxInFlight = 4
)

type Config struct {
	Transport  transport.Config
	BinaryPath string
	// QualityPath answers with 4-byte quality records only.
	QualityPath string
	CSVPath     string
	BatchSize   int
	// MaxInFlight bounds concurrent batch exchanges.
	MaxInFlight int
	// RatePerSecond paces batch starts. Zero disables pacing.
	RatePerSecond float64
	// StrictDecode rejects responses with a trailing partial record or a record count
	// that differs from the batch.
	StrictDecode bool
}

func DefaultConfig() Config {
	return Config{
		Transport:    transport.DefaultConfig(),
		BinaryPath:   DefaultBinaryPath,
		QualityPath:  DefaultBinaryPath,
		CSVPath:      DefaultCSVPath,
		BatchSize:    DefaultBatchSize,
		MaxInFlight:  DefaultMaxInFlight,
		StrictDecode: true,
	}
}

func (c Config) Validate() error {
	if err := c.Transport.Validate(); err != nil {
		return err
	}
	if c.BinaryPath == "" || c.QualityPath == "" || c.CSVPath == "" {
		return ErrInvalidPath
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.MaxInFlight <= 0 {
		return ErrInvalidMaxInFlight
	}
	if c.RatePerSecond < 0 {
		return ErrInvalidRate
	}
	return nil
}
