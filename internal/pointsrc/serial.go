package pointsrc

import (
	"errors"
	"fmt"
	"io"

	"github.com/jacobsa/go-serial/serial"
)

var ErrNoPort = errors.New("pointsrc: serial port name is required")

// SerialConfig describes a GPS receiver on a serial line, 8N1.
type SerialConfig struct {
	Port     string
	BaudRate uint
}

func DefaultSerialConfig() SerialConfig {
	return SerialConfig{
		Port:     "/dev/serial0",
		BaudRate: 9600,
	}
}

// OpenSerial opens the port for reading NMEA sentences.
func OpenSerial(cfg SerialConfig) (io.ReadCloser, error) {
	opts, err := serialOptions(cfg)
	if err != nil {
		return nil, err
	}
	port, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("pointsrc: open serial %s: %w", cfg.Port, err)
	}
	return port, nil
}

func serialOptions(cfg SerialConfig) (serial.OpenOptions, error) {
	if cfg.Port == "" {
		return serial.OpenOptions{}, ErrNoPort
	}
	baud := cfg.BaudRate
	if baud == 0 {
		baud = DefaultSerialConfig().BaudRate
	}
	return serial.OpenOptions{
		PortName:        cfg.Port,
		BaudRate:        baud,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
		ParityMode:      serial.PARITY_NONE,
	}, nil
}
