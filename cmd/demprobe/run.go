package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/danmuck/demprobe/internal/config"
	"github.com/danmuck/demprobe/internal/pointsrc"
	"github.com/danmuck/demprobe/internal/probe"
	"github.com/danmuck/demprobe/internal/protocol"
	"github.com/danmuck/demprobe/internal/protocol/csvtext"
	"github.com/danmuck/demprobe/internal/render"
	"github.com/rs/zerolog/log"
)

var (
	errNoPoints    = errors.New("no point source: use -sample, -points, -nmea or -serial")
	errUnknownMode = errors.New("unknown mode")
	errUnknownFmt  = errors.New("unknown format")
)

const (
	modeBinary  = "binary"
	modeCSV     = "csv"
	modeQuality = "quality"

	formatText = "text"
	formatJSON = "json"
)

type options struct {
	configPath string
	mode       string
	points     string
	nmea       string
	serial     string
	baud       uint
	fixes      int
	sample     bool
	format     string
	mqtt       bool
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("demprobe", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "config path (defaults to built-in settings)")
	fs.StringVar(&opts.mode, "mode", modeBinary, "request mode: binary|csv|quality")
	fs.StringVar(&opts.points, "points", "", "CSV file of lat,lng points")
	fs.StringVar(&opts.nmea, "nmea", "", "NMEA 0183 log file")
	fs.StringVar(&opts.serial, "serial", "", "GPS serial device to read fixes from")
	fs.UintVar(&opts.baud, "baud", 0, "serial baud rate (overrides config)")
	fs.IntVar(&opts.fixes, "fixes", 10, "number of serial fixes to collect")
	fs.BoolVar(&opts.sample, "sample", false, "look up the built-in sample points")
	fs.StringVar(&opts.format, "format", formatText, "binary mode output: text|json")
	fs.BoolVar(&opts.mqtt, "mqtt", false, "also publish results to the configured mqtt broker")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	switch opts.mode {
	case modeBinary, modeCSV, modeQuality:
	default:
		return options{}, fmt.Errorf("%w: %s", errUnknownMode, opts.mode)
	}
	switch opts.format {
	case formatText, formatJSON:
	default:
		return options{}, fmt.Errorf("%w: %s", errUnknownFmt, opts.format)
	}
	if opts.fixes <= 0 {
		return options{}, fmt.Errorf("fixes must be positive, got %d", opts.fixes)
	}
	return opts, nil
}

func run(ctx context.Context, opts options, stdout io.Writer) error {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		log.Info().Str("path", opts.configPath).Msg("loaded demprobe config")
	}

	points, err := readPoints(opts, cfg)
	if err != nil {
		return err
	}
	client, err := probe.New(cfg.Probe())
	if err != nil {
		return err
	}
	log.Info().
		Str("endpoint", cfg.EndpointBaseURL).
		Str("mode", opts.mode).
		Int("points", len(points)).
		Msg("lookup started")

	switch opts.mode {
	case modeCSV:
		body, err := client.LookupCSV(ctx, csvtext.FromPoints(points))
		if err != nil {
			return err
		}
		_, err = io.WriteString(stdout, body)
		return err
	case modeQuality:
		values, err := client.LookupQuality(ctx, points)
		if err != nil {
			return err
		}
		return render.WriteQuality(stdout, values)
	}

	records, err := client.Lookup(ctx, points)
	if err != nil {
		return err
	}
	sink, closeSink, err := buildSink(ctx, opts, cfg, stdout)
	if err != nil {
		return err
	}
	defer closeSink()
	return sink.Emit(ctx, records)
}

func readPoints(opts options, cfg config.Config) ([]protocol.Point, error) {
	switch {
	case opts.sample:
		return probe.Sample(), nil
	case opts.points != "":
		return readFile(opts.points, pointsrc.ReadCSV)
	case opts.nmea != "":
		return readFile(opts.nmea, pointsrc.ReadNMEA)
	case opts.serial != "":
		serialCfg := cfg.SerialPort()
		serialCfg.Port = opts.serial
		if opts.baud != 0 {
			serialCfg.BaudRate = opts.baud
		}
		return readSerial(serialCfg, opts.fixes)
	default:
		return nil, errNoPoints
	}
}

func readFile(path string, read func(io.Reader) ([]protocol.Point, error)) ([]protocol.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return read(f)
}

func readSerial(cfg pointsrc.SerialConfig, fixes int) ([]protocol.Point, error) {
	port, err := pointsrc.OpenSerial(cfg)
	if err != nil {
		return nil, err
	}
	defer port.Close()

	points := make([]protocol.Point, 0, fixes)
	err = pointsrc.ScanNMEA(port, func(p protocol.Point) bool {
		points = append(points, p)
		return len(points) < fixes
	})
	return points, err
}

func buildSink(ctx context.Context, opts options, cfg config.Config, stdout io.Writer) (render.Sink, func(), error) {
	var sinks render.Multi
	if opts.format == formatJSON {
		sinks = append(sinks, render.JSONLines{W: stdout})
	} else {
		sinks = append(sinks, render.Text{W: stdout})
	}
	if !opts.mqtt {
		return sinks, func() {}, nil
	}
	m, err := render.DialMQTT(ctx, cfg.MQTTSink())
	if err != nil {
		return nil, nil, err
	}
	return append(sinks, m), m.Close, nil
}
