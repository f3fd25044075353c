package probe

import (
	"context"
	"mime"
	"net/http"

	"github.com/danmuck/demprobe/internal/observability"
	"github.com/danmuck/demprobe/internal/protocol"
	"github.com/danmuck/demprobe/internal/protocol/csvtext"
	"github.com/danmuck/demprobe/internal/transport"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Client looks up points against one DEM endpoint.
type Client struct {
	cfg       Config
	transport *transport.Client
	limiter   *rate.Limiter
	logger    zerolog.Logger
}

type options struct {
	httpClient *http.Client
	logger     *zerolog.Logger
}

type Option func(*options)

func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = &logger
	}
}

func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	tc, err := transport.New(cfg.Transport, transport.WithHTTPClient(o.httpClient))
	if err != nil {
		return nil, err
	}
	c := &Client{
		cfg:       cfg,
		transport: tc,
		logger:    log.Logger.With().Str("component", "probe").Logger(),
	}
	if o.logger != nil {
		c.logger = *o.logger
	}
	if cfg.RatePerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}
	observability.RegisterMetrics()
	return c, nil
}

func (c *Client) Config() Config {
	return c.cfg
}

// Lookup resolves points in batches of Config.BatchSize and returns one record per point,
// in input order. Every point is validated and every batch encoded before any request is
// sent. The first failing batch cancels the others and its error is returned unchanged.
func (c *Client) Lookup(ctx context.Context, points []protocol.Point) ([]protocol.CombinedRecord, error) {
	return runBatches(ctx, c, c.cfg.BinaryPath, points, c.combinedBatch)
}

// LookupQuality is Lookup against an endpoint that answers with 4-byte quality records only.
func (c *Client) LookupQuality(ctx context.Context, points []protocol.Point) ([]float64, error) {
	return runBatches(ctx, c, c.cfg.QualityPath, points, c.qualityBatch)
}

func (c *Client) combinedBatch(ctx context.Context, index int, body []byte, want int) ([]protocol.CombinedRecord, error) {
	path := c.cfg.BinaryPath
	resp, err := c.exchange(ctx, path, index, want, body)
	if err != nil {
		return nil, err
	}

	var records []protocol.CombinedRecord
	if c.cfg.StrictDecode {
		records, err = protocol.DecodeCombinedRecordsStrict(resp.Body)
		if err != nil {
			return nil, err
		}
		if len(records) != want {
			return nil, &CountError{Batch: index, Want: want, Got: len(records)}
		}
	} else {
		records = protocol.DecodeCombinedRecords(resp.Body)
	}
	observability.RecordRecords(path, want, len(records))
	return records, nil
}

func (c *Client) qualityBatch(ctx context.Context, index int, body []byte, want int) ([]float64, error) {
	path := c.cfg.QualityPath
	resp, err := c.exchange(ctx, path, index, want, body)
	if err != nil {
		return nil, err
	}

	var values []float64
	if c.cfg.StrictDecode {
		values, err = protocol.DecodeQualityRecordsStrict(resp.Body)
		if err != nil {
			return nil, err
		}
		if len(values) != want {
			return nil, &CountError{Batch: index, Want: want, Got: len(values)}
		}
	} else {
		values = protocol.DecodeQualityRecords(resp.Body)
	}
	observability.RecordRecords(path, want, len(values))
	return values, nil
}

// exchange posts one binary batch. A text/plain answer is the service reporting a failure.
func (c *Client) exchange(ctx context.Context, path string, index, want int, body []byte) (transport.Response, error) {
	ex := c.transport.Start(ctx, transport.Request{
		Path:        path,
		ContentType: transport.ContentTypeBinary,
		Body:        body,
		Kind:        transport.ResponseBinary,
	})
	resp, err := ex.Wait()
	observability.RecordExchange(path, ex.State().String(), ex.Duration())
	c.logger.Debug().
		Str("path", path).
		Int("batch", index).
		Int("points", want).
		Str("state", ex.State().String()).
		Dur("duration", ex.Duration()).
		Int("bytes", len(resp.Body)).
		Msg("lookup exchange")
	if err != nil {
		return transport.Response{}, err
	}
	if isText(resp.ContentType) {
		return transport.Response{}, parseServiceError(resp.Body)
	}
	return resp, nil
}

// LookupCSV posts rows as CSV text and returns the response body unchanged.
func (c *Client) LookupCSV(ctx context.Context, rows []csvtext.Row) (string, error) {
	body, err := csvtext.Encode(rows)
	if err != nil {
		return "", err
	}
	path := c.cfg.CSVPath
	ex := c.transport.Start(ctx, transport.Request{
		Path:        path,
		ContentType: transport.ContentTypeText,
		Body:        body,
		Kind:        transport.ResponseText,
	})
	resp, err := ex.Wait()
	observability.RecordExchange(path, ex.State().String(), ex.Duration())
	c.logger.Debug().
		Int("rows", len(rows)).
		Str("state", ex.State().String()).
		Dur("duration", ex.Duration()).
		Msg("csv exchange")
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// Sample is the fixed set of points used to smoke-test an endpoint.
func Sample() []protocol.Point {
	return []protocol.Point{
		{Latitude: -36.885150, Longitude: 174.748030},
		{Latitude: -36.886430, Longitude: 174.753750},
		{Latitude: -36.885010, Longitude: 174.754221},
		{Latitude: -36.885345, Longitude: 174.755895},
	}
}

func isText(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == transport.ContentTypeText
}
