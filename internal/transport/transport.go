package transport

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/danmuck/demprobe/internal/protocol/frame"
	"github.com/pkg/errors"
)

const (
	ContentTypeBinary = "application/octet-stream"
	ContentTypeText   = "text/plain"
)

// ResponseKind is the representation the caller expects back.
type ResponseKind int

const (
	ResponseBinary ResponseKind = iota
	ResponseText
)

// Config binds a client to one endpoint.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Limits  frame.Limits
}

func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:9080",
		Timeout: 5 * time.Second,
		Limits:  frame.DefaultLimits(),
	}
}

func (c Config) Validate() error {
	if _, err := parseBaseURL(c.BaseURL); err != nil {
		return err
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// Request is one outbound payload. Body is never modified.
type Request struct {
	Path        string
	ContentType string
	Body        []byte
	Kind        ResponseKind
}

// Response is the raw body of a 2xx exchange.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

func (r Response) Text() string {
	return string(r.Body)
}

// Client performs single request/response exchanges against Config.BaseURL.
type Client struct {
	cfg     Config
	baseURL *url.URL
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client. Its own Timeout should be
// unset; exchanges are bounded by Config.Timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	u, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		cfg:     cfg,
		baseURL: u,
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Config() Config {
	return c.cfg
}

// Send performs one exchange and blocks until it reaches a terminal state.
func (c *Client) Send(ctx context.Context, req Request) (Response, error) {
	return c.Start(ctx, req).Wait()
}

// Start issues req asynchronously. The returned exchange is already Sent.
func (c *Client) Start(ctx context.Context, req Request) *Exchange {
	ex := c.Exchange(req)
	ex.state.Store(int32(StateSent))
	ex.launch(ctx)
	return ex
}

// URL resolves p against the base url.
func (c *Client) URL(p string) string {
	u := *c.baseURL
	u.Path = path.Join("/", u.Path, p)
	return u.String()
}

func (c *Client) do(ctx context.Context, target string, req Request) (Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(req.Body))
	if err != nil {
		return Response{}, c.failure(target, errors.Wrap(err, "request creation failed"))
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	httpReq.Header.Set("Accept", accept(req.Kind))

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return Response{}, c.classify(ctx, target, errors.Wrap(err, "request failed"))
	}
	defer httpResp.Body.Close()

	resp := Response{
		StatusCode:  httpResp.StatusCode,
		ContentType: httpResp.Header.Get("Content-Type"),
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		// the status decides the outcome; an oversized or broken body only shortens Body
		body, readErr := frame.ReadPrefix(httpResp.Body, c.cfg.Limits)
		resp.Body = body
		return resp, &Error{
			Kind:       KindStatus,
			URL:        target,
			StatusCode: httpResp.StatusCode,
			Body:       body,
			Err:        readErr,
		}
	}

	body, err := frame.ReadBody(httpResp.Body, c.cfg.Limits)
	if err != nil {
		return Response{}, c.classify(ctx, target, errors.Wrap(err, "reading the response failed"))
	}
	resp.Body = body
	return resp, nil
}

func (c *Client) classify(ctx context.Context, target string, err error) *Error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || isTimeout(err) {
		return &Error{Kind: KindTimeout, URL: target, Timeout: c.cfg.Timeout, Err: err}
	}
	return c.failure(target, err)
}

func (c *Client) failure(target string, err error) *Error {
	return &Error{Kind: KindFailure, URL: target, Err: err}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func accept(kind ResponseKind) string {
	if kind == ResponseText {
		return ContentTypeText
	}
	return ContentTypeBinary
}

func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, errors.Wrap(ErrInvalidBaseURL, err.Error())
	}
	if !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, ErrInvalidBaseURL
	}
	return u, nil
}
