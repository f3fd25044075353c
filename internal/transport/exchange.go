package transport

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// State is the lifecycle position of an Exchange.
//
//	Idle -> Sent -> {Succeeded, TimedOut, Failed}
type State int32

const (
	StateIdle State = iota
	StateSent
	StateSucceeded
	StateTimedOut
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSent:
		return "sent"
	case StateSucceeded:
		return "succeeded"
	case StateTimedOut:
		return "timed_out"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s State) Terminal() bool {
	return s >= StateSucceeded
}

// Exchange is one request and its response or failure. It is single use.
type Exchange struct {
	client *Client
	req    Request
	url    string

	state    atomic.Int32
	done     chan struct{}
	started  time.Time
	duration time.Duration
	resp     Response
	err      error
}

// Exchange prepares an idle exchange for req without sending it.
func (c *Client) Exchange(req Request) *Exchange {
	return &Exchange{
		client: c,
		req:    req,
		url:    c.URL(req.Path),
		done:   make(chan struct{}),
	}
}

// Start moves e from Idle to Sent and issues the request in the background.
// Completion is signalled on Done. A second Start returns ErrExchangeStarted.
func (e *Exchange) Start(ctx context.Context) error {
	if !e.state.CompareAndSwap(int32(StateIdle), int32(StateSent)) {
		return ErrExchangeStarted
	}
	e.launch(ctx)
	return nil
}

func (e *Exchange) launch(ctx context.Context) {
	e.started = time.Now()
	go e.run(ctx)
}

func (e *Exchange) run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, e.client.cfg.Timeout)
	defer cancel()

	resp, err := e.client.do(ctx, e.url, e.req)
	e.finish(resp, err)
}

func (e *Exchange) finish(resp Response, err error) {
	e.resp = resp
	e.err = err
	e.duration = time.Since(e.started)

	next := StateSucceeded
	if err != nil {
		next = StateFailed
		if errors.Is(err, ErrTimeout) {
			next = StateTimedOut
		}
	}
	e.state.Store(int32(next))
	close(e.done)
}

// Done is closed once the exchange reaches a terminal state.
func (e *Exchange) Done() <-chan struct{} {
	return e.done
}

// Wait blocks until the exchange is terminal and returns its outcome.
// On a status failure the response is returned alongside the error.
func (e *Exchange) Wait() (Response, error) {
	if e.State() == StateIdle {
		return Response{}, errors.New("transport: exchange not started")
	}
	<-e.done
	return e.resp, e.err
}

func (e *Exchange) State() State {
	return State(e.state.Load())
}

func (e *Exchange) URL() string {
	return e.url
}

// Duration is the time from Start to completion. It is zero until Done.
func (e *Exchange) Duration() time.Duration {
	select {
	case <-e.done:
		return e.duration
	default:
		return 0
	}
}
