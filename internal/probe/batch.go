package probe

import (
	"context"
	"errors"
	"time"

	"github.com/danmuck/demprobe/internal/protocol"
	"github.com/danmuck/demprobe/internal/transport"
	"golang.org/x/sync/errgroup"
)

// runBatches fans points out in batches of BatchSize, at most MaxInFlight at a time and
// paced by the limiter, then concatenates the results in input order. send posts one
// encoded batch of want points and decodes the answer.
func runBatches[T any](
	ctx context.Context,
	c *Client,
	path string,
	points []protocol.Point,
	send func(ctx context.Context, index int, body []byte, want int) ([]T, error),
) ([]T, error) {
	if len(points) == 0 {
		return []T{}, nil
	}
	if err := protocol.ValidatePoints(points); err != nil {
		return nil, err
	}
	batches := split(points, c.cfg.BatchSize)
	bodies := make([][]byte, len(batches))
	for i, batch := range batches {
		body, err := protocol.EncodePoints(batch)
		if err != nil {
			return nil, err
		}
		bodies[i] = body
	}

	var budget time.Duration
	if deadline, ok := ctx.Deadline(); ok {
		budget = time.Until(deadline)
	}

	results := make([][]T, len(batches))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.MaxInFlight)
	var paceErr error
	for i := range bodies {
		if c.limiter != nil {
			if paceErr = c.limiter.Wait(gctx); paceErr != nil {
				break
			}
		}
		g.Go(func() error {
			out, err := send(gctx, i, bodies[i], len(batches[i]))
			results[i] = out
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if paceErr != nil {
		return nil, c.paceError(path, budget, paceErr)
	}

	out := make([]T, 0, len(points))
	for _, part := range results {
		out = append(out, part...)
	}
	return out, nil
}

// paceError reports a batch that could not start within the caller's context. Cancellation
// is a transport failure; a deadline the limiter cannot meet is a timeout.
func (c *Client) paceError(path string, budget time.Duration, err error) error {
	kind := transport.KindTimeout
	if errors.Is(err, context.Canceled) {
		kind = transport.KindFailure
	}
	c.logger.Debug().Str("path", path).Err(err).Msg("batch pacing stopped")
	return &transport.Error{Kind: kind, URL: c.transport.URL(path), Timeout: budget, Err: err}
}

func split(points []protocol.Point, size int) [][]protocol.Point {
	batches := make([][]protocol.Point, 0, (len(points)+size-1)/size)
	for start := 0; start < len(points); start += size {
		end := min(start+size, len(points))
		batches = append(batches, points[start:end])
	}
	return batches
}
