package protocol

import (
	"errors"
	"fmt"

	"github.com/danmuck/demprobe/internal/protocol/frame"
)

var (
	ErrEncodingRange   = errors.New("protocol: value outside fixed-point range")
	ErrCoordinateRange = errors.New("protocol: coordinate out of range")
	ErrMalformedBuffer = frame.ErrMalformed
)

// MalformedBufferError reports a buffer that is not a whole number of records.
type MalformedBufferError = frame.MalformedError

// RangeError indicates value/scale does not fit a signed 32-bit integer.
type RangeError struct {
	Value float64
	Scale Scale
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("protocol: %g does not fit int32 at scale %g", e.Value, float64(e.Scale))
}

func (e *RangeError) Is(target error) bool {
	return target == ErrEncodingRange
}

// CoordinateError indicates a latitude or longitude outside its valid range.
// Index is the position in the encoded sequence, or -1 for a lone point.
type CoordinateError struct {
	Index int
	Field string
	Value float64
}

func (e *CoordinateError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("protocol: %s %g out of range", e.Field, e.Value)
	}
	return fmt.Sprintf("protocol: point %d: %s %g out of range", e.Index, e.Field, e.Value)
}

func (e *CoordinateError) Is(target error) bool {
	return target == ErrCoordinateRange
}
