package frame

import (
	"errors"
	"fmt"
	"io"
)

var (
	ErrMalformed    = errors.New("frame: length is not a multiple of the record stride")
	ErrBodyTooLarge = errors.New("frame: body too large")
	ErrBadStride    = errors.New("frame: stride must be positive")
)

// MalformedError reports a buffer whose length leaves a partial trailing record.
type MalformedError struct {
	Length int
	Stride int
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf(
		"frame: malformed buffer: length=%d stride=%d trailing=%d",
		e.Length, e.Stride, e.Length%e.Stride,
	)
}

func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformed
}

// Limits constrains how much of a body is read into memory.
type Limits struct {
	MaxBodyBytes int64
}

func DefaultLimits() Limits {
	return Limits{
		MaxBodyBytes: 8 * 1024 * 1024,
	}
}

// Split returns the number of complete records of size stride held in length
// bytes, and the count of bytes left over.
func Split(length, stride int) (records, trailing int) {
	if stride <= 0 || length <= 0 {
		return 0, max(length, 0)
	}
	return length / stride, length % stride
}

// Check fails with *MalformedError when length is not a whole number of strides.
func Check(length, stride int) error {
	if stride <= 0 {
		return ErrBadStride
	}
	if _, trailing := Split(length, stride); trailing != 0 {
		return &MalformedError{Length: length, Stride: stride}
	}
	return nil
}

// ReadBody reads r to EOF. A non-positive MaxBodyBytes disables the limit.
func ReadBody(r io.Reader, limits Limits) ([]byte, error) {
	if limits.MaxBodyBytes <= 0 {
		return io.ReadAll(r)
	}
	body, err := io.ReadAll(io.LimitReader(r, limits.MaxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limits.MaxBodyBytes {
		return nil, ErrBodyTooLarge
	}
	return body, nil
}

// ReadPrefix reads at most MaxBodyBytes from r and ignores anything after it.
// A non-positive MaxBodyBytes reads to EOF.
func ReadPrefix(r io.Reader, limits Limits) ([]byte, error) {
	if limits.MaxBodyBytes <= 0 {
		return io.ReadAll(r)
	}
	return io.ReadAll(io.LimitReader(r, limits.MaxBodyBytes))
}
