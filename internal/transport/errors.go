package transport

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrTimeout          = errors.New("transport: exchange timed out")
	ErrTransportFailure = errors.New("transport: exchange failed")
	ErrUnexpectedStatus = errors.New("transport: unexpected status")
	ErrExchangeStarted  = errors.New("transport: exchange already started")
	ErrInvalidBaseURL   = errors.New("transport: base url must be an absolute http(s) url")
	ErrInvalidTimeout   = errors.New("transport: timeout must be positive")
)

// Kind discriminates the failure modes of an exchange.
type Kind int

const (
	KindTimeout Kind = iota + 1
	KindFailure
	KindStatus
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindFailure:
		return "failure"
	case KindStatus:
		return "status"
	default:
		return "unknown"
	}
}

// Error is the terminal failure of one exchange. Match it with errors.Is
// against ErrTimeout, ErrTransportFailure or ErrUnexpectedStatus.
type Error struct {
	Kind       Kind
	URL        string
	Timeout    time.Duration
	StatusCode int
	Body       []byte
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindTimeout:
		return fmt.Sprintf("transport: POST %s timed out after %s", e.URL, e.Timeout)
	case KindStatus:
		return fmt.Sprintf("transport: POST %s returned status %d", e.URL, e.StatusCode)
	default:
		return fmt.Sprintf("transport: POST %s failed: %v", e.URL, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrTimeout:
		return e.Kind == KindTimeout
	case ErrTransportFailure:
		return e.Kind == KindFailure
	case ErrUnexpectedStatus:
		return e.Kind == KindStatus
	default:
		return false
	}
}
