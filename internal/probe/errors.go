package probe

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrService     = errors.New("probe: service reported an error")
	ErrRecordCount = errors.New("probe: response record count mismatch")
)

// ServiceError is a failure the lookup service reports in a text/plain body of the form
// "STATUS\nmessage\ntraceback".
type ServiceError struct {
	Status    string
	Message   string
	Traceback string
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("probe: service error %s", e.Status)
	}
	return fmt.Sprintf("probe: service error %s: %s", e.Status, e.Message)
}

func (e *ServiceError) Is(target error) bool {
	return target == ErrService
}

func parseServiceError(body []byte) *ServiceError {
	parts := strings.SplitN(string(body), "\n", 3)
	e := &ServiceError{Status: strings.TrimSpace(parts[0])}
	if len(parts) > 1 {
		e.Message = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		e.Traceback = strings.TrimSpace(parts[2])
	}
	if e.Status == "" {
		e.Status = "UNKNOWN_ERROR"
	}
	return e
}

// CountError reports a batch whose response did not carry one record per point.
type CountError struct {
	Batch int
	Want  int
	Got   int
}

func (e *CountError) Error() string {
	return fmt.Sprintf("probe: batch %d: expected %d records, got %d", e.Batch, e.Want, e.Got)
}

func (e *CountError) Is(target error) bool {
	return target == ErrRecordCount
}
