package entropy

import (
	"errors"
	"fmt"
)

var (
	ErrNetworkFailure    = errors.New("entropy service unreachable")
	ErrServiceError      = errors.New("entropy service error")
	ErrMalformedResponse = errors.New("empty or invalid response")
	ErrCircuitOpen       = errors.New("entropy service circuit breaker is open")
)

// NetworkError is a transport-level failure reaching the entropy service.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%v: %v", ErrNetworkFailure, e.Err)
}

func (e *NetworkError) Unwrap() []error {
	return []error{ErrNetworkFailure, e.Err}
}

// ServiceError means the service was reached but refused the request,
// either with a non-200 status or an error payload.
type ServiceError struct {
	StatusCode int
	Body       string
	Message    string
	malformed  bool
}

func (e *ServiceError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("%v (status %d): %s", ErrServiceError, e.StatusCode, e.Message)
	case e.Body != "":
		return fmt.Sprintf("%v (status %d): %s", ErrServiceError, e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("%v (status %d)", ErrServiceError, e.StatusCode)
	}
}

// Is matches ErrServiceError for every ServiceError, and ErrMalformedResponse
// for those built from an unusable success body.
func (e *ServiceError) Is(target error) bool {
	switch target {
	case ErrServiceError:
		return true
	case ErrMalformedResponse:
		return e.malformed
	}
	return false
}

func malformedResponse(status int) *ServiceError {
	return &ServiceError{
		StatusCode: status,
		Message:    ErrMalformedResponse.Error(),
		malformed:  true,
	}
}
