package routing

import (
	"fmt"
	"time"
)

// GatewayUnavailableError is logged when no router could be obtained
type GatewayUnavailableError struct {
	Reason string
	Err    error
}

func (e *GatewayUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("routing gateway unavailable: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("routing gateway unavailable: %s", e.Reason)
}

func (e *GatewayUnavailableError) Unwrap() error {
	return e.Err
}

func NewGatewayUnavailableError(reason string, err error) *GatewayUnavailableError {
	return &GatewayUnavailableError{
		Reason: reason,
		Err:    err,
	}
}

// QueryFailedError is logged when a search completes without a usable plan
type QueryFailedError struct {
	Status int
	Err    error
}

func (e *QueryFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("route query failed with status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("route query failed with status %d", e.Status)
}

func (e *QueryFailedError) Unwrap() error {
	return e.Err
}

func NewQueryFailedError(status int, err error) *QueryFailedError {
	return &QueryFailedError{
		Status: status,
		Err:    err,
	}
}

// QueryTimedOutError is logged when a search does not settle in time
type QueryTimedOutError struct {
	After time.Duration
}

func (e *QueryTimedOutError) Error() string {
	return fmt.Sprintf("route query timed out after %s", e.After)
}

func NewQueryTimedOutError(after time.Duration) *QueryTimedOutError {
	return &QueryTimedOutError{After: after}
}

// RouteAPIError represents an error response from a routing provider
type RouteAPIError struct {
	Status  int
	Message string
}

func (e *RouteAPIError) Error() string {
	return fmt.Sprintf("routing API error %d: %s", e.Status, e.Message)
}

func NewRouteAPIError(status int, message string) *RouteAPIError {
	return &RouteAPIError{
		Status:  status,
		Message: message,
	}
}
