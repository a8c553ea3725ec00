// Package completion talks to the generative text backend. A Client sends
// one prompt and returns the model's free-form reply; every failure surfaces
// as a *ServiceError.
package completion

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Client sends a single prompt to a text completion backend.
type Client interface {
	Name() string
	Complete(ctx context.Context, prompt string, opts Options) (string, error)
}

// Options tune one Complete call. Zero values defer to the client's defaults.
type Options struct {
	Model   string
	Stream  bool
	Timeout time.Duration
}

// Middleware decorates a Client with a cross-cutting concern.
type Middleware func(Client) Client

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner Client, mws ...Middleware) Client {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// ServiceError is the single failure type of a completion call: transport
// faults, timeouts, non-success statuses and malformed envelopes.
type ServiceError struct {
	Op         string // "request", "status" or "decode"
	StatusCode int
	Body       string // truncated response body for status errors
	Err        error
}

func (e *ServiceError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("completion %s: status %d: %s", e.Op, e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("completion %s: status %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("completion %s: %v", e.Op, e.Err)
	default:
		return "completion " + e.Op + " failed"
	}
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Timeout reports whether the call gave up because a deadline passed.
func (e *ServiceError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// ErrMalformedEnvelope means the backend answered 2xx with a body that does
// not carry a completion.
var ErrMalformedEnvelope = errors.New("response envelope has no response field")
