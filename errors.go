package eventbus

import (
	"errors"
	"fmt"
	"time"

	"github.com/edancain/eventbus/metadata"
)

// ErrNoHandler is returned by Subscribe/SubscribeAck when handler is nil.
var ErrNoHandler = errors.New("eventbus: handler must not be nil")

// ErrNoEvents is returned by Subscribe/SubscribeAck when no event names
// were given.
var ErrNoEvents = errors.New("eventbus: at least one event name is required")

// TimeoutError is the rejection reason recorded for a Deliver
// subscription that never acknowledged within its topic's configured
// window.
type TimeoutError struct {
	Topic          string
	Event          string
	SubscriptionID string
	Timeout        time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("eventbus: subscription %s on %s/%s did not acknowledge within %s",
		e.SubscriptionID, e.Topic, e.Event, e.Timeout)
}

// SubscriberFailure wraps the error recovered from a subscriber panic.
// A subscriber that returns or acknowledges with its own error keeps
// that error as the Result's Reason unwrapped; only the panic-recovery
// paths in subscriber.go construct one of these.
type SubscriberFailure struct {
	SubscriptionID string
	Err            error
}

func (e *SubscriberFailure) Error() string {
	return fmt.Sprintf("eventbus: subscription %s failed: %v", e.SubscriptionID, e.Err)
}

func (e *SubscriberFailure) Unwrap() error { return e.Err }

// AggregateExecutionError is returned by Topic.Execute when at least one
// subscriber's Result was rejected. It carries the complete Results
// slice and the call's Meta so callers can inspect exactly which
// subscribers failed.
type AggregateExecutionError struct {
	Meta    metadata.Bundle
	Results []Result
}

func (e *AggregateExecutionError) Error() string {
	rejected := 0
	for _, r := range e.Results {
		if r.Status == Rejected {
			rejected++
		}
	}
	return fmt.Sprintf("eventbus: execute failed for %s/%s: %d of %d subscribers rejected",
		e.Meta.Topic, e.Meta.Event, rejected, len(e.Results))
}
