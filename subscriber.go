package eventbus

import (
	"context"
	"fmt"

	"github.com/edancain/eventbus/metadata"
)

// Handler is a two-argument subscriber, the variant spec §3 describes
// for the emit/publish/execute disciplines. Its return value and error
// become the subscriber's Result under Publish and Execute; under Emit
// they are discarded (but a non-nil error is still logged); under
// Deliver they are treated as an immediate, synchronous acknowledgment.
type Handler func(ctx context.Context, payload any, meta metadata.Bundle) (any, error)

// AckFunc is the acknowledgment continuation passed to an AckHandler.
// The first call wins; every later call on the same dispatch is a
// documented no-op (spec §4.3.1).
type AckFunc func(err error, value any)

// AckHandler is the three-argument subscriber variant spec §3 reserves
// for Deliver. Design notes (spec §9) call for two distinct subscriber
// variants rather than reflecting on function arity; this type and
// Handler are exactly that.
type AckHandler func(ctx context.Context, payload any, meta metadata.Bundle, ack AckFunc)

// subscriber is the uniform shape the registry and dispatch loop operate
// over, regardless of which variant a caller registered with.
type subscriber interface {
	invoke(ctx context.Context, payload any, meta metadata.Bundle, ack AckFunc)
}

// handlerSub adapts a two-argument Handler to the uniform subscriber
// interface: it runs the handler synchronously and acknowledges with
// whatever it returned. A panic before it returns is recovered and
// reported as the subscriber's rejection reason, matching spec §4.3's
// "handler exceptions are swallowed by the dispatcher" for Emit and
// "a subscriber that throws... yields rejected" for Publish/Execute.
type handlerSub struct {
	fn Handler
}

func (h handlerSub) invoke(ctx context.Context, payload any, meta metadata.Bundle, ack AckFunc) {
	defer func() {
		if r := recover(); r != nil {
			ack(&SubscriberFailure{SubscriptionID: meta.SubscriptionID, Err: fmt.Errorf("panicked: %v", r)}, nil)
		}
	}()
	value, err := h.fn(ctx, payload, meta)
	ack(err, value)
}

// ackSub adapts a three-argument AckHandler. The state machine that
// decides Pending/Fulfilled/Rejected/TimedOut lives in the dispatcher,
// not here: ack is already wired to that machine by the caller, so a
// panic recovered here before the handler called ack simply rejects the
// still-pending subscription, and a panic after ack already fired is a
// harmless no-op call into an already-terminal ack.
type ackSub struct {
	fn AckHandler
}

func (a ackSub) invoke(ctx context.Context, payload any, meta metadata.Bundle, ack AckFunc) {
	defer func() {
		if r := recover(); r != nil {
			ack(&SubscriberFailure{SubscriptionID: meta.SubscriptionID, Err: fmt.Errorf("panicked before acknowledging: %v", r)}, nil)
		}
	}()
	a.fn(ctx, payload, meta, ack)
}
