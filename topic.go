package eventbus

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/edancain/eventbus/ack"
	"github.com/edancain/eventbus/internal/deadline"
	"github.com/edancain/eventbus/internal/obslog"
	"github.com/edancain/eventbus/metadata"
	"github.com/edancain/eventbus/registry"
)

// DefaultTimeout is the acknowledgment window Deliver uses when a Topic
// is constructed without WithTimeout, per spec §3 ("a positive
// duration; default 3000 ms").
const DefaultTimeout = 3000 * time.Millisecond

// Option configures a Topic at construction time.
type Option func(*Topic)

// WithTimeout overrides the default acknowledgment window Deliver uses.
// Non-positive durations are ignored.
func WithTimeout(d time.Duration) Option {
	return func(t *Topic) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// WithLogger attaches a side-channel logger. Without this option a Topic
// logs nothing.
func WithLogger(l *obslog.Logger) Option {
	return func(t *Topic) {
		if l != nil {
			t.log = l
		}
	}
}

// Topic is a named dispatch channel owning a Subscription Registry and a
// configured acknowledgment timeout (spec §3). The zero value is not
// usable; construct one with NewTopic.
type Topic struct {
	name      string
	timeout   time.Duration
	registry  *registry.Registry[subscriber]
	deadlines *deadline.Wheel
	log       *obslog.Logger
}

// NewTopic creates a Topic named name with the given options applied.
func NewTopic(name string, opts ...Option) *Topic {
	t := &Topic{
		name:      name,
		timeout:   DefaultTimeout,
		registry:  registry.New[subscriber](),
		deadlines: deadline.New(),
		log:       obslog.Discard(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns the topic's name.
func (t *Topic) Name() string { return t.name }

// Subscribe registers h against one or more event names for the
// emit/publish/execute disciplines. It returns the new subscription's
// identifier.
func (t *Topic) Subscribe(events []string, h Handler) (string, error) {
	if h == nil {
		return "", ErrNoHandler
	}
	if len(events) == 0 {
		return "", ErrNoEvents
	}
	id := uuid.NewString()
	t.registry.Add(id, events, subscriber(handlerSub{fn: h}))
	return id, nil
}

// SubscribeAck registers h against one or more event names for the
// Deliver discipline's acknowledgment protocol.
func (t *Topic) SubscribeAck(events []string, h AckHandler) (string, error) {
	if h == nil {
		return "", ErrNoHandler
	}
	if len(events) == 0 {
		return "", ErrNoEvents
	}
	id := uuid.NewString()
	t.registry.Add(id, events, subscriber(ackSub{fn: h}))
	return id, nil
}

// Unsubscribe removes the subscription registered under id from every
// event name it was listening to. It is idempotent: removing an id that
// is not currently registered reports false. A subscription may call
// this on its own subscriptionId from inside its own handler; per spec
// §4.3 the matched set for the call already in flight is unaffected.
func (t *Topic) Unsubscribe(id string) bool {
	return t.registry.Remove(id)
}

// Emit is the fire-and-forget discipline (spec §4.3). It resolves the
// matching snapshot, schedules every subscriber concurrently, and
// returns immediately without waiting on any of them. Subscriber panics
// and errors are swallowed; they are logged through the topic's
// side-channel logger if one was configured, never propagated to the
// caller.
func (t *Topic) Emit(ctx context.Context, event string, payload any, overrides map[string]any) Outcome {
	bundle := metadata.Build(t.name, event, overrides)
	subs := t.registry.Matching(event)

	for _, s := range subs {
		s := s
		subMeta := bundle.ForSubscriber(s.ID)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					t.log.Error.Printf("emit: subscriber %s on %s/%s panicked: %v", s.ID, t.name, event, r)
				}
			}()
			s.Value.invoke(ctx, payload, subMeta, func(err error, _ any) {
				if err != nil {
					t.log.Info.Printf("emit: subscriber %s on %s/%s returned error: %v", s.ID, t.name, event, err)
				}
			})
		}()
	}

	return Outcome{Count: len(subs), Meta: bundle}
}

// Publish runs every matching subscriber concurrently, waits for all of
// them to settle, and aggregates each one's outcome. The call itself
// never fails, even if every subscriber was rejected (spec §4.3).
func (t *Topic) Publish(ctx context.Context, event string, payload any, overrides map[string]any) Outcome {
	return t.dispatch(ctx, event, payload, overrides, false)
}

// Execute dispatches identically to Publish, but returns an
// *AggregateExecutionError if any subscriber's Result was rejected.
func (t *Topic) Execute(ctx context.Context, event string, payload any, overrides map[string]any) (Outcome, error) {
	out := t.dispatch(ctx, event, payload, overrides, false)
	for _, r := range out.Results {
		if r.Status == Rejected {
			return out, &AggregateExecutionError{Meta: out.Meta, Results: out.Results}
		}
	}
	return out, nil
}

// Deliver runs every matching subscriber concurrently and waits for each
// one's explicit acknowledgment, racing it against the topic's
// configured timeout (spec §4.3.1). A subscriber's own return value is
// never consulted for an AckHandler; only its call to ack contributes to
// the Result. A plain Handler registered with Subscribe has no separate
// acknowledgment channel, so its return is treated as an immediate
// acknowledgment (see DESIGN.md).
func (t *Topic) Deliver(ctx context.Context, event string, payload any, overrides map[string]any) Outcome {
	return t.dispatch(ctx, event, payload, overrides, true)
}

// dispatch is the shared core of Publish, Execute and Deliver: resolve
// the snapshot, run every subscriber concurrently, collect outcomes into
// index-addressed slots so registration order survives concurrent
// completion (spec §5), then wait for all of them.
func (t *Topic) dispatch(ctx context.Context, event string, payload any, overrides map[string]any, awaitAck bool) Outcome {
	bundle := metadata.Build(t.name, event, overrides)
	subs := t.registry.Matching(event)
	count := len(subs)
	if count == 0 {
		return Outcome{Count: 0, Meta: bundle, Results: []Result{}}
	}

	results := make([]Result, count)
	var g errgroup.Group
	for i, s := range subs {
		i, s := i, s
		g.Go(func() error {
			subMeta := bundle.ForSubscriber(s.ID)
			slot := ack.New()

			s.Value.invoke(ctx, payload, subMeta, func(err error, value any) {
				slot.Fulfill(err, value)
			})

			var out ack.Outcome
			if awaitAck {
				out = t.awaitWithTimeout(ctx, slot, event, s.ID)
			} else {
				out = slot.Wait()
			}
			results[i] = toResult(out)
			return nil
		})
	}
	_ = g.Wait()

	return Outcome{Count: count, Meta: bundle, Results: results}
}

// awaitWithTimeout implements spec §4.3.1's Pending -> Fulfilled |
// Rejected | TimedOut machine: arm a deadline for the topic's configured
// timeout, wait for whichever of the acknowledgment, the deadline, or
// ctx's own cancellation settles the slot first, then always cancel the
// deadline so a fast acknowledgment never leaves a timer pending.
//
// A plain Handler has already called ack synchronously by the time this
// runs (see handlerSub.invoke), so the slot is typically settled before
// awaitWithTimeout is even reached; Settled short-circuits that case
// without ever touching the deadline wheel.
func (t *Topic) awaitWithTimeout(ctx context.Context, slot *ack.Slot, event, subscriptionID string) ack.Outcome {
	if slot.Settled() {
		return slot.Wait()
	}

	timeoutErr := &TimeoutError{
		Topic:          t.name,
		Event:          event,
		SubscriptionID: subscriptionID,
		Timeout:        t.timeout,
	}
	entry := t.deadlines.Arm(t.timeout, func() {
		t.log.Info.Printf("deliver: subscription %s on %s/%s timed out after %s", subscriptionID, t.name, event, t.timeout)
		slot.Fulfill(timeoutErr, nil)
	})

	select {
	case <-slot.Done():
	case <-ctx.Done():
		slot.Fulfill(ctx.Err(), nil)
	}

	out := slot.Wait()
	t.deadlines.Cancel(entry)
	return out
}

func toResult(o ack.Outcome) Result {
	if o.Fulfilled {
		return Result{Status: Fulfilled, Value: o.Value}
	}
	return Result{Status: Rejected, Reason: o.Err}
}
