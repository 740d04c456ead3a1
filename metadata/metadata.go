// Package metadata is the Metadata Builder of spec §4.2: it produces one
// immutable Bundle per publication, carrying the bus-authoritative
// fields plus whatever extra keys the producer asked to merge in.
package metadata

import (
	"time"

	"github.com/google/uuid"
)

// reserved names the fields a producer override can never shadow. The
// bus always wins on these, per spec §3.
var reserved = map[string]struct{}{
	"id":    {},
	"time":  {},
	"topic": {},
	"event": {},
}

// Bundle is the immutable per-publication metadata record. The zero
// value of SubscriptionID means "producer-visible copy" (spec §3: the
// field is absent on the copy returned to the producer); ForSubscriber
// returns a copy with it populated.
type Bundle struct {
	ID             string
	Time           int64 // milliseconds since epoch
	Topic          string
	Event          string
	SubscriptionID string
	Extra          map[string]any
}

// Build constructs a fresh Bundle for one publication. overrides may be
// nil. Keys in overrides that collide with a bus-authoritative field
// (id, time, topic, event) are dropped silently: the bus value always
// wins, per spec §3 and the Open Question resolved in SPEC_FULL.md.
func Build(topic, event string, overrides map[string]any) Bundle {
	b := Bundle{
		ID:    uuid.NewString(),
		Time:  time.Now().UnixMilli(),
		Topic: topic,
		Event: event,
	}

	if len(overrides) == 0 {
		return b
	}

	extra := make(map[string]any, len(overrides))
	for k, v := range overrides {
		if _, blocked := reserved[k]; blocked {
			continue
		}
		extra[k] = v
	}
	if len(extra) > 0 {
		b.Extra = extra
	}
	return b
}

// ForSubscriber returns a copy of b stamped with the receiving
// subscription's identifier. b itself, and any Bundle already handed to
// another subscriber, is left untouched.
func (b Bundle) ForSubscriber(subscriptionID string) Bundle {
	b.SubscriptionID = subscriptionID
	return b
}

// Get returns an overridden value merged into the bundle. It never
// returns the bus-authoritative fields; read those directly off the
// struct.
func (b Bundle) Get(key string) (any, bool) {
	if b.Extra == nil {
		return nil, false
	}
	v, ok := b.Extra[key]
	return v, ok
}
