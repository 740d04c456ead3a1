package metadata

import "testing"

func TestBuildStampsBusAuthoritativeFields(t *testing.T) {
	b := Build("logger", "info", nil)

	if b.Topic != "logger" || b.Event != "info" {
		t.Fatalf("Build topic/event = %q/%q, want logger/info", b.Topic, b.Event)
	}
	if b.ID == "" {
		t.Error("expected a generated id")
	}
	if b.Time == 0 {
		t.Error("expected a non-zero timestamp")
	}
	if b.SubscriptionID != "" {
		t.Error("producer-facing bundle must not carry a subscriptionId")
	}
}

func TestBuildOverridesMerge(t *testing.T) {
	b := Build("logger", "info", map[string]any{"requestId": "abc123"})

	v, ok := b.Get("requestId")
	if !ok || v != "abc123" {
		t.Errorf("Get(requestId) = %v, %v, want abc123, true", v, ok)
	}
}

func TestBuildOverridesCannotShadowBusFields(t *testing.T) {
	b := Build("logger", "info", map[string]any{
		"id":    "attacker-supplied",
		"time":  int64(0),
		"topic": "not-logger",
		"event": "not-info",
	})

	if b.Topic != "logger" || b.Event != "info" {
		t.Errorf("override leaked into topic/event: %+v", b)
	}
	if b.ID == "attacker-supplied" {
		t.Error("override leaked into id")
	}
	if b.Time == 0 {
		t.Error("override leaked into time")
	}
	if _, ok := b.Get("id"); ok {
		t.Error("reserved key id must not appear in Extra")
	}
}

func TestTwoBuildsHaveDistinctIdentity(t *testing.T) {
	a := Build("logger", "info", nil)
	b := Build("logger", "info", nil)

	if a.ID == b.ID {
		t.Error("two separate publications must not share an id")
	}
}

func TestForSubscriberDoesNotMutateShared(t *testing.T) {
	shared := Build("logger", "info", nil)

	withSub := shared.ForSubscriber("sub-1")
	if shared.SubscriptionID != "" {
		t.Error("ForSubscriber must not mutate the receiver")
	}
	if withSub.SubscriptionID != "sub-1" {
		t.Errorf("ForSubscriber subscriptionId = %q, want sub-1", withSub.SubscriptionID)
	}
	if withSub.ID != shared.ID || withSub.Time != shared.Time || withSub.Topic != shared.Topic {
		t.Error("ForSubscriber must preserve the shared id/time/topic")
	}
}
