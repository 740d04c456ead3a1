package eventbus

import "github.com/edancain/eventbus/metadata"

// Status tags a single subscriber's outcome within a Result.
type Status string

const (
	Fulfilled Status = "fulfilled"
	Rejected  Status = "rejected"
)

// Result is one subscriber's tagged outcome. Value is meaningful only
// when Status is Fulfilled; Reason is meaningful only when Status is
// Rejected.
type Result struct {
	Status Status
	Value  any
	Reason error
}

// Outcome is the envelope every delivery discipline returns. Results is
// nil for Emit (spec §3: "results — ... absent for emit") and has
// exactly Count entries, in registration order over the matched
// subscriptions, for Publish, Execute and Deliver.
type Outcome struct {
	Count   int
	Meta    metadata.Bundle
	Results []Result
}
