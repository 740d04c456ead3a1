// Package eventbus is an in-process asynchronous event bus. Producers
// publish named events to a Topic; subscribers registered on that topic
// receive them under one of four delivery disciplines that differ in
// the producer's synchronization contract with its subscribers:
//
//   - Emit fires a publication and returns immediately, swallowing
//     whatever subscribers do with it.
//   - Publish waits for every subscriber and aggregates each one's
//     outcome, fulfilled or rejected, without failing the call.
//   - Execute behaves like Publish but turns any rejection into a
//     caller-visible aggregate error.
//   - Deliver waits for each subscriber to explicitly acknowledge,
//     racing that acknowledgment against a per-subscriber timeout.
//
// See package wildcard for the companion hierarchical-name emitter.
package eventbus
