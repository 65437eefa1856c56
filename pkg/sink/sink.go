// Package sink implements the four outbound transports a sonar sending
// window can drain into: Kafka, an HTTP relay (via curl), a local
// directory tree, and stdout. Each backend implements queue.Sender so
// it can be handed straight to a queue.Window.
package sink

import "github.com/hpctools/sonar/pkg/queue"

// Sink is the contract every transport backend satisfies; it is just
// queue.Sender named for readability at call sites that only deal in
// sinks.
type Sink = queue.Sender
