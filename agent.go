package dataflow

import (
	"context"
	"reflect"

	"github.com/google/uuid"
)

// Agent is a compute unit reacting to messages on the topics it subscribes to.
// It may publish derived messages to other topics.
type Agent interface {
	// Name returns the agent's name
	Name() string

	// Reset returns the agent to its initial state
	Reset()

	// Callback is invoked for every message published on a subscribed topic
	Callback(ctx context.Context, topic string, msg Message)

	// Close releases the agent's registrations and resources
	Close() error
}

// Identifier is implemented by agents that carry a stable per-instance token.
// The graph builder uses it to tell apart instances sharing a name.
type Identifier interface {
	ID() string
}

// NewAgentID mints a time-ordered token for an Identifier implementation.
func NewAgentID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Rebinder is implemented by agents that register themselves on topics.
// Rebind replaces every registration the agent holds with self, so a
// decorator wrapping the agent receives the deliveries instead.
type Rebinder interface {
	Rebind(self Agent)
}

// SameAgent reports whether a and b are the same agent instance. Values whose
// dynamic type is not comparable never match.
func SameAgent(a, b Agent) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
