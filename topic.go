package dataflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/casualjim/dataflow/pkg/slogx"
)

// DeliveryError reports a subscriber that panicked while a message was being
// delivered to it.
type DeliveryError struct {
	Topic string
	Agent string
	Cause any
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("topic %q: subscriber %q panicked: %v", e.Topic, e.Agent, e.Cause)
}

// Topic is a named broadcast point.
//
// Subscribers are kept in subscription order and are not deduplicated:
// subscribing the same agent twice yields two deliveries per publish.
// Publishers are bookkeeping only and never take part in delivery.
type Topic struct {
	name   string
	logger *slog.Logger

	mu          sync.RWMutex
	subscribers []Agent
	publishers  []Agent
	last        Message
}

func newTopic(name string, logger *slog.Logger) *Topic {
	return &Topic{
		name:   name,
		logger: logger,
		last:   FromFloat(0),
	}
}

// Name returns the topic name.
func (t *Topic) Name() string {
	return t.name
}

// Subscribe appends agent to the subscriber list.
func (t *Topic) Subscribe(agent Agent) {
	t.mu.Lock()
	t.subscribers = append(t.subscribers, agent)
	t.mu.Unlock()
}

// Unsubscribe removes the first subscription held by agent and reports
// whether there was one.
func (t *Topic) Unsubscribe(agent Agent) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	var removed bool
	t.subscribers, removed = removeFirst(t.subscribers, agent)
	return removed
}

// AddPublisher records agent as a publisher of this topic.
func (t *Topic) AddPublisher(agent Agent) {
	t.mu.Lock()
	t.publishers = append(t.publishers, agent)
	t.mu.Unlock()
}

// RemovePublisher removes the first publisher entry for agent.
func (t *Topic) RemovePublisher(agent Agent) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	var removed bool
	t.publishers, removed = removeFirst(t.publishers, agent)
	return removed
}

// Subscribers returns a snapshot of the subscriber list.
func (t *Topic) Subscribers() []Agent {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.subscribers)
}

// Publishers returns a snapshot of the publisher list.
func (t *Topic) Publishers() []Agent {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.publishers)
}

// LastMessage returns the most recently published message. A topic that has
// never been published to holds the number 0.
func (t *Topic) LastMessage() Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

// Publish caches msg as the last message and then delivers it to every
// subscriber, in subscription order, on the calling goroutine.
//
// A subscriber that panics is recovered and reported as a *DeliveryError;
// delivery continues with the remaining subscribers. When ctx is done the
// remaining subscribers are skipped. All failures are joined in the result.
func (t *Topic) Publish(ctx context.Context, msg Message) error {
	t.mu.Lock()
	t.last = msg
	subscribers := slices.Clone(t.subscribers)
	t.mu.Unlock()

	var errs []error
	for _, sub := range subscribers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := t.deliver(ctx, sub, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t *Topic) deliver(ctx context.Context, sub Agent, msg Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.ErrorContext(ctx, "subscriber panicked",
				slogx.Topic(t.name), slogx.Agent(sub.Name()), slogx.Panic(r))
			err = &DeliveryError{Topic: t.name, Agent: sub.Name(), Cause: r}
		}
	}()
	sub.Callback(ctx, t.name, msg)
	return nil
}

func removeFirst(agents []Agent, agent Agent) ([]Agent, bool) {
	idx := slices.IndexFunc(agents, func(a Agent) bool { return SameAgent(a, agent) })
	if idx < 0 {
		return agents, false
	}
	return slices.Delete(agents, idx, idx+1), true
}
