/*
Package dataflow provides an in-process publish-subscribe runtime for wiring small compute
units into a computation graph.

The package is built around a handful of types:

  - Message: an immutable value with text, raw bytes, a numeric view and a creation time
  - Topic: a named broadcast point holding subscribers, publishers and the last message
  - TopicManager: the registry of topics by name, created once and passed around
  - Agent: the contract every compute unit implements
  - ParallelAgent: a decorator that moves an agent's processing onto its own goroutine

# Basic Usage

	topics := dataflow.NewTopicManager()

	mul := agents.Mul(topics, "A", "B", "R")
	p := dataflow.NewParallelAgent(mul, dataflow.DefaultQueueCapacity)
	defer p.Close()

	_ = topics.Topic("A").Publish(ctx, dataflow.FromFloat(5))
	_ = topics.Topic("B").Publish(ctx, dataflow.FromFloat(3))

# Delivery

Topic.Publish runs on the calling goroutine. It caches the message and then calls every
subscriber in subscription order, returning once each synchronous subscriber has returned.
A ParallelAgent subscriber returns as soon as the message is queued, so the publisher is only
held up by queue insertion. A full queue blocks the publisher; there is no drop policy.

Each ParallelAgent owns exactly one worker, which invokes the wrapped agent one message at a
time in enqueue order. Nothing orders deliveries across different agents.

A subscriber that panics during Publish is recovered and reported as a *DeliveryError; the
remaining subscribers still receive the message.

# Thread Safety

TopicManager and Topic are safe for concurrent use. Callbacks run outside topic locks and may
publish, subscribe or unsubscribe re-entrantly.

See the graph package for topology snapshots and cycle detection, the agents package for the
operator agents, and the config package for loading agent networks from files.
*/
package dataflow
