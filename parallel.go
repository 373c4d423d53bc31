package dataflow

import (
	"context"
	"log/slog"
	"sync"

	"github.com/casualjim/dataflow/pkg/slogx"
	"github.com/fogfish/opts"
)

const DefaultQueueCapacity = 10

var _ Agent = (*ParallelAgent)(nil)

type delivery struct {
	topic string
	msg   Message
}

// ParallelAgent decorates an Agent so its messages are processed on a
// dedicated worker goroutine.
//
// Callback only enqueues onto a bounded queue and blocks while the queue is
// full. The worker invokes the wrapped agent one message at a time, in enqueue
// order. Close stops the worker, waits for it to exit and then closes the
// wrapped agent.
type ParallelAgent struct {
	agent  Agent
	id     string
	logger *slog.Logger

	queue  chan delivery
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// NewParallelAgent wraps agent behind a queue holding up to capacity pending
// messages and starts its worker. A capacity below 1 is treated as 1.
//
// When agent implements Rebinder its topic registrations are moved to the
// returned ParallelAgent, so publishes reach the queue rather than the agent.
func NewParallelAgent(agent Agent, capacity int, options ...opts.Option[ParallelAgent]) *ParallelAgent {
	if capacity < 1 {
		capacity = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &ParallelAgent{
		agent:  agent,
		logger: slog.Default(),
		queue:  make(chan delivery, capacity),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	if err := opts.Apply(p, options); err != nil {
		cancel()
		panic(err)
	}

	if ident, ok := agent.(Identifier); ok {
		p.id = ident.ID()
	} else {
		p.id = NewAgentID()
	}
	p.logger = p.logger.With(slogx.LoggerName("parallel"), slogx.Agent(agent.Name()))

	if rb, ok := agent.(Rebinder); ok {
		rb.Rebind(p)
	}

	go p.run()
	return p
}

// Name returns the wrapped agent's name.
func (p *ParallelAgent) Name() string {
	return p.agent.Name()
}

// ID returns the wrapped agent's ID when it has one, otherwise a token minted
// for this decorator.
func (p *ParallelAgent) ID() string {
	return p.id
}

// Reset resets the wrapped agent.
func (p *ParallelAgent) Reset() {
	p.agent.Reset()
}

// Unwrap returns the decorated agent.
func (p *ParallelAgent) Unwrap() Agent {
	return p.agent
}

// Capacity returns the queue capacity.
func (p *ParallelAgent) Capacity() int {
	return cap(p.queue)
}

// Pending returns the number of queued messages not yet handed to the worker.
func (p *ParallelAgent) Pending() int {
	return len(p.queue)
}

// Done is closed once the worker goroutine has exited.
func (p *ParallelAgent) Done() <-chan struct{} {
	return p.done
}

// Callback enqueues the message for the worker. It blocks while the queue is
// full. Messages arriving after Close, or while ctx is done, are dropped.
func (p *ParallelAgent) Callback(ctx context.Context, topic string, msg Message) {
	if p.ctx.Err() != nil {
		p.logger.DebugContext(ctx, "dropping message for closed agent", slogx.Topic(topic))
		return
	}

	select {
	case p.queue <- delivery{topic: topic, msg: msg}:
	case <-p.ctx.Done():
		p.logger.DebugContext(ctx, "dropping message for closed agent", slogx.Topic(topic))
	case <-ctx.Done():
		p.logger.WarnContext(ctx, "enqueue abandoned", slogx.Topic(topic), slogx.Error(ctx.Err()))
	}
}

func (p *ParallelAgent) run() {
	defer close(p.done)
	for {
		select {
		case <-p.ctx.Done():
			return
		case d := <-p.queue:
			// both cases can be ready at once; closing wins
			if p.ctx.Err() != nil {
				return
			}
			p.deliver(d)
		}
	}
}

func (p *ParallelAgent) deliver(d delivery) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("agent panicked", slogx.Topic(d.topic), slogx.Panic(r))
		}
	}()
	p.agent.Callback(p.ctx, d.topic, d.msg)
}

// Close stops the worker, waits for it to exit, discards pending messages and
// closes the wrapped agent. Only the first call has any effect; later calls
// return the first result.
//
// Close must not be called from within the wrapped agent's Callback.
func (p *ParallelAgent) Close() error {
	p.closeOnce.Do(func() {
		p.cancel()
		<-p.done

		if dropped := p.drain(); dropped > 0 {
			p.logger.Debug("discarded pending messages", slog.Int("count", dropped))
		}
		p.closeErr = p.agent.Close()
	})
	return p.closeErr
}

func (p *ParallelAgent) drain() int {
	var n int
	for {
		select {
		case <-p.queue:
			n++
		default:
			return n
		}
	}
}
