package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/casualjim/dataflow"
	"github.com/casualjim/dataflow/graph"
	"github.com/casualjim/dataflow/pkg/slogx"
	"github.com/fogfish/opts"
)

// Logger sets the logger a Config and the agents it wraps log to.
var Logger = opts.ForName[Config, *slog.Logger]("logger")

// QueueCapacity overrides the document's queue capacity.
func QueueCapacity(capacity int) opts.Option[Config] {
	return opts.Type[Config](func(c *Config) error {
		if capacity < 1 {
			return fmt.Errorf("queue capacity must be positive, got %d", capacity)
		}
		c.capacity = capacity
		return nil
	})
}

// Config instantiates the agents of a Document on a TopicManager.
type Config struct {
	doc       Document
	topics    *dataflow.TopicManager
	factories *Factories
	capacity  int
	logger    *slog.Logger

	mu     sync.Mutex
	agents []*dataflow.ParallelAgent
}

// New prepares doc for creation. Nothing is built until Create.
func New(doc Document, topics *dataflow.TopicManager, factories *Factories, options ...opts.Option[Config]) (*Config, error) {
	c := &Config{
		doc:       doc,
		topics:    topics,
		factories: factories,
		capacity:  doc.QueueCapacity,
		logger:    slog.Default(),
	}
	if err := opts.Apply(c, options); err != nil {
		return nil, err
	}
	if c.capacity < 1 {
		c.capacity = dataflow.DefaultQueueCapacity
	}
	c.logger = c.logger.With(slogx.LoggerName("config"), slog.String("config", c.Name()))
	return c, nil
}

func (c *Config) Name() string {
	if c.doc.Name == "" {
		return defaultName
	}
	return c.doc.Name
}

func (c *Config) Version() int {
	return c.doc.Version
}

// Capacity returns the queue capacity used for every agent.
func (c *Config) Capacity() int {
	return c.capacity
}

// Create builds every agent in document order and wraps each one in a
// ParallelAgent. When an agent cannot be built the ones already created are
// closed again and the error is returned.
func (c *Config) Create(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.agents) > 0 {
		return ErrAlreadyLoaded
	}

	created := make([]*dataflow.ParallelAgent, 0, len(c.doc.Agents))
	for i, spec := range c.doc.Agents {
		if err := ctx.Err(); err != nil {
			return errors.Join(err, closeAll(created))
		}
		agent, err := c.build(spec)
		if err != nil {
			return errors.Join(fmt.Errorf("agent %d (%s): %w", i, spec.Type, err), closeAll(created))
		}
		if _, ok := agent.(dataflow.Rebinder); !ok {
			c.logger.WarnContext(ctx, "agent does not implement Rebinder, its own subscriptions stay synchronous",
				slogx.Agent(agent.Name()), slog.String("type", spec.Type))
		}
		created = append(created, dataflow.NewParallelAgent(agent, c.capacity, dataflow.ParallelAgentLogger(c.logger)))
		c.logger.DebugContext(ctx, "agent created", slogx.Agent(agent.Name()),
			slog.Any("inputs", spec.Inputs), slog.Any("outputs", spec.Outputs))
	}
	c.agents = created
	c.logger.InfoContext(ctx, "configuration created", slog.Int("agents", len(created)))
	return nil
}

func (c *Config) build(spec AgentSpec) (dataflow.Agent, error) {
	factory, err := c.factories.Lookup(spec.Type)
	if err != nil {
		return nil, err
	}
	return factory(c.topics, spec)
}

// Agents returns the created agents.
func (c *Config) Agents() []dataflow.Agent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]dataflow.Agent, len(c.agents))
	for i, a := range c.agents {
		out[i] = a
	}
	return out
}

// Validate checks the live topology of the configuration's topics for cycles.
func (c *Config) Validate() error {
	return Validate(c.topics)
}

// Close closes every created agent. The configuration can be created again
// afterwards.
func (c *Config) Close() error {
	c.mu.Lock()
	agents := c.agents
	c.agents = nil
	c.mu.Unlock()

	err := closeAll(agents)
	if len(agents) > 0 {
		c.logger.Info("configuration closed", slog.Int("agents", len(agents)))
	}
	return err
}

// Validate reports ErrCyclic when the topology registered on topics contains
// a directed cycle.
func Validate(topics *dataflow.TopicManager) error {
	if graph.FromTopics(topics).HasCycles() {
		return ErrCyclic
	}
	return nil
}

func closeAll[A dataflow.Agent](agents []A) error {
	var errs []error
	for _, a := range agents {
		if err := a.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", a.Name(), err))
		}
	}
	return errors.Join(errs...)
}
