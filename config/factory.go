package config

import (
	"fmt"
	"strings"

	"github.com/casualjim/dataflow"
	"github.com/casualjim/dataflow/internal/registry"
)

// Factory builds the agent declared by spec on topics.
//
// Config wraps every built agent in a dataflow.ParallelAgent. An agent that
// subscribes itself to topics must implement dataflow.Rebinder so the wrapper
// takes over those subscriptions; otherwise deliveries keep reaching the raw
// agent synchronously and the wrapper's queue stays idle.
type Factory func(topics *dataflow.TopicManager, spec AgentSpec) (dataflow.Agent, error)

// Factories maps agent type tags to the factories that build them.
type Factories struct {
	factories registry.Registry[Factory]
}

func NewFactories() *Factories {
	return &Factories{factories: registry.New[Factory]()}
}

// Register adds or replaces the factory for tag.
func (f *Factories) Register(tag string, factory Factory) {
	f.factories.Add(resolveTag(tag), factory)
}

// Lookup returns the factory for tag. Package qualifiers are ignored, so
// "project.configs.MulAgent" resolves "MulAgent".
func (f *Factories) Lookup(tag string) (Factory, error) {
	factory, ok := f.factories.Get(resolveTag(tag))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAgent, tag)
	}
	return factory, nil
}

// Tags returns the registered tags in sorted order.
func (f *Factories) Tags() []string {
	return f.factories.Names()
}

func resolveTag(tag string) string {
	tag = strings.TrimSpace(tag)
	if i := strings.LastIndexByte(tag, '.'); i >= 0 {
		return tag[i+1:]
	}
	return tag
}

// Arity checks that spec declares at least inputs input topics and outputs
// output topics. Extra topics are ignored by the builtin factories.
func Arity(spec AgentSpec, inputs, outputs int) error {
	if len(spec.Inputs) < inputs || len(spec.Outputs) < outputs {
		return fmt.Errorf("%w: %s wants %d inputs and %d outputs, got %d and %d",
			ErrArity, spec.Type, inputs, outputs, len(spec.Inputs), len(spec.Outputs))
	}
	return nil
}
