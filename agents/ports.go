package agents

import (
	"context"
	"slices"
	"sync"

	"github.com/casualjim/dataflow"
)

// ports holds the topics an agent reads from and writes to, and the agent
// value that is currently registered on them.
type ports struct {
	inputs  []*dataflow.Topic
	outputs []*dataflow.Topic

	mu   sync.Mutex
	self dataflow.Agent
}

func newPorts(topics *dataflow.TopicManager, inputs, outputs []string) *ports {
	p := &ports{}
	for _, name := range uniq(inputs) {
		p.inputs = append(p.inputs, topics.Topic(name))
	}
	for _, name := range uniq(outputs) {
		p.outputs = append(p.outputs, topics.Topic(name))
	}
	return p
}

// bind registers self on every port, replacing the previous registration.
func (p *ports) bind(self dataflow.Agent) {
	p.mu.Lock()
	old := p.self
	p.self = self
	p.mu.Unlock()

	if old != nil {
		p.release(old)
	}
	for _, t := range p.inputs {
		t.Subscribe(self)
	}
	for _, t := range p.outputs {
		t.AddPublisher(self)
	}
}

// unbind drops the current registration. It is a no-op when nothing is bound.
func (p *ports) unbind() {
	p.mu.Lock()
	self := p.self
	p.self = nil
	p.mu.Unlock()

	if self != nil {
		p.release(self)
	}
}

func (p *ports) release(self dataflow.Agent) {
	for _, t := range p.inputs {
		t.Unsubscribe(self)
	}
	for _, t := range p.outputs {
		t.RemovePublisher(self)
	}
}

func (p *ports) publish(ctx context.Context, msg dataflow.Message) error {
	for _, t := range p.outputs {
		if err := t.Publish(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func uniq(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}
