package agents

import (
	"context"
	"sync"
	"testing"

	"github.com/casualjim/dataflow"
)

// probe records the text of every message delivered to it.
type probe struct {
	mu    sync.Mutex
	texts []string
}

func listen(topics *dataflow.TopicManager, name string) *probe {
	p := &probe{}
	topics.Topic(name).Subscribe(p)
	return p
}

func (p *probe) Name() string { return "probe" }
func (p *probe) Reset()       {}
func (p *probe) Callback(_ context.Context, _ string, msg dataflow.Message) {
	p.mu.Lock()
	p.texts = append(p.texts, msg.Text())
	p.mu.Unlock()
}
func (p *probe) Close() error { return nil }

func (p *probe) received() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.texts...)
}

func publish(topics *dataflow.TopicManager, topic string, text string) error {
	return topics.Topic(topic).Publish(context.Background(), dataflow.NewMessage(text))
}

// parallel wraps agent in a ParallelAgent that is closed when the test ends.
func parallel(t *testing.T, agent dataflow.Agent) *dataflow.ParallelAgent {
	t.Helper()
	p := dataflow.NewParallelAgent(agent, dataflow.DefaultQueueCapacity)
	t.Cleanup(func() { _ = p.Close() })
	return p
}
