package dataflow

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

type received struct {
	topic string
	text  string
}

// recordingAgent collects every delivery. When gate is set each callback
// waits for a value on it before recording.
type recordingAgent struct {
	name string

	mu       sync.Mutex
	messages []received
	resets   int
	closes   int

	gate    chan struct{}
	entered chan struct{}
	panicOn string
	onCall  func(topic string, msg Message)
}

func newRecordingAgent(name string) *recordingAgent {
	return &recordingAgent{name: name}
}

func (r *recordingAgent) Name() string { return r.name }

func (r *recordingAgent) Reset() {
	r.mu.Lock()
	r.resets++
	r.mu.Unlock()
}

func (r *recordingAgent) Callback(ctx context.Context, topic string, msg Message) {
	if r.entered != nil {
		select {
		case r.entered <- struct{}{}:
		default:
		}
	}
	if r.gate != nil {
		select {
		case <-r.gate:
		case <-ctx.Done():
		}
	}
	if r.panicOn != "" && msg.Text() == r.panicOn {
		panic("boom")
	}
	r.mu.Lock()
	r.messages = append(r.messages, received{topic: topic, text: msg.Text()})
	r.mu.Unlock()
	if r.onCall != nil {
		r.onCall(topic, msg)
	}
}

func (r *recordingAgent) Close() error {
	r.mu.Lock()
	r.closes++
	r.mu.Unlock()
	return nil
}

func (r *recordingAgent) received() []received {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]received, len(r.messages))
	copy(out, r.messages)
	return out
}

func (r *recordingAgent) texts() []string {
	msgs := r.received()
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.text
	}
	return out
}

func (r *recordingAgent) closeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closes
}

// funcAgent is a non-comparable agent value.
type funcAgent struct {
	fn func(topic string, msg Message)
}

func (f funcAgent) Name() string { return "func" }
func (f funcAgent) Reset()       {}
func (f funcAgent) Callback(_ context.Context, topic string, msg Message) {
	f.fn(topic, msg)
}
func (f funcAgent) Close() error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
