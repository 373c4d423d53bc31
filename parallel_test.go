package dataflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eventually = 2 * time.Second

func TestParallelAgent(t *testing.T) {
	ctx := context.Background()
	logger := ParallelAgentLogger(discardLogger())

	t.Run("delivers every message once in enqueue order", func(t *testing.T) {
		inner := newRecordingAgent("rec")
		p := NewParallelAgent(inner, 4, logger)
		defer p.Close()

		topic := newTopic("in", discardLogger())
		topic.Subscribe(p)

		const n = 200
		for i := 0; i < n; i++ {
			require.NoError(t, topic.Publish(ctx, FromFloat(float64(i))))
		}

		require.Eventually(t, func() bool { return len(inner.received()) == n }, eventually, time.Millisecond)
		for i, r := range inner.received() {
			assert.Equal(t, "in", r.topic)
			assert.Equal(t, fmt.Sprint(i), r.text)
		}
	})

	t.Run("keeps topic and payload apart", func(t *testing.T) {
		inner := newRecordingAgent("rec")
		p := NewParallelAgent(inner, 2, logger)
		defer p.Close()

		p.Callback(ctx, "a:b", NewMessage("c:d:e"))
		require.Eventually(t, func() bool { return len(inner.received()) == 1 }, eventually, time.Millisecond)
		assert.Equal(t, received{topic: "a:b", text: "c:d:e"}, inner.received()[0])
	})

	t.Run("publish returns before the wrapped agent runs", func(t *testing.T) {
		inner := newRecordingAgent("slow")
		inner.gate = make(chan struct{})
		inner.entered = make(chan struct{}, 1)
		p := NewParallelAgent(inner, 4, logger)
		defer p.Close()

		topic := newTopic("in", discardLogger())
		topic.Subscribe(p)

		require.NoError(t, topic.Publish(ctx, NewMessage("x")))
		select {
		case <-inner.entered:
		case <-time.After(eventually):
			t.Fatal("worker never picked up the message")
		}
		// the worker is parked inside the callback while this goroutine carries on
		assert.Empty(t, inner.texts())

		inner.gate <- struct{}{}
		require.Eventually(t, func() bool { return len(inner.texts()) == 1 }, eventually, time.Millisecond)
	})

	t.Run("full queue blocks the publisher", func(t *testing.T) {
		inner := newRecordingAgent("slow")
		inner.gate = make(chan struct{})
		inner.entered = make(chan struct{}, 1)
		p := NewParallelAgent(inner, 1, logger)
		defer p.Close()

		p.Callback(ctx, "t", NewMessage("1"))
		<-inner.entered // worker holds message 1
		p.Callback(ctx, "t", NewMessage("2"))

		published := make(chan struct{})
		go func() {
			p.Callback(ctx, "t", NewMessage("3"))
			close(published)
		}()

		select {
		case <-published:
			t.Fatal("callback returned while the queue was full")
		case <-time.After(50 * time.Millisecond):
		}

		inner.gate <- struct{}{}
		select {
		case <-published:
		case <-time.After(eventually):
			t.Fatal("callback stayed blocked after space freed")
		}

		inner.gate <- struct{}{}
		inner.gate <- struct{}{}
		require.Eventually(t, func() bool { return len(inner.texts()) == 3 }, eventually, time.Millisecond)
		assert.Equal(t, []string{"1", "2", "3"}, inner.texts())
	})

	t.Run("blocked enqueue gives up when the caller context ends", func(t *testing.T) {
		inner := newRecordingAgent("slow")
		inner.gate = make(chan struct{})
		inner.entered = make(chan struct{}, 1)
		p := NewParallelAgent(inner, 1, logger)
		defer p.Close()

		p.Callback(ctx, "t", NewMessage("1"))
		<-inner.entered
		p.Callback(ctx, "t", NewMessage("2"))

		cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		start := time.Now()
		p.Callback(cctx, "t", NewMessage("3"))
		assert.Less(t, time.Since(start), eventually)
	})

	t.Run("serializes callbacks", func(t *testing.T) {
		var active, maxActive int
		var mu sync.Mutex
		inner := newRecordingAgent("serial")
		inner.onCall = func(string, Message) {
			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()
			time.Sleep(100 * time.Microsecond)
			mu.Lock()
			active--
			mu.Unlock()
		}
		p := NewParallelAgent(inner, 8, logger)
		defer p.Close()

		var wg sync.WaitGroup
		for g := 0; g < 4; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 25; i++ {
					p.Callback(ctx, "t", NewMessage("x"))
				}
			}()
		}
		wg.Wait()

		require.Eventually(t, func() bool { return len(inner.texts()) == 100 }, eventually, time.Millisecond)
		mu.Lock()
		assert.Equal(t, 1, maxActive)
		mu.Unlock()
	})

	t.Run("close stops the worker and closes the wrapped agent once", func(t *testing.T) {
		inner := newRecordingAgent("rec")
		p := NewParallelAgent(inner, 4, logger)

		require.NoError(t, p.Close())
		select {
		case <-p.Done():
		default:
			t.Fatal("worker still running after close")
		}
		require.NoError(t, p.Close())
		assert.Equal(t, 1, inner.closeCount())
	})

	t.Run("publishing after close neither delivers nor panics", func(t *testing.T) {
		inner := newRecordingAgent("rec")
		p := NewParallelAgent(inner, 4, logger)
		topic := newTopic("in", discardLogger())
		topic.Subscribe(p)

		require.NoError(t, p.Close())
		assert.NotPanics(t, func() {
			require.NoError(t, topic.Publish(ctx, NewMessage("late")))
		})
		time.Sleep(10 * time.Millisecond)
		assert.Empty(t, inner.texts())
	})

	t.Run("close interrupts a blocked callback", func(t *testing.T) {
		inner := newRecordingAgent("stuck")
		inner.gate = make(chan struct{}) // never released
		inner.entered = make(chan struct{}, 1)
		p := NewParallelAgent(inner, 4, logger)

		p.Callback(ctx, "t", NewMessage("1"))
		<-inner.entered
		p.Callback(ctx, "t", NewMessage("2"))

		closed := make(chan error, 1)
		go func() { closed <- p.Close() }()
		select {
		case err := <-closed:
			require.NoError(t, err)
		case <-time.After(eventually):
			t.Fatal("close did not return")
		}
		assert.Equal(t, 0, p.Pending())
		// message 1 was released by cancellation, message 2 was discarded
		assert.LessOrEqual(t, len(inner.texts()), 1)
	})

	t.Run("close is safe against concurrent publishes", func(t *testing.T) {
		inner := newRecordingAgent("rec")
		p := NewParallelAgent(inner, 2, logger)
		topic := newTopic("in", discardLogger())
		topic.Subscribe(p)

		var wg sync.WaitGroup
		stop := make(chan struct{})
		for g := 0; g < 4; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					select {
					case <-stop:
						return
					default:
						_ = topic.Publish(ctx, NewMessage("x"))
					}
				}
			}()
		}
		time.Sleep(5 * time.Millisecond)
		require.NoError(t, p.Close())
		close(stop)
		wg.Wait()

		count := len(inner.texts())
		time.Sleep(10 * time.Millisecond)
		assert.Equal(t, count, len(inner.texts()), "no deliveries after close")
		assert.Equal(t, 1, inner.closeCount())
	})

	t.Run("returns the wrapped agent close error", func(t *testing.T) {
		want := errors.New("close failed")
		p := NewParallelAgent(&failingCloser{recordingAgent: newRecordingAgent("f"), err: want}, 1, logger)
		assert.ErrorIs(t, p.Close(), want)
		assert.ErrorIs(t, p.Close(), want)
	})

	t.Run("survives a panicking wrapped agent", func(t *testing.T) {
		inner := newRecordingAgent("flaky")
		inner.panicOn = "bad"
		p := NewParallelAgent(inner, 4, logger)
		defer p.Close()

		p.Callback(ctx, "t", NewMessage("bad"))
		p.Callback(ctx, "t", NewMessage("good"))
		require.Eventually(t, func() bool { return len(inner.texts()) == 1 }, eventually, time.Millisecond)
		assert.Equal(t, []string{"good"}, inner.texts())
	})

	t.Run("delegates name reset and identity", func(t *testing.T) {
		inner := newRecordingAgent("rec")
		p := NewParallelAgent(inner, 0, logger)
		defer p.Close()

		assert.Equal(t, "rec", p.Name())
		assert.Equal(t, 1, p.Capacity())
		assert.NotEmpty(t, p.ID())
		assert.Same(t, inner, p.Unwrap())

		p.Reset()
		inner.mu.Lock()
		assert.Equal(t, 1, inner.resets)
		inner.mu.Unlock()

		ided := &identifiedAgent{recordingAgent: newRecordingAgent("id"), id: "fixed"}
		q := NewParallelAgent(ided, 1, logger)
		defer q.Close()
		assert.Equal(t, "fixed", q.ID())
	})

	t.Run("rebinds self registering agents", func(t *testing.T) {
		topic := newTopic("in", discardLogger())
		inner := &bindingAgent{recordingAgent: newRecordingAgent("bound"), topic: topic}
		inner.Rebind(inner)

		p := NewParallelAgent(inner, 4, logger)
		subs := topic.Subscribers()
		require.Len(t, subs, 1)
		assert.Same(t, p, subs[0])

		require.NoError(t, p.Close())
		assert.Empty(t, topic.Subscribers())
	})
}

type failingCloser struct {
	*recordingAgent
	err error
}

func (f *failingCloser) Close() error {
	_ = f.recordingAgent.Close()
	return f.err
}

type identifiedAgent struct {
	*recordingAgent
	id string
}

func (i *identifiedAgent) ID() string { return i.id }

type bindingAgent struct {
	*recordingAgent
	topic *Topic
	self  Agent
}

func (b *bindingAgent) Rebind(self Agent) {
	if b.self != nil {
		b.topic.Unsubscribe(b.self)
	}
	b.self = self
	b.topic.Subscribe(self)
}

func (b *bindingAgent) Close() error {
	b.topic.Unsubscribe(b.self)
	return b.recordingAgent.Close()
}
