package dataflow

import (
	"log/slog"

	"github.com/casualjim/dataflow/internal/registry"
	"github.com/casualjim/dataflow/pkg/slogx"
	"github.com/fogfish/opts"
)

// TopicManager is the registry of topics by name. It is constructed once and
// handed to every component that needs topic access.
type TopicManager struct {
	topics registry.Registry[*Topic]
	logger *slog.Logger
}

// NewTopicManager creates an empty registry.
func NewTopicManager(options ...opts.Option[TopicManager]) *TopicManager {
	tm := &TopicManager{
		topics: registry.New[*Topic](),
		logger: slog.Default(),
	}
	if err := opts.Apply(tm, options); err != nil {
		panic(err)
	}
	tm.logger = tm.logger.With(slogx.LoggerName("topics"))
	return tm
}

// Topic returns the topic registered under name, creating it on first access.
// Repeated calls with the same name return the same instance until Clear.
func (tm *TopicManager) Topic(name string) *Topic {
	topic, loaded := tm.topics.GetOrAdd(name, func() *Topic {
		return newTopic(name, tm.logger)
	})
	if !loaded {
		tm.logger.Debug("topic created", slogx.Topic(name))
	}
	return topic
}

// Topics returns a snapshot of all registered topics, ordered by name.
func (tm *TopicManager) Topics() []*Topic {
	return tm.topics.Values()
}

// Names returns the sorted names of all registered topics.
func (tm *TopicManager) Names() []string {
	return tm.topics.Names()
}

// Len returns the number of registered topics.
func (tm *TopicManager) Len() int {
	return tm.topics.Len()
}

// Clear drops every topic. Topics obtained earlier keep working but are no
// longer reachable through the registry.
func (tm *TopicManager) Clear() {
	tm.topics.Clear()
	tm.logger.Debug("topics cleared")
}
