package dataflow

import (
	"log/slog"

	"github.com/fogfish/opts"
)

// TopicManagerLogger sets the logger used by a TopicManager and the topics it
// creates.
var TopicManagerLogger = opts.ForName[TopicManager, *slog.Logger]("logger")

// ParallelAgentLogger sets the logger used by a ParallelAgent worker.
var ParallelAgentLogger = opts.ForName[ParallelAgent, *slog.Logger]("logger")
