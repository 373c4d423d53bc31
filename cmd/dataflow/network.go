package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/casualjim/dataflow"
	"github.com/casualjim/dataflow/agents"
	"github.com/casualjim/dataflow/config"
	"github.com/fogfish/opts"
)

// network is a loaded configuration with its agents created.
type network struct {
	topics *dataflow.TopicManager
	config *config.Config
}

func openNetwork(ctx context.Context, path string) (*network, error) {
	doc, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	options := []opts.Option[config.Config]{config.Logger(slog.Default())}
	if queueCapacityFlag > 0 {
		options = append(options, config.QueueCapacity(queueCapacityFlag))
	}

	topics := dataflow.NewTopicManager(dataflow.TopicManagerLogger(slog.Default()))
	cfg, err := config.New(doc, topics, agents.Builtin(), options...)
	if err != nil {
		return nil, err
	}
	if err := cfg.Create(ctx); err != nil {
		return nil, err
	}
	return &network{topics: topics, config: cfg}, nil
}

func (n *network) Close() error {
	return n.config.Close()
}
