package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/casualjim/dataflow"
	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

var (
	settleFlag time.Duration

	publishCmd = &cobra.Command{
		Use:   "publish FILE topic=value...",
		Short: "Publish values into a configuration and show the last message of every topic",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			assignments, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}

			net, err := openNetwork(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer net.Close()

			for _, a := range assignments {
				if err := net.topics.Topic(a.topic).Publish(cmd.Context(), dataflow.NewMessage(a.value)); err != nil {
					return fmt.Errorf("publish %s: %w", a.topic, err)
				}
			}

			select {
			case <-time.After(settleFlag):
			case <-cmd.Context().Done():
				return cmd.Context().Err()
			}

			rendered, err := renderTopics(net.topics)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), rendered)
			return nil
		},
	}
)

func init() {
	publishCmd.Flags().DurationVar(&settleFlag, "settle", 100*time.Millisecond, "time to let the agents process before printing")
}

type assignment struct {
	topic string
	value string
}

func parseAssignments(args []string) ([]assignment, error) {
	out := make([]assignment, 0, len(args))
	for _, arg := range args {
		topic, value, ok := strings.Cut(arg, "=")
		topic = strings.TrimSpace(topic)
		if !ok || topic == "" {
			return nil, fmt.Errorf("invalid assignment %q, want topic=value", arg)
		}
		out = append(out, assignment{topic: topic, value: value})
	}
	return out, nil
}

func topicTable(topics *dataflow.TopicManager) string {
	var b strings.Builder
	b.WriteString("| topic | last message | subscribers | publishers |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, t := range topics.Topics() {
		fmt.Fprintf(&b, "| %s | `%s` | %d | %d |\n",
			t.Name(), t.LastMessage().Text(), len(t.Subscribers()), len(t.Publishers()))
	}
	return b.String()
}

func renderTopics(topics *dataflow.TopicManager) (string, error) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return "", err
	}
	return r.Render(topicTable(topics))
}
