package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/casualjim/dataflow/graph"
	"github.com/fatih/color"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"
)

var (
	graphJSONFlag  bool
	graphDebugFlag bool

	graphCmd = &cobra.Command{
		Use:   "graph FILE",
		Short: "Print the topic and agent graph of a configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			net, err := openNetwork(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer net.Close()

			g := graph.FromTopics(net.topics)
			out := cmd.OutOrStdout()
			switch {
			case graphDebugFlag:
				pp.Fprintln(out, g.Nodes())
			case graphJSONFlag:
				data, err := g.MarshalJSON()
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
			default:
				writeGraph(out, g)
			}
			return nil
		},
	}
)

func init() {
	graphCmd.Flags().BoolVar(&graphJSONFlag, "json", false, "print the graph as nodes and links")
	graphCmd.Flags().BoolVar(&graphDebugFlag, "debug", false, "dump the raw nodes")
}

func writeGraph(w io.Writer, g *graph.Graph) {
	nodes := g.Nodes()
	for _, n := range nodes {
		targets := make([]string, 0, len(n.Edges))
		for _, h := range n.Edges {
			targets = append(targets, label(nodes[h]))
		}
		line := label(n)
		if len(targets) > 0 {
			line += " -> " + strings.Join(targets, ", ")
		}
		fmt.Fprintln(w, line)
	}
	if g.HasCycles() {
		fmt.Fprintln(w, color.RedString("graph contains a cycle"))
	}
}

func label(n graph.Node) string {
	if n.Kind == graph.KindTopic {
		return color.CyanString(n.Label)
	}
	return color.YellowString("[%s]", n.Label)
}
