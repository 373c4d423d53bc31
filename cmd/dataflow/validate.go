package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Create the agents of a configuration and check the topology for cycles",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		net, err := openNetwork(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer net.Close()

		out := cmd.OutOrStdout()
		if err := net.config.Validate(); err != nil {
			fmt.Fprintf(out, "%s %s: %v\n", color.RedString("invalid"), net.config.Name(), err)
			return err
		}
		fmt.Fprintf(out, "%s %s: %d agents on %d topics\n",
			color.GreenString("ok"), net.config.Name(), len(net.config.Agents()), net.topics.Len())
		return nil
	},
}
