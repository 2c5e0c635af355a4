package cmd

import (
	"github.com/spf13/cobra"
)

func newDotCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dot",
		Short: "Print the graphs of a pipeline in graphviz format.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, graphs, err := buildPipeline(opts.configPath)
			if err != nil {
				return err
			}
			defer func() { _ = destroyGraphs(graphs) }()

			for _, g := range graphs {
				if err := g.Dot(cmd.OutOrStdout()); err != nil {
					return err
				}
			}

			return nil
		},
	}
}
