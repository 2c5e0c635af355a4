package cmd

import (
	"fmt"

	"github.com/sarchlab/packetgraph/config"
	"github.com/sarchlab/packetgraph/graph"
	"github.com/spf13/cobra"
)

// buildPipeline loads the pipeline file and builds its graphs.
func buildPipeline(path string) (*config.Pipeline, []*graph.Graph, error) {
	p, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	reg, err := newRegistry()
	if err != nil {
		return nil, nil, err
	}

	graphs, err := config.Build(reg, p)
	if err != nil {
		return nil, nil, err
	}

	return p, graphs, nil
}

func destroyGraphs(graphs []*graph.Graph) error {
	var firstErr error

	for _, g := range graphs {
		if err := g.Destroy(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Build a pipeline and check the consistency of its graphs.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, graphs, err := buildPipeline(opts.configPath)
			if err != nil {
				return err
			}
			defer func() { _ = destroyGraphs(graphs) }()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "pipeline %s: %d graph(s)\n", p.Name, len(graphs))

			for _, g := range graphs {
				if err := g.Sanity(); err != nil {
					return fmt.Errorf("graph %s: %w", g.Name(), err)
				}

				fmt.Fprintf(out, "  %s: %d bricks, %d pollable\n",
					g.Name(), g.Count(), len(g.Pollable()))
			}

			return nil
		},
	}
}
