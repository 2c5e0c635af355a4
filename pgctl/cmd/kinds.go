package cmd

import (
	"fmt"

	"github.com/sarchlab/packetgraph/brick"
	"github.com/sarchlab/packetgraph/bricks"
	"github.com/spf13/cobra"
)

func newRegistry() (*brick.Registry, error) {
	reg := brick.NewRegistry()

	if err := bricks.RegisterAll(reg); err != nil {
		return nil, err
	}

	return reg, nil
}

func newKindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the brick kinds a pipeline can use.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := newRegistry()
			if err != nil {
				return err
			}

			for _, k := range reg.Kinds() {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}

			return nil
		},
	}
}
