// Package cmd provides the command-line interface of pgctl.
package cmd

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	envConfig      = "PGCTL_CONFIG"
	envMonitorPort = "PGCTL_MONITOR_PORT"
)

type rootOptions struct {
	envFile    string
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "pgctl",
		Short: "pgctl builds packet graphs from pipeline files and runs them.",
		Long: `pgctl builds packet graphs from YAML pipeline files. It can ` +
			`check a pipeline, export it to graphviz, and run it with an ` +
			`optional web monitor, Prometheus endpoint and SQLite recorder.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.loadEnv(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env",
		"file with environment variables to load before running")
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c",
		"pipeline.yaml", "pipeline file, also read from "+envConfig)

	rootCmd.AddCommand(
		newRunCmd(opts),
		newCheckCmd(opts),
		newDotCmd(opts),
		newKindsCmd(),
	)

	return rootCmd
}

// loadEnv reads the env file, if any, and lets the environment fill the
// flags that were not given on the command line.
func (o *rootOptions) loadEnv(cmd *cobra.Command) error {
	err := godotenv.Load(o.envFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if v, ok := os.LookupEnv(envConfig); ok && !cmd.Flags().Changed("config") {
		o.configPath = v
	}

	return nil
}

// Execute runs pgctl and exits with a non-zero status on failure.
func Execute() {
	err := newRootCmd().Execute()
	if err != nil {
		os.Exit(1)
	}
}
