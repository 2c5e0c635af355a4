package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/sarchlab/packetgraph/config"
	"github.com/sarchlab/packetgraph/logging"
	"github.com/spf13/cobra"
)

type runOptions struct {
	watch       bool
	openBrowser bool
	monitorPort int
	iterations  int
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	ro := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build a pipeline and poll its graphs until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := ro.portFromEnv(cmd); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(),
				os.Interrupt, syscall.SIGTERM)
			defer stop()

			return ro.run(ctx, cmd, opts.configPath)
		},
	}

	cmd.Flags().BoolVar(&ro.watch, "watch", false,
		"rebuild the pipeline whenever the pipeline file changes")
	cmd.Flags().BoolVar(&ro.openBrowser, "open", false,
		"open the monitor in a web browser")
	cmd.Flags().IntVar(&ro.monitorPort, "monitor-port", 0,
		"serve the monitor on this port, also read from "+envMonitorPort)
	cmd.Flags().IntVar(&ro.iterations, "iterations", 0,
		"override the number of polls per graph")

	return cmd
}

func (o *runOptions) portFromEnv(cmd *cobra.Command) error {
	v, ok := os.LookupEnv(envMonitorPort)
	if !ok || cmd.Flags().Changed("monitor-port") {
		return nil
	}

	port, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", envMonitorPort, err)
	}

	o.monitorPort = port

	return nil
}

func (o *runOptions) load(path string) (*config.Pipeline, error) {
	p, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if o.iterations > 0 {
		p.Poll.Iterations = o.iterations
	}

	return p, nil
}

func (o *runOptions) run(ctx context.Context, cmd *cobra.Command, path string) error {
	p, err := o.load(path)
	if err != nil {
		return err
	}

	if !o.watch {
		return o.runOnce(ctx, cmd, p)
	}

	return o.runWatched(ctx, cmd, path, p)
}

func (o *runOptions) runOnce(
	ctx context.Context,
	cmd *cobra.Command,
	p *config.Pipeline,
) error {
	p.ApplyLogging()

	r := &runner{
		pipeline:    p,
		monitorPort: o.monitorPort,
		openBrowser: o.openBrowser,
	}

	err := r.run(ctx)

	fmt.Fprintf(cmd.OutOrStdout(), "pipeline %s: %d graph(s), %d poll(s)\n",
		p.Name, len(r.graphs), r.polls.Load())

	return err
}

// runWatched restarts the pipeline every time its file changes. Each restart
// records into a fresh database.
func (o *runOptions) runWatched(
	ctx context.Context,
	cmd *cobra.Command,
	path string,
	p *config.Pipeline,
) error {
	var (
		mu      sync.Mutex
		restart context.CancelFunc
	)

	changes := make(chan *config.Pipeline, 1)
	watchErr := make(chan error, 1)

	go func() {
		watchErr <- config.Watch(ctx, path, func(changed *config.Pipeline) {
			// Only the latest version matters.
			select {
			case <-changes:
			default:
			}
			changes <- changed

			mu.Lock()
			if restart != nil {
				restart()
			}
			mu.Unlock()
		})
	}()

	basePath := p.Recorder.Path

	for generation := 0; ; generation++ {
		if generation > 0 && basePath != "" {
			p.Recorder.Path = fmt.Sprintf("%s_%d", basePath, generation)
		}

		runCtx, cancel := context.WithCancel(ctx)

		mu.Lock()
		restart = cancel
		mu.Unlock()

		err := o.runOnce(runCtx, cmd, p)

		cancel()

		if err != nil {
			return err
		}

		// A finished poll budget waits here for the next change.
		select {
		case <-ctx.Done():
			return nil
		case err := <-watchErr:
			return err
		case p = <-changes:
		}

		if o.iterations > 0 {
			p.Poll.Iterations = o.iterations
		}

		basePath = p.Recorder.Path

		logging.Get(logging.CLI).Info("restarting pipeline", "name", p.Name)
	}
}
