package cmd

import (
	"context"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/browser"
	"github.com/sarchlab/packetgraph/config"
	"github.com/sarchlab/packetgraph/datarecording"
	"github.com/sarchlab/packetgraph/graph"
	"github.com/sarchlab/packetgraph/logging"
	"github.com/sarchlab/packetgraph/metrics"
	"github.com/sarchlab/packetgraph/monitoring"
	"github.com/sarchlab/packetgraph/tracing"
)

// runner drives the graphs of one pipeline until the context is done or
// the poll budget is spent.
type runner struct {
	pipeline    *config.Pipeline
	monitorPort int
	openBrowser bool

	// Polls hold the read side so split halves run in parallel. Observers
	// take the write side, which stops every poll loop while they read.
	lock   sync.RWMutex
	graphs []*graph.Graph

	monitor  *monitoring.Monitor
	progress *monitoring.ProgressBar
	metrics  *metrics.Server
	recorder datarecording.DataRecorder
	exec     *datarecording.ExecRecorder
	tracer   *tracing.DBTracer

	polls atomic.Uint64
}

func (r *runner) run(ctx context.Context) error {
	reg, err := newRegistry()
	if err != nil {
		return err
	}

	r.graphs, err = config.Build(reg, r.pipeline)
	if err != nil {
		return err
	}

	if err := r.startObservers(); err != nil {
		r.stopObservers()
		_ = destroyGraphs(r.graphs)

		return err
	}

	runErr := r.pollAll(ctx)

	r.lock.Lock()
	r.recordStats()
	r.lock.Unlock()

	r.stopObservers()

	if err := destroyGraphs(r.graphs); err != nil && runErr == nil {
		runErr = err
	}

	return runErr
}

func (r *runner) startObservers() error {
	p := r.pipeline

	if p.Recorder.Enabled {
		if err := r.startRecorder(); err != nil {
			return err
		}
	}

	if p.Metrics.Enabled {
		c := metrics.NewCollector(&r.lock)
		for _, g := range r.graphs {
			c.AddGraph(g)
		}

		s, err := metrics.NewServer(p.Metrics.Listen, c)
		if err != nil {
			return err
		}

		if err := s.Start(); err != nil {
			return err
		}

		r.metrics = s
	}

	if p.Monitor.Enabled || r.monitorPort != 0 {
		return r.startMonitor()
	}

	return nil
}

func (r *runner) startRecorder() error {
	rec, err := datarecording.New(r.pipeline.Recorder.Path)
	if err != nil {
		return err
	}

	r.recorder = rec

	r.exec, err = datarecording.NewExecRecorder(rec)
	if err != nil {
		return err
	}

	r.exec.Start()
	r.exec.Note("Pipeline", r.pipeline.Name)

	if !r.pipeline.Recorder.Trace {
		return nil
	}

	r.tracer, err = tracing.NewDBTracer(tracing.WallClock{}, rec)
	if err != nil {
		return err
	}

	for _, g := range r.graphs {
		tracing.CollectGraphTrace(g, r.tracer)
	}

	return r.tracer.EnableTracing()
}

func (r *runner) startMonitor() error {
	port := r.monitorPort
	if port == 0 {
		port = r.pipeline.Monitor.Port
	}

	r.monitor = monitoring.NewMonitor(&r.lock).WithPortNumber(port)
	for _, g := range r.graphs {
		r.monitor.RegisterGraph(g)
	}

	if n := r.pipeline.Poll.Iterations; n > 0 {
		r.progress = r.monitor.CreateProgressBar("polls",
			uint64(n*len(r.graphs)))
	}

	addr, err := r.monitor.StartServer()
	if err != nil {
		return err
	}

	if r.openBrowser {
		url := "http://" + addr
		if _, port, err := net.SplitHostPort(addr); err == nil {
			url = "http://localhost:" + port
		}

		if err := browser.OpenURL(url); err != nil {
			logging.Get(logging.CLI).Warn("cannot open a browser",
				"url", url, "error", err)
		}
	}

	return nil
}

// pollAll polls every graph from its own goroutine and returns the first
// poll failure.
func (r *runner) pollAll(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	for _, g := range r.graphs {
		g := g
		wg.Add(1)

		go func() {
			defer wg.Done()

			if err := r.pollGraph(ctx, g); err != nil {
				errOnce.Do(func() { firstErr = err })
				cancel()
			}
		}()
	}

	wg.Wait()

	return firstErr
}

func (r *runner) pollGraph(ctx context.Context, g *graph.Graph) error {
	poll := r.pipeline.Poll
	ticker := time.NewTicker(poll.Interval)
	defer ticker.Stop()

	for i := 0; poll.Iterations == 0 || i < poll.Iterations; i++ {
		r.lock.RLock()
		err := g.Poll()
		r.lock.RUnlock()

		if err != nil {
			return err
		}

		r.polls.Add(1)

		if r.progress != nil {
			r.progress.Done(1)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}

	return nil
}

func (r *runner) recordStats() {
	if r.recorder == nil {
		return
	}

	logger := logging.Get(logging.CLI)

	for _, g := range r.graphs {
		if err := datarecording.RecordGraph(r.recorder, g); err != nil {
			logger.Error("recording graph counters", "graph", g.Name(), "error", err)
		}
	}
}

func (r *runner) stopObservers() {
	logger := logging.Get(logging.CLI)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if r.monitor != nil {
		if r.progress != nil {
			r.monitor.CompleteProgressBar(r.progress)
		}

		if err := r.monitor.StopServer(ctx); err != nil {
			logger.Warn("stopping monitor", "error", err)
		}
	}

	if r.metrics != nil {
		if err := r.metrics.Stop(ctx); err != nil {
			logger.Warn("stopping metrics server", "error", err)
		}
	}

	if r.tracer != nil {
		if err := r.tracer.Terminate(); err != nil {
			logger.Error("closing trace", "error", err)
		}
	}

	if r.exec != nil {
		r.exec.Note("Polls", strconv.FormatUint(r.polls.Load(), 10))

		if err := r.exec.End(); err != nil {
			logger.Error("recording run", "error", err)
		}
	}

	if r.recorder != nil {
		if err := r.recorder.Close(); err != nil {
			logger.Error("closing recorder", "error", err)
		}
	}
}
