// Package config describes a pipeline in YAML: the bricks to create, how to
// link them, where to split the graph, and how to run and observe it.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sarchlab/packetgraph/logging"
	"gopkg.in/yaml.v3"
)

// ErrInvalidPipeline is returned when a pipeline description is inconsistent.
var ErrInvalidPipeline = errors.New("invalid pipeline")

// DefaultPollInterval is used when the poll section leaves the interval out.
const DefaultPollInterval = time.Millisecond

// Pipeline is the content of a pipeline file.
type Pipeline struct {
	Name     string         `yaml:"name"`
	Log      LogConfig      `yaml:"log"`
	Bricks   []BrickConfig  `yaml:"bricks"`
	Links    []LinkConfig   `yaml:"links"`
	Splits   []SplitConfig  `yaml:"splits"`
	Monitor  MonitorConfig  `yaml:"monitor"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Recorder RecorderConfig `yaml:"recorder"`
	Poll     PollConfig     `yaml:"poll"`
}

// LogConfig configures the component loggers.
type LogConfig struct {
	Format     string                   `yaml:"format"`
	Level      logging.Level            `yaml:"level"`
	Components map[string]logging.Level `yaml:"components"`
}

// BrickConfig creates one brick. Params are decoded by the kind.
type BrickConfig struct {
	Name   string         `yaml:"name"`
	Kind   string         `yaml:"kind"`
	Params map[string]any `yaml:"params"`
}

// LinkConfig links the east side of West to the west side of East.
type LinkConfig struct {
	West string `yaml:"west"`
	East string `yaml:"east"`
}

// SplitConfig replaces the edge from West to East by a pair of friend
// queues, cutting the graph in two.
type SplitConfig struct {
	West      string `yaml:"west"`
	East      string `yaml:"east"`
	WestQueue string `yaml:"west_queue"`
	EastQueue string `yaml:"east_queue"`
}

// MonitorConfig enables the HTTP monitor. Port 0 picks a free port.
type MonitorConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// MetricsConfig enables the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// RecorderConfig enables the SQLite recorder. Trace also stores every burst.
type RecorderConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	Trace   bool   `yaml:"trace"`
}

// PollConfig paces the poll loop. Iterations 0 means until interrupted.
type PollConfig struct {
	Interval   time.Duration `yaml:"interval"`
	Iterations int           `yaml:"iterations"`
}

// Load reads and validates a pipeline file.
func Load(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return p, nil
}

// Parse decodes and validates a pipeline. Unknown fields are refused.
func Parse(data []byte) (*Pipeline, error) {
	p := &Pipeline{}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPipeline, err)
	}

	p.applyDefaults()

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *Pipeline) applyDefaults() {
	if p.Name == "" {
		p.Name = "pipeline"
	}

	if p.Log.Format == "" {
		p.Log.Format = "text"
	}

	if p.Log.Level == "" {
		p.Log.Level = logging.LevelInfo
	}

	if p.Poll.Interval == 0 {
		p.Poll.Interval = DefaultPollInterval
	}

	if p.Metrics.Enabled && p.Metrics.Listen == "" {
		p.Metrics.Listen = ":9108"
	}
}

// Validate checks that names are unique and that every reference points at
// a declared brick.
func (p *Pipeline) Validate() error {
	if len(p.Bricks) == 0 {
		return fmt.Errorf("%w: no bricks", ErrInvalidPipeline)
	}

	names := make(map[string]bool)

	for i, b := range p.Bricks {
		if b.Name == "" || b.Kind == "" {
			return fmt.Errorf("%w: brick %d needs a name and a kind",
				ErrInvalidPipeline, i)
		}

		if names[b.Name] {
			return fmt.Errorf("%w: brick %q declared twice",
				ErrInvalidPipeline, b.Name)
		}

		names[b.Name] = true
	}

	for _, l := range p.Links {
		if err := mustBeDeclared(names, l.West, l.East); err != nil {
			return err
		}
	}

	for _, s := range p.Splits {
		if err := mustBeDeclared(names, s.West, s.East); err != nil {
			return err
		}

		if s.WestQueue == "" || s.EastQueue == "" || s.WestQueue == s.EastQueue {
			return fmt.Errorf("%w: split %s-%s needs two distinct queue names",
				ErrInvalidPipeline, s.West, s.East)
		}

		for _, q := range []string{s.WestQueue, s.EastQueue} {
			if names[q] {
				return fmt.Errorf("%w: queue name %q is already used",
					ErrInvalidPipeline, q)
			}

			names[q] = true
		}
	}

	switch p.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q",
			ErrInvalidPipeline, p.Log.Format)
	}

	if p.Poll.Interval < 0 || p.Poll.Iterations < 0 {
		return fmt.Errorf("%w: poll interval and iterations must not be negative",
			ErrInvalidPipeline)
	}

	return nil
}

func mustBeDeclared(names map[string]bool, refs ...string) error {
	for _, r := range refs {
		if !names[r] {
			return fmt.Errorf("%w: unknown brick %q", ErrInvalidPipeline, r)
		}
	}

	return nil
}

// ApplyLogging configures the component loggers from the log section.
func (p *Pipeline) ApplyLogging() {
	logging.Configure(p.Log.Format, p.Log.Level, p.Log.Components)
}
