// Package printer provides a dipole brick that logs a one-line summary of
// every packet it forwards.
package printer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sarchlab/packetgraph/brick"
	"github.com/sarchlab/packetgraph/logging"
	"github.com/sarchlab/packetgraph/mask"
	"github.com/sarchlab/packetgraph/packet"
)

// Kind is the registered name of the brick kind.
const Kind = "print"

// Params configures a print brick.
type Params struct {
	// Level is the log level used for summaries: debug or info.
	Level string `yaml:"level"`
}

// Printer logs and forwards bursts.
type Printer struct {
	b       *brick.Brick
	level   slog.Level
	rxBytes uint64
}

// Burst logs each live packet then forwards the burst.
func (p *Printer) Burst(
	from brick.Side,
	edge int,
	pkts []*packet.Packet,
	live mask.Mask,
) error {
	logger := logging.Get(logging.Print)
	if logger.Enabled(context.Background(), p.level) {
		live.ForEach(func(i int) {
			logger.Log(context.Background(), p.level, pkts[i].Summary(),
				"brick", p.b.Name(), "side", from.String(), "edge", edge, "slot", i)
		})
	}

	p.rxBytes += packet.Bytes(pkts, live)

	return brick.SideForward(p.b, from, pkts, live)
}

// RxBytes returns the number of bytes seen.
func (p *Printer) RxBytes() uint64 {
	return p.rxBytes
}

// TxBytes returns the number of bytes seen; everything is forwarded.
func (p *Printer) TxBytes() uint64 {
	return p.rxBytes
}

// New is the factory of the kind.
func New(b *brick.Brick, cfg brick.Config) (brick.Impl, error) {
	if cfg.Type != brick.Dipole {
		return nil, fmt.Errorf("%w: %s brick %q must be a dipole",
			brick.ErrInvalidConfig, Kind, cfg.Name)
	}

	var params Params
	if err := brick.DecodeParams(cfg.Params, &params); err != nil {
		return nil, err
	}

	level := slog.LevelInfo

	switch params.Level {
	case "", "info":
	case "debug":
		level = slog.LevelDebug
	default:
		return nil, fmt.Errorf("%w: print brick %q has unknown level %q",
			brick.ErrInvalidConfig, cfg.Name, params.Level)
	}

	return &Printer{b: b, level: level}, nil
}

// MakeConfig returns the construction config of a print brick.
func MakeConfig(name string, params any) (brick.Config, error) {
	var p Params
	if err := brick.DecodeParams(params, &p); err != nil {
		return brick.Config{}, err
	}

	return brick.Config{Name: name, Type: brick.Dipole, Params: p}, nil
}

// Register adds the kind to a registry.
func Register(r *brick.Registry) error {
	return r.Register(Kind, New)
}

// Builder creates print bricks.
type Builder struct {
	registry *brick.Registry
	params   Params
}

// MakeBuilder creates a new Builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithRegistry sets the registry the brick is created from.
func (b Builder) WithRegistry(r *brick.Registry) Builder {
	b.registry = r
	return b
}

// WithLevel sets the level summaries are logged at.
func (b Builder) WithLevel(level string) Builder {
	b.params.Level = level
	return b
}

// Build creates a print brick.
func (b Builder) Build(name string) (*brick.Brick, error) {
	if b.registry == nil {
		panic("print brick requires a registry")
	}

	cfg, err := MakeConfig(name, b.params)
	if err != nil {
		return nil, err
	}

	return b.registry.New(Kind, cfg)
}
