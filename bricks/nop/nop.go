// Package nop provides a dipole brick that passes every burst through.
package nop

import (
	"fmt"

	"github.com/sarchlab/packetgraph/brick"
	"github.com/sarchlab/packetgraph/mask"
	"github.com/sarchlab/packetgraph/packet"
)

// Kind is the registered name of the brick kind.
const Kind = "nop"

// Nop forwards bursts to the opposite side.
type Nop struct {
	b *brick.Brick
}

// Burst forwards the packets.
func (n *Nop) Burst(
	from brick.Side,
	_ int,
	pkts []*packet.Packet,
	live mask.Mask,
) error {
	return brick.SideForward(n.b, from, pkts, live)
}

// New is the factory of the kind.
func New(b *brick.Brick, cfg brick.Config) (brick.Impl, error) {
	if cfg.Type != brick.Dipole {
		return nil, fmt.Errorf("%w: %s brick %q must be a dipole",
			brick.ErrInvalidConfig, Kind, cfg.Name)
	}

	return &Nop{b: b}, nil
}

// MakeConfig returns the construction config of a nop brick. Nop bricks take
// no parameters.
func MakeConfig(name string, _ any) (brick.Config, error) {
	return brick.Config{Name: name, Type: brick.Dipole}, nil
}

// Register adds the kind to a registry.
func Register(r *brick.Registry) error {
	return r.Register(Kind, New)
}

// Builder creates nop bricks.
type Builder struct {
	registry *brick.Registry
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

// Build creates a nop brick.
func (b Builder) Build(name string) (*brick.Brick, error) {
	b.registryMustBeGiven()

	cfg, _ := MakeConfig(name, nil)

	return b.registry.New(Kind, cfg)
}

func (b Builder) registryMustBeGiven() {
	if b.registry == nil {
		panic("nop brick requires a registry")
	}
}
