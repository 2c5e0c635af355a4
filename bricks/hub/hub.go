// Package hub provides a multipole brick that floods every burst to all of
// its edges except the one it came from.
package hub

import (
	"fmt"

	"github.com/sarchlab/packetgraph/brick"
	"github.com/sarchlab/packetgraph/mask"
	"github.com/sarchlab/packetgraph/packet"
)

// Kind is the registered name of the brick kind.
const Kind = "hub"

// DefaultEdges is the side capacity used when none is configured.
const DefaultEdges = 4

// Params configures a hub.
type Params struct {
	WestMax int `yaml:"west_max"`
	EastMax int `yaml:"east_max"`
}

// Hub floods bursts.
type Hub struct {
	b       *brick.Brick
	rxBytes uint64
	txBytes uint64
}

// Burst sends the packets to every edge of the opposite side, then to every
// other edge of the arrival side. It stops at the first failing edge.
func (h *Hub) Burst(
	from brick.Side,
	edge int,
	pkts []*packet.Packet,
	live mask.Mask,
) error {
	n := packet.Bytes(pkts, live)
	h.rxBytes += n

	if err := brick.ForwardAll(h.b, from.Opposite(), pkts, live); err != nil {
		return err
	}

	if err := brick.ForwardAllExcept(h.b, from, edge, pkts, live); err != nil {
		return err
	}

	h.txBytes += n * uint64(h.targets(from, edge))

	return nil
}

func (h *Hub) targets(from brick.Side, edge int) int {
	n := h.b.EdgeCount(brick.West) + h.b.EdgeCount(brick.East)
	if _, ok := h.b.Edge(from, edge); ok {
		n--
	}

	return n
}

// RxBytes returns the number of bytes received.
func (h *Hub) RxBytes() uint64 {
	return h.rxBytes
}

// TxBytes returns the number of bytes flooded.
func (h *Hub) TxBytes() uint64 {
	return h.txBytes
}

// New is the factory of the kind.
func New(b *brick.Brick, cfg brick.Config) (brick.Impl, error) {
	if cfg.Type != brick.Multipole {
		return nil, fmt.Errorf("%w: %s brick %q must be a multipole",
			brick.ErrInvalidConfig, Kind, cfg.Name)
	}

	return &Hub{b: b}, nil
}

// MakeConfig returns the construction config of a hub. Missing capacities
// default to DefaultEdges.
func MakeConfig(name string, params any) (brick.Config, error) {
	var p Params
	if err := brick.DecodeParams(params, &p); err != nil {
		return brick.Config{}, err
	}

	if p.WestMax == 0 {
		p.WestMax = DefaultEdges
	}

	if p.EastMax == 0 {
		p.EastMax = DefaultEdges
	}

	return brick.Config{
		Name:    name,
		Type:    brick.Multipole,
		WestMax: p.WestMax,
		EastMax: p.EastMax,
		Params:  p,
	}, nil
}

// Register adds the kind to a registry.
func Register(r *brick.Registry) error {
	return r.Register(Kind, New)
}

// Builder creates hubs.
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

// WithEdges sets the capacity of both sides.
func (b Builder) WithEdges(west, east int) Builder {
	b.params.WestMax = west
	b.params.EastMax = east

	return b
}

// Build creates a hub.
func (b Builder) Build(name string) (*brick.Brick, error) {
	if b.registry == nil {
		panic("hub brick requires a registry")
	}

	cfg, err := MakeConfig(name, b.params)
	if err != nil {
		return nil, err
	}

	return b.registry.New(Kind, cfg)
}
