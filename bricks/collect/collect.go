// Package collect provides a sink brick that keeps the last burst received
// on each side. It is mostly used to observe what reaches the edge of a
// graph.
package collect

import (
	"fmt"

	"github.com/sarchlab/packetgraph/brick"
	"github.com/sarchlab/packetgraph/mask"
	"github.com/sarchlab/packetgraph/packet"
)

// Kind is the registered name of the brick kind.
const Kind = "collect"

// Params configures a collector.
type Params struct {
	// Monopole makes the collector a single-sided brick.
	Monopole bool `yaml:"monopole"`
}

type capture struct {
	pkts   []*packet.Packet
	live   mask.Mask
	bursts int
}

// Collector stores bursts instead of forwarding them.
type Collector struct {
	captures [2]capture
	rxBytes  uint64
}

// Burst keeps a reference on the live packets and releases the previously
// captured burst of the same side.
func (c *Collector) Burst(
	from brick.Side,
	_ int,
	pkts []*packet.Packet,
	live mask.Mask,
) error {
	cp := &c.captures[from]
	packet.ReleaseAll(cp.pkts, cp.live)

	cp.pkts = make([]*packet.Packet, len(pkts))
	copy(cp.pkts, pkts)
	cp.live = live
	cp.bursts++

	live.ForEach(func(i int) {
		pkts[i].Retain()
	})

	c.rxBytes += packet.Bytes(pkts, live)

	return nil
}

// LastBurst returns the last burst received on a side. Only slots set in the
// mask are valid.
func (c *Collector) LastBurst(s brick.Side) ([]*packet.Packet, mask.Mask) {
	cp := c.captures[s]
	return cp.pkts, cp.live
}

// LastPackets returns the live packets of the last burst of a side, in slot
// order.
func (c *Collector) LastPackets(s brick.Side) []*packet.Packet {
	cp := c.captures[s]
	out := make([]*packet.Packet, 0, cp.live.Count())

	cp.live.ForEach(func(i int) {
		out = append(out, cp.pkts[i])
	})

	return out
}

// BurstCount returns how many bursts arrived on a side.
func (c *Collector) BurstCount(s brick.Side) int {
	return c.captures[s].bursts
}

// Reset drops the captured bursts.
func (c *Collector) Reset() error {
	c.release()
	c.captures = [2]capture{}
	c.rxBytes = 0

	return nil
}

// Destroy releases the captured packets.
func (c *Collector) Destroy() {
	c.release()
}

func (c *Collector) release() {
	for i := range c.captures {
		packet.ReleaseAll(c.captures[i].pkts, c.captures[i].live)
		c.captures[i].pkts = nil
		c.captures[i].live = 0
	}
}

// RxBytes returns the number of bytes collected.
func (c *Collector) RxBytes() uint64 {
	return c.rxBytes
}

// TxBytes is always zero; a collector sends nothing.
func (c *Collector) TxBytes() uint64 {
	return 0
}

// Of returns the collector behind a brick.
func Of(b *brick.Brick) (*Collector, bool) {
	c, ok := b.Impl().(*Collector)
	return c, ok
}

// New is the factory of the kind.
func New(_ *brick.Brick, cfg brick.Config) (brick.Impl, error) {
	if cfg.Type == brick.Multipole {
		return nil, fmt.Errorf("%w: %s brick %q cannot be a multipole",
			brick.ErrInvalidConfig, Kind, cfg.Name)
	}

	return &Collector{}, nil
}

// MakeConfig returns the construction config of a collector.
func MakeConfig(name string, params any) (brick.Config, error) {
	var p Params
	if err := brick.DecodeParams(params, &p); err != nil {
		return brick.Config{}, err
	}

	cfg := brick.Config{Name: name, Type: brick.Dipole, Params: p}
	if p.Monopole {
		cfg.Type = brick.Monopole
	}

	return cfg, nil
}

// Register adds the kind to a registry.
func Register(r *brick.Registry) error {
	return r.Register(Kind, New)
}

// Builder creates collectors.
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

// WithMonopole builds a single-sided collector.
func (b Builder) WithMonopole() Builder {
	b.params.Monopole = true
	return b
}

// Build creates a collector.
func (b Builder) Build(name string) (*brick.Brick, error) {
	if b.registry == nil {
		panic("collect brick requires a registry")
	}

	cfg, err := MakeConfig(name, b.params)
	if err != nil {
		return nil, err
	}

	return b.registry.New(Kind, cfg)
}
