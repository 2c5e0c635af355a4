package brick

import (
	"fmt"

	"github.com/sarchlab/packetgraph/mask"
	"github.com/sarchlab/packetgraph/packet"
)

// Burst delivers packets to b as if they arrived on side from through edge
// index edge of that side. Only slots set in m are live; the packets stay
// owned by the caller.
//
// The call runs the whole downstream chain synchronously. A non-nil error
// means some packets may not have reached their destination; edges served
// before the failing one keep what they received.
func (b *Brick) Burst(
	from Side,
	edge int,
	pkts []*packet.Packet,
	m mask.Mask,
) error {
	if !m.FitsIn(len(pkts)) {
		return fmt.Errorf("%w: mask %#x addresses beyond %d packets",
			ErrInvalidArgument, uint64(m), len(pkts))
	}

	if from > East {
		return fmt.Errorf("%w: unknown side %d", ErrInvalidArgument, from)
	}

	if b.destroyed {
		return fmt.Errorf("%w: burst to destroyed brick %q",
			ErrInvalidArgument, b.name)
	}

	b.sides[from].packets += uint64(m.Count())

	b.invoke(HookPosBurst, BurstInfo{
		From:    from,
		Edge:    edge,
		Packets: pkts,
		Mask:    m,
	})

	return b.impl.Burst(from, edge, pkts, m)
}

// BurstToEast injects a burst that travels east, arriving on the west side
// through edge 0.
func BurstToEast(b *Brick, pkts []*packet.Packet, m mask.Mask) error {
	return b.Burst(West, 0, pkts, m)
}

// BurstToWest injects a burst that travels west, arriving on the east side
// through edge 0.
func BurstToWest(b *Brick, pkts []*packet.Packet, m mask.Mask) error {
	return b.Burst(East, 0, pkts, m)
}

// SideForward passes a burst that arrived on side from to the single
// neighbor on the opposite side.
func SideForward(b *Brick, from Side, pkts []*packet.Packet, m mask.Mask) error {
	return b.forward(from.Opposite(), 0, pkts, m)
}

// Emit sends a burst out of the single edge of a monopole brick.
func Emit(b *Brick, pkts []*packet.Packet, m mask.Mask) error {
	return b.forward(b.OutwardSide(), 0, pkts, m)
}

// ForwardAll sends the burst through every edge of side s, in slot order. It
// stops at the first failure.
func ForwardAll(b *Brick, s Side, pkts []*packet.Packet, m mask.Mask) error {
	return ForwardAllExcept(b, s, -1, pkts, m)
}

// ForwardAllExcept is ForwardAll skipping edge index skip.
func ForwardAllExcept(
	b *Brick,
	s Side,
	skip int,
	pkts []*packet.Packet,
	m mask.Mask,
) error {
	ps := b.physicalSide(s)

	for i, e := range b.sides[ps].edges {
		if i == skip || !e.Linked() {
			continue
		}

		if err := e.Link.Burst(ps.Opposite(), e.PairIndex, pkts, m); err != nil {
			return err
		}
	}

	return nil
}

func (b *Brick) forward(
	out Side,
	edge int,
	pkts []*packet.Packet,
	m mask.Mask,
) error {
	ps := b.physicalSide(out)

	e, ok := b.Edge(ps, edge)
	if !ok {
		return fmt.Errorf("%w: %s edge %d of %q is empty",
			ErrNoLink, out, edge, b.name)
	}

	return e.Link.Burst(ps.Opposite(), e.PairIndex, pkts, m)
}
