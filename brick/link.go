package brick

import (
	"fmt"

	"github.com/sarchlab/packetgraph/logging"
)

// Link connects the east side of west to the west side of east. Both bricks
// gain one reference. When the second half cannot be registered the first
// half is rolled back and the topology is left unchanged.
//
// Parallel edges between the same pair are allowed; each one counts against
// the side capacities and the reference counts.
func Link(west, east *Brick) error {
	if err := linkMustBeValid(west, east); err != nil {
		return err
	}

	i, err := west.reserve(East, east)
	if err != nil {
		return err
	}

	j, err := east.reserve(West, west)
	if err != nil {
		west.release(East, i)
		return err
	}

	west.sides[East].edges[i].PairIndex = j
	east.sides[West].edges[j].PairIndex = i

	west.notifyLink(East, i, east)
	east.notifyLink(West, j, west)

	west.Incref()
	east.Incref()

	logging.Get(logging.Brick).Debug("bricks linked",
		"west", west.name, "west_edge", i, "east", east.name, "east_edge", j)

	return nil
}

// LinkWest attaches neighbor to the west side of b.
func LinkWest(b, neighbor *Brick) error {
	return Link(neighbor, b)
}

// LinkEast attaches neighbor to the east side of b.
func LinkEast(b, neighbor *Brick) error {
	return Link(b, neighbor)
}

// ChainedLinks links each brick to the next one, from west to east. It stops
// at the first failure; the links made before it stay in place.
func ChainedLinks(bricks ...*Brick) error {
	for i := 0; i+1 < len(bricks); i++ {
		if err := Link(bricks[i], bricks[i+1]); err != nil {
			return err
		}
	}

	return nil
}

func linkMustBeValid(west, east *Brick) error {
	if west == nil || east == nil {
		return fmt.Errorf("%w: cannot link a nil brick", ErrInvalidArgument)
	}

	if west == east {
		return fmt.Errorf("%w: brick %q cannot be linked to itself",
			ErrInvalidArgument, west.name)
	}

	for _, b := range []*Brick{west, east} {
		if b.destroyed {
			return fmt.Errorf("%w: brick %q is destroyed",
				ErrInvalidArgument, b.name)
		}
	}

	return nil
}

// reserve claims a free slot on side s pointing at peer. The pair index is
// filled in by the caller once the peer's slot is known.
func (b *Brick) reserve(s Side, peer *Brick) (int, error) {
	sd := b.sides[s]
	if sd.full() {
		return -1, fmt.Errorf("%w: %s side of %q holds %d of %d edges",
			ErrEdgeLimitExceeded, s, b.name, sd.nb, len(sd.edges))
	}

	slot := sd.freeSlot()
	sd.edges[slot] = Edge{Link: peer, PairIndex: -1}
	sd.nb++

	if b.typ == Monopole {
		sd.linkedAs = s
	}

	return slot, nil
}

func (b *Brick) release(s Side, slot int) {
	sd := b.sides[s]
	sd.edges[slot] = Edge{}
	sd.nb--
}

func (b *Brick) notifyLink(s Side, slot int, peer *Brick) {
	if b.linkNotify != nil {
		b.linkNotify.LinkNotify(s, slot)
	}

	b.invoke(HookPosLink, LinkInfo{Side: s, Edge: slot, Peer: peer})
}

func (b *Brick) notifyUnlink(s Side, slot int, peer *Brick) {
	if b.unlinkNotify != nil {
		b.unlinkNotify.UnlinkNotify(s, slot)
	}

	b.invoke(HookPosUnlink, LinkInfo{Side: s, Edge: slot, Peer: peer})
}

// physicalSide maps a logical side to the side that holds the edge. For a
// linked monopole that is the side it was linked as.
func (b *Brick) physicalSide(s Side) Side {
	if b.typ == Monopole && b.sides[West].nb > 0 {
		return b.sides[West].linkedAs
	}

	return s
}

// Unlink removes every edge of b. Each peer is notified with the side and
// index it sees, both slots are cleared and both ends drop the reference the
// link held. b itself is kept alive until all of its edges are gone.
func Unlink(b *Brick) error {
	if b == nil {
		return fmt.Errorf("%w: cannot unlink a nil brick", ErrInvalidArgument)
	}

	if b.destroyed {
		return fmt.Errorf("%w: brick %q is destroyed", ErrInvalidArgument, b.name)
	}

	b.Incref()

	var firstErr error

	for _, s := range b.logicalSides() {
		ps := b.physicalSide(s)
		for i := range b.sides[ps].edges {
			if !b.sides[ps].edges[i].Linked() {
				continue
			}

			if err := b.cut(ps, i); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}

	if _, err := Decref(b); err != nil && firstErr == nil {
		firstErr = err
	}

	return firstErr
}

// UnlinkEdge removes a single edge between a and b, looking at the east side
// of a first. It fails with ErrNoLink when the bricks are not adjacent.
func UnlinkEdge(a, b *Brick) error {
	if a == nil || b == nil {
		return fmt.Errorf("%w: cannot unlink a nil brick", ErrInvalidArgument)
	}

	for _, s := range []Side{East, West} {
		ps := a.physicalSide(s)
		for i, e := range a.sides[ps].edges {
			if e.Link == b {
				return a.cut(ps, i)
			}
		}

		if a.typ == Monopole {
			break
		}
	}

	return fmt.Errorf("%w: %q and %q are not linked", ErrNoLink, a.name, b.name)
}

// cut removes edge i of side s and the matching edge of the peer.
func (b *Brick) cut(s Side, i int) error {
	e := b.sides[s].edges[i]
	peer, j := e.Link, e.PairIndex
	ps := s.Opposite()

	peer.notifyUnlink(ps, j, b)
	b.notifyUnlink(s, i, peer)

	peer.release(ps, j)
	b.release(s, i)

	logging.Get(logging.Brick).Debug("bricks unlinked",
		"brick", b.name, "side", s.String(), "edge", i,
		"peer", peer.name, "peer_edge", j)

	_, errPeer := Decref(peer)
	_, errSelf := Decref(b)

	if errPeer != nil {
		return errPeer
	}

	return errSelf
}

// LinksCount returns how many edges of a point at b.
func LinksCount(a, b *Brick) int {
	if a == nil || b == nil {
		return 0
	}

	n := 0

	for _, s := range a.logicalSides() {
		for _, e := range a.sides[a.physicalSide(s)].edges {
			if e.Link == b {
				n++
			}
		}
	}

	return n
}
