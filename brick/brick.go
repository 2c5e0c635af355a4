// Package brick implements the node of a packet-processing graph: identity,
// cardinality, per-side edges, reference counting, and the burst and poll
// calls that move packets between neighbors.
//
// The engine is synchronous. A burst is a chain of plain calls through the
// graph and nothing here locks; topology must only change while no burst or
// poll runs through the bricks involved.
package brick

import (
	"fmt"

	"github.com/sarchlab/packetgraph/hooking"
	"github.com/sarchlab/packetgraph/logging"
)

// side holds the edges of one side. Monopoles share a single side for both
// directions and remember which logical side they were linked as.
type side struct {
	edges    []Edge
	nb       int
	packets  uint64
	linkedAs Side
}

func newSide(capacity int) *side {
	return &side{edges: make([]Edge, capacity)}
}

func (s *side) full() bool {
	return s.nb >= len(s.edges)
}

func (s *side) freeSlot() int {
	for i, e := range s.edges {
		if !e.Linked() {
			return i
		}
	}

	return -1
}

// Brick is the common header of every node in a graph. The kind-specific
// behavior lives in its Impl.
type Brick struct {
	hooking.HookableBase

	name     string
	kind     string
	typ      Type
	registry *Registry

	impl         Impl
	poller       Poller
	destroyer    Destroyer
	linkNotify   LinkNotifier
	unlinkNotify UnlinkNotifier
	sideGetter   SideGetter
	byteCounter  ByteCounter
	resetter     Resetter
	refcount     int
	destroyed    bool
	sides        [2]*side
}

func newBrick(r *Registry, kind string, cfg Config) *Brick {
	b := &Brick{
		name:     cfg.Name,
		kind:     kind,
		typ:      cfg.Type,
		registry: r,
		refcount: 1,
	}

	switch cfg.Type {
	case Monopole:
		s := newSide(1)
		b.sides[West] = s
		b.sides[East] = s
	case Dipole:
		b.sides[West] = newSide(1)
		b.sides[East] = newSide(1)
	case Multipole:
		b.sides[West] = newSide(cfg.WestMax)
		b.sides[East] = newSide(cfg.EastMax)
	}

	return b
}

func (b *Brick) setImpl(impl Impl) {
	b.impl = impl
	b.poller, _ = impl.(Poller)
	b.destroyer, _ = impl.(Destroyer)
	b.linkNotify, _ = impl.(LinkNotifier)
	b.unlinkNotify, _ = impl.(UnlinkNotifier)
	b.sideGetter, _ = impl.(SideGetter)
	b.byteCounter, _ = impl.(ByteCounter)
	b.resetter, _ = impl.(Resetter)
}

// Name returns the name of the brick.
func (b *Brick) Name() string {
	return b.name
}

func (b *Brick) String() string {
	return b.name
}

// Kind returns the registered kind the brick was created from.
func (b *Brick) Kind() string {
	return b.kind
}

// Type returns the cardinality class.
func (b *Brick) Type() Type {
	return b.typ
}

// Impl returns the kind-specific implementation.
func (b *Brick) Impl() Impl {
	return b.impl
}

// Registry returns the registry the brick was created from.
func (b *Brick) Registry() *Registry {
	return b.registry
}

// Refcount returns the number of references held on the brick.
func (b *Brick) Refcount() int {
	return b.refcount
}

// Destroyed reports whether the last reference has been dropped.
func (b *Brick) Destroyed() bool {
	return b.destroyed
}

// Pollable reports whether the brick originates bursts when polled.
func (b *Brick) Pollable() bool {
	return b.poller != nil
}

// OutwardSide reports, for monopoles, the logical side the single edge was
// linked as. Kinds can override it. Other classes report East.
func (b *Brick) OutwardSide() Side {
	if b.sideGetter != nil {
		return b.sideGetter.OutwardSide()
	}

	if b.typ != Monopole {
		return East
	}

	s := b.sides[West]
	if s.nb == 0 {
		return West
	}

	return s.linkedAs
}

// Incref takes a reference on the brick.
func (b *Brick) Incref() {
	b.refcount++
}

// Decref drops a reference. When the count reaches zero the kind is
// destroyed, the name is released and nil is returned; otherwise b is
// returned. Releasing a nil brick is an error.
func Decref(b *Brick) (*Brick, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: decref of a nil brick", ErrInvalidArgument)
	}

	if b.destroyed {
		return nil, fmt.Errorf("%w: brick %q is already destroyed",
			ErrInvalidArgument, b.name)
	}

	b.refcount--
	if b.refcount > 0 {
		return b, nil
	}

	b.destroy()

	return nil, nil
}

func (b *Brick) destroy() {
	if b.destroyer != nil {
		b.destroyer.Destroy()
	}

	b.destroyed = true
	b.registry.releaseName(b)

	b.invoke(HookPosDestroy, b)

	logging.Get(logging.Brick).Debug("brick destroyed", "brick", b.name)
}

// Reset clears transient kind state. Kinds without such state do nothing.
func (b *Brick) Reset() error {
	if b.destroyed {
		return fmt.Errorf("%w: brick %q is destroyed", ErrInvalidArgument, b.name)
	}

	if b.resetter == nil {
		return nil
	}

	return b.resetter.Reset()
}

// PacketsCount returns how many packets arrived on a side.
func (b *Brick) PacketsCount(s Side) uint64 {
	return b.sides[s].packets
}

// RxBytes returns the received-bytes counter of the kind, or 0.
func (b *Brick) RxBytes() uint64 {
	if b.byteCounter == nil {
		return 0
	}

	return b.byteCounter.RxBytes()
}

// TxBytes returns the transmitted-bytes counter of the kind, or 0.
func (b *Brick) TxBytes() uint64 {
	if b.byteCounter == nil {
		return 0
	}

	return b.byteCounter.TxBytes()
}

// MaxEdges returns the capacity of a side.
func (b *Brick) MaxEdges(s Side) int {
	return len(b.sides[s].edges)
}

// EdgeCount returns the number of occupied slots of a side.
func (b *Brick) EdgeCount(s Side) int {
	return b.sides[s].nb
}

// Edge returns slot i of a side.
func (b *Brick) Edge(s Side, i int) (Edge, bool) {
	edges := b.sides[s].edges
	if i < 0 || i >= len(edges) || !edges[i].Linked() {
		return Edge{}, false
	}

	return edges[i], true
}

// Edges returns a copy of the slots of a side, occupied or not.
func (b *Brick) Edges(s Side) []Edge {
	edges := make([]Edge, len(b.sides[s].edges))
	copy(edges, b.sides[s].edges)

	return edges
}

// Neighbors lists every distinct brick linked to b, in slot order, west
// side first.
func (b *Brick) Neighbors() []*Brick {
	seen := make(map[*Brick]bool)
	out := make([]*Brick, 0)

	for _, s := range b.logicalSides() {
		for _, e := range b.sides[s].edges {
			if e.Linked() && !seen[e.Link] {
				seen[e.Link] = true
				out = append(out, e.Link)
			}
		}
	}

	return out
}

// logicalSides lists the sides that hold distinct storage.
func (b *Brick) logicalSides() []Side {
	if b.typ == Monopole {
		return []Side{West}
	}

	return []Side{West, East}
}
