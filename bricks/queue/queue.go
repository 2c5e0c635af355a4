// Package queue provides the monopole brick used to hand bursts between two
// graphs polled from different goroutines.
//
// A queue stores the bursts it receives and sends them out of its edge when
// polled. Two queues can be made friends: each then stores what it receives
// in the ring of the other one, so a burst entering one graph through a
// queue leaves the other graph through its friend.
package queue

import (
	"fmt"
	"sync/atomic"

	"github.com/sarchlab/packetgraph/brick"
	"github.com/sarchlab/packetgraph/logging"
	"github.com/sarchlab/packetgraph/mask"
	"github.com/sarchlab/packetgraph/packet"
)

// Kind is the registered name of the brick kind.
const Kind = "queue"

// DefaultCapacity is the number of bursts a queue holds when none is
// configured.
const DefaultCapacity = 16

// Params configures a queue.
type Params struct {
	// Capacity is the number of bursts held. It must be a power of two.
	Capacity int `yaml:"capacity"`
}

// Queue is the state of a queue brick.
type Queue struct {
	b      *brick.Brick
	ring   *ring
	friend *Queue

	rxBytes atomic.Uint64
	txBytes atomic.Uint64
}

// Burst compacts the live packets, takes a reference on each and stores
// them in the friend's ring, or in the queue's own ring without a friend.
func (q *Queue) Burst(
	_ brick.Side,
	_ int,
	pkts []*packet.Packet,
	live mask.Mask,
) error {
	e := entry{pkts: make([]*packet.Packet, 0, live.Count())}

	live.ForEach(func(i int) {
		pkts[i].Retain()
		e.pkts = append(e.pkts, pkts[i])
	})

	e.live = mask.FirstN(len(e.pkts))

	target := q.ring
	if q.friend != nil {
		target = q.friend.ring
	}

	target.push(e)
	q.rxBytes.Add(packet.Bytes(e.pkts, e.live))

	return nil
}

// Poll sends the oldest stored burst out of the queue's edge and releases
// it.
func (q *Queue) Poll() (int, error) {
	if q.b.EdgeCount(brick.West) == 0 {
		return 0, fmt.Errorf("%w: queue %q is not linked",
			brick.ErrNoLink, q.b.Name())
	}

	e, ok := q.ring.pop()
	if !ok {
		return 0, nil
	}

	err := brick.Emit(q.b, e.pkts, e.live)

	q.txBytes.Add(packet.Bytes(e.pkts, e.live))
	packet.ReleaseAll(e.pkts, e.live)

	return len(e.pkts), err
}

// Pending returns the number of bursts waiting to be polled.
func (q *Queue) Pending() int {
	return q.ring.len()
}

// Drops returns how many bursts were dropped because the ring was full.
func (q *Queue) Drops() uint64 {
	return q.ring.dropCount()
}

// Reset releases the stored bursts.
func (q *Queue) Reset() error {
	q.ring.clear()
	return nil
}

// Destroy breaks the friendship and releases the stored bursts.
func (q *Queue) Destroy() {
	q.unfriend()
	q.ring.clear()
}

// RxBytes returns the number of bytes received.
func (q *Queue) RxBytes() uint64 {
	return q.rxBytes.Load()
}

// TxBytes returns the number of bytes sent.
func (q *Queue) TxBytes() uint64 {
	return q.txBytes.Load()
}

func (q *Queue) unfriend() {
	if q.friend == nil {
		return
	}

	other := q.friend
	q.friend = nil
	other.friend = nil

	logging.Get(logging.Queue).Debug("queues unfriended",
		"queue", q.b.Name(), "friend", other.b.Name())
}

// Of returns the queue behind a brick.
func Of(b *brick.Brick) (*Queue, bool) {
	if b == nil {
		return nil, false
	}

	q, ok := b.Impl().(*Queue)

	return q, ok
}

// IsQueue reports whether b is a queue brick.
func IsQueue(b *brick.Brick) bool {
	_, ok := Of(b)
	return ok
}

// Friend pairs two queues. Neither may already have a friend.
func Friend(a, b *brick.Brick) error {
	qa, okA := Of(a)
	qb, okB := Of(b)

	if !okA || !okB {
		return fmt.Errorf("%w: only queues can be friends", brick.ErrInvalidArgument)
	}

	if qa == qb {
		return fmt.Errorf("%w: queue %q cannot befriend itself",
			brick.ErrInvalidArgument, a.Name())
	}

	if qa.friend != nil || qb.friend != nil {
		return fmt.Errorf("%w: %q or %q already has a friend",
			brick.ErrInvalidArgument, a.Name(), b.Name())
	}

	qa.friend = qb
	qb.friend = qa

	logging.Get(logging.Queue).Debug("queues friended",
		"queue", a.Name(), "friend", b.Name())

	return nil
}

// Unfriend breaks the friendship of b, if any.
func Unfriend(b *brick.Brick) error {
	q, ok := Of(b)
	if !ok {
		return fmt.Errorf("%w: %q is not a queue", brick.ErrInvalidArgument, b)
	}

	q.unfriend()

	return nil
}

// FriendOf returns the friend of b, or nil.
func FriendOf(b *brick.Brick) *brick.Brick {
	q, ok := Of(b)
	if !ok || q.friend == nil {
		return nil
	}

	return q.friend.b
}

// AreFriends reports whether a and b are friends.
func AreFriends(a, b *brick.Brick) bool {
	return a != nil && b != nil && FriendOf(a) == b
}

// New is the factory of the kind.
func New(b *brick.Brick, cfg brick.Config) (brick.Impl, error) {
	if cfg.Type != brick.Monopole {
		return nil, fmt.Errorf("%w: %s brick %q must be a monopole",
			brick.ErrInvalidConfig, Kind, cfg.Name)
	}

	var p Params
	if err := brick.DecodeParams(cfg.Params, &p); err != nil {
		return nil, err
	}

	if p.Capacity == 0 {
		p.Capacity = DefaultCapacity
	}

	if p.Capacity <= 0 || p.Capacity&(p.Capacity-1) != 0 {
		return nil, fmt.Errorf("%w: queue %q capacity %d is not a power of two",
			brick.ErrInvalidConfig, cfg.Name, p.Capacity)
	}

	return &Queue{b: b, ring: newRing(p.Capacity)}, nil
}

// MakeConfig returns the construction config of a queue.
func MakeConfig(name string, params any) (brick.Config, error) {
	var p Params
	if err := brick.DecodeParams(params, &p); err != nil {
		return brick.Config{}, err
	}

	if p.Capacity == 0 {
		p.Capacity = DefaultCapacity
	}

	return brick.Config{Name: name, Type: brick.Monopole, Params: p}, nil
}

// Register adds the kind to a registry.
func Register(r *brick.Registry) error {
	return r.Register(Kind, New)
}

// Builder creates queues.
type Builder struct {
	registry *brick.Registry
	params   Params
}

// MakeBuilder creates a new Builder.
func MakeBuilder() Builder {
	return Builder{params: Params{Capacity: DefaultCapacity}}
}

// WithRegistry sets the registry the brick is created from.
func (b Builder) WithRegistry(r *brick.Registry) Builder {
	b.registry = r
	return b
}

// WithCapacity sets the number of bursts the queue holds.
func (b Builder) WithCapacity(n int) Builder {
	b.params.Capacity = n
	return b
}

// Build creates a queue.
func (b Builder) Build(name string) (*brick.Brick, error) {
	if b.registry == nil {
		panic("queue brick requires a registry")
	}

	cfg, err := MakeConfig(name, b.params)
	if err != nil {
		return nil, err
	}

	return b.registry.New(Kind, cfg)
}
