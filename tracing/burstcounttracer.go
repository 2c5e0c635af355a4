package tracing

import (
	"sync"

	"github.com/sarchlab/packetgraph/brick"
)

type brickCount struct {
	bursts        uint64
	packets       uint64
	polls         uint64
	polledPackets uint64
	pollErrors    uint64
}

// BurstCountTracer counts the bursts and packets each brick receives and
// what its polls produce.
type BurstCountTracer struct {
	filter BurstFilter
	lock   sync.Mutex
	names  []string
	counts map[string]*brickCount
}

// NewBurstCountTracer creates a new BurstCountTracer. A nil filter counts
// every burst.
func NewBurstCountTracer(filter BurstFilter) *BurstCountTracer {
	if filter == nil {
		filter = AllBursts
	}

	return &BurstCountTracer{
		filter: filter,
		counts: make(map[string]*brickCount),
	}
}

func (t *BurstCountTracer) entry(name string) *brickCount {
	c, ok := t.counts[name]
	if !ok {
		c = &brickCount{}
		t.counts[name] = c
		t.names = append(t.names, name)
	}

	return c
}

// TraceBurst counts a burst.
func (t *BurstCountTracer) TraceBurst(b *brick.Brick, info brick.BurstInfo) {
	if !t.filter(b, info) {
		return
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	c := t.entry(b.Name())
	c.bursts++
	c.packets += uint64(info.Mask.Count())
}

// TracePoll counts a poll.
func (t *BurstCountTracer) TracePoll(b *brick.Brick, info brick.PollInfo) {
	t.lock.Lock()
	defer t.lock.Unlock()

	c := t.entry(b.Name())
	c.polls++

	if info.Err != nil {
		c.pollErrors++
		return
	}

	c.polledPackets += uint64(info.Count)
}

// BrickNames returns the bricks seen so far, in order of first sight.
func (t *BurstCountTracer) BrickNames() []string {
	t.lock.Lock()
	defer t.lock.Unlock()

	names := make([]string, len(t.names))
	copy(names, t.names)

	return names
}

// BurstCount returns the number of bursts a brick received.
func (t *BurstCountTracer) BurstCount(name string) uint64 {
	return t.read(name, func(c *brickCount) uint64 { return c.bursts })
}

// PacketCount returns the number of live packets a brick received.
func (t *BurstCountTracer) PacketCount(name string) uint64 {
	return t.read(name, func(c *brickCount) uint64 { return c.packets })
}

// PollCount returns the number of times a brick was polled.
func (t *BurstCountTracer) PollCount(name string) uint64 {
	return t.read(name, func(c *brickCount) uint64 { return c.polls })
}

// PolledPackets returns the number of packets the polls of a brick produced.
func (t *BurstCountTracer) PolledPackets(name string) uint64 {
	return t.read(name, func(c *brickCount) uint64 { return c.polledPackets })
}

// PollErrors returns the number of failed polls of a brick.
func (t *BurstCountTracer) PollErrors(name string) uint64 {
	return t.read(name, func(c *brickCount) uint64 { return c.pollErrors })
}

func (t *BurstCountTracer) read(name string, f func(*brickCount) uint64) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	c, ok := t.counts[name]
	if !ok {
		return 0
	}

	return f(c)
}

// Reset forgets every count.
func (t *BurstCountTracer) Reset() {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.names = nil
	t.counts = make(map[string]*brickCount)
}
