package queue

import (
	"sync"

	"github.com/sarchlab/packetgraph/mask"
	"github.com/sarchlab/packetgraph/packet"
)

// entry is a compacted burst: the packets occupy the first slots and the
// mask covers exactly them.
type entry struct {
	pkts []*packet.Packet
	live mask.Mask
}

// ring is a bounded FIFO of bursts shared by one producer and one consumer
// goroutine. When full, the oldest burst is released to make room.
type ring struct {
	lock  sync.Mutex
	head  uint64
	tail  uint64
	mask  uint64
	buf   []entry
	drops uint64
}

func newRing(size int) *ring {
	if size <= 0 || size&(size-1) != 0 {
		panic("queue: ring size must be >0 and a power of two")
	}

	return &ring{
		mask: uint64(size - 1),
		buf:  make([]entry, size),
	}
}

// push enqueues e and reports whether an older burst was dropped for it.
func (r *ring) push(e entry) bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	dropped := false
	if r.tail-r.head == uint64(len(r.buf)) {
		old := &r.buf[r.head&r.mask]
		packet.ReleaseAll(old.pkts, old.live)
		*old = entry{}
		r.head++
		r.drops++
		dropped = true
	}

	r.buf[r.tail&r.mask] = e
	r.tail++

	return dropped
}

func (r *ring) pop() (entry, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.head == r.tail {
		return entry{}, false
	}

	s := &r.buf[r.head&r.mask]
	e := *s
	*s = entry{}
	r.head++

	return e, true
}

func (r *ring) len() int {
	r.lock.Lock()
	defer r.lock.Unlock()

	return int(r.tail - r.head)
}

func (r *ring) dropCount() uint64 {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.drops
}

// clear releases every pending burst.
func (r *ring) clear() {
	r.lock.Lock()
	defer r.lock.Unlock()

	for ; r.head != r.tail; r.head++ {
		s := &r.buf[r.head&r.mask]
		packet.ReleaseAll(s.pkts, s.live)
		*s = entry{}
	}

	r.drops = 0
}
