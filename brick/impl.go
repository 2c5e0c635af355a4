package brick

import (
	"github.com/sarchlab/packetgraph/mask"
	"github.com/sarchlab/packetgraph/packet"
)

// Factory builds the kind-specific part of a brick. The Brick header is
// already allocated, named and holds one reference. A factory that fails
// after allocating resources may return its partial Impl along with the
// error; if that Impl is a Destroyer it is destroyed.
type Factory func(b *Brick, cfg Config) (Impl, error)

// Impl is the only capability every brick kind must provide.
type Impl interface {
	// Burst receives up to mask.Width packets arriving on side from, through
	// edge index edge of that side. Only slots whose bit is set in live may
	// be read. Packets are borrowed for the duration of the call.
	Burst(from Side, edge int, pkts []*packet.Packet, live mask.Mask) error
}

// Poller is implemented by kinds that originate bursts on their own. Poll
// reports how many packets it produced; zero is not a failure.
type Poller interface {
	Poll() (int, error)
}

// Destroyer releases kind-specific resources once the last reference to the
// brick is dropped.
type Destroyer interface {
	Destroy()
}

// LinkNotifier observes new edges on the brick.
type LinkNotifier interface {
	LinkNotify(side Side, edge int)
}

// UnlinkNotifier observes edges being removed from the brick.
type UnlinkNotifier interface {
	UnlinkNotify(side Side, edge int)
}

// SideGetter reports the outward side of a monopole brick.
type SideGetter interface {
	OutwardSide() Side
}

// ByteCounter exposes byte counters for telemetry.
type ByteCounter interface {
	RxBytes() uint64
	TxBytes() uint64
}

// Resetter clears transient state without altering topology.
type Resetter interface {
	Reset() error
}
