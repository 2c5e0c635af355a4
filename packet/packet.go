// Package packet defines the packet reference carried by bursts.
//
// Buffer allocation is not handled here. A Packet only wraps a frame and an
// external reference count so that a brick can keep a packet beyond the burst
// call that lent it.
package packet

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/sarchlab/packetgraph/mask"
)

// Packet is a reference to one frame.
type Packet struct {
	data []byte
	refs atomic.Int32
}

// New wraps data into a packet holding one reference.
func New(data []byte) *Packet {
	p := &Packet{data: data}
	p.refs.Store(1)

	return p
}

// Data returns the raw frame.
func (p *Packet) Data() []byte {
	return p.data
}

// Len returns the frame length in bytes.
func (p *Packet) Len() int {
	return len(p.data)
}

// Retain takes an extra reference on the packet.
func (p *Packet) Retain() {
	p.refs.Add(1)
}

// Release drops a reference and reports whether it was the last one. The
// frame is detached once no reference is left.
func (p *Packet) Release() bool {
	n := p.refs.Add(-1)
	if n < 0 {
		panic("packet released more times than retained")
	}

	if n == 0 {
		p.data = nil
		return true
	}

	return false
}

// Refs returns the current reference count.
func (p *Packet) Refs() int32 {
	return p.refs.Load()
}

// Decode lazily decodes the frame starting from its Ethernet header.
func (p *Packet) Decode() gopacket.Packet {
	return gopacket.NewPacket(p.data, layers.LayerTypeEthernet,
		gopacket.DecodeOptions{Lazy: true, NoCopy: true})
}

// Summary describes the packet on one line.
func (p *Packet) Summary() string {
	decoded := p.Decode()

	parts := make([]string, 0, 4)

	if l := decoded.Layer(layers.LayerTypeEthernet); l != nil {
		eth := l.(*layers.Ethernet)
		parts = append(parts,
			fmt.Sprintf("eth %s>%s", eth.SrcMAC, eth.DstMAC))
	}

	if l := decoded.Layer(layers.LayerTypeIPv4); l != nil {
		ip := l.(*layers.IPv4)
		parts = append(parts, fmt.Sprintf("ipv4 %s>%s", ip.SrcIP, ip.DstIP))
	} else if l := decoded.Layer(layers.LayerTypeIPv6); l != nil {
		ip := l.(*layers.IPv6)
		parts = append(parts, fmt.Sprintf("ipv6 %s>%s", ip.SrcIP, ip.DstIP))
	}

	if l := decoded.Layer(layers.LayerTypeUDP); l != nil {
		udp := l.(*layers.UDP)
		parts = append(parts, fmt.Sprintf("udp %d>%d", udp.SrcPort, udp.DstPort))
	} else if l := decoded.Layer(layers.LayerTypeTCP); l != nil {
		tcp := l.(*layers.TCP)
		parts = append(parts, fmt.Sprintf("tcp %d>%d", tcp.SrcPort, tcp.DstPort))
	}

	parts = append(parts, fmt.Sprintf("len %d", p.Len()))

	return strings.Join(parts, " ")
}

// FromBytes wraps each frame into a packet and returns the burst slice with
// the matching mask. At most mask.Width frames are used.
func FromBytes(frames ...[]byte) ([]*Packet, mask.Mask) {
	if len(frames) > mask.Width {
		frames = frames[:mask.Width]
	}

	pkts := make([]*Packet, len(frames))
	for i, f := range frames {
		pkts[i] = New(f)
	}

	return pkts, mask.FirstN(len(pkts))
}

// Bytes sums the length of the live packets of a burst.
func Bytes(pkts []*Packet, m mask.Mask) uint64 {
	var total uint64

	m.ForEach(func(i int) {
		total += uint64(pkts[i].Len())
	})

	return total
}

// ReleaseAll releases every live packet of a burst.
func ReleaseAll(pkts []*Packet, m mask.Mask) {
	m.ForEach(func(i int) {
		pkts[i].Release()
	})
}
