// Package generator provides a pollable monopole brick that sends UDP frames
// out of its edge each time it is polled.
package generator

import (
	"fmt"
	"net"

	"github.com/sarchlab/packetgraph/brick"
	"github.com/sarchlab/packetgraph/logging"
	"github.com/sarchlab/packetgraph/mask"
	"github.com/sarchlab/packetgraph/packet"
)

// Kind is the registered name of the brick kind.
const Kind = "generator"

// Params describes the frames to generate. Empty addresses keep the
// defaults of packet.MakeUDPBuilder.
type Params struct {
	Packets     int    `yaml:"packets"`
	PayloadSize int    `yaml:"payload_size"`
	SrcMAC      string `yaml:"src_mac"`
	DstMAC      string `yaml:"dst_mac"`
	SrcIP       string `yaml:"src_ip"`
	DstIP       string `yaml:"dst_ip"`
	SrcPort     uint16 `yaml:"src_port"`
	DstPort     uint16 `yaml:"dst_port"`
}

// Generator is the state of a generator brick.
type Generator struct {
	b       *brick.Brick
	frame   []byte
	count   int
	rxBytes uint64
	txBytes uint64
}

// Burst drops whatever comes back into the generator.
func (g *Generator) Burst(
	_ brick.Side,
	_ int,
	pkts []*packet.Packet,
	live mask.Mask,
) error {
	g.rxBytes += packet.Bytes(pkts, live)
	return nil
}

// Poll sends one burst of generated frames.
func (g *Generator) Poll() (int, error) {
	pkts := make([]*packet.Packet, g.count)
	for i := range pkts {
		pkts[i] = packet.New(g.frame)
	}

	live := mask.FirstN(g.count)
	err := brick.Emit(g.b, pkts, live)

	packet.ReleaseAll(pkts, live)

	if err != nil {
		return 0, err
	}

	g.txBytes += uint64(g.count * len(g.frame))

	return g.count, nil
}

// Frame returns the frame the generator sends.
func (g *Generator) Frame() []byte {
	return g.frame
}

// RxBytes returns the number of bytes received.
func (g *Generator) RxBytes() uint64 {
	return g.rxBytes
}

// TxBytes returns the number of bytes sent.
func (g *Generator) TxBytes() uint64 {
	return g.txBytes
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

	if p.Packets == 0 {
		p.Packets = 1
	}

	if p.Packets < 0 || p.Packets > mask.Width {
		return nil, fmt.Errorf("%w: generator %q sends 1..%d packets per burst, got %d",
			brick.ErrInvalidConfig, cfg.Name, mask.Width, p.Packets)
	}

	builder, err := udpBuilder(p)
	if err != nil {
		return nil, fmt.Errorf("%w: generator %q: %v",
			brick.ErrInvalidConfig, cfg.Name, err)
	}

	frame, err := builder.Frame()
	if err != nil {
		return nil, err
	}

	logging.Get(logging.Generator).Debug("generator ready",
		"brick", cfg.Name, "packets", p.Packets, "frame_len", len(frame))

	return &Generator{b: b, frame: frame, count: p.Packets}, nil
}

func udpBuilder(p Params) (packet.UDPBuilder, error) {
	builder := packet.MakeUDPBuilder()

	if p.SrcMAC != "" || p.DstMAC != "" {
		src, err := parseMAC(p.SrcMAC, "02:00:00:00:00:01")
		if err != nil {
			return builder, err
		}

		dst, err := parseMAC(p.DstMAC, "02:00:00:00:00:02")
		if err != nil {
			return builder, err
		}

		builder = builder.WithMACs(src, dst)
	}

	if p.SrcIP != "" || p.DstIP != "" {
		src, err := parseIP(p.SrcIP, "10.0.0.1")
		if err != nil {
			return builder, err
		}

		dst, err := parseIP(p.DstIP, "10.0.0.2")
		if err != nil {
			return builder, err
		}

		builder = builder.WithIPs(src, dst)
	}

	if p.SrcPort != 0 || p.DstPort != 0 {
		src, dst := p.SrcPort, p.DstPort
		if src == 0 {
			src = 1234
		}

		if dst == 0 {
			dst = 4321
		}

		builder = builder.WithPorts(src, dst)
	}

	if p.PayloadSize > 0 {
		builder = builder.WithPayload(make([]byte, p.PayloadSize))
	}

	return builder, nil
}

func parseMAC(s, fallback string) (net.HardwareAddr, error) {
	if s == "" {
		s = fallback
	}

	return net.ParseMAC(s)
}

func parseIP(s, fallback string) (net.IP, error) {
	if s == "" {
		s = fallback
	}

	ip := net.ParseIP(s).To4()
	if ip == nil {
		return nil, fmt.Errorf("%q is not an IPv4 address", s)
	}

	return ip, nil
}

// Of returns the generator behind a brick.
func Of(b *brick.Brick) (*Generator, bool) {
	g, ok := b.Impl().(*Generator)
	return g, ok
}

// MakeConfig returns the construction config of a generator.
func MakeConfig(name string, params any) (brick.Config, error) {
	var p Params
	if err := brick.DecodeParams(params, &p); err != nil {
		return brick.Config{}, err
	}

	return brick.Config{Name: name, Type: brick.Monopole, Params: p}, nil
}

// Register adds the kind to a registry.
func Register(r *brick.Registry) error {
	return r.Register(Kind, New)
}

// Builder creates generators.
type Builder struct {
	registry *brick.Registry
	params   Params
}

// MakeBuilder creates a new Builder.
func MakeBuilder() Builder {
	return Builder{params: Params{Packets: 1}}
}

// WithRegistry sets the registry the brick is created from.
func (b Builder) WithRegistry(r *brick.Registry) Builder {
	b.registry = r
	return b
}

// WithPackets sets the number of frames per burst.
func (b Builder) WithPackets(n int) Builder {
	b.params.Packets = n
	return b
}

// WithIPs sets the source and destination addresses of the frames.
func (b Builder) WithIPs(src, dst string) Builder {
	b.params.SrcIP = src
	b.params.DstIP = dst

	return b
}

// WithPorts sets the UDP ports of the frames.
func (b Builder) WithPorts(src, dst uint16) Builder {
	b.params.SrcPort = src
	b.params.DstPort = dst

	return b
}

// WithPayloadSize sets the UDP payload length.
func (b Builder) WithPayloadSize(n int) Builder {
	b.params.PayloadSize = n
	return b
}

// Build creates a generator.
func (b Builder) Build(name string) (*brick.Brick, error) {
	if b.registry == nil {
		panic("generator brick requires a registry")
	}

	cfg, err := MakeConfig(name, b.params)
	if err != nil {
		return nil, err
	}

	return b.registry.New(Kind, cfg)
}
