package generator

import (
	"github.com/google/gopacket/layers"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/packetgraph/brick"
	"github.com/sarchlab/packetgraph/bricks/collect"
)

var _ = Describe("Generator", func() {
	var r *brick.Registry

	BeforeEach(func() {
		r = brick.NewRegistry()
		Expect(Register(r)).To(Succeed())
		Expect(collect.Register(r)).To(Succeed())
	})

	It("should send UDP frames when polled", func() {
		gb, err := MakeBuilder().
			WithRegistry(r).
			WithPackets(3).
			WithIPs("192.168.1.1", "192.168.1.2").
			WithPorts(53, 5353).
			WithPayloadSize(10).
			Build("gen")
		Expect(err).ToNot(HaveOccurred())

		cb, err := collect.MakeBuilder().WithRegistry(r).Build("out")
		Expect(err).ToNot(HaveOccurred())
		Expect(brick.Link(gb, cb)).To(Succeed())

		Expect(gb.Pollable()).To(BeTrue())

		n, err := gb.Poll()
		Expect(err).ToNot(HaveOccurred())
		Expect(n).To(Equal(3))

		c, _ := collect.Of(cb)
		got := c.LastPackets(brick.West)
		Expect(got).To(HaveLen(3))

		decoded := got[0].Decode()
		udp, ok := decoded.Layer(layers.LayerTypeUDP).(*layers.UDP)
		Expect(ok).To(BeTrue())
		Expect(udp.SrcPort).To(Equal(layers.UDPPort(53)))
		Expect(udp.DstPort).To(Equal(layers.UDPPort(5353)))
		Expect(udp.Payload).To(HaveLen(10))

		ip, ok := decoded.Layer(layers.LayerTypeIPv4).(*layers.IPv4)
		Expect(ok).To(BeTrue())
		Expect(ip.SrcIP.String()).To(Equal("192.168.1.1"))

		g, _ := Of(gb)
		Expect(g.TxBytes()).To(Equal(uint64(3 * len(g.Frame()))))
	})

	It("should fail to poll while unlinked", func() {
		gb, err := MakeBuilder().WithRegistry(r).Build("gen")
		Expect(err).ToNot(HaveOccurred())

		_, err = gb.Poll()
		Expect(err).To(MatchError(brick.ErrNoLink))
	})

	It("should decode generic params", func() {
		cfg, err := MakeConfig("gen", map[string]any{
			"packets": 4, "src_ip": "10.1.1.1", "dst_port": 80,
		})
		Expect(err).ToNot(HaveOccurred())

		gb, err := r.New(Kind, cfg)
		Expect(err).ToNot(HaveOccurred())

		g, _ := Of(gb)
		Expect(g.count).To(Equal(4))
	})

	It("should reject bad addresses and burst sizes", func() {
		_, err := MakeBuilder().WithRegistry(r).WithIPs("nope", "").Build("g1")
		Expect(err).To(MatchError(brick.ErrInvalidConfig))

		_, err = MakeBuilder().WithRegistry(r).WithPackets(65).Build("g2")
		Expect(err).To(MatchError(brick.ErrInvalidConfig))
	})
})
