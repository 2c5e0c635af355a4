package nop

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/packetgraph/brick"
	"github.com/sarchlab/packetgraph/bricks/collect"
	"github.com/sarchlab/packetgraph/packet"
)

var _ = Describe("Nop", func() {
	var r *brick.Registry

	BeforeEach(func() {
		r = brick.NewRegistry()
		Expect(Register(r)).To(Succeed())
		Expect(collect.Register(r)).To(Succeed())
	})

	It("should forward in both directions", func() {
		west, err := collect.MakeBuilder().WithRegistry(r).Build("west")
		Expect(err).ToNot(HaveOccurred())
		east, err := collect.MakeBuilder().WithRegistry(r).Build("east")
		Expect(err).ToNot(HaveOccurred())
		n, err := MakeBuilder().WithRegistry(r).Build("nop")
		Expect(err).ToNot(HaveOccurred())

		Expect(brick.ChainedLinks(west, n, east)).To(Succeed())

		pkts, live := packet.FromBytes([]byte{1}, []byte{2})
		Expect(brick.BurstToEast(n, pkts, live)).To(Succeed())
		Expect(brick.BurstToWest(n, pkts[:1], live.Clear(1))).To(Succeed())

		ec, _ := collect.Of(east)
		wc, _ := collect.Of(west)
		Expect(ec.LastPackets(brick.West)).To(Equal(pkts))
		Expect(wc.LastPackets(brick.East)).To(Equal(pkts[:1]))
	})

	It("should fail without a neighbor", func() {
		n, err := MakeBuilder().WithRegistry(r).Build("nop")
		Expect(err).ToNot(HaveOccurred())

		pkts, live := packet.FromBytes([]byte{1})
		Expect(brick.BurstToEast(n, pkts, live)).To(MatchError(brick.ErrNoLink))
	})

	It("should only be a dipole", func() {
		_, err := r.New(Kind, brick.Config{Name: "n", Type: brick.Monopole})

		Expect(err).To(MatchError(brick.ErrInvalidConfig))
	})

	It("should panic without a registry", func() {
		Expect(func() { _, _ = MakeBuilder().Build("n") }).To(Panic())
	})
})
