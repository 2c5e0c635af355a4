package printer

import (
	"bytes"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/packetgraph/brick"
	"github.com/sarchlab/packetgraph/bricks/collect"
	"github.com/sarchlab/packetgraph/logging"
	"github.com/sarchlab/packetgraph/packet"
)

var _ = Describe("Printer", func() {
	var (
		r   *brick.Registry
		out *bytes.Buffer
	)

	BeforeEach(func() {
		out = new(bytes.Buffer)
		logging.Configure("text", logging.LevelInfo, nil)
		logging.SetOutput(out)

		r = brick.NewRegistry()
		Expect(Register(r)).To(Succeed())
		Expect(collect.Register(r)).To(Succeed())
	})

	AfterEach(func() {
		logging.SetOutput(os.Stderr)
	})

	It("should log a summary and forward", func() {
		pb, err := MakeBuilder().WithRegistry(r).Build("print")
		Expect(err).ToNot(HaveOccurred())
		cb, err := collect.MakeBuilder().WithRegistry(r).Build("out")
		Expect(err).ToNot(HaveOccurred())
		Expect(brick.Link(pb, cb)).To(Succeed())

		p, err := packet.MakeUDPBuilder().WithPorts(53, 53).Packet()
		Expect(err).ToNot(HaveOccurred())

		Expect(brick.BurstToEast(pb, []*packet.Packet{p}, 1)).To(Succeed())

		Expect(out.String()).To(ContainSubstring("[print]"))
		Expect(out.String()).To(ContainSubstring("udp 53>53"))
		Expect(out.String()).To(ContainSubstring("brick=print"))

		c, _ := collect.Of(cb)
		Expect(c.LastPackets(brick.West)).To(Equal([]*packet.Packet{p}))
		Expect(pb.RxBytes()).To(Equal(uint64(p.Len())))
	})

	It("should stay quiet below the component level", func() {
		pb, err := MakeBuilder().WithRegistry(r).WithLevel("debug").Build("print")
		Expect(err).ToNot(HaveOccurred())
		cb, err := collect.MakeBuilder().WithRegistry(r).Build("out")
		Expect(err).ToNot(HaveOccurred())
		Expect(brick.Link(pb, cb)).To(Succeed())

		pkts, live := packet.FromBytes([]byte{1, 2, 3})
		Expect(brick.BurstToEast(pb, pkts, live)).To(Succeed())

		Expect(out.String()).To(BeEmpty())
	})

	It("should reject unknown levels", func() {
		_, err := MakeBuilder().WithRegistry(r).WithLevel("loud").Build("print")

		Expect(err).To(MatchError(brick.ErrInvalidConfig))
	})
})
