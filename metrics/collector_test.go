package metrics

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sarchlab/packetgraph/brick"
	"github.com/sarchlab/packetgraph/bricks"
	"github.com/sarchlab/packetgraph/graph"
	"github.com/sarchlab/packetgraph/packet"
)

func buildGraph(name string) (*graph.Graph, *brick.Brick) {
	r := brick.NewRegistry()
	Expect(bricks.RegisterAll(r)).To(Succeed())

	a, err := bricks.New(r, "nop", "a", nil)
	Expect(err).NotTo(HaveOccurred())

	sink, err := bricks.New(r, "collect", "sink", nil)
	Expect(err).NotTo(HaveOccurred())

	Expect(brick.Link(a, sink)).To(Succeed())

	g, err := graph.New(name, a)
	Expect(err).NotTo(HaveOccurred())

	DeferCleanup(g.Destroy)

	return g, a
}

func burst(b *brick.Brick, n int) {
	frames := make([][]byte, n)
	for i := range frames {
		frames[i] = make([]byte, 60)
	}

	pkts, m := packet.FromBytes(frames...)
	Expect(b.Burst(brick.West, 0, pkts, m)).To(Succeed())
	packet.ReleaseAll(pkts, m)
}

var _ = Describe("Collector", func() {
	var (
		c *Collector
		g *graph.Graph
		a *brick.Brick
	)

	BeforeEach(func() {
		c = NewCollector(&sync.Mutex{})
		g, a = buildGraph("m")
		c.AddGraph(g)
	})

	It("should export brick counters", func() {
		burst(a, 2)

		expected := `
# HELP packetgraph_brick_packets_total Packets that arrived on a side of a brick
# TYPE packetgraph_brick_packets_total counter
packetgraph_brick_packets_total{brick="a",graph="m",side="east"} 0
packetgraph_brick_packets_total{brick="a",graph="m",side="west"} 2
packetgraph_brick_packets_total{brick="sink",graph="m",side="east"} 0
packetgraph_brick_packets_total{brick="sink",graph="m",side="west"} 2
# HELP packetgraph_brick_rx_bytes_total Bytes received by a brick
# TYPE packetgraph_brick_rx_bytes_total counter
packetgraph_brick_rx_bytes_total{brick="a",graph="m"} 0
packetgraph_brick_rx_bytes_total{brick="sink",graph="m"} 120
# HELP packetgraph_brick_refcount References held on a brick
# TYPE packetgraph_brick_refcount gauge
packetgraph_brick_refcount{brick="a",graph="m"} 2
packetgraph_brick_refcount{brick="sink",graph="m"} 2
# HELP packetgraph_graph_bricks Number of bricks in the graph
# TYPE packetgraph_graph_bricks gauge
packetgraph_graph_bricks{graph="m"} 2
`

		err := testutil.CollectAndCompare(c, strings.NewReader(expected),
			"packetgraph_brick_packets_total",
			"packetgraph_brick_rx_bytes_total",
			"packetgraph_brick_refcount",
			"packetgraph_graph_bricks")
		Expect(err).NotTo(HaveOccurred())
	})

	It("should count one metric set per brick", func() {
		// bricks gauge, then 2 sides + rx + tx + refcount per dipole.
		Expect(testutil.CollectAndCount(c)).To(Equal(1 + 2*5))
	})

	It("should stop exporting removed graphs", func() {
		c.RemoveGraph("m")

		Expect(c.Graphs()).To(BeEmpty())
		Expect(testutil.CollectAndCount(c)).To(BeZero())
	})

	It("should serve the metrics over HTTP", func() {
		s, err := NewServer("127.0.0.1:0", c)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Start()).To(Succeed())
		DeferCleanup(func() {
			Expect(s.Stop(context.Background())).To(Succeed())
		})

		resp, err := http.Get("http://" + s.Addr() + "/metrics")
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(body)).To(ContainSubstring(`packetgraph_graph_bricks{graph="m"} 2`))
		Expect(string(body)).To(ContainSubstring("go_goroutines"))
	})
})
