// Package metrics exports the counters of running graphs to Prometheus.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sarchlab/packetgraph/brick"
	"github.com/sarchlab/packetgraph/graph"
)

type nopLocker struct{}

func (nopLocker) Lock()   {}
func (nopLocker) Unlock() {}

// Collector implements prometheus.Collector over a set of graphs. Graphs
// are read while holding the locker given to NewCollector, which must be
// the one held around every poll of those graphs.
type Collector struct {
	lock   sync.Mutex
	locker sync.Locker
	graphs []*graph.Graph
	descs  map[string]*prometheus.Desc
}

// NewCollector creates a Collector. A nil locker means the graphs are not
// polled concurrently with scrapes.
func NewCollector(locker sync.Locker) *Collector {
	if locker == nil {
		locker = nopLocker{}
	}

	brickLabels := []string{"graph", "brick"}

	return &Collector{
		locker: locker,
		descs: map[string]*prometheus.Desc{
			"packets": prometheus.NewDesc("packetgraph_brick_packets_total",
				"Packets that arrived on a side of a brick",
				[]string{"graph", "brick", "side"}, nil),
			"rx": prometheus.NewDesc("packetgraph_brick_rx_bytes_total",
				"Bytes received by a brick", brickLabels, nil),
			"tx": prometheus.NewDesc("packetgraph_brick_tx_bytes_total",
				"Bytes transmitted by a brick", brickLabels, nil),
			"refcount": prometheus.NewDesc("packetgraph_brick_refcount",
				"References held on a brick", brickLabels, nil),
			"bricks": prometheus.NewDesc("packetgraph_graph_bricks",
				"Number of bricks in the graph", []string{"graph"}, nil),
		},
	}
}

// AddGraph starts exporting a graph.
func (c *Collector) AddGraph(g *graph.Graph) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.graphs = append(c.graphs, g)
}

// RemoveGraph stops exporting the graph with the given name.
func (c *Collector) RemoveGraph(name string) {
	c.lock.Lock()
	defer c.lock.Unlock()

	for i, g := range c.graphs {
		if g.Name() == name {
			c.graphs = append(c.graphs[:i], c.graphs[i+1:]...)
			return
		}
	}
}

// Graphs returns the exported graphs.
func (c *Collector) Graphs() []*graph.Graph {
	c.lock.Lock()
	defer c.lock.Unlock()

	out := make([]*graph.Graph, len(c.graphs))
	copy(out, c.graphs)

	return out
}

// Describe sends every metric description.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, desc := range c.descs {
		ch <- desc
	}
}

// Collect sends the current value of every counter.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	graphs := c.Graphs()

	c.locker.Lock()
	defer c.locker.Unlock()

	for _, g := range graphs {
		members := g.Bricks()

		ch <- prometheus.MustNewConstMetric(c.descs["bricks"],
			prometheus.GaugeValue, float64(len(members)), g.Name())

		for _, b := range members {
			c.collectBrick(ch, g.Name(), b)
		}
	}
}

func (c *Collector) collectBrick(
	ch chan<- prometheus.Metric,
	graphName string,
	b *brick.Brick,
) {
	name := b.Name()

	sides := []brick.Side{brick.West, brick.East}
	if b.Type() == brick.Monopole {
		sides = []brick.Side{b.OutwardSide()}
	}

	for _, s := range sides {
		ch <- prometheus.MustNewConstMetric(c.descs["packets"],
			prometheus.CounterValue, float64(b.PacketsCount(s)),
			graphName, name, s.String())
	}

	ch <- prometheus.MustNewConstMetric(c.descs["rx"],
		prometheus.CounterValue, float64(b.RxBytes()), graphName, name)
	ch <- prometheus.MustNewConstMetric(c.descs["tx"],
		prometheus.CounterValue, float64(b.TxBytes()), graphName, name)
	ch <- prometheus.MustNewConstMetric(c.descs["refcount"],
		prometheus.GaugeValue, float64(b.Refcount()), graphName, name)
}
