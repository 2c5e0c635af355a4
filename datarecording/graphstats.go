package datarecording

import (
	"slices"
	"time"

	"github.com/sarchlab/packetgraph/brick"
	"github.com/sarchlab/packetgraph/graph"
)

// BrickStatsTable is the table RecordGraph writes into.
const BrickStatsTable = "brick_stats"

// BrickStat is a snapshot of the counters of one brick.
type BrickStat struct {
	Time        string
	Graph       string
	Brick       string
	Kind        string
	Type        string
	Refcount    int
	WestEdges   int
	EastEdges   int
	WestPackets uint64
	EastPackets uint64
	RxBytes     uint64
	TxBytes     uint64
}

// SnapshotGraph returns the counters of every member of g, sorted by brick
// name.
func SnapshotGraph(g *graph.Graph) []BrickStat {
	now := time.Now().Format(timeLayout)
	members := g.Bricks()
	stats := make([]BrickStat, 0, len(members))

	for _, b := range members {
		stats = append(stats, BrickStat{
			Time:        now,
			Graph:       g.Name(),
			Brick:       b.Name(),
			Kind:        b.Kind(),
			Type:        b.Type().String(),
			Refcount:    b.Refcount(),
			WestEdges:   b.EdgeCount(brick.West),
			EastEdges:   b.EdgeCount(brick.East),
			WestPackets: b.PacketsCount(brick.West),
			EastPackets: b.PacketsCount(brick.East),
			RxBytes:     b.RxBytes(),
			TxBytes:     b.TxBytes(),
		})
	}

	return stats
}

// RecordGraph writes a snapshot of g into the brick_stats table, creating
// the table on first use. The rows stay buffered until the next flush.
func RecordGraph(rec DataRecorder, g *graph.Graph) error {
	if !slices.Contains(rec.ListTables(), BrickStatsTable) {
		if err := rec.CreateTable(BrickStatsTable, BrickStat{}); err != nil {
			return err
		}
	}

	for _, s := range SnapshotGraph(g) {
		if err := rec.InsertData(BrickStatsTable, s); err != nil {
			return err
		}
	}

	return nil
}
