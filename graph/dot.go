package graph

import (
	"bufio"
	"fmt"
	"io"

	"github.com/sarchlab/packetgraph/brick"
	"github.com/sarchlab/packetgraph/bricks/queue"
)

// Dot writes the graph in graphviz format. Each edge is drawn once, from the
// brick holding it on its east side. Friend queues that are both members are
// joined by a dashed edge.
func (g *Graph) Dot(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "digraph %q {\n", g.name)
	fmt.Fprintf(bw, "  rankdir=LR;\n")

	members := g.Bricks()

	for _, b := range members {
		fmt.Fprintf(bw, "  %q [label=%q, shape=%s];\n",
			b.Name(), b.Name()+"\n"+b.Kind(), shape(b))
	}

	for _, b := range members {
		if friend := queue.FriendOf(b); friend != nil &&
			g.Get(friend.Name()) == friend && b.Name() < friend.Name() {
			fmt.Fprintf(bw, "  %q -> %q [style=dashed, dir=both];\n",
				b.Name(), friend.Name())
		}

		if b.Type() == brick.Monopole && b.OutwardSide() != brick.East {
			continue
		}

		for i, e := range b.Edges(brick.East) {
			if !e.Linked() {
				continue
			}

			fmt.Fprintf(bw, "  %q -> %q [taillabel=\"%d\", headlabel=\"%d\"];\n",
				b.Name(), e.Link.Name(), i, e.PairIndex)
		}
	}

	fmt.Fprintf(bw, "}\n")

	return bw.Flush()
}

func shape(b *brick.Brick) string {
	switch b.Type() {
	case brick.Monopole:
		return "ellipse"
	case brick.Multipole:
		return "box3d"
	default:
		return "box"
	}
}
