package graph

import (
	"fmt"

	"github.com/rs/xid"

	"github.com/sarchlab/packetgraph/brick"
	"github.com/sarchlab/packetgraph/bricks/queue"
	"github.com/sarchlab/packetgraph/logging"
)

// Split cuts the edge going from the east side of westName to eastName and
// puts a pair of friend queues in its place. The graph keeps the west half,
// explored again from the west queue, and the east half is returned as a new
// graph explored from the east queue. Both queues are created from the
// registry of the west brick, which must know the queue kind.
//
// When the edge is not a cut of the graph the topology is restored and the
// split fails with ErrGraphNotFullyExplored.
func (g *Graph) Split(
	westName, eastName, westQueueName, eastQueueName string,
) (*Graph, error) {
	west, east, err := g.splitEnds(westName, eastName)
	if err != nil {
		return nil, err
	}

	reg := west.Registry()

	qw, err := queue.MakeBuilder().WithRegistry(reg).Build(westQueueName)
	if err != nil {
		return nil, err
	}

	qe, err := queue.MakeBuilder().WithRegistry(reg).Build(eastQueueName)
	if err != nil {
		_, _ = brick.Decref(qw)
		return nil, err
	}

	if err := brick.UnlinkEdge(west, east); err != nil {
		_, _ = brick.Decref(qw)
		_, _ = brick.Decref(qe)

		return nil, err
	}

	if err := insertQueues(west, east, qw, qe); err != nil {
		_ = brick.Link(west, east)

		return nil, err
	}

	other, err := New(g.name+"."+xid.New().String(), qe)
	if err != nil {
		return nil, g.undoSplit(qw, qe, err)
	}

	if other.Get(westQueueName) == qw {
		return nil, g.undoSplit(qw, qe, fmt.Errorf(
			"%w: %q and %q stay connected without the edge",
			ErrGraphNotFullyExplored, westName, eastName))
	}

	if err := g.Explore(qw); err != nil {
		return nil, err
	}

	logging.Get(logging.Graph).Debug("graph split",
		"graph", g.name, "west", westName, "east", eastName,
		"new_graph", other.name,
		"bricks", g.Count(), "new_bricks", other.Count())

	return other, nil
}

func (g *Graph) splitEnds(westName, eastName string) (*brick.Brick, *brick.Brick, error) {
	west := g.Get(westName)
	if west == nil {
		return nil, nil, fmt.Errorf("%w: %q in graph %q",
			ErrNotMember, westName, g.name)
	}

	east := g.Get(eastName)
	if east == nil {
		return nil, nil, fmt.Errorf("%w: %q in graph %q",
			ErrNotMember, eastName, g.name)
	}

	for _, e := range west.Edges(brick.East) {
		if e.Link == east {
			return west, east, nil
		}
	}

	return nil, nil, fmt.Errorf("%w: no edge from %q east to %q",
		brick.ErrNoLink, westName, eastName)
}

// insertQueues links west to qw and qe to east, then friends the queues.
// On failure the queues are destroyed.
func insertQueues(west, east, qw, qe *brick.Brick) error {
	err := brick.Link(west, qw)
	if err == nil {
		err = brick.Link(qe, east)
	}

	if err == nil {
		err = queue.Friend(qw, qe)
	}

	if err != nil {
		for _, q := range []*brick.Brick{qw, qe} {
			_ = brick.Unlink(q)
			_, _ = brick.Decref(q)
		}
	}

	return err
}

func (g *Graph) undoSplit(qw, qe *brick.Brick, cause error) error {
	if err := collapse(qw, qe); err != nil {
		return fmt.Errorf("%v; restoring the edge: %w", cause, err)
	}

	return cause
}

// Merge joins east into g. Every pair of friend queues with one queue in
// each graph is replaced by a direct edge between their neighbors and the
// queues are destroyed. g is explored again and east is left empty; its
// bricks now belong to g.
func (g *Graph) Merge(east *Graph) error {
	pairs := g.friendPairs(east)
	if len(pairs) == 0 {
		return fmt.Errorf("%w: no friend queues join %q and %q",
			brick.ErrNoLink, g.name, east.name)
	}

	for _, p := range pairs {
		g.Pop(p[0].Name())
		east.Pop(p[1].Name())

		if err := collapse(p[0], p[1]); err != nil {
			return err
		}
	}

	for _, b := range east.Bricks() {
		east.Pop(b.Name())

		if g.Get(b.Name()) == nil {
			if err := g.Push(b); err != nil {
				return err
			}
		}
	}

	if err := g.Explore(nil); err != nil {
		return err
	}

	logging.Get(logging.Graph).Debug("graphs merged",
		"graph", g.name, "merged", east.name,
		"queue_pairs", len(pairs), "bricks", g.Count())

	return nil
}

func (g *Graph) friendPairs(east *Graph) [][2]*brick.Brick {
	var pairs [][2]*brick.Brick

	for _, b := range g.Bricks() {
		friend := queue.FriendOf(b)
		if friend != nil && east.Get(friend.Name()) == friend {
			pairs = append(pairs, [2]*brick.Brick{b, friend})
		}
	}

	return pairs
}

// collapse removes a pair of friend queues and links their neighbors
// directly, keeping the direction the queues were linked in. The queues are
// destroyed.
func collapse(qa, qb *brick.Brick) error {
	na := neighbor(qa)
	nb := neighbor(qb)
	westward := qa.OutwardSide() == brick.West

	if err := queue.Unfriend(qa); err != nil {
		return err
	}

	for _, q := range []*brick.Brick{qa, qb} {
		if err := brick.Unlink(q); err != nil {
			return err
		}

		if _, err := brick.Decref(q); err != nil {
			return err
		}
	}

	if na == nil || nb == nil {
		return nil
	}

	if westward {
		return brick.Link(na, nb)
	}

	return brick.Link(nb, na)
}

func neighbor(b *brick.Brick) *brick.Brick {
	if e, ok := b.Edge(b.OutwardSide(), 0); ok {
		return e.Link
	}

	return nil
}
