package graph

import (
	"fmt"

	"github.com/sarchlab/packetgraph/brick"
	"github.com/sarchlab/packetgraph/logging"
)

// Explore replaces the membership with every brick reachable from seed. A
// nil seed starts from the first current member. On failure the previous
// membership is restored.
func (g *Graph) Explore(seed *brick.Brick) error {
	if seed == nil {
		seed = g.anyMember()
	}

	if seed == nil {
		return fmt.Errorf("%w: graph %q has nothing to explore from",
			brick.ErrInvalidArgument, g.name)
	}

	found, err := reach(seed)
	if err != nil {
		return fmt.Errorf("graph %q: %w", g.name, err)
	}

	oldAll, oldPollable := g.all, g.pollable
	g.all = make(map[string]*brick.Brick, len(found))
	g.pollable = nil

	for _, b := range found {
		if err := g.Push(b); err != nil {
			g.all, g.pollable = oldAll, oldPollable
			return err
		}
	}

	logging.Get(logging.Graph).Debug("graph explored",
		"graph", g.name, "seed", seed.Name(), "bricks", len(found))

	return nil
}

// Sanity explores again from any member and compares the number of bricks
// found with the number held.
func (g *Graph) Sanity() error {
	seed := g.anyMember()
	if seed == nil {
		return nil
	}

	found, err := reach(seed)
	if err != nil {
		return fmt.Errorf("graph %q: %w", g.name, err)
	}

	switch {
	case len(found) < len(g.all):
		return fmt.Errorf("%w: graph %q holds %d bricks, %d reachable",
			ErrGraphPartitioned, g.name, len(g.all), len(found))
	case len(found) > len(g.all):
		return fmt.Errorf("%w: graph %q holds %d bricks, %d reachable",
			ErrGraphNotFullyExplored, g.name, len(g.all), len(found))
	}

	return nil
}

func (g *Graph) anyMember() *brick.Brick {
	names := g.Names()
	if len(names) == 0 {
		return nil
	}

	return g.all[names[0]]
}

// reach walks every edge breadth first from seed. Two distinct bricks
// sharing a name are an error.
func reach(seed *brick.Brick) ([]*brick.Brick, error) {
	byName := map[string]*brick.Brick{seed.Name(): seed}
	order := []*brick.Brick{seed}

	for i := 0; i < len(order); i++ {
		for _, n := range order[i].Neighbors() {
			known, seen := byName[n.Name()]
			if seen {
				if known != n {
					return nil, fmt.Errorf("%w: two bricks are named %q",
						brick.ErrDuplicateName, n.Name())
				}

				continue
			}

			byName[n.Name()] = n
			order = append(order, n)
		}
	}

	return order, nil
}
