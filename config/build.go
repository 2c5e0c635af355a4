package config

import (
	"fmt"

	"github.com/sarchlab/packetgraph/brick"
	"github.com/sarchlab/packetgraph/bricks"
	"github.com/sarchlab/packetgraph/graph"
	"github.com/sarchlab/packetgraph/logging"
)

// Build creates the bricks of p through reg, links them, gathers them into
// a graph named after the pipeline and applies the splits. The first graph
// holds the first brick; every split adds one graph. The registry must know
// the shipped kinds, see bricks.RegisterAll.
//
// Every brick must end up connected to the first one. On failure whatever
// was created is destroyed.
func Build(reg *brick.Registry, p *Pipeline) ([]*graph.Graph, error) {
	created, err := createBricks(reg, p)
	if err != nil {
		return nil, err
	}

	for _, l := range p.Links {
		if err := brick.Link(created[l.West], created[l.East]); err != nil {
			release(created)
			return nil, fmt.Errorf("linking %s to %s: %w", l.West, l.East, err)
		}
	}

	g, err := graph.New(p.Name, created[p.Bricks[0].Name])
	if err != nil {
		release(created)
		return nil, err
	}

	if g.Count() != len(created) {
		release(created)

		return nil, fmt.Errorf("%w: %d of %d bricks reachable from %q",
			graph.ErrGraphPartitioned, g.Count(), len(created), p.Bricks[0].Name)
	}

	graphs := []*graph.Graph{g}

	for _, s := range p.Splits {
		graphs, err = applySplit(graphs, s)
		if err != nil {
			destroyAll(graphs)
			return nil, err
		}
	}

	logging.Get(logging.Config).Debug("pipeline built",
		"pipeline", p.Name, "bricks", len(created), "graphs", len(graphs))

	return graphs, nil
}

func createBricks(reg *brick.Registry, p *Pipeline) (map[string]*brick.Brick, error) {
	created := make(map[string]*brick.Brick, len(p.Bricks))

	for _, bc := range p.Bricks {
		b, err := bricks.New(reg, bc.Kind, bc.Name, bc.Params)
		if err != nil {
			release(created)
			return nil, fmt.Errorf("creating brick %s: %w", bc.Name, err)
		}

		created[bc.Name] = b
	}

	return created, nil
}

func applySplit(graphs []*graph.Graph, s SplitConfig) ([]*graph.Graph, error) {
	for _, g := range graphs {
		if g.Get(s.West) == nil {
			continue
		}

		other, err := g.Split(s.West, s.East, s.WestQueue, s.EastQueue)
		if err != nil {
			return graphs, fmt.Errorf("splitting %s-%s: %w", s.West, s.East, err)
		}

		return append(graphs, other), nil
	}

	return graphs, fmt.Errorf("splitting %s-%s: %w",
		s.West, s.East, graph.ErrNotMember)
}

// release unlinks and drops the creation reference of bricks that no graph
// owns yet.
func release(created map[string]*brick.Brick) {
	for _, b := range created {
		if !b.Destroyed() {
			_ = brick.Unlink(b)
		}
	}

	for _, b := range created {
		if !b.Destroyed() {
			_, _ = brick.Decref(b)
		}
	}
}

func destroyAll(graphs []*graph.Graph) {
	for _, g := range graphs {
		_ = g.Destroy()
	}
}
