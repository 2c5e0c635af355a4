// Package graph tracks a connected set of bricks, polls the ones that
// originate bursts, and cuts or rejoins the set through pairs of friend
// queues.
//
// A graph owns the reference each member was created with. Destroy unlinks
// the members and drops those references.
package graph

import (
	"fmt"
	"sort"

	"github.com/sarchlab/packetgraph/brick"
	"github.com/sarchlab/packetgraph/logging"
)

// Graph is a named set of bricks.
type Graph struct {
	name     string
	all      map[string]*brick.Brick
	pollable []*brick.Brick
}

// New creates a graph. With a seed, every brick reachable from it becomes a
// member.
func New(name string, seed *brick.Brick) (*Graph, error) {
	g := &Graph{
		name: name,
		all:  make(map[string]*brick.Brick),
	}

	if seed == nil {
		return g, nil
	}

	if err := g.Explore(seed); err != nil {
		return nil, err
	}

	return g, nil
}

// Name returns the name of the graph.
func (g *Graph) Name() string {
	return g.name
}

// Push adds a brick. The graph takes over the caller's reference.
func (g *Graph) Push(b *brick.Brick) error {
	if b == nil {
		return fmt.Errorf("%w: cannot push a nil brick", brick.ErrInvalidArgument)
	}

	if _, found := g.all[b.Name()]; found {
		return fmt.Errorf("%w: graph %q already holds %q",
			brick.ErrDuplicateName, g.name, b.Name())
	}

	g.all[b.Name()] = b

	if b.Pollable() {
		g.pollable = append(g.pollable, b)
	}

	return nil
}

// Pop removes a brick without destroying it and hands its reference back to
// the caller. It returns nil when no member has that name.
func (g *Graph) Pop(name string) *brick.Brick {
	b, found := g.all[name]
	if !found {
		return nil
	}

	delete(g.all, name)

	for i, p := range g.pollable {
		if p == b {
			g.pollable = append(g.pollable[:i], g.pollable[i+1:]...)
			break
		}
	}

	return b
}

// Get returns the member with the given name, or nil.
func (g *Graph) Get(name string) *brick.Brick {
	return g.all[name]
}

// Count returns the number of members.
func (g *Graph) Count() int {
	return len(g.all)
}

// Names returns the member names, sorted.
func (g *Graph) Names() []string {
	names := make([]string, 0, len(g.all))
	for name := range g.all {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Bricks returns the members sorted by name.
func (g *Graph) Bricks() []*brick.Brick {
	names := g.Names()
	out := make([]*brick.Brick, len(names))

	for i, name := range names {
		out[i] = g.all[name]
	}

	return out
}

// Pollable returns the members that originate bursts, in push order.
func (g *Graph) Pollable() []*brick.Brick {
	out := make([]*brick.Brick, len(g.pollable))
	copy(out, g.pollable)

	return out
}

// Poll polls every pollable member once and stops at the first failure.
func (g *Graph) Poll() error {
	for _, b := range g.pollable {
		if _, err := b.Poll(); err != nil {
			return fmt.Errorf("graph %q: polling %q: %w", g.name, b.Name(), err)
		}
	}

	return nil
}

// Destroy unlinks every member and drops the references the graph holds.
// The graph is empty afterwards. Bricks still referenced elsewhere survive.
func (g *Graph) Destroy() error {
	members := g.Bricks()

	var firstErr error

	for _, b := range members {
		if b.Destroyed() {
			continue
		}

		if err := brick.Unlink(b); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for _, b := range members {
		if b.Destroyed() {
			continue
		}

		if _, err := brick.Decref(b); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	g.all = make(map[string]*brick.Brick)
	g.pollable = nil

	logging.Get(logging.Graph).Debug("graph destroyed",
		"graph", g.name, "bricks", len(members))

	return firstErr
}

// Builder creates graphs.
type Builder struct {
	seed *brick.Brick
}

// MakeBuilder creates a new Builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithSeed sets the brick the graph is explored from.
func (b Builder) WithSeed(seed *brick.Brick) Builder {
	b.seed = seed
	return b
}

// Build creates a graph.
func (b Builder) Build(name string) (*Graph, error) {
	return New(name, b.seed)
}
