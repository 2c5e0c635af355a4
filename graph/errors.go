package graph

import "errors"

// ErrGraphPartitioned is returned by Sanity when fewer bricks are reachable
// than the graph holds.
var ErrGraphPartitioned = errors.New("graph partitioned")

// ErrGraphNotFullyExplored is returned by Sanity when more bricks are
// reachable than the graph holds.
var ErrGraphNotFullyExplored = errors.New("graph not fully explored")

// ErrNotMember is returned when a named brick is not in the graph.
var ErrNotMember = errors.New("brick not in graph")
