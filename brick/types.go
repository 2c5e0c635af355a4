package brick

import (
	"fmt"
	"strings"
)

// Type is the cardinality class of a brick. It is fixed at construction.
type Type uint8

const (
	// Monopole bricks have a single side with a single edge. The other side
	// is outside of the graph (a NIC, a socket, a tap device).
	Monopole Type = iota
	// Dipole bricks have a west and an east side, each with one edge.
	Dipole
	// Multipole bricks have a west and an east side, each with a bounded
	// array of edges.
	Multipole
)

func (t Type) String() string {
	switch t {
	case Monopole:
		return "monopole"
	case Dipole:
		return "dipole"
	case Multipole:
		return "multipole"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// ParseType converts a textual cardinality class.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(s) {
	case "monopole":
		return Monopole, nil
	case "dipole":
		return Dipole, nil
	case "multipole":
		return Multipole, nil
	default:
		return 0, fmt.Errorf("%w: unknown brick type %q", ErrInvalidConfig, s)
	}
}

// Side is one half of a brick's topology.
type Side uint8

const (
	// West is the side bursts traveling east arrive on.
	West Side = iota
	// East is the side bursts traveling west arrive on.
	East
)

// Opposite flips the side.
func (s Side) Opposite() Side {
	return s ^ 1
}

func (s Side) String() string {
	if s == West {
		return "west"
	}

	return "east"
}

// ParseSide converts "west" or "east".
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(s) {
	case "west":
		return West, nil
	case "east":
		return East, nil
	default:
		return 0, fmt.Errorf("%w: unknown side %q", ErrInvalidArgument, s)
	}
}

// Edge is one occupied slot on a side. PairIndex is the slot the peer uses
// for the matching edge pointing back.
type Edge struct {
	Link      *Brick
	PairIndex int
}

// Linked reports whether the slot is occupied.
func (e Edge) Linked() bool {
	return e.Link != nil
}
