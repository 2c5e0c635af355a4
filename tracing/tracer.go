// Package tracing observes the bursts and polls of bricks through hooks.
package tracing

import (
	"time"

	"github.com/sarchlab/packetgraph/brick"
)

// A Tracer collects what happens on the bricks it is attached to. Tracers
// may be shared by bricks polled from different goroutines.
type Tracer interface {
	TraceBurst(b *brick.Brick, info brick.BurstInfo)
	TracePoll(b *brick.Brick, info brick.PollInfo)
}

// BurstFilter selects the bursts a tracer is interested in. If it returns
// true, the burst is counted.
type BurstFilter func(b *brick.Brick, info brick.BurstInfo) bool

// AllBursts accepts every burst.
func AllBursts(*brick.Brick, brick.BurstInfo) bool {
	return true
}

// A TimeTeller tells the time tracers stamp records with.
type TimeTeller interface {
	CurrentTime() time.Time
}

// WallClock tells the system time.
type WallClock struct{}

// CurrentTime returns time.Now.
func (WallClock) CurrentTime() time.Time {
	return time.Now()
}
