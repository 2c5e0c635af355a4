package brick

import (
	"github.com/sarchlab/packetgraph/hooking"
	"github.com/sarchlab/packetgraph/mask"
	"github.com/sarchlab/packetgraph/packet"
)

// HookPosBurst is invoked when a burst arrives on a brick, before the kind
// sees it. The item is a BurstInfo.
var HookPosBurst = &hooking.HookPos{Name: "Burst"}

// HookPosPoll is invoked after a pollable brick was polled. The item is a
// PollInfo.
var HookPosPoll = &hooking.HookPos{Name: "Poll"}

// HookPosLink is invoked on both ends of a new edge. The item is a LinkInfo.
var HookPosLink = &hooking.HookPos{Name: "Link"}

// HookPosUnlink is invoked on both ends of a removed edge. The item is a
// LinkInfo.
var HookPosUnlink = &hooking.HookPos{Name: "Unlink"}

// HookPosDestroy is invoked once, when the last reference is dropped. The
// item is the brick.
var HookPosDestroy = &hooking.HookPos{Name: "Destroy"}

// BurstInfo describes a burst seen at HookPosBurst. Packets are only valid
// during the hook call.
type BurstInfo struct {
	From    Side
	Edge    int
	Packets []*packet.Packet
	Mask    mask.Mask
}

// PollInfo describes the outcome of a poll.
type PollInfo struct {
	Count int
	Err   error
}

// LinkInfo describes an edge from the point of view of the hooked brick.
type LinkInfo struct {
	Side Side
	Edge int
	Peer *Brick
}

func (b *Brick) invoke(pos *hooking.HookPos, item interface{}) {
	if b.NumHooks() == 0 {
		return
	}

	b.InvokeHook(hooking.HookCtx{
		Domain: b,
		Pos:    pos,
		Item:   item,
	})
}
