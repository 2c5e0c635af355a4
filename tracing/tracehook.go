package tracing

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/packetgraph/brick"
	"github.com/sarchlab/packetgraph/graph"
	"github.com/sarchlab/packetgraph/hooking"
)

// CollectTrace lets the tracer collect traces from a brick. Attaching the
// same tracer twice panics.
func CollectTrace(b *brick.Brick, tracer Tracer) {
	for _, hook := range b.Hooks() {
		hook, ok := hook.(*traceHook)
		if ok && hook.t == tracer {
			panic(fmt.Sprintf(
				"brick %s already has tracer %s",
				b.Name(), reflect.TypeOf(tracer)))
		}
	}

	b.AcceptHook(&traceHook{t: tracer})
}

// StopTrace detaches the tracer from a brick. It does nothing if the tracer
// is not attached.
func StopTrace(b *brick.Brick, tracer Tracer) {
	for _, hook := range b.Hooks() {
		h, ok := hook.(*traceHook)
		if ok && h.t == tracer {
			b.RemoveHook(h)
			return
		}
	}
}

// CollectGraphTrace attaches the tracer to every member of g.
func CollectGraphTrace(g *graph.Graph, tracer Tracer) {
	for _, b := range g.Bricks() {
		CollectTrace(b, tracer)
	}
}

// AttachToGraph attaches a hook to every member of g.
func AttachToGraph(g *graph.Graph, hook hooking.Hook) {
	for _, b := range g.Bricks() {
		b.AcceptHook(hook)
	}
}

// DetachFromGraph removes a hook from every member of g.
func DetachFromGraph(g *graph.Graph, hook hooking.Hook) {
	for _, b := range g.Bricks() {
		b.RemoveHook(hook)
	}
}

// A traceHook forwards hook calls to a tracer.
type traceHook struct {
	t Tracer
}

// Func calls the tracer interfaces when the hook is triggered.
func (h *traceHook) Func(ctx hooking.HookCtx) {
	b, ok := ctx.Domain.(*brick.Brick)
	if !ok {
		return
	}

	switch ctx.Pos {
	case brick.HookPosBurst:
		h.t.TraceBurst(b, ctx.Item.(brick.BurstInfo))
	case brick.HookPosPoll:
		h.t.TracePoll(b, ctx.Item.(brick.PollInfo))
	}
}
