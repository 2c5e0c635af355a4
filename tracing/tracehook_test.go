package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/packetgraph/brick"
	"github.com/sarchlab/packetgraph/hooking"
)

var _ = Describe("Trace hooks", func() {
	var p pipeline

	BeforeEach(func() {
		p = newPipeline()
	})

	It("should attach a tracer to every member of a graph", func() {
		t := NewBurstCountTracer(nil)

		CollectGraphTrace(p.g, t)

		for _, b := range p.g.Bricks() {
			Expect(b.NumHooks()).To(Equal(1))
		}
	})

	It("should refuse to attach the same tracer twice", func() {
		t := NewBurstCountTracer(nil)

		CollectTrace(p.fwd, t)

		Expect(func() { CollectTrace(p.fwd, t) }).To(Panic())
	})

	It("should stop tracing", func() {
		t := NewBurstCountTracer(nil)
		CollectTrace(p.fwd, t)

		StopTrace(p.fwd, t)
		burstInto(p.fwd, 2)

		Expect(p.fwd.NumHooks()).To(Equal(0))
		Expect(t.BurstCount("fwd")).To(BeZero())
	})

	It("should attach and detach a plain hook", func() {
		var seen []string

		h := &recordingHook{seen: &seen}

		AttachToGraph(p.g, h)
		burstInto(p.fwd, 1)
		DetachFromGraph(p.g, h)
		burstInto(p.fwd, 1)

		Expect(seen).To(Equal([]string{"fwd", "sink"}))
	})
})

type recordingHook struct {
	seen *[]string
}

func (h *recordingHook) Func(ctx hooking.HookCtx) {
	if ctx.Pos != brick.HookPosBurst {
		return
	}

	*h.seen = append(*h.seen, ctx.Domain.(*brick.Brick).Name())
}
