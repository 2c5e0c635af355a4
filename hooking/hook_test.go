package hooking

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recordingHook struct {
	positions []string
}

func (h *recordingHook) Func(ctx HookCtx) {
	h.positions = append(h.positions, ctx.Pos.Name)
}

var _ = Describe("HookableBase", func() {
	var (
		base *HookableBase
		pos  *HookPos
	)

	BeforeEach(func() {
		base = &HookableBase{}
		pos = &HookPos{Name: "Pos"}
	})

	It("should invoke hooks in order", func() {
		first := &recordingHook{}
		calls := 0

		base.AcceptHook(first)
		base.AcceptHook(HookFunc(func(ctx HookCtx) {
			Expect(first.positions).To(HaveLen(1))
			calls++
		}))

		base.InvokeHook(HookCtx{Domain: base, Pos: pos})

		Expect(base.NumHooks()).To(Equal(2))
		Expect(first.positions).To(Equal([]string{"Pos"}))
		Expect(calls).To(Equal(1))
	})

	It("should panic on duplicated hooks", func() {
		hook := &recordingHook{}
		base.AcceptHook(hook)

		Expect(func() { base.AcceptHook(hook) }).To(Panic())
	})

	It("should remove hooks", func() {
		hook := &recordingHook{}
		other := &recordingHook{}
		base.AcceptHook(hook)
		base.AcceptHook(other)

		base.RemoveHook(hook)
		base.InvokeHook(HookCtx{Domain: base, Pos: pos})

		Expect(base.Hooks()).To(HaveLen(1))
		Expect(hook.positions).To(BeEmpty())
		Expect(other.positions).To(HaveLen(1))
	})

	It("should never remove a HookFunc", func() {
		f := HookFunc(func(HookCtx) {})
		base.AcceptHook(f)
		base.AcceptHook(f)

		base.RemoveHook(f)

		Expect(base.NumHooks()).To(Equal(2))
	})

	It("should hand out a copy of its hooks", func() {
		base.AcceptHook(&recordingHook{})

		hooks := base.Hooks()
		hooks[0] = nil

		Expect(base.Hooks()[0]).NotTo(BeNil())
	})
})
