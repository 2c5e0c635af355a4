// Package hooking lets observers attach to bricks and graphs without touching
// the packet path of the observed object.
package hooking

import "slices"

// HookPos names a site where hooks are invoked.
type HookPos struct {
	Name string
}

// HookCtx is what a hook receives. Item is specific to the position, Detail
// is optional extra information.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   any
	Detail any
}

// Hookable is an object that accepts hooks.
type Hookable interface {
	AcceptHook(hook Hook)

	// RemoveHook detaches a hook. Unknown hooks are ignored.
	RemoveHook(hook Hook)

	NumHooks() int
	Hooks() []Hook
}

// Hook is invoked by a hookable object.
type Hook interface {
	Func(ctx HookCtx)
}

// HookFunc adapts a plain function to the Hook interface. Functions have no
// identity, so a HookFunc can be accepted but never removed.
type HookFunc func(ctx HookCtx)

// Func calls f.
func (f HookFunc) Func(ctx HookCtx) {
	f(ctx)
}

// HookableBase implements Hookable and is meant to be embedded. It is not
// safe for concurrent use; attach and detach from the goroutine that drives
// the owner.
type HookableBase struct {
	hooks []Hook
}

// NumHooks returns the number of attached hooks.
func (h *HookableBase) NumHooks() int {
	return len(h.hooks)
}

// Hooks returns a copy of the attached hooks.
func (h *HookableBase) Hooks() []Hook {
	return slices.Clone(h.hooks)
}

// AcceptHook attaches a hook. Attaching the same hook twice panics.
func (h *HookableBase) AcceptHook(hook Hook) {
	if h.indexOf(hook) >= 0 {
		panic("hook already attached")
	}

	h.hooks = append(h.hooks, hook)
}

// RemoveHook detaches a hook.
func (h *HookableBase) RemoveHook(hook Hook) {
	if i := h.indexOf(hook); i >= 0 {
		h.hooks = slices.Delete(h.hooks, i, i+1)
	}
}

// indexOf finds a comparable hook. HookFuncs never match.
func (h *HookableBase) indexOf(hook Hook) int {
	if _, ok := hook.(HookFunc); ok {
		return -1
	}

	return slices.IndexFunc(h.hooks, func(other Hook) bool {
		_, ok := other.(HookFunc)
		return !ok && other == hook
	})
}

// InvokeHook calls every hook in attachment order.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hooks {
		hook.Func(ctx)
	}
}
