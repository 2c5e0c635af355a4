package brick

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sarchlab/packetgraph/logging"
)

// Registry maps kind names to factories and keeps the names of live bricks
// unique. A registry is built once, before any brick is created, and passed
// to whatever creates bricks.
type Registry struct {
	lock      sync.Mutex
	factories map[string]Factory
	live      map[string]*Brick
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		live:      make(map[string]*Brick),
	}
}

// Register adds a kind.
func (r *Registry) Register(kind string, factory Factory) error {
	if kind == "" || factory == nil {
		return fmt.Errorf("%w: kind needs a name and a factory",
			ErrInvalidArgument)
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("%w: kind %q already registered",
			ErrDuplicateName, kind)
	}

	r.factories[kind] = factory

	return nil
}

// Kinds lists the registered kinds, sorted.
func (r *Registry) Kinds() []string {
	r.lock.Lock()
	defer r.lock.Unlock()

	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}

	sort.Strings(kinds)

	return kinds
}

// HasKind reports whether a kind is registered.
func (r *Registry) HasKind(kind string) bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	_, ok := r.factories[kind]

	return ok
}

// Lookup returns the live brick with the given name, or nil.
func (r *Registry) Lookup(name string) *Brick {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.live[name]
}

// Live returns the number of bricks that have not been destroyed.
func (r *Registry) Live() int {
	r.lock.Lock()
	defer r.lock.Unlock()

	return len(r.live)
}

// New creates a brick of the given kind. The returned brick holds one
// reference owned by the caller.
func (r *Registry) New(kind string, cfg Config) (*Brick, error) {
	r.lock.Lock()
	factory, ok := r.factories[kind]
	r.lock.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	b := newBrick(r, kind, cfg)

	if err := r.claimName(b); err != nil {
		return nil, err
	}

	impl, err := factory(b, cfg)
	if err != nil {
		if d, ok := impl.(Destroyer); ok {
			d.Destroy()
		}

		r.releaseName(b)

		return nil, err
	}

	if impl == nil {
		r.releaseName(b)

		return nil, fmt.Errorf("%w: kind %q built no implementation for %q",
			ErrInvalidConfig, kind, cfg.Name)
	}

	b.setImpl(impl)

	logging.Get(logging.Brick).Debug("brick created",
		"brick", b.name, "kind", kind, "type", b.typ.String())

	return b, nil
}

func (r *Registry) claimName(b *Brick) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, taken := r.live[b.name]; taken {
		return fmt.Errorf("%w: brick %q already exists", ErrDuplicateName, b.name)
	}

	r.live[b.name] = b

	return nil
}

func (r *Registry) releaseName(b *Brick) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.live[b.name] == b {
		delete(r.live, b.name)
	}
}
