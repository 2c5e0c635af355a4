// Package bricks gathers the brick kinds shipped with packetgraph.
package bricks

import (
	"fmt"
	"sort"

	"github.com/sarchlab/packetgraph/brick"
	"github.com/sarchlab/packetgraph/bricks/collect"
	"github.com/sarchlab/packetgraph/bricks/generator"
	"github.com/sarchlab/packetgraph/bricks/hub"
	"github.com/sarchlab/packetgraph/bricks/nop"
	"github.com/sarchlab/packetgraph/bricks/printer"
	"github.com/sarchlab/packetgraph/bricks/queue"
)

type kind struct {
	factory    brick.Factory
	makeConfig func(name string, params any) (brick.Config, error)
}

var kinds = map[string]kind{
	nop.Kind:       {nop.New, nop.MakeConfig},
	collect.Kind:   {collect.New, collect.MakeConfig},
	hub.Kind:       {hub.New, hub.MakeConfig},
	queue.Kind:     {queue.New, queue.MakeConfig},
	generator.Kind: {generator.New, generator.MakeConfig},
	printer.Kind:   {printer.New, printer.MakeConfig},
}

// Kinds lists the shipped kinds, sorted.
func Kinds() []string {
	names := make([]string, 0, len(kinds))
	for name := range kinds {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// RegisterAll registers every shipped kind.
func RegisterAll(r *brick.Registry) error {
	for _, name := range Kinds() {
		if err := r.Register(name, kinds[name].factory); err != nil {
			return err
		}
	}

	return nil
}

// MakeConfig builds the construction config of a shipped kind from generic
// parameters, as found in a pipeline file.
func MakeConfig(kindName, name string, params any) (brick.Config, error) {
	k, ok := kinds[kindName]
	if !ok {
		return brick.Config{}, fmt.Errorf("%w: %q", brick.ErrUnknownKind, kindName)
	}

	return k.makeConfig(name, params)
}

// New creates a brick of a shipped kind from generic parameters.
func New(r *brick.Registry, kindName, name string, params any) (*brick.Brick, error) {
	cfg, err := MakeConfig(kindName, name, params)
	if err != nil {
		return nil, err
	}

	return r.New(kindName, cfg)
}
