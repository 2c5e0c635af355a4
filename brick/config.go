package brick

import (
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"
)

// MaxEdges bounds the edge array of a multipole side.
const MaxEdges = 64

// Config carries what every brick needs at construction, plus an opaque
// kind-specific payload.
type Config struct {
	Name string
	Type Type

	// WestMax and EastMax size the edge arrays of multipole bricks. They are
	// ignored, and must be 0 or 1, for the other classes.
	WestMax int
	EastMax int

	// Params is handed to the kind's factory untouched. See DecodeParams.
	Params any
}

func (c Config) validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: brick name must not be empty", ErrInvalidConfig)
	}

	switch c.Type {
	case Monopole, Dipole:
		if c.WestMax > 1 || c.EastMax > 1 {
			return fmt.Errorf("%w: %s brick %q cannot hold more than one edge per side",
				ErrInvalidConfig, c.Type, c.Name)
		}
	case Multipole:
		if c.WestMax < 1 || c.WestMax > MaxEdges ||
			c.EastMax < 1 || c.EastMax > MaxEdges {
			return fmt.Errorf("%w: multipole brick %q needs 1..%d edges per side, got west=%d east=%d",
				ErrInvalidConfig, c.Name, MaxEdges, c.WestMax, c.EastMax)
		}
	default:
		return fmt.Errorf("%w: brick %q has unknown type %d",
			ErrInvalidConfig, c.Name, c.Type)
	}

	return nil
}

// DecodeParams fills out from a Params payload. The payload may be nil (out
// is left untouched), a value or pointer of out's element type, a YAML node,
// or a generic map as produced by YAML decoding.
func DecodeParams(params any, out any) error {
	outV := reflect.ValueOf(out)
	if outV.Kind() != reflect.Ptr || outV.IsNil() {
		return fmt.Errorf("%w: params target must be a non-nil pointer",
			ErrInvalidArgument)
	}

	if params == nil {
		return nil
	}

	var err error

	switch p := params.(type) {
	case *yaml.Node:
		err = p.Decode(out)
	case yaml.Node:
		err = p.Decode(out)
	case map[string]any:
		var data []byte

		data, err = yaml.Marshal(p)
		if err == nil {
			err = yaml.Unmarshal(data, out)
		}
	default:
		err = assignParams(params, outV)
	}

	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return nil
}

func assignParams(params any, outV reflect.Value) error {
	target := outV.Elem()
	pv := reflect.ValueOf(params)

	if pv.Type() == target.Type() {
		target.Set(pv)
		return nil
	}

	if pv.Kind() == reflect.Ptr && pv.Type().Elem() == target.Type() {
		if !pv.IsNil() {
			target.Set(pv.Elem())
		}

		return nil
	}

	return fmt.Errorf("params of type %T cannot be decoded into %s",
		params, target.Type())
}
