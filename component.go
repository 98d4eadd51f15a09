package silo

import (
	"reflect"

	"github.com/TheBitDrifter/table"
)

// Component is a registered component type: its column tree plus the
// identity worlds use to assign it a membership bit.
//
// The type parameter given to DefineComponent names the component. Every
// call mints a new identity, so defining twice with the same marker type
// yields two distinct components.
type Component struct {
	*Store
	elem table.ElementType
	name string
}

// DefineComponent builds the column tree for schema and binds it to the
// marker type T.
func DefineComponent[T any](schema Schema) (*Component, error) {
	st, err := NewStore(schema)
	if err != nil {
		return nil, err
	}
	return &Component{
		Store: st,
		elem:  table.FactoryNewElementType[T](),
		name:  reflect.TypeFor[T]().String(),
	}, nil
}

// MustDefineComponent is DefineComponent for schemas known at compile time; it panics on error.
func MustDefineComponent[T any](schema Schema) *Component {
	c, err := DefineComponent[T](schema)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Component) String() string {
	if c == nil {
		return "<nil>"
	}
	return c.name
}
