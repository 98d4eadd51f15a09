package silo

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rotisserie/eris"
)

// Store is the structure-of-arrays tree built from a Schema. Every leaf is a
// Column indexed by entity id; nested schemas become child stores and fixed
// lists become vectors of columns.
type Store struct {
	schema   Schema
	keys     []string
	columns  map[string]Column
	vectors  map[string]*Vector
	children map[string]*Store
}

// Vector holds one column per slot of a fixed-length list field.
type Vector struct {
	typ   Type
	slots []Column
}

// NewStore builds a store for schema. Either the whole tree is returned or
// nothing is: the first failing field aborts the build and its error is
// returned wrapped with the field's dotted path.
func NewStore(schema Schema) (*Store, error) {
	return buildStore(schema)
}

func buildStore(schema Schema) (*Store, error) {
	st := &Store{
		schema:   schema,
		keys:     schema.Keys(),
		columns:  make(map[string]Column),
		vectors:  make(map[string]*Vector),
		children: make(map[string]*Store),
	}
	for _, key := range st.keys {
		switch f := schema[key].(type) {
		case Primitive:
			col, err := NewColumn(f.Type)
			if err != nil {
				return nil, eris.Wrapf(err, "field %q", key)
			}
			st.columns[key] = col
		case FixedList:
			vec, err := newVector(f)
			if err != nil {
				return nil, eris.Wrapf(err, "field %q", key)
			}
			st.vectors[key] = vec
		case Schema:
			child, err := buildStore(f)
			if err != nil {
				return nil, eris.Wrapf(err, "field %q", key)
			}
			st.children[key] = child
		default:
			return nil, eris.Wrapf(InvalidFieldError{Value: f}, "field %q", key)
		}
	}
	return st, nil
}

func newVector(f FixedList) (*Vector, error) {
	if f.Length < 1 {
		return nil, InvalidFieldError{Value: f}
	}
	vec := &Vector{typ: f.Type, slots: make([]Column, f.Length)}
	for i := range vec.slots {
		col, err := NewColumn(f.Type)
		if err != nil {
			return nil, err
		}
		vec.slots[i] = col
	}
	return vec, nil
}

func (st *Store) Schema() Schema {
	return st.schema
}

// Keys returns the field names of this level in build order.
func (st *Store) Keys() []string {
	return st.keys
}

func (st *Store) Column(name string) (Column, bool) {
	col, ok := st.columns[name]
	return col, ok
}

func (st *Store) Vector(name string) (*Vector, bool) {
	vec, ok := st.vectors[name]
	return vec, ok
}

func (st *Store) Child(name string) (*Store, bool) {
	child, ok := st.children[name]
	return child, ok
}

// Lookup resolves a dotted path such as "transform.position" to a Column,
// *Vector or *Store. It returns nil when the path does not exist.
func (st *Store) Lookup(path string) any {
	parts := strings.Split(path, ".")
	cur := st
	for i, part := range parts {
		last := i == len(parts)-1
		if col, ok := cur.columns[part]; ok && last {
			return col
		}
		if vec, ok := cur.vectors[part]; ok && last {
			return vec
		}
		child, ok := cur.children[part]
		if !ok {
			return nil
		}
		if last {
			return child
		}
		cur = child
	}
	return nil
}

// Leaves calls fn for every column in the tree, depth first in key order.
func (st *Store) Leaves(fn func(path string, col Column)) {
	st.leaves("", fn)
}

func (st *Store) leaves(prefix string, fn func(string, Column)) {
	for _, key := range st.keys {
		path := prefix + key
		if col, ok := st.columns[key]; ok {
			fn(path, col)
		} else if vec, ok := st.vectors[key]; ok {
			for _, slot := range vec.slots {
				fn(path, slot)
			}
		} else if child, ok := st.children[key]; ok {
			child.leaves(path+".", fn)
		}
	}
}

// Grow grows every leaf column to n elements. It stops at the first failure,
// which leaves earlier columns grown.
func (st *Store) Grow(n int) error {
	var err error
	st.Leaves(func(path string, col Column) {
		if err != nil {
			return
		}
		if growErr := col.Grow(n); growErr != nil {
			err = eris.Wrapf(growErr, "field %q", path)
		}
	})
	return err
}

// Len returns the smallest logical length across the leaves, which is the
// range of entity ids valid in every column at once.
func (st *Store) Len() int {
	length := -1
	st.Leaves(func(_ string, col Column) {
		if length < 0 || col.Len() < length {
			length = col.Len()
		}
	})
	if length < 0 {
		return 0
	}
	return length
}

// Zero resets every leaf slot of e.
func (st *Store) Zero(e Entity) {
	st.Leaves(func(_ string, col Column) {
		if int(e) < col.Len() {
			col.Zero(e)
		}
	})
}

func (v *Vector) Type() Type {
	return v.typ
}

func (v *Vector) Len() int {
	return len(v.slots)
}

func (v *Vector) Slot(i int) Column {
	return v.slots[i]
}

// Values reads every slot of e as float64.
func (v *Vector) Values(e Entity) []float64 {
	out := make([]float64, len(v.slots))
	for i, slot := range v.slots {
		out[i] = slot.Float64(e)
	}
	return out
}

// Vec3 reads a three slot f64 vector. It panics on any other shape.
func (v *Vector) Vec3(e Entity) mgl64.Vec3 {
	x, y, z := v.f64Slots()
	return mgl64.Vec3{x.Get(e), y.Get(e), z.Get(e)}
}

func (v *Vector) SetVec3(e Entity, val mgl64.Vec3) {
	x, y, z := v.f64Slots()
	x.Set(e, val[0])
	y.Set(e, val[1])
	z.Set(e, val[2])
}

// Vec3f reads a three slot f32 vector. It panics on any other shape.
func (v *Vector) Vec3f(e Entity) mgl32.Vec3 {
	x, y, z := v.f32Slots()
	return mgl32.Vec3{x.Get(e), y.Get(e), z.Get(e)}
}

func (v *Vector) SetVec3f(e Entity, val mgl32.Vec3) {
	x, y, z := v.f32Slots()
	x.Set(e, val[0])
	y.Set(e, val[1])
	z.Set(e, val[2])
}

func (v *Vector) f64Slots() (x, y, z *Storage[float64]) {
	if len(v.slots) != 3 || v.typ != F64 {
		panic("silo: Vec3 requires a three slot f64 vector, got " + string(v.typ))
	}
	return v.slots[0].(*Storage[float64]), v.slots[1].(*Storage[float64]), v.slots[2].(*Storage[float64])
}

func (v *Vector) f32Slots() (x, y, z *Storage[float32]) {
	if len(v.slots) != 3 || v.typ != F32 {
		panic("silo: Vec3f requires a three slot f32 vector, got " + string(v.typ))
	}
	return v.slots[0].(*Storage[float32]), v.slots[1].(*Storage[float32]), v.slots[2].(*Storage[float32])
}
