package silo

import (
	"fmt"
	"math"
)

// Column is the type-erased view of a single leaf field's storage.
type Column interface {
	Type() Type
	Len() int
	Cap() int
	MaxByteLength() int
	Grow(n int) error
	Float64(e Entity) float64
	SetFloat64(e Entity, v float64)
	Zero(e Entity)
}

var (
	_ Column = &Storage[int8]{}
	_ Column = &Storage[uint8]{}
	_ Column = &Storage[int16]{}
	_ Column = &Storage[uint16]{}
	_ Column = &Storage[int32]{}
	_ Column = &Storage[uint32]{}
	_ Column = &Storage[float32]{}
	_ Column = &Storage[float64]{}
)

// Storage is a dense column of T indexed by entity id.
//
// Memory is allocated in fixed-size pages that are never moved or released,
// so a pointer returned by Ptr stays valid for the life of the column no
// matter how far it grows afterwards. The ceiling is fixed at construction.
type Storage[T Number] struct {
	typ     Type
	pages   [][]T
	length  int
	ceiling int
	shift   uint
	mask    int
	growing bool
}

// NewColumn allocates an empty column for the given tag.
func NewColumn(t Type) (Column, error) {
	switch t {
	case I8:
		return newStorage[int8](t), nil
	case UI8, UI8C:
		return newStorage[uint8](t), nil
	case I16:
		return newStorage[int16](t), nil
	case UI16:
		return newStorage[uint16](t), nil
	case I32:
		return newStorage[int32](t), nil
	case UI32, EID:
		return newStorage[uint32](t), nil
	case F32:
		return newStorage[float32](t), nil
	case F64:
		return newStorage[float64](t), nil
	}
	return nil, UnsupportedTypeError{Type: t}
}

// As returns the concrete storage behind c when it holds elements of type T.
func As[T Number](c Column) (*Storage[T], bool) {
	s, ok := c.(*Storage[T])
	return s, ok
}

func newStorage[T Number](t Type) *Storage[T] {
	pageSize := Config.PageSize()
	shift := uint(0)
	for 1<<shift < pageSize {
		shift++
	}
	return &Storage[T]{
		typ:     t,
		ceiling: Config.MaxElements(),
		shift:   shift,
		mask:    pageSize - 1,
	}
}

func (s *Storage[T]) Type() Type {
	return s.typ
}

// Len returns the logical length.
func (s *Storage[T]) Len() int {
	return s.length
}

// Cap returns the ceiling in elements.
func (s *Storage[T]) Cap() int {
	return s.ceiling
}

func (s *Storage[T]) MaxByteLength() int {
	return s.ceiling * s.typ.Size()
}

// Grow extends the logical length to n in place. Shrinking is a no-op.
//
// Growth must not nest. Grow calls no outside code, so ReentrantGrowError is
// not expected in practice; it fails loudly if a growth hook is ever added.
func (s *Storage[T]) Grow(n int) error {
	if s.growing {
		return ReentrantGrowError{Type: s.typ}
	}
	if n <= s.length {
		return nil
	}
	if n > s.ceiling {
		return CapacityExceededError{Type: s.typ, Requested: n, Ceiling: s.ceiling}
	}
	s.growing = true
	defer func() { s.growing = false }()

	pageSize := s.mask + 1
	for len(s.pages)*pageSize < n {
		start := len(s.pages) * pageSize
		s.pages = append(s.pages, make([]T, min(pageSize, s.ceiling-start)))
	}
	s.length = n
	return nil
}

func (s *Storage[T]) Get(e Entity) T {
	s.check(e)
	return s.pages[int(e)>>s.shift][int(e)&s.mask]
}

func (s *Storage[T]) Set(e Entity, v T) {
	s.check(e)
	s.pages[int(e)>>s.shift][int(e)&s.mask] = v
}

// Ptr returns a stable pointer to the slot of e.
func (s *Storage[T]) Ptr(e Entity) *T {
	s.check(e)
	return &s.pages[int(e)>>s.shift][int(e)&s.mask]
}

func (s *Storage[T]) Zero(e Entity) {
	var zero T
	s.Set(e, zero)
}

func (s *Storage[T]) Float64(e Entity) float64 {
	return float64(s.Get(e))
}

// SetFloat64 converts v to the column's element type. Integer columns wrap
// like a two's-complement cast, clamped columns saturate and round half to
// even, and NaN or infinite values store zero in integer columns.
func (s *Storage[T]) SetFloat64(e Entity, v float64) {
	switch {
	case s.typ == UI8C:
		s.Set(e, T(clampUint8(v)))
	case s.typ.isFloat():
		s.Set(e, T(v))
	case math.IsNaN(v) || math.IsInf(v, 0):
		s.Zero(e)
	default:
		s.Set(e, T(int64(v)))
	}
}

// SetClamped stores v saturated to [0, 255] and rounded half to even.
func (s *Storage[T]) SetClamped(e Entity, v float64) {
	s.Set(e, T(clampUint8(v)))
}

// Pages exposes the backing pages for bulk iteration; entries past Len are unused.
func (s *Storage[T]) Pages() [][]T {
	return s.pages
}

func (s *Storage[T]) String() string {
	return fmt.Sprintf("%s[%d/%d]", s.typ, s.length, s.ceiling)
}

func (s *Storage[T]) check(e Entity) {
	if int(e) >= s.length {
		panic(fmt.Sprintf("silo: entity %d out of range for %s column of length %d", e, s.typ, s.length))
	}
}

func clampUint8(v float64) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.RoundToEven(v))
}
