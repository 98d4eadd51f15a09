package silo

// Type is the tag naming the element type of a column.
type Type string

const (
	I8   Type = "i8"
	UI8  Type = "ui8"
	UI8C Type = "ui8c" // uint8, clamped on float writes
	I16  Type = "i16"
	UI16 Type = "ui16"
	I32  Type = "i32"
	UI32 Type = "ui32"
	F32  Type = "f32"
	F64  Type = "f64"
	EID  Type = "eid" // alias of ui32 holding entity ids
)

// Types lists every recognized tag.
var Types = []Type{I8, UI8, UI8C, I16, UI16, I32, UI32, F32, F64, EID}

// Valid reports whether t is a recognized tag.
func (t Type) Valid() bool {
	return t.Size() != 0
}

// Size returns the element width in bytes, or 0 for an unrecognized tag.
func (t Type) Size() int {
	switch t {
	case I8, UI8, UI8C:
		return 1
	case I16, UI16:
		return 2
	case I32, UI32, F32, EID:
		return 4
	case F64:
		return 8
	}
	return 0
}

func (t Type) isFloat() bool {
	return t == F32 || t == F64
}

// Number is the set of element types a column can hold.
type Number interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~float32 | ~float64
}

// Entity is an opaque handle usable as an index into any column.
type Entity uint32
