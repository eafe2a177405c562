package rsz

// Node is a decoded value: one of *Prim, *Seq, *Record, *Optional, *Ref or
// *ExternRef. The set is closed.
type Node interface {
	Kind() Kind
	node()
}

// Prim is a primitive value. V holds the Go value for Type:
//
//	bool                          KindBool
//	uint8..int64                  integer kinds
//	float32, float64              KindF32, KindF64
//	string                        KindString
//	GUID                          KindGUID
//	[]float32                     vectors, quaternions and matrices
//	[3]int32                      KindIVec3
//	EnumValue                     KindEnum
//	FlagSet                       KindFlags
type Prim struct {
	Type Kind
	V    any
}

// Seq is a fixed array or counted list.
type Seq struct {
	Type  Kind
	Elems []Node
}

// Record is a decoded schema instance with fields in declaration order.
type Record struct {
	Symbol string
	Fields []Member
}

// Member is one named field of a Record.
type Member struct {
	Name  string
	Value Node
}

// Optional is a value that may be absent: a nullable reference or string, a
// discriminated optional, or a version-gated field.
type Optional struct {
	Value Node
}

// Ref points at another object of the same block. Owned children are
// claimed once; shared references resolve to the same *Object every time.
type Ref struct {
	Index  uint32
	Shared bool
	Object *Object
}

// ExternRef points at a resource outside the block by path.
type ExternRef struct {
	Index uint32
	Path  string
}

// EnumValue is a validated enumeration value.
type EnumValue struct {
	Raw  int64
	Name string
}

func (e EnumValue) String() string {
	return e.Name
}

// FlagSet is a bitfield. Unknown holds set bits that have no declared name.
type FlagSet struct {
	Bits    uint64
	Names   []string
	Unknown uint64
}

func (*Prim) node()      {}
func (*Seq) node()       {}
func (*Record) node()    {}
func (*Optional) node()  {}
func (*Ref) node()       {}
func (*ExternRef) node() {}

func (p *Prim) Kind() Kind    { return p.Type }
func (s *Seq) Kind() Kind     { return s.Type }
func (*Record) Kind() Kind    { return KindRecord }
func (*Optional) Kind() Kind  { return KindOptional }
func (*ExternRef) Kind() Kind { return KindExtern }

func (r *Ref) Kind() Kind {
	if r.Shared {
		return KindShared
	}
	return KindChild
}

// Uint returns the value of an unsigned integer, flag or non-negative
// signed integer.
func (p *Prim) Uint() (uint64, bool) {
	switch v := p.V.(type) {
	case uint8:
		return uint64(v), true
	case uint16:
		return uint64(v), true
	case uint32:
		return uint64(v), true
	case uint64:
		return v, true
	case FlagSet:
		return v.Bits, true
	}
	if i, ok := p.Int(); ok && i >= 0 {
		return uint64(i), true
	}
	return 0, false
}

// Int returns the value of a signed integer, enum or unsigned integer that
// fits in int64.
func (p *Prim) Int() (int64, bool) {
	switch v := p.V.(type) {
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		if v <= 1<<63-1 {
			return int64(v), true
		}
	case EnumValue:
		return v.Raw, true
	}
	return 0, false
}

// Float returns the value of a float.
func (p *Prim) Float() (float64, bool) {
	switch v := p.V.(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// Bool returns the value of a boolean.
func (p *Prim) Bool() (bool, bool) {
	v, ok := p.V.(bool)
	return v, ok
}

// Str returns the value of a string.
func (p *Prim) Str() (string, bool) {
	v, ok := p.V.(string)
	return v, ok
}

// GUID returns the value of a GUID.
func (p *Prim) GUID() (GUID, bool) {
	v, ok := p.V.(GUID)
	return v, ok
}

// Floats returns the components of a vector, quaternion or matrix.
func (p *Prim) Floats() ([]float32, bool) {
	v, ok := p.V.([]float32)
	return v, ok
}

// Get returns the field named name.
func (r *Record) Get(name string) (Node, bool) {
	for _, m := range r.Fields {
		if m.Name == name {
			return m.Value, true
		}
	}
	return nil, false
}

// Present reports whether the optional holds a value.
func (o *Optional) Present() bool {
	return o.Value != nil
}

// Target returns the referenced object's value.
func (r *Ref) Target() Node {
	if r.Object == nil {
		return nil
	}
	return r.Object.Value
}

// Deref follows optionals and references until it reaches a value that is
// neither. Absent optionals yield nil.
func Deref(n Node) Node {
	for {
		switch v := n.(type) {
		case *Optional:
			if v.Value == nil {
				return nil
			}
			n = v.Value
		case *Ref:
			n = v.Target()
		default:
			return n
		}
	}
}
