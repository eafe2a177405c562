package rsz

import (
	"fmt"
	"math/bits"

	"github.com/wippyai/rsz/version"
)

// Field declares one entry of a schema's layout.
type Field struct {
	Name     string
	Kind     Kind
	Elem     *Field       // array, list and optional payload
	Len      int          // fixed array length, or the boundary of an Align
	Wide     bool         // list count is 64-bit
	Nullable bool         // string and reference kinds: zero means absent
	Enum     *EnumType    // KindEnum
	Flags    *FlagsType   // KindFlags
	Schema   *Schema      // KindFlatten
	Gate     version.Gate // zero gate: always present
}

// EnumType is a closed set of named integer values.
type EnumType struct {
	Name   string
	Base   Kind
	Values map[int64]string
}

// FlagsType names the bits of an integer bitfield.
type FlagsType struct {
	Name string
	Base Kind
	Bits []FlagBit
}

// FlagBit is one named bit or mask of a FlagsType.
type FlagBit struct {
	Name string
	Mask uint64
}

func scalar(name string, k Kind) Field { return Field{Name: name, Kind: k} }

func Bool(name string) Field { return scalar(name, KindBool) }
func U8(name string) Field   { return scalar(name, KindU8) }
func S8(name string) Field   { return scalar(name, KindS8) }
func U16(name string) Field  { return scalar(name, KindU16) }
func S16(name string) Field  { return scalar(name, KindS16) }
func U32(name string) Field  { return scalar(name, KindU32) }
func S32(name string) Field  { return scalar(name, KindS32) }
func U64(name string) Field  { return scalar(name, KindU64) }
func S64(name string) Field  { return scalar(name, KindS64) }
func F32(name string) Field  { return scalar(name, KindF32) }
func F64(name string) Field  { return scalar(name, KindF64) }
func Guid(name string) Field { return scalar(name, KindGUID) }
func Vec2(name string) Field { return scalar(name, KindVec2) }
func Vec3(name string) Field { return scalar(name, KindVec3) }
func Vec4(name string) Field { return scalar(name, KindVec4) }
func Quat(name string) Field { return scalar(name, KindQuat) }
func Mat4(name string) Field { return scalar(name, KindMat4) }

// IVec3 is three signed 32-bit integers.
func IVec3(name string) Field { return scalar(name, KindIVec3) }

// String is a count-prefixed UTF-16 string. A zero count is an error.
func String(name string) Field { return scalar(name, KindString) }

// StringOpt is a String where a zero count decodes as absent.
func StringOpt(name string) Field {
	return Field{Name: name, Kind: KindString, Nullable: true}
}

// Array is n consecutive elements with no count prefix.
func Array(name string, n int, elem Field) Field {
	return Field{Name: name, Kind: KindArray, Len: n, Elem: &elem}
}

// List is a u32 count followed by that many elements.
func List(name string, elem Field) Field {
	return Field{Name: name, Kind: KindList, Elem: &elem}
}

// List64 is a List with a u64 count.
func List64(name string, elem Field) Field {
	return Field{Name: name, Kind: KindList, Wide: true, Elem: &elem}
}

// Option is a one-byte presence flag followed by the payload when set.
// It decodes to an *Optional.
func Option(name string, elem Field) Field {
	return Field{Name: name, Kind: KindOptional, Elem: &elem}
}

// Flatten decodes the fields of s in place, as part of the enclosing record.
func Flatten(s *Schema) Field {
	return Field{Kind: KindFlatten, Schema: s}
}

// Child is an exclusively owned object reference. Index 0 is an error.
func Child(name string) Field { return scalar(name, KindChild) }

// ChildOpt is a Child where index 0 decodes as absent.
func ChildOpt(name string) Field {
	return Field{Name: name, Kind: KindChild, Nullable: true}
}

// Shared is an object reference that other fields may also hold.
func Shared(name string) Field { return scalar(name, KindShared) }

// SharedOpt is a Shared where index 0 decodes as absent.
func SharedOpt(name string) Field {
	return Field{Name: name, Kind: KindShared, Nullable: true}
}

// Extern is a reference to a slot named in the block's string table.
func Extern(name string) Field { return scalar(name, KindExtern) }

// ExternOpt is an Extern where index 0 decodes as absent.
func ExternOpt(name string) Field {
	return Field{Name: name, Kind: KindExtern, Nullable: true}
}

// Align pads the data segment to a multiple of n. It produces no value.
func Align(n int) Field {
	return Field{Kind: KindAlign, Len: n}
}

// Enum is an integer of t.Base whose value must be one of t.Values.
func Enum(name string, t *EnumType) Field {
	return Field{Name: name, Kind: KindEnum, Enum: t}
}

// Flags is an integer of t.Base. Any bit pattern is accepted.
func Flags(name string, t *FlagsType) Field {
	return Field{Name: name, Kind: KindFlags, Flags: t}
}

// Versioned makes f present only when the schema version is at least min.
func Versioned(min version.Version, f Field) Field {
	f.Gate = version.Since(min)
	return f
}

// VersionedRange makes f present only for schema versions in [min, max].
func VersionedRange(min, max version.Version, f Field) Field {
	f.Gate = version.Between(min, max)
	return f
}

// Validate checks that the field is well formed.
func (f *Field) Validate() error {
	return f.validate(map[*Schema]bool{})
}

func (f *Field) validate(seen map[*Schema]bool) error {
	switch f.Kind {
	case KindArray, KindList, KindOptional:
		if f.Elem == nil {
			return fmt.Errorf("%s %q: missing element", f.Kind, f.Name)
		}
		if f.Kind == KindArray && f.Len < 0 {
			return fmt.Errorf("array %q: negative length %d", f.Name, f.Len)
		}
		if f.Elem.Kind == KindAlign || f.Elem.Kind == KindFlatten {
			return fmt.Errorf("%s %q: element cannot be %s", f.Kind, f.Name, f.Elem.Kind)
		}
		if !f.Elem.Gate.IsZero() {
			return fmt.Errorf("%s %q: element cannot be versioned (%s), gate the %s instead", f.Kind, f.Name, f.Elem.Gate, f.Kind)
		}
		return f.Elem.validate(seen)
	case KindAlign:
		if f.Len <= 0 || bits.OnesCount(uint(f.Len)) != 1 {
			return fmt.Errorf("align: boundary %d is not a power of two", f.Len)
		}
	case KindEnum:
		if f.Enum == nil || !f.Enum.Base.IsInteger() {
			return fmt.Errorf("enum %q: base must be an integer kind", f.Name)
		}
	case KindFlags:
		if f.Flags == nil || !f.Flags.Base.IsInteger() {
			return fmt.Errorf("flags %q: base must be an integer kind", f.Name)
		}
	case KindFlatten:
		if f.Schema == nil {
			return fmt.Errorf("flatten: missing schema")
		}
		if seen[f.Schema] {
			return fmt.Errorf("flatten: %s includes itself", f.Schema.Symbol)
		}
		seen[f.Schema] = true
		defer delete(seen, f.Schema)
		return f.Schema.validateFields(seen)
	case KindRecord:
		return fmt.Errorf("field %q: record is not a field kind", f.Name)
	}
	return nil
}

func (t *FlagsType) names(v uint64) ([]string, uint64) {
	var names []string
	rest := v
	for _, b := range t.Bits {
		if b.Mask != 0 && v&b.Mask == b.Mask {
			names = append(names, b.Name)
			rest &^= b.Mask
		}
	}
	return names, rest
}
