package rsz

// Kind identifies how a field is laid out in the data segment.
type Kind uint8

const (
	KindBool Kind = iota
	KindU8
	KindS8
	KindU16
	KindS16
	KindU32
	KindS32
	KindU64
	KindS64
	KindF32
	KindF64
	KindString
	KindGUID
	KindVec2
	KindVec3
	KindVec4
	KindQuat
	KindMat4
	KindIVec3
	KindEnum
	KindFlags
	KindArray
	KindList
	KindOptional
	KindFlatten
	KindChild
	KindShared
	KindExtern
	KindAlign
	KindRecord
)

var kindNames = [...]string{
	KindBool:     "bool",
	KindU8:       "u8",
	KindS8:       "s8",
	KindU16:      "u16",
	KindS16:      "s16",
	KindU32:      "u32",
	KindS32:      "s32",
	KindU64:      "u64",
	KindS64:      "s64",
	KindF32:      "f32",
	KindF64:      "f64",
	KindString:   "string",
	KindGUID:     "guid",
	KindVec2:     "vec2",
	KindVec3:     "vec3",
	KindVec4:     "vec4",
	KindQuat:     "quat",
	KindMat4:     "mat4",
	KindIVec3:    "ivec3",
	KindEnum:     "enum",
	KindFlags:    "flags",
	KindArray:    "array",
	KindList:     "list",
	KindOptional: "optional",
	KindFlatten:  "flatten",
	KindChild:    "child",
	KindShared:   "shared",
	KindExtern:   "extern",
	KindAlign:    "align",
	KindRecord:   "record",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsInteger reports whether k is a fixed-width integer.
func (k Kind) IsInteger() bool {
	return k >= KindU8 && k <= KindS64
}

// IsSigned reports whether k is a signed integer.
func (k Kind) IsSigned() bool {
	switch k {
	case KindS8, KindS16, KindS32, KindS64:
		return true
	}
	return false
}

// IsPrimitive reports whether k decodes to a single *Prim.
func (k Kind) IsPrimitive() bool {
	return k <= KindFlags
}

// Size returns the number of payload bytes for fixed-size kinds, or 0.
func (k Kind) Size() int {
	switch k {
	case KindBool, KindU8, KindS8:
		return 1
	case KindU16, KindS16:
		return 2
	case KindU32, KindS32, KindF32:
		return 4
	case KindU64, KindS64, KindF64, KindVec2:
		return 8
	case KindVec3, KindIVec3:
		return 12
	case KindGUID, KindVec4, KindQuat:
		return 16
	case KindMat4:
		return 64
	}
	return 0
}

// Align returns the boundary the data segment is padded to before the field.
func (k Kind) Align() int {
	switch k {
	case KindU16, KindS16:
		return 2
	case KindU32, KindS32, KindF32, KindIVec3,
		KindString, KindList, KindChild, KindShared, KindExtern:
		return 4
	case KindU64, KindS64, KindF64, KindGUID:
		return 8
	case KindVec2, KindVec3, KindVec4, KindQuat, KindMat4:
		return 16
	}
	return 1
}

// trailingAlign is the boundary some vector kinds pad to after their payload.
func (k Kind) trailingAlign() int {
	switch k {
	case KindVec2, KindVec3:
		return 16
	}
	return 1
}
