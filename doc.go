// Package rsz decodes RSZ blocks: versioned, self-describing object graphs
// whose types are identified only by opaque structural hashes.
//
// # Block Layout
//
//	magic "RSZ\0", format_version u32, object_count u32,
//	descriptor_count u32, string_count u32, padding u32 (0),
//	descriptor_table u64, data u64, string_table u64   (base-relative)
//	object_index_list  object_count × u32
//	descriptor_table   descriptor_count × u64          (entry 0 == 0)
//	string_table       string_count × {slot u32, hash u32, offset u64}
//	data segment       objects in descriptor order
//
// Every seek between sections is a checked claim: a gap, a misaligned
// target or a non-zero padding byte fails the decode with the offset and
// the expected and actual values.
//
// # Field Layout
//
// Fields are naturally aligned within the data segment:
//
//	Kind                 Size    Alignment
//	───────────────────────────────────────
//	bool, u8, s8         1       1
//	u16, s16             2       2
//	u32, s32, f32        4       4
//	u64, s64, f64        8       8
//	guid                 16      8
//	vec2, vec3           8, 12   16 (and padded to 16 after)
//	vec4, quat, mat4     16, 64  16
//	ivec3                12      4
//	string               4+2n    4  (u32 unit count incl. NUL)
//	list                 4+...   4  (u32 count; 8/8 for List64)
//	child, shared        4       4  (object table index)
//	extern               4       4  (index of a string table slot)
//
// # Key Types
//
//	Registry   - immutable map from structural hash to decode routine
//	Schema     - declarative field list producing a TypeInfo
//	Decoder    - reads fields for one object at a fixed SchemaVersion
//	Builder    - runs Start → ReadingHeader → ReadingTables →
//	             DecodingObjects → Done, or Failed
//	Graph      - object table and roots of a decoded block
//	Node       - *Prim, *Seq, *Record, *Optional, *Ref, *ExternRef
//
// # Decoding Flow
//
//  1. reg := rsz.MustRegistry(schema.TypeInfo(), ...)
//  2. g, err := rsz.Decode(data, base, reg, rsz.Options{SchemaVersion: v})
//  3. Render with json.Marshal(g) or rsz.Dump, or copy into Go structs
//     with rsz.Unmarshal.
//
// Objects may only reference objects that precede them. A Child field
// claims its object exclusively; Shared fields resolve to the same *Object
// every time. After the last object every decoded object must be a root or
// referenced, and the data segment must be fully consumed.
package rsz
