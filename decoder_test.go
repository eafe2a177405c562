package rsz

import (
	"testing"

	"github.com/wippyai/rsz/errors"
	"github.com/wippyai/rsz/rsztest"
	"github.com/wippyai/rsz/version"
)

func decodeFields(t *testing.T, data []byte, v version.Version, fields ...Field) (*Record, int) {
	t.Helper()
	s := &Schema{Symbol: "test.Fields", Hash: 1, Fields: fields}
	info := s.TypeInfo()
	n, consumed, err := DecodeStandalone(&info, data, v)
	if err != nil {
		t.Fatalf("DecodeStandalone: %v", err)
	}
	return n.(*Record), consumed
}

func decodeFieldsErr(data []byte, fields ...Field) error {
	s := &Schema{Symbol: "test.Fields", Hash: 1, Fields: fields}
	info := s.TypeInfo()
	_, _, err := DecodeStandalone(&info, data, 0)
	return err
}

func field(t *testing.T, rec *Record, name string) Node {
	t.Helper()
	n, ok := rec.Get(name)
	if !ok {
		t.Fatalf("record %s has no field %q", rec.Symbol, name)
	}
	return n
}

func TestVersionGateConsumption(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		write func(w *rsztest.Writer)
		size  int
	}{
		{"u8", U8("x"), func(w *rsztest.Writer) { w.Byte(7) }, 1},
		{"u32", U32("x"), func(w *rsztest.Writer) { w.U32(7) }, 4},
		{"f64", F64("x"), func(w *rsztest.Writer) { w.F64(1.5) }, 8},
		{"bool", Bool("x"), func(w *rsztest.Writer) { w.Bool(true) }, 1},
		{"guid", Guid("x"), func(w *rsztest.Writer) { w.GUID([16]byte{1}) }, 16},
		{"mat4", Mat4("x"), func(w *rsztest.Writer) { w.Vec(make([]float32, 16)...) }, 64},
	}

	const gate = version.Version(13_00_00)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := rsztest.NewWriter()
			tt.write(w)
			data := w.Bytes()
			f := Versioned(gate, tt.field)

			for _, v := range []version.Version{0, 12_99_99} {
				rec, n := decodeFields(t, data, v, f)
				if n != 0 {
					t.Errorf("version %s consumed %d bytes, want 0", v, n)
				}
				if field(t, rec, "x").(*Optional).Present() {
					t.Errorf("version %s: field should be absent", v)
				}
			}
			for _, v := range []version.Version{gate, 15_00_00} {
				rec, n := decodeFields(t, data, v, f)
				if n != tt.size {
					t.Errorf("version %s consumed %d bytes, want %d", v, n, tt.size)
				}
				if !field(t, rec, "x").(*Optional).Present() {
					t.Errorf("version %s: field should be present", v)
				}
			}
		})
	}
}

func TestVersionGateOnElements(t *testing.T) {
	w := rsztest.NewWriter()
	w.U32(7)
	data := w.Bytes()
	f := Array("a", 1, Versioned(10_00_00, U32("")))

	rec, n := decodeFields(t, data, 0, f)
	if n != 0 {
		t.Errorf("version 0 consumed %d bytes, want 0", n)
	}
	seq := field(t, rec, "a").(*Seq)
	if len(seq.Elems) != 1 || seq.Elems[0].(*Optional).Present() {
		t.Errorf("elements = %#v, want one absent element", seq.Elems)
	}

	rec, n = decodeFields(t, data, 10_00_00, f)
	if n != 4 {
		t.Errorf("version 10.0.0 consumed %d bytes, want 4", n)
	}
	elem := field(t, rec, "a").(*Seq).Elems[0].(*Optional)
	if !elem.Present() || elem.Value.(*Prim).V != uint32(7) {
		t.Errorf("element = %#v, want present 7", elem)
	}
}

func TestVersionRangeGate(t *testing.T) {
	f := VersionedRange(10_00_00, 11_00_00, U32("x"))
	w := rsztest.NewWriter()
	w.U32(1)
	for _, tt := range []struct {
		v    version.Version
		size int
	}{{9_00_00, 0}, {10_00_00, 4}, {11_00_00, 4}, {11_00_01, 0}} {
		if _, n := decodeFields(t, w.Bytes(), tt.v, f); n != tt.size {
			t.Errorf("version %s consumed %d, want %d", tt.v, n, tt.size)
		}
	}
}

func TestDecodePrimitives(t *testing.T) {
	w := rsztest.NewWriter()
	w.Bool(true)
	w.Byte(0xFE) // s8 -2
	w.U16(0xBEEF)
	w.S32(-5)
	w.U64(1 << 40)
	w.F32(0.5)
	w.F64(-2.25)
	w.GUID([16]byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88, 0x99, 0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF})

	rec, n := decodeFields(t, w.Bytes(), 0,
		Bool("b"), S8("s8"), U16("u16"), S32("s32"), U64("u64"), F32("f32"), F64("f64"), Guid("id"))
	if n != w.Len() {
		t.Errorf("consumed %d of %d bytes", n, w.Len())
	}

	if v, _ := field(t, rec, "b").(*Prim).Bool(); !v {
		t.Error("b = false")
	}
	if v, _ := field(t, rec, "s8").(*Prim).Int(); v != -2 {
		t.Errorf("s8 = %d", v)
	}
	if v, _ := field(t, rec, "u16").(*Prim).Uint(); v != 0xBEEF {
		t.Errorf("u16 = 0x%X", v)
	}
	if v, _ := field(t, rec, "s32").(*Prim).Int(); v != -5 {
		t.Errorf("s32 = %d", v)
	}
	if v, _ := field(t, rec, "u64").(*Prim).Uint(); v != 1<<40 {
		t.Errorf("u64 = %d", v)
	}
	if v, _ := field(t, rec, "f32").(*Prim).Float(); v != 0.5 {
		t.Errorf("f32 = %v", v)
	}
	if v, _ := field(t, rec, "f64").(*Prim).Float(); v != -2.25 {
		t.Errorf("f64 = %v", v)
	}
	g, _ := field(t, rec, "id").(*Prim).GUID()
	if g.String() != "33221100-5544-7766-8899-aabbccddeeff" {
		t.Errorf("guid = %s", g)
	}
}

func TestDecodeAlignment(t *testing.T) {
	tests := []struct {
		name   string
		fields []Field
		data   []byte
		want   int
	}{
		{"u16 after u8", []Field{U8("a"), U16("b")}, []byte{1, 0, 2, 0}, 4},
		{"u64 after u8", []Field{U8("a"), U64("b")}, append([]byte{1, 0, 0, 0, 0, 0, 0, 0}, make([]byte, 8)...), 16},
		{"guid after u8", []Field{U8("a"), Guid("b")}, make([]byte, 24), 24},
		{"vec2 pads after", []Field{Vec2("a"), U8("b")}, make([]byte, 17), 17},
		{"vec3 pads after", []Field{Vec3("a")}, make([]byte, 16), 16},
		{"vec4 after u8", []Field{U8("a"), Vec4("b")}, make([]byte, 32), 32},
		{"ivec3 aligns to 4", []Field{U8("a"), IVec3("b")}, make([]byte, 16), 16},
		{"explicit align", []Field{U8("a"), Align(8), U8("b")}, make([]byte, 9), 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, n := decodeFields(t, tt.data, 0, tt.fields...)
			if n != tt.want {
				t.Errorf("consumed %d bytes, want %d", n, tt.want)
			}
		})
	}
}

func TestDecodeNonZeroPadding(t *testing.T) {
	err := decodeFieldsErr([]byte{1, 0, 7, 0, 2, 0, 0, 0}, U8("a"), U32("b"))
	var e *errors.Error
	if !errors.As(err, &e) || e.Kind != errors.KindNonZeroPadding {
		t.Fatalf("expected non_zero_padding, got %v", err)
	}
	if e.Offset != 2 || e.Actual != byte(7) {
		t.Errorf("Offset/Actual = %d/%v", e.Offset, e.Actual)
	}
	if len(e.Path) != 1 || e.Path[0] != "b" || e.Symbol != "test.Fields" {
		t.Errorf("Symbol/Path = %q/%v", e.Symbol, e.Path)
	}
}

func TestDecodeStrings(t *testing.T) {
	w := rsztest.NewWriter()
	w.Byte(1)
	w.String("héllo")
	w.NullString()
	w.String("")

	rec, n := decodeFields(t, w.Bytes(), 0, U8("pad"), String("s"), StringOpt("none"), StringOpt("empty"))
	if n != w.Len() {
		t.Errorf("consumed %d of %d", n, w.Len())
	}
	if s, _ := field(t, rec, "s").(*Prim).Str(); s != "héllo" {
		t.Errorf("s = %q", s)
	}
	if field(t, rec, "none").(*Optional).Present() {
		t.Error("none should be absent")
	}
	empty := field(t, rec, "empty").(*Optional)
	if s, _ := empty.Value.(*Prim).Str(); !empty.Present() || s != "" {
		t.Errorf("empty = %+v", empty.Value)
	}
}

func TestDecodeStringErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		kind errors.Kind
	}{
		{"null required", []byte{0, 0, 0, 0}, errors.KindNullReference},
		{"missing terminator", []byte{1, 0, 0, 0, 'a', 0}, errors.KindInvalidUTF16},
		{"lone surrogate", []byte{2, 0, 0, 0, 0x00, 0xD8, 0, 0}, errors.KindInvalidUTF16},
		{"count past end", []byte{9, 0, 0, 0, 'a', 0}, errors.KindTruncated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := decodeFieldsErr(tt.data, String("s")); !errors.IsKind(err, tt.kind) {
				t.Errorf("expected %s, got %v", tt.kind, err)
			}
		})
	}
}

func TestDecodeSequences(t *testing.T) {
	w := rsztest.NewWriter()
	w.U16(1)
	w.U16(2)
	w.U16(3)
	w.U32(2) // list count
	w.U32(10)
	w.U32(20)
	w.U64(1) // list64 count
	w.Byte(9)

	rec, n := decodeFields(t, w.Bytes(), 0,
		Array("fixed", 3, U16("")),
		List("list", U32("")),
		List64("wide", U8("")),
	)
	if n != w.Len() {
		t.Errorf("consumed %d of %d", n, w.Len())
	}
	fixed := field(t, rec, "fixed").(*Seq)
	if fixed.Kind() != KindArray || len(fixed.Elems) != 3 {
		t.Fatalf("fixed = %+v", fixed)
	}
	if v, _ := fixed.Elems[2].(*Prim).Uint(); v != 3 {
		t.Errorf("fixed[2] = %d", v)
	}
	list := field(t, rec, "list").(*Seq)
	if list.Kind() != KindList || len(list.Elems) != 2 {
		t.Fatalf("list = %+v", list)
	}
	if v, _ := list.Elems[1].(*Prim).Uint(); v != 20 {
		t.Errorf("list[1] = %d", v)
	}
	if wide := field(t, rec, "wide").(*Seq); len(wide.Elems) != 1 {
		t.Errorf("wide = %+v", wide)
	}
}

func TestDecodeListErrors(t *testing.T) {
	err := decodeFieldsErr([]byte{0xFF, 0xFF, 0xFF, 0x7F}, List("xs", U8("")))
	if !errors.IsKind(err, errors.KindArrayLength) {
		t.Fatalf("expected array_length, got %v", err)
	}

	err = decodeFieldsErr([]byte{2, 0, 0, 0, 1, 0, 0, 0, 0, 0}, List("xs", U32("")))
	var e *errors.Error
	if !errors.As(err, &e) || e.Kind != errors.KindTruncated {
		t.Fatalf("expected truncated, got %v", err)
	}
	if len(e.Path) != 2 || e.Path[0] != "xs" || e.Path[1] != "[1]" {
		t.Errorf("Path = %v", e.Path)
	}
}

func TestDecodeOptional(t *testing.T) {
	rec, n := decodeFields(t, []byte{0, 1, 5}, 0, Option("none", U8("")), Option("some", U8("")))
	if n != 3 {
		t.Errorf("consumed %d, want 3", n)
	}
	if field(t, rec, "none").(*Optional).Present() {
		t.Error("none should be absent")
	}
	some := field(t, rec, "some").(*Optional)
	if v, _ := some.Value.(*Prim).Uint(); v != 5 {
		t.Errorf("some = %v", some.Value)
	}

	if err := decodeFieldsErr([]byte{2, 5}, Option("bad", U8(""))); !errors.IsKind(err, errors.KindInvalidBoolean) {
		t.Errorf("expected invalid_boolean, got %v", err)
	}
}

var colorKind = &EnumType{
	Name: "test.ColorKind",
	Base: KindS32,
	Values: map[int64]string{
		0: "None",
		1: "Red",
		2: "Blue",
	},
}

var accessFlags = &FlagsType{
	Name: "test.Access",
	Base: KindU8,
	Bits: []FlagBit{{"Read", 1}, {"Write", 2}, {"Exec", 4}},
}

func TestDecodeEnumAndFlags(t *testing.T) {
	w := rsztest.NewWriter()
	w.S32(2)
	w.Byte(0x13)
	rec, _ := decodeFields(t, w.Bytes(), 0, Enum("kind", colorKind), Flags("access", accessFlags))

	e := field(t, rec, "kind").(*Prim).V.(EnumValue)
	if e.Name != "Blue" || e.Raw != 2 {
		t.Errorf("kind = %+v", e)
	}
	fs := field(t, rec, "access").(*Prim).V.(FlagSet)
	if fs.Bits != 0x13 || fs.Unknown != 0x10 || len(fs.Names) != 2 || fs.Names[0] != "Read" || fs.Names[1] != "Write" {
		t.Errorf("access = %+v", fs)
	}

	bad := rsztest.NewWriter()
	bad.S32(7)
	err := decodeFieldsErr(bad.Bytes(), Enum("kind", colorKind))
	var ee *errors.Error
	if !errors.As(err, &ee) || ee.Kind != errors.KindInvalidEnum {
		t.Fatalf("expected invalid_enum, got %v", err)
	}
	if ee.Actual != int64(7) || ee.Offset != 0 {
		t.Errorf("Actual/Offset = %v/%d", ee.Actual, ee.Offset)
	}
}

func TestDecodeFlatten(t *testing.T) {
	base := &Schema{Symbol: "test.Base", Hash: 2, Fields: []Field{U32("id"), Bool("enabled")}}
	w := rsztest.NewWriter()
	w.U32(4)
	w.Bool(true)
	w.U32(8)

	rec, n := decodeFields(t, w.Bytes(), 0, Flatten(base), U32("extra"))
	if n != w.Len() {
		t.Errorf("consumed %d of %d", n, w.Len())
	}
	if len(rec.Fields) != 3 || rec.Fields[0].Name != "id" || rec.Fields[1].Name != "enabled" || rec.Fields[2].Name != "extra" {
		t.Errorf("fields = %+v", rec.Fields)
	}
}

func TestDecodeVectors(t *testing.T) {
	w := rsztest.NewWriter()
	w.Vec(1, 2, 3)
	w.Vec(0, 0, 0, 1)
	w.S32(-1)
	w.S32(2)
	w.S32(3)

	rec, _ := decodeFields(t, w.Bytes(), 0, Vec3("pos"), Quat("rot"), IVec3("cell"))
	pos, _ := field(t, rec, "pos").(*Prim).Floats()
	if len(pos) != 3 || pos[2] != 3 {
		t.Errorf("pos = %v", pos)
	}
	rot, _ := field(t, rec, "rot").(*Prim).Floats()
	if len(rot) != 4 || rot[3] != 1 {
		t.Errorf("rot = %v", rot)
	}
	if cell := field(t, rec, "cell").(*Prim).V.([3]int32); cell != [3]int32{-1, 2, 3} {
		t.Errorf("cell = %v", cell)
	}
}

func TestStandaloneReferences(t *testing.T) {
	err := decodeFieldsErr([]byte{1, 0, 0, 0}, Child("c"))
	if !errors.IsKind(err, errors.KindOutOfBounds) {
		t.Errorf("expected index_out_of_bounds, got %v", err)
	}
	rec, _ := decodeFields(t, []byte{0, 0, 0, 0}, 0, SharedOpt("s"))
	if field(t, rec, "s").(*Optional).Present() {
		t.Error("null shared should be absent")
	}
}
