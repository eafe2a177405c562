package rsz

import (
	"math"
	"strconv"

	"github.com/wippyai/rsz/errors"
	"github.com/wippyai/rsz/internal/binary"
	"github.com/wippyai/rsz/version"
)

// Decoder reads field values for one object from the data segment.
//
// It carries the SchemaVersion resolved for the object so that version
// gates are evaluated against an explicit value at every call.
type Decoder struct {
	r       *binary.Reader
	objects *arena
	version version.Version
	symbol  string
}

// Version returns the SchemaVersion field gates are evaluated against.
func (d *Decoder) Version() version.Version {
	return d.version
}

// Symbol returns the symbol of the object being decoded.
func (d *Decoder) Symbol() string {
	return d.symbol
}

// Offset returns the current absolute offset.
func (d *Decoder) Offset() int64 {
	return d.r.Offset()
}

// AlignUp skips zero padding to the next multiple of n.
func (d *Decoder) AlignUp(n int) error {
	_, err := d.r.SeekAlignUp(n)
	return err
}

// Fields decodes fields in order and appends the named ones to rec.
// Flattened schemas append their own members; Align fields append nothing.
func (d *Decoder) Fields(rec *Record, fields ...Field) error {
	for i := range fields {
		f := &fields[i]
		switch f.Kind {
		case KindFlatten:
			if !f.Gate.Admits(d.version) {
				continue
			}
			if err := d.Fields(rec, f.Schema.Fields...); err != nil {
				return err
			}
			continue
		case KindAlign:
			if !f.Gate.Admits(d.version) {
				continue
			}
			if err := d.AlignUp(f.Len); err != nil {
				return err
			}
			continue
		}
		v, err := d.Field(*f)
		if err != nil {
			return err
		}
		rec.Fields = append(rec.Fields, Member{Name: f.Name, Value: v})
	}
	return nil
}

// Field decodes a single field. A gated field yields an *Optional that is
// absent, having consumed no bytes, when the gate does not admit the
// decoder's version.
func (d *Decoder) Field(f Field) (Node, error) {
	if !f.Gate.IsZero() {
		if !f.Gate.Admits(d.version) {
			return &Optional{}, nil
		}
		f.Gate = version.Gate{}
		v, err := d.Field(f)
		if err != nil {
			return nil, err
		}
		return &Optional{Value: v}, nil
	}
	v, err := d.value(&f)
	if err != nil {
		return nil, errors.WithPath(err, f.Name)
	}
	return v, nil
}

func (d *Decoder) value(f *Field) (Node, error) {
	switch f.Kind {
	case KindString:
		return d.readString(f.Nullable)
	case KindEnum:
		return d.enum(f.Enum)
	case KindFlags:
		return d.flags(f.Flags)
	case KindArray:
		return d.seq(KindArray, f.Elem, f.Len)
	case KindList:
		n, err := d.count(f.Wide)
		if err != nil {
			return nil, err
		}
		return d.seq(KindList, f.Elem, n)
	case KindOptional:
		present, err := d.r.ReadBool()
		if err != nil {
			return nil, err
		}
		if !present {
			return &Optional{}, nil
		}
		v, err := d.Field(*f.Elem)
		if err != nil {
			return nil, err
		}
		return &Optional{Value: v}, nil
	case KindChild, KindShared, KindExtern:
		return d.reference(f)
	case KindFlatten:
		rec := &Record{Symbol: f.Schema.Symbol}
		if err := d.Fields(rec, f.Schema.Fields...); err != nil {
			return nil, err
		}
		return rec, nil
	case KindAlign:
		return nil, errors.InvalidInput(errors.PhaseObjects, "align has no value")
	}
	if f.Kind.IsPrimitive() {
		return d.prim(f.Kind)
	}
	return nil, errors.New(errors.PhaseObjects, errors.KindInvalidInput).
		Offset(d.r.Offset()).
		Detail("field kind %s cannot be decoded", f.Kind).
		Build()
}

func (d *Decoder) prim(k Kind) (*Prim, error) {
	if _, err := d.r.SeekAlignUp(k.Align()); err != nil {
		return nil, err
	}
	v, err := d.read(k)
	if err != nil {
		return nil, err
	}
	if _, err := d.r.SeekAlignUp(k.trailingAlign()); err != nil {
		return nil, err
	}
	return &Prim{Type: k, V: v}, nil
}

func (d *Decoder) read(k Kind) (any, error) {
	switch k {
	case KindBool:
		return d.r.ReadBool()
	case KindU8:
		return d.r.ReadU8()
	case KindS8:
		return d.r.ReadI8()
	case KindU16:
		return d.r.ReadU16()
	case KindS16:
		return d.r.ReadI16()
	case KindU32:
		return d.r.ReadU32()
	case KindS32:
		return d.r.ReadI32()
	case KindU64:
		return d.r.ReadU64()
	case KindS64:
		return d.r.ReadI64()
	case KindF32:
		return d.r.ReadF32()
	case KindF64:
		return d.r.ReadF64()
	case KindGUID:
		b, err := d.r.ReadBytes(16)
		if err != nil {
			return nil, err
		}
		var g GUID
		copy(g[:], b)
		return g, nil
	case KindIVec3:
		var v [3]int32
		for i := range v {
			x, err := d.r.ReadI32()
			if err != nil {
				return nil, err
			}
			v[i] = x
		}
		return v, nil
	case KindVec2, KindVec3, KindVec4, KindQuat, KindMat4:
		out := make([]float32, k.Size()/4)
		for i := range out {
			x, err := d.r.ReadF32()
			if err != nil {
				return nil, err
			}
			out[i] = x
		}
		return out, nil
	}
	return nil, errors.New(errors.PhaseObjects, errors.KindInvalidInput).
		Offset(d.r.Offset()).
		Detail("%s is not a primitive", k).
		Build()
}

// integer reads an integer of kind k and widens it.
func (d *Decoder) integer(k Kind) (uint64, int64, error) {
	p, err := d.prim(k)
	if err != nil {
		return 0, 0, err
	}
	if k.IsSigned() {
		i, _ := p.Int()
		return uint64(i), i, nil
	}
	u, _ := p.Uint()
	return u, int64(u), nil
}

func (d *Decoder) enum(t *EnumType) (*Prim, error) {
	at := d.r.OffsetOf(binary.AlignUp(d.r.Position(), t.Base.Align()))
	_, raw, err := d.integer(t.Base)
	if err != nil {
		return nil, err
	}
	name, ok := t.Values[raw]
	if !ok {
		return nil, errors.InvalidEnum(errors.PhaseObjects, at, raw, t.Name)
	}
	return &Prim{Type: KindEnum, V: EnumValue{Raw: raw, Name: name}}, nil
}

func (d *Decoder) flags(t *FlagsType) (*Prim, error) {
	bits, _, err := d.integer(t.Base)
	if err != nil {
		return nil, err
	}
	if t.Base.IsSigned() && t.Base.Size() < 8 {
		bits &= 1<<(8*t.Base.Size()) - 1
	}
	names, unknown := t.names(bits)
	return &Prim{Type: KindFlags, V: FlagSet{Bits: bits, Names: names, Unknown: unknown}}, nil
}

// readString reads a u32 count of UTF-16 units, including the terminator,
// followed by the units.
func (d *Decoder) readString(nullable bool) (Node, error) {
	if _, err := d.r.SeekAlignUp(4); err != nil {
		return nil, err
	}
	at := d.r.Offset()
	n, err := d.r.ReadU32()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		if nullable {
			return &Optional{}, nil
		}
		return nil, errors.New(errors.PhaseObjects, errors.KindNullReference).
			Offset(at).
			Detail("string count is zero").
			Build()
	}
	if uint64(n)*2 > uint64(d.r.Len()) {
		return nil, errors.Truncated(errors.PhaseObjects, d.r.Offset(), int(min(uint64(n)*2, math.MaxInt32)), d.r.Len())
	}
	start := d.r.Offset()
	units := make([]uint16, n)
	for i := range units {
		units[i], _ = d.r.ReadU16()
	}
	if last := units[n-1]; last != 0 {
		return nil, errors.New(errors.PhaseObjects, errors.KindInvalidUTF16).
			Offset(start + int64(2*(n-1))).
			Expected(uint16(0)).
			Actual(last).
			Detail("string is not NUL terminated").
			Build()
	}
	s, err := binary.DecodeUTF16(errors.PhaseObjects, start, units[:n-1])
	if err != nil {
		return nil, err
	}
	p := &Prim{Type: KindString, V: s}
	if nullable {
		return &Optional{Value: p}, nil
	}
	return p, nil
}

func (d *Decoder) count(wide bool) (int, error) {
	if wide {
		if _, err := d.r.SeekAlignUp(8); err != nil {
			return 0, err
		}
		at := d.r.Offset()
		n, err := d.r.ReadU64()
		if err != nil {
			return 0, err
		}
		if n > uint64(d.r.Len()) {
			return 0, errors.New(errors.PhaseObjects, errors.KindArrayLength).
				Offset(at).
				Actual(n).
				Detail("count exceeds the %d remaining bytes", d.r.Len()).
				Build()
		}
		return int(n), nil
	}
	if _, err := d.r.SeekAlignUp(4); err != nil {
		return 0, err
	}
	at := d.r.Offset()
	n, err := d.r.ReadU32()
	if err != nil {
		return 0, err
	}
	if uint64(n) > uint64(d.r.Len()) {
		return 0, errors.New(errors.PhaseObjects, errors.KindArrayLength).
			Offset(at).
			Actual(n).
			Detail("count exceeds the %d remaining bytes", d.r.Len()).
			Build()
	}
	return int(n), nil
}

func (d *Decoder) seq(k Kind, elem *Field, n int) (*Seq, error) {
	s := &Seq{Type: k, Elems: make([]Node, 0, n)}
	for i := 0; i < n; i++ {
		v, err := d.Field(*elem)
		if err != nil {
			return nil, errors.WithPath(err, "["+strconv.Itoa(i)+"]")
		}
		s.Elems = append(s.Elems, v)
	}
	return s, nil
}

func (d *Decoder) reference(f *Field) (Node, error) {
	if _, err := d.r.SeekAlignUp(4); err != nil {
		return nil, err
	}
	at := d.r.Offset()
	idx, err := d.r.ReadU32()
	if err != nil {
		return nil, err
	}
	if idx == 0 {
		if f.Nullable {
			return &Optional{}, nil
		}
		return nil, errors.New(errors.PhaseObjects, errors.KindNullReference).
			Offset(at).
			Detail("%s index is 0", f.Kind).
			Build()
	}
	if d.objects == nil {
		return nil, errors.New(errors.PhaseObjects, errors.KindOutOfBounds).
			Offset(at).
			Actual(idx).
			Detail("no object table in standalone decode").
			Build()
	}

	var v Node
	switch f.Kind {
	case KindChild:
		obj, err := d.objects.claim(idx, at)
		if err != nil {
			return nil, err
		}
		v = &Ref{Index: idx, Object: obj}
	case KindShared:
		obj, err := d.objects.share(idx, at)
		if err != nil {
			return nil, err
		}
		v = &Ref{Index: idx, Shared: true, Object: obj}
	default:
		path, err := d.objects.extern(idx, at)
		if err != nil {
			return nil, err
		}
		v = &ExternRef{Index: idx, Path: path}
	}
	if f.Nullable {
		return &Optional{Value: v}, nil
	}
	return v, nil
}

// DecodeStandalone decodes a single value of info from data at version v,
// outside of any block. Object references fail because there is no object
// table. It returns the number of bytes consumed.
func DecodeStandalone(info *TypeInfo, data []byte, v version.Version) (Node, int, error) {
	d := &Decoder{r: binary.NewReader(data), version: v, symbol: info.Symbol}
	n, err := info.Decode(d)
	if err != nil {
		return nil, d.r.Position(), errors.WithSymbol(err, info.Symbol)
	}
	return n, d.r.Position(), nil
}
