package rsz

import (
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/wippyai/rsz/errors"
)

var (
	guidType      = reflect.TypeOf(GUID{})
	enumValueType = reflect.TypeOf(EnumValue{})
	flagSetType   = reflect.TypeOf(FlagSet{})
)

// Unmarshal copies a decoded value into dst, which must be a non-nil
// pointer.
//
// Record members map to exported struct fields by: 1) rsz:"name" tag,
// 2) case-insensitive name, 3) snake_case of the Go name. A tag of "-"
// skips the field. References are followed; shared objects map to the same
// Go pointer wherever they appear. Absent optionals leave the destination at
// its zero value, or set pointers to nil.
func Unmarshal(n Node, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.New(errors.PhaseUnmarshal, errors.KindTypeMismatch).
			Detail("destination must be a non-nil pointer, got %T", dst).
			Build()
	}
	u := &unmarshaler{shared: make(map[sharedKey]reflect.Value)}
	return u.assign(n, rv.Elem())
}

type sharedKey struct {
	obj *Object
	typ reflect.Type
}

type unmarshaler struct {
	shared map[sharedKey]reflect.Value
}

func mismatch(n Node, dst reflect.Value) error {
	got := "nil"
	if n != nil {
		got = n.Kind().String()
	}
	return errors.New(errors.PhaseUnmarshal, errors.KindTypeMismatch).
		Expected(dst.Type().String()).
		Actual(got).
		Build()
}

func (u *unmarshaler) assign(n Node, dst reflect.Value) error {
	if n == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	if dst.Kind() == reflect.Pointer {
		return u.assignPointer(n, dst)
	}
	if dst.Kind() == reflect.Interface && dst.NumMethod() == 0 {
		dst.Set(reflect.ValueOf(n))
		return nil
	}

	switch v := n.(type) {
	case *Optional:
		if v.Value == nil {
			dst.Set(reflect.Zero(dst.Type()))
			return nil
		}
		return u.assign(v.Value, dst)
	case *Ref:
		return u.assign(v.Target(), dst)
	case *ExternRef:
		if dst.Kind() != reflect.String {
			return mismatch(n, dst)
		}
		dst.SetString(v.Path)
		return nil
	case *Record:
		return u.assignRecord(v, dst)
	case *Seq:
		return u.assignSeq(v, dst)
	case *Prim:
		return assignPrim(v, dst)
	}
	return mismatch(n, dst)
}

// assignPointer allocates on demand. Shared references reuse the pointer
// allocated for their object.
func (u *unmarshaler) assignPointer(n Node, dst reflect.Value) error {
	if o, ok := n.(*Optional); ok {
		if o.Value == nil {
			dst.Set(reflect.Zero(dst.Type()))
			return nil
		}
		n = o.Value
	}
	if ref, ok := n.(*Ref); ok && ref.Shared {
		key := sharedKey{obj: ref.Object, typ: dst.Type()}
		if p, ok := u.shared[key]; ok {
			dst.Set(p)
			return nil
		}
		p := reflect.New(dst.Type().Elem())
		u.shared[key] = p
		if err := u.assign(ref.Target(), p.Elem()); err != nil {
			return err
		}
		dst.Set(p)
		return nil
	}
	if dst.IsNil() {
		dst.Set(reflect.New(dst.Type().Elem()))
	}
	return u.assign(n, dst.Elem())
}

func (u *unmarshaler) assignRecord(rec *Record, dst reflect.Value) error {
	if dst.Kind() != reflect.Struct {
		return mismatch(rec, dst)
	}
	t := dst.Type()
	for _, m := range rec.Fields {
		field, ok := findGoField(t, m.Name)
		if !ok {
			continue
		}
		if err := u.assign(m.Value, dst.FieldByIndex(field.Index)); err != nil {
			return errors.WithSymbol(errors.WithPath(err, m.Name), rec.Symbol)
		}
	}
	return nil
}

func (u *unmarshaler) assignSeq(s *Seq, dst reflect.Value) error {
	switch dst.Kind() {
	case reflect.Slice:
		out := reflect.MakeSlice(dst.Type(), len(s.Elems), len(s.Elems))
		for i, e := range s.Elems {
			if err := u.assign(e, out.Index(i)); err != nil {
				return errors.WithPath(err, "["+strconv.Itoa(i)+"]")
			}
		}
		dst.Set(out)
		return nil
	case reflect.Array:
		if dst.Len() != len(s.Elems) {
			return errors.New(errors.PhaseUnmarshal, errors.KindArrayLength).
				Expected(dst.Len()).
				Actual(len(s.Elems)).
				Build()
		}
		for i, e := range s.Elems {
			if err := u.assign(e, dst.Index(i)); err != nil {
				return errors.WithPath(err, "["+strconv.Itoa(i)+"]")
			}
		}
		return nil
	}
	return mismatch(s, dst)
}

func assignPrim(p *Prim, dst reflect.Value) error {
	switch dst.Type() {
	case guidType, enumValueType, flagSetType:
		v := reflect.ValueOf(p.V)
		if v.Type() != dst.Type() {
			return mismatch(p, dst)
		}
		dst.Set(v)
		return nil
	}

	switch dst.Kind() {
	case reflect.Bool:
		if b, ok := p.Bool(); ok {
			dst.SetBool(b)
			return nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if i, ok := p.Int(); ok {
			if dst.OverflowInt(i) {
				return overflow(p, dst)
			}
			dst.SetInt(i)
			return nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if x, ok := p.Uint(); ok {
			if dst.OverflowUint(x) {
				return overflow(p, dst)
			}
			dst.SetUint(x)
			return nil
		}
	case reflect.Float32, reflect.Float64:
		if f, ok := p.Float(); ok {
			dst.SetFloat(f)
			return nil
		}
	case reflect.String:
		switch v := p.V.(type) {
		case string:
			dst.SetString(v)
			return nil
		case GUID:
			dst.SetString(v.String())
			return nil
		case EnumValue:
			dst.SetString(v.Name)
			return nil
		}
	case reflect.Slice:
		if fs, ok := p.Floats(); ok && dst.Type().Elem().Kind() == reflect.Float32 {
			dst.Set(reflect.ValueOf(append([]float32(nil), fs...)).Convert(dst.Type()))
			return nil
		}
	case reflect.Array:
		v := reflect.ValueOf(p.V)
		if fs, ok := p.Floats(); ok {
			v = reflect.ValueOf(fs)
		}
		if (v.Kind() == reflect.Array || v.Kind() == reflect.Slice) && v.Len() == dst.Len() &&
			v.Type().Elem().ConvertibleTo(dst.Type().Elem()) {
			for i := 0; i < v.Len(); i++ {
				dst.Index(i).Set(v.Index(i).Convert(dst.Type().Elem()))
			}
			return nil
		}
	}
	return mismatch(p, dst)
}

func overflow(p *Prim, dst reflect.Value) error {
	return errors.New(errors.PhaseUnmarshal, errors.KindTypeMismatch).
		Expected(dst.Type().String()).
		Actual(p.V).
		Detail("value overflows destination").
		Build()
}

// findGoField matches by: 1) rsz:"name" tag, 2) case-insensitive, 3) snake_case.
func findGoField(t reflect.Type, name string) (reflect.StructField, bool) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		if tag := field.Tag.Get("rsz"); tag != "" {
			if tag == "-" {
				continue
			}
			if tag == name {
				return field, true
			}
			continue
		}
		if strings.EqualFold(field.Name, name) || toSnakeCase(field.Name) == name {
			return field, true
		}
	}
	return reflect.StructField{}, false
}

func toSnakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || i+1 < len(runes) && unicode.IsLower(runes[i+1])) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
