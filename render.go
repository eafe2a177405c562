package rsz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// MarshalJSON renders the record as an object whose first key, "$type",
// holds the symbol. Members follow in declaration order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"$type":`)
	sym, _ := json.Marshal(r.Symbol)
	buf.Write(sym)
	for _, m := range r.Fields {
		key, err := json.Marshal(m.Name)
		if err != nil {
			return nil, err
		}
		val, err := marshalNode(m.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m.Name, err)
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *Seq) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, e := range s.Elems {
		if i > 0 {
			buf.WriteByte(',')
		}
		val, err := marshalNode(e)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func (o *Optional) MarshalJSON() ([]byte, error) {
	return marshalNode(o.Value)
}

// MarshalJSON renders the referenced object inline.
func (r *Ref) MarshalJSON() ([]byte, error) {
	return marshalNode(r.Target())
}

func (e *ExternRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"$extern": e.Path})
}

func (p *Prim) MarshalJSON() ([]byte, error) {
	switch v := p.V.(type) {
	case float32:
		return marshalFloat(float64(v), 32), nil
	case float64:
		return marshalFloat(v, 64), nil
	case []float32:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, f := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.Write(marshalFloat(float64(f), 32))
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case GUID:
		return json.Marshal(v.String())
	case EnumValue:
		return json.Marshal(v.Name)
	case FlagSet:
		names := append([]string{}, v.Names...)
		if v.Unknown != 0 {
			names = append(names, fmt.Sprintf("0x%X", v.Unknown))
		}
		return json.Marshal(names)
	}
	return json.Marshal(p.V)
}

// marshalFloat renders non-finite values as strings, which JSON cannot
// otherwise represent.
func marshalFloat(f float64, bits int) []byte {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte(strconv.Quote(strconv.FormatFloat(f, 'g', -1, bits)))
	}
	return strconv.AppendFloat(nil, f, 'g', -1, bits)
}

func marshalNode(n Node) ([]byte, error) {
	if n == nil {
		return []byte("null"), nil
	}
	return json.Marshal(n)
}

// MarshalJSON renders the root objects as an array.
func (g *Graph) MarshalJSON() ([]byte, error) {
	roots := make([]Node, len(g.Roots))
	for i, o := range g.Roots {
		roots[i] = o.Value
	}
	return json.Marshal(roots)
}

// Dump writes an indented text rendering of n.
func Dump(w io.Writer, n Node) error {
	p := &printer{w: w}
	p.node(n, 0)
	p.line("")
	return p.err
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) write(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

func (p *printer) line(s string) {
	p.write(s)
	p.write("\n")
}

func (p *printer) indent(depth int) {
	p.write(strings.Repeat("  ", depth))
}

func (p *printer) node(n Node, depth int) {
	switch v := n.(type) {
	case nil:
		p.write("none")
	case *Record:
		if len(v.Fields) == 0 {
			p.write(v.Symbol + " {}")
			return
		}
		p.line(v.Symbol + " {")
		for _, m := range v.Fields {
			p.indent(depth + 1)
			p.write(m.Name + ": ")
			p.node(m.Value, depth+1)
			p.line("")
		}
		p.indent(depth)
		p.write("}")
	case *Seq:
		if len(v.Elems) == 0 {
			p.write("[]")
			return
		}
		if primitives(v.Elems) {
			parts := make([]string, len(v.Elems))
			for i, e := range v.Elems {
				parts[i] = FormatPrim(e.(*Prim))
			}
			p.write("[" + strings.Join(parts, ", ") + "]")
			return
		}
		p.line("[")
		for _, e := range v.Elems {
			p.indent(depth + 1)
			p.node(e, depth+1)
			p.line(",")
		}
		p.indent(depth)
		p.write("]")
	case *Optional:
		p.node(v.Value, depth)
	case *Ref:
		if v.Shared {
			p.write("&" + strconv.FormatUint(uint64(v.Index), 10) + " ")
		}
		p.node(v.Target(), depth)
	case *ExternRef:
		p.write("extern " + strconv.Quote(v.Path))
	case *Prim:
		p.write(FormatPrim(v))
	}
}

func primitives(ns []Node) bool {
	for _, n := range ns {
		if _, ok := n.(*Prim); !ok {
			return false
		}
	}
	return true
}

// FormatPrim renders a primitive the way Dump does.
func FormatPrim(p *Prim) string {
	switch v := p.V.(type) {
	case string:
		return strconv.Quote(v)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case []float32:
		parts := make([]string, len(v))
		for i, f := range v {
			parts[i] = strconv.FormatFloat(float64(f), 'g', -1, 32)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case [3]int32:
		return fmt.Sprintf("(%d, %d, %d)", v[0], v[1], v[2])
	case EnumValue:
		return fmt.Sprintf("%s(%d)", v.Name, v.Raw)
	case FlagSet:
		names := append([]string{}, v.Names...)
		if v.Unknown != 0 {
			names = append(names, fmt.Sprintf("0x%X", v.Unknown))
		}
		if len(names) == 0 {
			return "0"
		}
		return strings.Join(names, " | ")
	}
	return fmt.Sprint(p.V)
}
