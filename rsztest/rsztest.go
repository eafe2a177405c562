// Package rsztest builds RSZ blocks and data segments for tests.
package rsztest

import (
	"encoding/binary"
	"math"

	"github.com/wippyai/rsz/hash"
)

// Writer appends little-endian values to a data segment. Align pads with
// zeros relative to the start of the segment, as the decoder does.
type Writer struct {
	buf []byte
}

// NewWriter creates an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Align pads to a multiple of n.
func (w *Writer) Align(n int) {
	for len(w.buf)%n != 0 {
		w.buf = append(w.buf, 0)
	}
}

// WriteBytes appends data unaligned.
func (w *Writer) WriteBytes(data []byte) {
	w.buf = append(w.buf, data...)
}

func (w *Writer) Byte(b byte) {
	w.buf = append(w.buf, b)
}

func (w *Writer) Bool(v bool) {
	if v {
		w.Byte(1)
	} else {
		w.Byte(0)
	}
}

func (w *Writer) U16(v uint16) {
	w.Align(2)
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

func (w *Writer) U32(v uint32) {
	w.Align(4)
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *Writer) S32(v int32) {
	w.U32(uint32(v))
}

func (w *Writer) U64(v uint64) {
	w.Align(8)
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

func (w *Writer) F32(v float32) {
	w.U32(math.Float32bits(v))
}

func (w *Writer) F64(v float64) {
	w.U64(math.Float64bits(v))
}

// GUID appends 16 raw bytes aligned to 8.
func (w *Writer) GUID(b [16]byte) {
	w.Align(8)
	w.WriteBytes(b[:])
}

// Vec appends float components aligned to 16. Two- and three-component
// vectors are padded to 16 afterwards.
func (w *Writer) Vec(fs ...float32) {
	w.Align(16)
	for _, f := range fs {
		w.buf = binary.LittleEndian.AppendUint32(w.buf, math.Float32bits(f))
	}
	if len(fs) < 4 {
		w.Align(16)
	}
}

// String appends a counted string: a u32 unit count including the NUL,
// then UTF-16LE units and the terminator.
func (w *Writer) String(s string) {
	enc := hash.EncodeUTF16(s)
	w.U32(uint32(len(enc)/2 + 1))
	w.WriteBytes(enc)
	w.WriteBytes([]byte{0, 0})
}

// NullString appends a zero count.
func (w *Writer) NullString() {
	w.U32(0)
}

// Ref appends an object table index.
func (w *Writer) Ref(idx uint32) {
	w.U32(idx)
}

// Desc packs a structural hash and revision checksum into a descriptor.
func Desc(hash, revision uint32) uint64 {
	return uint64(revision)<<32 | uint64(hash)
}

// Extern is a string table entry. A zero Hash is replaced with the content
// hash of Path.
type Extern struct {
	Slot uint32
	Path string
	Hash uint32
}

// Block describes a block to encode. Descriptors excludes the sentinel,
// which is written from Sentinel.
type Block struct {
	Prefix        int // bytes before the block base
	FormatVersion uint32
	Roots         []uint32
	Sentinel      uint64
	Descriptors   []uint64
	Externs       []Extern
	Data          []byte
	Trailer       []byte // appended after Data
}

// Layout gives absolute positions within the encoded bytes.
type Layout struct {
	Base            int
	DescriptorTable int
	StringTable     int
	Strings         []int
	Data            int
}

const headerSize = 48

func alignUp(v, n int) int {
	return v + (n-v%n)%n
}

// Build encodes b.
func (b Block) Build() ([]byte, Layout) {
	version := b.FormatVersion
	if version == 0 {
		version = 0x10
	}
	var l Layout
	l.Base = b.Prefix
	l.DescriptorTable = l.Base + headerSize + 4*len(b.Roots)
	l.StringTable = alignUp(l.DescriptorTable+8*(len(b.Descriptors)+1), 16)

	strs := make([][]byte, len(b.Externs))
	pos := l.StringTable + 16*len(b.Externs)
	for i, e := range b.Externs {
		strs[i] = append(hash.EncodeUTF16(e.Path), 0, 0)
		l.Strings = append(l.Strings, pos)
		pos += len(strs[i])
	}
	l.Data = alignUp(pos, 16)

	out := make([]byte, b.Prefix, l.Data+len(b.Data)+len(b.Trailer))
	le := binary.LittleEndian
	out = append(out, 'R', 'S', 'Z', 0)
	out = le.AppendUint32(out, version)
	out = le.AppendUint32(out, uint32(len(b.Roots)))
	out = le.AppendUint32(out, uint32(len(b.Descriptors)+1))
	out = le.AppendUint32(out, uint32(len(b.Externs)))
	out = le.AppendUint32(out, 0)
	out = le.AppendUint64(out, uint64(l.DescriptorTable-l.Base))
	out = le.AppendUint64(out, uint64(l.Data-l.Base))
	out = le.AppendUint64(out, uint64(l.StringTable-l.Base))
	for _, r := range b.Roots {
		out = le.AppendUint32(out, r)
	}
	out = le.AppendUint64(out, b.Sentinel)
	for _, d := range b.Descriptors {
		out = le.AppendUint64(out, d)
	}
	out = pad(out, l.StringTable)
	for i, e := range b.Externs {
		h := e.Hash
		if h == 0 {
			h = hash.Bytes(strs[i][:len(strs[i])-2])
		}
		out = le.AppendUint32(out, e.Slot)
		out = le.AppendUint32(out, h)
		out = le.AppendUint64(out, uint64(l.Strings[i]-l.Base))
	}
	for _, s := range strs {
		out = append(out, s...)
	}
	out = pad(out, l.Data)
	out = append(out, b.Data...)
	out = append(out, b.Trailer...)
	return out, l
}

// Bytes encodes b and discards the layout.
func (b Block) Bytes() []byte {
	out, _ := b.Build()
	return out
}

func pad(b []byte, to int) []byte {
	for len(b) < to {
		b = append(b, 0)
	}
	return b
}
