package binary

import (
	"encoding/binary"
	"math"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/wippyai/rsz/errors"
)

// Reader reads little-endian primitives from an in-memory buffer and turns
// layout assumptions (no gap here, only zero padding there) into checked errors.
//
// Positions are relative to the start of buf. Errors report absolute offsets,
// which are origin+position.
type Reader struct {
	buf    []byte
	pos    int
	origin int64
	phase  errors.Phase
}

// NewReader creates a Reader over buf with origin 0.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf, phase: errors.PhaseObjects}
}

// NewReaderAt creates a Reader whose buf[0] sits at origin in the source file.
func NewReaderAt(buf []byte, origin int64) *Reader {
	return &Reader{buf: buf, origin: origin, phase: errors.PhaseObjects}
}

// SetPhase sets the phase stamped onto errors from this point on.
func (r *Reader) SetPhase(p errors.Phase) {
	r.phase = p
}

// Phase returns the current error phase.
func (r *Reader) Phase() errors.Phase {
	return r.phase
}

// Position returns the current position relative to the buffer start.
func (r *Reader) Position() int {
	return r.pos
}

// Offset returns the current absolute offset.
func (r *Reader) Offset() int64 {
	return r.origin + int64(r.pos)
}

// OffsetOf converts a buffer position to an absolute offset.
func (r *Reader) OffsetOf(pos int) int64 {
	return r.origin + int64(pos)
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.buf) - r.pos
}

// Size returns the total buffer length.
func (r *Reader) Size() int {
	return len(r.buf)
}

// Seek moves to an arbitrary position. Only container formats use this; the
// RSZ block itself is read strictly forward.
func (r *Reader) Seek(pos int) error {
	if pos < 0 || pos > len(r.buf) {
		return errors.OutOfBounds(r.phase, r.Offset(), pos, len(r.buf))
	}
	r.pos = pos
	return nil
}

func (r *Reader) need(n int) error {
	if n < 0 || r.Len() < n {
		return errors.Truncated(r.phase, r.Offset(), n, r.Len())
	}
	return nil
}

// ReadByte reads a single byte and advances the position.
func (r *Reader) ReadByte() (byte, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

// ReadBytes reads exactly n bytes. The returned slice aliases the buffer.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadMagic reads a 4-byte tag.
func (r *Reader) ReadMagic() ([4]byte, error) {
	var m [4]byte
	b, err := r.ReadBytes(4)
	if err != nil {
		return m, err
	}
	copy(m[:], b)
	return m, nil
}

// ExpectMagic reads a 4-byte tag and checks it against want.
func (r *Reader) ExpectMagic(want [4]byte) error {
	at := r.Offset()
	m, err := r.ReadMagic()
	if err != nil {
		return err
	}
	if m != want {
		return errors.MagicMismatch(r.phase, at, want[:], m[:])
	}
	return nil
}

// ReadU8 reads an unsigned 8-bit integer.
func (r *Reader) ReadU8() (uint8, error) {
	return r.ReadByte()
}

// ReadU16 reads a little-endian uint16.
func (r *Reader) ReadU16() (uint16, error) {
	b, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadU32 reads a little-endian uint32.
func (r *Reader) ReadU32() (uint32, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadU64 reads a little-endian uint64.
func (r *Reader) ReadU64() (uint64, error) {
	b, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadI8 reads a signed 8-bit integer.
func (r *Reader) ReadI8() (int8, error) {
	v, err := r.ReadByte()
	return int8(v), err
}

// ReadI16 reads a little-endian int16.
func (r *Reader) ReadI16() (int16, error) {
	v, err := r.ReadU16()
	return int16(v), err
}

// ReadI32 reads a little-endian int32.
func (r *Reader) ReadI32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}

// ReadI64 reads a little-endian int64.
func (r *Reader) ReadI64() (int64, error) {
	v, err := r.ReadU64()
	return int64(v), err
}

// ReadF32 reads a little-endian IEEE 754 float32.
func (r *Reader) ReadF32() (float32, error) {
	v, err := r.ReadU32()
	return math.Float32frombits(v), err
}

// ReadF64 reads a little-endian IEEE 754 float64.
func (r *Reader) ReadF64() (float64, error) {
	v, err := r.ReadU64()
	return math.Float64frombits(v), err
}

// ReadBool reads one byte that must be exactly 0 or 1.
func (r *Reader) ReadBool() (bool, error) {
	at := r.Offset()
	b, err := r.ReadByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, errors.InvalidBoolean(r.phase, at, b)
	}
}

// ReadU16Str reads NUL-terminated UTF-16LE code units.
func (r *Reader) ReadU16Str() (string, error) {
	start := r.Offset()
	var units []uint16
	for {
		c, err := r.ReadU16()
		if err != nil {
			return "", err
		}
		if c == 0 {
			break
		}
		units = append(units, c)
	}
	return DecodeUTF16(r.phase, start, units)
}

// ReadU8Str reads a NUL-terminated UTF-8 string.
func (r *Reader) ReadU8Str() (string, error) {
	start := r.pos
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		if b == 0 {
			break
		}
	}
	data := r.buf[start : r.pos-1]
	if !utf8.Valid(data) {
		return "", errors.InvalidUTF8(r.phase, r.OffsetOf(start), data)
	}
	return string(data), nil
}

// DecodeUTF16 converts code units to a string, rejecting unpaired surrogates.
// offset is the absolute position of the first unit and is used for errors.
func DecodeUTF16(phase errors.Phase, offset int64, units []uint16) (string, error) {
	for i := 0; i < len(units); i++ {
		u := units[i]
		switch {
		case u >= 0xD800 && u < 0xDC00:
			if i+1 >= len(units) || units[i+1] < 0xDC00 || units[i+1] >= 0xE000 {
				return "", errors.InvalidUTF16(phase, offset+int64(2*i), u)
			}
			i++
		case u >= 0xDC00 && u < 0xE000:
			return "", errors.InvalidUTF16(phase, offset+int64(2*i), u)
		}
	}
	return string(utf16.Decode(units)), nil
}

// SeekNoop asserts that the reader is already at target.
func (r *Reader) SeekNoop(target int) error {
	if r.pos != target {
		return errors.UnexpectedGap(r.phase, r.Offset(), r.OffsetOf(target))
	}
	return nil
}

// SeekAlignUp advances to the next multiple of align, requiring every skipped
// byte to be zero. It returns the new position.
func (r *Reader) SeekAlignUp(align int) (int, error) {
	aligned := AlignUp(r.pos, align)
	if err := r.skipZeros(aligned); err != nil {
		return r.pos, err
	}
	return aligned, nil
}

// SeekAssertAlignUp is SeekAlignUp with the additional claim that the aligned
// position equals target.
func (r *Reader) SeekAssertAlignUp(target, align int) error {
	aligned := AlignUp(r.pos, align)
	if aligned != target {
		return errors.MisalignedSeek(r.phase, r.Offset(), r.OffsetOf(target), r.OffsetOf(aligned), uint64(align))
	}
	return r.skipZeros(aligned)
}

func (r *Reader) skipZeros(to int) error {
	pad, err := r.ReadBytes(to - r.pos)
	if err != nil {
		return err
	}
	for i, b := range pad {
		if b != 0 {
			return errors.NonZeroPadding(r.phase, r.OffsetOf(to-len(pad)+i), b)
		}
	}
	return nil
}

// Remaining returns the unread bytes without consuming them.
func (r *Reader) Remaining() []byte {
	return r.buf[r.pos:]
}

// Peek returns up to n unread bytes without consuming them.
func (r *Reader) Peek(n int) []byte {
	if n > r.Len() {
		n = r.Len()
	}
	return r.buf[r.pos : r.pos+n]
}

// AlignUp rounds v up to a multiple of align. align <= 1 returns v.
func AlignUp(v, align int) int {
	if align <= 1 {
		return v
	}
	return v + (align-v%align)%align
}
