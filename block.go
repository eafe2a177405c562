package rsz

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/wippyai/rsz/errors"
	"github.com/wippyai/rsz/hash"
	"github.com/wippyai/rsz/internal/binary"
)

// Magic is the tag at the start of every block.
var Magic = [4]byte{'R', 'S', 'Z', 0}

// FormatVersion is the only block format version understood.
const FormatVersion uint32 = 0x10

const headerSize = 48

// ExternExt is the required extension of extern slot paths.
const ExternExt = ".user"

// TypeDescriptor names the schema and layout revision of one object.
// On disk it is a u64 with Hash in the low half.
type TypeDescriptor struct {
	Hash     uint32
	Revision uint32
}

// DescriptorFromUint64 splits a raw descriptor.
func DescriptorFromUint64(v uint64) TypeDescriptor {
	return TypeDescriptor{Hash: uint32(v), Revision: uint32(v >> 32)}
}

// Uint64 returns the on-disk form.
func (t TypeDescriptor) Uint64() uint64 {
	return uint64(t.Revision)<<32 | uint64(t.Hash)
}

// IsSentinel reports whether t is the reserved all-zero descriptor.
func (t TypeDescriptor) IsSentinel() bool {
	return t == TypeDescriptor{}
}

func (t TypeDescriptor) String() string {
	return fmt.Sprintf("%08X:%08X", t.Hash, t.Revision)
}

// Header is the fixed-size prefix of a block. Offsets are relative to the
// block base.
type Header struct {
	FormatVersion   uint32
	ObjectCount     uint32
	DescriptorCount uint32
	StringCount     uint32
	DescriptorTable uint64
	Data            uint64
	StringTable     uint64
}

// StringEntry names an extern slot.
type StringEntry struct {
	Slot   uint32
	Hash   uint32
	Offset uint64
	Path   string
}

// Block holds the tables of an RSZ block and its undecoded data segment.
type Block struct {
	Header      Header
	Base        int64
	Roots       []uint32
	Descriptors []TypeDescriptor
	Strings     []StringEntry
	Data        []byte
	DataOffset  int64 // absolute offset of Data[0]
}

// Externs maps slot index to path for every string table entry.
func (b *Block) Externs() map[uint32]string {
	m := make(map[uint32]string, len(b.Strings))
	for _, s := range b.Strings {
		m[s.Slot] = s.Path
	}
	return m
}

// ParseBlock reads the header and tables of the block at base. Every seek
// is checked: gaps, misalignment and non-zero padding are errors.
func ParseBlock(data []byte, base int64) (*Block, error) {
	return parseBlock(data, base, func(State) {})
}

func parseBlock(data []byte, base int64, enter func(State)) (*Block, error) {
	enter(StateReadingHeader)
	if base < 0 || base > int64(len(data)) {
		return nil, errors.OutOfBounds(errors.PhaseHeader, base, int(base), len(data))
	}
	r := binary.NewReader(data)
	r.SetPhase(errors.PhaseHeader)
	if err := r.Seek(int(base)); err != nil {
		return nil, err
	}
	if err := r.ExpectMagic(Magic); err != nil {
		return nil, err
	}

	var h Header
	var err error
	at := r.Offset()
	if h.FormatVersion, err = r.ReadU32(); err != nil {
		return nil, err
	}
	if h.FormatVersion != FormatVersion {
		return nil, errors.UnsupportedFormatVersion(at, h.FormatVersion)
	}
	if h.ObjectCount, err = r.ReadU32(); err != nil {
		return nil, err
	}
	if h.DescriptorCount, err = r.ReadU32(); err != nil {
		return nil, err
	}
	if h.StringCount, err = r.ReadU32(); err != nil {
		return nil, err
	}
	at = r.Offset()
	pad, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if pad != 0 {
		return nil, errors.NonZeroPadding(errors.PhaseHeader, at, pad)
	}
	if h.DescriptorTable, err = r.ReadU64(); err != nil {
		return nil, err
	}
	if h.Data, err = r.ReadU64(); err != nil {
		return nil, err
	}
	if h.StringTable, err = r.ReadU64(); err != nil {
		return nil, err
	}

	descAt, err := absolute(data, base, h.DescriptorTable)
	if err != nil {
		return nil, err
	}
	dataAt, err := absolute(data, base, h.Data)
	if err != nil {
		return nil, err
	}
	stringsAt, err := absolute(data, base, h.StringTable)
	if err != nil {
		return nil, err
	}

	enter(StateReadingTables)
	r.SetPhase(errors.PhaseTables)
	b := &Block{Header: h, Base: base}

	if err := fits(r, h.ObjectCount, 4); err != nil {
		return nil, err
	}
	b.Roots = make([]uint32, h.ObjectCount)
	for i := range b.Roots {
		b.Roots[i], _ = r.ReadU32()
	}

	if err := r.SeekNoop(descAt); err != nil {
		return nil, err
	}
	if h.DescriptorCount == 0 {
		return nil, errors.New(errors.PhaseTables, errors.KindInvalidSentinel).
			Offset(r.Offset()).
			Detail("descriptor table is empty").
			Build()
	}
	if err := fits(r, h.DescriptorCount, 8); err != nil {
		return nil, err
	}
	b.Descriptors = make([]TypeDescriptor, h.DescriptorCount)
	for i := range b.Descriptors {
		v, _ := r.ReadU64()
		b.Descriptors[i] = DescriptorFromUint64(v)
	}
	if !b.Descriptors[0].IsSentinel() {
		return nil, errors.New(errors.PhaseTables, errors.KindInvalidSentinel).
			Offset(int64(descAt)).
			Expected(uint64(0)).
			Actual(b.Descriptors[0].Uint64()).
			Build()
	}

	if err := r.SeekAssertAlignUp(stringsAt, 16); err != nil {
		return nil, err
	}
	if err := fits(r, h.StringCount, 16); err != nil {
		return nil, err
	}
	b.Strings = make([]StringEntry, h.StringCount)
	for i := range b.Strings {
		e := &b.Strings[i]
		e.Slot, _ = r.ReadU32()
		e.Hash, _ = r.ReadU32()
		e.Offset, _ = r.ReadU64()
	}
	seen := make(map[uint32]bool, len(b.Strings))
	for i := range b.Strings {
		e := &b.Strings[i]
		if e.Slot == 0 || e.Slot >= h.DescriptorCount {
			return nil, errors.OutOfBounds(errors.PhaseTables, int64(stringsAt+16*i), int(e.Slot), int(h.DescriptorCount))
		}
		if seen[e.Slot] {
			return nil, errors.New(errors.PhaseTables, errors.KindExternMismatch).
				Offset(int64(stringsAt + 16*i)).
				Actual(e.Slot).
				Detail("slot named twice in the string table").
				Build()
		}
		seen[e.Slot] = true

		target, err := absolute(data, base, e.Offset)
		if err != nil {
			return nil, err
		}
		if err := r.SeekNoop(target); err != nil {
			return nil, err
		}
		if e.Path, err = r.ReadU16Str(); err != nil {
			return nil, err
		}
		if !strings.HasSuffix(e.Path, ExternExt) {
			return nil, errors.New(errors.PhaseTables, errors.KindExternMismatch).
				Offset(int64(target)).
				Expected("*"+ExternExt).
				Actual(e.Path).
				Detail("slot %d does not name a user resource", e.Slot).
				Build()
		}
		if sum := hash.UTF16(e.Path); sum != e.Hash {
			return nil, errors.StringHashMismatch(int64(target), e.Path, e.Hash, sum)
		}
	}

	if err := r.SeekAssertAlignUp(dataAt, 16); err != nil {
		return nil, err
	}
	b.DataOffset = r.Offset()
	b.Data = r.Remaining()
	return b, nil
}

// absolute converts a base-relative offset to a position in data.
func absolute(data []byte, base int64, off uint64) (int, error) {
	pos, carry := bits.Add64(uint64(base), off, 0)
	if carry != 0 || pos > uint64(len(data)) {
		if carry != 0 || pos > 1<<62 {
			return 0, errors.OffsetOverflow(errors.PhaseHeader, uint64(base), off)
		}
		return 0, errors.New(errors.PhaseHeader, errors.KindOutOfBounds).
			Offset(base).
			Expected(int64(len(data))).
			Actual(int64(pos)).
			Detail("offset 0x%X from base points past the end of input", off).
			Build()
	}
	return int(pos), nil
}

// fits checks that count entries of size bytes remain before allocating.
func fits(r *binary.Reader, count uint32, size int) error {
	need := uint64(count) * uint64(size)
	if need > uint64(r.Len()) {
		return errors.Truncated(r.Phase(), r.Offset(), int(min(need, 1<<31)), r.Len())
	}
	return nil
}
