package user

import (
	"os"
	"strings"

	"github.com/wippyai/rsz"
	"github.com/wippyai/rsz/errors"
	"github.com/wippyai/rsz/internal/binary"
)

// Magic is the tag at the start of every user file.
var Magic = [4]byte{'U', 'S', 'R', 0}

// Ext is the extension of user files and of child references.
const Ext = rsz.ExternExt

// Child is a reference to another user file.
type Child struct {
	Hash uint32
	Name string
}

// File is a parsed container. The RSZ block is located but not decoded.
type File struct {
	Resources []string
	Children  []Child
	RSZOffset int64

	data []byte
}

// IsUser reports whether data starts with the container magic.
func IsUser(data []byte) bool {
	return len(data) >= 4 && [4]byte(data[:4]) == Magic
}

// ReadFile reads and parses the container at path.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseContainer, errors.KindInvalidInput, err, "read "+path)
	}
	return Parse(data)
}

// Parse reads the container header and name tables. Every byte between the
// header and the RSZ block must be accounted for.
func Parse(data []byte) (*File, error) {
	r := binary.NewReader(data)
	r.SetPhase(errors.PhaseContainer)
	if err := r.ExpectMagic(Magic); err != nil {
		return nil, err
	}

	resourceCount, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	childCount, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	at := r.Offset()
	pad, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if pad != 0 {
		return nil, errors.NonZeroPadding(errors.PhaseContainer, at, pad)
	}
	var offsets [3]uint64
	for i := range offsets {
		if offsets[i], err = r.ReadU64(); err != nil {
			return nil, err
		}
	}
	resourceList, err := position(r, offsets[0], "resource list")
	if err != nil {
		return nil, err
	}
	childList, err := position(r, offsets[1], "child list")
	if err != nil {
		return nil, err
	}
	rszAt, err := position(r, offsets[2], "rsz block")
	if err != nil {
		return nil, err
	}

	// Counts are checked against the file size before allocating.
	if want := uint64(resourceCount)*8 + uint64(childCount)*16; want > uint64(r.Len()) {
		return nil, errors.Truncated(errors.PhaseContainer, r.Offset(), int(want), r.Len())
	}

	if err := r.SeekAssertAlignUp(resourceList, 16); err != nil {
		return nil, errors.WithPath(err, "resource list")
	}
	nameOffsets := make([]uint64, resourceCount)
	for i := range nameOffsets {
		if nameOffsets[i], err = r.ReadU64(); err != nil {
			return nil, err
		}
	}

	if err := r.SeekAssertAlignUp(childList, 16); err != nil {
		return nil, errors.WithPath(err, "child list")
	}
	f := &File{
		Resources: make([]string, 0, resourceCount),
		Children:  make([]Child, childCount),
		data:      data,
	}
	childOffsets := make([]uint64, childCount)
	for i := range f.Children {
		if f.Children[i].Hash, err = r.ReadU32(); err != nil {
			return nil, err
		}
		at := r.Offset()
		pad, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		if pad != 0 {
			return nil, errors.NonZeroPadding(errors.PhaseContainer, at, pad)
		}
		if childOffsets[i], err = r.ReadU64(); err != nil {
			return nil, err
		}
	}

	for _, off := range nameOffsets {
		name, err := readName(r, off)
		if err != nil {
			return nil, errors.WithPath(err, "resource")
		}
		if strings.HasSuffix(name, Ext) {
			return nil, errors.New(errors.PhaseContainer, errors.KindInvalidInput).
				Offset(int64(off)).
				Actual(name).
				Detail("resource names a user file").
				Build()
		}
		f.Resources = append(f.Resources, name)
	}
	for i, off := range childOffsets {
		name, err := readName(r, off)
		if err != nil {
			return nil, errors.WithPath(err, "child")
		}
		if !strings.HasSuffix(name, Ext) {
			return nil, errors.New(errors.PhaseContainer, errors.KindInvalidInput).
				Offset(int64(off)).
				Actual(name).
				Detail("child is not a user file").
				Build()
		}
		f.Children[i].Name = name
	}

	if err := r.SeekAssertAlignUp(rszAt, 16); err != nil {
		return nil, errors.WithPath(err, "rsz block")
	}
	f.RSZOffset = int64(rszAt)
	return f, nil
}

func position(r *binary.Reader, off uint64, what string) (int, error) {
	if off > uint64(r.Size()) {
		return 0, errors.New(errors.PhaseContainer, errors.KindOutOfBounds).
			Offset(r.Offset()).
			Expected(r.Size()).
			Actual(off).
			Detail("%s offset past end of file", what).
			Build()
	}
	return int(off), nil
}

func readName(r *binary.Reader, off uint64) (string, error) {
	if off != uint64(r.Position()) {
		return "", errors.UnexpectedGap(errors.PhaseContainer, r.Offset(), int64(off))
	}
	return r.ReadU16Str()
}

// Data returns the whole container.
func (f *File) Data() []byte {
	return f.data
}

// Block parses the tables of the embedded RSZ block.
func (f *File) Block() (*rsz.Block, error) {
	return rsz.ParseBlock(f.data, f.RSZOffset)
}

// Decode decodes the embedded RSZ block.
func (f *File) Decode(reg *rsz.Registry, opts rsz.Options) (*rsz.Graph, error) {
	return rsz.Decode(f.data, f.RSZOffset, reg, opts)
}

// DecodeSingle decodes the embedded block and returns its only root.
func (f *File) DecodeSingle(reg *rsz.Registry, opts rsz.Options) (*rsz.Object, error) {
	g, err := f.Decode(reg, opts)
	if err != nil {
		return nil, err
	}
	return g.Single()
}

// Load reads the user file at path and unmarshals its single root into dst.
func Load(path string, reg *rsz.Registry, opts rsz.Options, dst any) error {
	f, err := ReadFile(path)
	if err != nil {
		return err
	}
	obj, err := f.DecodeSingle(reg, opts)
	if err != nil {
		return err
	}
	return rsz.Unmarshal(obj.Value, dst)
}
