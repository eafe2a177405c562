package rsz

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/rsz/errors"
	"github.com/wippyai/rsz/internal/binary"
	"github.com/wippyai/rsz/version"
)

// State is a step of the decode state machine. Every state may move to
// StateFailed; otherwise states advance strictly in order.
type State uint8

const (
	StateStart State = iota
	StateReadingHeader
	StateReadingTables
	StateDecodingObjects
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateStart:           "start",
	StateReadingHeader:   "reading_header",
	StateReadingTables:   "reading_tables",
	StateDecodingObjects: "decoding_objects",
	StateDone:            "done",
	StateFailed:          "failed",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Options control a decode.
type Options struct {
	// SchemaVersion is the producing game version for the whole file.
	SchemaVersion version.Version
	// AutoVersion infers each object's version from its revision checksum
	// instead of checking the checksum against SchemaVersion.
	AutoVersion bool
}

// Object is one entry of the object table.
type Object struct {
	Index      uint32
	Descriptor TypeDescriptor
	Symbol     string
	Version    version.Version
	Offset     int64 // absolute offset of the first byte
	Size       int
	Value      Node   // nil for extern slots
	Extern     string // path for extern slots
}

// IsExtern reports whether the slot names an external resource.
func (o *Object) IsExtern() bool {
	return o.Value == nil
}

// Graph is a fully decoded block. It is immutable once Decode returns.
type Graph struct {
	Block   *Block
	Objects []*Object // Objects[0] is nil
	Roots   []*Object
}

// Single returns the only root object. Files with one root, such as USER
// resources, are usually accessed this way.
func (g *Graph) Single() (*Object, error) {
	if len(g.Roots) != 1 {
		return nil, errors.New(errors.PhaseObjects, errors.KindArrayLength).
			Expected(1).
			Actual(len(g.Roots)).
			Detail("expected exactly one root").
			Build()
	}
	return g.Roots[0], nil
}

// Object returns the object at idx, or nil.
func (g *Graph) Object(idx uint32) *Object {
	if int(idx) >= len(g.Objects) {
		return nil
	}
	return g.Objects[idx]
}

// Decode parses and decodes the block at base in one pass.
func Decode(data []byte, base int64, reg *Registry, opts Options) (*Graph, error) {
	return NewBuilder(reg, opts).Build(data, base)
}

// Builder runs the decode state machine for one block. A Builder is single
// use.
type Builder struct {
	reg   *Registry
	opts  Options
	state State
	log   *zap.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(reg *Registry, opts Options) *Builder {
	return &Builder{reg: reg, opts: opts, log: Logger()}
}

// State returns the current state.
func (b *Builder) State() State {
	return b.state
}

func (b *Builder) enter(s State) {
	b.log.Debug("state", zap.Stringer("from", b.state), zap.Stringer("to", s))
	b.state = s
}

func (b *Builder) fail(err error) error {
	from := b.state
	b.state = StateFailed
	b.log.Debug("decode failed", zap.Stringer("state", from), zap.Error(err))
	return err
}

// Build decodes the block at base.
func (b *Builder) Build(data []byte, base int64) (*Graph, error) {
	if b.state != StateStart {
		return nil, errors.InvalidInput(errors.PhaseObjects, "builder already used")
	}
	blk, err := parseBlock(data, base, b.enter)
	if err != nil {
		return nil, b.fail(err)
	}
	g, err := b.decode(blk)
	if err != nil {
		return nil, b.fail(err)
	}
	b.enter(StateDone)
	return g, nil
}

// DecodeBlock decodes the objects of an already parsed block.
func (b *Builder) DecodeBlock(blk *Block) (*Graph, error) {
	if b.state != StateStart {
		return nil, errors.InvalidInput(errors.PhaseObjects, "builder already used")
	}
	b.enter(StateReadingHeader)
	b.enter(StateReadingTables)
	g, err := b.decode(blk)
	if err != nil {
		return nil, b.fail(err)
	}
	b.enter(StateDone)
	return g, nil
}

func (b *Builder) decode(blk *Block) (*Graph, error) {
	b.enter(StateDecodingObjects)
	objects := newArena(len(blk.Descriptors))
	for _, s := range blk.Strings {
		objects.setExtern(s.Slot, s.Path)
	}

	r := binary.NewReaderAt(blk.Data, blk.DataOffset)
	g := &Graph{Block: blk, Objects: make([]*Object, len(blk.Descriptors))}

	for i := 1; i < len(blk.Descriptors); i++ {
		idx := uint32(i)
		desc := blk.Descriptors[i]
		slot := &objects.slots[i]
		if slot.state == slotExtern {
			g.Objects[i] = &Object{Index: idx, Descriptor: desc, Offset: r.Offset(), Extern: slot.path}
			continue
		}

		at := r.Offset()
		res, err := b.reg.Resolve(desc, b.opts.SchemaVersion, b.opts.AutoVersion)
		if err != nil {
			return nil, annotate(err, at, i)
		}
		objects.begin(idx)
		start := r.Position()
		d := &Decoder{r: r, objects: objects, version: res.Version, symbol: res.Type.Symbol}
		v, err := res.Type.Decode(d)
		if err != nil {
			return nil, annotate(errors.WithSymbol(err, res.Type.Symbol), at, i)
		}
		obj := &Object{
			Index:      idx,
			Descriptor: desc,
			Symbol:     res.Type.Symbol,
			Version:    res.Version,
			Offset:     at,
			Size:       r.Position() - start,
			Value:      v,
		}
		objects.finish(idx, obj)
		g.Objects[i] = obj
		b.log.Debug("decoded object",
			zap.Uint32("index", idx),
			zap.String("symbol", obj.Symbol),
			zap.Stringer("version", obj.Version),
			zap.Int64("offset", obj.Offset),
			zap.Int("size", obj.Size))
	}

	rootsAt := blk.Base + headerSize
	for i, idx := range blk.Roots {
		obj, err := objects.markRoot(idx, rootsAt+int64(4*i))
		if err != nil {
			return nil, err
		}
		g.Roots = append(g.Roots, obj)
	}
	if err := objects.checkReferenced(); err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, errors.TrailingData(r.Offset(), r.Len())
	}
	return g, nil
}

// annotate fills in the object offset and descriptor index on errors that
// lack them.
func annotate(err error, at int64, index int) error {
	var e *errors.Error
	if !errors.As(err, &e) {
		return err
	}
	if e.Offset == errors.NoOffset {
		e.Offset = at
	}
	if e.Detail == "" {
		e.Detail = "descriptor " + strconv.Itoa(index)
	}
	return err
}
