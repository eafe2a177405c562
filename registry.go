package rsz

import (
	"fmt"
	"sort"

	"github.com/wippyai/rsz/errors"
	"github.com/wippyai/rsz/version"
)

// DecodeFunc decodes one object from the data segment at the decoder's
// current position.
type DecodeFunc func(d *Decoder) (Node, error)

// TypeInfo is one registry entry.
//
// Hash and the checksums in Revisions are opaque constants supplied by the
// schema author. Schema is set for declarative types and nil for
// hand-written decoders.
type TypeInfo struct {
	Hash      uint32
	Symbol    string
	Revisions version.Table
	Schema    *Schema
	Decode    DecodeFunc
}

// Registry maps structural hashes to decode routines.
//
// A Registry is immutable once NewRegistry returns and may be shared by any
// number of concurrent decodes.
type Registry struct {
	types map[uint32]*TypeInfo
}

// NewRegistry builds a Registry from types. A repeated structural hash is an
// error, as are zero hashes, missing decode routines and invalid schemas.
func NewRegistry(types ...TypeInfo) (*Registry, error) {
	r := &Registry{types: make(map[uint32]*TypeInfo, len(types))}
	for i := range types {
		info := types[i]
		if err := checkType(&info); err != nil {
			return nil, err
		}
		if prev, ok := r.types[info.Hash]; ok {
			return nil, errors.DuplicateType(info.Hash, prev.Symbol, info.Symbol)
		}
		r.types[info.Hash] = &info
	}
	return r, nil
}

// MustRegistry is NewRegistry that panics on error. It is intended for
// package-level catalogues built at startup.
func MustRegistry(types ...TypeInfo) *Registry {
	r, err := NewRegistry(types...)
	if err != nil {
		panic(err)
	}
	return r
}

func checkType(info *TypeInfo) error {
	invalid := func(format string, args ...any) error {
		return errors.New(errors.PhaseRegistry, errors.KindInvalidInput).
			Symbol(info.Symbol).
			Detail(format, args...).
			Build()
	}
	if info.Hash == 0 {
		return invalid("structural hash 0 is reserved for the sentinel descriptor")
	}
	if info.Decode == nil {
		return invalid("type 0x%08X has no decode routine", info.Hash)
	}
	if err := info.Revisions.Validate(); err != nil {
		return invalid("%v", err)
	}
	if info.Schema != nil {
		if err := info.Schema.Validate(); err != nil {
			return invalid("%v", err)
		}
	}
	return nil
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	return len(r.types)
}

// Lookup returns the entry registered for hash.
func (r *Registry) Lookup(hash uint32) (*TypeInfo, bool) {
	info, ok := r.types[hash]
	return info, ok
}

// Types returns every entry ordered by symbol.
func (r *Registry) Types() []*TypeInfo {
	out := make([]*TypeInfo, 0, len(r.types))
	for _, info := range r.types {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Merge returns a new Registry holding the entries of r and types.
func (r *Registry) Merge(types ...TypeInfo) (*Registry, error) {
	all := make([]TypeInfo, 0, len(r.types)+len(types))
	for _, info := range r.Types() {
		all = append(all, *info)
	}
	return NewRegistry(append(all, types...)...)
}

// Resolution is the outcome of resolving a descriptor.
type Resolution struct {
	Type    *TypeInfo
	Version version.Version
	// Auto is set when Version was inferred from the revision checksum.
	Auto bool
}

// Resolve finds the decode routine for desc and the SchemaVersion its
// fields are gated by.
//
// With a fixed target, the revision whose Since is the greatest value not
// above target must carry desc's checksum. In auto mode the checksum itself
// selects the version. Types without revisions accept any checksum.
func (r *Registry) Resolve(desc TypeDescriptor, target version.Version, auto bool) (Resolution, error) {
	if desc.IsSentinel() {
		return Resolution{}, errors.New(errors.PhaseObjects, errors.KindInvalidSentinel).
			Detail("the sentinel descriptor has no schema").
			Build()
	}
	info, ok := r.types[desc.Hash]
	if !ok {
		return Resolution{}, errors.New(errors.PhaseObjects, errors.KindUnknownType).
			Actual(desc.Hash).
			Build()
	}
	res := Resolution{Type: info, Version: target}
	if len(info.Revisions) == 0 {
		if auto {
			res.Version = 0
			res.Auto = true
		}
		return res, nil
	}

	if auto {
		v, ok := info.Revisions.Lookup(desc.Revision)
		if !ok {
			return Resolution{}, errors.New(errors.PhaseObjects, errors.KindRevisionMismatch).
				Symbol(info.Symbol).
				Expected(knownChecksums(info.Revisions)).
				Actual(desc.Revision).
				Detail("checksum not listed in revision table").
				Build()
		}
		res.Version = v
		res.Auto = true
		return res, nil
	}

	entry, ok := info.Revisions.Resolve(target)
	if !ok {
		return Resolution{}, errors.New(errors.PhaseObjects, errors.KindRevisionMismatch).
			Symbol(info.Symbol).
			Actual(desc.Revision).
			Detail("no revision at or before version %s", target).
			Build()
	}
	if entry.Checksum != desc.Revision {
		return Resolution{}, errors.RevisionMismatch(errors.NoOffset, info.Symbol, entry.Checksum, desc.Revision)
	}
	return res, nil
}

func knownChecksums(t version.Table) string {
	s := ""
	for i, e := range t.Sorted() {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("0x%08X@%s", e.Checksum, e.Since)
	}
	return s
}
