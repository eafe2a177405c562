package rsz

import (
	"github.com/wippyai/rsz/version"
)

// RevisionStatus classifies a descriptor's checksum against the registry.
type RevisionStatus uint8

const (
	RevisionUnknownType RevisionStatus = iota // no schema for the hash
	RevisionKnown                             // checksum listed in the revision table
	RevisionUnlisted                          // schema found, checksum not listed
	RevisionUnversioned                       // schema has no revision table
	RevisionExtern                            // slot names an external resource
)

var revisionStatusNames = [...]string{
	RevisionUnknownType: "unknown_type",
	RevisionKnown:       "known",
	RevisionUnlisted:    "unlisted",
	RevisionUnversioned: "unversioned",
	RevisionExtern:      "extern",
}

func (s RevisionStatus) String() string {
	if int(s) < len(revisionStatusNames) {
		return revisionStatusNames[s]
	}
	return "unknown"
}

// DescriptorInfo describes one descriptor without decoding its object.
type DescriptorInfo struct {
	Index      uint32
	Descriptor TypeDescriptor
	Symbol     string
	Status     RevisionStatus
	Version    version.Version // for RevisionKnown
	Extern     string
	Root       bool
}

// Describe lists every non-sentinel descriptor of the block with what the
// registry knows about it. It never touches the data segment, so it works
// on blocks that fail to decode.
func (b *Block) Describe(reg *Registry) []DescriptorInfo {
	externs := b.Externs()
	roots := make(map[uint32]bool, len(b.Roots))
	for _, r := range b.Roots {
		roots[r] = true
	}

	out := make([]DescriptorInfo, 0, len(b.Descriptors))
	for i := 1; i < len(b.Descriptors); i++ {
		idx := uint32(i)
		d := b.Descriptors[i]
		info := DescriptorInfo{Index: idx, Descriptor: d, Root: roots[idx]}
		if t, ok := reg.Lookup(d.Hash); ok {
			info.Symbol = t.Symbol
		}
		switch path, ok := externs[idx]; {
		case ok:
			info.Status = RevisionExtern
			info.Extern = path
		case info.Symbol == "":
			info.Status = RevisionUnknownType
		default:
			t, _ := reg.Lookup(d.Hash)
			if len(t.Revisions) == 0 {
				info.Status = RevisionUnversioned
			} else if v, ok := t.Revisions.Lookup(d.Revision); ok {
				info.Status = RevisionKnown
				info.Version = v
			} else {
				info.Status = RevisionUnlisted
			}
		}
		out = append(out, info)
	}
	return out
}
