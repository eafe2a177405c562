package rsztest

import (
	"encoding/binary"

	"github.com/wippyai/rsz/hash"
)

// UserChild is a child user file reference.
type UserChild struct {
	Hash uint32
	Name string
}

// User describes a USR container wrapping Block.
type User struct {
	Resources []string
	Children  []UserChild
	Block     Block
}

// UserLayout gives absolute positions within the encoded container.
type UserLayout struct {
	ResourceList int
	ChildList    int
	Names        []int // resource names, then child names
	RSZ          int
	Block        Layout
}

const userHeaderSize = 40

// Build encodes u. The block's Prefix is replaced by the container.
func (u User) Build() ([]byte, UserLayout) {
	var l UserLayout
	l.ResourceList = alignUp(userHeaderSize, 16)
	l.ChildList = alignUp(l.ResourceList+8*len(u.Resources), 16)
	pos := l.ChildList + 16*len(u.Children)

	var names [][]byte
	for _, s := range u.Resources {
		names = append(names, append(hash.EncodeUTF16(s), 0, 0))
	}
	for _, c := range u.Children {
		names = append(names, append(hash.EncodeUTF16(c.Name), 0, 0))
	}
	for _, n := range names {
		l.Names = append(l.Names, pos)
		pos += len(n)
	}
	l.RSZ = alignUp(pos, 16)

	blk := u.Block
	blk.Prefix = l.RSZ
	out, bl := blk.Build()
	l.Block = bl

	le := binary.LittleEndian
	head := make([]byte, 0, l.RSZ)
	head = append(head, 'U', 'S', 'R', 0)
	head = le.AppendUint32(head, uint32(len(u.Resources)))
	head = le.AppendUint32(head, uint32(len(u.Children)))
	head = le.AppendUint32(head, 0)
	head = le.AppendUint64(head, uint64(l.ResourceList))
	head = le.AppendUint64(head, uint64(l.ChildList))
	head = le.AppendUint64(head, uint64(l.RSZ))
	head = pad(head, l.ResourceList)
	for i := range u.Resources {
		head = le.AppendUint64(head, uint64(l.Names[i]))
	}
	head = pad(head, l.ChildList)
	for i, c := range u.Children {
		head = le.AppendUint32(head, c.Hash)
		head = le.AppendUint32(head, 0)
		head = le.AppendUint64(head, uint64(l.Names[len(u.Resources)+i]))
	}
	for _, n := range names {
		head = append(head, n...)
	}
	copy(out, head)
	return out, l
}

// Bytes encodes u and discards the layout.
func (u User) Bytes() []byte {
	out, _ := u.Build()
	return out
}
