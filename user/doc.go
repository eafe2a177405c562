// Package user reads USR containers, the resource files that wrap a single
// RSZ block together with the names of the resources and child user files
// it depends on.
//
// Layout (offsets absolute within the file):
//
//	0x00  magic "USR\0"
//	0x04  u32 resource count
//	0x08  u32 child count
//	0x0C  u32 padding (zero)
//	0x10  u64 resource list offset   (16-aligned, follows the header)
//	0x18  u64 child list offset      (16-aligned, follows the resource list)
//	0x20  u64 RSZ block offset       (16-aligned, follows the name strings)
//
// The resource list holds one u64 name offset per resource. The child list
// holds {u32 hash, u32 zero, u64 name offset} per child. Names are
// NUL-terminated UTF-16LE strings stored back to back, resources first.
// Resource names never end in ".user"; child names always do.
package user
