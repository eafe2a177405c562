// Package hash computes the content hashes used by RSZ string tables.
//
// The hash is the 32-bit MurmurHash3 with seed 0xFFFFFFFF. String-table paths
// are hashed over their UTF-16LE encoding; schema symbols are hashed over UTF-8.
// Both are pinned values in the file format and must not change across
// platforms.
package hash
