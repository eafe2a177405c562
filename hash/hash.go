package hash

import (
	"github.com/spaolacci/murmur3"
	"golang.org/x/text/encoding/unicode"
)

// Seed is the MurmurHash3 seed used by the format.
const Seed uint32 = 0xFFFFFFFF

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// Bytes returns the content hash of raw bytes.
func Bytes(b []byte) uint32 {
	return murmur3.Sum32WithSeed(b, Seed)
}

// UTF16 returns the content hash of s encoded as UTF-16LE without a terminator.
func UTF16(s string) uint32 {
	return Bytes(EncodeUTF16(s))
}

// UTF8 returns the content hash of s's UTF-8 bytes.
func UTF8(s string) uint32 {
	return Bytes([]byte(s))
}

// EncodeUTF16 encodes s as UTF-16LE code units without a BOM or terminator.
// Invalid UTF-8 in s is replaced with U+FFFD.
func EncodeUTF16(s string) []byte {
	out, err := utf16le.NewEncoder().String(s)
	if err != nil {
		// The encoder only fails on invalid input, which it already replaces.
		return nil
	}
	return []byte(out)
}
