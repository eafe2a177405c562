package rsz

import (
	"github.com/google/uuid"
)

// GUID is a 16-byte identifier stored with its first three groups little-endian.
type GUID [16]byte

// UUID returns g in RFC 4122 byte order.
func (g GUID) UUID() uuid.UUID {
	return uuid.UUID{
		g[3], g[2], g[1], g[0],
		g[5], g[4],
		g[7], g[6],
		g[8], g[9], g[10], g[11], g[12], g[13], g[14], g[15],
	}
}

// String renders g in canonical 8-4-4-4-12 form.
func (g GUID) String() string {
	return g.UUID().String()
}

// IsZero reports whether every byte of g is zero.
func (g GUID) IsZero() bool {
	return g == GUID{}
}

// GUIDFromUUID converts an RFC 4122 UUID to on-disk byte order.
func GUIDFromUUID(u uuid.UUID) GUID {
	return GUID{
		u[3], u[2], u[1], u[0],
		u[5], u[4],
		u[7], u[6],
		u[8], u[9], u[10], u[11], u[12], u[13], u[14], u[15],
	}
}

// ParseGUID parses the canonical text form produced by GUID.String.
func ParseGUID(s string) (GUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return GUID{}, err
	}
	return GUIDFromUUID(u), nil
}

// MarshalText implements encoding.TextMarshaler.
func (g GUID) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}
