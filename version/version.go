package version

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Version identifies the game build that produced a file.
type Version uint32

// Max is the largest Version, used as an open upper bound for gates.
const Max Version = 0xFFFFFFFF

// baseMajor is the first major build number with its own Version. Earlier
// builds, such as 3.6.1.0, are the base release.
const baseMajor = 10

// String renders v as a dotted build number.
func (v Version) String() string {
	if v == Max {
		return "max"
	}
	return fmt.Sprintf("%d.%d.%d", v/10000, v/100%100, v%100)
}

// Parse accepts "13.0.0", "13.0.0.1" or a plain integer such as "130000".
// Dotted builds before major version 10 are the base release and parse as 0.
func Parse(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty version")
	}
	if !strings.Contains(s, ".") {
		n, err := strconv.ParseUint(strings.ReplaceAll(s, "_", ""), 10, 32)
		if err != nil {
			return 0, fmt.Errorf("parse version %q: %w", s, err)
		}
		return Version(n), nil
	}

	parts := strings.Split(s, ".")
	if len(parts) < 2 || len(parts) > 4 {
		return 0, fmt.Errorf("parse version %q: want 2 to 4 components", s)
	}
	var nums [3]uint64
	for i := 0; i < len(parts) && i < 3; i++ {
		n, err := strconv.ParseUint(parts[i], 10, 32)
		if err != nil {
			return 0, fmt.Errorf("parse version %q: %w", s, err)
		}
		if i > 0 && n > 99 {
			return 0, fmt.Errorf("parse version %q: component %d exceeds 99", s, n)
		}
		nums[i] = n
	}
	if len(parts) == 4 {
		if _, err := strconv.ParseUint(parts[3], 10, 32); err != nil {
			return 0, fmt.Errorf("parse version %q: %w", s, err)
		}
	}
	if nums[0] < baseMajor {
		return 0, nil
	}
	v := nums[0]*10000 + nums[1]*100 + nums[2]
	if v >= uint64(Max) {
		return 0, fmt.Errorf("parse version %q: out of range", s)
	}
	return Version(v), nil
}

// Entry is one revision of a schema.
type Entry struct {
	Checksum uint32
	Since    Version
}

// Table maps revision checksums to the first Version that produced them.
type Table []Entry

// Revisions builds a Table from checksum/version pairs, in the order schema
// authors usually write them (newest first).
func Revisions(pairs ...Entry) Table {
	t := make(Table, len(pairs))
	copy(t, pairs)
	return t
}

// Validate reports duplicate checksums or versions within the table.
func (t Table) Validate() error {
	checksums := make(map[uint32]Version, len(t))
	versions := make(map[Version]uint32, len(t))
	for _, e := range t {
		if v, ok := checksums[e.Checksum]; ok {
			return fmt.Errorf("checksum 0x%08X listed for %s and %s", e.Checksum, v, e.Since)
		}
		if c, ok := versions[e.Since]; ok {
			return fmt.Errorf("version %s listed for 0x%08X and 0x%08X", e.Since, c, e.Checksum)
		}
		checksums[e.Checksum] = e.Since
		versions[e.Since] = e.Checksum
	}
	return nil
}

// Resolve returns the entry whose Since is the greatest value <= target.
// ok is false when the table is empty or every entry is newer than target.
func (t Table) Resolve(target Version) (Entry, bool) {
	var best Entry
	found := false
	for _, e := range t {
		if e.Since <= target && (!found || e.Since > best.Since) {
			best = e
			found = true
		}
	}
	return best, found
}

// Lookup returns the Version a checksum was introduced in.
func (t Table) Lookup(checksum uint32) (Version, bool) {
	for _, e := range t {
		if e.Checksum == checksum {
			return e.Since, true
		}
	}
	return 0, false
}

// Sorted returns a copy ordered oldest first.
func (t Table) Sorted() Table {
	out := make(Table, len(t))
	copy(out, t)
	sort.Slice(out, func(i, j int) bool { return out[i].Since < out[j].Since })
	return out
}

// Gate restricts a field to a range of versions.
// The zero Gate admits every version.
type Gate struct {
	Min Version
	Max Version
	set bool
}

// Since returns a gate open from min upward.
func Since(min Version) Gate {
	return Gate{Min: min, Max: Max, set: true}
}

// Between returns a gate covering min..max inclusive.
func Between(min, max Version) Gate {
	return Gate{Min: min, Max: max, set: true}
}

// Admits reports whether a field behind g is present at v.
func (g Gate) Admits(v Version) bool {
	if !g.set {
		return true
	}
	return v >= g.Min && v <= g.Max
}

// IsZero reports whether g admits every version.
func (g Gate) IsZero() bool {
	return !g.set
}

func (g Gate) String() string {
	if g.IsZero() {
		return "always"
	}
	if g.Max == Max {
		return ">=" + g.Min.String()
	}
	return g.Min.String() + ".." + g.Max.String()
}
