// Package version resolves which field-layout revision of a schema applies to
// a given game build.
//
// A Version is a single ordered integer. Dotted build numbers map onto it as
// major*10000 + minor*100 + patch, so "13.0.0" is 13_00_00 and "10.0.2" is
// 10_00_02. The fourth component of a build number does not change layouts and
// is ignored. Builds before 10.0.0 (the base release, 3.6.1.0) all map to 0.
// Plain integers are taken as they are.
//
// A Table maps revision checksums to the first Version that produced them.
// Resolve picks the entry in effect for a target Version; Lookup goes the other
// way and infers the Version from a checksum found in a file.
package version
