// Command rsz inspects RSZ blocks and the USR containers that wrap them.
//
//	rsz dump FILE          decode and print the object graph
//	rsz describe FILE      list descriptors without decoding values
//	rsz scan DIR...        decode every matching file into the catalogue
//	rsz mismatches         report revision checksums missing from schemas
//	rsz hash STRING...     print content hashes
//	rsz browse FILE        interactive graph browser
//	rsz config init|show   write a sample config or print the effective one
//
// Settings come from the config file (see package config) and may be
// overridden with --schema-version, --auto-version and --log-level.
package main
