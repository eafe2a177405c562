// Package catalog persists scan results in a SQLite database.
//
// Each scanned file is stored with its outcome and with the descriptor
// inventory produced by rsz.Block.Describe. The inventory survives decode
// failures, so the catalogue is the place to look for revision checksums the
// registry does not list yet:
//
//	store, err := catalog.Open(ctx, path)
//	defer store.Close()
//	err = store.Record(ctx, rec)
//	mismatches, err := store.Mismatches(ctx)
//
// A lock file next to the database keeps concurrent CLI runs from writing
// the same catalogue.
package catalog
