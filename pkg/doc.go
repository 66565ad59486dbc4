// Package fdb builds content-addressed inventories of directory trees and
// derives duplicate, differential and aggregate analyses from them.
//
// # Core API
//
// The main entry point is FileDB, configured once per run:
//
//	ignore, _ := fdb.ParseIgnoreList(`.DS_Store,Icon\r`)
//	db, err := fdb.NewFileDB(fdb.Options{Ignore: ignore, Logger: logger})
//
// # Operations
//
// Build an inventory of a directory and persist it:
//
//	inv, err := db.MakeDatabase(ctx, "/photos", "photos.csv")
//
// Keep only the files whose content occurs more than once:
//
//	dupes, err := db.FindDuplicatesDatabase(ctx, "photos.csv", "dupes.csv")
//
// List the files of one database whose content is missing from another:
//
//	missing, err := db.DiffDatabases(ctx, "laptop.csv", "backup.csv", "missing.csv")
//
// Fingerprint a tree, live or from its database; both give the same digest:
//
//	live, err := db.HashDirectory(ctx, "/photos")
//	saved, err := db.HashDatabase(ctx, "photos.csv")
//	fmt.Println(live) // <hex> */photos (<count>)
//
// # Lower-level pieces
//
// Builder, Scanner, HashIndex, FindDuplicates, Diff and AggregateDigest can
// be used directly on an Inventory or a billy.Filesystem; tests use an
// in-memory filesystem this way.
//
// # Errors
//
// Failures carry an ErrorKind. Usage errors match ErrUsage with errors.Is
// and are raised before any hashing starts. A permission error on one file
// yields a degraded record during a build; any other I/O error aborts it.
package fdb
