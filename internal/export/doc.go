// Package export walks the catalog, groups files into releases, and writes
// one NZB document per release plus cleaned title lists.
//
// Runs are serialized with a lock file in the output directory so overlapping
// invocations cannot interleave writes. Database reads happen per batch on a
// single goroutine; document assembly and file writes fan out across a
// bounded worker group.
package export
