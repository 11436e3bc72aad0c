// Package release contains the release-name normalization engine: path
// decomposition, movie/series classification, clean-title extraction, and
// season/episode parsing.
//
// Every function in this package is a pure, total computation over its string
// inputs. Malformed input degrades to the "unnamed"/"uncategorized" sentinels
// rather than returning an error, so one garbled path can never abort a batch.
// All pattern tables are compiled once at package init and treated as
// immutable, which makes concurrent use safe without coordination.
//
// The heuristics here are deliberately conservative reproductions of proven
// behavior, including their known limitations (last-year-wins release-year
// selection, bare Sxx season detection). Callers should not "fix" these
// without revisiting the downstream matching that depends on them.
package release
