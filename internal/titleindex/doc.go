// Package titleindex builds exact-match lookup tables over external catalog
// titles. Keys are aggressively normalized (lowercased, every non-alphanumeric
// stripped) to maximize recall against catalogs that spell titles slightly
// differently. Lookups are exact by design: fuzzy and substring matching are
// deliberately absent because partial matches against movie catalogs have
// mis-attributed unrelated titles in the past, and callers have an external
// search fallback for genuine misses.
package titleindex
