// Package library reads the WebDAV mount's SQLite catalog.
//
// The catalog is owned by another process, so the store opens it read-only
// and never writes. Segment metadata lives in JSON columns whose exact shape
// varies between catalog versions; decoding is deliberately tolerant and
// degrades to empty segment lists rather than failing a whole export.
package library
