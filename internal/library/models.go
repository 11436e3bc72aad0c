package library

import (
	"strings"
	"time"
)

// Segment is one Usenet article reference. Bytes is zero when the catalog
// did not record a size.
type Segment struct {
	MessageID string
	Bytes     int64
}

// NzbFile is a directly-addressable file with a flat segment list.
type NzbFile struct {
	ID        string
	Name      string
	Path      string
	CreatedAt time.Time
	Segments  []Segment
}

// RarFile is an archive split into parts, each with its own segment list.
type RarFile struct {
	ID        string
	Name      string
	Path      string
	CreatedAt time.Time
	Parts     [][]Segment
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// parseTimestamp accepts the timestamp shapes seen in catalog exports. A
// zero time means unparseable; callers substitute the current time.
func parseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
