package nzb

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

const (
	namespace = "http://www.newzbin.com/DTD/2003/nzb"
	doctype   = `<!DOCTYPE nzb PUBLIC "-//newzBin//DTD NZB 1.1//EN" "http://www.newzbin.com/DTD/2003/nzb">`
	poster    = "nzbdav"
)

// Segment is one article reference inside a file element.
type Segment struct {
	Bytes     int64  `xml:"bytes,attr"`
	Number    int    `xml:"number,attr"`
	MessageID string `xml:",chardata"`
}

// File is one logical file within a document.
type File struct {
	Poster   string    `xml:"poster,attr"`
	Date     int64     `xml:"date,attr"`
	Subject  string    `xml:"subject,attr"`
	Groups   []string  `xml:"groups>group"`
	Segments []Segment `xml:"segments>segment"`
}

// Document is a complete NZB document.
type Document struct {
	XMLName xml.Name `xml:"nzb"`
	Xmlns   string   `xml:"xmlns,attr"`
	Files   []File   `xml:"file"`
}

// NewDocument builds an empty document with the standard namespace.
func NewDocument() *Document {
	return &Document{Xmlns: namespace}
}

// AddFile appends a file element. Empty subjects render as "unnamed";
// non-positive segment sizes are replaced with fallbackBytes so downloaders
// never see a zero-byte segment.
func (d *Document) AddFile(subject string, dateUnix int64, group string, segments []Segment, fallbackBytes int64) {
	if subject == "" {
		subject = "unnamed"
	}
	cleaned := make([]Segment, 0, len(segments))
	for _, seg := range segments {
		if seg.Bytes <= 0 {
			seg.Bytes = fallbackBytes
		}
		cleaned = append(cleaned, seg)
	}
	var groups []string
	if group != "" {
		groups = []string{group}
	}
	d.Files = append(d.Files, File{
		Poster:   poster,
		Date:     dateUnix,
		Subject:  subject,
		Groups:   groups,
		Segments: cleaned,
	})
}

// SegmentCount returns the total number of segments across all files.
func (d *Document) SegmentCount() int {
	total := 0
	for _, f := range d.Files {
		total += len(f.Segments)
	}
	return total
}

// TotalBytes returns the summed segment sizes across all files.
func (d *Document) TotalBytes() int64 {
	var total int64
	for _, f := range d.Files {
		for _, seg := range f.Segments {
			total += seg.Bytes
		}
	}
	return total
}

// Render writes the document as indented XML with the newzBin doctype.
func (d *Document) Render(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header+doctype+"\n"); err != nil {
		return fmt.Errorf("write nzb header: %w", err)
	}
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(d); err != nil {
		return fmt.Errorf("encode nzb document: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	return nil
}

// RenderString renders the document into a string.
func (d *Document) RenderString() (string, error) {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
