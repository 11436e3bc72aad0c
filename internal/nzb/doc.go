// Package nzb renders NZB 1.1 documents and derives safe output filenames.
package nzb
