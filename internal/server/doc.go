// Package server exposes a small HTTP API over the exporter: status, export
// runs, and the collected title lists.
package server
