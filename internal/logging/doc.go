// Package logging assembles the structured slog loggers used across
// nzbforge commands and services.
//
// It owns the console/JSON handler selection, level parsing, and output
// routing, and exposes a no-op logger for tests and wiring code that cannot
// fail. Prefer these constructors over hand-rolled slog setup so every
// component emits log lines with the same shape.
package logging
