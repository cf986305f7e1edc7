// Package logging builds the slog loggers used across dms.
//
// Output is either a compact single-line console format or standard slog
// JSON, selected by config. A configured log directory receives a copy of
// all output. Context helpers carry the active stage and run identifier so
// every record emitted inside a stage is attributable without threading
// loggers through every call.
package logging
