// Package logging assembles the slog loggers used by trimscript.
//
// It owns the console and JSON handlers, routes output to stderr and the
// optional log file, and exposes context helpers so editor operations tag
// their lines with project, stage, and correlation identifiers. A no-op
// logger is provided for tests and wiring code that cannot fail.
package logging
