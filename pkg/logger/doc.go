// Package logger provides the structured logging interface shared by
// every component of the text-processing core.
//
// Simple is a dependency-free default suitable for tests and local
// development. NewProduction builds an slog-backed implementation that
// writes JSON (or text) to stdout/stderr, or to a rotated file via
// gopkg.in/natefinch/lumberjack.v2 when configured for file output.
//
// Components never read LOG_LEVEL/LOG_FORMAT themselves — the config
// resolver reads the environment once at startup and constructs the
// Logger that gets injected everywhere else.
package logger
