package logger

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config describes how to build a production Logger. It mirrors the
// fields a RuntimeConfig's logging subsection would carry: level,
// output format, and an optional rotated log file.
type Config struct {
	Level  string // debug|info|warn|error
	Format string // json|text
	Output string // stdout|stderr|file

	// File rotation, used only when Output == "file".
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// production wraps an slog.Logger to satisfy the Logger interface,
// translating our variadic key/value and Field conventions into slog
// attributes.
type production struct {
	base  *slog.Logger
	level *slog.LevelVar
}

// NewProduction builds a Logger backed by log/slog. When Output is
// "file" the writer is a lumberjack.Logger so long-running deployments
// rotate logs instead of filling the disk — the same approach the
// pack's alert-history service uses for its file-output log writer.
func NewProduction(cfg Config) Logger {
	lv := new(slog.LevelVar)
	lv.Set(slogLevel(ParseLevel(cfg.Level)))

	handler := newHandler(cfg, lv)
	return &production{base: slog.New(handler), level: lv}
}

func newHandler(cfg Config, lv *slog.LevelVar) slog.Handler {
	writer := writerFor(cfg)
	opts := &slog.HandlerOptions{Level: lv}

	if cfg.Format == "text" {
		return slog.NewTextHandler(writer, opts)
	}
	return slog.NewJSONHandler(writer, opts)
}

func writerFor(cfg Config) io.Writer {
	switch cfg.Output {
	case "file":
		if cfg.Filename == "" {
			return os.Stdout
		}
		return &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    orDefault(cfg.MaxSizeMB, 100),
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
	case "stderr":
		return os.Stderr
	default:
		return os.Stdout
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func slogLevel(l Level) slog.Level {
	switch l {
	case DebugLevel:
		return slog.LevelDebug
	case WarnLevel:
		return slog.LevelWarn
	case ErrorLevel:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func toArgs(fields ...interface{}) []any {
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		if fld, ok := f.(Field); ok {
			args = append(args, fld.Key, fld.Value)
			continue
		}
		args = append(args, f)
	}
	return args
}

func (p *production) Debug(msg string, fields ...interface{}) { p.base.Debug(msg, toArgs(fields...)...) }
func (p *production) Info(msg string, fields ...interface{})  { p.base.Info(msg, toArgs(fields...)...) }
func (p *production) Warn(msg string, fields ...interface{})  { p.base.Warn(msg, toArgs(fields...)...) }
func (p *production) Error(msg string, fields ...interface{}) { p.base.Error(msg, toArgs(fields...)...) }

func (p *production) With(fields ...Field) Logger {
	args := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		args = append(args, f.Key, f.Value)
	}
	return &production{base: p.base.With(args...), level: p.level}
}
