package logger

import (
	"fmt"
	"log"
	"strings"
)

// Simple is a dependency-free Logger backed by the standard log
// package. It is the default for tests and local development; the
// production path uses NewProduction (production.go) instead.
type Simple struct {
	level  Level
	fields []Field
}

// NewSimple creates a Simple logger at InfoLevel.
func NewSimple() *Simple {
	return &Simple{level: InfoLevel}
}

// NewDefault returns a Logger suitable when the caller has no
// configuration available yet.
func NewDefault() Logger {
	return NewSimple()
}

func (l *Simple) Debug(msg string, fields ...interface{}) {
	if l.level <= DebugLevel {
		l.log("DEBUG", msg, fields...)
	}
}

func (l *Simple) Info(msg string, fields ...interface{}) {
	if l.level <= InfoLevel {
		l.log("INFO", msg, fields...)
	}
}

func (l *Simple) Warn(msg string, fields ...interface{}) {
	if l.level <= WarnLevel {
		l.log("WARN", msg, fields...)
	}
}

func (l *Simple) Error(msg string, fields ...interface{}) {
	if l.level <= ErrorLevel {
		l.log("ERROR", msg, fields...)
	}
}

// SetLevel adjusts the minimum level this logger emits.
func (l *Simple) SetLevel(level Level) {
	l.level = level
}

func (l *Simple) With(fields ...Field) Logger {
	combined := make([]Field, 0, len(l.fields)+len(fields))
	combined = append(combined, l.fields...)
	combined = append(combined, fields...)
	return &Simple{level: l.level, fields: combined}
}

func (l *Simple) log(level, msg string, extra ...interface{}) {
	parts := make([]string, 0, 2+len(l.fields)+len(extra)/2)
	parts = append(parts, fmt.Sprintf("[%s]", level), msg)

	for _, f := range l.fields {
		parts = append(parts, fmt.Sprintf("%s=%v", f.Key, f.Value))
	}
	for i := 0; i+1 < len(extra); i += 2 {
		parts = append(parts, fmt.Sprintf("%v=%v", extra[i], extra[i+1]))
	}

	log.Println(strings.Join(parts, " "))
}
