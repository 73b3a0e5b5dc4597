// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging configures the zap logger shared by the CLI, the run
// store and the HTTP server.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log levels accepted by SetLevel and Init.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Output formats accepted by Init.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

var (
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

	mu   sync.RWMutex
	root = newLogger(FormatConsole, os.Stderr)
)

var encoderConfig = zapcore.EncoderConfig{
	TimeKey:        "ts",
	LevelKey:       "lvl",
	NameKey:        "component",
	CallerKey:      "caller",
	MessageKey:     "msg",
	StacktraceKey:  "stacktrace",
	LineEnding:     zapcore.DefaultLineEnding,
	EncodeLevel:    zapcore.CapitalLevelEncoder,
	EncodeTime:     zapcore.RFC3339TimeEncoder,
	EncodeDuration: zapcore.StringDurationEncoder,
	EncodeCaller:   zapcore.ShortCallerEncoder,
}

func newLogger(format string, w io.Writer) *zap.Logger {
	var enc zapcore.Encoder
	if format == FormatJSON {
		enc = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		enc = zapcore.NewConsoleEncoder(encoderConfig)
	}
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), level), zap.AddCaller())
}

// Init replaces the shared logger. Output goes to w (stderr when nil) in
// the given format at the given level.
func Init(lvl, format string, w io.Writer) error {
	if err := SetLevel(lvl); err != nil {
		return err
	}
	switch format {
	case "", FormatConsole, FormatJSON:
	default:
		return fmt.Errorf("unsupported log format %q: use console or json", format)
	}
	if w == nil {
		w = os.Stderr
	}

	mu.Lock()
	root = newLogger(format, w)
	mu.Unlock()
	return nil
}

// SetLevel changes the level of every logger handed out by this package,
// including loggers created before the call.
func SetLevel(lvl string) error {
	switch lvl {
	case LevelDebug:
		level.SetLevel(zapcore.DebugLevel)
	case "", LevelInfo:
		level.SetLevel(zapcore.InfoLevel)
	case LevelWarn:
		level.SetLevel(zapcore.WarnLevel)
	case LevelError:
		level.SetLevel(zapcore.ErrorLevel)
	default:
		return fmt.Errorf("unsupported log level %q: use debug, info, warn or error", lvl)
	}
	return nil
}

// New returns a sugared logger tagged with component.
func New(component string) *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return root.Named(component).Sugar()
}

// Sync flushes buffered log entries.
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	return root.Sync()
}
