// Package logging routes the standard logger to stdout, a rotating file or
// both, and drops [DEBUG] lines unless the level is debug.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/killallgit/wortschatz-api/pkg/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Level is a log severity
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelPrefixes = map[string]Level{
	"[DEBUG]": LevelDebug,
	"[INFO]":  LevelInfo,
	"[WARN]":  LevelWarn,
	"[ERROR]": LevelError,
}

// ParseLevel maps a config string to a Level; unknown values mean info
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// LevelWriter filters log lines by their bracketed level prefix
type LevelWriter struct {
	out   io.Writer
	level atomic.Int32
}

// NewLevelWriter wraps out, passing lines at or above level
func NewLevelWriter(out io.Writer, level Level) *LevelWriter {
	w := &LevelWriter{out: out}
	w.level.Store(int32(level))
	return w
}

// SetLevel changes the threshold at runtime
func (w *LevelWriter) SetLevel(level Level) {
	w.level.Store(int32(level))
}

// Write implements io.Writer. Lines without a known prefix count as info.
func (w *LevelWriter) Write(p []byte) (int, error) {
	if lineLevel(p) < Level(w.level.Load()) {
		return len(p), nil
	}
	return w.out.Write(p)
}

func lineLevel(p []byte) Level {
	start := bytes.IndexByte(p, '[')
	if start < 0 {
		return LevelInfo
	}
	end := bytes.IndexByte(p[start:], ']')
	if end < 0 {
		return LevelInfo
	}
	if lvl, ok := levelPrefixes[string(p[start:start+end+1])]; ok {
		return lvl
	}
	return LevelInfo
}

// Logger holds the configured output so it can be closed and re-leveled
type Logger struct {
	Writer *LevelWriter
	file   *lumberjack.Logger
}

// Setup points the standard logger at the configured output.
func Setup(cfg config.LoggingConfig) (*Logger, error) {
	var (
		out  io.Writer
		file *lumberjack.Logger
	)

	newFile := func() *lumberjack.Logger {
		return &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
	}

	switch strings.ToLower(cfg.Output) {
	case "", "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	case "file":
		file = newFile()
		out = file
	case "both":
		file = newFile()
		out = io.MultiWriter(os.Stdout, file)
	default:
		return nil, fmt.Errorf("unknown log output %q", cfg.Output)
	}

	if file != nil && cfg.FilePath == "" {
		return nil, fmt.Errorf("log output %q requires logging.file_path", cfg.Output)
	}

	w := NewLevelWriter(out, ParseLevel(cfg.Level))
	flags := log.LstdFlags
	if cfg.EnableCaller {
		flags |= log.Lshortfile
	}
	log.SetOutput(w)
	log.SetFlags(flags)

	return &Logger{Writer: w, file: file}, nil
}

// Close flushes and closes the rotating file, if any
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}
