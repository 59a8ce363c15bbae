package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log file rotation limits.
const (
	MaxSizeMB  = 5
	MaxBackups = 3
	MaxAgeDays = 14
)

// New builds a logger writing to cfg.File (rotated) or stderr. The returned
// closer releases the log file and is never nil.
func New(cfg Config) (*slog.Logger, io.Closer) {
	if cfg.File == "" {
		return NewWithWriter(cfg, os.Stderr), io.NopCloser(nil)
	}

	_ = os.MkdirAll(filepath.Dir(cfg.File), 0o755)
	rotator := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    MaxSizeMB,
		MaxBackups: MaxBackups,
		MaxAge:     MaxAgeDays,
	}
	return NewWithWriter(cfg, rotator), rotator
}

// NewWithWriter builds a logger over w. Each call gets a fresh session id,
// so lines from separate runs sharing one file can be told apart.
func NewWithWriter(cfg Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel()}

	var handler slog.Handler
	if cfg.IsJSON() {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	attrs := append(cfg.BaseAttributes(), slog.String(AttrKeySession, uuid.NewString()))
	return slog.New(handler.WithAttrs(attrs))
}

// Init builds the logger and installs it as the slog default.
func Init(cfg Config) io.Closer {
	l, closer := New(cfg)
	slog.SetDefault(l)
	return closer
}
