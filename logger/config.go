// Package logger builds the process-wide slog logger.
package logger

import (
	"log/slog"
	"strings"
)

// Log level string values.
const (
	LogLevelDebug   = "debug"
	LogLevelInfo    = "info"
	LogLevelWarn    = "warn"
	LogLevelWarning = "warning"
	LogLevelError   = "error"
)

// Log format string values.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Attribute keys added to every record.
const (
	AttrKeyService = "service"
	AttrKeyVersion = "version"
	AttrKeySession = "session"
)

// DefaultServiceName tags every record.
const DefaultServiceName = "spiritfield"

// Config represents logger configuration.
type Config struct {
	Level       string // "debug", "info", "warn", "error"
	Format      string // "json", "text"
	File        string // rotated log file; empty writes to stderr
	ServiceName string
	Version     string
}

// DefaultConfig returns defaults (fallback when no config provided).
func DefaultConfig() Config {
	return Config{
		Level:       LogLevelInfo,
		Format:      LogFormatText,
		ServiceName: DefaultServiceName,
		Version:     "dev",
	}
}

// LogLevel converts string level to slog.Level.
func (c Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelWarn, LogLevelWarning:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsJSON returns true if format is JSON.
func (c Config) IsJSON() bool {
	return strings.ToLower(c.Format) == LogFormatJSON
}

// BaseAttributes returns common attributes to add to all logs.
func (c Config) BaseAttributes() []slog.Attr {
	return []slog.Attr{
		slog.String(AttrKeyService, c.ServiceName),
		slog.String(AttrKeyVersion, c.Version),
	}
}
