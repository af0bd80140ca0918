// Package log creates [log/slog] handlers from CLI configuration.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

const (
	TextFormat   = "text"
	LogfmtFormat = "logfmt"
	JSONFormat   = "json"
)

// CreateHandler creates a [slog.Handler] writing to w, configured by level
// and format strings as they arrive from the command line.
func CreateHandler(w io.Writer, logLevel, logFormat string) (slog.Handler, error) {
	level, err := ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(logFormat) {
	case JSONFormat:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}), nil

	case LogfmtFormat:
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}), nil

	case TextFormat, "":
		return charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmlog.Level(level),
			ReportTimestamp: true,
		}), nil
	}

	return nil, fmt.Errorf("unknown log format %q", logFormat)
}

// ParseLevel converts a level name into a [slog.Level].
func ParseLevel(logLevel string) (slog.Level, error) {
	switch strings.ToLower(logLevel) {
	case "debug", "trace":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error", "fatal":
		return slog.LevelError, nil
	}

	return 0, fmt.Errorf("unknown log level %q", logLevel)
}
