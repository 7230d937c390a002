package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	LogFormatText = "text"
	LogFormatJSON = "json"
	// LogFormatAuto picks text on a terminal and JSON otherwise.
	LogFormatAuto = "auto"
)

type LogConfig struct {
	Level  string
	Format string
}

func (c LogConfig) level() (slog.Level, error) {
	var level slog.Level
	if c.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return 0, fmt.Errorf("log.level %q: %w", c.Level, err)
	}
	return level, nil
}

// NewLogger builds the process logger writing to w.
func (c LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := c.level()
	if err != nil {
		return nil, err
	}

	options := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch c.Format {
	case LogFormatJSON:
		handler = slog.NewJSONHandler(w, options)
	case LogFormatAuto:
		if IsTerminal(w) {
			handler = slog.NewTextHandler(w, options)
		} else {
			handler = slog.NewJSONHandler(w, options)
		}
	case "", LogFormatText:
		handler = slog.NewTextHandler(w, options)
	default:
		return nil, fmt.Errorf("log.format %q: want %s, %s or %s", c.Format, LogFormatText, LogFormatJSON, LogFormatAuto)
	}
	return slog.New(handler), nil
}

func validLogFormat(format string) bool {
	switch format {
	case "", LogFormatText, LogFormatJSON, LogFormatAuto:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
