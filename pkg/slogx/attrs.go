package slogx

import (
	"log/slog"
)

// Error returns a slog.Attr with key "error" and the error's message.
// A nil error is rendered as an empty string.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// Topic returns the attribute used for topic names.
func Topic(name string) slog.Attr {
	return slog.String("topic", name)
}

// Agent returns the attribute used for agent names.
func Agent(name string) slog.Attr {
	return slog.String("agent", name)
}

// Panic returns an attribute describing a recovered panic value.
func Panic(v any) slog.Attr {
	return slog.Any("panic", v)
}

const (
	// KeyLoggerName is the key for the component that emitted a record.
	KeyLoggerName = "logger"
)

// LoggerName returns an attribute for the logger name.
func LoggerName(name string) slog.Attr {
	return slog.String(KeyLoggerName, name)
}
