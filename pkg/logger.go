package fdb

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// Supported log formats
const (
	LogFormatText   = "text"
	LogFormatJSON   = "json"
	LogFormatLogfmt = "logfmt"
)

// ParseLogLevel accepts charm level names plus WARNING and CRITICAL
func ParseLogLevel(level string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "warning":
		return log.WarnLevel, nil
	case "critical":
		return log.FatalLevel, nil
	}
	parsed, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return 0, fmt.Errorf("invalid log level: %s (supported: debug, info, warning, error, critical)", level)
	}
	return parsed, nil
}

// ParseLogFormat maps a format name onto a charm formatter
func ParseLogFormat(format string) (log.Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", LogFormatText:
		return log.TextFormatter, nil
	case LogFormatJSON:
		return log.JSONFormatter, nil
	case LogFormatLogfmt:
		return log.LogfmtFormatter, nil
	default:
		return 0, fmt.Errorf("invalid log format: %s (supported: text, json, logfmt)", format)
	}
}

// NewLogger builds the leveled logger handed to every component
func NewLogger(w io.Writer, level, format string) (*log.Logger, error) {
	lvl, err := ParseLogLevel(level)
	if err != nil {
		return nil, err
	}
	formatter, err := ParseLogFormat(format)
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Formatter:       formatter,
		ReportTimestamp: true,
		Prefix:          "fdb",
	}), nil
}

// orDiscard returns logger, or a logger that drops everything when nil
func orDiscard(logger *log.Logger) *log.Logger {
	if logger != nil {
		return logger
	}
	return log.New(io.Discard)
}

// percent formats i of n as a percentage; n must be non-zero
func percent(i, n int) string {
	return fmt.Sprintf("%.2f%%", float64(i)/float64(n)*100)
}
