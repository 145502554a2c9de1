// Package logging provides the process-wide logger: a human-readable
// console stream on stderr and JSON lines appended to an optional log file.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu      sync.Mutex
	logFile *os.File
	logger  = defaultLogger()
)

// defaultLogger writes info and above to stderr until Init is called.
func defaultLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.InfoLevel).With().Timestamp().Logger()
}

// Init routes log output to stderr and, when logPath is set, to logPath.
// Debug level is enabled only when debug is true.
func Init(logPath string, debug bool) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}

	writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr}}

	if logPath != "" {
		if dir := filepath.Dir(logPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		logFile = file
		writers = append(writers, logFile)
	}

	setOutput(zerolog.MultiLevelWriter(writers...), debug)
	return nil
}

func setOutput(w io.Writer, debug bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger = zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Close flushes and closes the log file, if any, and falls back to stderr.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	logger = defaultLogger()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

func current() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// LogEvent records an informational message.
func LogEvent(format string, args ...any) {
	l := current()
	l.Info().Msgf(format, args...)
}

// LogWarn records a recoverable problem.
func LogWarn(format string, args ...any) {
	l := current()
	l.Warn().Msgf(format, args...)
}

// LogError records a failure together with its cause.
func LogError(err error, format string, args ...any) {
	l := current()
	l.Error().Err(err).Msgf(format, args...)
}

// LogDebug records a message only visible with debug enabled.
func LogDebug(format string, args ...any) {
	l := current()
	l.Debug().Msgf(format, args...)
}

// LogRequest records a payload exchanged with the inference server at debug level.
func LogRequest(direction, host, model string, payload any) {
	l := current()
	dir, hostValue, modelValue := requestFields(direction, host, model)
	l.Debug().
		Str("direction", dir).
		Str("host", hostValue).
		Str("model", modelValue).
		Str("payload", formatPayload(payload)).
		Msg("llm exchange")
}

func requestFields(direction, host, model string) (string, string, string) {
	dir := strings.ToUpper(strings.TrimSpace(direction))
	hostValue := strings.TrimSpace(host)
	if hostValue == "" {
		hostValue = "unknown"
	}
	modelValue := strings.TrimSpace(model)
	if modelValue == "" {
		modelValue = "unknown"
	}
	return dir, hostValue, modelValue
}

func formatPayload(payload any) string {
	switch v := payload.(type) {
	case nil:
		return "null"
	case string:
		if strings.TrimSpace(v) == "" {
			return `""`
		}
		return v
	case []byte:
		if len(v) == 0 {
			return "[]"
		}
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}
