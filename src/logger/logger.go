// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"maps"
	"os"
	"sync"

	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/internal/helper/gc"
)

// Logger defines the interface for logging operations.
// It provides methods for formatted output and output redirection.
//
// Batch workers share one Logger, so implementations must be safe for
// concurrent use.
type Logger interface {
	// Printf formats and prints a log message.
	Printf(format string, v ...any)
	// Println prints a log message with a newline.
	Println(v ...any)
	// SetOutput sets the output destination for the logger.
	SetOutput(w io.Writer)
}

// FieldLogger is a Logger that can derive loggers carrying extra fields.
type FieldLogger interface {
	Logger
	// WithFields returns a logger that adds fields to every entry.
	WithFields(fields map[string]any) Logger
}

// CLILogger implements Logger using the standard log package.
// It's designed for command-line interface output with human-readable formatting.
type CLILogger struct{ logger *log.Logger }

// NewCLILogger creates a new CLI logger with timestamps disabled.
// This is suitable for user-facing CLI output.
func NewCLILogger() *CLILogger {
	l := log.New(os.Stdout, "", 0)
	return &CLILogger{logger: l}
}

// Printf formats and prints a log message using fmt.Printf semantics.
func (c *CLILogger) Printf(format string, v ...any) { c.logger.Printf(format, v...) }

// Println prints a log message with a newline.
func (c *CLILogger) Println(v ...any) { c.logger.Println(v...) }

// SetOutput sets the output destination for the CLI logger.
func (c *CLILogger) SetOutput(w io.Writer) { c.logger.SetOutput(w) }

// JSONLogger implements Logger by writing one JSON object per line.
// Every entry carries the fixed fields given at construction (for example the
// batch run id) next to "level" and "message".
//
// JSONLogger is safe for concurrent use by multiple goroutines.
type JSONLogger struct {
	mu     *sync.Mutex // shared with loggers derived through With
	writer io.Writer
	fields map[string]any
}

// NewJSONLogger creates a new structured logger writing to w.
// A nil writer discards output.
func NewJSONLogger(w io.Writer, fields map[string]any) *JSONLogger {
	if w == nil {
		w = io.Discard
	}
	return &JSONLogger{
		mu:     new(sync.Mutex),
		writer: w,
		fields: maps.Clone(fields),
	}
}

// With returns a logger sharing the destination of m with additional fixed fields.
func (m *JSONLogger) With(key string, value any) *JSONLogger {
	return m.derive(map[string]any{key: value})
}

// WithFields implements [FieldLogger].
func (m *JSONLogger) WithFields(fields map[string]any) Logger { return m.derive(fields) }

func (m *JSONLogger) derive(extra map[string]any) *JSONLogger {
	m.mu.Lock()
	defer m.mu.Unlock()

	fields := make(map[string]any, len(m.fields)+len(extra))
	maps.Copy(fields, m.fields)
	maps.Copy(fields, extra)
	return &JSONLogger{mu: m.mu, writer: m.writer, fields: fields}
}

// Printf formats and logs a structured message.
func (m *JSONLogger) Printf(format string, v ...any) { m.emit(fmt.Sprintf(format, v...)) }

// Println logs a structured message.
func (m *JSONLogger) Println(v ...any) { m.emit(fmt.Sprint(v...)) }

// SetOutput sets the output destination for the JSON logger.
// Loggers derived through With keep their own destination.
func (m *JSONLogger) SetOutput(w io.Writer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if w == nil {
		m.writer = io.Discard
	} else {
		m.writer = w
	}
}

func (m *JSONLogger) emit(msg string) {
	entry := make(map[string]any, len(m.fields)+2)
	maps.Copy(entry, m.fields)
	entry["level"] = "info"
	entry["message"] = msg

	buf := gc.Default.Get()
	defer func() {
		buf.Reset()
		gc.Default.Put(buf)
	}()

	// Encode appends the trailing newline.
	if err := json.NewEncoder(buf).Encode(entry); err != nil {
		return
	}

	m.mu.Lock()
	buf.WriteTo(m.writer)
	m.mu.Unlock()
}

// New returns the logger matching format: "json" selects [JSONLogger],
// anything else selects [CLILogger].
func New(format string, fields map[string]any) Logger {
	if format == "json" {
		return NewJSONLogger(os.Stdout, fields)
	}
	return NewCLILogger()
}
