// Package logging provides structured logging functionality.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Logger provides structured logging.
type Logger interface {
	// Debug logs a debug message
	Debug(msg string, fields ...Field)

	// Info logs an info message
	Info(msg string, fields ...Field)

	// Warn logs a warning message
	Warn(msg string, fields ...Field)

	// Error logs an error message
	Error(msg string, fields ...Field)

	// WithFields returns a new logger with the given fields attached to
	// every entry
	WithFields(fields ...Field) Logger
}

// Field represents a key-value pair in a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// F is a shorthand constructor for a Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// LogEntry represents a structured log entry.
type LogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Options configures a logger.
type Options struct {
	// Level is the minimum level to output: "debug", "info", "warn", "error"
	Level string

	// Format is "json" or "text"
	Format string

	// Output is "stdout", "stderr" or "file"
	Output string

	// FilePath is the log file path when Output is "file"
	FilePath string
}

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
)

var levelNames = map[level]string{
	levelDebug: "debug",
	levelInfo:  "info",
	levelWarn:  "warn",
	levelError: "error",
}

func parseLevel(s string) level {
	switch strings.ToLower(s) {
	case "debug":
		return levelDebug
	case "warn", "warning":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

type logger struct {
	mu     *sync.Mutex
	out    io.Writer
	min    level
	json   bool
	fields []Field
}

// New creates a logger from options. Unknown outputs fall back to stdout and
// an unopenable log file is reported on stderr rather than failing startup.
func New(opts Options) Logger {
	var out io.Writer
	switch opts.Output {
	case "stderr":
		out = os.Stderr
	case "file":
		f, err := os.OpenFile(opts.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "logging: cannot open %s: %v, falling back to stdout\n", opts.FilePath, err)
			out = os.Stdout
		} else {
			out = f
		}
	default:
		out = os.Stdout
	}

	return &logger{
		mu:   &sync.Mutex{},
		out:  out,
		min:  parseLevel(opts.Level),
		json: opts.Format == "json",
	}
}

// NewWithWriter creates a text logger writing to w. Intended for tests.
func NewWithWriter(w io.Writer, levelName string) Logger {
	return &logger{
		mu:  &sync.Mutex{},
		out: w,
		min: parseLevel(levelName),
	}
}

func (l *logger) Debug(msg string, fields ...Field) { l.log(levelDebug, msg, fields) }
func (l *logger) Info(msg string, fields ...Field)  { l.log(levelInfo, msg, fields) }
func (l *logger) Warn(msg string, fields ...Field)  { l.log(levelWarn, msg, fields) }
func (l *logger) Error(msg string, fields ...Field) { l.log(levelError, msg, fields) }

func (l *logger) WithFields(fields ...Field) Logger {
	combined := make([]Field, 0, len(l.fields)+len(fields))
	combined = append(combined, l.fields...)
	combined = append(combined, fields...)
	return &logger{
		mu:     l.mu,
		out:    l.out,
		min:    l.min,
		json:   l.json,
		fields: combined,
	}
}

func (l *logger) log(lv level, msg string, fields []Field) {
	if lv < l.min {
		return
	}

	all := make([]Field, 0, len(l.fields)+len(fields))
	all = append(all, l.fields...)
	all = append(all, fields...)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.json {
		entry := LogEntry{
			Timestamp: time.Now().UTC(),
			Level:     levelNames[lv],
			Message:   msg,
		}
		if len(all) > 0 {
			entry.Fields = make(map[string]interface{}, len(all))
			for _, f := range all {
				entry.Fields[f.Key] = f.Value
			}
		}
		data, err := json.Marshal(entry)
		if err != nil {
			fmt.Fprintf(l.out, `{"level":"error","message":"logging: marshal failed: %v"}`+"\n", err)
			return
		}
		l.out.Write(append(data, '\n'))
		return
	}

	var b strings.Builder
	b.WriteString(time.Now().UTC().Format(time.RFC3339))
	b.WriteByte(' ')
	b.WriteString(strings.ToUpper(levelNames[lv]))
	b.WriteByte(' ')
	b.WriteString(msg)

	// Sorted keys keep text output stable.
	sort.SliceStable(all, func(i, j int) bool { return all[i].Key < all[j].Key })
	for _, f := range all {
		fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
	}
	b.WriteByte('\n')
	l.out.Write([]byte(b.String()))
}
