// Package debug provides logging, diagnostics and buffer inspection for the
// signal core and its hosts.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// LogLevel is a message severity. LogLevelOff silences a logger.
type LogLevel int32

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	LogLevelOff
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR", "OFF"}

func (l LogLevel) String() string {
	if l >= 0 && int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "UNKNOWN"
}

// ParseLevel reads a level name in any case. "warning" and "none" are
// accepted as aliases.
func ParseLevel(s string) (LogLevel, error) {
	up := strings.ToUpper(s)
	switch up {
	case "WARNING":
		return LogLevelWarn, nil
	case "NONE":
		return LogLevelOff, nil
	}
	for i, name := range levelNames {
		if name == up {
			return LogLevel(i), nil
		}
	}
	return LogLevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Line decorations.
const (
	FlagTime = 1 << iota
	FlagShortFile
	FlagLevel
	FlagPrefix
)

const (
	DefaultFlags  = FlagTime | FlagLevel | FlagPrefix
	DefaultPrefix = "GlicolVerb"
)

// Logger writes leveled printf-style lines. The level is atomic so the audio
// goroutine can check Enabled without taking the lock.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	prefix string
	flags  int
	level  atomic.Int32
}

var defaultLogger = New(os.Stderr, DefaultPrefix, DefaultFlags)

// Default is the stderr logger used when a component is given none.
func Default() *Logger { return defaultLogger }

// New creates a logger at LogLevelInfo.
func New(out io.Writer, prefix string, flags int) *Logger {
	l := &Logger{out: out, prefix: prefix, flags: flags}
	l.level.Store(int32(LogLevelInfo))
	return l
}

// NewFileLogger appends to filename, creating it and its directory as
// needed. The caller closes the returned file.
func NewFileLogger(filename, prefix string, flags int) (*Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return New(f, prefix, flags), f, nil
}

// Discard returns a silent logger.
func Discard() *Logger {
	l := New(io.Discard, "", 0)
	l.SetLevel(LogLevelOff)
	return l
}

func (l *Logger) SetLevel(level LogLevel) { l.level.Store(int32(level)) }
func (l *Logger) Level() LogLevel         { return LogLevel(l.level.Load()) }

// Enabled reports whether a line at level would be written. A nil logger
// writes nothing.
func (l *Logger) Enabled(level LogLevel) bool {
	return l != nil && level < LogLevelOff && level >= l.Level()
}

func (l *Logger) Debug(format string, args ...any) { l.write(LogLevelDebug, format, args) }
func (l *Logger) Info(format string, args ...any)  { l.write(LogLevelInfo, format, args) }
func (l *Logger) Warn(format string, args ...any)  { l.write(LogLevelWarn, format, args) }
func (l *Logger) Error(format string, args ...any) { l.write(LogLevelError, format, args) }

func (l *Logger) write(level LogLevel, format string, args []any) {
	if !l.Enabled(level) {
		return
	}

	var sb strings.Builder
	if l.flags&FlagTime != 0 {
		sb.WriteString(time.Now().Format("2006-01-02 15:04:05.000 "))
	}
	if l.flags&FlagLevel != 0 {
		sb.WriteString("[" + level.String() + "] ")
	}
	if l.flags&FlagPrefix != 0 && l.prefix != "" {
		sb.WriteString("[" + l.prefix + "] ")
	}
	if l.flags&FlagShortFile != 0 {
		// Callers: write, the level method, the user.
		if _, file, line, ok := runtime.Caller(2); ok {
			fmt.Fprintf(&sb, "%s:%d: ", filepath.Base(file), line)
		}
	}
	fmt.Fprintf(&sb, format, args...)
	if !strings.HasSuffix(sb.String(), "\n") {
		sb.WriteByte('\n')
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.out, sb.String())
}
