// Package log provides the logger handle used across deep-code.
//
// The process entry point creates one [Logger] and hands it to every
// component that needs it. The CLI layer additionally attaches it to the
// command context so cobra handlers can retrieve it with [FromContext].
package log

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

type ctxKey struct{}

// Logger provides output and verbose command logging.
type Logger struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool
	quiet   bool
}

// New creates a new logger. quiet suppresses everything, including verbose output.
func New(out io.Writer, verbose, quiet bool) *Logger {
	return &Logger{out: out, verbose: verbose, quiet: quiet}
}

// Discard returns a logger that drops all output.
func Discard() *Logger {
	return &Logger{out: io.Discard}
}

// WithLogger attaches a logger to the context.
func WithLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext retrieves the logger from context.
// Returns a no-op logger if none is attached.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok && l != nil {
		return l
	}
	return Discard()
}

// Printf writes formatted output.
func (l *Logger) Printf(format string, args ...any) {
	if l.quiet {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, format, args...)
}

// Println writes a line of output.
func (l *Logger) Println(args ...any) {
	if l.quiet {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.out, args...)
}

// Warn writes a warning line. Warnings are shown unless quiet.
func (l *Logger) Warn(msg string, keyvals ...any) {
	if l.quiet {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "Warning: %s%s\n", msg, formatKeyvals(keyvals))
}

// Debug writes a key=value diagnostic line in verbose mode.
// A trailing key without a value is dropped.
func (l *Logger) Debug(msg string, keyvals ...any) {
	if !l.IsVerbose() {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "%s%s\n", msg, formatKeyvals(keyvals))
}

// Command logs an external command execution and returns a callback that
// reports its duration. Only prints when verbose mode is enabled.
func (l *Logger) Command(dir, name string, args ...string) func(time.Duration) {
	if !l.IsVerbose() {
		return func(time.Duration) {}
	}
	line := fmt.Sprintf("$ %s %s", name, strings.Join(args, " "))
	if dir != "" {
		line = fmt.Sprintf("[%s] %s", dir, line)
	}
	return func(d time.Duration) {
		l.mu.Lock()
		defer l.mu.Unlock()
		fmt.Fprintf(l.out, "%s (%s)\n", line, d.Round(time.Millisecond))
	}
}

// IsVerbose returns true if verbose mode is enabled and not overridden by quiet.
func (l *Logger) IsVerbose() bool {
	return l.verbose && !l.quiet
}

// Writer returns the underlying writer.
func (l *Logger) Writer() io.Writer {
	return l.out
}

func formatKeyvals(keyvals []any) string {
	var b strings.Builder
	for i := 0; i+1 < len(keyvals); i += 2 {
		fmt.Fprintf(&b, " %v=%v", keyvals[i], keyvals[i+1])
	}
	return b.String()
}
