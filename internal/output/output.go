// Package output provides context-aware output for deep-code.
// Stdout is used for primary data output (pull request URLs, history tables).
// Stderr (via log package) is used for diagnostics.
package output

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/colorprofile"

	"github.com/deepesdl/deep-code/internal/ui/styles"
)

type ctxKey struct{}

// Printer writes primary output to stdout.
type Printer struct {
	w io.Writer
}

// New creates a new Printer writing to the given writer.
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Downsample wraps w so styled output is reduced to what the destination
// supports: plain text when piped or when NO_COLOR is set.
func Downsample(w io.Writer) io.Writer {
	return colorprofile.NewWriter(w, os.Environ())
}

// WithPrinter attaches a Printer to the context.
func WithPrinter(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, ctxKey{}, &Printer{w: w})
}

// FromContext retrieves the Printer from context.
// Returns a Printer writing to os.Stdout if none is attached.
func FromContext(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return &Printer{w: os.Stdout}
}

// Print writes output without a newline.
func (p *Printer) Print(a ...any) {
	fmt.Fprint(p.w, a...)
}

// Printf writes formatted output.
func (p *Printer) Printf(format string, a ...any) {
	fmt.Fprintf(p.w, format, a...)
}

// Println writes a line of output.
func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.w, a...)
}

// Field writes a "key: value" line with a muted key.
func (p *Printer) Field(key, value string) {
	fmt.Fprintf(p.w, "%s %s\n", styles.MutedStyle.Render(key+":"), value)
}

// Success writes a checkmarked line.
func (p *Printer) Success(msg string) {
	fmt.Fprintf(p.w, "%s %s\n", styles.SuccessStyle.Render(styles.CheckMark), msg)
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.w
}
