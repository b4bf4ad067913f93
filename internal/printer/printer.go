// Package printer writes human-readable command output.
package printer

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/colonyops/quill/internal/core/styles"
)

type ctxKey struct{}

// Printer formats status lines for CLI commands.
type Printer struct {
	out io.Writer
	err io.Writer
}

// New returns a Printer writing normal output to out and errors to errOut.
func New(out, errOut io.Writer) *Printer {
	return &Printer{out: out, err: errOut}
}

// WithPrinter stores p in ctx.
func WithPrinter(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx returns the Printer stored in ctx, or one writing to stdout and stderr.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stdout, os.Stderr)
}

func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *Printer) Section(title string) {
	_, _ = fmt.Fprintln(p.out, styles.CommandHeaderStyle.Render(title))
}

func (p *Printer) Successf(format string, args ...any) {
	p.line(p.out, styles.SuccessTextStyle.Render("✓"), format, args...)
}

func (p *Printer) Infof(format string, args ...any) {
	p.line(p.out, styles.DividerStyle.Render(styles.IconInfo), format, args...)
}

func (p *Printer) Warnf(format string, args ...any) {
	p.line(p.err, styles.WarningTextStyle.Render(styles.IconWarning), format, args...)
}

func (p *Printer) Errorf(format string, args ...any) {
	p.line(p.err, styles.ErrorTextStyle.Render(styles.IconError), format, args...)
}

func (p *Printer) line(w io.Writer, icon, format string, args ...any) {
	_, _ = fmt.Fprintf(w, "%s %s\n", icon, fmt.Sprintf(format, args...))
}
