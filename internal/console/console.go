package console

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Console writes categorized user-facing messages. Info and success lines go to
// Out, errors go to Err. Colors are dropped automatically when a stream is not a
// terminal.
type Console struct {
	Out io.Writer
	Err io.Writer

	success lipgloss.Style
	failure lipgloss.Style
	muted   lipgloss.Style
}

// New creates a Console writing to the given streams.
func New(out, errOut io.Writer) *Console {
	outR := lipgloss.NewRenderer(out)
	errR := lipgloss.NewRenderer(errOut)
	return &Console{
		Out:     out,
		Err:     errOut,
		success: outR.NewStyle().Foreground(lipgloss.Color("42")),
		failure: errR.NewStyle().Foreground(lipgloss.Color("196")),
		muted:   outR.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// Std returns a Console bound to the process stdout and stderr.
func Std() *Console {
	return New(os.Stdout, os.Stderr)
}

// Message prints an informational line.
func (c *Console) Message(msg string) {
	fmt.Fprintln(c.Out, msg)
}

// Messagef prints a formatted informational line.
func (c *Console) Messagef(format string, args ...any) {
	c.Message(fmt.Sprintf(format, args...))
}

// Detail prints a dimmed, indented " - " line under the previous message.
func (c *Console) Detail(msg string) {
	fmt.Fprintln(c.Out, c.muted.Render(" - "+msg))
}

// Success prints a success line.
func (c *Console) Success(msg string) {
	fmt.Fprintln(c.Out, c.success.Render(msg))
}

// Error prints an error line to Err.
func (c *Console) Error(msg string) {
	fmt.Fprintln(c.Err, c.failure.Render(msg))
}

// Errors prints every message, one per line, so users see all problems at once.
func (c *Console) Errors(msgs []string) {
	for _, msg := range msgs {
		c.Error(msg)
	}
}

// NewLine prints an empty line.
func (c *Console) NewLine() {
	fmt.Fprintln(c.Out)
}
