// Package render formats debate data for the terminal.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Writer writes formatted lines straight to an io.Writer.
type Writer struct {
	out io.Writer
}

// NewWriter creates a Writer that writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{out: w}
}

// Stdout returns a Writer on os.Stdout.
func Stdout() *Writer {
	return NewWriter(os.Stdout)
}

// Stderr returns a Writer on os.Stderr.
func Stderr() *Writer {
	return NewWriter(os.Stderr)
}

func (w *Writer) Print(format string, args ...any) {
	fmt.Fprintf(w.out, format, args...)
}

func (w *Writer) Println(format string, args ...any) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Line writes a blank line.
func (w *Writer) Line() {
	fmt.Fprintln(w.out)
}

// Header writes an upper-cased title followed by a blank line.
func (w *Writer) Header(title string, args ...any) {
	if len(args) > 0 {
		title = fmt.Sprintf(title, args...)
	}
	fmt.Fprintf(w.out, "%s\n\n", strings.ToUpper(title))
}

// Item writes an indented line.
func (w *Writer) Item(format string, args ...any) {
	fmt.Fprintf(w.out, "  "+format+"\n", args...)
}

// Raw writes pre-rendered output as is.
func (w *Writer) Raw(s string) {
	io.WriteString(w.out, s)
}

// Notice writes a one-line notification prefixed by its level icon.
func (w *Writer) Notice(level, message string) {
	w.Println("%s %s", LevelIcon(level), message)
}

// LevelIcon returns the coloured icon for a notification level or check
// status. Unknown levels get a neutral bullet.
func LevelIcon(level string) string {
	switch level {
	case "success", "ok":
		return color.GreenString("✓")
	case "error":
		return color.RedString("✗")
	case "degraded":
		return color.YellowString("!")
	case "info":
		return "i"
	default:
		return "•"
	}
}
