package flake

import (
	"fmt"
	"strings"
)

const indentUnit = "  "

// nixWriter builds indented text line by line.
type nixWriter struct {
	b     strings.Builder
	depth int
}

func (w *nixWriter) line(format string, args ...any) {
	w.raw(fmt.Sprintf(format, args...))
}

// raw writes s at the current depth without formatting. Blank lines carry
// no indentation.
func (w *nixWriter) raw(s string) {
	if s != "" {
		w.b.WriteString(strings.Repeat(indentUnit, w.depth))
		w.b.WriteString(s)
	}
	w.b.WriteByte('\n')
}

func (w *nixWriter) blank() {
	w.b.WriteByte('\n')
}

func (w *nixWriter) indent(fn func()) {
	w.depth++
	fn()
	w.depth--
}

func (w *nixWriter) String() string {
	return w.b.String()
}
