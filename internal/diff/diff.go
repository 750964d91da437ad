// Package diff computes line diffs between an existing flake.nix and a newly
// generated one, for previews before overwriting.
package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op is the kind of a diff line.
type Op int

// Line operations.
const (
	Equal Op = iota
	Insert
	Delete
)

// Line is one line of a diff, without its trailing newline.
type Line struct {
	Op   Op
	Text string
}

// Prefix returns the unified diff marker for the line.
func (l Line) Prefix() string {
	switch l.Op {
	case Insert:
		return "+"
	case Delete:
		return "-"
	default:
		return " "
	}
}

// Hunk is a run of changed lines with surrounding context. Starts are
// 1-based line numbers.
type Hunk struct {
	OldStart int
	OldLines int
	NewStart int
	NewLines int
	Lines    []Line
}

// Header returns the "@@ -a,b +c,d @@" line.
func (h Hunk) Header() string {
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldLines, h.NewStart, h.NewLines)
}

// Lines diffs two texts line by line.
func Lines(oldText, newText string) []Line {
	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var lines []Line
	for _, d := range diffs {
		op := Equal
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = Insert
		case diffmatchpatch.DiffDelete:
			op = Delete
		}
		for _, text := range splitLines(d.Text) {
			lines = append(lines, Line{Op: op, Text: text})
		}
	}
	return lines
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

// Changed reports whether any line was inserted or deleted.
func Changed(lines []Line) bool {
	for _, l := range lines {
		if l.Op != Equal {
			return true
		}
	}
	return false
}

// Stats counts inserted and deleted lines.
func Stats(lines []Line) (inserted, deleted int) {
	for _, l := range lines {
		switch l.Op {
		case Insert:
			inserted++
		case Delete:
			deleted++
		}
	}
	return inserted, deleted
}

// Hunks groups changes with up to context unchanged lines around them.
// Changes separated by at most 2*context unchanged lines share a hunk.
func Hunks(lines []Line, context int) []Hunk {
	n := len(lines)
	oldAt := make([]int, n+1)
	newAt := make([]int, n+1)
	for i, l := range lines {
		oldAt[i+1], newAt[i+1] = oldAt[i], newAt[i]
		if l.Op != Insert {
			oldAt[i+1]++
		}
		if l.Op != Delete {
			newAt[i+1]++
		}
	}

	var hunks []Hunk
	for i := 0; i < n; {
		if lines[i].Op == Equal {
			i++
			continue
		}

		end := i + 1
		for j := i + 1; j < n; {
			if lines[j].Op != Equal {
				end = j + 1
				j++
				continue
			}
			k := j
			for k < n && lines[k].Op == Equal {
				k++
			}
			if k == n || k-j > 2*context {
				break
			}
			j = k
		}

		start := max(0, i-context)
		stop := min(n, end+context)
		h := Hunk{
			OldStart: oldAt[start] + 1,
			OldLines: oldAt[stop] - oldAt[start],
			NewStart: newAt[start] + 1,
			NewLines: newAt[stop] - newAt[start],
			Lines:    lines[start:stop],
		}
		if h.OldLines == 0 {
			h.OldStart--
		}
		if h.NewLines == 0 {
			h.NewStart--
		}
		hunks = append(hunks, h)
		i = stop
	}
	return hunks
}

// Unified renders a unified diff of two texts. It returns "" when they are
// equal.
func Unified(oldName, newName, oldText, newText string, context int) string {
	lines := Lines(oldText, newText)
	if !Changed(lines) {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- %s\n+++ %s\n", oldName, newName)
	for _, h := range Hunks(lines, context) {
		b.WriteString(h.Header())
		b.WriteByte('\n')
		for _, l := range h.Lines {
			b.WriteString(l.Prefix())
			b.WriteString(l.Text)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
