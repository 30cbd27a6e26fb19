package renderer

import (
	"strconv"

	"github.com/rivo/uniseg"
)

// TabWidth is the number of cells a tab occupies.
const TabWidth = 4

// line is a byte range of one line, excluding its newline.
type line struct {
	start, end int
}

func splitLines(text string) []line {
	lines := make([]line, 0, 16)
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, line{start, i})
			start = i + 1
		}
	}
	return append(lines, line{start, len(text)})
}

// walk calls fn for each grapheme cluster of l with its byte offset,
// first cell column and cell width. fn returns false to stop.
func walk(text string, l line, fn func(off, col, width int, cluster string) bool) int {
	rest := text[l.start:l.end]
	off, col := l.start, 0
	state := -1
	for rest != "" {
		var cluster string
		var width int
		cluster, rest, width, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if cluster == "\t" {
			width = TabWidth - col%TabWidth
		}
		if !fn(off, col, width, cluster) {
			return col
		}
		off += len(cluster)
		col += width
	}
	return col
}

// offsetAt returns the byte offset of the cluster covering column col
// of l. Columns past the end map to l.end.
func offsetAt(text string, l line, col int) int {
	found := l.end
	walk(text, l, func(off, c, w int, _ string) bool {
		if col < c+max(w, 1) {
			found = off
			return false
		}
		return true
	})
	return found
}

// columnOf returns the first cell column of the cluster at off in l.
func columnOf(text string, l line, off int) int {
	col := -1
	end := walk(text, l, func(o, c, _ int, _ string) bool {
		if o >= off {
			col = c
			return false
		}
		return true
	})
	if col < 0 {
		return end
	}
	return col
}

// lineOf returns the index of the line containing off.
func lineOf(lines []line, off int) int {
	for i, l := range lines {
		if off <= l.end {
			return i
		}
	}
	return len(lines) - 1
}

// gutterWidth is the width of the line number column plus a separator.
func gutterWidth(lineCount int) int {
	return len(strconv.Itoa(lineCount)) + 1
}
