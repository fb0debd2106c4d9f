package models

import (
	"sort"
	"strings"
)

// Span is a half-open byte range into the source text of a compilation unit
type Span struct {
	Start int
	End   int
}

// NoSpan marks synthesized nodes that have no source text
var NoSpan = Span{Start: -1, End: -1}

// IsValid reports whether the span points into source text
func (s Span) IsValid() bool { return s.Start >= 0 && s.End >= s.Start }

// Len returns the number of bytes covered
func (s Span) Len() int {
	if !s.IsValid() {
		return 0
	}
	return s.End - s.Start
}

// Cover returns the smallest span containing s and o
func (s Span) Cover(o Span) Span {
	if !s.IsValid() {
		return o
	}
	if !o.IsValid() {
		return s
	}
	if o.Start < s.Start {
		s.Start = o.Start
	}
	if o.End > s.End {
		s.End = o.End
	}
	return s
}

// Position is a 1-based line and column
type Position struct {
	Line   int
	Column int
}

// LineIndex maps byte offsets of a source text to line/column positions
type LineIndex struct {
	src    string
	starts []int
}

// NewLineIndex indexes the line starts of src
func NewLineIndex(src string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{src: src, starts: starts}
}

// Position returns the line/column of a byte offset
func (li *LineIndex) Position(offset int) Position {
	if offset < 0 {
		return Position{Line: 1, Column: 1}
	}
	if offset > len(li.src) {
		offset = len(li.src)
	}
	line := sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > offset }) - 1
	return Position{Line: line + 1, Column: offset - li.starts[line] + 1}
}

// LineCount returns the number of lines
func (li *LineIndex) LineCount() int { return len(li.starts) }

// LineStart returns the offset of the first byte of a 1-based line
func (li *LineIndex) LineStart(line int) int {
	if line < 1 {
		return 0
	}
	if line > len(li.starts) {
		return len(li.src)
	}
	return li.starts[line-1]
}

// LineText returns the text of a 1-based line without its terminator
func (li *LineIndex) LineText(line int) string {
	if line < 1 || line > len(li.starts) {
		return ""
	}
	start := li.starts[line-1]
	end := len(li.src)
	if line < len(li.starts) {
		end = li.starts[line] - 1
	}
	return strings.TrimSuffix(li.src[start:end], "\r")
}
