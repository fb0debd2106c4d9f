package errors

import (
	"fmt"
	"io"
	"strings"
)

// PathStyle selects the separator used for file paths in reports
type PathStyle int

const (
	// PathStyleWindows prints backslash separators regardless of the host
	PathStyleWindows PathStyle = iota
	// PathStyleNative prints paths as they were supplied
	PathStyleNative
)

const reportRule = "----------\n"

// FormatPath renders a unit path in the given style
func FormatPath(path string, style PathStyle) string {
	if style == PathStyleWindows {
		return strings.ReplaceAll(path, "/", "\\")
	}
	return path
}

// WriteReport renders the diagnostics of one unit in the JDT problem layout.
// Nothing is written for an empty list.
func WriteReport(w io.Writer, diags []*Diagnostic, style PathStyle) error {
	if len(diags) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(reportRule)
	for i, d := range diags {
		writeProblem(&sb, i+1, d, style)
		sb.WriteString(reportRule)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// FormatReport is WriteReport into a string
func FormatReport(diags []*Diagnostic, style PathStyle) string {
	var sb strings.Builder
	_ = WriteReport(&sb, diags, style)
	return sb.String()
}

func writeProblem(sb *strings.Builder, n int, d *Diagnostic, style PathStyle) {
	path := ""
	if d.Unit != nil {
		path = FormatPath(d.Unit.Path, style)
	}
	pos := d.Position()
	fmt.Fprintf(sb, "%d. %s in %s (at line %d)\n", n, d.Severity, path, pos.Line)

	line := ""
	if d.Unit != nil {
		line = d.Unit.Lines.LineText(pos.Line)
	}
	trimmed := strings.TrimLeft(line, " \t")
	cut := len(line) - len(trimmed)

	start := pos.Column - 1 - cut
	if start < 0 {
		start = 0
	}
	if start > len(trimmed) {
		start = len(trimmed)
	}
	width := d.Span.Len()
	if rest := len(trimmed) - start; width > rest {
		width = rest
	}
	if width < 1 {
		width = 1
	}

	sb.WriteByte('\t')
	sb.WriteString(trimmed)
	sb.WriteString("\n\t")
	for i := 0; i < start; i++ {
		if trimmed[i] == '\t' {
			sb.WriteByte('\t')
		} else {
			sb.WriteByte(' ')
		}
	}
	sb.WriteString(strings.Repeat("^", width))
	sb.WriteByte('\n')
	sb.WriteString(d.Text())
	sb.WriteByte('\n')
}
