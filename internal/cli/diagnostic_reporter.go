package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/toyz/jointc/internal/errors"
)

// DiagnosticReporter prints tool failures (configuration, IO, internal
// faults) with their context and suggestions. Source problems are not
// reported here; they go out in the compiler's report format.
type DiagnosticReporter struct {
	verbose bool
	out     io.Writer
}

// NewDiagnosticReporter creates a reporter writing to stderr
func NewDiagnosticReporter(verbose bool) *DiagnosticReporter {
	return &DiagnosticReporter{verbose: verbose, out: os.Stderr}
}

// SetOutput redirects the reporter
func (r *DiagnosticReporter) SetOutput(w io.Writer) { r.out = w }

// ReportWarning prints a one-line warning
func (r *DiagnosticReporter) ReportWarning(message string) {
	orange := color.New(color.FgYellow, color.Bold)
	orange.Fprint(r.out, "! ")
	fmt.Fprintf(r.out, "%s\n", message)
}

// ReportError prints an error, with context and suggestions when it carries them
func (r *DiagnosticReporter) ReportError(err error) {
	fmt.Fprintf(r.out, "\nERROR: Compilation Failed\n")
	fmt.Fprintf(r.out, "=========================\n\n")

	var ce errors.CompilerError
	if stderrors.As(err, &ce) {
		r.reportCompilerError(ce)
	} else {
		fmt.Fprintf(r.out, "Message: %s\n\n", err.Error())
	}
	if r.verbose {
		r.printChain(err)
	}
}

func (r *DiagnosticReporter) reportCompilerError(ce errors.CompilerError) {
	title := errorTitle(ce.ErrorCode())
	fmt.Fprintf(r.out, "Type: %s\n", title)
	fmt.Fprintf(r.out, "%s\n\n", strings.Repeat("-", len(title)+6))
	fmt.Fprintf(r.out, "Message: %s\n\n", ce.Error())

	if loc := ce.Location(); !loc.IsEmpty() {
		fmt.Fprintf(r.out, "Location: %s\n\n", loc)
	}
	if ctx := ce.Context(); len(ctx) > 0 {
		r.printContext(ctx)
	}
	if hints := ce.Suggestions(); len(hints) > 0 {
		r.printSuggestions(hints)
	}
}

func errorTitle(code errors.ErrorCode) string {
	switch code {
	case errors.ValidationErrorCode:
		return "Validation Error"
	case errors.ConfigurationErrorCode:
		return "Configuration Error"
	case errors.FileSystemErrorCode:
		return "File System Error"
	case errors.TemplateErrorCode:
		return "Template Error"
	case errors.CatalogErrorCode:
		return "Library Catalog Error"
	case errors.InternalErrorCode:
		return "Internal Error"
	default:
		return code.String()
	}
}

// printContext prints context entries sorted by key
func (r *DiagnosticReporter) printContext(ctx map[string]interface{}) {
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(r.out, "Context:\n")
	for _, k := range keys {
		fmt.Fprintf(r.out, "   %s: %v\n", formatContextKey(k), ctx[k])
	}
	fmt.Fprintf(r.out, "\n")
}

// formatContextKey turns snake_case keys into Title Case
func formatContextKey(key string) string {
	parts := strings.Split(key, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

func (r *DiagnosticReporter) printSuggestions(suggestions []string) {
	fmt.Fprintf(r.out, "Suggestions:\n")
	for i, suggestion := range suggestions {
		lines := strings.Split(suggestion, "\n")
		fmt.Fprintf(r.out, "   %d. %s\n", i+1, lines[0])
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) != "" {
				fmt.Fprintf(r.out, "      %s\n", line)
			}
		}
	}
	fmt.Fprintf(r.out, "\n")
}

func (r *DiagnosticReporter) printChain(err error) {
	fmt.Fprintf(r.out, "Error Chain:\n")
	level := 1
	for err != nil {
		fmt.Fprintf(r.out, "  %d. %s\n", level, err.Error())
		err = stderrors.Unwrap(err)
		level++
	}
	fmt.Fprintf(r.out, "\n")
}
