package errors

import (
	"fmt"
	"sync"

	"github.com/toyz/jointc/internal/models"
)

// Severity of a diagnostic
type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
)

// String returns the label used in reports
func (s Severity) String() string {
	if s == SeverityWarning {
		return "WARNING"
	}
	return "ERROR"
}

// CategoryGroovy prefixes messages raised against dynamic-language sources
const CategoryGroovy = "Groovy"

// Diagnostic is one problem found in a compilation unit
type Diagnostic struct {
	Code     ErrorCode
	Severity Severity
	// Category prefixes the message in reports, e.g. "Groovy"; may be empty
	Category string
	Message  string
	Unit     *models.CompilationUnit
	Span     models.Span
}

// Position returns the 1-based line and column of the diagnostic start
func (d *Diagnostic) Position() models.Position {
	if d.Unit == nil || !d.Span.IsValid() {
		return models.Position{Line: 1, Column: 1}
	}
	return d.Unit.Lines.Position(d.Span.Start)
}

// Text returns the message with its category prefix
func (d *Diagnostic) Text() string {
	if d.Category == "" {
		return d.Message
	}
	return d.Category + ":" + d.Message
}

// Error lets a diagnostic travel as a Go error
func (d *Diagnostic) Error() string {
	path := ""
	if d.Unit != nil {
		path = d.Unit.Path
	}
	pos := d.Position()
	return fmt.Sprintf("%s:%d:%d: %s", path, pos.Line, pos.Column, d.Text())
}

// Collector accumulates the diagnostics of one unit in detection order
type Collector struct {
	mu    sync.Mutex
	unit  *models.CompilationUnit
	items []*Diagnostic
}

// NewCollector creates a collector for unit
func NewCollector(unit *models.CompilationUnit) *Collector {
	return &Collector{unit: unit}
}

// Unit returns the unit diagnostics are reported against
func (c *Collector) Unit() *models.CompilationUnit { return c.unit }

// Add records a diagnostic. A diagnostic equal to a recorded one, same code,
// severity, text and span, is dropped and the recorded one returned; members
// generated from one declaration share its type references.
func (c *Collector) Add(d *Diagnostic) *Diagnostic {
	if d.Unit == nil {
		d.Unit = c.unit
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, seen := range c.items {
		if seen.Code == d.Code && seen.Severity == d.Severity && seen.Span == d.Span && seen.Text() == d.Text() {
			return seen
		}
	}
	c.items = append(c.items, d)
	return d
}

func (c *Collector) report(code ErrorCode, sev Severity, category string, span models.Span, format string, args []interface{}) *Diagnostic {
	return c.Add(&Diagnostic{
		Code:     code,
		Severity: sev,
		Category: category,
		Message:  fmt.Sprintf(format, args...),
		Span:     span,
	})
}

// Report records an error diagnostic with the category of the unit's language
func (c *Collector) Report(code ErrorCode, span models.Span, format string, args ...interface{}) *Diagnostic {
	return c.report(code, SeverityError, c.DefaultCategory(), span, format, args)
}

// ReportPlain records an error diagnostic without a category prefix
func (c *Collector) ReportPlain(code ErrorCode, span models.Span, format string, args ...interface{}) *Diagnostic {
	return c.report(code, SeverityError, "", span, format, args)
}

// Warn records a warning diagnostic
func (c *Collector) Warn(code ErrorCode, span models.Span, format string, args ...interface{}) *Diagnostic {
	return c.report(code, SeverityWarning, c.DefaultCategory(), span, format, args)
}

// DefaultCategory returns the category prefix for the unit's language
func (c *Collector) DefaultCategory() string {
	if c.unit != nil && c.unit.Language == models.LanguageGroovy {
		return CategoryGroovy
	}
	return ""
}

// Diagnostics returns a copy of the recorded diagnostics
func (c *Collector) Diagnostics() []*Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Diagnostic(nil), c.items...)
}

// Len returns the number of diagnostics
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// HasErrors reports whether an ERROR diagnostic was recorded
func (c *Collector) HasErrors() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.items {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// HasCode reports whether a diagnostic with the code was recorded
func (c *Collector) HasCode(code ErrorCode) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.items {
		if d.Code == code {
			return true
		}
	}
	return false
}

// Mark returns a position usable with Since
func (c *Collector) Mark() int { return c.Len() }

// Since returns the diagnostics recorded after mark
func (c *Collector) Since(mark int) []*Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	if mark >= len(c.items) {
		return nil
	}
	return append([]*Diagnostic(nil), c.items[mark:]...)
}
