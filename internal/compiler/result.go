package compiler

import (
	"strings"

	"github.com/toyz/jointc/internal/errors"
	"github.com/toyz/jointc/internal/generator"
	"github.com/toyz/jointc/internal/models"
)

// UnitResult is the outcome of one source
type UnitResult struct {
	Source      Source
	Diagnostics []*errors.Diagnostic
	// Declarations is the declaration dump taken before lowering; set in
	// retain mode
	Declarations string
	// Unit is the lowered tree; set in retain mode
	Unit       *models.CompilationUnit
	ClassFiles []*generator.ClassFile
	Classes    []*models.GeneratedClass
}

// HasErrors reports whether any diagnostic of the unit is an error
func (u *UnitResult) HasErrors() bool {
	for _, d := range u.Diagnostics {
		if d.Severity == errors.SeverityError {
			return true
		}
	}
	return false
}

// Messages returns the diagnostic texts in report order
func (u *UnitResult) Messages() []string {
	out := make([]string, 0, len(u.Diagnostics))
	for _, d := range u.Diagnostics {
		out = append(out, d.Text())
	}
	return out
}

// Class returns the generated class with the given internal name
func (u *UnitResult) Class(binaryName string) *models.GeneratedClass {
	for _, c := range u.Classes {
		if c.BinaryName == binaryName {
			return c
		}
	}
	return nil
}

// Result is the outcome of a session, units in input order
type Result struct {
	SessionID string
	PathStyle errors.PathStyle
	Units     []*UnitResult
}

// Unit returns the result of the source with the given path
func (r *Result) Unit(path string) *UnitResult {
	for _, u := range r.Units {
		if u.Source.Path == path {
			return u
		}
	}
	return nil
}

// HasErrors reports whether any unit has an error diagnostic
func (r *Result) HasErrors() bool {
	for _, u := range r.Units {
		if u.HasErrors() {
			return true
		}
	}
	return false
}

// Problems counts the diagnostics of all units
func (r *Result) Problems() int {
	n := 0
	for _, u := range r.Units {
		n += len(u.Diagnostics)
	}
	return n
}

// Report renders the diagnostics of every unit in the JDT problem layout,
// units in input order
func (r *Result) Report() string {
	var sb strings.Builder
	for _, u := range r.Units {
		sb.WriteString(errors.FormatReport(u.Diagnostics, r.PathStyle))
	}
	return sb.String()
}
