// Package checker verifies dynamic-language members marked for static type
// checking. It infers local variable types along the control flow, selects
// the method every call resolves to and reports what the runtime would only
// discover later.
package checker

import (
	"github.com/toyz/jointc/internal/annotations"
	"github.com/toyz/jointc/internal/errors"
	"github.com/toyz/jointc/internal/library"
	"github.com/toyz/jointc/internal/models"
	"github.com/toyz/jointc/internal/resolver"
	"github.com/toyz/jointc/internal/types"
)

const messagePrefix = "[Static type checking] - "

// mode says whether a member body is checked
type mode uint8

const (
	modeOff mode = iota
	modeChecked
)

// Checker checks the marked bodies of one compilation unit
type Checker struct {
	r     *resolver.Resolver
	table *resolver.SymbolTable
	diags *errors.Collector
	// extensions are the library classes contributing extension methods
	extensions []*models.Declaration
}

// New creates a checker over a resolved unit
func New(r *resolver.Resolver) *Checker {
	c := &Checker{r: r, table: r.Table(), diags: r.Diagnostics()}
	for _, name := range library.ExtensionClasses {
		if d := c.table.Lookup(name); d != nil {
			c.extensions = append(c.extensions, d)
		}
	}
	return c
}

// Check walks every type of the unit. Statically typed units are skipped:
// their bodies are never interpreted.
func (c *Checker) Check() {
	if !c.r.Dynamic() {
		return
	}
	for _, d := range c.r.Unit().AllTypes() {
		c.checkType(d)
	}
}

func (c *Checker) checkType(d *models.Declaration) {
	for _, m := range d.Members {
		if m.Generated || modeOf(m) != modeChecked {
			continue
		}
		switch m.Kind {
		case models.KindField:
			if m.Init != nil {
				c.checkField(d, m)
			}
		case models.KindMethod, models.KindConstructor, models.KindInitializer:
			if m.Body != nil {
				c.checkMember(d, m)
			}
		}
	}
}

func (c *Checker) checkField(d, f *models.Declaration) {
	w := newWalker(c, d, f)
	declared, unknown := declaredType(f.Type)
	t := w.exprExpecting(f.Init, declared)
	if !unknown && declared != nil {
		w.checkAssign(declared, t, f.Init, f.Init.NodeSpan(), assignMismatch)
	}
}

func (c *Checker) checkMember(d, m *models.Declaration) {
	w := newWalker(c, d, m)
	for _, p := range m.Params {
		w.expr(p.Default)
		declared, unknown := declaredType(p.Type)
		if declared != nil && p.Varargs {
			declared = types.ArrayOf(declared, 1)
		}
		s := w.declare(p.Name, declared)
		s.unknown = unknown
	}
	if m.Kind == models.KindMethod && !m.Return.IsDynamic() {
		w.returns = m.Return.Resolved
	}
	w.stmts(m.Body.Stmts)
}

// modeOf finds the innermost type checking marker on d or its owners
func modeOf(d *models.Declaration) mode {
	for cur := d; cur != nil; cur = cur.Owner {
		for _, a := range cur.Annotations {
			switch a.QualifiedName {
			case annotations.CompileDynamic:
				return modeOff
			case annotations.TypeChecked, annotations.CompileStatic:
				if skipped(a) {
					return modeOff
				}
				return modeChecked
			}
		}
	}
	return modeOff
}

// skipped reports TypeChecked(TypeCheckingMode.SKIP)
func skipped(a *models.Annotation) bool {
	v, ok := a.Arg("value")
	if !ok {
		return false
	}
	return types.SimpleName(models.QualifiedName(v)) == "SKIP"
}

// declaredType returns the type a declaration spelled; def yields nil.
// unknown is set when the spelled type did not resolve.
func declaredType(ref *models.TypeRef) (t *types.Type, unknown bool) {
	if ref.IsDynamic() {
		return nil, false
	}
	if ref.Resolved == nil {
		return nil, true
	}
	return ref.Resolved, false
}
