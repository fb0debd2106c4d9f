package lowering

import (
	"strconv"
	"strings"

	"github.com/toyz/jointc/internal/errors"
	"github.com/toyz/jointc/internal/models"
	"github.com/toyz/jointc/internal/resolver"
	"github.com/toyz/jointc/internal/types"
)

// nameAnonymous gives every anonymous class under d a binary name of the
// form Outer$N, numbered per enclosing class in source order
func (l *Lowerer) nameAnonymous(d *models.Declaration) {
	counter := 0
	next := func(anon *models.Declaration) {
		counter++
		anon.BinaryName = d.BinaryName + "$" + strconv.Itoa(counter)
	}
	inspect := func(n models.Node) {
		models.Inspect(n, func(n models.Node) bool {
			if x, ok := n.(*models.New); ok && x.Body != nil {
				next(x.Body)
				l.anonymous = append(l.anonymous, x.Body)
				l.anonymousConstructor(x)
				l.nameAnonymous(x.Body)
			}
			return true
		})
	}
	exprs := func(list []models.Expr) {
		for _, e := range list {
			inspect(e)
		}
	}

	for _, c := range d.Constants {
		exprs(c.Args)
		for _, e := range c.Named {
			inspect(e.Value)
		}
		if c.Body != nil {
			next(c.Body)
			l.nameAnonymous(c.Body)
		}
	}
	if d.Body != nil {
		inspect(d.Body)
	}
	for _, m := range d.Members {
		if m.IsType() {
			l.nameAnonymous(m)
			continue
		}
		if m.Init != nil {
			inspect(m.Init)
		}
		for _, p := range m.Params {
			if p.Default != nil {
				inspect(p.Default)
			}
		}
		if m.Body != nil {
			inspect(m.Body)
		}
	}
}

// unimplemented returns the abstract methods d inherits or declares that
// no concrete method of d or its supertypes implements
func unimplemented(d *models.Declaration) []*models.Declaration {
	ancestors := resolver.Ancestors(d)
	var concrete []*models.Declaration
	for _, a := range ancestors {
		for _, m := range a.Methods() {
			if !m.IsAbstract() && !m.IsStatic() {
				concrete = append(concrete, m)
			}
		}
	}
	seen := make(map[string]bool)
	var out []*models.Declaration
	for _, a := range ancestors {
		for _, m := range a.Methods() {
			if !m.IsAbstract() || seen[m.Signature()] {
				continue
			}
			seen[m.Signature()] = true
			if !implemented(m, concrete) {
				out = append(out, m)
			}
		}
	}
	return out
}

func implemented(abstract *models.Declaration, concrete []*models.Declaration) bool {
	for _, m := range concrete {
		if overrides(m, abstract) {
			return true
		}
	}
	return false
}

// overrides compares erased parameter types; a parameter typed by a type
// variable matches any type
func overrides(m, abstract *models.Declaration) bool {
	if m.Name != abstract.Name || len(m.Params) != len(abstract.Params) {
		return false
	}
	for i, p := range abstract.Params {
		want := p.Descriptor()
		if mentionsTypeVar(want) {
			continue
		}
		if !want.Erasure().Equal(m.Params[i].Descriptor().Erasure()) {
			return false
		}
	}
	return true
}

func mentionsTypeVar(t *types.Type) bool {
	switch t.Kind {
	case types.KindTypeVar:
		return true
	case types.KindArray:
		return mentionsTypeVar(t.Elem)
	}
	return false
}

// methodText renders a method as 'int foo(java.lang.String)'
func methodText(m *models.Declaration) string {
	params := make([]string, len(m.Params))
	for i, p := range m.Params {
		params[i] = p.Descriptor().Erasure().String()
	}
	return m.ReturnType().Erasure().String() + " " + m.Name + "(" + strings.Join(params, ", ") + ")"
}

// readableMethod renders a method as 'foo(String)'
func readableMethod(m *models.Declaration) string {
	return m.Name + "(" + simpleList(m.ParamTypes()) + ")"
}

func simpleList(list []*types.Type) string {
	names := make([]string, len(list))
	for i, t := range list {
		names[i] = t.Erasure().SimpleString()
	}
	return strings.Join(names, ", ")
}

// checkAnonymous reports the abstract methods an anonymous class leaves
// unimplemented
func (l *Lowerer) checkAnonymous(d *models.Declaration) {
	name := strings.ReplaceAll(d.BinaryName, "/", ".")
	for _, m := range unimplemented(d) {
		l.diags.Report(errors.UnimplementedAbstractMemberCode, d.NameSpan,
			"Can't have an abstract method in a non-abstract class. The class '%s' must be declared abstract or the method '%s' must be implemented.",
			name, methodText(m))
	}
}
