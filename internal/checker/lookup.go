package checker

import (
	"unicode"
	"unicode/utf8"

	"github.com/toyz/jointc/internal/models"
	"github.com/toyz/jointc/internal/resolver"
	"github.com/toyz/jointc/internal/types"
)

// match is a selected method together with its return type at the call
type match struct {
	method *models.Declaration
	ret    *types.Type
}

// normalize maps a receiver type to the class whose members apply to it
func normalize(t *types.Type) *types.Type {
	switch t.Kind {
	case types.KindPrimitive:
		return types.Box(t)
	case types.KindTypeVar:
		if t.Bound != nil {
			return normalize(t.Bound)
		}
		return types.Object
	case types.KindWildcard:
		return capture(t)
	case types.KindArray, types.KindNull:
		return types.Object
	}
	return t
}

// capture replaces a wildcard by its upper bound
func capture(t *types.Type) *types.Type {
	if t == nil || t.Kind != types.KindWildcard {
		return t
	}
	if t.BoundKind == types.ExtendsBound && t.Bound != nil {
		return t.Bound
	}
	return types.Object
}

func (c *Checker) declOf(t *types.Type) *models.Declaration {
	if t == nil {
		return nil
	}
	n := normalize(t)
	if n.Kind != types.KindClass {
		return nil
	}
	return c.table.Lookup(n.Name)
}

// methodsOf returns the methods called name visible on d; interfaces see the
// methods of Object too
func (c *Checker) methodsOf(d *models.Declaration, name string) []*models.Declaration {
	out := resolver.FindMethods(d, name)
	if !d.IsInterface() {
		return out
	}
	obj := c.table.Lookup(types.ObjectName)
	if obj == nil {
		return out
	}
	for _, m := range obj.MethodsNamed(name) {
		if !declares(out, m) {
			out = append(out, m)
		}
	}
	return out
}

func declares(list []*models.Declaration, m *models.Declaration) bool {
	sig := m.Signature()
	for _, cur := range list {
		if cur.Signature() == sig {
			return true
		}
	}
	return false
}

// ownerBindings maps the type parameters of owner to their arguments in recv.
// Raw receivers bind them to their erased bounds.
func (c *Checker) ownerBindings(recv *types.Type, owner *models.Declaration) map[string]*types.Type {
	if owner == nil || len(owner.TypeParams) == 0 {
		return nil
	}
	var sup *types.Type
	if recv != nil {
		sup = types.AsSuper(c.table, normalize(recv), owner.QualifiedName)
	}
	b := make(map[string]*types.Type, len(owner.TypeParams))
	for i, tp := range owner.TypeParams {
		if sup != nil && len(sup.Args) == len(owner.TypeParams) {
			b[tp.Name] = sup.Args[i]
		} else {
			b[tp.Name] = erasedBound(tp)
		}
	}
	return b
}

func erasedBound(tp *models.TypeParam) *types.Type {
	if d := tp.Descriptor(); d.Bound != nil {
		return d.Bound.Erasure()
	}
	return types.Object
}

// paramTypes returns the parameter types of m as seen through recv
func (c *Checker) paramTypes(m *models.Declaration, recv *types.Type) []*types.Type {
	b := c.ownerBindings(recv, m.Owner)
	out := make([]*types.Type, len(m.Params))
	for i, p := range m.Params {
		out[i] = p.Descriptor().Substitute(b)
	}
	return out
}

// lookup selects the method name of recv applicable to args: declared and
// inherited members first, then category and extension methods. On failure
// it returns the declared candidates for reporting.
func (c *Checker) lookup(recv *types.Type, name string, args []*types.Type, categories []*models.Declaration) (*match, []*models.Declaration) {
	d := c.declOf(recv)
	if d == nil {
		return &match{}, nil
	}
	cands := c.methodsOf(d, name)
	if m := c.pick(recv, cands, args, false); m != nil {
		return m, cands
	}
	if m := c.extension(recv, name, args, categories); m != nil {
		return m, cands
	}
	return nil, cands
}

// extension looks name up among the static methods of the active categories,
// innermost first, and of the library extension classes
func (c *Checker) extension(recv *types.Type, name string, args []*types.Type, categories []*models.Declaration) *match {
	for i := len(categories) - 1; i >= 0; i-- {
		if m := c.pick(recv, staticSelfMethods(categories[i], name), args, true); m != nil {
			return m
		}
	}
	var cands []*models.Declaration
	for _, e := range c.extensions {
		cands = append(cands, staticSelfMethods(e, name)...)
	}
	return c.pick(recv, cands, args, true)
}

func staticSelfMethods(d *models.Declaration, name string) []*models.Declaration {
	var out []*models.Declaration
	for _, m := range d.MethodsNamed(name) {
		if m.IsStatic() && len(m.Params) > 0 && !m.Modifiers.Has(models.ModPrivate) {
			out = append(out, m)
		}
	}
	return out
}

// pick returns the most specific applicable candidate. Extension candidates
// take the receiver as their first argument.
func (c *Checker) pick(recv *types.Type, cands []*models.Declaration, args []*types.Type, ext bool) *match {
	actual := args
	if ext {
		actual = append([]*types.Type{recv}, args...)
	}
	var best *models.Declaration
	var bestParams []*types.Type
	for _, m := range cands {
		var params []*types.Type
		if ext {
			params = m.ParamTypes()
		} else {
			params = c.paramTypes(m, recv)
		}
		if !c.applicable(m, params, actual) {
			continue
		}
		if best == nil || c.moreSpecific(params, bestParams) {
			best, bestParams = m, params
		}
	}
	if best == nil {
		return nil
	}
	return &match{method: best, ret: c.returnOf(best, recv, actual, ext)}
}

func (c *Checker) applicable(m *models.Declaration, params, args []*types.Type) bool {
	n := len(params)
	if m.IsVarargs() && len(args) >= n-1 {
		for i := 0; i < n-1; i++ {
			if !c.accepts(params[i], args[i]) {
				return false
			}
		}
		if len(args) == n && c.accepts(params[n-1], args[n-1]) {
			return true
		}
		elem := params[n-1].Elem
		for i := n - 1; i < len(args); i++ {
			if !c.accepts(elem, args[i]) {
				return false
			}
		}
		return true
	}
	if len(args) != n {
		return false
	}
	for i := range params {
		if !c.accepts(params[i], args[i]) {
			return false
		}
	}
	return true
}

// accepts reports whether an argument of type arg can be passed for param
func (c *Checker) accepts(param, arg *types.Type) bool {
	if arg == nil || param == nil {
		return true
	}
	if types.Assignable(c.table, param, arg) {
		return true
	}
	// closures coerce to single-method interfaces
	if arg.Kind == types.KindClass && arg.Name == types.ClosureName {
		if d := c.declOf(param); d != nil && d.IsInterface() {
			return true
		}
	}
	return false
}

func (c *Checker) moreSpecific(a, b []*types.Type) bool {
	if len(a) != len(b) {
		return false
	}
	strict := false
	for i := range a {
		if !types.Assignable(c.table, b[i], a[i]) {
			return false
		}
		if !types.Assignable(c.table, a[i], b[i]) {
			strict = true
		}
	}
	return strict
}

// returnOf computes the return type of m at a call: type arguments of the
// receiver are substituted and method type parameters inferred from args
func (c *Checker) returnOf(m *models.Declaration, recv *types.Type, args []*types.Type, ext bool) *types.Type {
	b := make(map[string]*types.Type)
	if !ext {
		for k, v := range c.ownerBindings(recv, m.Owner) {
			b[k] = v
		}
	}
	if len(m.TypeParams) > 0 {
		names := make(map[string]bool, len(m.TypeParams))
		for _, tp := range m.TypeParams {
			names[tp.Name] = true
		}
		params := m.ParamTypes()
		for i, a := range args {
			if a == nil {
				continue
			}
			var p *types.Type
			switch {
			case i < len(params)-1 || (i == len(params)-1 && !m.IsVarargs()):
				p = params[i]
			case m.IsVarargs() && len(params) > 0:
				p = params[len(params)-1]
				if !a.IsArray() {
					p = p.Elem
				}
			default:
				continue
			}
			c.unify(p.Substitute(b), a, names, b)
		}
		for _, tp := range m.TypeParams {
			if _, ok := b[tp.Name]; !ok {
				b[tp.Name] = erasedBound(tp)
			}
		}
	}
	return capture(m.ReturnType().Substitute(b))
}

// unify binds the method type variables in names occurring in p to the
// matching parts of a
func (c *Checker) unify(p, a *types.Type, names map[string]bool, b map[string]*types.Type) {
	if p == nil || a == nil {
		return
	}
	switch p.Kind {
	case types.KindTypeVar:
		if !names[p.Name] || a.Kind == types.KindNull {
			return
		}
		if _, ok := b[p.Name]; !ok {
			b[p.Name] = types.Box(capture(a))
		}
	case types.KindArray:
		if a.Kind == types.KindArray {
			c.unify(p.Elem, a.Elem, names, b)
		}
	case types.KindWildcard:
		c.unify(p.Bound, a, names, b)
	case types.KindClass:
		if len(p.Args) == 0 {
			return
		}
		sup := types.AsSuper(c.table, normalize(a), p.Name)
		if sup == nil || len(sup.Args) != len(p.Args) {
			return
		}
		for i := range p.Args {
			c.unify(p.Args[i], sup.Args[i], names, b)
		}
	}
}

// propertyType returns the type of recv.name read as a property: a field, a
// getter, a map entry or an extension getter
func (c *Checker) propertyType(recv *types.Type, name string, categories []*models.Declaration) (*types.Type, bool) {
	if recv.IsArray() && name == "length" {
		return types.Int, true
	}
	d := c.declOf(recv)
	if d == nil {
		return nil, true
	}
	if f := resolver.FindField(d, name); f != nil {
		return c.memberType(f.Type.Type(), f.Owner, recv), true
	}
	if d.Kind == models.KindEnum || d.IsInterface() {
		if k := resolver.FindConstant(d, name); k != nil {
			return d.RawDescriptor(), true
		}
	}
	suffix := capitalize(name)
	for _, getter := range []string{"get" + suffix, "is" + suffix} {
		for _, m := range c.methodsOf(d, getter) {
			if len(m.Params) == 0 && !m.ReturnType().IsVoid() {
				return c.returnOf(m, recv, nil, false), true
			}
		}
	}
	if mp := types.AsSuper(c.table, normalize(recv), types.MapName); mp != nil {
		if len(mp.Args) == 2 {
			return capture(mp.Args[1]), true
		}
		return types.Object, true
	}
	if m := c.extension(recv, "get"+suffix, nil, categories); m != nil {
		return m.ret, true
	}
	return nil, false
}

// setterType returns the type accepted by recv.name = value, when a field or
// a setter declares it
func (c *Checker) setterType(recv *types.Type, name string) (*types.Type, bool) {
	d := c.declOf(recv)
	if d == nil {
		return nil, true
	}
	if f := resolver.FindField(d, name); f != nil {
		return c.memberType(f.Type.Type(), f.Owner, recv), true
	}
	for _, m := range c.methodsOf(d, "set"+capitalize(name)) {
		if len(m.Params) == 1 {
			return c.paramTypes(m, recv)[0], true
		}
	}
	if types.AsSuper(c.table, normalize(recv), types.MapName) != nil {
		return nil, true
	}
	return nil, false
}

func (c *Checker) memberType(t *types.Type, owner *models.Declaration, recv *types.Type) *types.Type {
	return capture(t.Substitute(c.ownerBindings(recv, owner)))
}

// elementType returns the type iteration over t yields
func (c *Checker) elementType(t *types.Type) *types.Type {
	if t == nil {
		return nil
	}
	if t.IsArray() {
		return t.Elem
	}
	n := normalize(t)
	if mp := types.AsSuper(c.table, n, types.MapName); mp != nil {
		return types.Class("java.util.Map.Entry", mp.Args...)
	}
	for _, name := range []string{"java.lang.Iterable", "java.util.Iterator"} {
		if it := types.AsSuper(c.table, n, name); it != nil {
			if len(it.Args) == 1 {
				return capture(it.Args[0])
			}
			return types.Object
		}
	}
	if types.IsSubtype(c.table, n, "java.lang.CharSequence") {
		return types.String
	}
	return types.Object
}

func capitalize(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:]
}
