package transform

import (
	"github.com/toyz/jointc/internal/annotations"
	"github.com/toyz/jointc/internal/models"
	"github.com/toyz/jointc/internal/resolver"
	"github.com/toyz/jointc/internal/types"
)

const groovyObjectName = "groovy.lang.GroovyObject"

// applyDelegate adds a forwarding method to the field's owner for every
// public instance method of the field type the owner does not already have
func applyDelegate(ctx *Context, field *models.Declaration, marker *models.Annotation) error {
	owner := field.Owner
	if field.Type.IsDynamic() {
		return precondition(marker.Span, "@Delegate field '%s' needs a declared type to delegate to", field.Name)
	}
	t := ctx.Resolver.ResolveType(field.Type, field)
	target := field.Type.Decl
	if t == nil || target == nil || t.IsArray() {
		return nil
	}
	ctx.prepare(target)
	p := ctx.Params
	h := ctx.Resolver.Table()

	includes := p.GetStringSlice("includes")
	excludes := p.GetStringSlice("excludes")
	includeTypes := ctx.classDecls(marker, "includeTypes", field)
	excludeTypes := ctx.classDecls(marker, "excludeTypes", field)

	candidates := delegateCandidates(target)
	if len(candidates) == 0 {
		return precondition(marker.Span, "@Delegate field '%s' of type %s has no accessible methods", field.Name, target.QualifiedName)
	}

	have := make(map[string]bool)
	for _, m := range resolver.AllMethods(owner) {
		if !m.IsAbstract() || m.Owner == owner {
			have[m.Signature()] = true
		}
	}
	for _, m := range candidates {
		if m.Deprecated && !p.GetBool("deprecated") {
			continue
		}
		if !selected(m.Name, includes, excludes) {
			continue
		}
		if len(includeTypes) > 0 && !declaredIn(m, includeTypes) {
			continue
		}
		if declaredIn(m, excludeTypes) {
			continue
		}
		fwd := forwarder(h, t, field, m, p)
		if have[fwd.Signature()] {
			continue
		}
		have[fwd.Signature()] = true
		owner.AddMember(fwd)
		for _, a := range fwd.Annotations {
			ctx.resolveMarker(a, fwd)
		}
	}

	if p.GetBool("interfaces", true) {
		addDelegateInterfaces(ctx, owner, target, t)
	}
	return nil
}

// delegateCandidates lists the public instance methods of d and its
// supertypes, excluding those every object has, plus the accessors of its
// source properties
func delegateCandidates(d *models.Declaration) []*models.Declaration {
	var out []*models.Declaration
	for _, m := range resolver.AllMethods(d) {
		if m.IsStatic() || !m.Modifiers.Has(models.ModPublic) {
			continue
		}
		if on := m.Owner; on != nil && (on.QualifiedName == types.ObjectName || on.QualifiedName == groovyObjectName) {
			continue
		}
		out = append(out, m)
	}
	seen := make(map[string]bool, len(out))
	for _, m := range out {
		seen[m.Signature()] = true
	}
	for _, a := range resolver.Ancestors(d) {
		for _, f := range a.Fields() {
			if !f.Property {
				continue
			}
			for _, acc := range accessors(a, f) {
				if !seen[acc.Signature()] {
					seen[acc.Signature()] = true
					acc.Owner = a
					out = append(out, acc)
				}
			}
		}
	}
	return out
}

func selected(name string, includes, excludes []string) bool {
	if len(includes) > 0 {
		return contains(includes, name)
	}
	return !contains(excludes, name)
}

func declaredIn(m *models.Declaration, list []*models.Declaration) bool {
	for _, d := range list {
		if m.Owner == d || (m.Owner != nil && m.Owner.QualifiedName == d.QualifiedName) {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// memberBindings maps the type parameters of the type declaring m to their
// arguments as seen through the delegate type t
func memberBindings(h types.Hierarchy, t *types.Type, m *models.Declaration) map[string]*types.Type {
	on := m.Owner
	if on == nil || len(on.TypeParams) == 0 {
		return nil
	}
	as := types.AsSuper(h, t, on.QualifiedName)
	if as == nil || len(as.Args) != len(on.TypeParams) {
		return nil
	}
	b := make(map[string]*types.Type, len(as.Args))
	for i, tp := range on.TypeParams {
		b[tp.Name] = as.Args[i]
	}
	return b
}

func substituted(ref *models.TypeRef, bindings map[string]*types.Type) *models.TypeRef {
	if ref == nil {
		return nil
	}
	if bindings == nil || ref.Resolved == nil {
		return ref.Clone()
	}
	out := models.ResolvedRef(ref.Resolved.Substitute(bindings))
	out.Decl = ref.Decl
	return out
}

// forwarder builds owner.name(params) { this.field.name(params) }
func forwarder(h types.Hierarchy, t *types.Type, field, m *models.Declaration, p *annotations.ParsedMarker) *models.Declaration {
	bindings := memberBindings(h, t, m)
	params := make([]*models.Param, len(m.Params))
	args := make([]models.Expr, len(m.Params))
	for i, mp := range m.Params {
		np := mp.Clone()
		np.Type = substituted(mp.Type, bindings)
		np.Default = nil
		np.Span, np.NameSpan = models.NoSpan, models.NoSpan
		if !p.GetBool("parameterAnnotations") {
			np.Annotations = nil
		}
		params[i] = np
		args[i] = models.NewIdent(np.Name)
	}
	ret := substituted(m.Return, bindings)
	if m.Return == nil {
		ret = models.ResolvedRef(types.Object)
	}

	call := models.CallOn(models.Select(models.NewThis(), field.Name), m.Name, args...)
	var body *models.Block
	if ret.Resolved != nil && ret.Resolved.IsVoid() {
		body = models.Stmts(models.Eval(call))
	} else {
		body = models.Stmts(models.Ret(call))
	}

	fwd := models.NewMethod(m.Name, models.ModPublic|m.Modifiers&models.ModFinal, ret, params, body)
	for _, tp := range m.TypeParams {
		c := *tp
		fwd.TypeParams = append(fwd.TypeParams, &c)
	}
	for _, th := range m.Throws {
		fwd.Throws = append(fwd.Throws, th.Clone())
	}
	if p.GetBool("methodAnnotations") {
		for _, a := range m.Annotations {
			fwd.Annotations = append(fwd.Annotations, a.Clone())
		}
	}
	fwd.Deprecated = m.Deprecated
	return fwd
}

// addDelegateInterfaces makes owner implement the interfaces of the delegate
// type it does not implement yet
func addDelegateInterfaces(ctx *Context, owner, target *models.Declaration, t *types.Type) {
	h := ctx.Resolver.Table()
	for _, a := range resolver.Ancestors(target) {
		if !a.IsInterface() || a.Kind == models.KindAnnotation || a.QualifiedName == groovyObjectName {
			continue
		}
		if resolver.IsSubclass(owner, a) {
			continue
		}
		st := types.AsSuper(h, t, a.QualifiedName)
		if st == nil {
			st = a.RawDescriptor()
		}
		ref := models.ResolvedRef(st)
		ref.Decl = a
		owner.Interfaces = append(owner.Interfaces, ref)
	}
}
