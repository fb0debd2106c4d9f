package resolver

import (
	"fmt"
	"strings"

	"github.com/toyz/jointc/internal/config"
	"github.com/toyz/jointc/internal/errors"
	"github.com/toyz/jointc/internal/models"
	"github.com/toyz/jointc/internal/types"
)

// Resolver resolves the names of one compilation unit. Phases run in order:
// ResolveImports, ResolveHeaders, then, once transforms have run,
// ResolveMembers and ResolveBodies.
type Resolver struct {
	table *SymbolTable
	unit  *models.CompilationUnit
	diags *errors.Collector
	opts  *config.Options
	scope *ImportScope

	// reported keeps a reference from being diagnosed twice
	reported map[*models.TypeRef]bool
	// annotated holds annotations already bound
	annotated map[*models.Annotation]bool
	// quiet suppresses diagnostics while probing
	quiet int
}

// New creates a resolver for unit
func New(table *SymbolTable, unit *models.CompilationUnit, diags *errors.Collector, opts *config.Options) *Resolver {
	if opts == nil {
		opts = config.Default()
	}
	return &Resolver{
		table:     table,
		unit:      unit,
		diags:     diags,
		opts:      opts,
		scope:     NewImportScope(table, unit, opts),
		reported:  make(map[*models.TypeRef]bool),
		annotated: make(map[*models.Annotation]bool),
	}
}

// Table returns the session symbol table
func (r *Resolver) Table() *SymbolTable { return r.table }

// Unit returns the unit being resolved
func (r *Resolver) Unit() *models.CompilationUnit { return r.unit }

// Diagnostics returns the collector of the unit
func (r *Resolver) Diagnostics() *errors.Collector { return r.diags }

// Options returns the session options
func (r *Resolver) Options() *config.Options { return r.opts }

// Dynamic reports whether the unit is written in the dynamic language
func (r *Resolver) Dynamic() bool { return r.unit.Language == models.LanguageGroovy }

func (r *Resolver) report(code errors.ErrorCode, span models.Span, format string, args ...interface{}) {
	if r.quiet > 0 {
		return
	}
	r.diags.Report(code, span, format, args...)
}

func (r *Resolver) reportPlain(code errors.ErrorCode, span models.Span, format string, args ...interface{}) {
	if r.quiet > 0 {
		return
	}
	r.diags.ReportPlain(code, span, format, args...)
}

// LookupType resolves a possibly dotted type name as seen from a declaration.
// The first segment is looked up as a simple name, remaining segments as
// member types; failing that the name is taken as fully qualified.
func (r *Resolver) LookupType(name string, from *models.Declaration) Match {
	head, rest, dotted := strings.Cut(name, ".")
	m := r.lookupSimple(head, from)
	if !dotted || m.Ambiguous() {
		return m
	}
	if d := m.Decl; d != nil {
		for _, part := range strings.Split(rest, ".") {
			if d = MemberType(d, part, true); d == nil {
				break
			}
		}
		if d != nil {
			return Match{Decl: d, Via: m.Via}
		}
	}
	if d := r.qualified(name); d != nil {
		return Match{Decl: d}
	}
	return Match{}
}

// qualified resolves a fully qualified name, allowing member types written
// with dots after their outer type. Inherited member types are not found.
func (r *Resolver) qualified(name string) *models.Declaration {
	if d := r.table.Lookup(name); d != nil {
		return d
	}
	parts := strings.Split(name, ".")
	for i := len(parts) - 1; i > 0; i-- {
		outer := r.table.Lookup(strings.Join(parts[:i], "."))
		if outer == nil {
			continue
		}
		d := outer
		for _, p := range parts[i:] {
			if d = MemberType(d, p, false); d == nil {
				break
			}
		}
		return d
	}
	return nil
}

// lookupSimple searches enclosing types and their inherited member types
// before the import scope
func (r *Resolver) lookupSimple(name string, from *models.Declaration) Match {
	for d := enclosingType(from); d != nil; d = enclosingType(d.Owner) {
		if d.Name == name && !d.Anonymous {
			return Match{Decl: d}
		}
		if n := MemberType(d, name, true); n != nil {
			return Match{Decl: n}
		}
	}
	return r.scope.Lookup(name)
}

func enclosingType(d *models.Declaration) *models.Declaration {
	if d == nil {
		return nil
	}
	return d.EnclosingType()
}

// typeVar finds the type parameter name declared by from or an enclosing
// declaration
func typeVar(name string, from *models.Declaration) *types.Type {
	for d := from; d != nil; d = d.Owner {
		for _, tp := range d.TypeParams {
			if tp.Name == name {
				return tp.Descriptor()
			}
		}
		if d.IsType() && d.IsStatic() {
			// static member types do not see the type variables of their owner
			return nil
		}
	}
	return nil
}

// ResolveType resolves a type reference written inside from, reporting
// unknown names. It returns nil for dynamic or unresolvable references.
func (r *Resolver) ResolveType(ref *models.TypeRef, from *models.Declaration) *types.Type {
	if ref == nil {
		return nil
	}
	if ref.Resolved != nil {
		if ref.Decl == nil && ref.Resolved.Base().Kind == types.KindClass {
			ref.Decl = r.table.Lookup(ref.Resolved.Base().Name)
		}
		return ref.Resolved
	}
	if ref.Wildcard != models.NotWildcard {
		var bound *types.Type
		kind := types.Unbounded
		switch ref.Wildcard {
		case models.WildcardExtends:
			kind = types.ExtendsBound
		case models.WildcardSuper:
			kind = types.SuperBound
		}
		if ref.Bound != nil {
			bound = r.ResolveType(ref.Bound, from)
			if bound == nil {
				bound = types.Object
			}
		}
		ref.Resolved = types.Wildcard(kind, bound)
		return ref.Resolved
	}
	if ref.Name == models.DynamicTypeName {
		return nil
	}
	if p, ok := types.Primitive(ref.Name); ok {
		ref.Resolved = types.ArrayOf(p, ref.Dims)
		return ref.Resolved
	}
	if !strings.Contains(ref.Name, ".") {
		if tv := typeVar(ref.Name, from); tv != nil {
			ref.Resolved = types.ArrayOf(tv, ref.Dims)
			return ref.Resolved
		}
	}

	m := r.LookupType(ref.Name, from)
	switch {
	case m.Ambiguous():
		r.reportOnce(ref, errors.AmbiguousReferenceCode, "The type %s is ambiguous", ref.Name)
		return nil
	case !m.Found():
		r.reportUnresolved(ref)
		return nil
	}
	d := m.Decl
	args := make([]*types.Type, 0, len(ref.Args))
	for _, a := range ref.Args {
		t := r.ResolveType(a, from)
		if t == nil {
			t = types.Object
		}
		args = append(args, t)
	}
	if len(args) > 0 && !r.checkArity(ref, d) {
		args = nil
	}
	ref.Decl = d
	ref.Resolved = types.ArrayOf(types.Class(d.QualifiedName, args...), ref.Dims)
	return ref.Resolved
}

// Probe resolves a copy of ref without reporting, leaving ref untouched
func (r *Resolver) Probe(ref *models.TypeRef, from *models.Declaration) (*types.Type, *models.Declaration) {
	if ref == nil {
		return nil, nil
	}
	c := ref.Clone()
	r.quiet++
	t := r.ResolveType(c, from)
	r.quiet--
	return t, c.Decl
}

func (r *Resolver) reportOnce(ref *models.TypeRef, code errors.ErrorCode, format string, args ...interface{}) {
	if r.reported[ref] || r.quiet > 0 {
		return
	}
	r.reported[ref] = true
	r.report(code, ref.Span, format, args...)
}

func (r *Resolver) reportUnresolved(ref *models.TypeRef) {
	if r.Dynamic() {
		r.reportOnce(ref, errors.UnresolvedReferenceCode, "unable to resolve class %s%s", ref.Name, strings.Repeat("[]", ref.Dims))
		return
	}
	r.reportOnce(ref, errors.UnresolvedReferenceCode, "%s cannot be resolved to a type", ref.Name)
}

// checkArity validates the number of type arguments against the type
// parameters of d when strict generics are enabled
func (r *Resolver) checkArity(ref *models.TypeRef, d *models.Declaration) bool {
	if !r.opts.GenericsStrict || ref.Diamond {
		return true
	}
	if len(d.TypeParams) == 0 {
		r.reportOnce(ref, errors.TypeMismatchCode,
			"The type %s is not generic; it cannot be parameterized with arguments <%s>", d.Name, argList(ref))
		return false
	}
	if len(d.TypeParams) != len(ref.Args) {
		names := make([]string, len(d.TypeParams))
		for i, tp := range d.TypeParams {
			names[i] = tp.Name
		}
		r.reportOnce(ref, errors.TypeMismatchCode,
			"Incorrect number of arguments for type %s<%s>; it cannot be parameterized with arguments <%s>",
			d.Name, strings.Join(names, ","), argList(ref))
		return false
	}
	return true
}

func argList(ref *models.TypeRef) string {
	parts := make([]string, len(ref.Args))
	for i, a := range ref.Args {
		if a.Resolved != nil {
			parts[i] = a.Resolved.SimpleString()
		} else {
			parts[i] = a.String()
		}
	}
	return strings.Join(parts, ", ")
}

// checkBounds reports type arguments that do not satisfy the bounds of the
// corresponding type parameters
func (r *Resolver) checkBounds(ref *models.TypeRef) {
	if ref == nil || ref.Decl == nil || ref.Resolved == nil {
		return
	}
	for _, a := range ref.Args {
		r.checkBounds(a)
	}
	base := ref.Resolved.Base()
	d := ref.Decl
	if len(base.Args) != len(d.TypeParams) {
		return
	}
	for i, tp := range d.TypeParams {
		arg := base.Args[i]
		if arg.Kind != types.KindClass {
			continue
		}
		for _, b := range tp.Bounds {
			bound := b.Resolved
			if bound == nil || mentionsTypeVar(bound) {
				continue
			}
			if types.Assignable(r.table, bound, arg) {
				continue
			}
			r.reportBound(ref.Args[i], tp, d, arg)
			break
		}
	}
}

func (r *Resolver) reportBound(at *models.TypeRef, tp *models.TypeParam, d *models.Declaration, arg *types.Type) {
	bounds := make([]string, len(tp.Bounds))
	for i, b := range tp.Bounds {
		bounds[i] = b.Type().String()
	}
	if r.Dynamic() {
		r.reportOnce(at, errors.TypeMismatchCode,
			"The type %s is not a valid substitute for the bounded parameter <%s extends %s>",
			arg.SimpleString(), tp.Name, strings.Join(bounds, " & "))
		return
	}
	names := make([]string, len(d.TypeParams))
	for i, p := range d.TypeParams {
		names[i] = p.Name
	}
	simple := make([]string, len(tp.Bounds))
	for i, b := range tp.Bounds {
		simple[i] = b.Type().SimpleString()
	}
	r.reportOnce(at, errors.TypeMismatchCode,
		"Bound mismatch: The type %s is not a valid substitute for the bounded parameter <%s extends %s> of the type %s<%s>",
		arg.SimpleString(), tp.Name, strings.Join(simple, " & "), d.Name, strings.Join(names, ","))
}

func mentionsTypeVar(t *types.Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case types.KindTypeVar:
		return true
	case types.KindArray:
		return mentionsTypeVar(t.Elem)
	case types.KindWildcard:
		return mentionsTypeVar(t.Bound)
	}
	for _, a := range t.Args {
		if mentionsTypeVar(a) {
			return true
		}
	}
	return false
}

// ResolveImports validates the imports of the unit
func (r *Resolver) ResolveImports() {
	for _, imp := range r.scope.Imports() {
		r.resolveImport(imp)
	}
}

func importSpan(imp *models.Import) models.Span {
	if imp.Implicit {
		return models.Span{Start: 0, End: 0}
	}
	if imp.NameSpan.IsValid() {
		return imp.NameSpan
	}
	return imp.Span
}

func (r *Resolver) resolveImport(imp *models.Import) {
	span := importSpan(imp)
	switch {
	case imp.Star && !imp.Static:
		if r.table.HasPackage(imp.Name) || r.qualified(imp.Name) != nil {
			return
		}
		// unknown packages are harmless for dynamic units
		if !r.Dynamic() {
			r.unresolvedImport(imp.Name, span)
		}
	case imp.Static:
		owner := imp.Name
		if !imp.Star {
			owner = imp.Owner()
		}
		d := r.qualified(owner)
		if d == nil {
			if r.Dynamic() {
				r.report(errors.UnresolvedReferenceCode, span, "unable to resolve class %s", owner)
			} else {
				r.unresolvedImport(imp.Name, span)
			}
			return
		}
		if !imp.Star && !r.Dynamic() && !hasStaticMember(d, imp.MemberName()) {
			r.reportPlain(errors.UnresolvedReferenceCode, span, "The import %s cannot be resolved", imp.Name)
		}
	default:
		d := r.qualified(imp.Name)
		if d == nil {
			if r.Dynamic() {
				r.report(errors.UnresolvedReferenceCode, span, "unable to resolve class %s", imp.Name)
			} else {
				r.unresolvedImport(imp.Name, span)
			}
			return
		}
		for _, t := range r.unit.Types {
			if t.Name == imp.SimpleName() && t != d && !t.Script {
				r.reportPlain(errors.UnresolvedReferenceCode, span,
					"The import %s conflicts with a type defined in the same file", imp.Name)
				return
			}
		}
	}
}

// unresolvedImport reports the shortest prefix of name that names neither a
// package nor a type
func (r *Resolver) unresolvedImport(name string, span models.Span) {
	parts := strings.Split(name, ".")
	prefix := name
	for i := 1; i <= len(parts); i++ {
		p := strings.Join(parts[:i], ".")
		if r.table.HasPackage(p) || r.qualified(p) != nil {
			continue
		}
		prefix = p
		break
	}
	if span.IsValid() && span.Len() > len(prefix) {
		span.End = span.Start + len(prefix)
	}
	r.reportPlain(errors.UnresolvedReferenceCode, span, "The import %s cannot be resolved", prefix)
}

func hasStaticMember(d *models.Declaration, name string) bool {
	for _, a := range Ancestors(d) {
		for _, m := range a.Members {
			if m.Name == name && (m.IsStatic() || m.IsType()) {
				return true
			}
		}
		if a.Kind == models.KindEnum && a.Constant(name) != nil {
			return true
		}
	}
	return false
}

// describe renders a declaration kind for hierarchy messages
func describe(d *models.Declaration) string {
	if d.IsInterface() {
		return fmt.Sprintf("interface %s", d.QualifiedName)
	}
	return fmt.Sprintf("class %s", d.QualifiedName)
}
