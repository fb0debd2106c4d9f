package resolver

import (
	"github.com/toyz/jointc/internal/errors"
	"github.com/toyz/jointc/internal/models"
	"github.com/toyz/jointc/internal/types"
)

// Well-known supertypes added to declarations that do not name one
const (
	scriptName     = "groovy.lang.Script"
	annotationName = "java.lang.annotation.Annotation"
	targetName     = "java.lang.annotation.Target"
)

// ResolveHeaders resolves the type parameters, supertypes and annotations of
// every type declared by the unit and checks the shape of the hierarchy.
// Units are expected to run this phase one after another so that cycles
// spanning several units are seen by the last of them.
func (r *Resolver) ResolveHeaders() {
	all := r.unit.AllTypes()
	for _, d := range all {
		r.resolveHeader(d)
	}
	for _, d := range all {
		r.checkCycle(d)
	}
	for _, d := range all {
		r.resolveAnnotations(d)
	}
}

func (r *Resolver) resolveHeader(d *models.Declaration) {
	for _, tp := range d.TypeParams {
		for _, b := range tp.Bounds {
			r.ResolveType(b, d)
		}
	}
	if d.Super != nil {
		r.ResolveType(d.Super, d)
		r.checkSuperclass(d)
	}
	kept := d.Interfaces[:0]
	for _, ref := range d.Interfaces {
		r.ResolveType(ref, d)
		if r.checkInterface(d, ref) {
			kept = append(kept, ref)
		}
	}
	d.Interfaces = kept
	r.implicitSuper(d)
}

// implicitSuper fills in the supertypes a declaration gets without writing
// them
func (r *Resolver) implicitSuper(d *models.Declaration) {
	switch d.Kind {
	case models.KindClass:
		if d.Super != nil || d.QualifiedName == types.ObjectName {
			return
		}
		if d.Script {
			d.Super = r.refTo(scriptName)
		} else {
			d.Super = r.refTo(types.ObjectName)
		}
	case models.KindEnum:
		if d.Super == nil {
			ref := r.refTo(types.EnumName)
			ref.Args = []*models.TypeRef{models.RefTo(d)}
			ref.Resolved = types.Class(types.EnumName, d.RawDescriptor())
			d.Super = ref
		}
	case models.KindAnnotation:
		for _, i := range d.Interfaces {
			if i.Resolved != nil && i.Resolved.Name == annotationName {
				return
			}
		}
		d.Interfaces = append(d.Interfaces, r.refTo(annotationName))
	}
}

func (r *Resolver) refTo(qualified string) *models.TypeRef {
	ref := models.ResolvedRef(types.Class(qualified))
	ref.Decl = r.table.Lookup(qualified)
	return ref
}

func (r *Resolver) checkSuperclass(d *models.Declaration) {
	sup := d.Super.Decl
	if sup == nil {
		if d.Super.Resolved == nil {
			d.Super = nil
		}
		return
	}
	if d.Kind != models.KindClass {
		return
	}
	switch {
	case sup.IsInterface():
		if r.Dynamic() {
			r.report(errors.TypeMismatchCode, d.NameSpan,
				"You are not allowed to extend the interface '%s', use implements instead.", sup.QualifiedName)
		} else {
			r.reportPlain(errors.TypeMismatchCode, d.Super.Span,
				"The type %s cannot be the superclass of %s; a superclass must be a class", sup.Name, d.Name)
		}
		d.Super = nil
	case sup.Modifiers.Has(models.ModFinal) && sup.Kind == models.KindClass && !d.Anonymous:
		if r.Dynamic() {
			r.report(errors.TypeMismatchCode, d.NameSpan,
				"You are not allowed to extend the final class '%s'.", sup.QualifiedName)
		} else {
			r.reportPlain(errors.TypeMismatchCode, d.Super.Span,
				"The type %s cannot subclass the final class %s", d.Name, sup.Name)
		}
	}
}

// checkInterface validates one implemented (or, for interfaces, extended)
// type and reports whether it stays in the interface list
func (r *Resolver) checkInterface(d *models.Declaration, ref *models.TypeRef) bool {
	i := ref.Decl
	if i == nil {
		return ref.Resolved != nil
	}
	if i.IsInterface() {
		return true
	}
	if d.IsInterface() {
		r.reportPlain(errors.TypeMismatchCode, ref.Span,
			"The type %s cannot be a superinterface of %s; a superinterface must be an interface", i.Name, d.Name)
		return false
	}
	if r.Dynamic() {
		r.report(errors.TypeMismatchCode, d.NameSpan,
			"You are not allowed to implement the class '%s', use extends instead.", i.QualifiedName)
	} else {
		r.reportPlain(errors.TypeMismatchCode, ref.Span,
			"The type %s cannot be a superinterface of %s; a superinterface must be an interface", i.Name, d.Name)
	}
	return false
}

// checkCycle reports a declaration that inherits from itself and cuts the
// offending supertype
func (r *Resolver) checkCycle(d *models.Declaration) {
	refs := append([]*models.TypeRef{d.Super}, d.Interfaces...)
	for _, ref := range refs {
		if ref == nil || ref.Decl == nil || !reaches(ref.Decl, d) {
			continue
		}
		if r.Dynamic() {
			r.report(errors.TypeMismatchCode, d.NameSpan, "Cyclic inheritance involving %s in %s",
				ref.Decl.QualifiedName, describe(d))
		}
		if ref.Decl == d {
			r.reportPlain(errors.TypeMismatchCode, ref.Span,
				"Cycle detected: the type %s cannot extend/implement itself or one of its own member types", d.Name)
		} else {
			r.reportPlain(errors.TypeMismatchCode, ref.Span,
				"Cycle detected: a cycle exists in the type hierarchy between %s and %s", d.Name, ref.Decl.Name)
		}
		if ref == d.Super {
			d.Super = r.refTo(types.ObjectName)
		} else {
			r.dropInterface(d, ref)
		}
	}
}

func (r *Resolver) dropInterface(d *models.Declaration, ref *models.TypeRef) {
	for i, cur := range d.Interfaces {
		if cur == ref {
			d.Interfaces = append(d.Interfaces[:i:i], d.Interfaces[i+1:]...)
			return
		}
	}
}

// reaches reports whether target is from or one of its supertypes
func reaches(from, target *models.Declaration) bool {
	for _, a := range Ancestors(from) {
		if a == target {
			return true
		}
	}
	return false
}

// resolveAnnotations resolves the annotations on d, its members, their
// parameters and the enum constants of d
func (r *Resolver) resolveAnnotations(d *models.Declaration) {
	r.annotate(d.Annotations, d, targetOf(d))
	for _, c := range d.Constants {
		r.annotate(c.Annotations, d, "FIELD")
	}
	for _, m := range d.Members {
		if m.IsType() {
			continue
		}
		r.annotate(m.Annotations, m, targetOf(m))
		for _, p := range m.Params {
			r.annotate(p.Annotations, m, "PARAMETER")
		}
	}
}

func targetOf(d *models.Declaration) string {
	switch d.Kind {
	case models.KindField:
		return "FIELD"
	case models.KindMethod:
		return "METHOD"
	case models.KindConstructor:
		return "CONSTRUCTOR"
	case models.KindAnnotation:
		return "ANNOTATION_TYPE"
	}
	return "TYPE"
}

// annotate resolves each annotation's type and class-valued arguments
func (r *Resolver) annotate(list []*models.Annotation, from *models.Declaration, target string) {
	for _, a := range list {
		if r.annotated[a] {
			continue
		}
		r.ResolveAnnotation(a, from)
		if a.Decl != nil {
			r.checkTarget(a, target)
		}
	}
}

// ResolveAnnotation binds an annotation to its annotation type
func (r *Resolver) ResolveAnnotation(a *models.Annotation, from *models.Declaration) {
	if r.annotated[a] {
		return
	}
	r.annotated[a] = true
	if a.Decl == nil {
		r.bindAnnotation(a, from)
	}
	for _, arg := range a.Args {
		r.annotationValue(arg.Value, from)
	}
}

func (r *Resolver) bindAnnotation(a *models.Annotation, from *models.Declaration) {
	span := a.NameSpan
	if !span.IsValid() {
		span = a.Span
	}
	var d *models.Declaration
	if a.QualifiedName != "" {
		d = r.qualified(a.QualifiedName)
	}
	if d == nil {
		m := r.LookupType(a.Name, from)
		d = m.Decl
	}
	if d == nil {
		if r.Dynamic() {
			r.report(errors.UnresolvedReferenceCode, span,
				"unable to resolve class %s ,  unable to find class for annotation", a.Name)
		} else {
			r.reportPlain(errors.UnresolvedReferenceCode, span, "%s cannot be resolved to a type", a.Name)
		}
		return
	}
	if d.Kind != models.KindAnnotation {
		if r.Dynamic() {
			r.report(errors.TypeMismatchCode, span, "class %s is not an annotation in @%s", d.QualifiedName, a.Name)
		} else {
			r.reportPlain(errors.TypeMismatchCode, span, "Type mismatch: cannot convert from %s to Annotation", d.Name)
		}
		return
	}
	a.Decl = d
	a.QualifiedName = d.QualifiedName
}

// annotationValue resolves class literals and nested annotations inside an
// annotation argument
func (r *Resolver) annotationValue(e models.Expr, from *models.Declaration) {
	switch v := e.(type) {
	case *models.ClassLit:
		if v.Type.Resolved != nil {
			return
		}
		r.quiet++
		t := r.ResolveType(v.Type, from)
		r.quiet--
		if t != nil {
			return
		}
		if r.Dynamic() {
			r.reportOnce(v.Type, errors.UnresolvedReferenceCode,
				"unable to find class '%s.class' for annotation attribute constant", v.Type.String())
		} else {
			r.reportUnresolved(v.Type)
		}
	case *models.ListLit:
		for _, el := range v.Elems {
			r.annotationValue(el, from)
		}
	case *models.AnnotationValue:
		r.ResolveAnnotation(v.Annotation, from)
	}
}

// checkTarget applies the @Target meta-annotation of a source or library
// annotation type
func (r *Resolver) checkTarget(a *models.Annotation, target string) {
	meta := models.FindAnnotation(a.Decl.Annotations, targetName)
	if meta == nil {
		return
	}
	value, ok := meta.Arg("value")
	if !ok {
		return
	}
	allowed := elementTypes(value)
	for _, t := range allowed {
		if t == target || (t == "TYPE" && target == "ANNOTATION_TYPE") {
			return
		}
	}
	if r.Dynamic() {
		r.report(errors.TransformPreconditionCode, a.Span,
			"Annotation @%s is not allowed on element %s", a.QualifiedName, target)
		return
	}
	r.reportPlain(errors.TransformPreconditionCode, a.Span,
		"The annotation @%s is disallowed for this location", a.Decl.Name)
}

func elementTypes(e models.Expr) []string {
	if l, ok := e.(*models.ListLit); ok {
		var out []string
		for _, el := range l.Elems {
			out = append(out, elementTypes(el)...)
		}
		return out
	}
	name := models.QualifiedName(e)
	if name == "" {
		return nil
	}
	return []string{types.SimpleName(name)}
}
