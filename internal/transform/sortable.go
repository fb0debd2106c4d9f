package transform

import (
	"github.com/toyz/jointc/internal/models"
	"github.com/toyz/jointc/internal/resolver"
	"github.com/toyz/jointc/internal/types"
)

const comparableName = "java.lang.Comparable"

// applySortable makes the class Comparable to itself, ordering instances by
// their properties in declaration order
func applySortable(ctx *Context, d *models.Declaration, marker *models.Annotation) error {
	if d.Kind != models.KindClass {
		return precondition(marker.Span, "Error during @Sortable processing: '%s' must be a class", d.Name)
	}
	p := ctx.Params
	includes := p.GetStringSlice("includes")
	excludes := p.GetStringSlice("excludes")

	var props []*models.Declaration
	if p.GetBool("includeSuperProperties") {
		ancestors := resolver.Ancestors(d)
		for i := len(ancestors) - 1; i > 0; i-- {
			if ancestors[i].Origin != models.OriginLibrary && !ancestors[i].IsInterface() {
				props = append(props, properties(ancestors[i])...)
			}
		}
	}
	props = append(props, properties(d)...)

	var compared []*models.Declaration
	for _, f := range props {
		if !selected(f.Name, includes, excludes) {
			continue
		}
		if !isComparable(ctx, f) {
			span := f.NameSpan
			if !span.IsValid() {
				span = marker.Span
			}
			return precondition(span, "Error during @Sortable processing: property '%s' must be Comparable", f.Name)
		}
		compared = append(compared, f)
	}

	self := d.Descriptor()
	if !implements(d, comparableName) {
		ref := models.ResolvedRef(types.Class(comparableName, self))
		ref.Decl = ctx.Lookup(comparableName)
		d.Interfaces = append(d.Interfaces, ref)
	}

	other := models.NewParam("other", models.ResolvedRef(self))
	body := models.Stmts(
		models.IfThen(models.CallOn(models.NewThis(), "is", models.NewIdent("other")), models.Ret(models.IntLit(0))),
		&models.VarDecl{Type: models.ResolvedRef(types.Int), Name: "value", Init: models.IntLit(0), Span: models.NoSpan, NameSpan: models.NoSpan},
	)
	for _, f := range compared {
		cmp := models.Compare("<=>", models.Select(models.NewThis(), f.Name), models.Select(models.NewIdent("other"), f.Name))
		body.Stmts = append(body.Stmts,
			models.Eval(models.AssignTo(models.NewIdent("value"), cmp)),
			models.IfThen(models.Compare("!=", models.NewIdent("value"), models.IntLit(0)), models.Ret(models.NewIdent("value"))),
		)
	}
	body.Stmts = append(body.Stmts, models.Ret(models.IntLit(0)))

	compareTo := models.NewMethod("compareTo", models.ModPublic, models.ResolvedRef(types.Int), []*models.Param{other}, body)
	if declaresSignature(d, compareTo) {
		return nil
	}
	d.AddMember(compareTo)
	return nil
}

func properties(d *models.Declaration) []*models.Declaration {
	var out []*models.Declaration
	for _, f := range d.Fields() {
		if f.Property && !f.IsStatic() {
			out = append(out, f)
		}
	}
	return out
}

// isComparable reports whether a property type is primitive or implements
// Comparable
func isComparable(ctx *Context, f *models.Declaration) bool {
	if f.Type.IsDynamic() {
		return false
	}
	t := ctx.Resolver.ResolveType(f.Type, f)
	if t == nil {
		return true
	}
	if t.IsPrimitive() {
		return true
	}
	if t.IsArray() {
		return false
	}
	return types.AsSuper(ctx.Resolver.Table(), t, comparableName) != nil
}

func implements(d *models.Declaration, qualified string) bool {
	for _, a := range resolver.Ancestors(d) {
		if a.QualifiedName == qualified {
			return true
		}
	}
	return false
}
