package transform

import (
	"github.com/toyz/jointc/internal/models"
	"github.com/toyz/jointc/internal/types"
)

// applyInheritConstructors adds a constructor calling super(args) for every
// non-private superclass constructor whose signature the class does not
// declare. Type arguments of the superclass are substituted into the copied
// parameter types.
func applyInheritConstructors(ctx *Context, d *models.Declaration, marker *models.Annotation) error {
	if d.Super == nil || d.Super.Decl == nil {
		return nil
	}
	sup := d.Super.Decl
	ctx.prepare(sup)

	var bindings map[string]*types.Type
	if st := d.Super.Resolved; st != nil && len(st.Args) == len(sup.TypeParams) && len(st.Args) > 0 {
		bindings = make(map[string]*types.Type, len(st.Args))
		for i, tp := range sup.TypeParams {
			bindings[tp.Name] = st.Args[i]
		}
	}
	copyCtorAnnotations := ctx.Params.GetBool("constructorAnnotations")
	copyParamAnnotations := ctx.Params.GetBool("parameterAnnotations")

	for _, sc := range sup.Constructors() {
		if sc.Modifiers.Has(models.ModPrivate) {
			continue
		}
		params := make([]*models.Param, len(sc.Params))
		args := make([]models.Expr, len(sc.Params))
		for i, sp := range sc.Params {
			np := sp.Clone()
			np.Type = substituted(sp.Type, bindings)
			np.Default = nil
			np.Span, np.NameSpan = models.NoSpan, models.NoSpan
			if !copyParamAnnotations {
				np.Annotations = nil
			}
			params[i] = np
			args[i] = models.NewIdent(np.Name)
		}
		body := models.Stmts(&models.CtorCall{Super: true, Args: args, Span: models.NoSpan})
		ctor := models.NewConstructor(d, sc.Modifiers.Visibility(), params, body)
		for _, t := range sc.Throws {
			ctor.Throws = append(ctor.Throws, t.Clone())
		}
		if declaresSignature(d, ctor) {
			continue
		}
		if copyCtorAnnotations {
			for _, a := range sc.Annotations {
				ctor.Annotations = append(ctor.Annotations, a.Clone())
			}
		}
		d.AddMember(ctor)
		for _, a := range ctor.Annotations {
			ctx.resolveMarker(a, ctor)
		}
	}
	return nil
}
