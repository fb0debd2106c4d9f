package transform

import (
	"strings"

	"github.com/toyz/jointc/internal/models"
	"github.com/toyz/jointc/internal/resolver"
	"github.com/toyz/jointc/internal/types"
)

const selfParam = "self"

// applyCategory turns the instance methods of a category class into static
// methods taking the receiver as a leading self parameter
func applyCategory(ctx *Context, d *models.Declaration, marker *models.Annotation) error {
	if _, ok := marker.Arg("value"); !ok {
		span := marker.NameSpan
		if !span.IsValid() {
			span = marker.Span
		}
		return precondition(span, "@%s must define 'value' which is the class to apply this category to", marker.QualifiedName)
	}
	classes := ctx.Params.GetClasses("value")
	if len(classes) == 0 {
		// closures and non-class values were already reported by validation
		return nil
	}
	target := classes[0].Ref
	if ctx.Resolver.ResolveType(target, d) == nil {
		return nil
	}

	var instanceFields []string
	for _, f := range d.Fields() {
		if !f.IsStatic() {
			instanceFields = append(instanceFields, f.Name)
		}
	}
	if len(instanceFields) > 0 {
		return precondition(marker.Span, "The @Category transformation does not support instance properties but found [%s]", strings.Join(instanceFields, ", "))
	}

	own := make(map[string]bool)
	for _, m := range d.Methods() {
		own[m.Name] = true
	}
	for _, m := range d.Methods() {
		if m.IsStatic() {
			continue
		}
		self := models.NewParam(selfParam, target.Clone())
		m.Params = append([]*models.Param{self}, m.Params...)
		m.Modifiers |= models.ModStatic
		models.RewriteBlock(m.Body, func(e models.Expr) models.Expr {
			return toSelf(e, own)
		})
	}
	return nil
}

// toSelf replaces this, and calls on the implicit receiver that the
// category does not declare itself, by the self parameter
func toSelf(e models.Expr, own map[string]bool) models.Expr {
	switch x := e.(type) {
	case *models.This:
		return &models.Ident{Name: selfParam, Span: x.Span}
	case *models.Call:
		if x.X == nil && !own[x.Name] {
			x.X = models.NewIdent(selfParam)
		}
	}
	return e
}

// applyMixin adds to the target an instance method forwarding to every
// category-style method of the mixed-in classes that applies to it
func applyMixin(ctx *Context, d *models.Declaration, marker *models.Annotation) error {
	for _, m := range ctx.classDecls(marker, "value", d) {
		ctx.prepare(m)
		for _, cm := range m.Methods() {
			if !cm.IsStatic() || !cm.Modifiers.Has(models.ModPublic) || len(cm.Params) == 0 {
				continue
			}
			self := cm.Params[0].Type
			if self == nil || !appliesTo(d, self) {
				continue
			}
			fwd := mixinForwarder(m, cm)
			if declaresSignature(d, fwd) {
				continue
			}
			d.AddMember(fwd)
		}
	}
	return nil
}

// appliesTo reports whether instances of d can be passed as self
func appliesTo(d *models.Declaration, self *models.TypeRef) bool {
	if self.IsDynamic() || self.Type().IsObject() {
		return true
	}
	if self.Decl == nil {
		return false
	}
	return resolver.IsSubclass(d, self.Decl)
}

// mixinForwarder builds name(rest) { return Mixin.name(this, rest) }
func mixinForwarder(mixin, cm *models.Declaration) *models.Declaration {
	rest := cm.Params[1:]
	params := make([]*models.Param, len(rest))
	args := []models.Expr{models.NewThis()}
	for i, p := range rest {
		np := p.Clone()
		np.Default = nil
		np.Annotations = nil
		np.Span, np.NameSpan = models.NoSpan, models.NoSpan
		params[i] = np
		args = append(args, models.NewIdent(np.Name))
	}
	recv := &models.Ident{
		Name: mixin.Name,
		Span: models.NoSpan,
		Binding: &models.Binding{
			Kind:   models.BindType,
			Decl:   mixin,
			Type:   mixin.RawDescriptor(),
			Static: true,
		},
	}
	call := models.CallOn(recv, cm.Name, args...)
	call.Static = true
	call.Target = cm

	ret := cm.Return.Clone()
	if ret == nil {
		ret = models.ResolvedRef(types.Object)
	}
	var body *models.Block
	if isVoid(ret) {
		body = models.Stmts(models.Eval(call))
	} else {
		body = models.Stmts(models.Ret(call))
	}
	fwd := models.NewMethod(cm.Name, models.ModPublic, ret, params, body)
	for _, t := range cm.Throws {
		fwd.Throws = append(fwd.Throws, t.Clone())
	}
	return fwd
}
