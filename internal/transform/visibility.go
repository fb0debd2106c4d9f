package transform

import (
	"github.com/toyz/jointc/internal/models"
)

// applyPackageScope gives package-private visibility to elements that were
// declared without a visibility. Placed on a member it affects that member;
// placed on a type it affects the kinds listed in value, or the type itself.
func applyPackageScope(ctx *Context, target *models.Declaration, marker *models.Annotation) error {
	if !target.IsType() {
		packagePrivate(target)
		return nil
	}
	kinds := ctx.Params.GetEnums("value")
	if len(kinds) == 0 {
		packagePrivate(target)
		return nil
	}
	for _, k := range kinds {
		switch k.Name {
		case "CLASS":
			packagePrivate(target)
		case "FIELDS":
			for _, f := range target.Fields() {
				packagePrivate(f)
			}
		case "METHODS":
			for _, m := range target.Methods() {
				packagePrivate(m)
			}
		case "CONSTRUCTORS":
			for _, c := range target.Constructors() {
				packagePrivate(c)
			}
		}
	}
	return nil
}

// packagePrivate clears an implicit visibility; spelled visibilities stay
func packagePrivate(d *models.Declaration) {
	if d.ExplicitVisibility || d.Generated {
		return
	}
	d.Modifiers = d.Modifiers.WithVisibility(0)
	d.Property = false
}
