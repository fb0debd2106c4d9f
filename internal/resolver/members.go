package resolver

import (
	"github.com/toyz/jointc/internal/config"
	"github.com/toyz/jointc/internal/errors"
	"github.com/toyz/jointc/internal/models"
)

// ResolveMembers resolves the declared types of fields, methods and
// constructors, including members added by transforms, and applies the
// generics and compliance checks.
func (r *Resolver) ResolveMembers() {
	for _, d := range r.unit.AllTypes() {
		r.resolveMembersOf(d)
	}
}

func (r *Resolver) resolveMembersOf(d *models.Declaration) {
	r.checkBounds(d.Super)
	for _, i := range d.Interfaces {
		r.checkBounds(i)
	}
	for _, c := range d.Constants {
		r.annotate(c.Annotations, d, "FIELD")
	}
	for _, m := range d.Members {
		if m.IsType() {
			continue
		}
		r.resolveMember(m)
	}
}

func (r *Resolver) resolveMember(m *models.Declaration) {
	r.annotate(m.Annotations, m, targetOf(m))
	switch m.Kind {
	case models.KindField:
		r.declaredType(m.Type, m)
	case models.KindMethod, models.KindConstructor:
		for _, tp := range m.TypeParams {
			for _, b := range tp.Bounds {
				r.declaredType(b, m)
			}
		}
		r.declaredType(m.Return, m)
		for _, p := range m.Params {
			r.annotate(p.Annotations, m, "PARAMETER")
			r.declaredType(p.Type, m)
		}
		for _, t := range m.Throws {
			r.declaredType(t, m)
		}
		r.checkCompliance(m)
	}
}

// declaredType resolves a member type reference; absent references stay
// dynamic
func (r *Resolver) declaredType(ref *models.TypeRef, from *models.Declaration) {
	if ref == nil {
		return
	}
	r.ResolveType(ref, from)
	r.checkBounds(ref)
}

// checkCompliance rejects interface members the configured source level does
// not allow
func (r *Resolver) checkCompliance(m *models.Declaration) {
	owner := m.Owner
	if owner == nil || owner.Kind != models.KindInterface || m.Kind != models.KindMethod || m.Generated {
		return
	}
	switch {
	case m.Modifiers.Has(models.ModDefault) && !r.opts.AtLeast(config.Level8):
		r.report(errors.ComplianceErrorCode, m.NameSpan,
			"Default methods are allowed only at source level 1.8 or above")
	case m.IsStatic() && !r.opts.AtLeast(config.Level8):
		r.report(errors.ComplianceErrorCode, m.NameSpan,
			"Static methods are allowed in interfaces only at source level 1.8 or above")
	case m.Modifiers.Has(models.ModPrivate) && !r.opts.AtLeast(config.Level9):
		r.report(errors.ComplianceErrorCode, m.NameSpan,
			"Illegal modifier for the interface method %s; only public, abstract, default, static and strictfp are permitted",
			m.Name)
	}
}
