package generator

import (
	"strings"

	"github.com/toyz/jointc/internal/models"
	"github.com/toyz/jointc/internal/types"
)

const indentUnit = "  "

// PrintUnit renders the declaration tree of a unit: resolved types fully
// qualified, members in order with empty bodies. Synthetic members and
// initializer expressions are left out.
func PrintUnit(unit *models.CompilationUnit) string {
	p := &printer{}
	if unit.Package != "" {
		p.line(0, "package "+unit.Package+";")
	}
	for _, d := range unit.Types {
		p.typeDecl(0, d)
	}
	return p.sb.String()
}

type printer struct {
	sb strings.Builder
}

func (p *printer) line(depth int, text string) {
	p.sb.WriteString(strings.Repeat(indentUnit, depth))
	p.sb.WriteString(text)
	p.sb.WriteByte('\n')
}

func (p *printer) annotations(depth int, list []*models.Annotation) {
	for _, a := range list {
		p.line(depth, "@"+a.Name)
	}
}

func modifierPrefix(m models.Modifiers) string {
	if s := m.String(); s != "" {
		return s + " "
	}
	return ""
}

func (p *printer) typeDecl(depth int, d *models.Declaration) {
	p.annotations(depth, d.Annotations)
	mods := d.Modifiers
	if d.IsInterface() {
		mods &^= models.ModAbstract
	}

	var sb strings.Builder
	sb.WriteString(modifierPrefix(mods))
	sb.WriteString(d.Kind.String())
	sb.WriteByte(' ')
	sb.WriteString(d.Name)
	sb.WriteString(typeParams(d.TypeParams))
	if d.Super != nil && d.Kind == models.KindClass && !isObject(d.Super) {
		sb.WriteString(" extends ")
		sb.WriteString(typeText(d.Super))
	}
	if len(d.Interfaces) > 0 {
		if d.IsInterface() {
			sb.WriteString(" extends ")
		} else {
			sb.WriteString(" implements ")
		}
		for i, r := range d.Interfaces {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(typeText(r))
		}
	}
	sb.WriteString(" {")
	p.line(depth, sb.String())

	for _, c := range d.Constants {
		p.line(depth+1, c.Name+",")
	}
	for _, m := range d.Members {
		if m.Synthetic {
			continue
		}
		if m.IsType() {
			if !m.Anonymous {
				p.typeDecl(depth+1, m)
			}
			continue
		}
		p.member(depth+1, d, m)
	}
	p.line(depth, "}")
}

func (p *printer) member(depth int, owner, m *models.Declaration) {
	p.annotations(depth, m.Annotations)
	switch m.Kind {
	case models.KindField:
		p.line(depth, modifierPrefix(m.Modifiers)+typeText(m.Type)+" "+m.Name+";")
	case models.KindInitializer:
		if m.IsStatic() {
			p.line(depth, "static {")
		} else {
			p.line(depth, "{")
		}
		p.line(depth, "}")
	default:
		var sb strings.Builder
		sb.WriteString(modifierPrefix(m.Modifiers))
		if tp := typeParams(m.TypeParams); tp != "" {
			sb.WriteString(tp)
			sb.WriteByte(' ')
		}
		if m.Kind == models.KindConstructor {
			sb.WriteString(owner.Name)
		} else {
			sb.WriteString(typeText(m.Return))
			sb.WriteByte(' ')
			sb.WriteString(m.Name)
		}
		sb.WriteByte('(')
		for i, param := range m.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(typeText(param.Type))
			if param.Varargs {
				sb.WriteString("...")
			}
			sb.WriteByte(' ')
			sb.WriteString(param.Name)
		}
		sb.WriteByte(')')
		for i, t := range m.Throws {
			if i == 0 {
				sb.WriteString(" throws ")
			} else {
				sb.WriteString(", ")
			}
			sb.WriteString(typeText(t))
		}
		if m.Body == nil && (m.IsAbstract() || m.Modifiers.Has(models.ModNative) || owner.IsInterface()) {
			sb.WriteByte(';')
			p.line(depth, sb.String())
			return
		}
		sb.WriteString(" {")
		p.line(depth, sb.String())
		p.line(depth, "}")
	}
}

// typeText renders a resolved reference with qualified names; dynamic and
// unresolved references fall back to Object and the written form
func typeText(r *models.TypeRef) string {
	switch {
	case r == nil || r.IsDynamic():
		return "java.lang.Object"
	case r.Resolved != nil:
		return r.Resolved.String()
	default:
		return r.String()
	}
}

// isObject reports whether ref names java.lang.Object, which every class
// extends whether or not it was written
func isObject(ref *models.TypeRef) bool {
	if ref.Resolved != nil {
		return ref.Resolved.Base().Name == types.ObjectName
	}
	return ref.Name == types.ObjectName
}

// typeParams renders <T extends A & B, U>, or "" without parameters
func typeParams(params []*models.TypeParam) string {
	if len(params) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("<")
	for i, tp := range params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(tp.Name)
		for j, b := range tp.Bounds {
			if j == 0 {
				sb.WriteString(" extends ")
			} else {
				sb.WriteString(" & ")
			}
			sb.WriteString(typeText(b))
		}
	}
	sb.WriteString(">")
	return sb.String()
}
