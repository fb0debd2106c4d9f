package generator

import (
	"strings"

	"github.com/toyz/jointc/internal/models"
	"github.com/toyz/jointc/internal/types"
)

// ClassLookup finds the declaration of a qualified class name; the session
// symbol table satisfies it
type ClassLookup interface {
	Lookup(qualified string) *models.Declaration
}

var primitiveCodes = map[string]byte{
	"boolean": 'Z',
	"byte":    'B',
	"char":    'C',
	"short":   'S',
	"int":     'I',
	"long":    'J',
	"float":   'F',
	"double":  'D',
	"void":    'V',
}

// namer renders JVM names, descriptors and generic signatures
type namer struct {
	lookup ClassLookup
}

// internalName maps a qualified class name to its JVM internal name, using
// $ for nested classes when the class is known
func (n namer) internalName(qualified string) string {
	if n.lookup != nil {
		if d := n.lookup.Lookup(qualified); d != nil && d.BinaryName != "" {
			return d.BinaryName
		}
	}
	return strings.ReplaceAll(qualified, ".", "/")
}

func (n namer) isInterface(qualified string) bool {
	if n.lookup == nil {
		return false
	}
	d := n.lookup.Lookup(qualified)
	return d != nil && d.IsInterface()
}

// descriptor renders the erased field descriptor of t
func (n namer) descriptor(t *types.Type) string {
	var sb strings.Builder
	n.writeDescriptor(&sb, t.Erasure())
	return sb.String()
}

func (n namer) writeDescriptor(sb *strings.Builder, t *types.Type) {
	switch t.Kind {
	case types.KindPrimitive:
		sb.WriteByte(primitiveCodes[t.Name])
	case types.KindArray:
		sb.WriteByte('[')
		n.writeDescriptor(sb, t.Elem.Erasure())
	default:
		sb.WriteByte('L')
		sb.WriteString(n.internalName(t.Erasure().Name))
		sb.WriteByte(';')
	}
}

// methodDescriptor renders (params)return, e.g. (Ljava/lang/String;I)V
func (n namer) methodDescriptor(params []*types.Type, ret *types.Type) string {
	var sb strings.Builder
	sb.WriteByte('(')
	for _, p := range params {
		n.writeDescriptor(&sb, p.Erasure())
	}
	sb.WriteByte(')')
	n.writeDescriptor(&sb, ret.Erasure())
	return sb.String()
}

// generic reports whether t mentions type arguments or type variables, so
// that its declaration needs a Signature attribute
func generic(t *types.Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case types.KindTypeVar, types.KindWildcard:
		return true
	case types.KindArray:
		return generic(t.Elem)
	case types.KindClass:
		return len(t.Args) > 0
	}
	return false
}

func (n namer) signature(t *types.Type) string {
	var sb strings.Builder
	n.writeSignature(&sb, t)
	return sb.String()
}

func (n namer) writeSignature(sb *strings.Builder, t *types.Type) {
	switch t.Kind {
	case types.KindPrimitive:
		sb.WriteByte(primitiveCodes[t.Name])
	case types.KindArray:
		sb.WriteByte('[')
		n.writeSignature(sb, t.Elem)
	case types.KindTypeVar:
		sb.WriteByte('T')
		sb.WriteString(t.Name)
		sb.WriteByte(';')
	case types.KindWildcard:
		switch t.BoundKind {
		case types.ExtendsBound:
			sb.WriteByte('+')
			n.writeSignature(sb, t.Bound)
		case types.SuperBound:
			sb.WriteByte('-')
			n.writeSignature(sb, t.Bound)
		default:
			sb.WriteByte('*')
		}
	default:
		sb.WriteByte('L')
		sb.WriteString(n.internalName(t.Name))
		if len(t.Args) > 0 {
			sb.WriteByte('<')
			for _, a := range t.Args {
				n.writeSignature(sb, a)
			}
			sb.WriteByte('>')
		}
		sb.WriteByte(';')
	}
}

// writeTypeParams renders <T:Ljava/lang/Object;U::Ljava/lang/Comparable<TU;>;>
func (n namer) writeTypeParams(sb *strings.Builder, params []*models.TypeParam) {
	if len(params) == 0 {
		return
	}
	sb.WriteByte('<')
	for _, tp := range params {
		sb.WriteString(tp.Name)
		if len(tp.Bounds) == 0 {
			sb.WriteString(":Ljava/lang/Object;")
			continue
		}
		for i, b := range tp.Bounds {
			bound := b.Type()
			if i > 0 || (bound.Kind == types.KindClass && n.isInterface(bound.Name)) {
				sb.WriteByte(':')
			}
			sb.WriteByte(':')
			n.writeSignature(sb, bound)
		}
	}
	sb.WriteByte('>')
}

// classSignature returns the Signature attribute of a class, or "" when the
// class is not generic
func (n namer) classSignature(d *models.Declaration, super *types.Type, interfaces []*types.Type) string {
	needed := len(d.TypeParams) > 0 || generic(super)
	for _, i := range interfaces {
		needed = needed || generic(i)
	}
	if !needed {
		return ""
	}
	var sb strings.Builder
	n.writeTypeParams(&sb, d.TypeParams)
	if super == nil {
		super = types.Object
	}
	n.writeSignature(&sb, super)
	for _, i := range interfaces {
		n.writeSignature(&sb, i)
	}
	return sb.String()
}

// methodSignature returns the Signature attribute of a method, or "" when
// nothing in it is generic
func (n namer) methodSignature(m *models.Declaration, params []*types.Type, ret *types.Type) string {
	needed := len(m.TypeParams) > 0 || generic(ret)
	for _, p := range params {
		needed = needed || generic(p)
	}
	if !needed {
		return ""
	}
	var sb strings.Builder
	n.writeTypeParams(&sb, m.TypeParams)
	sb.WriteByte('(')
	for _, p := range params {
		n.writeSignature(&sb, p)
	}
	sb.WriteByte(')')
	n.writeSignature(&sb, ret)
	return sb.String()
}
