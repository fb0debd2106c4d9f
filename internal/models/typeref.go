package models

import (
	"strings"

	"github.com/toyz/jointc/internal/types"
)

// WildcardKind distinguishes wildcard type arguments
type WildcardKind uint8

const (
	NotWildcard WildcardKind = iota
	WildcardUnbounded
	WildcardExtends
	WildcardSuper
)

// DynamicTypeName is the spelling of an untyped declaration
const DynamicTypeName = "def"

// TypeRef is a type as written in source together with the descriptor it
// resolved to
type TypeRef struct {
	Name     string // as written, possibly qualified
	Args     []*TypeRef
	Diamond  bool
	Dims     int
	Wildcard WildcardKind
	Bound    *TypeRef
	Span     Span

	Resolved *types.Type
	// Decl is the declaration the reference resolved to, when it names a class
	Decl *Declaration
}

// ResolvedRef wraps an already-resolved descriptor, for synthesized code
func ResolvedRef(t *types.Type) *TypeRef {
	if t == nil {
		return &TypeRef{Name: DynamicTypeName, Span: NoSpan}
	}
	ref := &TypeRef{Span: NoSpan, Resolved: t}
	base := t.Base()
	ref.Dims = t.Dims()
	switch base.Kind {
	case types.KindWildcard:
		ref.Name = "?"
		switch base.BoundKind {
		case types.ExtendsBound:
			ref.Wildcard = WildcardExtends
			ref.Bound = ResolvedRef(base.Bound)
		case types.SuperBound:
			ref.Wildcard = WildcardSuper
			ref.Bound = ResolvedRef(base.Bound)
		default:
			ref.Wildcard = WildcardUnbounded
		}
	default:
		ref.Name = base.Name
		for _, a := range base.Args {
			ref.Args = append(ref.Args, ResolvedRef(a))
		}
	}
	return ref
}

// NamedRef builds an unresolved reference to a qualified class name
func NamedRef(name string) *TypeRef {
	return &TypeRef{Name: name, Span: NoSpan}
}

// IsDynamic reports whether the reference is absent or spelled def
func (r *TypeRef) IsDynamic() bool {
	return r == nil || (r.Name == DynamicTypeName && r.Resolved == nil)
}

// Type returns the resolved descriptor; dynamic references yield Object
func (r *TypeRef) Type() *types.Type {
	if r == nil || r.Resolved == nil {
		return types.Object
	}
	return r.Resolved
}

// Clone returns a deep copy sharing resolved descriptors
func (r *TypeRef) Clone() *TypeRef {
	if r == nil {
		return nil
	}
	c := *r
	c.Args = make([]*TypeRef, len(r.Args))
	for i, a := range r.Args {
		c.Args[i] = a.Clone()
	}
	if len(r.Args) == 0 {
		c.Args = nil
	}
	c.Bound = r.Bound.Clone()
	return &c
}

// String renders the reference as written
func (r *TypeRef) String() string {
	if r == nil {
		return DynamicTypeName
	}
	var sb strings.Builder
	switch r.Wildcard {
	case WildcardUnbounded:
		sb.WriteString("?")
	case WildcardExtends:
		sb.WriteString("? extends ")
		sb.WriteString(r.Bound.String())
	case WildcardSuper:
		sb.WriteString("? super ")
		sb.WriteString(r.Bound.String())
	default:
		sb.WriteString(r.Name)
		if r.Diamond {
			sb.WriteString("<>")
		} else if len(r.Args) > 0 {
			sb.WriteString("<")
			for i, a := range r.Args {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(a.String())
			}
			sb.WriteString(">")
		}
	}
	sb.WriteString(strings.Repeat("[]", r.Dims))
	return sb.String()
}

// TypeParam is a declared type parameter
type TypeParam struct {
	Name   string
	Bounds []*TypeRef
	Span   Span
}

// Descriptor returns the type variable descriptor of the parameter
func (p *TypeParam) Descriptor() *types.Type {
	var bound *types.Type
	if len(p.Bounds) > 0 && p.Bounds[0].Resolved != nil {
		bound = p.Bounds[0].Resolved
	}
	return types.TypeVar(p.Name, bound)
}
