package types

import (
	"strings"
)

// Kind classifies a type descriptor
type Kind uint8

const (
	KindInvalid Kind = iota
	KindPrimitive
	KindClass
	KindArray
	KindTypeVar
	KindWildcard
	KindNull
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindClass:
		return "class"
	case KindArray:
		return "array"
	case KindTypeVar:
		return "typevar"
	case KindWildcard:
		return "wildcard"
	case KindNull:
		return "null"
	default:
		return "invalid"
	}
}

// BoundKind describes the bound of a wildcard
type BoundKind uint8

const (
	Unbounded BoundKind = iota
	ExtendsBound
	SuperBound
)

// Type is a resolved, front-end independent type descriptor. Descriptors are
// values: two descriptors built independently for the same structural type
// are Equal and share a Key.
type Type struct {
	Kind      Kind
	Name      string  // primitive keyword, qualified class name or type variable name
	Args      []*Type // class type arguments
	Elem      *Type   // array element
	Bound     *Type   // wildcard or type variable bound
	BoundKind BoundKind
}

// Class builds a class descriptor
func Class(name string, args ...*Type) *Type {
	return &Type{Kind: KindClass, Name: name, Args: args}
}

// ArrayOf builds an array descriptor with the given number of dimensions
func ArrayOf(elem *Type, dims int) *Type {
	t := elem
	for i := 0; i < dims; i++ {
		t = &Type{Kind: KindArray, Elem: t}
	}
	return t
}

// TypeVar builds a type variable descriptor
func TypeVar(name string, bound *Type) *Type {
	return &Type{Kind: KindTypeVar, Name: name, Bound: bound}
}

// Wildcard builds a wildcard descriptor
func Wildcard(kind BoundKind, bound *Type) *Type {
	if kind == Unbounded {
		bound = nil
	}
	return &Type{Kind: KindWildcard, BoundKind: kind, Bound: bound}
}

// Equal reports structural equality
func (t *Type) Equal(o *Type) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil {
		return false
	}
	if t.Kind != o.Kind || t.Name != o.Name || t.BoundKind != o.BoundKind {
		return false
	}
	if len(t.Args) != len(o.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	if t.Kind == KindTypeVar {
		// type variables are identified by name; their bounds live on the declaring site
		return true
	}
	return t.Elem.Equal(o.Elem) && t.Bound.Equal(o.Bound)
}

// Key returns a canonical string usable as a map key
func (t *Type) Key() string {
	var sb strings.Builder
	t.write(&sb, true)
	return sb.String()
}

// String renders the type with qualified names, e.g. java.util.List<java.lang.String>
func (t *Type) String() string {
	var sb strings.Builder
	t.write(&sb, true)
	return sb.String()
}

// SimpleString renders the type with simple class names
func (t *Type) SimpleString() string {
	var sb strings.Builder
	t.write(&sb, false)
	return sb.String()
}

func (t *Type) write(sb *strings.Builder, qualified bool) {
	if t == nil {
		sb.WriteString("java.lang.Object")
		return
	}
	switch t.Kind {
	case KindPrimitive, KindTypeVar:
		sb.WriteString(t.Name)
	case KindNull:
		sb.WriteString("null")
	case KindArray:
		t.Elem.write(sb, qualified)
		sb.WriteString("[]")
	case KindWildcard:
		sb.WriteString("?")
		switch t.BoundKind {
		case ExtendsBound:
			sb.WriteString(" extends ")
			t.Bound.write(sb, qualified)
		case SuperBound:
			sb.WriteString(" super ")
			t.Bound.write(sb, qualified)
		}
	case KindClass:
		if qualified {
			sb.WriteString(t.Name)
		} else {
			sb.WriteString(SimpleName(t.Name))
		}
		if len(t.Args) > 0 {
			sb.WriteString("<")
			for i, a := range t.Args {
				if i > 0 {
					sb.WriteString(", ")
				}
				a.write(sb, qualified)
			}
			sb.WriteString(">")
		}
	default:
		sb.WriteString("<invalid>")
	}
}

// Erasure drops type arguments and replaces type variables by their bounds
func (t *Type) Erasure() *Type {
	if t == nil {
		return Object
	}
	switch t.Kind {
	case KindClass:
		if len(t.Args) == 0 {
			return t
		}
		return Class(t.Name)
	case KindArray:
		return &Type{Kind: KindArray, Elem: t.Elem.Erasure()}
	case KindTypeVar:
		if t.Bound != nil {
			return t.Bound.Erasure()
		}
		return Object
	case KindWildcard:
		if t.BoundKind == ExtendsBound {
			return t.Bound.Erasure()
		}
		return Object
	}
	return t
}

// IsPrimitive reports whether t is a primitive (void included)
func (t *Type) IsPrimitive() bool { return t != nil && t.Kind == KindPrimitive }

// IsArray reports whether t is an array
func (t *Type) IsArray() bool { return t != nil && t.Kind == KindArray }

// IsObject reports whether t is java.lang.Object
func (t *Type) IsObject() bool { return t != nil && t.Kind == KindClass && t.Name == ObjectName }

// IsVoid reports whether t is the void pseudo-type
func (t *Type) IsVoid() bool { return t != nil && t.Kind == KindPrimitive && t.Name == "void" }

// Dims returns the array depth of t
func (t *Type) Dims() int {
	n := 0
	for c := t; c != nil && c.Kind == KindArray; c = c.Elem {
		n++
	}
	return n
}

// Base returns the innermost element type of an array, or t itself
func (t *Type) Base() *Type {
	c := t
	for c != nil && c.Kind == KindArray {
		c = c.Elem
	}
	return c
}

// Substitute replaces type variables according to bindings
func (t *Type) Substitute(bindings map[string]*Type) *Type {
	if t == nil || len(bindings) == 0 {
		return t
	}
	switch t.Kind {
	case KindTypeVar:
		if b, ok := bindings[t.Name]; ok && b != nil {
			return b
		}
		return t
	case KindArray:
		return &Type{Kind: KindArray, Elem: t.Elem.Substitute(bindings)}
	case KindWildcard:
		if t.Bound == nil {
			return t
		}
		return Wildcard(t.BoundKind, t.Bound.Substitute(bindings))
	case KindClass:
		if len(t.Args) == 0 {
			return t
		}
		args := make([]*Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = a.Substitute(bindings)
		}
		return Class(t.Name, args...)
	}
	return t
}

// SimpleName returns the last dotted segment of a qualified name
func SimpleName(qualified string) string {
	if i := strings.LastIndexByte(qualified, '.'); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}

// PackageOf returns the dotted prefix of a qualified name
func PackageOf(qualified string) string {
	if i := strings.LastIndexByte(qualified, '.'); i >= 0 {
		return qualified[:i]
	}
	return ""
}
