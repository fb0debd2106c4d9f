package models

import "github.com/toyz/jointc/internal/types"

// Annotation is a marker attached to a declaration, a parameter or an enum
// constant. Arguments keep source order; the single-value form is stored
// under the name "value".
type Annotation struct {
	Name          string // as written
	QualifiedName string // set once the annotation type is resolved
	Args          []*AnnotationArg
	Span          Span
	NameSpan      Span

	// Decl is the resolved annotation type
	Decl *Declaration
	// ExpandedFrom names the collector this annotation was produced by
	ExpandedFrom string
}

// AnnotationArg is one name=value pair
type AnnotationArg struct {
	Name  string
	Value Expr
	Span  Span
}

// Arg returns the value of a named argument
func (a *Annotation) Arg(name string) (Expr, bool) {
	for _, arg := range a.Args {
		if arg.Name == name {
			return arg.Value, true
		}
	}
	return nil, false
}

// SetArg replaces or appends a named argument
func (a *Annotation) SetArg(name string, value Expr) {
	for _, arg := range a.Args {
		if arg.Name == name {
			arg.Value = value
			return
		}
	}
	a.Args = append(a.Args, &AnnotationArg{Name: name, Value: value, Span: NoSpan})
}

// Is reports whether the annotation resolved to the given type
func (a *Annotation) Is(qualified string) bool {
	return a.QualifiedName == qualified
}

// SimpleName returns the unqualified annotation name
func (a *Annotation) SimpleName() string {
	if a.QualifiedName != "" {
		return types.SimpleName(a.QualifiedName)
	}
	return types.SimpleName(a.Name)
}

// Clone copies the annotation; argument expressions are shared
func (a *Annotation) Clone() *Annotation {
	c := *a
	c.Args = make([]*AnnotationArg, len(a.Args))
	for i, arg := range a.Args {
		cp := *arg
		c.Args[i] = &cp
	}
	return &c
}

// FindAnnotation returns the first annotation resolved to qualified
func FindAnnotation(list []*Annotation, qualified string) *Annotation {
	for _, a := range list {
		if a.Is(qualified) {
			return a
		}
	}
	return nil
}
