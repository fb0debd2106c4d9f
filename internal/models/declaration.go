package models

import (
	"strings"

	"github.com/toyz/jointc/internal/types"
)

// DeclKind identifies what a Declaration declares
type DeclKind uint8

const (
	KindClass DeclKind = iota + 1
	KindInterface
	KindEnum
	KindAnnotation
	KindField
	KindMethod
	KindConstructor
	KindInitializer
)

// String returns the source keyword of the kind
func (k DeclKind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	case KindAnnotation:
		return "@interface"
	case KindField:
		return "field"
	case KindMethod:
		return "method"
	case KindConstructor:
		return "constructor"
	case KindInitializer:
		return "initializer"
	default:
		return "unknown"
	}
}

// IsType reports whether the kind declares a type
func (k DeclKind) IsType() bool {
	return k == KindClass || k == KindInterface || k == KindEnum || k == KindAnnotation
}

// Origin records which producer created a declaration
type Origin uint8

const (
	OriginGroovy Origin = iota + 1
	OriginJava
	OriginLibrary
	OriginGenerated
)

// String returns the origin name
func (o Origin) String() string {
	switch o {
	case OriginGroovy:
		return "groovy"
	case OriginJava:
		return "java"
	case OriginLibrary:
		return "library"
	case OriginGenerated:
		return "generated"
	default:
		return "unknown"
	}
}

// Declaration is a class, interface, enum, annotation type, field, method,
// constructor or initializer. Type declarations own their members; the
// symbol table only references them.
type Declaration struct {
	Kind          DeclKind
	Name          string
	QualifiedName string
	Modifiers     Modifiers
	// ExplicitVisibility is set when the source spelled a visibility keyword
	ExplicitVisibility bool
	// Property marks a dynamic-language field declared without visibility
	Property    bool
	Annotations []*Annotation
	Span        Span
	NameSpan    Span
	BodySpan    Span
	Owner       *Declaration
	Unit        *CompilationUnit
	Origin      Origin
	Members     []*Declaration

	// type declarations
	TypeParams []*TypeParam
	Super      *TypeRef
	Interfaces []*TypeRef
	Constants  []*EnumConstant
	// Anonymous marks the body class of an enum constant or of a new expression
	Anonymous bool
	// BinaryName is the JVM-style name with $ separators for nested classes
	BinaryName string

	// fields
	Type *TypeRef
	Init Expr

	// methods and constructors
	Params []*Param
	Return *TypeRef
	Throws []*TypeRef
	Body   *Block

	// Generated marks members added by a transform or lowering
	Generated bool
	// Synthetic marks compiler-internal members hidden from declaration dumps
	Synthetic bool
	// Script marks the class synthesized for top-level script statements
	Script bool
	// Deprecated marks library members flagged as deprecated
	Deprecated bool
}

// IsType reports whether the declaration declares a type
func (d *Declaration) IsType() bool { return d.Kind.IsType() }

// IsStatic reports the static modifier
func (d *Declaration) IsStatic() bool { return d.Modifiers.Has(ModStatic) }

// IsAbstract reports the abstract modifier
func (d *Declaration) IsAbstract() bool { return d.Modifiers.Has(ModAbstract) }

// IsInterface reports whether the declaration is an interface or annotation type
func (d *Declaration) IsInterface() bool {
	return d.Kind == KindInterface || d.Kind == KindAnnotation
}

// Descriptor returns the class descriptor of a type declaration, parameterized
// by its own type variables
func (d *Declaration) Descriptor() *types.Type {
	args := make([]*types.Type, len(d.TypeParams))
	for i, tp := range d.TypeParams {
		args[i] = tp.Descriptor()
	}
	return types.Class(d.QualifiedName, args...)
}

// RawDescriptor returns the class descriptor without type arguments
func (d *Declaration) RawDescriptor() *types.Type {
	return types.Class(d.QualifiedName)
}

// TopLevel returns the outermost enclosing type
func (d *Declaration) TopLevel() *Declaration {
	cur := d
	for cur.Owner != nil {
		cur = cur.Owner
	}
	return cur
}

// EnclosingType returns the type a member belongs to, or d for types
func (d *Declaration) EnclosingType() *Declaration {
	if d.IsType() {
		return d
	}
	return d.Owner
}

// Package returns the package of the declaration
func (d *Declaration) Package() string {
	top := d.TopLevel()
	return types.PackageOf(top.QualifiedName)
}

// Fields returns the field members in declaration order
func (d *Declaration) Fields() []*Declaration { return d.membersOf(KindField) }

// Methods returns the method members in declaration order
func (d *Declaration) Methods() []*Declaration { return d.membersOf(KindMethod) }

// Constructors returns the constructors in declaration order
func (d *Declaration) Constructors() []*Declaration { return d.membersOf(KindConstructor) }

func (d *Declaration) membersOf(kind DeclKind) []*Declaration {
	var out []*Declaration
	for _, m := range d.Members {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

// Field returns the field named name
func (d *Declaration) Field(name string) *Declaration {
	for _, m := range d.Members {
		if m.Kind == KindField && m.Name == name {
			return m
		}
	}
	return nil
}

// MethodsNamed returns the methods with the given name
func (d *Declaration) MethodsNamed(name string) []*Declaration {
	var out []*Declaration
	for _, m := range d.Members {
		if m.Kind == KindMethod && m.Name == name {
			out = append(out, m)
		}
	}
	return out
}

// NestedType returns the member type with the given simple name
func (d *Declaration) NestedType(name string) *Declaration {
	for _, m := range d.Members {
		if m.IsType() && m.Name == name {
			return m
		}
	}
	return nil
}

// Constant returns the enum constant with the given name
func (d *Declaration) Constant(name string) *EnumConstant {
	for _, c := range d.Constants {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// AddMember appends a member and adopts it
func (d *Declaration) AddMember(m *Declaration) {
	m.Owner = d
	if m.Unit == nil {
		m.Unit = d.Unit
	}
	if m.QualifiedName == "" {
		m.QualifiedName = d.QualifiedName + "." + m.Name
	}
	d.Members = append(d.Members, m)
}

// InsertMember inserts a member at index i and adopts it
func (d *Declaration) InsertMember(i int, m *Declaration) {
	d.AddMember(m)
	copy(d.Members[i+1:], d.Members[i:len(d.Members)-1])
	d.Members[i] = m
}

// RemoveMember drops m from the member list
func (d *Declaration) RemoveMember(m *Declaration) {
	for i, cur := range d.Members {
		if cur == m {
			d.Members = append(d.Members[:i], d.Members[i+1:]...)
			return
		}
	}
}

// ParamTypes returns the erased parameter descriptors of a method
func (d *Declaration) ParamTypes() []*types.Type {
	out := make([]*types.Type, len(d.Params))
	for i, p := range d.Params {
		out[i] = p.Descriptor()
	}
	return out
}

// ReturnType returns the resolved return type; constructors yield void
func (d *Declaration) ReturnType() *types.Type {
	if d.Kind == KindConstructor {
		return types.Void
	}
	if d.Return == nil {
		return types.Object
	}
	return d.Return.Type()
}

// IsVarargs reports whether the last parameter is variadic
func (d *Declaration) IsVarargs() bool {
	return len(d.Params) > 0 && d.Params[len(d.Params)-1].Varargs
}

// Signature renders name and erased parameter types, used to compare methods
func (d *Declaration) Signature() string {
	var sb strings.Builder
	sb.WriteString(d.Name)
	sb.WriteByte('(')
	for i, p := range d.Params {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(p.Descriptor().Erasure().Key())
	}
	sb.WriteByte(')')
	return sb.String()
}

// Param is a method, constructor or closure parameter
type Param struct {
	Name        string
	Type        *TypeRef
	Default     Expr
	Varargs     bool
	Final       bool
	Annotations []*Annotation
	Span        Span
	NameSpan    Span
}

// Descriptor returns the parameter type as seen by callers; varargs are arrays
func (p *Param) Descriptor() *types.Type {
	t := p.Type.Type()
	if p.Varargs {
		return types.ArrayOf(t, 1)
	}
	return t
}

// Clone copies the parameter; the default value expression is shared
func (p *Param) Clone() *Param {
	c := *p
	c.Type = p.Type.Clone()
	c.Annotations = append([]*Annotation(nil), p.Annotations...)
	return &c
}

// EnumConstant is one entry of an enum constant list
type EnumConstant struct {
	Name        string
	Ordinal     int
	Args        []Expr
	Named       []*MapEntry
	Body        *Declaration
	Annotations []*Annotation
	Span        Span
	NameSpan    Span

	// Constructor is the constructor selected by enum lowering
	Constructor *Declaration
	// Field is the constant-holder field produced by enum lowering
	Field *Declaration
}
