package models

import "github.com/toyz/jointc/internal/types"

// Node is any statement or expression
type Node interface {
	NodeSpan() Span
}

// Expr is an expression node
type Expr interface {
	Node
	exprNode()
}

// LiteralKind classifies literals
type LiteralKind uint8

const (
	LitInt LiteralKind = iota + 1
	LitLong
	LitBigInteger
	LitDouble
	LitFloat
	LitBigDecimal
	LitString
	LitChar
	LitBool
	LitNull
)

// BindingKind classifies what a name reference resolved to
type BindingKind uint8

const (
	BindUnresolved BindingKind = iota
	BindLocal
	BindField
	BindProperty
	BindEnumConstant
	BindType
	BindPackage
	BindDynamic
)

// Binding is the result of resolving a name in a body
type Binding struct {
	Kind BindingKind
	// Decl is the field, property field or type the name refers to
	Decl *Declaration
	// Owner is the type declaring the member
	Owner    *Declaration
	Constant *EnumConstant
	Local    *Variable
	// Type is the declared type of the target, or the class for BindType
	Type    *types.Type
	Static  bool
	Package string
	// ViaImport names the static import the binding came through
	ViaImport *Import
}

// Variable is a local variable or parameter known to the resolver
type Variable struct {
	Name     string
	Declared *TypeRef
	Span     Span
	Param    bool
	Final    bool
}

// Literal is a constant literal; Value holds the decoded text
type Literal struct {
	Kind  LiteralKind
	Value string
	Span  Span
}

// Type returns the descriptor of the literal's value
func (e *Literal) Type() *types.Type {
	switch e.Kind {
	case LitInt:
		return types.Int
	case LitLong:
		return types.Long
	case LitBigInteger:
		return types.BigInteger
	case LitDouble:
		return types.Double
	case LitFloat:
		return types.Float
	case LitBigDecimal:
		return types.BigDecimal
	case LitString:
		return types.String
	case LitChar:
		return types.Char
	case LitBool:
		return types.Boolean
	case LitNull:
		return types.Null
	}
	return nil
}

// GString is an interpolated string: Strings has one more element than Values
type GString struct {
	Strings []string
	Values  []Expr
	Span    Span
}

// Ident is a bare name
type Ident struct {
	Name    string
	Span    Span
	Binding *Binding
}

// FieldAccess is x.name, x?.name or x*.name
type FieldAccess struct {
	X        Expr
	Name     string
	Safe     bool
	Spread   bool
	Span     Span
	NameSpan Span
	Binding  *Binding
}

// MethodPointer is x.&name
type MethodPointer struct {
	X    Expr
	Name string
	Span Span
}

// MapEntry is a key/value pair of a map literal or a named argument
type MapEntry struct {
	Key   Expr
	Value Expr
	Span  Span
}

// KeyName returns the key text for identifier or string keys
func (e *MapEntry) KeyName() string {
	switch k := e.Key.(type) {
	case *Literal:
		return k.Value
	case *Ident:
		return k.Name
	}
	return ""
}

// Call is a method call; X is nil for calls on the implicit receiver
type Call struct {
	X        Expr
	Name     string
	Args     []Expr
	Named    []*MapEntry
	Safe     bool
	Spread   bool
	Command  bool
	Span     Span
	NameSpan Span

	// Target is the method selected by the static checker
	Target *Declaration
	// Static is set when X names a class
	Static bool
}

// New is an object or array creation
type New struct {
	Type  *TypeRef
	Args  []Expr
	Named []*MapEntry
	// Body is the anonymous class declared by the expression
	Body *Declaration
	// Dims holds array dimension expressions; Init an array initializer
	Dims []Expr
	Init *ListLit
	Span Span
}

// Binary is a binary operation
type Binary struct {
	Op     string
	X, Y   Expr
	Span   Span
	OpSpan Span
}

// Unary is a prefix or postfix operation
type Unary struct {
	Op      string
	X       Expr
	Postfix bool
	Span    Span
}

// Assign is an assignment, possibly compound
type Assign struct {
	Op     string
	Target Expr
	Value  Expr
	Span   Span
}

// Ternary is c ? a : b; Then is nil for the elvis form c ?: b
type Ternary struct {
	Cond, Then, Else Expr
	Span             Span
}

// Cast is (T) x, or x as T when Coerce is set
type Cast struct {
	Type   *TypeRef
	X      Expr
	Coerce bool
	Span   Span
}

// InstanceOf is x instanceof T (or !instanceof)
type InstanceOf struct {
	X       Expr
	Type    *TypeRef
	Negated bool
	Span    Span
}

// Index is x[i]
type Index struct {
	X, Index Expr
	Safe     bool
	Span     Span
}

// ListLit is [a, b, c]
type ListLit struct {
	Elems []Expr
	Span  Span
}

// MapLit is [k: v, ...] or [:]
type MapLit struct {
	Entries []*MapEntry
	Span    Span
}

// Closure is { params -> body }
type Closure struct {
	Params []*Param
	// ImplicitIt is set when the closure declares no parameter list
	ImplicitIt bool
	Body       *Block
	Span       Span
}

// ClassLit is T.class
type ClassLit struct {
	Type *TypeRef
	Span Span
}

// This is the this keyword
type This struct{ Span Span }

// Super is the super keyword
type Super struct{ Span Span }

// AnnotationValue is an annotation used as an annotation argument
type AnnotationValue struct {
	Annotation *Annotation
	Span       Span
}

// Opaque is source text kept uninterpreted
type Opaque struct {
	Text string
	Span Span
}

func (e *Literal) NodeSpan() Span         { return e.Span }
func (e *GString) NodeSpan() Span         { return e.Span }
func (e *Ident) NodeSpan() Span           { return e.Span }
func (e *FieldAccess) NodeSpan() Span     { return e.Span }
func (e *MethodPointer) NodeSpan() Span   { return e.Span }
func (e *Call) NodeSpan() Span            { return e.Span }
func (e *New) NodeSpan() Span             { return e.Span }
func (e *Binary) NodeSpan() Span          { return e.Span }
func (e *Unary) NodeSpan() Span           { return e.Span }
func (e *Assign) NodeSpan() Span          { return e.Span }
func (e *Ternary) NodeSpan() Span         { return e.Span }
func (e *Cast) NodeSpan() Span            { return e.Span }
func (e *InstanceOf) NodeSpan() Span      { return e.Span }
func (e *Index) NodeSpan() Span           { return e.Span }
func (e *ListLit) NodeSpan() Span         { return e.Span }
func (e *MapLit) NodeSpan() Span          { return e.Span }
func (e *Closure) NodeSpan() Span         { return e.Span }
func (e *ClassLit) NodeSpan() Span        { return e.Span }
func (e *This) NodeSpan() Span            { return e.Span }
func (e *Super) NodeSpan() Span           { return e.Span }
func (e *AnnotationValue) NodeSpan() Span { return e.Span }
func (e *Opaque) NodeSpan() Span          { return e.Span }

func (*Literal) exprNode()         {}
func (*GString) exprNode()         {}
func (*Ident) exprNode()           {}
func (*FieldAccess) exprNode()     {}
func (*MethodPointer) exprNode()   {}
func (*Call) exprNode()            {}
func (*New) exprNode()             {}
func (*Binary) exprNode()          {}
func (*Unary) exprNode()           {}
func (*Assign) exprNode()          {}
func (*Ternary) exprNode()         {}
func (*Cast) exprNode()            {}
func (*InstanceOf) exprNode()      {}
func (*Index) exprNode()           {}
func (*ListLit) exprNode()         {}
func (*MapLit) exprNode()          {}
func (*Closure) exprNode()         {}
func (*ClassLit) exprNode()        {}
func (*This) exprNode()            {}
func (*Super) exprNode()           {}
func (*AnnotationValue) exprNode() {}
func (*Opaque) exprNode()          {}

// QualifiedName returns the dotted name of an Ident/FieldAccess chain, or ""
func QualifiedName(e Expr) string {
	switch x := e.(type) {
	case *Ident:
		return x.Name
	case *FieldAccess:
		if x.Safe || x.Spread {
			return ""
		}
		if prefix := QualifiedName(x.X); prefix != "" {
			return prefix + "." + x.Name
		}
	}
	return ""
}
