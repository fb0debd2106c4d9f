package models

import (
	"strconv"

	"github.com/toyz/jointc/internal/types"
)

// Helpers for building synthesized code. Synthesized nodes carry NoSpan
// unless a caller attributes them to source text.

// NewIdent builds a name reference
func NewIdent(name string) *Ident { return &Ident{Name: name, Span: NoSpan} }

// NewThis builds the this keyword
func NewThis() *This { return &This{Span: NoSpan} }

// StringLit builds a string literal
func StringLit(s string) *Literal { return &Literal{Kind: LitString, Value: s, Span: NoSpan} }

// IntLit builds an int literal
func IntLit(n int) *Literal { return &Literal{Kind: LitInt, Value: strconv.Itoa(n), Span: NoSpan} }

// NullLit builds the null literal
func NullLit() *Literal { return &Literal{Kind: LitNull, Value: "null", Span: NoSpan} }

// BoolLit builds a boolean literal
func BoolLit(b bool) *Literal {
	return &Literal{Kind: LitBool, Value: strconv.FormatBool(b), Span: NoSpan}
}

// Select builds x.name
func Select(x Expr, name string) *FieldAccess {
	return &FieldAccess{X: x, Name: name, Span: NoSpan, NameSpan: NoSpan}
}

// CallOn builds x.name(args...); a nil receiver calls on the implicit this
func CallOn(x Expr, name string, args ...Expr) *Call {
	return &Call{X: x, Name: name, Args: args, Span: NoSpan, NameSpan: NoSpan}
}

// NewOf builds new T(args...)
func NewOf(t *TypeRef, args ...Expr) *New {
	return &New{Type: t, Args: args, Span: NoSpan}
}

// AssignTo builds target = value
func AssignTo(target, value Expr) *Assign {
	return &Assign{Op: "=", Target: target, Value: value, Span: NoSpan}
}

// Compare builds x op y
func Compare(op string, x, y Expr) *Binary {
	return &Binary{Op: op, X: x, Y: y, Span: NoSpan, OpSpan: NoSpan}
}

// ClassOf builds T.class
func ClassOf(t *TypeRef) *ClassLit { return &ClassLit{Type: t, Span: NoSpan} }

// Stmts builds a block
func Stmts(list ...Stmt) *Block { return &Block{Stmts: list, Span: NoSpan} }

// Eval wraps an expression as a statement
func Eval(e Expr) *ExprStmt { return &ExprStmt{X: e, Span: NoSpan} }

// Ret builds a return statement
func Ret(e Expr) *Return { return &Return{X: e, Span: NoSpan} }

// IfThen builds if (cond) then
func IfThen(cond Expr, then Stmt) *If { return &If{Cond: cond, Then: then, Span: NoSpan} }

// NewParam builds a parameter
func NewParam(name string, t *TypeRef) *Param {
	return &Param{Name: name, Type: t, Span: NoSpan, NameSpan: NoSpan}
}

// NewMethod builds a generated method declaration
func NewMethod(name string, mods Modifiers, ret *TypeRef, params []*Param, body *Block) *Declaration {
	return &Declaration{
		Kind:               KindMethod,
		Name:               name,
		Modifiers:          mods,
		ExplicitVisibility: true,
		Return:             ret,
		Params:             params,
		Body:               body,
		Origin:             OriginGenerated,
		Generated:          true,
		Span:               NoSpan,
		NameSpan:           NoSpan,
		BodySpan:           NoSpan,
	}
}

// NewConstructor builds a generated constructor declaration
func NewConstructor(owner *Declaration, mods Modifiers, params []*Param, body *Block) *Declaration {
	return &Declaration{
		Kind:               KindConstructor,
		Name:               owner.Name,
		Modifiers:          mods,
		ExplicitVisibility: true,
		Params:             params,
		Body:               body,
		Origin:             OriginGenerated,
		Generated:          true,
		Span:               NoSpan,
		NameSpan:           NoSpan,
		BodySpan:           NoSpan,
	}
}

// NewField builds a generated field declaration
func NewField(name string, mods Modifiers, t *TypeRef, init Expr) *Declaration {
	return &Declaration{
		Kind:               KindField,
		Name:               name,
		Modifiers:          mods,
		ExplicitVisibility: true,
		Type:               t,
		Init:               init,
		Origin:             OriginGenerated,
		Generated:          true,
		Span:               NoSpan,
		NameSpan:           NoSpan,
		BodySpan:           NoSpan,
	}
}

// RefTo builds a resolved reference to a type declaration
func RefTo(d *Declaration) *TypeRef {
	ref := ResolvedRef(types.Class(d.QualifiedName))
	ref.Decl = d
	return ref
}
