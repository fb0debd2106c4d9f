package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/jointc/internal/types"
)

func TestLineIndex(t *testing.T) {
	li := NewLineIndex("package p\r\nclass C {\n}\n")

	assert.Equal(t, Position{Line: 1, Column: 1}, li.Position(0))
	assert.Equal(t, Position{Line: 2, Column: 7}, li.Position(17))
	assert.Equal(t, "package p", li.LineText(1))
	assert.Equal(t, "class C {", li.LineText(2))
	assert.Equal(t, "}", li.LineText(3))
	assert.Equal(t, "", li.LineText(9))
	assert.Equal(t, 11, li.LineStart(2))
	assert.Equal(t, 4, li.LineCount())
}

func TestImportString(t *testing.T) {
	tests := []struct {
		imp       Import
		str, name string
	}{
		{Import{Static: true, Name: "a.B.FOO"}, "a.B.FOO", "FOO"},
		{Import{Static: true, Star: true, Name: "a.B"}, "a.B.*", ""},
		{Import{Static: true, Name: "a.B.FOO", Alias: "Wibble"}, "a.B.FOO as Wibble", "Wibble"},
		{Import{Name: "q.A", Alias: "AA"}, "q.A as AA", "AA"},
		{Import{Star: true, Name: "java.util"}, "java.util.*", ""},
	}
	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			assert.Equal(t, tt.str, tt.imp.String())
			assert.Equal(t, tt.name, tt.imp.SimpleName())
		})
	}

	imp := Import{Static: true, Name: "a.B.FOO"}
	assert.Equal(t, "a.B", imp.Owner())
	assert.Equal(t, "FOO", imp.MemberName())
}

func TestModifiers(t *testing.T) {
	m := ModPrivate | ModStatic | ModFinal
	assert.Equal(t, "private static final", m.String())
	assert.True(t, m.Has(ModStatic|ModFinal))
	assert.Equal(t, ModPublic|ModStatic|ModFinal, m.WithVisibility(ModPublic))
	assert.True(t, m.WithVisibility(0).IsPackagePrivate())

	mod, ok := ParseModifier("volatile")
	require.True(t, ok)
	assert.Equal(t, ModVolatile, mod)
	_, ok = ParseModifier("def")
	assert.False(t, ok)
}

func TestDeclarationMembers(t *testing.T) {
	unit := NewCompilationUnit("p/C.groovy", "", LanguageGroovy)
	c := &Declaration{Kind: KindClass, Name: "C", QualifiedName: "p.C", Unit: unit}
	f := NewField("x", ModPrivate, ResolvedRef(types.Int), nil)
	m := NewMethod("getX", ModPublic, ResolvedRef(types.Int), nil, Stmts(Ret(NewIdent("x"))))
	c.AddMember(f)
	c.AddMember(m)
	ctor := NewConstructor(c, ModPublic, nil, Stmts())
	c.InsertMember(0, ctor)

	require.Len(t, c.Members, 3)
	assert.Same(t, ctor, c.Members[0])
	assert.Equal(t, "p.C.x", f.QualifiedName)
	assert.Same(t, c, m.Owner)
	assert.Same(t, unit, m.Unit)
	assert.Same(t, f, c.Field("x"))
	assert.Len(t, c.MethodsNamed("getX"), 1)
	assert.Equal(t, "p", m.Package())
	assert.Equal(t, "getX()", m.Signature())

	c.RemoveMember(f)
	assert.Nil(t, c.Field("x"))
}

func TestInspectAndRewrite(t *testing.T) {
	body := Stmts(
		Eval(CallOn(NewThis(), "foo", NewIdent("a"))),
		Ret(Select(NewThis(), "bar")),
	)

	var idents []string
	Inspect(body, func(n Node) bool {
		if id, ok := n.(*Ident); ok {
			idents = append(idents, id.Name)
		}
		return true
	})
	assert.Equal(t, []string{"a"}, idents)

	RewriteBlock(body, func(e Expr) Expr {
		if _, ok := e.(*This); ok {
			return NewIdent("self")
		}
		return e
	})
	call := body.Stmts[0].(*ExprStmt).X.(*Call)
	assert.Equal(t, "self", call.X.(*Ident).Name)
	ret := body.Stmts[1].(*Return).X.(*FieldAccess)
	assert.Equal(t, "self.bar", QualifiedName(ret))
}

func TestTypeRefRendering(t *testing.T) {
	ref := ResolvedRef(types.Class("java.util.Map", types.String, types.Wildcard(types.ExtendsBound, types.Class(types.NumberName))))
	assert.Equal(t, "java.util.Map<java.lang.String, ? extends java.lang.Number>", ref.String())

	arr := ResolvedRef(types.ArrayOf(types.Int, 2))
	assert.Equal(t, "int[][]", arr.String())
	assert.True(t, (*TypeRef)(nil).IsDynamic())
	assert.Equal(t, types.Object, (*TypeRef)(nil).Type())
}
