package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/jointc/internal/models"
)

// parseExpr parses src as the only statement of a script and returns its
// expression, or the initializer of a declaration
func parseExpr(t *testing.T, src string) models.Expr {
	t.Helper()
	unit := parseGroovy(t, "Script.groovy", src)
	require.Len(t, unit.Types, 1)
	stmts := unit.Types[0].Body.Stmts
	require.Len(t, stmts, 1)
	switch s := stmts[0].(type) {
	case *models.ExprStmt:
		return s.X
	case *models.VarDecl:
		return s.Init
	}
	t.Fatalf("unexpected statement %T", stmts[0])
	return nil
}

func TestGroovyExpr_Precedence(t *testing.T) {
	x := parseExpr(t, "1 + 2 * 3")
	add := x.(*models.Binary)
	assert.Equal(t, "+", add.Op)
	assert.Equal(t, "*", add.Y.(*models.Binary).Op)

	x = parseExpr(t, "a == b && c != d")
	and := x.(*models.Binary)
	assert.Equal(t, "&&", and.Op)
	assert.Equal(t, "==", and.X.(*models.Binary).Op)
	assert.Equal(t, "!=", and.Y.(*models.Binary).Op)

	x = parseExpr(t, "-2 ** 2")
	neg := x.(*models.Unary)
	assert.Equal(t, "-", neg.Op)
	assert.Equal(t, "**", neg.X.(*models.Binary).Op)

	x = parseExpr(t, "x = y += 1")
	outer := x.(*models.Assign)
	assert.Equal(t, "=", outer.Op)
	assert.Equal(t, "+=", outer.Value.(*models.Assign).Op)
}

func TestGroovyExpr_BinaryOperators(t *testing.T) {
	tests := []struct {
		src string
		op  string
	}{
		{"a >> 2", ">>"},
		{"a >>> 2", ">>>"},
		{"a << 2", "<<"},
		{"a <=> b", "<=>"},
		{"a =~ b", "=~"},
		{"a in b", "in"},
		{"1..5", ".."},
		{"1..<5", "..<"},
		{"a % b", "%"},
		{"a ^ b", "^"},
		{"a || b", "||"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			b, ok := parseExpr(t, tt.src).(*models.Binary)
			require.True(t, ok)
			assert.Equal(t, tt.op, b.Op)
		})
	}
}

func TestGroovyExpr_Ternary(t *testing.T) {
	elvis := parseExpr(t, "a ?: b").(*models.Ternary)
	assert.Nil(t, elvis.Then)
	assert.Equal(t, "b", elvis.Else.(*models.Ident).Name)

	full := parseExpr(t, "a ? 1 : 2").(*models.Ternary)
	assert.NotNil(t, full.Then)
	assert.NotNil(t, full.Else)
}

func TestGroovyExpr_MemberAccess(t *testing.T) {
	safe := parseExpr(t, "x?.y").(*models.FieldAccess)
	assert.True(t, safe.Safe)
	assert.Equal(t, "y", safe.Name)

	spread := parseExpr(t, "list*.name").(*models.FieldAccess)
	assert.True(t, spread.Spread)

	ptr := parseExpr(t, "x.&foo").(*models.MethodPointer)
	assert.Equal(t, "foo", ptr.Name)

	lit := parseExpr(t, "java.lang.String.class").(*models.ClassLit)
	assert.Equal(t, "java.lang.String", lit.Type.Name)

	prim := parseExpr(t, "int.class").(*models.ClassLit)
	assert.Equal(t, "int", prim.Type.Name)

	idx := parseExpr(t, "a[0]").(*models.Index)
	assert.Equal(t, "a", idx.X.(*models.Ident).Name)

	inc := parseExpr(t, "i++").(*models.Unary)
	assert.True(t, inc.Postfix)
}

func TestGroovyExpr_Calls(t *testing.T) {
	call := parseExpr(t, "foo(1, x: 2) { it }").(*models.Call)
	assert.Equal(t, "foo", call.Name)
	assert.Nil(t, call.X)
	require.Len(t, call.Args, 2)
	assert.IsType(t, &models.Closure{}, call.Args[1])
	require.Len(t, call.Named, 1)
	assert.Equal(t, "x", call.Named[0].KeyName())

	method := parseExpr(t, "a.b.c(1)").(*models.Call)
	assert.Equal(t, "c", method.Name)
	assert.Equal(t, "a.b", models.QualifiedName(method.X))

	safe := parseExpr(t, "a?.b()").(*models.Call)
	assert.True(t, safe.Safe)

	each := parseExpr(t, "list.each { println it }").(*models.Call)
	assert.Equal(t, "each", each.Name)
	require.Len(t, each.Args, 1)
	cl := each.Args[0].(*models.Closure)
	assert.True(t, cl.ImplicitIt)

	cmd := parseExpr(t, "println 'a', 'b'").(*models.Call)
	assert.True(t, cmd.Command)
	assert.Len(t, cmd.Args, 2)
}

func TestGroovyExpr_Closures(t *testing.T) {
	implicit := parseExpr(t, "def c = { it * 2 }").(*models.Closure)
	assert.True(t, implicit.ImplicitIt)
	assert.Empty(t, implicit.Params)
	require.Len(t, implicit.Body.Stmts, 1)

	explicit := parseExpr(t, "def c = { a, int b -> a + b }").(*models.Closure)
	assert.False(t, explicit.ImplicitIt)
	require.Len(t, explicit.Params, 2)
	assert.Equal(t, "int", explicit.Params[1].Type.Name)

	none := parseExpr(t, "def c = { -> 1 }").(*models.Closure)
	assert.False(t, none.ImplicitIt)
	assert.Empty(t, none.Params)
}

func TestGroovyExpr_Collections(t *testing.T) {
	m := parseExpr(t, "[a: 1, 'b': 2, (k): 3]").(*models.MapLit)
	require.Len(t, m.Entries, 3)
	assert.Equal(t, "a", m.Entries[0].KeyName())
	assert.Equal(t, "b", m.Entries[1].KeyName())
	assert.Equal(t, "k", m.Entries[2].Key.(*models.Ident).Name)

	empty := parseExpr(t, "[:]").(*models.MapLit)
	assert.Empty(t, empty.Entries)

	list := parseExpr(t, "[1, 2, 3]").(*models.ListLit)
	assert.Len(t, list.Elems, 3)

	assert.Empty(t, parseExpr(t, "[]").(*models.ListLit).Elems)
}

func TestGroovyExpr_Creation(t *testing.T) {
	obj := parseExpr(t, "new Foo(1, name: 'x')").(*models.New)
	assert.Equal(t, "Foo", obj.Type.Name)
	assert.Len(t, obj.Args, 1)
	assert.Len(t, obj.Named, 1)
	assert.Nil(t, obj.Body)

	arr := parseExpr(t, "new int[3]").(*models.New)
	assert.Equal(t, 1, arr.Type.Dims)
	assert.Len(t, arr.Dims, 1)

	init := parseExpr(t, "new String[] {'a', 'b'}").(*models.New)
	require.NotNil(t, init.Init)
	assert.Len(t, init.Init.Elems, 2)

	anon := parseExpr(t, "new Runnable() { void run() {} }").(*models.New)
	require.NotNil(t, anon.Body)
	assert.True(t, anon.Body.Anonymous)
	assert.Len(t, anon.Body.Methods(), 1)
}

func TestGroovyExpr_TypeTests(t *testing.T) {
	cast := parseExpr(t, "(int) x").(*models.Cast)
	assert.Equal(t, "int", cast.Type.Name)
	assert.False(t, cast.Coerce)

	as := parseExpr(t, "x as List").(*models.Cast)
	assert.True(t, as.Coerce)

	inst := parseExpr(t, "x instanceof String").(*models.InstanceOf)
	assert.False(t, inst.Negated)

	neg := parseExpr(t, "x !instanceof String").(*models.InstanceOf)
	assert.True(t, neg.Negated)

	paren := parseExpr(t, "(a) + 1").(*models.Binary)
	assert.Equal(t, "a", paren.X.(*models.Ident).Name)
}

func TestGroovyExpr_Numbers(t *testing.T) {
	tests := []struct {
		src   string
		kind  models.LiteralKind
		value string
	}{
		{"1", models.LitInt, "1"},
		{"1_000", models.LitInt, "1000"},
		{"1L", models.LitLong, "1"},
		{"2147483648", models.LitLong, "2147483648"},
		{"99999999999999999999", models.LitBigInteger, "99999999999999999999"},
		{"1g", models.LitBigInteger, "1"},
		{"0x10", models.LitInt, "16"},
		{"1.5", models.LitBigDecimal, "1.5"},
		{"1.5f", models.LitFloat, "1.5"},
		{"1e3d", models.LitDouble, "1e3"},
		{"2d", models.LitDouble, "2"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			lit, ok := parseExpr(t, tt.src).(*models.Literal)
			require.True(t, ok)
			assert.Equal(t, tt.kind, lit.Kind)
			assert.Equal(t, tt.value, lit.Value)
		})
	}
}

func TestGroovyExpr_Strings(t *testing.T) {
	tests := []struct {
		src   string
		value string
	}{
		{`'plain'`, "plain"},
		{`"no placeholders"`, "no placeholders"},
		{`'tab\there'`, "tab\there"},
		{`"escaped \$x"`, "escaped $x"},
		{`'A'`, "A"},
		{`'''multi
line'''`, "multi\nline"},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			lit, ok := parseExpr(t, tt.src).(*models.Literal)
			require.True(t, ok)
			assert.Equal(t, models.LitString, lit.Kind)
			assert.Equal(t, tt.value, lit.Value)
		})
	}
}

func TestGroovyExpr_GString(t *testing.T) {
	gs := parseExpr(t, `"a${1 + 2}b$c.d!"`).(*models.GString)
	assert.Equal(t, []string{"a", "b", "!"}, gs.Strings)
	require.Len(t, gs.Values, 2)
	assert.Equal(t, "+", gs.Values[0].(*models.Binary).Op)

	path := gs.Values[1].(*models.FieldAccess)
	assert.Equal(t, "d", path.Name)
	assert.Equal(t, "c", path.X.(*models.Ident).Name)

	src := `"a${1 + 2}b"`
	x := parseExpr(t, src).(*models.GString).Values[0]
	assert.Equal(t, "1 + 2", src[x.NodeSpan().Start:x.NodeSpan().End])

	empty := parseExpr(t, `"${}"`).(*models.GString)
	assert.Equal(t, models.LitNull, empty.Values[0].(*models.Literal).Kind)
}
