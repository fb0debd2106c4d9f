package parser

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/jointc/internal/errors"
	"github.com/toyz/jointc/internal/models"
)

func parseGroovy(t *testing.T, path, src string) *models.CompilationUnit {
	t.Helper()
	unit, err := NewGroovyFrontEnd().Parse(path, src)
	require.NoError(t, err)
	require.NotNil(t, unit)
	return unit
}

func problemsOf(t *testing.T, err error) *Problems {
	t.Helper()
	require.Error(t, err)
	var problems *Problems
	require.True(t, stderrors.As(err, &problems), "expected *Problems, got %T", err)
	return problems
}

func TestTokenize(t *testing.T) {
	toks, err := tokenize("t.groovy", "def x = 1 // trailing\n/* block */ println x")
	require.NoError(t, err)

	var texts []string
	for _, tok := range toks {
		texts = append(texts, tok.Text)
	}
	assert.Equal(t, []string{"def", "x", "=", "1", "println", "x", ""}, texts)

	assert.Equal(t, tokKeyword, toks[0].Kind)
	assert.Equal(t, tokIdent, toks[1].Kind)
	assert.Equal(t, tokOp, toks[2].Kind)
	assert.Equal(t, tokNumber, toks[3].Kind)
	assert.True(t, toks[4].NL, "println starts a new line")
	assert.False(t, toks[5].NL)
	assert.Equal(t, tokEOF, toks[6].Kind)
	assert.Equal(t, models.Span{Start: 4, End: 5}, toks[1].Span)
}

func TestTokenize_Operators(t *testing.T) {
	tests := []struct {
		src  string
		want []string
	}{
		{"a?.b", []string{"a", "?.", "b"}},
		{"a*.b", []string{"a", "*.", "b"}},
		{"a.&b", []string{"a", ".&", "b"}},
		{"a ?: b", []string{"a", "?:", "b"}},
		{"a <=> b", []string{"a", "<=>", "b"}},
		{"1..<5", []string{"1", "..<", "5"}},
		{"1..5", []string{"1", "..", "5"}},
		{"a >> b", []string{"a", ">", ">", "b"}},
		{"x **= 2", []string{"x", "**=", "2"}},
		{"f(String... a)", []string{"f", "(", "String", "...", "a", ")"}},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			toks, err := tokenize("t.groovy", tt.src)
			require.NoError(t, err)
			var texts []string
			for _, tok := range toks[:len(toks)-1] {
				texts = append(texts, tok.Text)
			}
			assert.Equal(t, tt.want, texts)
		})
	}
}

func TestGroovyFrontEnd_ClassDeclaration(t *testing.T) {
	src := `package p

import java.util.*
import static java.lang.Math.PI as Pie

@Deprecated
class Foo<T> extends Bar implements Baz, Qux {
    String name
    private int count = 0
    static final def LIMIT = 10, OTHER = 20

    Foo(String name) { this.name = name }

    def greet(String who = "world") { println "hello $who" }
}
`
	unit := parseGroovy(t, "src/p/Foo.groovy", src)

	assert.Equal(t, "p", unit.Package)
	require.Len(t, unit.Imports, 2)
	assert.True(t, unit.Imports[0].Star)
	assert.Equal(t, "java.util", unit.Imports[0].Name)
	assert.True(t, unit.Imports[1].Static)
	assert.Equal(t, "java.lang.Math.PI", unit.Imports[1].Name)
	assert.Equal(t, "Pie", unit.Imports[1].Alias)

	require.Len(t, unit.Types, 1)
	foo := unit.Types[0]
	assert.Equal(t, models.KindClass, foo.Kind)
	assert.Equal(t, "p.Foo", foo.QualifiedName)
	assert.Equal(t, "p/Foo", foo.BinaryName)
	assert.True(t, foo.Modifiers.Has(models.ModPublic))
	assert.False(t, foo.ExplicitVisibility)
	require.Len(t, foo.Annotations, 1)
	assert.Equal(t, "Deprecated", foo.Annotations[0].Name)
	require.Len(t, foo.TypeParams, 1)
	assert.Equal(t, "T", foo.TypeParams[0].Name)
	assert.Equal(t, "Bar", foo.Super.Name)
	require.Len(t, foo.Interfaces, 2)
	assert.Equal(t, "Qux", foo.Interfaces[1].Name)

	name := foo.Field("name")
	require.NotNil(t, name)
	assert.True(t, name.Property)
	assert.True(t, name.Modifiers.Has(models.ModPrivate))

	count := foo.Field("count")
	require.NotNil(t, count)
	assert.False(t, count.Property)
	assert.True(t, count.ExplicitVisibility)
	require.IsType(t, &models.Literal{}, count.Init)
	assert.Equal(t, models.LitInt, count.Init.(*models.Literal).Kind)

	for _, n := range []string{"LIMIT", "OTHER"} {
		f := foo.Field(n)
		require.NotNil(t, f, n)
		assert.True(t, f.Modifiers.Has(models.ModStatic|models.ModFinal), n)
		assert.Equal(t, models.DynamicTypeName, f.Type.Name, n)
	}

	ctors := foo.Constructors()
	require.Len(t, ctors, 1)
	assert.True(t, ctors[0].Modifiers.Has(models.ModPublic))
	require.Len(t, ctors[0].Params, 1)
	assert.Equal(t, "String", ctors[0].Params[0].Type.Name)
	require.Len(t, ctors[0].Body.Stmts, 1)
	assign := ctors[0].Body.Stmts[0].(*models.ExprStmt).X.(*models.Assign)
	assert.IsType(t, &models.FieldAccess{}, assign.Target)

	greet := foo.MethodsNamed("greet")
	require.Len(t, greet, 1)
	assert.Equal(t, models.DynamicTypeName, greet[0].Return.Name)
	require.Len(t, greet[0].Params, 1)
	require.NotNil(t, greet[0].Params[0].Default)
	assert.Equal(t, "world", greet[0].Params[0].Default.(*models.Literal).Value)

	call := greet[0].Body.Stmts[0].(*models.ExprStmt).X.(*models.Call)
	assert.True(t, call.Command)
	assert.Equal(t, "println", call.Name)
	require.Len(t, call.Args, 1)
	gs, ok := call.Args[0].(*models.GString)
	require.True(t, ok)
	assert.Equal(t, []string{"hello ", ""}, gs.Strings)
	assert.Equal(t, "who", gs.Values[0].(*models.Ident).Name)
}

func TestGroovyFrontEnd_InterfaceAndNested(t *testing.T) {
	src := `interface Shape {
    int SIDES = 0
    double area()
    class Impl {}
}
`
	unit := parseGroovy(t, "Shape.groovy", src)
	require.Len(t, unit.Types, 1)
	shape := unit.Types[0]
	assert.True(t, shape.IsInterface())

	sides := shape.Field("SIDES")
	require.NotNil(t, sides)
	assert.True(t, sides.Modifiers.Has(models.ModPublic|models.ModStatic|models.ModFinal))
	assert.False(t, sides.Property)

	area := shape.MethodsNamed("area")
	require.Len(t, area, 1)
	assert.True(t, area[0].Modifiers.Has(models.ModAbstract|models.ModPublic))
	assert.Nil(t, area[0].Body)

	impl := shape.NestedType("Impl")
	require.NotNil(t, impl)
	assert.True(t, impl.Modifiers.Has(models.ModStatic))
	assert.Equal(t, "Shape$Impl", impl.BinaryName)
	assert.Equal(t, "Shape.Impl", impl.QualifiedName)
}

func TestGroovyFrontEnd_Enum(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		names []string
	}{
		{"plain", "enum E { A, B, C }", []string{"A", "B", "C"}},
		{"trailing comma", "enum E { A, B, C, }", []string{"A", "B", "C"}},
		{"trailing semicolon", "enum E { A, B, C; }", []string{"A", "B", "C"}},
		{"comma and semicolon", "enum E { A, B, C,; }", []string{"A", "B", "C"}},
		{"empty", "enum E { }", nil},
		{"members after constants", "enum E {\n  A, B\n  int x\n}", []string{"A", "B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit := parseGroovy(t, "E.groovy", tt.src)
			require.Len(t, unit.Types, 1)
			e := unit.Types[0]
			assert.Equal(t, models.KindEnum, e.Kind)
			var names []string
			for i, c := range e.Constants {
				assert.Equal(t, i, c.Ordinal)
				names = append(names, c.Name)
			}
			assert.Equal(t, tt.names, names)
		})
	}
}

func TestGroovyFrontEnd_EnumConstantArgumentsAndBodies(t *testing.T) {
	src := `enum Color {
    RED, GREEN('g'),
    BLUE {
        String code() { 'b' }
    };
    Color() {}
    Color(String c) {}
    String code() { null }
}
`
	unit := parseGroovy(t, "Color.groovy", src)
	color := unit.Types[0]
	require.Len(t, color.Constants, 3)

	green := color.Constants[1]
	require.Len(t, green.Args, 1)
	assert.Equal(t, "g", green.Args[0].(*models.Literal).Value)

	blue := color.Constants[2]
	require.NotNil(t, blue.Body)
	assert.True(t, blue.Body.Anonymous)
	assert.Same(t, color, blue.Body.Owner)
	assert.Equal(t, "Color", blue.Body.Super.Name)
	assert.Empty(t, blue.Body.BinaryName)
	require.Len(t, blue.Body.Methods(), 1)

	assert.Len(t, color.Constructors(), 2)
	assert.Len(t, color.MethodsNamed("code"), 1)
}

func TestGroovyFrontEnd_Script(t *testing.T) {
	src := `def x = 1
println x
def twice(n) { n * 2 }
assert twice(x) == 2
`
	unit := parseGroovy(t, "scripts/Hello.groovy", src)
	require.Len(t, unit.Types, 1)
	script := unit.Types[0]
	assert.True(t, script.Script)
	assert.Equal(t, "Hello", script.Name)

	require.Len(t, script.Body.Stmts, 3)
	decl, ok := script.Body.Stmts[0].(*models.VarDecl)
	require.True(t, ok)
	assert.Equal(t, "x", decl.Name)
	assert.Nil(t, decl.Type)

	println := script.Body.Stmts[1].(*models.ExprStmt).X.(*models.Call)
	assert.Equal(t, "println", println.Name)
	assert.True(t, println.Command)

	assert.IsType(t, &models.Assert{}, script.Body.Stmts[2])

	twice := script.MethodsNamed("twice")
	require.Len(t, twice, 1)
	assert.Equal(t, models.DynamicTypeName, twice[0].Params[0].Type.Name)
}

func TestGroovyFrontEnd_Statements(t *testing.T) {
	src := `void run(List list) {
    for (x in list) { println x }
    for (int i = 0; i < 10; i++) {}
    while (list) { break }
    if (list.empty) return else list.clear()
    try { foo() } catch (IOException | RuntimeException e) { } finally { }
    synchronized (this) { }
    String s = 'a', t
    throw new IllegalStateException()
}
`
	unit := parseGroovy(t, "S.groovy", src)
	run := unit.Types[0].MethodsNamed("run")[0]
	stmts := run.Body.Stmts
	require.Len(t, stmts, 9)

	forIn := stmts[0].(*models.ForIn)
	assert.Equal(t, "x", forIn.Var)
	assert.Nil(t, forIn.VarType)
	assert.Equal(t, "list", forIn.Iter.(*models.Ident).Name)

	loop := stmts[1].(*models.For)
	require.Len(t, loop.Init, 1)
	assert.Equal(t, "int", loop.Init[0].(*models.VarDecl).Type.Name)
	assert.Equal(t, "<", loop.Cond.(*models.Binary).Op)
	require.Len(t, loop.Update, 1)
	assert.True(t, loop.Update[0].(*models.Unary).Postfix)

	assert.IsType(t, &models.While{}, stmts[2])

	ifStmt := stmts[3].(*models.If)
	assert.IsType(t, &models.Return{}, ifStmt.Then)
	assert.NotNil(t, ifStmt.Else)

	try := stmts[4].(*models.Try)
	require.Len(t, try.Catches, 1)
	assert.Len(t, try.Catches[0].Types, 2)
	assert.Equal(t, "e", try.Catches[0].Name)
	assert.NotNil(t, try.Finally)

	assert.IsType(t, &models.Sync{}, stmts[5])

	s := stmts[6].(*models.VarDecl)
	tdecl := stmts[7].(*models.VarDecl)
	assert.Equal(t, "s", s.Name)
	assert.Equal(t, "t", tdecl.Name)
	assert.Equal(t, "String", tdecl.Type.Name)
	assert.Nil(t, tdecl.Init)

	assert.IsType(t, &models.Throw{}, stmts[8])
}

func TestGroovyFrontEnd_ConstructorCalls(t *testing.T) {
	src := `class B extends A {
    B() { super(1, 2) }
    B(int x) { this() }
}
`
	unit := parseGroovy(t, "B.groovy", src)
	ctors := unit.Types[0].Constructors()
	require.Len(t, ctors, 2)

	sup := ctors[0].Body.Stmts[0].(*models.CtorCall)
	assert.True(t, sup.Super)
	assert.Len(t, sup.Args, 2)

	this := ctors[1].Body.Stmts[0].(*models.CtorCall)
	assert.False(t, this.Super)
}

func TestGroovyFrontEnd_Annotations(t *testing.T) {
	src := `@Singleton(lazy = true, property = 'inst')
@PackageScope([FIELDS, METHODS])
@Category(String)
class A {}
`
	unit := parseGroovy(t, "A.groovy", src)
	a := unit.Types[0]
	require.Len(t, a.Annotations, 3)

	lazy, ok := a.Annotations[0].Arg("lazy")
	require.True(t, ok)
	assert.Equal(t, "true", lazy.(*models.Literal).Value)

	value, ok := a.Annotations[1].Arg("value")
	require.True(t, ok)
	assert.Len(t, value.(*models.ListLit).Elems, 2)

	cat, ok := a.Annotations[2].Arg("value")
	require.True(t, ok)
	assert.Equal(t, "String", cat.(*models.Ident).Name)
}

func TestGroovyFrontEnd_ParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		message string
		fatal   bool
		types   int
	}{
		{
			name:    "member error recovers",
			src:     "class A {\n  def x =\n}\nclass B {}\n",
			message: "unexpected token: } @ line 3, column 1.",
			types:   2,
		},
		{
			name:    "missing brace",
			src:     "class A {\n  void f() {\n}\n",
			message: "expecting '}', found '<EOF>' @ line 4, column 1.",
			fatal:   true,
		},
		{
			name:    "bad package is fatal",
			src:     "package 1abc\nclass A {}\n",
			message: "expecting an identifier, found '1' @ line 1, column 9.",
			fatal:   true,
		},
		{
			name:    "repeated modifier",
			src:     "class A {\n  static static int x\n}\n",
			message: "Cannot repeat modifier: static @ line 2, column 10.",
			types:   1,
		},
		{
			name:    "varargs not last",
			src:     "class A {\n  void f(String... a, int b) {}\n}\n",
			message: "The variable argument parameter must be the last parameter @ line 2, column 10.",
			types:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit, err := NewGroovyFrontEnd().Parse("A.groovy", tt.src)
			problems := problemsOf(t, err)
			require.NotEmpty(t, problems.Diagnostics)

			d := problems.Diagnostics[0]
			assert.Equal(t, tt.message, d.Message)
			assert.Equal(t, errors.CategoryGroovy, d.Category)
			assert.Equal(t, errors.ParseErrorCode, d.Code)

			require.NotNil(t, unit)
			assert.Equal(t, tt.fatal, unit.Fatal)
			if !tt.fatal {
				assert.Len(t, unit.Types, tt.types)
			}
		})
	}
}

func TestGroovyFrontEnd_LexerErrorIsFatal(t *testing.T) {
	unit, err := NewGroovyFrontEnd().Parse("A.groovy", "def s = 'abc\n")
	problems := problemsOf(t, err)
	require.NotNil(t, unit)
	assert.True(t, unit.Fatal)

	last := problems.Diagnostics[len(problems.Diagnostics)-1]
	assert.Equal(t, "unexpected char: ''' @ line 1, column 9.", last.Message)
}

func TestProblems_Error(t *testing.T) {
	unit := models.NewCompilationUnit("A.groovy", "x", models.LanguageGroovy)
	p := &Problems{Unit: unit, Diagnostics: []*errors.Diagnostic{
		{Message: "first", Unit: unit, Span: models.Span{Start: 0, End: 1}},
		{Message: "second", Unit: unit, Span: models.Span{Start: 0, End: 1}},
	}}
	assert.Equal(t, "A.groovy:1:1: first (and 1 more)", p.Error())
}
