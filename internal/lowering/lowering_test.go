package lowering

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/jointc/internal/config"
	"github.com/toyz/jointc/internal/errors"
	"github.com/toyz/jointc/internal/library"
	"github.com/toyz/jointc/internal/models"
	"github.com/toyz/jointc/internal/parser"
	"github.com/toyz/jointc/internal/resolver"
	"github.com/toyz/jointc/internal/transform"
)

type lowered struct {
	unit  *models.CompilationUnit
	diags *errors.Collector
	l     *Lowerer
	src   string
}

// lower runs a one-unit session up to and including lowering
func lower(t *testing.T, path, src string) *lowered {
	t.Helper()
	unit, err := parser.DefaultRegistry().Parse(path, src)
	require.NoError(t, err)
	c := errors.NewCollector(unit)
	table := resolver.NewSymbolTable(library.MustNew())
	table.Register(unit, c)
	r := resolver.New(table, unit, c, config.Default())
	r.ResolveImports()
	r.ResolveHeaders()
	transform.NewEngine().Run([]*resolver.Resolver{r})
	r.ResolveMembers()
	r.ResolveBodies()
	l := New(r)
	l.Lower()
	return &lowered{unit: unit, diags: c, l: l, src: src}
}

func (s *lowered) messages() []string {
	var out []string
	for _, d := range s.diags.Diagnostics() {
		out = append(out, d.Text())
	}
	return out
}

func (s *lowered) typeNamed(name string) *models.Declaration {
	for _, d := range s.l.Types() {
		if d.Name == name {
			return d
		}
	}
	return nil
}

func (s *lowered) spanText(d *errors.Diagnostic) string {
	if !d.Span.IsValid() || d.Span.End > len(s.src) {
		return "<no span>"
	}
	return s.src[d.Span.Start:d.Span.End]
}

func constantNames(t *testing.T, e *models.Declaration) []string {
	t.Helper()
	values := e.Field(valuesField)
	require.NotNil(t, values)
	list := values.Init.(*models.New).Init
	var out []string
	for _, el := range list.Elems {
		out = append(out, el.(*models.Ident).Name)
	}
	return out
}

func TestLowerEnum_ConstantLists(t *testing.T) {
	tests := []struct {
		name string
		path string
		src  string
		want []string
	}{
		{"plain", "E.groovy", "enum E { A, B, C }", []string{"A", "B", "C"}},
		{"trailing comma", "E.groovy", "enum E { A, B, C, }", []string{"A", "B", "C"}},
		{"trailing semicolon", "E.groovy", "enum E { A, B, C; }", []string{"A", "B", "C"}},
		{"comma and semicolon", "E.groovy", "enum E { A, B, C,; }", []string{"A", "B", "C"}},
		{"one per line", "E.groovy", "enum E {\n  A,\n  B,\n  C\n}", []string{"A", "B", "C"}},
		{"nested enum after the constants", "E.groovy", "enum E {\n  A,\n  B\n  enum Inner { X, Y, Z }\n}", []string{"A", "B"}},
		{"empty", "E.groovy", "enum E {\n}", nil},
		{"host language", "E.java", "enum E { A, B, C; }", []string{"A", "B", "C"}},
		{"host language trailing comma", "E.java", "enum E { A, B, C, }", []string{"A", "B", "C"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := lower(t, tt.path, tt.src)
			assert.Empty(t, s.messages())
			e := s.typeNamed("E")
			require.NotNil(t, e)

			assert.Equal(t, tt.want, constantNames(t, e))
			for i, name := range tt.want {
				f := e.Members[i]
				assert.Equal(t, name, f.Name)
				assert.True(t, f.Modifiers.Has(models.ModPublic|models.ModStatic|models.ModFinal|models.ModEnum))
				init := f.Init.(*models.New)
				assert.Equal(t, name, init.Args[0].(*models.Literal).Value)
				assert.Equal(t, models.LitInt, init.Args[1].(*models.Literal).Kind)
				assert.Same(t, f, e.Constants[i].Field)
			}

			values := e.MethodsNamed("values")
			require.Len(t, values, 1)
			assert.Equal(t, "E[]", values[0].ReturnType().String())
			assert.True(t, values[0].IsStatic())
			valueOf := e.MethodsNamed("valueOf")
			require.Len(t, valueOf, 1)
			assert.Equal(t, []string{"java.lang.String"}, paramNames(valueOf[0]))
			assert.True(t, e.Modifiers.Has(models.ModFinal|models.ModEnum))
		})
	}
}

func TestLowerEnum_NestedEnumIsDistinct(t *testing.T) {
	s := lower(t, "E.groovy", "enum E {\n  A,\n  B\n  enum Inner { X, Y, Z }\n}")
	inner := s.typeNamed("Inner")
	require.NotNil(t, inner)
	assert.Equal(t, []string{"X", "Y", "Z"}, constantNames(t, inner))
	assert.True(t, inner.Modifiers.Has(models.ModStatic))
}

func paramNames(m *models.Declaration) []string {
	var out []string
	for _, p := range m.ParamTypes() {
		out = append(out, p.String())
	}
	return out
}

func TestLowerEnum_Constructors(t *testing.T) {
	s := lower(t, "Planet.groovy", `enum Planet {
    MERCURY(3.303e+23, 2.4397e6),
    EARTH(5.976e+24, 6.37814e6),
    PLUTO

    final double mass
    final double radius

    Planet(double mass, double radius) {
        this.mass = mass
        this.radius = radius
    }

    Planet() {
        this(0, 0)
    }
}
`)
	assert.Empty(t, s.messages())
	e := s.typeNamed("Planet")
	ctors := e.Constructors()
	require.Len(t, ctors, 2)
	full, empty := ctors[0], ctors[1]

	assert.Same(t, full, e.Constants[0].Constructor)
	assert.Same(t, full, e.Constants[1].Constructor)
	assert.Same(t, empty, e.Constants[2].Constructor)

	assert.Equal(t, []string{"java.lang.String", "int", "double", "double"}, paramNames(full))
	assert.True(t, full.Modifiers.Has(models.ModPrivate))
	sup := full.Body.Stmts[0].(*models.CtorCall)
	assert.True(t, sup.Super)
	assert.Equal(t, enumNameParam, sup.Args[0].(*models.Ident).Name)
	assert.Equal(t, enumOrdinalParam, sup.Args[1].(*models.Ident).Name)

	delegate := empty.Body.Stmts[0].(*models.CtorCall)
	assert.False(t, delegate.Super)
	require.Len(t, delegate.Args, 4)
	assert.Equal(t, enumNameParam, delegate.Args[0].(*models.Ident).Name)

	pluto := e.Field("PLUTO").Init.(*models.New)
	assert.Len(t, pluto.Args, 2)
}

func TestLowerEnum_ConstructorsArePrivate(t *testing.T) {
	tests := []struct {
		name string
		path string
		src  string
	}{
		{"dynamic implicit", "E.groovy", "enum E {\n  A(1)\n  E(int x) {}\n}"},
		{"dynamic explicit public", "E.groovy", "enum E {\n  A(1)\n  public E(int x) {}\n}"},
		{"dynamic explicit protected", "E.groovy", "enum E {\n  A(1)\n  protected E(int x) {}\n}"},
		{"host package private", "E.java", "enum E {\n  A(1);\n  E(int x) {}\n}"},
		{"host explicit private", "E.java", "enum E {\n  A(1);\n  private E(int x) {}\n}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := lower(t, tt.path, tt.src)
			assert.Empty(t, s.messages())
			ctors := s.typeNamed("E").Constructors()
			require.Len(t, ctors, 1)
			assert.Equal(t, models.ModPrivate, ctors[0].Modifiers.Visibility())
		})
	}
}

func TestLowerEnum_GeneratedMembers(t *testing.T) {
	t.Run("dynamic language", func(t *testing.T) {
		s := lower(t, "Color.groovy", "enum Color { RED, GREEN, BLUE }")
		e := s.typeNamed("Color")
		min, max := e.Field(minValue), e.Field(maxValue)
		require.NotNil(t, min)
		require.NotNil(t, max)
		assert.Equal(t, "RED", min.Init.(*models.Ident).Name)
		assert.Equal(t, "BLUE", max.Init.(*models.Ident).Name)
		assert.Len(t, e.MethodsNamed("next"), 1)
		assert.Len(t, e.MethodsNamed("previous"), 1)

		values := e.Field(valuesField)
		assert.True(t, values.Synthetic)
		assert.True(t, values.Modifiers.Has(models.ModPrivate|models.ModStatic|models.ModFinal|models.ModSynthetic))
	})

	t.Run("host language", func(t *testing.T) {
		s := lower(t, "Color.java", "enum Color { RED, GREEN, BLUE }")
		e := s.typeNamed("Color")
		assert.Nil(t, e.Field(minValue))
		assert.Empty(t, e.MethodsNamed("next"))
		assert.NotNil(t, e.Field(valuesField))
	})

	t.Run("declared step methods are kept", func(t *testing.T) {
		s := lower(t, "Color.groovy", "enum Color {\n  RED, BLUE\n  Color next() { RED }\n}")
		e := s.typeNamed("Color")
		next := e.MethodsNamed("next")
		require.Len(t, next, 1)
		assert.False(t, next[0].Generated)
	})
}

func TestLowerEnum_NamedArguments(t *testing.T) {
	s := lower(t, "Level.groovy", `enum Level {
    LOW(label: 'low'), HIGH(label: 'high')
    String label
}
`)
	assert.Empty(t, s.messages())
	e := s.typeNamed("Level")
	var mapCtor *models.Declaration
	for _, ctor := range e.Constructors() {
		if len(ctor.Params) == 3 {
			mapCtor = ctor
		}
	}
	require.NotNil(t, mapCtor)
	assert.Equal(t, []string{"java.lang.String", "int", "java.util.LinkedHashMap"}, paramNames(mapCtor))
	assert.Same(t, mapCtor, e.Constants[0].Constructor)
	init := e.Field("LOW").Init.(*models.New)
	require.Len(t, init.Args, 3)
	assert.IsType(t, &models.MapLit{}, init.Args[2])
}

func TestLowerEnum_ConstantBodies(t *testing.T) {
	s := lower(t, "Good.groovy", `enum Good {
  A() {
    @Override
    int foo() {
      1
    }
  }
  abstract int foo()
}`)
	assert.Empty(t, s.messages())
	e := s.typeNamed("Good")
	assert.True(t, e.Modifiers.Has(models.ModAbstract))
	assert.False(t, e.Modifiers.Has(models.ModFinal))

	body := e.Constants[0].Body
	require.NotNil(t, body)
	assert.Equal(t, "Good$1", body.BinaryName)
	assert.True(t, body.Modifiers.Has(models.ModFinal|models.ModEnum))
	ctors := body.Constructors()
	require.Len(t, ctors, 1)
	assert.Equal(t, []string{"java.lang.String", "int"}, paramNames(ctors[0]))

	init := e.Field("A").Init.(*models.New)
	assert.Same(t, body, init.Type.Decl)
}

func TestLowerEnum_Diagnostics(t *testing.T) {
	tests := []struct {
		name string
		path string
		src  string
		want []string
		code errors.ErrorCode
		at   string
	}{
		{
			name: "constant body missing an abstract method",
			path: "Bad.groovy",
			src:  "enum Bad {\n  A() {\n  }\n  abstract int foo()\n}",
			want: []string{"Groovy:Can't have an abstract method in enum constant A. Implement method 'int foo()'."},
			code: errors.UnimplementedAbstractMemberCode,
			at:   "A",
		},
		{
			name: "constant without body",
			path: "Bad.groovy",
			src:  "enum Bad {\n  A\n  abstract int foo()\n}",
			want: []string{"Groovy:Can't have an abstract method in enum constant A. Implement method 'int foo()'."},
			code: errors.UnimplementedAbstractMemberCode,
			at:   "A",
		},
		{
			name: "host language constant body",
			path: "Bad.java",
			src:  "enum Bad {\n  A() { };\n  abstract int foo(String s);\n}",
			want: []string{"The enum constant A must implement the abstract method foo(String)"},
			code: errors.UnimplementedAbstractMemberCode,
			at:   "A",
		},
		{
			name: "explicit super call",
			path: "E.groovy",
			src:  "enum E {\n  A(1)\n  E(int x) {\n    super()\n  }\n}",
			want: []string{"Groovy:Cannot invoke super constructor from enum constructor E(int)"},
			code: errors.IllegalEnumSuperCallCode,
			at:   "super()",
		},
		{
			name: "host language explicit super call",
			path: "E.java",
			src:  "enum E {\n  A(1);\n  E(int x) { super(); }\n}",
			want: []string{"Cannot invoke super constructor from enum constructor E(int)"},
			code: errors.IllegalEnumSuperCallCode,
			at:   "super();",
		},
		{
			name: "host language public constructor",
			path: "E.java",
			src:  "enum E {\n  A(1);\n  public E(int x) {}\n}",
			want: []string{"Illegal modifier for the enum constructor; only private is permitted."},
			code: errors.IllegalModifierCode,
			at:   "E",
		},
		{
			name: "no matching constructor",
			path: "E.groovy",
			src:  "enum E {\n  A(1), B(1, 2)\n  E(int x) {}\n}",
			want: []string{"Groovy:Cannot find matching constructor for enum constant B with arguments (int, int)"},
			code: errors.UnresolvedMemberCode,
			at:   "B",
		},
		{
			name: "host language no matching constructor",
			path: "E.java",
			src:  "enum E {\n  A(1), B(\"x\");\n  E(int x) {}\n}",
			want: []string{"The constructor E(String) is undefined"},
			code: errors.UnresolvedMemberCode,
			at:   "B",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := lower(t, tt.path, tt.src)
			assert.Equal(t, tt.want, s.messages())
			diags := s.diags.Diagnostics()
			require.Len(t, diags, 1)
			assert.Equal(t, tt.code, diags[0].Code)
			assert.Equal(t, tt.at, s.spanText(diags[0]))
		})
	}
}

func TestLowerEnum_SuperCallIsDropped(t *testing.T) {
	s := lower(t, "E.groovy", "enum E {\n  A(1)\n  E(int x) {\n    super()\n  }\n}")
	ctor := s.typeNamed("E").Constructors()[0]
	require.NotEmpty(t, ctor.Body.Stmts)
	call := ctor.Body.Stmts[0].(*models.CtorCall)
	require.Len(t, call.Args, 2)
	assert.Equal(t, enumNameParam, call.Args[0].(*models.Ident).Name)
}

func TestLowerAnonymousClasses(t *testing.T) {
	t.Run("numbered in source order", func(t *testing.T) {
		s := lower(t, "A.groovy", `def one = new Runnable() {
    void run() {}
}
def two = new Thread() {
    void run() {}
}
`)
		assert.Empty(t, s.messages())
		require.Len(t, s.l.anonymous, 2)
		assert.Equal(t, "A$1", s.l.anonymous[0].BinaryName)
		assert.Equal(t, "A$2", s.l.anonymous[1].BinaryName)
		for _, d := range s.l.anonymous {
			assert.Len(t, d.Constructors(), 1)
		}
	})

	t.Run("unimplemented interface method", func(t *testing.T) {
		s := lower(t, "A.groovy", "def foo = new Runnable() {\n}\n")
		assert.Equal(t, []string{
			"Groovy:Can't have an abstract method in a non-abstract class. The class 'A$1' must be declared abstract or the method 'void run()' must be implemented.",
		}, s.messages())
		d := s.diags.Diagnostics()[0]
		assert.Equal(t, "Runnable", s.spanText(d))
		assert.Equal(t, 1, d.Position().Line)
	})

	t.Run("enum bodies share the counter of their class", func(t *testing.T) {
		s := lower(t, "p/Op.groovy", `package p
enum Op {
    PLUS {
        int apply(int a, int b) { a + b }
    },
    MINUS {
        int apply(int a, int b) {
            def r = new Runnable() { void run() {} }
            a - b
        }
    }
    abstract int apply(int a, int b)
}
`)
		assert.Empty(t, s.messages())
		op := s.typeNamed("Op")
		assert.Equal(t, "p/Op$1", op.Constants[0].Body.BinaryName)
		assert.Equal(t, "p/Op$2", op.Constants[1].Body.BinaryName)
		require.Len(t, s.l.anonymous, 1)
		assert.Equal(t, "p/Op$2$1", s.l.anonymous[0].BinaryName)
	})
}

func staticInit(t *testing.T, d *models.Declaration) []models.Stmt {
	t.Helper()
	for _, m := range d.Members {
		if m.Kind == models.KindInitializer && m.Name == StaticInitName {
			assert.True(t, m.IsStatic())
			assert.True(t, m.Synthetic)
			return m.Body.Stmts
		}
	}
	t.Fatalf("no static initializer in %s", d.Name)
	return nil
}

func assignedName(t *testing.T, s models.Stmt) string {
	t.Helper()
	es, ok := s.(*models.ExprStmt)
	require.True(t, ok, "statement %T", s)
	target := es.X.(*models.Assign).Target
	switch x := target.(type) {
	case *models.Ident:
		return x.Name
	case *models.FieldAccess:
		return x.Name
	}
	return ""
}

func TestAssembleInitializers(t *testing.T) {
	t.Run("enum holders come first", func(t *testing.T) {
		s := lower(t, "E.groovy", `enum E {
    A, B
    static int count = 2
    static { println 'ready' }
    static final int LIMIT = 10
}
`)
		e := s.typeNamed("E")
		stmts := staticInit(t, e)
		require.Len(t, stmts, 7)
		var names []string
		for _, st := range stmts[:6] {
			names = append(names, assignedName(t, st))
		}
		assert.Equal(t, []string{"A", "B", valuesField, minValue, maxValue, "count"}, names)
		assert.IsType(t, &models.Block{}, stmts[6])
		for _, m := range e.Members {
			if m.Kind == models.KindInitializer {
				assert.Equal(t, StaticInitName, m.Name)
			}
		}
		assert.True(t, IsConstantValue(e.Field("LIMIT")))
	})

	t.Run("eager singleton constructs first", func(t *testing.T) {
		s := lower(t, "S.groovy", `@Singleton
class S {
    static String label = 'abcd'
}
`)
		stmts := staticInit(t, s.typeNamed("S"))
		require.Len(t, stmts, 2)
		assert.Equal(t, "instance", assignedName(t, stmts[0]))
		assert.IsType(t, &models.New{}, stmts[0].(*models.ExprStmt).X.(*models.Assign).Value)
		assert.Equal(t, "label", assignedName(t, stmts[1]))
	})

	t.Run("lazy singleton leaves class initialization alone", func(t *testing.T) {
		s := lower(t, "S.groovy", `@Singleton(lazy = true)
class S {
}
`)
		for _, m := range s.typeNamed("S").Members {
			assert.NotEqual(t, StaticInitName, m.Name)
		}
	})

	t.Run("instance initializers move into constructors", func(t *testing.T) {
		s := lower(t, "C.groovy", `class C {
    int a = 1;
    { a++ }
    String b = 'x';

    C() {}

    C(int a) {
        this()
        this.a = a
    }
}
`)
		c := s.typeNamed("C")
		var ctors []*models.Declaration
		for _, ctor := range c.Constructors() {
			if !ctor.Generated {
				ctors = append(ctors, ctor)
			}
		}
		require.Len(t, ctors, 2)
		stmts := ctors[0].Body.Stmts
		require.Len(t, stmts, 3)
		assert.Equal(t, "a", assignedName(t, stmts[0]))
		assert.IsType(t, &models.Block{}, stmts[1])
		assert.Equal(t, "b", assignedName(t, stmts[2]))

		delegating := ctors[1].Body.Stmts
		require.Len(t, delegating, 2)
		assert.IsType(t, &models.CtorCall{}, delegating[0])

		for _, m := range c.Members {
			assert.NotEqual(t, models.KindInitializer, m.Kind)
		}
	})
}

func TestMethodText(t *testing.T) {
	s := lower(t, "E.groovy", "enum E {\n  A { }\n  abstract String name(int a, List<String> rest)\n}")
	msgs := s.messages()
	require.Len(t, msgs, 1)
	assert.True(t, strings.HasSuffix(msgs[0], "Implement method 'java.lang.String name(int, java.util.List)'."), msgs[0])
}
