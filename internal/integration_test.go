package internal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/jointc/internal/compiler"
	"github.com/toyz/jointc/internal/config"
	"github.com/toyz/jointc/internal/generator"
	"github.com/toyz/jointc/internal/lowering"
	"github.com/toyz/jointc/internal/models"
)

// compile runs a retaining session over the sources
func compile(t *testing.T, sources ...compiler.Source) *compiler.Result {
	t.Helper()
	opts := config.Default()
	opts.Retain = true
	result, err := compiler.NewSession(opts).Compile(context.Background(), sources)
	require.NoError(t, err)
	return result
}

func classFile(t *testing.T, result *compiler.Result, path, name string) *generator.ClassFile {
	t.Helper()
	unit := result.Unit(path)
	require.NotNil(t, unit, path)
	for _, cf := range unit.ClassFiles {
		if cf.Name == name {
			return cf
		}
	}
	t.Fatalf("no class %s in %s (problems: %v)", name, path, unit.Messages())
	return nil
}

func method(cf *generator.ClassFile, name string) *generator.Method {
	for _, m := range cf.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

func field(cf *generator.ClassFile, name string) *generator.Field {
	for _, f := range cf.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func TestEnumConstantListsEndToEnd(t *testing.T) {
	tests := []struct {
		name string
		path string
		src  string
		want []string
	}{
		{"dynamic plain", "E.groovy", "enum E { A, B, C }", []string{"A", "B", "C"}},
		{"dynamic trailing comma", "E.groovy", "enum E { A, B, C, }", []string{"A", "B", "C"}},
		{"dynamic trailing semicolon", "E.groovy", "enum E { A, B, C; }", []string{"A", "B", "C"}},
		{"dynamic comma and semicolon", "E.groovy", "enum E {\n  A,\n  B,\n  C,;\n}", []string{"A", "B", "C"}},
		{"host plain", "E.java", "enum E { A, B, C }", []string{"A", "B", "C"}},
		{"host trailing comma", "E.java", "enum E { A, B, C, }", []string{"A", "B", "C"}},
		{"host trailing semicolon", "E.java", "enum E { A, B, C; }", []string{"A", "B", "C"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := compile(t, compiler.Source{Path: tt.path, Text: tt.src})
			require.False(t, result.HasErrors(), result.Report())
			e := classFile(t, result, tt.path, "E")

			var constants []string
			for _, f := range e.Fields {
				if f.Access.Has(models.ModEnum) {
					constants = append(constants, f.Name)
				}
			}
			assert.Equal(t, tt.want, constants)

			require.NotNil(t, method(e, "values"))
			assert.Equal(t, "()[LE;", method(e, "values").Descriptor)
			require.NotNil(t, method(e, "valueOf"))
			assert.Equal(t, "(Ljava/lang/String;)LE;", method(e, "valueOf").Descriptor)
			assert.NotNil(t, field(e, "$VALUES"))
		})
	}
}

func TestAbstractEnumMethodNeedsEveryConstantBody(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "constant without body",
			src:  "enum Bad {\n  A {\n    int foo() { 1 }\n  },\n  B\n  abstract int foo()\n}\n",
			want: "Groovy:Can't have an abstract method in enum constant B. Implement method 'int foo()'.",
		},
		{
			name: "constant with empty body",
			src:  "enum Bad {\n  A() {\n  }\n  abstract int foo()\n}\n",
			want: "Groovy:Can't have an abstract method in enum constant A. Implement method 'int foo()'.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := compile(t, compiler.Source{Path: "Bad.groovy", Text: tt.src})
			unit := result.Unit("Bad.groovy")
			assert.Equal(t, []string{tt.want}, unit.Messages())
			assert.Empty(t, unit.Classes, "nothing is emitted for a unit with errors")
		})
	}
}

func TestStaticImportAliasAcrossLanguages(t *testing.T) {
	result := compile(t,
		compiler.Source{Path: "a/B.java", Text: "package a;\npublic class B {\n  public static final String FOO = \"foo\";\n}\n"},
		compiler.Source{Path: "c/C.groovy", Text: "package c\nimport static a.B.FOO as Wibble\nclass C {\n  String s = Wibble\n}\n"},
	)
	require.False(t, result.HasErrors(), result.Report())

	unit := result.Unit("c/C.groovy").Unit
	require.Len(t, unit.Imports, 1)
	assert.Equal(t, "a.B.FOO as Wibble", unit.Imports[0].String())

	b := classFile(t, result, "a/B.java", "a/B")
	foo := field(b, "FOO")
	require.NotNil(t, foo)
	require.NotNil(t, foo.Constant, "compile-time constants carry ConstantValue")
}

func TestPackageScopeFieldsEndToEnd(t *testing.T) {
	result := compile(t, compiler.Source{Path: "Foo.groovy", Text: `import groovy.transform.PackageScope
import groovy.transform.PackageScopeTarget

@PackageScope(PackageScopeTarget.FIELDS)
class Foo {
  String field1 = 'abc'
  public String field2 = 'def'
  protected String field3 = 'ghi'
  private String field4 = 'jkl'
}
`})
	require.False(t, result.HasErrors(), result.Report())
	foo := classFile(t, result, "Foo.groovy", "Foo")

	want := map[string]models.Modifiers{
		"field1": 0,
		"field2": models.ModPublic,
		"field3": models.ModProtected,
		"field4": models.ModPrivate,
	}
	for name, vis := range want {
		f := field(foo, name)
		require.NotNil(t, f, name)
		assert.Equal(t, vis, f.Access.Visibility(), name)
	}
	assert.Nil(t, method(foo, "getField1"), "a package-scoped field is not a property")
}

func TestSingletonConstruction(t *testing.T) {
	constructs := func(n models.Node) bool {
		found := false
		models.Inspect(n, func(inner models.Node) bool {
			if _, ok := inner.(*models.New); ok {
				found = true
			}
			return !found
		})
		return found
	}

	t.Run("eager constructs in the first static statement", func(t *testing.T) {
		result := compile(t, compiler.Source{Path: "S.groovy", Text: "@Singleton\nclass S {\n  static String label = 'abcd'\n}\n"})
		require.False(t, result.HasErrors(), result.Report())
		s := result.Unit("S.groovy").Unit.Types[0]

		var clinit *models.Declaration
		for _, m := range s.Members {
			if m.Name == lowering.StaticInitName {
				clinit = m
			}
		}
		require.NotNil(t, clinit)
		require.NotEmpty(t, clinit.Body.Stmts)
		assert.True(t, constructs(clinit.Body.Stmts[0]))
		assert.NotNil(t, method(classFile(t, result, "S.groovy", "S"), "<clinit>"))
	})

	t.Run("lazy constructs inside getInstance", func(t *testing.T) {
		result := compile(t, compiler.Source{Path: "S.groovy", Text: "@Singleton(lazy = true)\nclass S {\n}\n"})
		require.False(t, result.HasErrors(), result.Report())
		s := result.Unit("S.groovy").Unit.Types[0]

		getters := s.MethodsNamed("getInstance")
		require.Len(t, getters, 1)
		assert.True(t, constructs(getters[0].Body))
		for _, m := range s.Members {
			assert.NotEqual(t, lowering.StaticInitName, m.Name)
		}
	})
}
