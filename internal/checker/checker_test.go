package checker

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

// check runs the front half of a session over one source and checks it
func check(t *testing.T, path, src string) *errors.Collector {
	t.Helper()
	_, c := checked(t, path, src)
	return c
}

func checked(t *testing.T, path, src string) (*models.CompilationUnit, *errors.Collector) {
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
	New(r).Check()
	return unit, c
}

func texts(c *errors.Collector) []string {
	var out []string
	for _, d := range c.Diagnostics() {
		out = append(out, d.Text())
	}
	return out
}

func spanText(src string, d *errors.Diagnostic) string {
	return src[d.Span.Start:d.Span.End]
}

func TestCheck_UndeclaredVariableAndMissingMethod(t *testing.T) {
	src := "import groovy.transform.TypeChecked\n" +
		"@TypeChecked\n" +
		"void method(String message) {\n" +
		"   if (rareCondition) {\n" +
		"        println \"Did you spot the error in this ${message.toUppercase()}?\"\n" +
		"   }\n" +
		"}"
	c := check(t, "Foo.groovy", src)

	assert.Equal(t, []string{
		"Groovy:[Static type checking] - The variable [rareCondition] is undeclared.",
		"Groovy:[Static type checking] - Cannot find matching method java.lang.String#toUppercase(). Please check if the declared type is right and if the method exists.",
	}, texts(c))
	diags := c.Diagnostics()
	require.Len(t, diags, 2)
	assert.Equal(t, "rareCondition", spanText(src, diags[0]))
	assert.Equal(t, "message.toUppercase()", spanText(src, diags[1]))
	assert.Equal(t, errors.UnresolvedMemberCode, diags[0].Code)
	assert.Equal(t, errors.UnresolvedMemberCode, diags[1].Code)
}

func TestCheck_ArgumentMismatch(t *testing.T) {
	for _, marker := range []string{"TypeChecked", "CompileStatic"} {
		t.Run(marker, func(t *testing.T) {
			src := "import groovy.transform." + marker + "\n" +
				"@" + marker + "\n" +
				"void method(String message) {\n" +
				"   List<Integer> ls = new ArrayList<Integer>();\n" +
				"   ls.add(123);\n" +
				"   ls.add('abc');\n" +
				"}"
			c := check(t, "Foo.groovy", src)

			assert.Equal(t, []string{
				"Groovy:[Static type checking] - Cannot call java.util.ArrayList <Integer>#add(java.lang.Integer) with arguments [java.lang.String] ",
			}, texts(c))
			require.Len(t, c.Diagnostics(), 1)
			d := c.Diagnostics()[0]
			assert.Equal(t, "ls.add('abc')", spanText(src, d))
			assert.Equal(t, errors.TypeMismatchCode, d.Code)
		})
	}
}

func TestCheck_Conform(t *testing.T) {
	tests := []struct {
		name string
		path string
		src  string
	}{
		{
			name: "system property fallback",
			path: "Foo.groovy",
			src: `import groovy.transform.CompileStatic;

import java.util.Properties;

class One {
   @CompileStatic
   private String getPropertyValue(String propertyName, Properties props, String defaultValue) {
       // First check whether we have a system property with the given name.
       def value = getValueFromSystemOrBuild(propertyName, props)

       return value != null ? value : defaultValue
   }

   @CompileStatic
   private getValueFromSystemOrBuild(String propertyName, Properties props) {
       def value = System.getProperty(propertyName)
       if (value != null) return value

       value = props[propertyName]
       return value
   }
}
`,
		},
		{
			name: "spread property of a set",
			path: "Foo.groovy",
			src: `@groovy.transform.TypeChecked
class Foo {
  def method() {
    Set<java.beans.BeanInfo> defs = []
    defs*.additionalBeanInfo
  }
}
`,
		},
		{
			name: "instanceof narrowing and closure parameters",
			path: "Flow.groovy",
			src: `import groovy.transform.TypeChecked

@TypeChecked
class Flow {
    int size(Object o) {
        if (o instanceof String) {
            return o.length()
        }
        return 0
    }

    String upper(List<String> names) {
        def first = names.get(0)
        first.toUpperCase()
        names.each { it.toUpperCase() }
        return names.collect { it.trim() }.join(',')
    }
}
`,
		},
		{
			name: "skipped member",
			path: "Skip.groovy",
			src: `import groovy.transform.TypeChecked
import groovy.transform.TypeCheckingMode
import groovy.transform.CompileDynamic

@TypeChecked
class Skip {
    @TypeChecked(TypeCheckingMode.SKIP)
    void one() {
        undefinedThing.call()
    }

    @CompileDynamic
    void two() {
        'abc'.shout()
    }
}
`,
		},
		{
			name: "unmarked members are not checked",
			path: "Loose.groovy",
			src: `class Loose {
    void m() {
        undefinedThing.call()
        'abc'.shout()
    }
}
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := check(t, tt.path, tt.src)
			assert.Empty(t, texts(c))
		})
	}
}

func TestCheck_Messages(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
		code errors.ErrorCode
		at   string
	}{
		{
			name: "missing property",
			src: `@groovy.transform.TypeChecked
void m(String s) {
    println s.foo
}
`,
			want: "Groovy:[Static type checking] - No such property: foo for class: java.lang.String",
			code: errors.UnresolvedMemberCode,
			at:   "s.foo",
		},
		{
			name: "incompatible assignment",
			src: `@groovy.transform.TypeChecked
void m() {
    Integer x = 'abc'
}
`,
			want: "Groovy:[Static type checking] - Cannot assign value of type java.lang.String to variable of type java.lang.Integer",
			code: errors.TypeMismatchCode,
			at:   "Integer x = 'abc'",
		},
		{
			name: "narrowing assignment",
			src: `@groovy.transform.TypeChecked
void m(long l) {
    int i = l
}
`,
			want: "Groovy:[Static type checking] - Possible loss of precision from long to int",
			code: errors.TypeMismatchCode,
			at:   "int i = l",
		},
		{
			name: "incompatible return",
			src: `@groovy.transform.TypeChecked
Integer m() {
    return 'abc'
}
`,
			want: "Groovy:[Static type checking] - Cannot return value of type java.lang.String on method returning type java.lang.Integer",
			code: errors.TypeMismatchCode,
			at:   "return 'abc'",
		},
		{
			name: "instance method from static method",
			src: `@groovy.transform.TypeChecked
class S {
    void inst() {
    }

    static void m() {
        inst()
    }
}
`,
			want: "Groovy:[Static type checking] - Non-static method S#inst() cannot be called from static context",
			code: errors.StaticContextViolationCode,
			at:   "inst()",
		},
		{
			name: "instance property through the class",
			src: `class V {
    String name

    @groovy.transform.TypeChecked
    static void m() {
        println V.name
    }
}
`,
			want: "Groovy:[Static type checking] - Non-static variable 'name' cannot be referenced from a static context",
			code: errors.StaticContextViolationCode,
			at:   "V.name",
		},
		{
			name: "closure parameter inferred from the receiver",
			src: `@groovy.transform.TypeChecked
void m(List<String> names) {
    names.each { it.foo() }
}
`,
			want: "Groovy:[Static type checking] - Cannot find matching method java.lang.String#foo(). Please check if the declared type is right and if the method exists.",
			code: errors.UnresolvedMemberCode,
			at:   "it.foo()",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := check(t, "M.groovy", tt.src)
			require.Len(t, c.Diagnostics(), 1, strings.Join(texts(c), "\n"))
			d := c.Diagnostics()[0]
			assert.Equal(t, tt.want, d.Text())
			assert.Equal(t, tt.code, d.Code)
			assert.Equal(t, tt.at, spanText(tt.src, d))
		})
	}
}

func TestCheck_FlowTyping(t *testing.T) {
	t.Run("def takes the last assigned type", func(t *testing.T) {
		src := `@groovy.transform.TypeChecked
void m() {
    def x = 'abc'
    x.toUpperCase()
    x = 12
    x.toUpperCase()
}
`
		c := check(t, "M.groovy", src)
		require.Len(t, c.Diagnostics(), 1)
		d := c.Diagnostics()[0]
		assert.Contains(t, d.Text(), "#toUpperCase()")
		assert.Equal(t, 5, d.Position().Line)
	})

	t.Run("branches join to a common type", func(t *testing.T) {
		src := `@groovy.transform.TypeChecked
void m(boolean flag) {
    def y
    if (flag) {
        y = 'a'
    } else {
        y = 1
    }
    y.toUpperCase()
}
`
		c := check(t, "M.groovy", src)
		require.Len(t, c.Diagnostics(), 1)
		assert.Equal(t, 8, c.Diagnostics()[0].Position().Line)
	})

	t.Run("early return keeps the narrowing", func(t *testing.T) {
		src := `@groovy.transform.TypeChecked
int m(Object o) {
    if (!(o instanceof String)) {
        return 0
    }
    return o.length()
}
`
		c := check(t, "M.groovy", src)
		assert.Empty(t, texts(c))
	})

	t.Run("declared type keeps a compatible initializer type", func(t *testing.T) {
		src := `@groovy.transform.TypeChecked
void m() {
    Object o = 'abc'
    o.toUpperCase()
    CharSequence cs = new StringBuilder()
    cs.reverse()
}
`
		c := check(t, "M.groovy", src)
		assert.Empty(t, texts(c))
	})
}

func TestCheck_Categories(t *testing.T) {
	src := `class StringCat {
    static String shout(String self) {
        self.toUpperCase() + '!'
    }
}

@groovy.transform.TypeChecked
void m() {
    use(StringCat) {
        'a'.shout()
    }
    'b'.shout()
}
`
	c := check(t, "Use.groovy", src)
	require.Len(t, c.Diagnostics(), 1, strings.Join(texts(c), "\n"))
	d := c.Diagnostics()[0]
	assert.Equal(t, "'b'.shout()", spanText(src, d))
}

func TestCheck_SelectsTarget(t *testing.T) {
	src := `@groovy.transform.TypeChecked
void m(StringBuilder sb) {
    sb.append('x')
    sb.append(1)
}
`
	unit, c := checked(t, "M.groovy", src)
	require.Empty(t, texts(c))

	m := unit.Types[0].MethodsNamed("m")[0]
	var sigs []string
	for _, s := range m.Body.Stmts {
		call := s.(*models.ExprStmt).X.(*models.Call)
		require.NotNil(t, call.Target)
		sigs = append(sigs, call.Target.Signature())
	}
	assert.Equal(t, []string{"append(java.lang.String)", "append(int)"}, sigs)
}
