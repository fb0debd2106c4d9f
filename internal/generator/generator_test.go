package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/jointc/internal/config"
	"github.com/toyz/jointc/internal/errors"
	"github.com/toyz/jointc/internal/library"
	"github.com/toyz/jointc/internal/lowering"
	"github.com/toyz/jointc/internal/models"
	"github.com/toyz/jointc/internal/parser"
	"github.com/toyz/jointc/internal/resolver"
	"github.com/toyz/jointc/internal/transform"
	"github.com/toyz/jointc/internal/types"
)

type session struct {
	unit  *models.CompilationUnit
	diags *errors.Collector
	table *resolver.SymbolTable
	r     *resolver.Resolver
}

// resolve runs a one-unit session through body resolution
func resolve(t *testing.T, path, src string) *session {
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
	return &session{unit: unit, diags: c, table: table, r: r}
}

// emit lowers the unit and emits its classes as class file major 52
func (s *session) emit(t *testing.T) map[string]*ClassFile {
	t.Helper()
	l := lowering.New(s.r)
	l.Lower()
	require.Empty(t, s.diags.Diagnostics())
	out := make(map[string]*ClassFile)
	for _, cf := range NewEmitter(s.table, 52).EmitAll(l.Types()) {
		out[cf.Name] = cf
	}
	return out
}

func fieldNamed(cf *ClassFile, name string) *Field {
	for _, f := range cf.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func methodNamed(cf *ClassFile, name string) *Method {
	for _, m := range cf.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// poolEntry finds the entry at a constant pool index
func poolEntry(p *ConstantPool, index int) *PoolEntry {
	at := 1
	for _, e := range p.Entries() {
		if at == index {
			return e
		}
		at++
		if e.Tag == TagLong || e.Tag == TagDouble {
			at++
		}
	}
	return nil
}

func TestPrintUnit(t *testing.T) {
	tests := []struct {
		name string
		path string
		src  string
		want string
	}{
		{
			name: "enum with constant body",
			path: "p/Good.groovy",
			src:  "package p\nenum Good {\n  A {\n    int foo() { 1 }\n  }\n  abstract int foo()\n}\n",
			want: "package p;\npublic enum Good {\n  A,\n  private Good() {\n  }\n  public abstract int foo();\n}\n",
		},
		{
			name: "qualified member types",
			path: "C.groovy",
			src:  "class C {\n  private List<String> names\n  def go(String s, int... rest) { }\n}\n",
			want: "public class C {\n  private java.util.List<java.lang.String> names;\n  public C() {\n  }\n" +
				"  public java.lang.Object go(java.lang.String s, int... rest) {\n  }\n}\n",
		},
		{
			name: "interface",
			path: "p/Shape.java",
			src:  "package p;\npublic interface Shape<T extends Number> {\n  T area() throws Exception;\n}\n",
			want: "package p;\npublic interface Shape<T extends java.lang.Number> {\n  public abstract T area() throws java.lang.Exception;\n}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := resolve(t, tt.path, tt.src)
			assert.Empty(t, s.diags.Diagnostics())
			assert.Equal(t, tt.want, PrintUnit(s.unit))
		})
	}
}

func TestPrintUnit_InitializersAndNesting(t *testing.T) {
	s := resolve(t, "Outer.java", "public class Outer {\n  static { }\n  { }\n  static class Inner { }\n}\n")
	assert.Equal(t, "public class Outer {\n  static {\n  }\n  {\n  }\n  public Outer() {\n  }\n  static class Inner {\n    Inner() {\n    }\n  }\n}\n",
		PrintUnit(s.unit))
}

func TestEmit_HostLanguageClass(t *testing.T) {
	s := resolve(t, "p/C.java", `package p;
import java.util.List;
public class C<T> {
  public static final int LIMIT = 10;
  private List<T> items;
  public void add(T item, String... tags) throws java.io.IOException {}
}
`)
	classes := s.emit(t)
	cf := classes["p/C"]
	require.NotNil(t, cf)

	assert.Equal(t, "C.java", cf.SourceFile)
	assert.Equal(t, models.ModPublic|AccSuper, cf.Access)
	assert.Equal(t, "java/lang/Object", cf.Super)
	assert.Empty(t, cf.Interfaces)
	assert.Equal(t, "<T:Ljava/lang/Object;>Ljava/lang/Object;", cf.Signature)
	assert.Equal(t, "p/C", poolEntry(cf.Pool, poolEntry(cf.Pool, cf.ThisIndex).Refs[0]).Value)

	limit := fieldNamed(cf, "LIMIT")
	require.NotNil(t, limit)
	assert.Equal(t, "I", limit.Descriptor)
	require.NotNil(t, limit.Constant)
	assert.Equal(t, "10", limit.Constant.Text)
	assert.Equal(t, TagInteger, poolEntry(cf.Pool, limit.Constant.Index).Tag)

	items := fieldNamed(cf, "items")
	require.NotNil(t, items)
	assert.Equal(t, models.ModPrivate, items.Access)
	assert.Equal(t, "Ljava/util/List;", items.Descriptor)
	assert.Equal(t, "Ljava/util/List<TT;>;", items.Signature)
	assert.Nil(t, items.Constant)
	assert.Equal(t, items.Descriptor, poolEntry(cf.Pool, items.DescriptorIndex).Value)

	add := methodNamed(cf, "add")
	require.NotNil(t, add)
	assert.Equal(t, models.ModPublic|AccVarargs, add.Access)
	assert.Equal(t, "(Ljava/lang/Object;[Ljava/lang/String;)V", add.Descriptor)
	assert.Equal(t, "(TT;[Ljava/lang/String;)V", add.Signature)
	assert.Equal(t, []string{"java/io/IOException"}, add.Exceptions)

	ctor := methodNamed(cf, "<init>")
	require.NotNil(t, ctor)
	assert.Equal(t, "()V", ctor.Descriptor)
	assert.Empty(t, ctor.Signature)

	text, err := Disassemble(cf)
	require.NoError(t, err)
	assert.Contains(t, text, "// Compiled from C.java (version 1.8 : 52.0, super bit)\n// Signature: <T:Ljava/lang/Object;>Ljava/lang/Object;\npublic class p.C {\n")
	assert.Contains(t, text, "  public static final int LIMIT = 10;\n")
	assert.Contains(t, text, "  // Signature: Ljava/util/List<TT;>;\n  private java.util.List items;\n")
	assert.Contains(t, text, "  public void add(java.lang.Object item, java.lang.String... tags) throws java.io.IOException;\n")
	assert.Contains(t, text, "  public p.C();\n")
}

func TestEmit_DynamicEnumWithBodies(t *testing.T) {
	s := resolve(t, "p/Op.groovy", `package p
enum Op {
  PLUS {
    int apply(int a, int b) { a + b }
  },
  MINUS {
    int apply(int a, int b) { a - b }
  }
  abstract int apply(int a, int b)
}
`)
	classes := s.emit(t)
	op := classes["p/Op"]
	require.NotNil(t, op)

	assert.Equal(t, models.ModPublic|models.ModAbstract|models.ModEnum|AccSuper, op.Access)
	assert.Equal(t, "java/lang/Enum", op.Super)
	assert.Equal(t, []string{"groovy/lang/GroovyObject"}, op.Interfaces)
	assert.Equal(t, "Ljava/lang/Enum<Lp/Op;>;Lgroovy/lang/GroovyObject;", op.Signature)

	plus := fieldNamed(op, "PLUS")
	require.NotNil(t, plus)
	assert.Equal(t, models.ModPublic|models.ModStatic|models.ModFinal|models.ModEnum, plus.Access)
	assert.Equal(t, "Lp/Op;", plus.Descriptor)
	assert.Nil(t, plus.Constant)

	values := fieldNamed(op, "$VALUES")
	require.NotNil(t, values)
	assert.Equal(t, "[Lp/Op;", values.Descriptor)
	assert.True(t, values.Access.Has(models.ModSynthetic))

	assert.Equal(t, "()[Lp/Op;", methodNamed(op, "values").Descriptor)
	assert.Equal(t, "(Ljava/lang/String;)Lp/Op;", methodNamed(op, "valueOf").Descriptor)
	assert.Equal(t, "()Lp/Op;", methodNamed(op, "next").Descriptor)
	assert.Equal(t, "(Ljava/lang/String;I)V", methodNamed(op, "<init>").Descriptor)
	clinit := methodNamed(op, "<clinit>")
	require.NotNil(t, clinit)
	assert.Equal(t, models.ModStatic, clinit.Access)
	assert.Equal(t, "()V", clinit.Descriptor)

	apply := methodNamed(op, "apply")
	require.NotNil(t, apply)
	assert.Equal(t, models.ModPublic|models.ModAbstract, apply.Access)
	assert.Equal(t, "(II)I", apply.Descriptor)

	require.Len(t, op.InnerClasses, 2)
	for i, name := range []string{"p/Op$1", "p/Op$2"} {
		ic := op.InnerClasses[i]
		assert.Equal(t, name, ic.Inner)
		assert.Empty(t, ic.Outer)
		assert.Empty(t, ic.Name)
		assert.Zero(t, ic.OuterIndex)
		assert.Equal(t, models.ModFinal|models.ModEnum, ic.Access)
	}

	body := classes["p/Op$1"]
	require.NotNil(t, body)
	assert.Equal(t, "p/Op", body.Super)
	assert.Equal(t, models.ModFinal|models.ModEnum|AccSuper, body.Access)
	assert.Equal(t, "(II)I", methodNamed(body, "apply").Descriptor)
	require.Len(t, body.InnerClasses, 1)
	assert.Equal(t, "p/Op$1", body.InnerClasses[0].Inner)

	text, err := Disassemble(op)
	require.NoError(t, err)
	assert.Contains(t, text, "public abstract enum p.Op extends java.lang.Enum implements groovy.lang.GroovyObject {\n")
	assert.Contains(t, text, "  static {}")
	assert.Contains(t, text, "accessflags: 16400 final enum]")
}

func TestEmit_NestedClassAccess(t *testing.T) {
	s := resolve(t, "p/Outer.java", `package p;
public class Outer {
  protected static class Shown { }
  private interface Hidden { void run(); }
}
`)
	classes := s.emit(t)

	shown := classes["p/Outer$Shown"]
	require.NotNil(t, shown)
	assert.Equal(t, models.ModPublic|AccSuper, shown.Access)

	hidden := classes["p/Outer$Hidden"]
	require.NotNil(t, hidden)
	assert.Equal(t, models.ModInterface|models.ModAbstract, hidden.Access)
	run := methodNamed(hidden, "run")
	require.NotNil(t, run)
	assert.True(t, run.Access.Has(models.ModAbstract))

	outer := classes["p/Outer"]
	require.Len(t, outer.InnerClasses, 2)
	assert.Equal(t, InnerClass{
		Inner:      "p/Outer$Shown",
		Outer:      "p/Outer",
		Name:       "Shown",
		Access:     models.ModProtected | models.ModStatic,
		InnerIndex: outer.InnerClasses[0].InnerIndex,
		OuterIndex: outer.ThisIndex,
		NameIndex:  outer.InnerClasses[0].NameIndex,
	}, outer.InnerClasses[0])
	assert.Equal(t, models.ModPrivate|models.ModStatic|models.ModInterface|models.ModAbstract, outer.InnerClasses[1].Access)
}

func TestEmit_AnnotationRetention(t *testing.T) {
	s := resolve(t, "A.groovy", `class A {
  @Deprecated
  String name() { 'a' }
  @Override
  String toString() { 'A' }
}
`)
	a := s.emit(t)["A"]
	require.NotNil(t, a)

	assert.Equal(t, []Annotation{{Type: "java.lang.Deprecated", Visible: true}}, methodNamed(a, "name").Annotations)
	assert.Empty(t, methodNamed(a, "toString").Annotations)
}

func TestConstantValue(t *testing.T) {
	tests := []struct {
		name string
		lit  *models.Literal
		typ  *types.Type
		text string
		tag  int
	}{
		{"int", &models.Literal{Kind: models.LitInt, Value: "42"}, types.Int, "42", TagInteger},
		{"hex int", &models.Literal{Kind: models.LitInt, Value: "0x1F"}, types.Int, "31", TagInteger},
		{"underscores", &models.Literal{Kind: models.LitInt, Value: "1_000"}, types.Int, "1000", TagInteger},
		{"long", &models.Literal{Kind: models.LitLong, Value: "7L"}, types.Long, "7L", TagLong},
		{"double", &models.Literal{Kind: models.LitDouble, Value: "2.5"}, types.Double, "2.5", TagDouble},
		{"float", &models.Literal{Kind: models.LitFloat, Value: "1.5f"}, types.Float, "1.5f", TagFloat},
		{"boolean", &models.Literal{Kind: models.LitBool, Value: "true"}, types.Boolean, "true", TagInteger},
		{"char", &models.Literal{Kind: models.LitChar, Value: "x"}, types.Char, "'x'", TagInteger},
		{"string", &models.Literal{Kind: models.LitString, Value: "a\"b"}, types.String, `"a\"b"`, TagString},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := NewConstantPool()
			c := constantValue(pool, tt.lit, tt.typ)
			assert.Equal(t, tt.text, c.Text)
			assert.Equal(t, tt.tag, poolEntry(pool, c.Index).Tag)
		})
	}
}

func TestConstantPool(t *testing.T) {
	pool := NewConstantPool()
	obj := pool.Class("java/lang/Object")
	assert.Equal(t, 2, obj)
	assert.Equal(t, obj, pool.Class("java/lang/Object"))
	assert.Equal(t, 1, pool.Utf8("java/lang/Object"))

	long := pool.Long(5)
	assert.Equal(t, 3, long)
	next := pool.Utf8("after")
	assert.Equal(t, 5, next)
	assert.Equal(t, 6, pool.Count())
	assert.Len(t, pool.Entries(), 4)
	assert.Equal(t, "after", poolEntry(pool, next).Value)

	s := pool.String("after")
	assert.Equal(t, []int{next}, poolEntry(pool, s).Refs)
}

func TestGenerator_Generate(t *testing.T) {
	s := resolve(t, "p/Op.java", "package p;\npublic enum Op { A, B; }\n")
	l := lowering.New(s.r)
	l.Lower()

	files, out, err := NewGenerator(s.table, 55).Generate(l.Types())
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Len(t, out, 1)

	assert.Equal(t, "p/Op", out[0].BinaryName)
	assert.Equal(t, "p/Op.class", out[0].FilePath)
	assert.Equal(t, "Op.java", out[0].SourceFile)
	assert.Contains(t, out[0].Disassembly, "(version 11 : 55.0, super bit)")
	assert.Contains(t, out[0].Disassembly, "public final enum p.Op extends java.lang.Enum {\n")
	assert.Empty(t, files[0].Interfaces)
}
