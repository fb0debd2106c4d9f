package library

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/jointc/internal/models"
	"github.com/toyz/jointc/internal/types"
)

func TestCatalogEntriesParse(t *testing.T) {
	entries, err := decode(builtinCatalog)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for name, e := range entries {
		for _, src := range e.Members {
			_, err := parseMember(src)
			assert.NoError(t, err, "%s: %s", name, src)
		}
		if e.Extends != "" {
			_, err := parseType(e.Extends)
			assert.NoError(t, err, "%s extends %s", name, e.Extends)
		}
		for _, iface := range e.Implements {
			_, err := parseType(iface)
			assert.NoError(t, err, "%s implements %s", name, iface)
		}
	}
}

func TestCatalogReferencesResolve(t *testing.T) {
	cat := MustNew()
	for name := range cat.entries {
		d := cat.Lookup(name)
		require.NotNil(t, d, name)
		if d.Super != nil {
			assert.NotNil(t, d.Super.Decl, "%s super %s", name, d.Super.Type())
		}
		for _, iface := range d.Interfaces {
			assert.NotNil(t, iface.Decl, "%s implements %s", name, iface.Type())
		}
	}
}

func TestLookupArrayList(t *testing.T) {
	cat := MustNew()

	d := cat.Lookup("java.util.ArrayList")
	require.NotNil(t, d)
	assert.Equal(t, models.KindClass, d.Kind)
	assert.Equal(t, "java/util/ArrayList", d.BinaryName)
	assert.Equal(t, models.OriginLibrary, d.Origin)
	require.Len(t, d.TypeParams, 1)
	assert.Equal(t, "E", d.TypeParams[0].Name)

	assert.Equal(t, "java.util.AbstractList<E>", d.Super.Type().String())
	require.NotNil(t, d.Super.Decl)
	assert.Equal(t, "java.util.AbstractList", d.Super.Decl.QualifiedName)

	adds := d.MethodsNamed("add")
	require.Len(t, adds, 2)
	assert.Equal(t, "add(java.lang.Object)", adds[0].Signature())
	assert.Equal(t, types.Boolean, adds[0].ReturnType())
	assert.Equal(t, "add(int,java.lang.Object)", adds[1].Signature())

	ctors := d.Constructors()
	require.Len(t, ctors, 3)
	assert.Empty(t, ctors[0].Params)
	assert.Equal(t, "java.util.Collection<? extends E>", ctors[2].Params[0].Type.Type().String())
}

func TestLookupUnknown(t *testing.T) {
	cat := MustNew()
	assert.Nil(t, cat.Lookup("com.example.Missing"))
	assert.False(t, cat.Has("com.example.Missing"))
	assert.True(t, cat.HasPackage("groovy.transform"))
	assert.Contains(t, cat.PackageTypes("java.util"), "java.util.ArrayList")
	assert.NotContains(t, cat.PackageTypes("java.util"), "java.util.Map.Entry")
}

func TestLookupBuildsOnce(t *testing.T) {
	cat := MustNew()

	var wg sync.WaitGroup
	results := make([]*models.Declaration, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = cat.Lookup("java.util.HashMap")
		}(i)
	}
	wg.Wait()

	for _, d := range results {
		assert.Same(t, results[0], d)
	}
	before := cat.Builds()
	cat.Lookup("java.util.HashMap")
	assert.Equal(t, before, cat.Builds())
}

func TestSessionsDoNotShareNodes(t *testing.T) {
	a := MustNew().Lookup("java.lang.String")
	b := MustNew().Lookup("java.lang.String")
	require.NotNil(t, a)
	assert.NotSame(t, a, b)
}

func TestSelfReferentialTypes(t *testing.T) {
	cat := MustNew()

	// Enum<E extends Enum<E>> refers to itself while its members are built
	enum := cat.Lookup("java.lang.Enum")
	require.NotNil(t, enum)
	require.Len(t, enum.TypeParams, 1)
	assert.Equal(t, "java.lang.Enum<E>", enum.TypeParams[0].Bounds[0].Type().String())

	// Comparable<String> on String points back at String through its argument
	str := cat.Lookup("java.lang.String")
	var comparable *models.TypeRef
	for _, iface := range str.Interfaces {
		if iface.Type().Name == types.ComparableName {
			comparable = iface
		}
	}
	require.NotNil(t, comparable)
	assert.Equal(t, "java.lang.Comparable<java.lang.String>", comparable.Type().String())
	assert.Same(t, cat.Lookup("java.lang.Comparable"), comparable.Decl)
}

func TestCyclicCatalog(t *testing.T) {
	cat, err := Parse([]byte(`
- class: p.A
  extends: p.B
- class: p.B
  extends: p.A
`))
	require.NoError(t, err)

	a := cat.Lookup("p.A")
	require.NotNil(t, a)
	b := a.Super.Decl
	require.NotNil(t, b)
	assert.Equal(t, "p.B", b.QualifiedName)
	assert.Same(t, a, b.Super.Decl)
	assert.Equal(t, 2, cat.Builds())
}

func TestNestedTypes(t *testing.T) {
	cat := MustNew()

	entry := cat.Lookup("java.util.Map.Entry")
	require.NotNil(t, entry)
	assert.Equal(t, "java/util/Map$Entry", entry.BinaryName)
	assert.True(t, entry.IsInterface())
	assert.True(t, entry.IsStatic())

	m := cat.Lookup("java.util.Map")
	assert.Same(t, m, entry.Owner)
	assert.Same(t, entry, m.NestedType("Entry"))

	entrySet := m.MethodsNamed("entrySet")[0]
	assert.Equal(t, "java.util.Set<java.util.Map.Entry<K, V>>", entrySet.ReturnType().String())
}

func TestEnumsAndAnnotations(t *testing.T) {
	cat := MustNew()

	target := cat.Lookup("groovy.transform.PackageScopeTarget")
	require.NotNil(t, target)
	assert.Equal(t, models.KindEnum, target.Kind)
	require.Len(t, target.Constants, 4)
	assert.Equal(t, "FIELDS", target.Constants[2].Name)
	assert.Equal(t, 2, target.Constants[2].Ordinal)
	field := target.Field("METHODS")
	require.NotNil(t, field)
	assert.True(t, field.Modifiers.Has(models.ModPublic|models.ModStatic|models.ModFinal|models.ModEnum))
	assert.Equal(t, "java.lang.Enum<groovy.transform.PackageScopeTarget>", target.Super.Type().String())

	singleton := cat.Lookup("groovy.lang.Singleton")
	require.NotNil(t, singleton)
	assert.Equal(t, models.KindAnnotation, singleton.Kind)
	lazy := singleton.MethodsNamed("lazy")
	require.Len(t, lazy, 1)
	assert.True(t, lazy[0].IsAbstract())
	assert.True(t, lazy[0].Modifiers.Has(models.ModPublic))
	assert.Equal(t, "java.lang.annotation.Annotation", singleton.Interfaces[0].Type().String())

	assert.Equal(t, []string{"groovy.transform.CompileStatic(groovy.transform.TypeCheckingMode.SKIP)"}, cat.Collects("groovy.transform.CompileDynamic"))

	deprecated := cat.Lookup("java.lang.Deprecated")
	retention := models.FindAnnotation(deprecated.Annotations, "java.lang.annotation.Retention")
	require.NotNil(t, retention)
	value, ok := retention.Arg("value")
	require.True(t, ok)
	assert.Equal(t, "RUNTIME", value.(*models.FieldAccess).Name)
	assert.Nil(t, models.FindAnnotation(cat.Lookup("java.lang.annotation.RetentionPolicy").Annotations, "java.lang.annotation.Retention"))
}

func TestDeprecatedAndVarargs(t *testing.T) {
	cat := MustNew()

	date := cat.Lookup("java.util.Date")
	getYear := date.MethodsNamed("getYear")
	require.Len(t, getYear, 1)
	assert.True(t, getYear[0].Deprecated)
	assert.False(t, date.MethodsNamed("getTime")[0].Deprecated)

	format := cat.Lookup("java.lang.String").MethodsNamed("format")
	require.Len(t, format, 1)
	assert.True(t, format[0].IsStatic())
	assert.True(t, format[0].IsVarargs())
	assert.Equal(t, "format(java.lang.String,java.lang.Object[])", format[0].Signature())
}

func TestInterfaceMemberDefaults(t *testing.T) {
	cat := MustNew()

	list := cat.Lookup("java.util.List")
	get := list.MethodsNamed("get")[0]
	assert.True(t, get.Modifiers.Has(models.ModPublic|models.ModAbstract))

	of := list.MethodsNamed("of")[0]
	assert.True(t, of.IsStatic())
	assert.False(t, of.IsAbstract())
	require.Len(t, of.TypeParams, 1)

	iter := cat.Lookup("java.util.Iterator")
	remove := iter.MethodsNamed("remove")[0]
	assert.True(t, remove.Modifiers.Has(models.ModDefault))
	assert.False(t, remove.IsAbstract())
}

func TestExtensionClasses(t *testing.T) {
	cat := MustNew()
	for _, name := range ExtensionClasses {
		d := cat.Lookup(name)
		require.NotNil(t, d, name)
		for _, m := range d.Methods() {
			assert.True(t, m.IsStatic(), "%s#%s", name, m.Name)
			assert.NotEmpty(t, m.Params, "%s#%s", name, m.Name)
		}
	}
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("- class: [broken"))
	assert.Error(t, err)

	_, err = Parse([]byte("- class: p.A\n- class: p.A\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("- class: 'p.A<'\n"))
	assert.Error(t, err)
}
