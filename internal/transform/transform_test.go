package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/jointc/internal/config"
	"github.com/toyz/jointc/internal/errors"
	"github.com/toyz/jointc/internal/library"
	"github.com/toyz/jointc/internal/models"
	"github.com/toyz/jointc/internal/parser"
	"github.com/toyz/jointc/internal/resolver"
)

type source struct {
	path string
	src  string
}

type fixture struct {
	units map[string]*models.CompilationUnit
	diags map[string]*errors.Collector
}

// transform resolves headers, runs the engine and resolves members
func transform(t *testing.T, sources ...source) *fixture {
	t.Helper()
	reg := parser.DefaultRegistry()
	table := resolver.NewSymbolTable(library.MustNew())
	s := &fixture{
		units: make(map[string]*models.CompilationUnit),
		diags: make(map[string]*errors.Collector),
	}
	var resolvers []*resolver.Resolver
	for _, src := range sources {
		unit, err := reg.Parse(src.path, src.src)
		require.NoError(t, err, src.path)
		c := errors.NewCollector(unit)
		s.units[src.path] = unit
		s.diags[src.path] = c
		table.Register(unit, c)
		resolvers = append(resolvers, resolver.New(table, unit, c, config.Default()))
	}
	for _, r := range resolvers {
		r.ResolveImports()
		r.ResolveHeaders()
	}
	NewEngine().Run(resolvers)
	for _, r := range resolvers {
		r.ResolveMembers()
	}
	return s
}

func (s *fixture) messages(path string) []string {
	var out []string
	for _, d := range s.diags[path].Diagnostics() {
		out = append(out, d.Text())
	}
	return out
}

func (s *fixture) typeNamed(path, name string) *models.Declaration {
	for _, d := range s.units[path].AllTypes() {
		if d.Name == name {
			return d
		}
	}
	return nil
}

func TestPackageScope(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want map[string]models.Modifiers
	}{
		{
			name: "fields target changes only the implicit field",
			src: `import groovy.transform.PackageScope
import groovy.transform.PackageScopeTarget

@PackageScope(PackageScopeTarget.FIELDS)
class Foo {
  String field1 = 'abc'
  public String field2 = 'def'
  protected String field3 = 'ghi'
  private String field4 = 'jkl'
}`,
			want: map[string]models.Modifiers{
				"field1": 0,
				"field2": models.ModPublic,
				"field3": models.ModProtected,
				"field4": models.ModPrivate,
			},
		},
		{
			name: "member marker",
			src: `import groovy.transform.PackageScope
class Foo {
  String field1
  @PackageScope String field2
}`,
			want: map[string]models.Modifiers{
				"field1": models.ModPrivate,
				"field2": 0,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := transform(t, source{"Foo.groovy", tt.src})
			assert.Empty(t, s.messages("Foo.groovy"))
			foo := s.typeNamed("Foo.groovy", "Foo")
			require.NotNil(t, foo)
			for name, vis := range tt.want {
				f := foo.Field(name)
				require.NotNil(t, f, name)
				assert.Equal(t, vis, f.Modifiers.Visibility(), name)
			}
		})
	}
}

func TestPackageScope_NoAccessorsForScopedField(t *testing.T) {
	s := transform(t, source{"Foo.groovy", `import groovy.transform.PackageScope
class Foo {
  String kept
  @PackageScope String hidden
}`})
	foo := s.typeNamed("Foo.groovy", "Foo")
	require.NotNil(t, foo)
	assert.Len(t, foo.MethodsNamed("getKept"), 1)
	assert.Len(t, foo.MethodsNamed("setKept"), 1)
	assert.Empty(t, foo.MethodsNamed("getHidden"))
}

func TestSingleton(t *testing.T) {
	t.Run("eager", func(t *testing.T) {
		s := transform(t, source{"S.groovy", `@Singleton class S { String name }`})
		assert.Empty(t, s.messages("S.groovy"))
		d := s.typeNamed("S.groovy", "S")
		require.NotNil(t, d)

		holder := d.Members[0]
		assert.Equal(t, "instance", holder.Name)
		assert.Equal(t, models.ModPublic|models.ModStatic|models.ModFinal, holder.Modifiers)
		assert.IsType(t, &models.New{}, holder.Init)

		getters := d.MethodsNamed("getInstance")
		require.Len(t, getters, 1)
		assert.True(t, getters[0].IsStatic())

		ctors := d.Constructors()
		require.Len(t, ctors, 1)
		assert.True(t, ctors[0].Modifiers.Has(models.ModPrivate))
	})

	t.Run("lazy", func(t *testing.T) {
		s := transform(t, source{"S.groovy", `@Singleton(lazy = true, property = 'shared') class S {}`})
		assert.Empty(t, s.messages("S.groovy"))
		d := s.typeNamed("S.groovy", "S")
		require.NotNil(t, d)

		holder := d.Field("shared")
		require.NotNil(t, holder)
		assert.Equal(t, models.ModPrivate|models.ModStatic|models.ModVolatile, holder.Modifiers)
		assert.Nil(t, holder.Init)

		getters := d.MethodsNamed("getShared")
		require.Len(t, getters, 1)
		var constructs bool
		models.Inspect(getters[0].Body, func(n models.Node) bool {
			if _, ok := n.(*models.Sync); ok {
				models.Inspect(n, func(inner models.Node) bool {
					if _, ok := inner.(*models.New); ok {
						constructs = true
					}
					return true
				})
				return false
			}
			return true
		})
		assert.True(t, constructs, "instance must be created inside the synchronized block")
	})

	t.Run("strict rejects constructors", func(t *testing.T) {
		s := transform(t, source{"S.groovy", `@Singleton class S { S() {} }`})
		assert.Equal(t, []string{
			"Groovy:@Singleton didn't expect to find one or more additional constructors: remove constructor(s) or set strict=false",
		}, s.messages("S.groovy"))
	})

	t.Run("non-strict keeps constructors", func(t *testing.T) {
		s := transform(t, source{"S.groovy", `@Singleton(strict = false) class S { private S() { print 'ctor ' } }`})
		assert.Empty(t, s.messages("S.groovy"))
		d := s.typeNamed("S.groovy", "S")
		require.NotNil(t, d)
		require.Len(t, d.Constructors(), 1)
		assert.False(t, d.Constructors()[0].Generated)
	})
}

func TestDelegate(t *testing.T) {
	s := transform(t, source{"Car.groovy", `class Engine {
  void start() {}
  int speed(int gear) { gear * 10 }
}
class Car {
  @Delegate Engine engine
  void start(boolean force) {}
}`})
	assert.Empty(t, s.messages("Car.groovy"))
	car := s.typeNamed("Car.groovy", "Car")
	require.NotNil(t, car)

	starts := car.MethodsNamed("start")
	assert.Len(t, starts, 2)
	speed := car.MethodsNamed("speed")
	require.Len(t, speed, 1)
	assert.True(t, speed[0].Generated)
	assert.Equal(t, "int", speed[0].Return.Type().String())
	require.Len(t, speed[0].Params, 1)
	assert.Equal(t, "gear", speed[0].Params[0].Name)

	ret, ok := speed[0].Body.Stmts[0].(*models.Return)
	require.True(t, ok)
	call, ok := ret.X.(*models.Call)
	require.True(t, ok)
	assert.Equal(t, "speed", call.Name)
	recv, ok := call.X.(*models.FieldAccess)
	require.True(t, ok)
	assert.Equal(t, "engine", recv.Name)
}

func TestDelegate_Excludes(t *testing.T) {
	s := transform(t, source{"Car.groovy", `class Engine {
  void start() {}
  void stop() {}
}
class Car {
  @Delegate(excludes = ['stop']) Engine engine
}`})
	car := s.typeNamed("Car.groovy", "Car")
	require.NotNil(t, car)
	assert.Len(t, car.MethodsNamed("start"), 1)
	assert.Empty(t, car.MethodsNamed("stop"))
}

func TestInheritConstructors(t *testing.T) {
	s := transform(t, source{"MyException.groovy", `import groovy.transform.InheritConstructors
@InheritConstructors
class MyException extends RuntimeException {}`})
	assert.Empty(t, s.messages("MyException.groovy"))
	d := s.typeNamed("MyException.groovy", "MyException")
	require.NotNil(t, d)

	ctors := d.Constructors()
	require.Len(t, ctors, 4)
	var sigs []string
	for _, c := range ctors {
		sigs = append(sigs, c.Signature())
		call, ok := c.Body.Stmts[0].(*models.CtorCall)
		require.True(t, ok)
		assert.True(t, call.Super)
		assert.Len(t, call.Args, len(c.Params))
	}
	assert.Contains(t, sigs, "MyException(java.lang.String,java.lang.Throwable)")
	assert.Contains(t, sigs, "MyException()")
}

func TestCategory(t *testing.T) {
	t.Run("missing value", func(t *testing.T) {
		s := transform(t, source{"C.groovy", `@Category class C { def foo() {} }`})
		assert.Equal(t, []string{
			"Groovy:@groovy.lang.Category must define 'value' which is the class to apply this category to",
		}, s.messages("C.groovy"))
	})

	t.Run("non-class value", func(t *testing.T) {
		s := transform(t, source{"C.groovy", `@Category('x') class C { def foo() {} }`})
		assert.Equal(t, []string{
			"Groovy:Only classes and closures can be used for attribute 'value' in @groovy.lang.Category",
		}, s.messages("C.groovy"))
	})

	t.Run("instance methods become static", func(t *testing.T) {
		s := transform(t, source{"Doubler.groovy", `@Category(Integer) class Doubler {
  int twice() { this * 2 }
}`})
		assert.Empty(t, s.messages("Doubler.groovy"))
		d := s.typeNamed("Doubler.groovy", "Doubler")
		require.NotNil(t, d)
		twice := d.MethodsNamed("twice")
		require.Len(t, twice, 1)
		assert.True(t, twice[0].IsStatic())
		require.Len(t, twice[0].Params, 1)
		assert.Equal(t, "self", twice[0].Params[0].Name)
		assert.Equal(t, "java.lang.Integer", twice[0].Params[0].Type.Type().String())

		var sawThis, sawSelf bool
		models.Inspect(twice[0].Body, func(n models.Node) bool {
			switch x := n.(type) {
			case *models.This:
				sawThis = true
			case *models.Ident:
				if x.Name == "self" {
					sawSelf = true
				}
			}
			return true
		})
		assert.False(t, sawThis)
		assert.True(t, sawSelf)
	})
}

func TestMixin(t *testing.T) {
	s := transform(t,
		source{"Vehicle.java", `public interface Vehicle { String getName(); }`},
		source{"Bond.groovy", `@Category(Vehicle) class FlyingAbility {
  def fly() { "I'm the ${name} and I fly!" }
}
@Category(Vehicle) class DivingAbility {
  def dive() { "I'm the ${name} and I dive!" }
}
@Mixin([DivingAbility, FlyingAbility])
class JamesBondVehicle implements Vehicle {
  String getName() { "James Bond's vehicle" }
}`},
	)
	assert.Empty(t, s.messages("Bond.groovy"))
	bond := s.typeNamed("Bond.groovy", "JamesBondVehicle")
	require.NotNil(t, bond)
	for _, name := range []string{"fly", "dive"} {
		ms := bond.MethodsNamed(name)
		require.Len(t, ms, 1, name)
		assert.False(t, ms[0].IsStatic())
		assert.Empty(t, ms[0].Params)
	}
}

func TestLogger(t *testing.T) {
	tests := []struct {
		name   string
		marker string
		logger string
	}{
		{"jul", "Log", "java.util.logging.Logger"},
		{"slf4j", "Slf4j", "org.slf4j.Logger"},
		{"commons", "Commons", "org.apache.commons.logging.Log"},
		{"log4j", "Log4j", "org.apache.log4j.Logger"},
		{"log4j2", "Log4j2", "org.apache.logging.log4j.Logger"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "import groovy.util.logging.*\n@" + tt.marker + "\nclass Service {\n  def meth() { log.info('yay!') }\n}"
			s := transform(t, source{"Service.groovy", src})
			assert.Empty(t, s.messages("Service.groovy"))
			d := s.typeNamed("Service.groovy", "Service")
			require.NotNil(t, d)
			f := d.Field("log")
			require.NotNil(t, f)
			assert.Equal(t, tt.logger, f.Type.Type().String())
			assert.True(t, f.Modifiers.Has(models.ModPrivate|models.ModStatic|models.ModFinal|models.ModTransient))
			call, ok := f.Init.(*models.Call)
			require.True(t, ok)
			require.Len(t, call.Args, 1)
			assert.Equal(t, "Service", call.Args[0].(*models.Literal).Value)
		})
	}

	t.Run("custom name and category", func(t *testing.T) {
		s := transform(t, source{"Service.groovy", `@groovy.util.logging.Slf4j(value = 'logger', category = 'audit')
class Service {}`})
		d := s.typeNamed("Service.groovy", "Service")
		require.NotNil(t, d)
		f := d.Field("logger")
		require.NotNil(t, f)
		assert.Equal(t, "audit", f.Init.(*models.Call).Args[0].(*models.Literal).Value)
	})

	t.Run("existing field", func(t *testing.T) {
		s := transform(t, source{"Service.groovy", `@groovy.util.logging.Log
class Service { def log }`})
		assert.Equal(t, []string{
			"Groovy:Class annotated with Log annotation cannot have log field declared",
		}, s.messages("Service.groovy"))
	})
}

func TestSortable(t *testing.T) {
	t.Run("compares properties", func(t *testing.T) {
		s := transform(t, source{"Person.groovy", `import groovy.transform.Sortable
@Sortable(excludes = 'age') class Person {
  String last
  String first
  int age
}`})
		assert.Empty(t, s.messages("Person.groovy"))
		d := s.typeNamed("Person.groovy", "Person")
		require.NotNil(t, d)

		var comparable bool
		for _, i := range d.Interfaces {
			if i.Type().String() == "java.lang.Comparable<Person>" {
				comparable = true
			}
		}
		assert.True(t, comparable)

		cmp := d.MethodsNamed("compareTo")
		require.Len(t, cmp, 1)
		var compared []string
		models.Inspect(cmp[0].Body, func(n models.Node) bool {
			if b, ok := n.(*models.Binary); ok && b.Op == "<=>" {
				compared = append(compared, b.X.(*models.FieldAccess).Name)
			}
			return true
		})
		assert.Equal(t, []string{"last", "first"}, compared)
	})

	t.Run("non comparable property", func(t *testing.T) {
		s := transform(t, source{"Person.groovy", `import groovy.transform.Sortable
@Sortable class Person {
  String name
  def data
}`})
		assert.Equal(t, []string{
			"Groovy:Error during @Sortable processing: property 'data' must be Comparable",
		}, s.messages("Person.groovy"))
	})
}

func TestAnnotationCollector(t *testing.T) {
	s := transform(t, source{"Foo.groovy", `import groovy.transform.AnnotationCollector
import groovy.transform.PackageScope

@PackageScope
@AnnotationCollector
@interface Internal {}

@Internal
class Foo {}`})
	assert.Empty(t, s.messages("Foo.groovy"))
	foo := s.typeNamed("Foo.groovy", "Foo")
	require.NotNil(t, foo)
	require.Len(t, foo.Annotations, 1)
	assert.Equal(t, "groovy.transform.PackageScope", foo.Annotations[0].QualifiedName)
	assert.Equal(t, "Internal", foo.Annotations[0].ExpandedFrom)
	assert.True(t, foo.Modifiers.IsPackagePrivate())
}

func TestAnnotationCollector_UnmappedNames(t *testing.T) {
	s := transform(t, source{"Foo.groovy", `import groovy.transform.AnnotationCollector
@Singleton
@AnnotationCollector
@interface Single {}

@Single(lazy = true, colour = 'red')
class Foo {}`})
	assert.Contains(t, s.messages("Foo.groovy"), "Groovy:Annotation collector got unmapped names [colour].")
	foo := s.typeNamed("Foo.groovy", "Foo")
	require.NotNil(t, foo)
	holder := foo.Field("instance")
	require.NotNil(t, holder)
	assert.True(t, holder.Modifiers.Has(models.ModVolatile))
}

func TestVerify(t *testing.T) {
	t.Run("default constructor placement", func(t *testing.T) {
		s := transform(t, source{"A.groovy", `class A {
  String name
  def run() {}
}`})
		a := s.typeNamed("A.groovy", "A")
		require.NotNil(t, a)
		require.Len(t, a.Constructors(), 1)
		assert.Equal(t, models.KindConstructor, a.Members[1].Kind)
		assert.True(t, a.Members[1].Modifiers.Has(models.ModPublic))
	})

	t.Run("enum constructor is private", func(t *testing.T) {
		s := transform(t, source{"E.groovy", `enum E { A, B }`})
		e := s.typeNamed("E.groovy", "E")
		require.NotNil(t, e)
		require.Len(t, e.Constructors(), 1)
		assert.True(t, e.Constructors()[0].Modifiers.Has(models.ModPrivate))
	})

	t.Run("java class gets class visibility", func(t *testing.T) {
		s := transform(t, source{"p/J.java", `package p; class J { int x; }`})
		j := s.typeNamed("p/J.java", "J")
		require.NotNil(t, j)
		require.Len(t, j.Constructors(), 1)
		assert.True(t, j.Constructors()[0].Modifiers.IsPackagePrivate())
		assert.Empty(t, j.MethodsNamed("getX"))
	})

	t.Run("final property has no setter", func(t *testing.T) {
		s := transform(t, source{"A.groovy", `class A {
  final String id = 'x'
  boolean active
}`})
		a := s.typeNamed("A.groovy", "A")
		require.NotNil(t, a)
		assert.Len(t, a.MethodsNamed("getId"), 1)
		assert.Empty(t, a.MethodsNamed("setId"))
		assert.Len(t, a.MethodsNamed("isActive"), 1)
		assert.Len(t, a.MethodsNamed("setActive"), 1)
	})

	t.Run("default arguments", func(t *testing.T) {
		s := transform(t, source{"A.groovy", `class A {
  String greet(String who, String greeting = 'Hello', int times = 1) { greeting + who }
  def other() {}
}`})
		a := s.typeNamed("A.groovy", "A")
		require.NotNil(t, a)
		var sigs []string
		for _, m := range a.Methods() {
			sigs = append(sigs, m.Signature())
		}
		assert.Equal(t, []string{
			"greet(java.lang.String,java.lang.String,int)",
			"greet(java.lang.String,java.lang.String)",
			"greet(java.lang.String)",
			"other()",
		}, sigs)
	})

	t.Run("script shape", func(t *testing.T) {
		s := transform(t, source{"A.groovy", `def x = 1
println x
x + 1`})
		a := s.typeNamed("A.groovy", "A")
		require.NotNil(t, a)
		assert.Equal(t, "groovy.lang.Script", a.Super.Type().String())
		ctors := a.Constructors()
		require.Len(t, ctors, 2)
		assert.Equal(t, "A(groovy.lang.Binding)", ctors[1].Signature())

		main := a.MethodsNamed("main")
		require.Len(t, main, 1)
		assert.True(t, main[0].IsStatic())
		assert.True(t, main[0].IsVarargs())

		run := a.MethodsNamed("run")
		require.Len(t, run, 1)
		stmts := run[0].Body.Stmts
		require.Len(t, stmts, 3)
		assert.IsType(t, &models.Return{}, stmts[2])
		assert.Nil(t, a.Body)
	})
}

func TestEngine_Register(t *testing.T) {
	e := NewEngine()
	assert.True(t, e.Handles("groovy.lang.Singleton"))
	assert.False(t, e.Handles("com.example.Custom"))

	calls := 0
	require.NoError(t, e.Register("com.example.Custom", TransformFunc(func(ctx *Context, target *models.Declaration, marker *models.Annotation) error {
		calls++
		return nil
	})))
	assert.True(t, e.Handles("com.example.Custom"))
	assert.Error(t, e.Register("com.example.Custom", TransformFunc(func(*Context, *models.Declaration, *models.Annotation) error { return nil })))
	assert.Zero(t, calls)
}
