package annotations

// Qualified names of the markers the compiler acts on
const (
	AnnotationCollector = "groovy.transform.AnnotationCollector"
	PackageScope        = "groovy.transform.PackageScope"
	PackageScopeTarget  = "groovy.transform.PackageScopeTarget"
	InheritConstructors = "groovy.transform.InheritConstructors"
	Sortable            = "groovy.transform.Sortable"
	TypeChecked         = "groovy.transform.TypeChecked"
	CompileStatic       = "groovy.transform.CompileStatic"
	CompileDynamic      = "groovy.transform.CompileDynamic"
	TypeCheckingMode    = "groovy.transform.TypeCheckingMode"
	Delegate            = "groovy.lang.Delegate"
	Singleton           = "groovy.lang.Singleton"
	Category            = "groovy.lang.Category"
	Mixin               = "groovy.lang.Mixin"
	Log                 = "groovy.util.logging.Log"
	Slf4j               = "groovy.util.logging.Slf4j"
	Commons             = "groovy.util.logging.Commons"
	Log4j               = "groovy.util.logging.Log4j"
	Log4j2              = "groovy.util.logging.Log4j2"
)

// Built-in marker schemas

// AnnotationCollectorSchema describes @AnnotationCollector
var AnnotationCollectorSchema = Schema{
	Marker:      AnnotationCollector,
	Description: "Declares an annotation type standing for the annotations placed on it",
	Parameters: map[string]ParameterSpec{
		"value": ClassListParameterSpec(false, "Annotations collected in addition to those placed on the collector"),
	},
	Targets: []Target{TargetType},
	Examples: []string{
		"@AnnotationCollector([ToString, EqualsAndHashCode]) @interface Immutable {}",
		"@Singleton(lazy = true) @AnnotationCollector @interface LazySingleton {}",
	},
}

// PackageScopeSchema describes @PackageScope
var PackageScopeSchema = Schema{
	Marker:      PackageScope,
	Description: "Gives elements declared without a visibility package-private visibility",
	Parameters: map[string]ParameterSpec{
		"value": {
			Type:        EnumType,
			List:        true,
			Enum:        PackageScopeTarget,
			Constants:   []string{"CLASS", "METHODS", "FIELDS", "CONSTRUCTORS"},
			Description: "Member kinds affected when placed on a class; the class itself when empty",
		},
	},
	Targets: []Target{TargetType, TargetField, TargetMethod, TargetConstructor},
	Examples: []string{
		"@PackageScope class A {}",
		"@PackageScope([FIELDS, METHODS]) class A { String name }",
		"class A { @PackageScope String name }",
	},
}

// DelegateSchema describes @Delegate
var DelegateSchema = Schema{
	Marker:      Delegate,
	Description: "Adds forwarding methods for the public methods of the field type",
	Parameters: map[string]ParameterSpec{
		"interfaces":           BoolParameterSpec(true, "Implement the interfaces of the delegate type"),
		"deprecated":           BoolParameterSpec(false, "Also forward deprecated methods"),
		"methodAnnotations":    BoolParameterSpec(false, "Copy method annotations onto forwarders"),
		"parameterAnnotations": BoolParameterSpec(false, "Copy parameter annotations onto forwarders"),
		"includes":             IncludesParameterSpec(),
		"excludes":             ExcludesParameterSpec(),
		"includeTypes":         ClassListParameterSpec(false, "Interfaces whose methods are forwarded"),
		"excludeTypes":         ClassListParameterSpec(false, "Interfaces whose methods are not forwarded"),
	},
	Targets:    []Target{TargetField},
	Validators: []CustomValidator{IncludeExcludeValidator},
	Examples: []string{
		"@Delegate List<String> items",
		"@Delegate(interfaces = false, excludes = ['clear']) List<String> items",
	},
}

// SingletonSchema describes @Singleton
var SingletonSchema = Schema{
	Marker:      Singleton,
	Description: "Turns a class into a singleton reachable through a static holder",
	Parameters: map[string]ParameterSpec{
		"property": NameParameterSpec("instance", "Name of the holder field; the accessor is derived from it"),
		"lazy":     BoolParameterSpec(false, "Construct on first access instead of during class initialization"),
		"strict":   BoolParameterSpec(true, "Reject classes declaring their own constructors"),
	},
	Targets: []Target{TargetType},
	Examples: []string{
		"@Singleton class Registry {}",
		"@Singleton(lazy = true, property = 'shared') class Registry {}",
	},
}

// CategorySchema describes @Category
var CategorySchema = Schema{
	Marker:      Category,
	Description: "Turns instance methods into static category methods over the value class",
	Parameters: map[string]ParameterSpec{
		"value": {Type: ClassType, Description: "The class the category applies to"},
	},
	Targets:  []Target{TargetType},
	Examples: []string{"@Category(Integer) class Doubler { int twice() { this * 2 } }"},
}

// MixinSchema describes @Mixin
var MixinSchema = Schema{
	Marker:      Mixin,
	Description: "Adds the category methods of the given classes to the annotated class",
	Parameters: map[string]ParameterSpec{
		"value": ClassListParameterSpec(true, "Category classes to mix in"),
	},
	Targets:  []Target{TargetType},
	Examples: []string{"@Mixin(Doubler) class Calculator {}", "@Mixin([A, B]) class C {}"},
}

// InheritConstructorsSchema describes @InheritConstructors
var InheritConstructorsSchema = Schema{
	Marker:      InheritConstructors,
	Description: "Adds a constructor for each superclass constructor",
	Parameters: map[string]ParameterSpec{
		"constructorAnnotations": BoolParameterSpec(false, "Copy constructor annotations"),
		"parameterAnnotations":   BoolParameterSpec(false, "Copy parameter annotations"),
	},
	Targets:  []Target{TargetType},
	Examples: []string{"@InheritConstructors class MyException extends Exception {}"},
}

// SortableSchema describes @Sortable
var SortableSchema = Schema{
	Marker:      Sortable,
	Description: "Implements Comparable by comparing properties in declaration order",
	Parameters: map[string]ParameterSpec{
		"includes":               IncludesParameterSpec(),
		"excludes":               ExcludesParameterSpec(),
		"includeSuperProperties": BoolParameterSpec(false, "Also compare superclass properties first"),
	},
	Targets:    []Target{TargetType},
	Validators: []CustomValidator{IncludeExcludeValidator},
	Examples:   []string{"@Sortable class Person { String last; String first }", "@Sortable(includes = 'last') class Person {}"},
}

var checkerTargets = []Target{TargetType, TargetMethod, TargetConstructor}

// TypeCheckedSchema describes @TypeChecked
var TypeCheckedSchema = Schema{
	Marker:      TypeChecked,
	Description: "Enables static type checking of the annotated class or method",
	Parameters: map[string]ParameterSpec{
		"value":      CheckingModeParameterSpec(),
		"extensions": {Type: StringType, List: true, Description: "Type checking extension scripts"},
	},
	Targets:  checkerTargets,
	Examples: []string{"@TypeChecked class A {}", "@TypeChecked(TypeCheckingMode.SKIP) void dynamic() {}"},
}

// CompileStaticSchema describes @CompileStatic
var CompileStaticSchema = Schema{
	Marker:      CompileStatic,
	Description: "Enables static type checking and static compilation",
	Parameters: map[string]ParameterSpec{
		"value":      CheckingModeParameterSpec(),
		"extensions": {Type: StringType, List: true, Description: "Type checking extension scripts"},
	},
	Targets:  checkerTargets,
	Examples: []string{"@CompileStatic class A {}"},
}

// CompileDynamicSchema describes @CompileDynamic
var CompileDynamicSchema = Schema{
	Marker:      CompileDynamic,
	Description: "Suspends static compilation for the annotated member",
	Parameters:  map[string]ParameterSpec{},
	Targets:     checkerTargets,
	Examples:    []string{"@CompileDynamic def lookup() {}"},
}

// LoggerMarkers lists the logging markers in registration order
var LoggerMarkers = []string{Log, Slf4j, Commons, Log4j, Log4j2}

func loggerSchema(marker, framework string) Schema {
	return Schema{
		Marker:      marker,
		Description: "Injects a static " + framework + " logger field",
		Parameters:  LoggerParameters(),
		Targets:     []Target{TargetType},
		Examples:    []string{"@" + marker[len("groovy.util.logging."):] + " class Service {}"},
	}
}

// BuiltinSchemas returns the schemas of every built-in marker
func BuiltinSchemas() []Schema {
	schemas := []Schema{
		AnnotationCollectorSchema,
		PackageScopeSchema,
		DelegateSchema,
		SingletonSchema,
		CategorySchema,
		MixinSchema,
		InheritConstructorsSchema,
		SortableSchema,
		TypeCheckedSchema,
		CompileStaticSchema,
		CompileDynamicSchema,
	}
	frameworks := map[string]string{
		Log:     "java.util.logging",
		Slf4j:   "SLF4J",
		Commons: "Commons Logging",
		Log4j:   "Log4j",
		Log4j2:  "Log4j 2",
	}
	for _, marker := range LoggerMarkers {
		schemas = append(schemas, loggerSchema(marker, frameworks[marker]))
	}
	return schemas
}
