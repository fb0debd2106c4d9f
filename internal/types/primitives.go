package types

// Well-known qualified names
const (
	ObjectName     = "java.lang.Object"
	StringName     = "java.lang.String"
	ClassName      = "java.lang.Class"
	EnumName       = "java.lang.Enum"
	ComparableName = "java.lang.Comparable"
	NumberName     = "java.lang.Number"
	ClosureName    = "groovy.lang.Closure"
	GStringName    = "groovy.lang.GString"
	ListName       = "java.util.List"
	ArrayListName  = "java.util.ArrayList"
	MapName        = "java.util.Map"
	HashMapName    = "java.util.LinkedHashMap"
	RangeName      = "groovy.lang.Range"
	BigDecimalName = "java.math.BigDecimal"
	BigIntegerName = "java.math.BigInteger"
)

// Shared descriptors. They are never mutated.
var (
	Void    = &Type{Kind: KindPrimitive, Name: "void"}
	Boolean = &Type{Kind: KindPrimitive, Name: "boolean"}
	Byte    = &Type{Kind: KindPrimitive, Name: "byte"}
	Char    = &Type{Kind: KindPrimitive, Name: "char"}
	Short   = &Type{Kind: KindPrimitive, Name: "short"}
	Int     = &Type{Kind: KindPrimitive, Name: "int"}
	Long    = &Type{Kind: KindPrimitive, Name: "long"}
	Float   = &Type{Kind: KindPrimitive, Name: "float"}
	Double  = &Type{Kind: KindPrimitive, Name: "double"}
	Null    = &Type{Kind: KindNull}

	Object     = Class(ObjectName)
	String     = Class(StringName)
	GString    = Class(GStringName)
	Closure    = Class(ClosureName)
	BigDecimal = Class(BigDecimalName)
	BigInteger = Class(BigIntegerName)
)

var primitives = map[string]*Type{
	"void": Void, "boolean": Boolean, "byte": Byte, "char": Char, "short": Short,
	"int": Int, "long": Long, "float": Float, "double": Double,
}

var boxes = map[string]string{
	"boolean": "java.lang.Boolean",
	"byte":    "java.lang.Byte",
	"char":    "java.lang.Character",
	"short":   "java.lang.Short",
	"int":     "java.lang.Integer",
	"long":    "java.lang.Long",
	"float":   "java.lang.Float",
	"double":  "java.lang.Double",
	"void":    "java.lang.Void",
}

var unboxes = func() map[string]*Type {
	m := make(map[string]*Type, len(boxes))
	for prim, box := range boxes {
		m[box] = primitives[prim]
	}
	return m
}()

// numeric widening rank; char widens like an unsigned short into int and above
var numericRank = map[string]int{
	"byte": 1, "short": 2, "char": 2, "int": 3, "long": 4, "float": 5, "double": 6,
}

// Primitive returns the primitive descriptor for a keyword
func Primitive(name string) (*Type, bool) {
	t, ok := primitives[name]
	return t, ok
}

// Box returns the wrapper class of a primitive, or t unchanged
func Box(t *Type) *Type {
	if t.IsPrimitive() {
		return Class(boxes[t.Name])
	}
	return t
}

// Unbox returns the primitive of a wrapper class, or t unchanged
func Unbox(t *Type) *Type {
	if t != nil && t.Kind == KindClass {
		if p, ok := unboxes[t.Name]; ok {
			return p
		}
	}
	return t
}

// IsBoxed reports whether t is a primitive wrapper class
func IsBoxed(t *Type) bool {
	if t == nil || t.Kind != KindClass {
		return false
	}
	_, ok := unboxes[t.Name]
	return ok
}

// IsNumeric reports whether t is a numeric primitive or wrapper
func IsNumeric(t *Type) bool {
	p := Unbox(t)
	if p.IsPrimitive() {
		_, ok := numericRank[p.Name]
		return ok
	}
	return t != nil && t.Kind == KindClass && (t.Name == BigDecimalName || t.Name == BigIntegerName || t.Name == NumberName)
}

// NumericRank returns the widening rank of a numeric primitive, zero otherwise
func NumericRank(t *Type) int {
	if !t.IsPrimitive() {
		return 0
	}
	return numericRank[t.Name]
}

// WidensTo reports whether primitive from converts to primitive to without loss
func WidensTo(from, to *Type) bool {
	if !from.IsPrimitive() || !to.IsPrimitive() {
		return false
	}
	if from.Name == to.Name {
		return true
	}
	rf, rt := numericRank[from.Name], numericRank[to.Name]
	if rf == 0 || rt == 0 {
		return false
	}
	if to.Name == "char" {
		return false
	}
	if from.Name == "char" {
		return rt >= 3
	}
	return rf < rt
}
