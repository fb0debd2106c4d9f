package annotations

import (
	"strconv"

	"github.com/toyz/jointc/internal/models"
	"github.com/toyz/jointc/internal/types"
)

// ParameterType is the value kind an annotation member accepts
type ParameterType int

const (
	StringType ParameterType = iota
	BoolType
	IntType
	ClassType
	EnumType
)

// String returns the boxed Java type name of the parameter type
func (p ParameterType) String() string {
	switch p {
	case StringType:
		return types.StringName
	case BoolType:
		return "java.lang.Boolean"
	case IntType:
		return "java.lang.Integer"
	case ClassType:
		return types.ClassName
	case EnumType:
		return types.EnumName
	default:
		return "unknown"
	}
}

// Target is the kind of element a marker is placed on, named like
// java.lang.annotation.ElementType
type Target string

const (
	TargetType        Target = "TYPE"
	TargetField       Target = "FIELD"
	TargetMethod      Target = "METHOD"
	TargetConstructor Target = "CONSTRUCTOR"
	TargetParameter   Target = "PARAMETER"
)

// TargetOf returns the element kind of a declaration
func TargetOf(d *models.Declaration) Target {
	switch d.Kind {
	case models.KindField:
		return TargetField
	case models.KindMethod:
		return TargetMethod
	case models.KindConstructor:
		return TargetConstructor
	}
	return TargetType
}

// ParameterSpec defines one annotation member
type ParameterSpec struct {
	Type ParameterType
	// List accepts an array value; a single value is promoted to a one-element list
	List         bool
	Required     bool
	DefaultValue interface{}
	Description  string
	// Enum is the qualified enum type for EnumType members
	Enum string
	// Constants lists the accepted constants of Enum
	Constants []string
	Validator func(interface{}) error
}

// TypeName renders the member type the way attribute mismatches report it
func (p ParameterSpec) TypeName() string {
	name := p.Type.String()
	if p.Type == EnumType && p.Enum != "" {
		name = p.Enum
	}
	if p.List {
		return name + "[]"
	}
	return name
}

// CustomValidator checks a bound marker as a whole
type CustomValidator func(*ParsedMarker) error

// Schema describes the members of one marker annotation
type Schema struct {
	// Marker is the qualified annotation type name
	Marker      string
	Description string
	Parameters  map[string]ParameterSpec
	Targets     []Target
	Validators  []CustomValidator
	Examples    []string
}

// Allows reports whether the marker may be placed on target
func (s *Schema) Allows(target Target) bool {
	if len(s.Targets) == 0 {
		return true
	}
	for _, t := range s.Targets {
		if t == target {
			return true
		}
	}
	return false
}

// SimpleName returns the unqualified marker name
func (s *Schema) SimpleName() string { return types.SimpleName(s.Marker) }

// ClassValue is a class literal argument, or a class named without .class
type ClassValue struct {
	Ref  *models.TypeRef
	Span models.Span
}

// EnumValue is an enum constant argument such as PackageScopeTarget.FIELDS
type EnumValue struct {
	Type string
	Name string
	Span models.Span
}

// nameValue is a bare dotted name whose meaning depends on the member type
type nameValue struct {
	Name string
	Span models.Span
}

// ParsedMarker is a marker bound to its schema with typed parameter values
type ParsedMarker struct {
	Marker     *models.Annotation
	Schema     *Schema
	Parameters map[string]interface{}
	explicit   map[string]bool
}

// IsExplicit reports whether the source supplied the parameter
func (p *ParsedMarker) IsExplicit(name string) bool { return p.explicit[name] }

// HasParameter reports whether a value, explicit or default, exists
func (p *ParsedMarker) HasParameter(name string) bool {
	_, ok := p.Parameters[name]
	return ok
}

// GetString returns a string parameter value with optional default
func (p *ParsedMarker) GetString(name string, defaultValue ...string) string {
	if v, ok := p.Parameters[name].(string); ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

// GetBool returns a boolean parameter value with optional default
func (p *ParsedMarker) GetBool(name string, defaultValue ...bool) bool {
	if v, ok := p.Parameters[name].(bool); ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return false
}

// GetStringSlice returns a string list parameter value
func (p *ParsedMarker) GetStringSlice(name string) []string {
	switch v := p.Parameters[name].(type) {
	case []string:
		return v
	case string:
		return []string{v}
	}
	return nil
}

// GetClasses returns the class values of a class or class list parameter;
// closures are skipped
func (p *ParsedMarker) GetClasses(name string) []*ClassValue {
	switch v := p.Parameters[name].(type) {
	case *ClassValue:
		return []*ClassValue{v}
	case []interface{}:
		var out []*ClassValue
		for _, item := range v {
			if c, ok := item.(*ClassValue); ok {
				out = append(out, c)
			}
		}
		return out
	}
	return nil
}

// GetClosure returns the closure given for a class parameter
func (p *ParsedMarker) GetClosure(name string) *models.Closure {
	c, _ := p.Parameters[name].(*models.Closure)
	return c
}

// GetEnums returns the constants of an enum or enum list parameter
func (p *ParsedMarker) GetEnums(name string) []EnumValue {
	switch v := p.Parameters[name].(type) {
	case EnumValue:
		return []EnumValue{v}
	case []EnumValue:
		return v
	}
	return nil
}

// GetEnum returns the constant name of an enum parameter, or the default
func (p *ParsedMarker) GetEnum(name string, defaultValue ...string) string {
	if list := p.GetEnums(name); len(list) > 0 {
		return list[0].Name
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

// Span returns the source span of a parameter value, or the marker span
func (p *ParsedMarker) Span(name string) models.Span {
	if v, ok := p.Marker.Arg(name); ok && v.NodeSpan().IsValid() {
		return v.NodeSpan()
	}
	return p.Marker.Span
}

// evaluate converts an argument expression into a constant value. Lists
// become []interface{}; names stay unresolved until the member type is known.
func evaluate(e models.Expr) (interface{}, bool) {
	switch x := e.(type) {
	case *models.Literal:
		switch x.Kind {
		case models.LitString, models.LitChar:
			return x.Value, true
		case models.LitBool:
			return x.Value == "true", true
		case models.LitInt, models.LitLong, models.LitBigInteger:
			n, err := strconv.Atoi(x.Value)
			return n, err == nil
		case models.LitDouble, models.LitFloat, models.LitBigDecimal:
			f, err := strconv.ParseFloat(x.Value, 64)
			return f, err == nil
		}
		return nil, false
	case *models.Unary:
		if x.Op == "-" {
			if v, ok := evaluate(x.X); ok {
				switch n := v.(type) {
				case int:
					return -n, true
				case float64:
					return -n, true
				}
			}
		}
		return nil, false
	case *models.ListLit:
		out := make([]interface{}, 0, len(x.Elems))
		for _, el := range x.Elems {
			v, ok := evaluate(el)
			if !ok {
				return nil, false
			}
			out = append(out, v)
		}
		return out, true
	case *models.ClassLit:
		return &ClassValue{Ref: x.Type, Span: x.Span}, true
	case *models.Ident, *models.FieldAccess:
		if name := models.QualifiedName(e); name != "" {
			return &nameValue{Name: name, Span: e.NodeSpan()}, true
		}
		return nil, false
	case *models.Closure:
		return x, true
	case *models.AnnotationValue:
		return x.Annotation, true
	}
	return nil, false
}

// foundType names the type of an argument expression for mismatch reports
func foundType(e models.Expr) string {
	switch x := e.(type) {
	case *models.Literal:
		switch x.Kind {
		case models.LitString:
			return types.StringName
		case models.LitChar:
			return "java.lang.Character"
		case models.LitBool:
			return "java.lang.Boolean"
		case models.LitInt:
			return "java.lang.Integer"
		case models.LitLong:
			return "java.lang.Long"
		case models.LitBigInteger:
			return types.BigIntegerName
		case models.LitDouble:
			return "java.lang.Double"
		case models.LitFloat:
			return "java.lang.Float"
		case models.LitBigDecimal:
			return types.BigDecimalName
		case models.LitNull:
			return "null"
		}
	case *models.Unary:
		return foundType(x.X)
	case *models.GString:
		return types.GStringName
	case *models.ListLit:
		return types.ListName
	case *models.MapLit:
		return types.MapName
	case *models.ClassLit:
		return types.ClassName
	case *models.Closure:
		return types.ClosureName
	case *models.Ident, *models.FieldAccess:
		return models.QualifiedName(e)
	}
	return types.ObjectName
}
