package annotations

import (
	"fmt"
	"sort"
	"strings"

	"github.com/toyz/jointc/internal/models"
	"github.com/toyz/jointc/internal/types"
)

// SchemaValidator binds markers to their schemas
type SchemaValidator interface {
	// Validate checks marker arguments against schema, applies defaults and
	// runs custom validators. The bound marker is returned even on error.
	Validate(marker *models.Annotation, schema *Schema) (*ParsedMarker, error)

	// CheckTarget verifies the marker is allowed on the given element kind
	CheckTarget(marker *models.Annotation, schema *Schema, target Target) error
}

type validator struct{}

// NewValidator creates a new schema validator
func NewValidator() SchemaValidator {
	return &validator{}
}

// Validate validates a marker against its schema
func (v *validator) Validate(marker *models.Annotation, schema *Schema) (*ParsedMarker, error) {
	parsed := &ParsedMarker{
		Marker:     marker,
		Schema:     schema,
		Parameters: make(map[string]interface{}),
		explicit:   make(map[string]bool),
	}
	errs := &MultipleValidationErrors{}

	for _, arg := range marker.Args {
		spec, ok := schema.Parameters[arg.Name]
		if !ok {
			errs.add(&ValidationError{
				Marker:    schema.Marker,
				Parameter: arg.Name,
				Msg:       fmt.Sprintf("'%s'is not part of the annotation %s", arg.Name, schema.SimpleName()),
				Loc:       spanOr(arg.Span, marker.Span),
				Hint:      "known members: " + strings.Join(schema.parameterNames(), ", "),
			})
			continue
		}
		value, err := v.convert(schema, arg, spec)
		if err != nil {
			errs.add(err)
			continue
		}
		if spec.Validator != nil {
			if err := spec.Validator(value); err != nil {
				errs.add(&ValidationError{
					Marker:    schema.Marker,
					Parameter: arg.Name,
					Msg:       fmt.Sprintf("Invalid value for attribute '%s' in @%s: %v", arg.Name, schema.Marker, err),
					Loc:       spanOr(arg.Value.NodeSpan(), marker.Span),
				})
				continue
			}
		}
		parsed.Parameters[arg.Name] = value
		parsed.explicit[arg.Name] = true
	}

	for _, name := range schema.parameterNames() {
		if _, ok := parsed.Parameters[name]; ok {
			continue
		}
		spec := schema.Parameters[name]
		if spec.Required && !hasArg(marker, name) {
			errs.add(&ValidationError{
				Marker:    schema.Marker,
				Parameter: name,
				Msg:       fmt.Sprintf("No explicit/default value found for annotation attribute '%s' in @%s", name, schema.Marker),
				Loc:       marker.Span,
			})
			continue
		}
		if spec.DefaultValue != nil {
			parsed.Parameters[name] = spec.DefaultValue
		}
	}

	if len(errs.Errors) == 0 {
		for _, custom := range schema.Validators {
			if err := custom(parsed); err != nil {
				errs.add(&SchemaError{Msg: err.Error(), Loc: marker.Span})
			}
		}
	}
	return parsed, errs.ErrorOrNil()
}

// CheckTarget verifies the marker is allowed on target
func (v *validator) CheckTarget(marker *models.Annotation, schema *Schema, target Target) error {
	if schema.Allows(target) {
		return nil
	}
	return &ValidationError{
		Marker: schema.Marker,
		Msg:    fmt.Sprintf("Annotation @%s is not allowed on element %s", schema.Marker, target),
		Loc:    marker.Span,
	}
}

func (v *validator) convert(schema *Schema, arg *models.AnnotationArg, spec ParameterSpec) (interface{}, AnnotationError) {
	raw, ok := evaluate(arg.Value)
	if !ok {
		return nil, v.mismatch(schema, arg.Name, spec, arg.Value)
	}
	if !spec.List {
		if _, isList := raw.([]interface{}); isList {
			return nil, v.mismatch(schema, arg.Name, spec, arg.Value)
		}
		return v.convertOne(schema, arg.Name, spec, raw, arg.Value)
	}

	items, isList := raw.([]interface{})
	elems := []models.Expr{arg.Value}
	if isList {
		elems = arg.Value.(*models.ListLit).Elems
	} else {
		items = []interface{}{raw}
	}
	switch spec.Type {
	case StringType:
		out := make([]string, 0, len(items))
		for i, item := range items {
			val, err := v.convertOne(schema, arg.Name, spec, item, elems[i])
			if err != nil {
				return nil, err
			}
			out = append(out, val.(string))
		}
		return out, nil
	case EnumType:
		out := make([]EnumValue, 0, len(items))
		for i, item := range items {
			val, err := v.convertOne(schema, arg.Name, spec, item, elems[i])
			if err != nil {
				return nil, err
			}
			out = append(out, val.(EnumValue))
		}
		return out, nil
	default:
		out := make([]interface{}, 0, len(items))
		for i, item := range items {
			val, err := v.convertOne(schema, arg.Name, spec, item, elems[i])
			if err != nil {
				return nil, err
			}
			out = append(out, val)
		}
		return out, nil
	}
}

func (v *validator) convertOne(schema *Schema, name string, spec ParameterSpec, raw interface{}, expr models.Expr) (interface{}, AnnotationError) {
	switch spec.Type {
	case StringType:
		if s, ok := raw.(string); ok {
			return s, nil
		}
	case BoolType:
		if b, ok := raw.(bool); ok {
			return b, nil
		}
	case IntType:
		if n, ok := raw.(int); ok {
			return n, nil
		}
	case ClassType:
		switch c := raw.(type) {
		case *ClassValue:
			return c, nil
		case *nameValue:
			return &ClassValue{Ref: &models.TypeRef{Name: c.Name, Span: c.Span}, Span: c.Span}, nil
		case *models.Closure:
			return c, nil
		}
		return nil, &ValidationError{
			Marker:    schema.Marker,
			Parameter: name,
			Msg:       fmt.Sprintf("Only classes and closures can be used for attribute '%s' in @%s", name, schema.Marker),
			Loc:       spanOr(expr.NodeSpan(), models.NoSpan),
		}
	case EnumType:
		if n, ok := raw.(*nameValue); ok {
			return v.enumConstant(schema, name, spec, n)
		}
	}
	return nil, v.mismatch(schema, name, spec, expr)
}

func (v *validator) enumConstant(schema *Schema, name string, spec ParameterSpec, n *nameValue) (interface{}, AnnotationError) {
	owner, constant := types.PackageOf(n.Name), types.SimpleName(n.Name)
	if owner != "" && owner != spec.Enum && owner != types.SimpleName(spec.Enum) {
		return nil, v.mismatch(schema, name, spec, &models.Ident{Name: owner, Span: n.Span})
	}
	if len(spec.Constants) > 0 && !contains(spec.Constants, constant) {
		return nil, &ValidationError{
			Marker:    schema.Marker,
			Parameter: name,
			Msg:       fmt.Sprintf("No enum const %s.%s", spec.Enum, constant),
			Loc:       n.Span,
			Hint:      "expected one of " + strings.Join(spec.Constants, ", "),
		}
	}
	return EnumValue{Type: spec.Enum, Name: constant, Span: n.Span}, nil
}

func (v *validator) mismatch(schema *Schema, name string, spec ParameterSpec, expr models.Expr) AnnotationError {
	elem := spec
	elem.List = false
	return &ValidationError{
		Marker:    schema.Marker,
		Parameter: name,
		Msg: fmt.Sprintf("Attribute '%s' should have type '%s'; but found type '%s' in @%s",
			name, elem.TypeName(), foundType(expr), schema.Marker),
		Loc: spanOr(expr.NodeSpan(), models.NoSpan),
	}
}

func (s *Schema) parameterNames() []string {
	names := make([]string, 0, len(s.Parameters))
	for name := range s.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func hasArg(marker *models.Annotation, name string) bool {
	_, ok := marker.Arg(name)
	return ok
}

func spanOr(s, fallback models.Span) models.Span {
	if s.IsValid() {
		return s
	}
	return fallback
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
