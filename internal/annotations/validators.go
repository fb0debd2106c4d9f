package annotations

import (
	"fmt"
	"unicode"
)

// Shared validation functions and parameter specifications

// ValidateIdentifier requires a string usable as a Java field or method name
func ValidateIdentifier(v interface{}) error {
	s, _ := v.(string)
	if s == "" {
		return fmt.Errorf("must not be empty")
	}
	for i, r := range s {
		if r == '_' || r == '$' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return fmt.Errorf("'%s' is not a valid identifier", s)
	}
	return nil
}

// IncludeExcludeValidator rejects markers supplying both includes and excludes
func IncludeExcludeValidator(p *ParsedMarker) error {
	if len(p.GetStringSlice("includes")) > 0 && len(p.GetStringSlice("excludes")) > 0 {
		return fmt.Errorf("Error during @%s processing: Only one of 'includes' and 'excludes' should be supplied not both.", p.Schema.SimpleName())
	}
	return nil
}

// BoolParameterSpec returns an optional boolean member
func BoolParameterSpec(defaultValue bool, description string) ParameterSpec {
	return ParameterSpec{
		Type:         BoolType,
		DefaultValue: defaultValue,
		Description:  description,
	}
}

// NameParameterSpec returns an optional identifier member
func NameParameterSpec(defaultValue, description string) ParameterSpec {
	spec := ParameterSpec{
		Type:        StringType,
		Description: description,
		Validator:   ValidateIdentifier,
	}
	if defaultValue != "" {
		spec.DefaultValue = defaultValue
	}
	return spec
}

// IncludesParameterSpec returns the includes member of property-driven transforms
func IncludesParameterSpec() ParameterSpec {
	return ParameterSpec{
		Type:        StringType,
		List:        true,
		Description: "Names to include; all when empty",
	}
}

// ExcludesParameterSpec returns the excludes member of property-driven transforms
func ExcludesParameterSpec() ParameterSpec {
	return ParameterSpec{
		Type:        StringType,
		List:        true,
		Description: "Names to exclude",
	}
}

// ClassListParameterSpec returns a member holding one or more class literals
func ClassListParameterSpec(required bool, description string) ParameterSpec {
	return ParameterSpec{
		Type:        ClassType,
		List:        true,
		Required:    required,
		Description: description,
	}
}

// CheckingModeParameterSpec returns the value member of the checker markers
func CheckingModeParameterSpec() ParameterSpec {
	return ParameterSpec{
		Type:         EnumType,
		Enum:         "groovy.transform.TypeCheckingMode",
		Constants:    []string{"PASS", "SKIP"},
		DefaultValue: EnumValue{Type: "groovy.transform.TypeCheckingMode", Name: "PASS"},
		Description:  "PASS checks the annotated element, SKIP suspends checking",
	}
}

// LoggerParameters returns the members shared by the logging markers
func LoggerParameters() map[string]ParameterSpec {
	return map[string]ParameterSpec{
		"value":    NameParameterSpec("log", "Name of the injected logger field"),
		"category": {Type: StringType, Description: "Logger category; the class name when empty"},
	}
}
