package annotations

import (
	"fmt"
	"sync"

	"github.com/toyz/jointc/internal/utils"
)

// SchemaRegistry defines the interface for managing marker schemas
type SchemaRegistry interface {
	// Register adds a schema keyed by its marker name
	Register(schema Schema) error

	// GetSchema retrieves the schema of a marker
	GetSchema(marker string) (*Schema, error)

	// Lookup is GetSchema without the error
	Lookup(marker string) (*Schema, bool)

	// ListMarkers returns all registered markers in registration order
	ListMarkers() []string

	// IsRegistered checks if a marker is registered
	IsRegistered(marker string) bool
}

type registry struct {
	schemas *utils.Registry[string, *Schema]
}

// NewRegistry creates an empty schema registry
func NewRegistry() SchemaRegistry {
	r := &registry{schemas: utils.NewRegistry[string, *Schema]("annotation schema", "marker")}
	r.schemas.SetValidator(utils.ChainValidators[string, *Schema](
		utils.NotEmptyKeyValidator[*Schema]("marker name"),
		utils.NoDuplicateValidator[string, *Schema]("marker"),
		func(key string, schema *Schema, _ map[string]*Schema) error {
			return validateSchema(schema)
		},
	))
	return r
}

var (
	defaultRegistry     SchemaRegistry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the registry holding the built-in schemas
func DefaultRegistry() SchemaRegistry {
	defaultRegistryOnce.Do(func() {
		r := NewRegistry()
		for _, schema := range BuiltinSchemas() {
			if err := r.Register(schema); err != nil {
				panic(err)
			}
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// Register adds a new schema
func (r *registry) Register(schema Schema) error {
	s := schema
	if err := r.schemas.Register(s.Marker, &s); err != nil {
		return &RegistrationError{Marker: schema.Marker, Msg: err.Error()}
	}
	return nil
}

// GetSchema retrieves the schema of a marker
func (r *registry) GetSchema(marker string) (*Schema, error) {
	return r.schemas.GetOrError(marker)
}

// Lookup retrieves the schema of a marker
func (r *registry) Lookup(marker string) (*Schema, bool) {
	return r.schemas.Get(marker)
}

// ListMarkers returns all registered markers
func (r *registry) ListMarkers() []string {
	return r.schemas.Keys()
}

// IsRegistered checks if a marker is registered
func (r *registry) IsRegistered(marker string) bool {
	return r.schemas.Has(marker)
}

// validateSchema performs basic validation on a schema
func validateSchema(schema *Schema) error {
	for name, spec := range schema.Parameters {
		if name == "" {
			return fmt.Errorf("parameter name cannot be empty")
		}
		if spec.Type < StringType || spec.Type > EnumType {
			return fmt.Errorf("invalid parameter type for %s: %d", name, spec.Type)
		}
		if spec.Type == EnumType && spec.Enum == "" {
			return fmt.Errorf("enum parameter %s must name its enum type", name)
		}
		if spec.DefaultValue != nil {
			if err := validateDefaultValue(name, spec); err != nil {
				return err
			}
		}
	}
	return nil
}

// validateDefaultValue checks if the default value matches the parameter type
func validateDefaultValue(name string, spec ParameterSpec) error {
	v := spec.DefaultValue
	ok := false
	switch {
	case spec.List && spec.Type == StringType:
		_, ok = v.([]string)
	case spec.List && spec.Type == EnumType:
		_, ok = v.([]EnumValue)
	case spec.List:
		_, ok = v.([]interface{})
	case spec.Type == StringType:
		_, ok = v.(string)
	case spec.Type == BoolType:
		_, ok = v.(bool)
	case spec.Type == IntType:
		_, ok = v.(int)
	case spec.Type == EnumType:
		_, ok = v.(EnumValue)
	case spec.Type == ClassType:
		_, ok = v.(*ClassValue)
	}
	if !ok {
		return fmt.Errorf("default value for %s parameter %s must match its type, got %T", spec.TypeName(), name, v)
	}
	return nil
}
