// Package jsonschema holds the schema document model consumed by the compiler
// and the loaders that build it from JSON or YAML documents.
package jsonschema

import (
	"github.com/samber/lo"
	"github.com/speakeasy-api/openapi/sequencedmap"
)

// Schema is one node of a schema document. It is built once by a loader (or by
// hand) and treated as read-only afterwards.
type Schema struct {
	// Core
	Type        TypeList
	Title       string
	Description string
	Format      string
	Default     any

	// Object. Properties keep their document order: the first property of an
	// if block selects the controlling condition key.
	Properties *sequencedmap.Map[string, *Schema]
	Required   []string
	Nullable   []string // Names of nullable properties (listed on the parent).

	// Array
	Items       *Schema
	PrefixItems []*Schema // Tuple validation (items given as a list).
	MinItems    *int
	MaxItems    *int
	UniqueItems bool
	Contains    *Schema
	MinContains *int
	MaxContains *int

	// String
	MinLength *int
	MaxLength *int
	Pattern   string

	// Number
	Minimum          *float64
	Maximum          *float64
	ExclusiveMinimum *float64
	ExclusiveMaximum *float64
	MultipleOf       *float64

	// Literals. Const is nil when absent; a pointer to nil means "const: null".
	Const *any
	Enum  []any

	// Composition
	AllOf []*Schema
	AnyOf []*Schema
	OneOf []*Schema
	Not   *Schema

	// Conditional
	If   *Schema
	Then *Schema
	Else *Schema
}

// TypeList is the value of the type keyword: one name or an ordered list.
type TypeList []string

// NewProperties returns an empty ordered property map.
func NewProperties() *sequencedmap.Map[string, *Schema] {
	return sequencedmap.New[string, *Schema]()
}

// Property returns the named property schema.
func (s *Schema) Property(key string) (*Schema, bool) {
	if s == nil || s.Properties == nil {
		return nil, false
	}
	return s.Properties.Get(key)
}

// HasProperty reports whether key is declared in properties.
func (s *Schema) HasProperty(key string) bool {
	_, ok := s.Property(key)
	return ok
}

// FirstProperty returns the first declared property in document order.
func (s *Schema) FirstProperty() (string, *Schema, bool) {
	if s == nil || s.Properties == nil {
		return "", nil, false
	}
	for k, v := range s.Properties.All() {
		return k, v, true
	}
	return "", nil, false
}

// PropertyNames lists property names in document order.
func (s *Schema) PropertyNames() []string {
	if s == nil || s.Properties == nil {
		return nil
	}
	names := make([]string, 0, s.Properties.Len())
	for k := range s.Properties.All() {
		names = append(names, k)
	}
	return names
}

// IsRequired reports whether key is listed in required.
func (s *Schema) IsRequired(key string) bool { return s != nil && lo.Contains(s.Required, key) }

// IsNullable reports whether key is listed in nullable.
func (s *Schema) IsNullable(key string) bool { return s != nil && lo.Contains(s.Nullable, key) }

// HasComposition reports whether any of allOf/anyOf/oneOf/not is present.
func (s *Schema) HasComposition() bool {
	return len(s.ComposedAllOf()) > 0 || len(s.AnyOf) > 0 || len(s.OneOf) > 0 || s.Not != nil
}

// IsConditionalOnly reports whether s is a bare if/then/else block, as found
// inside allOf lists.
func (s *Schema) IsConditionalOnly() bool {
	return s.If != nil && len(s.Type) == 0 && s.Properties == nil &&
		len(s.AllOf) == 0 && len(s.AnyOf) == 0 && len(s.OneOf) == 0 && s.Not == nil
}

// ComposedAllOf returns the allOf entries that are real sub-schemas, skipping
// bare conditional blocks.
func (s *Schema) ComposedAllOf() []*Schema {
	return lo.Filter(s.AllOf, func(e *Schema, _ int) bool { return !e.IsConditionalOnly() })
}

// ConditionalAllOf returns the allOf entries that carry an if block.
func (s *Schema) ConditionalAllOf() []*Schema {
	return lo.Filter(s.AllOf, func(e *Schema, _ int) bool { return e.If != nil })
}

// WithoutComposition returns a shallow copy with the composition keywords
// removed. Bare conditional allOf entries stay: they belong to the object.
func (s *Schema) WithoutComposition() *Schema {
	c := *s
	c.AllOf = lo.Filter(s.AllOf, func(e *Schema, _ int) bool { return e.IsConditionalOnly() })
	c.AnyOf, c.OneOf, c.Not = nil, nil, nil
	return &c
}
