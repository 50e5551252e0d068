package jsonschema

import (
	"encoding/json"
	"iter"
	"math"
	"sort"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/speakeasy-api/openapi/sequencedmap"

	skemac "github.com/reoring/skemac"
	eng "github.com/reoring/skemac/internal/engine"
)

// FromValue converts a generic schema tree into a Schema. Objects may be
// ordered (*engine.Object, as produced by Parse and ParseYAML) or plain
// map[string]any; plain maps are walked in sorted key order.
func FromValue(v any) (*Schema, error) {
	return fromValue(v, "")
}

// entries iterates the members of an ordered or plain object.
func entries(v any) (iter.Seq2[string, any], bool) {
	switch t := v.(type) {
	case *eng.Object:
		if t == nil {
			return nil, false
		}
		return t.All(), true
	case map[string]any:
		return func(yield func(string, any) bool) {
			keys := make([]string, 0, len(t))
			for k := range t {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if !yield(k, t[k]) {
					return
				}
			}
		}, true
	}
	return nil, false
}

func fromValue(v any, ptr string) (*Schema, error) {
	members, ok := entries(v)
	if !ok {
		return nil, errors.Errorf("%s: schema must be an object, got %T", pointerOrRoot(ptr), v)
	}
	s := &Schema{}
	var exclMinFlag, exclMaxFlag bool
	for k, val := range members {
		p := ptr + "/" + skemac.EscapePointerToken(k)
		var err error
		switch k {
		case "type":
			s.Type, err = typeList(val, p)
		case "title":
			s.Title, err = str(val, p)
		case "description":
			s.Description, err = str(val, p)
		case "format":
			s.Format, err = str(val, p)
		case "default":
			s.Default = Plain(val)
		case "properties":
			s.Properties, err = properties(val, p)
		case "required":
			s.Required, err = strList(val, p)
		case "nullable":
			// Boolean nullable flags are not used: nullability is listed on the parent.
			if _, isBool := val.(bool); !isBool {
				s.Nullable, err = strList(val, p)
			}
		case "items":
			if _, isList := val.([]any); isList {
				s.PrefixItems, err = schemaList(val, p)
			} else {
				s.Items, err = fromValue(val, p)
			}
		case "prefixItems":
			s.PrefixItems, err = schemaList(val, p)
		case "minItems":
			s.MinItems, err = count(val, p)
		case "maxItems":
			s.MaxItems, err = count(val, p)
		case "minContains":
			s.MinContains, err = count(val, p)
		case "maxContains":
			s.MaxContains, err = count(val, p)
		case "minLength":
			s.MinLength, err = count(val, p)
		case "maxLength":
			s.MaxLength, err = count(val, p)
		case "uniqueItems":
			s.UniqueItems, err = boolean(val, p)
		case "contains":
			s.Contains, err = fromValue(val, p)
		case "pattern":
			s.Pattern, err = str(val, p)
		case "minimum":
			s.Minimum, err = number(val, p)
		case "maximum":
			s.Maximum, err = number(val, p)
		case "multipleOf":
			s.MultipleOf, err = number(val, p)
			if err == nil && *s.MultipleOf <= 0 {
				err = errors.Errorf("%s: multipleOf must be greater than 0", p)
			}
		case "exclusiveMinimum":
			if b, isBool := val.(bool); isBool {
				exclMinFlag = b
			} else {
				s.ExclusiveMinimum, err = number(val, p)
			}
		case "exclusiveMaximum":
			if b, isBool := val.(bool); isBool {
				exclMaxFlag = b
			} else {
				s.ExclusiveMaximum, err = number(val, p)
			}
		case "const":
			c := Plain(val)
			s.Const = &c
		case "enum":
			list, isList := val.([]any)
			if !isList {
				err = errors.Errorf("%s: enum must be a list", p)
				break
			}
			s.Enum = make([]any, len(list))
			for i, m := range list {
				s.Enum[i] = Plain(m)
			}
		case "allOf":
			s.AllOf, err = schemaList(val, p)
		case "anyOf":
			s.AnyOf, err = schemaList(val, p)
		case "oneOf":
			s.OneOf, err = schemaList(val, p)
		case "not":
			s.Not, err = fromValue(val, p)
		case "if":
			s.If, err = fromValue(val, p)
		case "then":
			s.Then, err = fromValue(val, p)
		case "else":
			s.Else, err = fromValue(val, p)
		}
		if err != nil {
			return nil, err
		}
	}
	// draft-04 style boolean exclusive bounds
	if exclMinFlag && s.Minimum != nil {
		s.ExclusiveMinimum, s.Minimum = s.Minimum, nil
	}
	if exclMaxFlag && s.Maximum != nil {
		s.ExclusiveMaximum, s.Maximum = s.Maximum, nil
	}
	return s, nil
}

func pointerOrRoot(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

func properties(v any, p string) (*sequencedmap.Map[string, *Schema], error) {
	members, ok := entries(v)
	if !ok {
		return nil, errors.Errorf("%s: properties must be an object", p)
	}
	out := NewProperties()
	for k, raw := range members {
		child, err := fromValue(raw, p+"/"+skemac.EscapePointerToken(k))
		if err != nil {
			return nil, err
		}
		out.Set(k, child)
	}
	return out, nil
}

func schemaList(v any, p string) ([]*Schema, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, errors.Errorf("%s: expected a list of schemas", p)
	}
	out := make([]*Schema, 0, len(list))
	for i, raw := range list {
		child, err := fromValue(raw, p+"/"+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		out = append(out, child)
	}
	return out, nil
}

func typeList(v any, p string) (TypeList, error) {
	switch t := v.(type) {
	case string:
		return TypeList{t}, nil
	case []any:
		out := make(TypeList, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, errors.Errorf("%s: type names must be strings", p)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, errors.Errorf("%s: type must be a string or a list of strings", p)
}

func str(v any, p string) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", errors.Errorf("%s: expected a string", p)
	}
	return s, nil
}

func boolean(v any, p string) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, errors.Errorf("%s: expected a boolean", p)
	}
	return b, nil
}

func strList(v any, p string) ([]string, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, errors.Errorf("%s: expected a list of strings", p)
	}
	out := make([]string, 0, len(list))
	for _, e := range list {
		s, ok := e.(string)
		if !ok {
			return nil, errors.Errorf("%s: expected a list of strings", p)
		}
		out = append(out, s)
	}
	return out, nil
}

func number(v any, p string) (*float64, error) {
	f, ok := ToFloat(v)
	if !ok {
		return nil, errors.Errorf("%s: expected a number", p)
	}
	return &f, nil
}

func count(v any, p string) (*int, error) {
	f, ok := ToFloat(v)
	if !ok || f < 0 || f != math.Trunc(f) {
		return nil, errors.Errorf("%s: expected a non-negative integer", p)
	}
	n := int(f)
	return &n, nil
}

// ToFloat converts the numeric representations produced by the loaders
// (json.Number, int64, float64 and friends) into float64.
func ToFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint:
		return float64(t), true
	}
	return 0, false
}

// Plain converts ordered objects into map[string]any recursively so literal
// values (const, enum, default) compare structurally with decoded input.
func Plain(v any) any {
	switch t := v.(type) {
	case *eng.Object:
		if t == nil {
			return nil
		}
		m := make(map[string]any, t.Len())
		for k, e := range t.All() {
			m[k] = Plain(e)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = Plain(e)
		}
		return m
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Plain(e)
		}
		return out
	}
	return v
}
