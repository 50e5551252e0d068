package compiler

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-faster/errors"
	"github.com/samber/lo"

	skemac "github.com/reoring/skemac"
	"github.com/reoring/skemac/jsonschema"
)

// primitive validates one declared kind: presence, null handling, the kind
// check, then every keyword constraint in declaration order. Object kinds
// carry the nested property validator.
type primitive struct {
	kind        Kind
	field       field
	typeMsg     string
	constraints []constraint
	object      *objectRule
}

func (p *primitive) check(e *evaluator, at skemac.PathRef, in input) bool {
	if !in.present {
		return p.field.absent(e, at)
	}
	v := in.value
	if v == nil && p.kind != KindNull && p.kind != kindAny {
		if p.field.nullable {
			return true
		}
		e.report(p.field.nullIssue(at))
		return false
	}
	if !p.kind.Matches(v) {
		e.report(skemac.IssueAt(at, skemac.CodeInvalidType, "type", skemac.CategoryTypeMismatch, p.typeMsg,
			map[string]any{"expected": p.kind.String()}))
		return false
	}
	valid := true
	for i := range p.constraints {
		c := &p.constraints[i]
		if c.test(v) {
			continue
		}
		e.report(c.issue(at))
		valid = false
		if !e.all() {
			return false
		}
	}
	if p.object != nil && !e.stopped() {
		m, _ := asObject(v)
		if !p.object.check(e, at, m) {
			valid = false
		}
	}
	return valid
}

// typed compiles node as a single kind. Arrays become a conjunction of the
// array-level checks and the element validator.
func (c *compiler) typed(f field, node *jsonschema.Schema, kind Kind, ptr string) (rule, error) {
	p := &primitive{
		kind:    kind,
		field:   f,
		typeMsg: c.message("type", f, map[string]any{"type": kind.String(), "types": kind.String()}),
	}
	cons, err := c.constraints(f, node, kind, ptr)
	if err != nil {
		return nil, err
	}
	p.constraints = cons
	switch kind {
	case KindObject:
		if hasObjectBody(node) {
			obj, err := c.object(node, ptr)
			if err != nil {
				return nil, err
			}
			p.object = obj
		}
	case KindArray:
		el, err := c.elements(f, node, ptr)
		if err != nil {
			return nil, err
		}
		if el != nil {
			return conjunction{p, el}, nil
		}
	}
	return p, nil
}

func hasObjectBody(s *jsonschema.Schema) bool {
	return s.Properties != nil || s.If != nil || len(s.Required) > 0 || len(s.ConditionalAllOf()) > 0
}

// constraints builds the keyword checks that apply to kind.
func (c *compiler) constraints(f field, node *jsonschema.Schema, kind Kind, ptr string) ([]constraint, error) {
	var out []constraint
	add := func(keyword, code string, params map[string]any, test func(any) bool) {
		out = append(out, constraint{
			keyword: keyword,
			code:    code,
			message: c.message(keyword, f, params),
			params:  params,
			test:    test,
		})
	}

	switch kind {
	case KindString:
		if n := node.MinLength; n != nil {
			min := *n
			add("minLength", skemac.CodeTooShort, map[string]any{"min": min}, func(v any) bool {
				return utf8.RuneCountInString(v.(string)) >= min
			})
		}
		if n := node.MaxLength; n != nil {
			max := *n
			add("maxLength", skemac.CodeTooLong, map[string]any{"max": max}, func(v any) bool {
				return utf8.RuneCountInString(v.(string)) <= max
			})
		}
		if node.Pattern != "" {
			re, err := compilePattern(node.Pattern)
			if err != nil {
				return nil, errors.Wrapf(err, "%s: pattern", pointer(ptr))
			}
			add("pattern", skemac.CodePattern, map[string]any{"pattern": node.Pattern}, func(v any) bool {
				return re.MatchString(v.(string))
			})
		}
		if node.Format != "" {
			if test, ok := formatTest(node.Format); ok {
				add("format", skemac.CodeInvalidFormat, map[string]any{"format": node.Format}, func(v any) bool {
					return test(v.(string))
				})
			}
		}

	case KindNumber, KindInteger:
		bound := func(keyword, code string, limit *float64, param string, within func(cmp int) bool) {
			if limit == nil {
				return
			}
			r := ratFromFloat(*limit)
			add(keyword, code, map[string]any{param: formatFloat(*limit)}, func(v any) bool {
				if x, ok := toRat(v); ok {
					return within(x.Cmp(r))
				}
				n, _ := v.(json.Number)
				w, ok := parseWide(n)
				return ok && within(w.cmp(*limit))
			})
		}
		bound("minimum", skemac.CodeTooSmall, node.Minimum, "min", func(cmp int) bool { return cmp >= 0 })
		bound("exclusiveMinimum", skemac.CodeTooSmall, node.ExclusiveMinimum, "min", func(cmp int) bool { return cmp > 0 })
		bound("maximum", skemac.CodeTooBig, node.Maximum, "max", func(cmp int) bool { return cmp <= 0 })
		bound("exclusiveMaximum", skemac.CodeTooBig, node.ExclusiveMaximum, "max", func(cmp int) bool { return cmp < 0 })
		if m := node.MultipleOf; m != nil {
			div := ratFromFloat(*m)
			add("multipleOf", skemac.CodeNotMultipleOf, map[string]any{"multipleOf": formatFloat(*m)}, func(v any) bool {
				if x, ok := toRat(v); ok {
					return new(big.Rat).Quo(x, div).IsInt()
				}
				n, _ := v.(json.Number)
				w, ok := parseWide(n)
				return ok && w.multipleOf(div)
			})
		}

	case KindArray:
		if n := node.MinItems; n != nil {
			min := *n
			add("minItems", skemac.CodeTooShort, map[string]any{"min": min}, func(v any) bool {
				s, _ := asSlice(v)
				return len(s) >= min
			})
		}
		if n := node.MaxItems; n != nil {
			max := *n
			add("maxItems", skemac.CodeTooLong, map[string]any{"max": max}, func(v any) bool {
				s, _ := asSlice(v)
				return len(s) <= max
			})
		}
		if node.UniqueItems {
			add("uniqueItems", skemac.CodeUniqueness, nil, func(v any) bool {
				s, _ := asSlice(v)
				return unique(s)
			})
		}
		if node.Contains != nil {
			con, err := c.contains(f, node, ptr)
			if err != nil {
				return nil, err
			}
			out = append(out, con)
		}
	}

	if node.Const != nil {
		lit := newLiteral(*node.Const)
		add("const", skemac.CodeInvalidConst, map[string]any{"value": render(*node.Const)}, lit.matches)
	}
	if len(node.Enum) > 0 {
		lits := lo.Map(node.Enum, func(v any, _ int) literal { return newLiteral(v) })
		names := lo.Map(node.Enum, func(v any, _ int) string { return render(v) })
		add("enum", skemac.CodeInvalidEnum, map[string]any{"values": strings.Join(names, ", ")}, func(v any) bool {
			return lo.SomeBy(lits, func(l literal) bool { return l.matches(v) })
		})
	}
	return out, nil
}

// contains counts matching elements against minContains (default 1) and maxContains.
func (c *compiler) contains(f field, node *jsonschema.Schema, ptr string) (constraint, error) {
	r, err := c.rule(c.childField(f, node.Contains), node.Contains, join(ptr, "contains"))
	if err != nil {
		return constraint{}, err
	}
	min, max := 1, -1
	if node.MinContains != nil {
		min = *node.MinContains
	}
	if node.MaxContains != nil {
		max = *node.MaxContains
	}
	params := map[string]any{"min": min}
	if max >= 0 {
		params["max"] = max
	}
	return constraint{
		keyword: "contains",
		code:    skemac.CodeContains,
		message: c.message("contains", f, params),
		params:  params,
		test: func(v any) bool {
			s, _ := asSlice(v)
			n := lo.CountBy(s, func(el any) bool {
				return r.check(newProbe(), skemac.RootPath(), presentValue(el))
			})
			return n >= min && (max < 0 || n <= max)
		},
	}, nil
}

func unique(s []any) bool {
	for i := range s {
		for j := i + 1; j < len(s); j++ {
			if deepEqual(s[i], s[j]) {
				return false
			}
		}
	}
	return true
}

// ratFromFloat takes the shortest decimal rendering so 0.1 means one tenth,
// not the nearest binary fraction.
func ratFromFloat(f float64) *big.Rat {
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(f, 'g', -1, 64))
	if !ok {
		return new(big.Rat).SetFloat64(f)
	}
	return r
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

// render prints a literal for messages.
func render(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(t)
	}
	return fmt.Sprint(v)
}
