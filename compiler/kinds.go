package compiler

import (
	"encoding/json"
	"math"
	"math/big"
	"reflect"
	"strings"

	eng "github.com/reoring/skemac/internal/engine"
)

// Kind is one of the closed set of primitive value kinds a schema can declare.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindInteger
	KindBoolean
	KindNull
	KindArray
	KindObject
	// kindAny is only used for condition fragments that declare no type; it
	// accepts every value and enforces kind-agnostic keywords (const, enum).
	kindAny
)

var kindNames = map[string]Kind{
	"string":  KindString,
	"number":  KindNumber,
	"integer": KindInteger,
	"boolean": KindBoolean,
	"null":    KindNull,
	"array":   KindArray,
	"object":  KindObject,
}

// KindOf maps a type keyword value to its Kind.
func KindOf(name string) (Kind, bool) {
	k, ok := kindNames[name]
	return k, ok
}

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindInteger:
		return "integer"
	case KindBoolean:
		return "boolean"
	case KindNull:
		return "null"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case kindAny:
		return "any"
	}
	return "unknown"
}

// Matches reports whether v has this runtime kind. Integer is a numeric
// subtype: every integer also matches KindNumber.
func (k Kind) Matches(v any) bool {
	switch k {
	case KindString:
		_, ok := v.(string)
		return ok
	case KindNumber:
		return isNumber(v)
	case KindInteger:
		return isInteger(v)
	case KindBoolean:
		_, ok := v.(bool)
		return ok
	case KindNull:
		return v == nil
	case KindArray:
		_, ok := asSlice(v)
		return ok
	case KindObject:
		_, ok := asObject(v)
		return ok
	case kindAny:
		return true
	}
	return false
}

func isNumber(v any) bool {
	switch t := v.(type) {
	case json.Number:
		if _, ok := new(big.Rat).SetString(string(t)); ok {
			return true
		}
		_, ok := parseWide(t)
		return ok
	case float64:
		return !math.IsNaN(t) && !math.IsInf(t, 0)
	case float32:
		return !math.IsNaN(float64(t)) && !math.IsInf(float64(t), 0)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

func isInteger(v any) bool {
	if r, ok := toRat(v); ok {
		return r.IsInt()
	}
	if n, ok := v.(json.Number); ok {
		w, ok := parseWide(n)
		return ok && w.integral()
	}
	return false
}

// wideNumber is a JSON number whose exponent is beyond what big.Rat parses,
// held as mant × 10^exp.
type wideNumber struct {
	mant *big.Rat
	exp  *big.Int
}

func parseWide(n json.Number) (wideNumber, bool) {
	s := string(n)
	i := strings.IndexAny(s, "eE")
	if i <= 0 || strings.TrimLeft(s[:i], "-0123456789.") != "" {
		return wideNumber{}, false
	}
	mant, ok := new(big.Rat).SetString(s[:i])
	if !ok {
		return wideNumber{}, false
	}
	exp, ok := new(big.Int).SetString(s[i+1:], 10)
	if !ok {
		return wideNumber{}, false
	}
	return wideNumber{mant: mant, exp: exp}, true
}

func (w wideNumber) integral() bool { return w.mant.Sign() == 0 || w.exp.Sign() > 0 }

// cmp orders w against a finite limit. A positive exponent puts w beyond every
// float64, a negative one puts it strictly between zero and every nonzero limit.
func (w wideNumber) cmp(limit float64) int {
	sign := w.mant.Sign()
	switch {
	case sign == 0:
		return big.NewRat(0, 1).Cmp(ratFromFloat(limit))
	case w.exp.Sign() > 0 || limit == 0:
		return sign
	case limit > 0:
		return -1
	default:
		return 1
	}
}

// multipleOf reports whether w / div is an integer.
func (w wideNumber) multipleOf(div *big.Rat) bool {
	if w.mant.Sign() == 0 {
		return true
	}
	if w.exp.Sign() < 0 {
		return false
	}
	// w/div = (p·b·10^exp) / (q·a) for w.mant = p/q and div = a/b.
	m := new(big.Int).Mul(w.mant.Denom(), new(big.Int).Abs(div.Num()))
	t := new(big.Int).Exp(big.NewInt(10), w.exp, m)
	t.Mul(t, w.mant.Num())
	t.Mul(t, div.Denom())
	return t.Mod(t, m).Sign() == 0
}

// toRat converts numeric values to exact rationals. Non-finite floats are not numbers.
func toRat(v any) (*big.Rat, bool) {
	switch t := v.(type) {
	case json.Number:
		return new(big.Rat).SetString(string(t))
	case float64:
		r := new(big.Rat)
		if r.SetFloat64(t) == nil {
			return nil, false
		}
		return r, true
	case float32:
		r := new(big.Rat)
		if r.SetFloat64(float64(t)) == nil {
			return nil, false
		}
		return r, true
	case int:
		return new(big.Rat).SetInt64(int64(t)), true
	case int8:
		return new(big.Rat).SetInt64(int64(t)), true
	case int16:
		return new(big.Rat).SetInt64(int64(t)), true
	case int32:
		return new(big.Rat).SetInt64(int64(t)), true
	case int64:
		return new(big.Rat).SetInt64(t), true
	case uint:
		return new(big.Rat).SetUint64(uint64(t)), true
	case uint8:
		return new(big.Rat).SetUint64(uint64(t)), true
	case uint16:
		return new(big.Rat).SetUint64(uint64(t)), true
	case uint32:
		return new(big.Rat).SetUint64(uint64(t)), true
	case uint64:
		return new(big.Rat).SetUint64(t), true
	}
	return nil, false
}

// asSlice accepts []any directly and other slice types through reflection.
func asSlice(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case nil, string, []byte:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// asObject accepts map[string]any, ordered objects and other string-keyed maps.
func asObject(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case *eng.Object:
		if t == nil {
			return nil, false
		}
		m := make(map[string]any, t.Len())
		for k, e := range t.All() {
			m[k] = e
		}
		return m, true
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}
