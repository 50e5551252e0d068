package engine

import (
	"encoding/json"
	"errors"
	"io"
	"strconv"

	"github.com/speakeasy-api/openapi/sequencedmap"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// Object is the insertion-ordered object representation produced by
// DecodeOrderedFromSource.
type Object = sequencedmap.Map[string, any]

// NewObject returns an empty ordered object.
func NewObject() *Object { return sequencedmap.New[string, any]() }

type numberConv func(string) (any, error)

type objectBuilder interface {
	set(k string, v any)
	value() any
}

type plainObject map[string]any

func (o plainObject) set(k string, v any) { o[k] = v }
func (o plainObject) value() any          { return map[string]any(o) }

type orderedObject struct{ m *Object }

func (o orderedObject) set(k string, v any) { o.m.Set(k, v) }
func (o orderedObject) value() any          { return o.m }

type decoder struct {
	src       TokenSource
	conv      numberConv
	newObject func() objectBuilder
}

func jsonNumber(s string) (any, error) { return json.Number(s), nil }

func float64Number(s string) (any, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// DecodeAnyFromSource builds an "any" value from the streaming token source.
// Objects become map[string]any and numbers json.Number.
func DecodeAnyFromSource(src TokenSource) (any, error) {
	d := decoder{src: src, conv: jsonNumber, newObject: func() objectBuilder { return plainObject{} }}
	return d.decode()
}

// DecodeAnyFromSourceAsFloat64 builds an "any" tree but decodes numbers as float64.
func DecodeAnyFromSourceAsFloat64(src TokenSource) (any, error) {
	d := decoder{src: src, conv: float64Number, newObject: func() objectBuilder { return plainObject{} }}
	return d.decode()
}

// DecodeOrderedFromSource builds an "any" tree whose objects keep the key order
// of the input (*Object). Schema documents are decoded this way because
// property order drives condition selection and issue order.
func DecodeOrderedFromSource(src TokenSource) (any, error) {
	d := decoder{src: src, conv: jsonNumber, newObject: func() objectBuilder { return orderedObject{m: NewObject()} }}
	return d.decode()
}

// ErrTrailingData reports input left over after the top-level value.
var ErrTrailingData = errors.New("unexpected data after top-level value")

// decode reads exactly one value and requires the source to end after it.
func (d decoder) decode() (any, error) {
	tok, err := d.src.NextToken()
	if err != nil {
		return nil, err
	}
	v, err := d.decodeValue(tok)
	if err != nil {
		return nil, err
	}
	switch _, err := d.src.NextToken(); {
	case errors.Is(err, io.EOF):
		return v, nil
	case err != nil:
		return nil, err
	default:
		return nil, ErrTrailingData
	}
}

func (d decoder) decodeValue(tok Token) (any, error) {
	switch tok.Kind {
	case KindBeginObject:
		return d.decodeObject()
	case KindBeginArray:
		return d.decodeArray()
	case KindString:
		return tok.String, nil
	case KindNumber:
		return d.conv(tok.Number)
	case KindBool:
		return tok.Bool, nil
	case KindNull:
		return nil, nil
	default:
		return nil, io.ErrUnexpectedEOF
	}
}

func (d decoder) decodeObject() (any, error) {
	m := d.newObject()
	for {
		tok, err := d.src.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndObject {
			return m.value(), nil
		}
		if tok.Kind != KindKey {
			return nil, io.ErrUnexpectedEOF
		}
		vt, err := d.src.NextToken()
		if err != nil {
			return nil, err
		}
		v, err := d.decodeValue(vt)
		if err != nil {
			return nil, err
		}
		m.set(tok.String, v)
	}
}

func (d decoder) decodeArray() (any, error) {
	arr := []any{}
	for {
		tok, err := d.src.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndArray {
			return arr, nil
		}
		v, err := d.decodeValue(tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}
