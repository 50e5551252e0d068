package jsonschema

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"

	skemac "github.com/reoring/skemac"
	eng "github.com/reoring/skemac/internal/engine"
)

// Parse decodes a JSON schema document, keeping property order, rejecting
// duplicate keys and expanding local $refs.
func Parse(data []byte) (*Schema, error) {
	return Decode(skemac.JSONBytes(data))
}

// Decode reads a schema document from a token Source.
func Decode(src skemac.Source) (*Schema, error) {
	enforced := skemac.EnforceSource(src, skemac.ParseOpt{Strictness: skemac.Strictness{OnDuplicateKey: skemac.Error}})
	tree, err := eng.DecodeOrderedFromSource(skemac.EngineTokenSource(enforced))
	if err != nil {
		return nil, errors.Wrap(err, "decode schema")
	}
	return build(tree)
}

// ParseYAML decodes the first document of a YAML stream.
func ParseYAML(data []byte) (*Schema, error) {
	tree, err := NewStrictYAMLReader(bytes.NewReader(data)).Next()
	if err != nil {
		return nil, errors.Wrap(err, "decode schema")
	}
	return build(tree)
}

// ParseDocument sniffs the encoding: documents whose first significant byte
// opens a JSON object are parsed as JSON, everything else as YAML.
func ParseDocument(data []byte) (*Schema, error) {
	if t := bytes.TrimSpace(data); len(t) > 0 && t[0] == '{' {
		return Parse(data)
	}
	return ParseYAML(data)
}

// ReadFile loads a schema document from disk, choosing the decoder by extension.
func ReadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s *Schema
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		s, err = ParseYAML(data)
	case ".json":
		s, err = Parse(data)
	default:
		s, err = ParseDocument(data)
	}
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return s, nil
}

func build(tree any) (*Schema, error) {
	resolved, err := Dereference(tree)
	if err != nil {
		return nil, err
	}
	return FromValue(resolved)
}
