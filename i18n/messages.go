package i18n

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Wildcard is the Table field key that applies to every field.
const Wildcard = "*"

// Table holds custom messages by field key and keyword:
//
//	email:
//	  required: "Please enter your e-mail"
//	  pattern: "{label} looks wrong"
//	"*":
//	  required: "{label} must be filled in"
//
// It satisfies skemac.MessageResolver. Placeholders are filled from the
// message parameters.
type Table map[string]map[string]string

func (t Table) Message(keyword, key string, params map[string]any) (string, bool) {
	msg, ok := t[key][keyword]
	if !ok {
		msg, ok = t[Wildcard][keyword]
	}
	if !ok {
		return "", false
	}
	data := make(map[string]string, len(params))
	for k, v := range params {
		data[k] = fmt.Sprint(v)
	}
	return Expand(msg, data), true
}

// LoadTable parses a YAML (or JSON) message table.
func LoadTable(data []byte) (Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("i18n: message table: %w", err)
	}
	return t, nil
}

// ReadTable loads a message table from disk.
func ReadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadTable(data)
}
