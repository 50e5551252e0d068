package i18n

import (
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Capitalize upper-cases the first character of s and lower-cases the rest.
// Casers are stateful, so each call builds its own.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	_, n := utf8.DecodeRuneInString(s)
	return cases.Upper(language.Und).String(s[:n]) + cases.Lower(language.Und).String(s[n:])
}

// Label returns the human label of a field: its title, else the capitalized key.
func Label(title, key string) string {
	if title != "" {
		return title
	}
	if key == "" {
		return "Value"
	}
	return Capitalize(key)
}
