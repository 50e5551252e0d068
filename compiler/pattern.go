package compiler

import (
	"net/url"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/go-openapi/strfmt"
	"github.com/grafana/regexp"
)

type matcher interface {
	MatchString(s string) bool
}

// ecmaMatcher runs patterns RE2 cannot express (lookaround, backreferences).
type ecmaMatcher struct{ re *regexp2.Regexp }

func (m ecmaMatcher) MatchString(s string) bool {
	ok, err := m.re.MatchString(s)
	return err == nil && ok
}

const patternTimeout = time.Second

// compilePattern prefers the linear-time engine and falls back to ECMAScript
// semantics for patterns it rejects.
func compilePattern(p string) (matcher, error) {
	if re, err := regexp.Compile(p); err == nil {
		return re, nil
	}
	re, err := regexp2.Compile(p, regexp2.ECMAScript)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = patternTimeout
	return ecmaMatcher{re: re}, nil
}

// formatTest returns the checker for a format name. Unknown formats are
// annotations and produce no check.
func formatTest(name string) (func(string) bool, bool) {
	switch name {
	case "uri-reference":
		return func(s string) bool {
			_, err := url.Parse(s)
			return err == nil
		}, true
	case "regex":
		return func(s string) bool {
			_, err := compilePattern(s)
			return err == nil
		}, true
	}
	if !strfmt.Default.ContainsName(name) {
		return nil, false
	}
	return func(s string) bool { return strfmt.Default.Validates(name, s) }, true
}
