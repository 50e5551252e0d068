package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized default messages for schema keywords and
// decoder codes. data provides the values to embed ("label", "min", "max",
// "types", ...); placeholders are written as {name}.
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"required":         "{label} is required",
		"nullable":         "{label} cannot be null",
		"type":             "{label} does not match type {types}",
		"types":            "{label} does not match any declared type ({types})",
		"const":            "{label} does not match constant",
		"enum":             "{label} does not match any of the enumerables",
		"minLength":        "{label} does not match minimum length of {min}",
		"maxLength":        "{label} does not match maximum length of {max}",
		"pattern":          "{label} does not match pattern {pattern}",
		"format":           "{label} does not match format {format}",
		"minimum":          "{label} does not match minimum of {min}",
		"maximum":          "{label} does not match maximum of {max}",
		"exclusiveMinimum": "{label} does not match exclusive minimum of {min}",
		"exclusiveMaximum": "{label} does not match exclusive maximum of {max}",
		"multipleOf":       "{label} does not match multiple of {multipleOf}",
		"minItems":         "{label} does not match minimum items of {min}",
		"maxItems":         "{label} does not match maximum items of {max}",
		"uniqueItems":      "{label} does not match unique items",
		"contains":         "{label} does not match contains",
		"allOf":            "{label} does not match all of the schemas",
		"anyOf":            "{label} does not match any of the schemas",
		"oneOf":            "{label} does not match exactly one of the schemas",
		"not":              "{label} matches a schema it must not match",
		"parse_error":      "parse error",
		"duplicate_key":    "duplicate key",
		"truncated":        "truncated",
	},
	"ja": {
		"required":         "{label}は必須です",
		"nullable":         "{label}にnullは指定できません",
		"type":             "{label}の型が{types}と一致しません",
		"types":            "{label}は宣言されたどの型({types})とも一致しません",
		"const":            "{label}が定数と一致しません",
		"enum":             "{label}が列挙値のいずれとも一致しません",
		"minLength":        "{label}は{min}文字以上である必要があります",
		"maxLength":        "{label}は{max}文字以下である必要があります",
		"pattern":          "{label}がパターン{pattern}と一致しません",
		"format":           "{label}が形式{format}と一致しません",
		"minimum":          "{label}は{min}以上である必要があります",
		"maximum":          "{label}は{max}以下である必要があります",
		"exclusiveMinimum": "{label}は{min}より大きい必要があります",
		"exclusiveMaximum": "{label}は{max}より小さい必要があります",
		"multipleOf":       "{label}は{multipleOf}の倍数である必要があります",
		"minItems":         "{label}の要素数は{min}以上である必要があります",
		"maxItems":         "{label}の要素数は{max}以下である必要があります",
		"uniqueItems":      "{label}の要素が重複しています",
		"contains":         "{label}に条件を満たす要素がありません",
		"allOf":            "{label}がすべてのスキーマと一致しません",
		"anyOf":            "{label}がいずれのスキーマとも一致しません",
		"oneOf":            "{label}がちょうど一つのスキーマと一致しません",
		"not":              "{label}が禁止されたスキーマと一致します",
		"parse_error":      "解析エラー",
		"duplicate_key":    "キーが重複しています",
		"truncated":        "打ち切られました",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dictionaries[t.lang][code]
	if !ok {
		msg, ok = dictionaries["en"][code]
	}
	if !ok {
		return code
	}
	return Expand(msg, data)
}

// Expand substitutes {name} placeholders with values from data.
func Expand(msg string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// Dictionary returns the built-in Translator for lang ("en"/"ja").
func Dictionary(lang string) Translator {
	if lang != "ja" {
		lang = "en"
	}
	return dictTranslator{lang: lang}
}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	SetTranslator(Dictionary(lang))
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// Current returns the process-wide Translator.
func Current() Translator {
	mu.RLock()
	defer mu.RUnlock()
	return currentTranslator
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return Current().Message(code, data) }
