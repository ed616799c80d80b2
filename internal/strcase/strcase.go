package strcase

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ToPascalCase joins the underscore separated words of name, upper-casing the
// first letter of each: "test_mod" becomes "TestMod". Letters inside a word
// keep their case.
func ToPascalCase(name string) string {
	var b strings.Builder
	for _, word := range strings.Split(name, "_") {
		if word == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(word)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(word[size:])
	}
	return b.String()
}

// ToSnakeCase converts camel and Pascal case to snake case, keeping acronyms
// together: "URLValue" becomes "url_value".
func ToSnakeCase(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	var result []rune

	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && runes[i-1] != '_' {
				prev := runes[i-1]
				nextLower := i < len(runes)-1 && unicode.IsLower(runes[i+1])

				if unicode.IsLower(prev) || unicode.IsDigit(prev) || nextLower {
					result = append(result, '_')
				}
			}
			r = unicode.ToLower(r)
		}

		result = append(result, r)
	}

	return string(result)
}
