package identity

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	byClause    = regexp.MustCompile(`(?i)\s+by\s+`)
	creatorTail = regexp.MustCompile(`^[\p{L}\p{N}' ._@-]+$`)
)

// NormalizeName applies the name normalization pipeline, in order: collapse
// whitespace, strip a trailing "by <creator>" clause, then title-case only if
// the remainder is entirely lowercase. Stripping the creator before the
// casing check keeps a lowercase creator name from forcing title-casing onto
// a deliberately cased mod name.
func NormalizeName(raw string) string {
	name := stripTrailingCreator(strings.Join(strings.Fields(raw), " "))
	if name == "" {
		return ""
	}
	if isAllLower(name) {
		name = cases.Title(language.Und).String(name)
	}
	return name
}

// stripTrailingCreator removes the last "by <creator>" clause. Only the last
// "by" is considered so a mod name that itself contains "by" survives.
func stripTrailingCreator(name string) string {
	matches := byClause.FindAllStringIndex(name, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		tail := name[m[1]:]
		if tail != "" && creatorTail.MatchString(tail) {
			stripped := strings.TrimSpace(name[:m[0]])
			if stripped != "" {
				return stripped
			}
		}
	}
	return name
}

func isAllLower(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsUpper(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}
