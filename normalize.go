package petango

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	lowerThenUpper = regexp.MustCompile(`([a-z\d])([A-Z])`)
	wordStart      = regexp.MustCompile(`([^_])([A-Z][a-z])`)
)

// Normalize converts a CamelCase field name to snake_case:
// "AnimalID" becomes "animal_id" and "onHold" becomes "on_hold".
// Names the regexp engine cannot process are returned unchanged.
func Normalize(name string) string {
	return NormalizeWith(NopLogger{}, name)
}

// NormalizeWith is Normalize reporting conversion failures to logger.
func NormalizeWith(logger Logger, name string) string {
	if !utf8.ValidString(name) {
		logger.Error("cannot convert field name to snake_case", "function", "Normalize", "string", name)
		return name
	}
	snake := lowerThenUpper.ReplaceAllString(name, "${1}_${2}")
	snake = wordStart.ReplaceAllString(snake, "${1}_${2}")
	return strings.ToLower(snake)
}
