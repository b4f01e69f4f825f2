package nlp

import (
	"regexp"
	"strings"
)

var (
	reNonWord  = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	reSpaces   = regexp.MustCompile(`[ \t\r\f\v]+`)
	reNewlines = regexp.MustCompile(`\n+`)
)

// Normalize приводит строку к нижнему регистру и заменяет всё, кроме букв и цифр, на пробелы.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = reNonWord.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NormalizeWhitespace collapses horizontal whitespace and blank lines, keeping line breaks.
func NormalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\u00A0", " ")
	s = reSpaces.ReplaceAllString(s, " ")
	s = reNewlines.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
