package sanitizer

import (
	"regexp"
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var reWhitespace = regexp.MustCompile(`\s+`)

func removeWhitespace(s string) string {
	return reWhitespace.ReplaceAllString(s, "")
}

// SanitizeNotes keeps line structure but trims each line, collapses inner
// whitespace and drops control characters and blank lines.
func SanitizeNotes(input string) string {
	p := Pipeline{
		func(s string) string { return strings.ReplaceAll(s, "\r\n", "\n") },
		stripControl,
		normalizeLines,
	}
	return p.Apply(input)
}

// SanitizeText flattens input onto a single line.
func SanitizeText(input string) string {
	p := Pipeline{
		stripControl,
		TrimAndNormalize,
	}
	return p.Apply(input)
}

// SanitizeIdentifier is for ids and external payment references, which never
// contain whitespace.
func SanitizeIdentifier(input string) string {
	p := Pipeline{
		stripControl,
		removeWhitespace,
	}
	return p.Apply(input)
}

// SanitizeCode lowercases enum-like values such as payment methods.
func SanitizeCode(input string) string {
	p := Pipeline{
		removeWhitespace,
		strings.ToLower,
	}
	return p.Apply(input)
}
