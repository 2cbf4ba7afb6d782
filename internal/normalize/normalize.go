// Package normalize cleans post text coming from the corpus or the LLM.
package normalize

import (
	"regexp"
	"strings"
)

var markupPattern = regexp.MustCompile(`<[^>]+>`)

// StripSurrogates removes UTF-16 surrogate artefacts.
//
// A surrogate code point cannot be encoded as valid UTF-8, so in a Go string it
// shows up either as an invalid byte sequence (WTF-8 / CESU-8 input) or as
// U+FFFD, which encoding/json substitutes for a lone \uD800-\uDFFF escape.
// Both forms are dropped.
func StripSurrogates(s string) string {
	s = strings.ToValidUTF8(s, "")
	return strings.ReplaceAll(s, "\uFFFD", "")
}

// Clean strips surrogate artefacts, collapses every whitespace run
// (newlines included) into a single space and trims the result.
func Clean(s string) string {
	return strings.Join(strings.Fields(StripSurrogates(s)), " ")
}

// StripMarkup removes anything that looks like an XML/HTML tag.
func StripMarkup(s string) string {
	return markupPattern.ReplaceAllString(s, "")
}
