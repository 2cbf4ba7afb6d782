package generator

import (
	"strings"

	"github.com/abdulachik/postgen/internal/normalize"
)

const thinkClose = "</think>"

// ExtractPostContent turns a raw completion into post text. Reasoning models
// emit their chain of thought before a closing think tag; only the text after
// the last such tag is kept. Otherwise markup tags are stripped.
func ExtractPostContent(raw string) string {
	content := normalize.StripSurrogates(raw)

	if i := strings.LastIndex(content, thinkClose); i >= 0 {
		return strings.TrimSpace(content[i+len(thinkClose):])
	}

	return strings.TrimSpace(normalize.StripMarkup(content))
}
