// Package sanitize strips markup from user-typed text before it is stored.
package sanitize

import (
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

var entityReplacer = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
	"&quot;", `"`,
	"&#39;", "'",
)

// Text removes HTML tags, decodes the common entities, strips any tags the
// decoding revealed and trims surrounding whitespace.
func Text(s string) string {
	out := tagPattern.ReplaceAllString(s, "")
	out = entityReplacer.Replace(out)
	out = tagPattern.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}

// Fields applies Text to every value of m in place.
func Fields(m map[string]string) {
	for key, value := range m {
		m[key] = Text(value)
	}
}
