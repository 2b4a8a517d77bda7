package mail

import (
	"strings"
)

// Substitutions maps template placeholders to their replacement values.
// Catalog messages escape newlines as the two-character sequence `\n`, so the
// renderer always carries that substitution as well.
type Substitutions map[string]string

// Render replaces every placeholder in the template with its substitution
// value and unescapes `\n` sequences into real newlines.
func Render(template string, subs Substitutions) string {
	out := template
	for placeholder, value := range subs {
		out = strings.ReplaceAll(out, placeholder, value)
	}
	return strings.ReplaceAll(out, `\n`, "\n")
}
