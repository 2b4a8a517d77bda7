package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	t.Run("replaces all placeholders", func(t *testing.T) {
		template := "[SITENAME] request: [TOKENURL] or visit [FORMURL] with code [TOKEN]"
		subs := Substitutions{
			"[SITENAME]": "Example Site",
			"[TOKENURL]": "https://example.com/privacy/confirm?confirm_token=abc",
			"[FORMURL]":  "https://example.com/privacy/confirm",
			"[TOKEN]":    "abc",
		}

		out := Render(template, subs)

		assert.Equal(
			t,
			"Example Site request: https://example.com/privacy/confirm?confirm_token=abc "+
				"or visit https://example.com/privacy/confirm with code abc",
			out,
		)
	})

	t.Run("unescapes newline sequences", func(t *testing.T) {
		out := Render(`line one\n\nline two`, nil)
		assert.Equal(t, "line one\n\nline two", out)
	})

	t.Run("repeated placeholders are all replaced", func(t *testing.T) {
		out := Render("[URL] and again [URL]", Substitutions{"[URL]": "https://example.com/"})
		assert.Equal(t, "https://example.com/ and again https://example.com/", out)
	})

	t.Run("unknown placeholders pass through", func(t *testing.T) {
		out := Render("[NOPE]", Substitutions{"[URL]": "x"})
		assert.Equal(t, "[NOPE]", out)
	})
}
