package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCatalog(t *testing.T) {
	t.Run("english", func(t *testing.T) {
		c := NewCatalog("en")
		assert.Contains(t, c.Resolve(KeyRequestSubject), "[SITENAME]")
	})

	t.Run("regional variant falls back to base language", func(t *testing.T) {
		c := NewCatalog("en-US")
		assert.Contains(t, c.Resolve(KeyExportBody), "[TOKENURL]")
	})

	t.Run("unsupported language falls back to english", func(t *testing.T) {
		c := NewCatalog("pt-BR")
		assert.Contains(t, c.Resolve(KeyRemoveBody), "[TOKENURL]")
	})

	t.Run("invalid tag falls back to english", func(t *testing.T) {
		c := NewCatalog("not a tag")
		assert.NotEmpty(t, c.Resolve(KeyErrCheckFailed))
	})
}

func TestCatalog_Resolve(t *testing.T) {
	c := NewCatalog("en")

	t.Run("known keys resolve", func(t *testing.T) {
		for _, key := range []string{
			KeyRequestSubject,
			KeyExportBody,
			KeyRemoveBody,
			KeyErrUnknownType,
			KeyErrAlreadyPending,
			KeyErrCheckFailed,
		} {
			assert.NotEqual(t, key, c.Resolve(key), key)
		}
	})

	t.Run("unknown key resolves to itself", func(t *testing.T) {
		assert.Equal(t, "no.such.key", c.Resolve("no.such.key"))
	})

	t.Run("bodies differ per request type", func(t *testing.T) {
		assert.NotEqual(t, c.Resolve(KeyExportBody), c.Resolve(KeyRemoveBody))
	})
}
