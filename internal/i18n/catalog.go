// Package i18n resolves message keys to display strings for notification
// mails and user-facing errors. Messages are keyed per language and the best
// supported language is chosen by BCP 47 matching.
package i18n

import (
	"golang.org/x/text/language"
)

// Message keys resolved by the catalog.
const (
	KeyRequestSubject    = "privacy.request.subject"
	KeyExportBody        = "privacy.request.body.export"
	KeyRemoveBody        = "privacy.request.body.remove"
	KeyErrUnknownType    = "privacy.error.unknown_request_type"
	KeyErrAlreadyPending = "privacy.error.pending_request_open"
	KeyErrCheckFailed    = "privacy.error.checking_requests"
)

// messages holds the shipped message set per language tag.
var messages = map[language.Tag]map[string]string{
	language.English: {
		KeyRequestSubject: "[SITENAME] - Information request for your personal data",
		KeyExportBody: "We have received a request to export the personal data associated with " +
			"this email address on [URL].\\n\\nTo confirm this request, please click the " +
			"following link: [TOKENURL]\\n\\nAlternatively, visit [FORMURL] and enter the " +
			"following code: [TOKEN]\\n\\nIf you did not make this request you can safely " +
			"ignore this email.",
		KeyRemoveBody: "We have received a request to remove the personal data associated with " +
			"this email address on [URL].\\n\\nTo confirm this request, please click the " +
			"following link: [TOKENURL]\\n\\nAlternatively, visit [FORMURL] and enter the " +
			"following code: [TOKEN]\\n\\nIf you did not make this request you can safely " +
			"ignore this email.",
		KeyErrUnknownType:    "The privacy request type is not recognized.",
		KeyErrAlreadyPending: "There is already a pending request for this email address and request type.",
		KeyErrCheckFailed:    "Unable to check for existing requests, please try again later.",
	},
}

// supported lists the languages shipped with the catalog, in priority order.
var supported = []language.Tag{
	language.English,
}

var matcher = language.NewMatcher(supported)

// Catalog resolves message keys for a matched language.
type Catalog struct {
	tag language.Tag
}

// NewCatalog creates a catalog for the given BCP 47 language tag. Unknown or
// unsupported tags fall back to English.
func NewCatalog(lang string) *Catalog {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	matched, _, _ := matcher.Match(tag)

	// Matcher may return a more specific tag than the shipped one.
	base, _ := matched.Base()
	for _, s := range supported {
		if sBase, _ := s.Base(); sBase == base {
			return &Catalog{tag: s}
		}
	}
	return &Catalog{tag: language.English}
}

// Resolve returns the display string for the given key. Unknown keys resolve
// to the key itself so missing translations are visible instead of silent.
func (c *Catalog) Resolve(key string) string {
	if msg, ok := messages[c.tag][key]; ok {
		return msg
	}
	if msg, ok := messages[language.English][key]; ok {
		return msg
	}
	return key
}
