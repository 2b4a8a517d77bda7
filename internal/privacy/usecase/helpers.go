package usecase

import (
	"strings"

	"golang.org/x/net/idna"

	apperrors "github.com/allisson/privacy/internal/errors"
)

// NormalizeEmail rewrites the domain part of an email address into its
// punycode (ASCII-compatible) form so that visually-equivalent addresses with
// non-ASCII domains compare and store equal. The local part is kept verbatim
// apart from surrounding whitespace.
func NormalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)

	at := strings.LastIndex(email, "@")
	if at < 0 {
		// Leave malformed addresses to field validation.
		return email, nil
	}

	local, domain := email[:at], email[at+1:]

	asciiDomain, err := idna.Lookup.ToASCII(strings.ToLower(domain))
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, "email domain cannot be encoded")
	}

	return local + "@" + asciiDomain, nil
}
