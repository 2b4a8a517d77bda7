// Package routing builds absolute URLs for the confirmation endpoints. The
// link mode follows the force-SSL configuration: full SSL mode rewrites the
// scheme of outbound links to https, the other modes keep the root URL as
// configured.
package routing

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/allisson/privacy/internal/config"
)

// confirmPath is the path of the confirmation form endpoint.
const confirmPath = "/privacy/confirm"

// LinkBuilder assembles outbound links from the application root URL.
type LinkBuilder struct {
	root     *url.URL
	forceSSL int
}

// NewLinkBuilder creates a LinkBuilder for the given root URL and force-SSL mode.
func NewLinkBuilder(rootURL string, forceSSL int) (*LinkBuilder, error) {
	root, err := url.Parse(strings.TrimRight(rootURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse root url: %w", err)
	}
	if root.Scheme == "" || root.Host == "" {
		return nil, fmt.Errorf("root url must be absolute: %q", rootURL)
	}

	return &LinkBuilder{root: root, forceSSL: forceSSL}, nil
}

// Root returns the application root URL with a trailing slash.
func (b *LinkBuilder) Root() string {
	return b.withScheme(b.root).String() + "/"
}

// ConfirmURL builds the one-click confirmation link with the plaintext token
// embedded as a query parameter.
func (b *LinkBuilder) ConfirmURL(token string) string {
	u := b.withScheme(b.root).JoinPath(confirmPath)
	q := u.Query()
	q.Set("confirm_token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

// ConfirmFormURL builds the link to the plain confirmation form, without a token.
func (b *LinkBuilder) ConfirmFormURL() string {
	return b.withScheme(b.root).JoinPath(confirmPath).String()
}

// withScheme returns a copy of u with the scheme rewritten when full SSL mode
// is active.
func (b *LinkBuilder) withScheme(u *url.URL) *url.URL {
	copied := *u
	if b.forceSSL == config.ForceSSLFull {
		copied.Scheme = "https"
	}
	return &copied
}
