// Package rpid extracts the registrable domain a WebAuthn credential is
// scoped to from a login URL.
package rpid

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidURL is returned when the URL carries no hostname to extract
// a domain from.
var ErrInvalidURL = errors.New("rpid: URL has no hostname")

// Japanese ccTLD registrations commonly take the form <name>.<marker>.jp,
// so the registrable domain keeps three labels instead of two.
var multiPartMarkers = map[string]bool{
	"co": true,
	"or": true,
	"ne": true,
	"ac": true,
	"go": true,
}

// Extract returns the registrable domain of rawURL's hostname, e.g.
// "https://www.example.co.jp/login" -> "example.co.jp" and
// "https://www.example.com" -> "example.com". No case normalization is
// applied beyond what the URL parser itself does.
func Extract(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("rpid: parse %q: %w", rawURL, err)
	}
	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	labels := strings.Split(host, ".")
	if len(labels) >= 3 && multiPartMarkers[labels[len(labels)-2]] {
		return strings.Join(labels[len(labels)-3:], "."), nil
	}
	if len(labels) >= 2 {
		return strings.Join(labels[len(labels)-2:], "."), nil
	}
	return host, nil
}
