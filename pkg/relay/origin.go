package relay

import (
	"fmt"
	"net/url"
	"strings"
)

// IsAllowed decides whether a message claiming messageOrigin may be
// processed by a relay trusting frameOrigin. In production only the
// normalized origins being equal passes; outside production local
// development origins are also accepted. Rejected messages are dropped
// silently by the caller, a forged origin gets no signal back.
func IsAllowed(messageOrigin, frameOrigin string, production bool) bool {
	if SameOrigin(messageOrigin, frameOrigin) {
		return true
	}

	if production {
		return false
	}

	return isLocalOrigin(messageOrigin)
}

// SameOrigin compares two origins after normalization. A leading www.
// label is not significant: https://www.example.com and
// https://example.com are the same origin here.
func SameOrigin(a, b string) bool {
	na := normalizeOrigin(a)
	nb := normalizeOrigin(b)

	return na != "" && na == nb
}

func normalizeOrigin(origin string) string {
	u, err := url.Parse(strings.TrimSpace(origin))
	if err != nil || u.Scheme == "" {
		return ""
	}

	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")

	return strings.ToLower(u.Scheme) + "://" + host
}

func isLocalOrigin(origin string) bool {
	// browsers attach the literal "null" origin to local files
	if origin == "null" {
		return true
	}

	u, err := url.Parse(strings.TrimSpace(origin))
	if err != nil {
		return false
	}

	if u.Scheme == "file" {
		return true
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}

	return false
}

// OriginOf extracts the scheme://host origin of rawURL, the identity
// the relay trusts for the frame it posts to.
func OriginOf(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", err
	}

	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid frame url: %s", rawURL)
	}

	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host), nil
}
