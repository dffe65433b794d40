package frame

import (
	"fmt"
	"net/url"
	"strings"
)

// SrcURL builds the swap frame's source URL, carrying the session token
// and chain id as query parameters the way the embedded page expects.
func SrcURL(frameURL, token, chainID string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(frameURL))
	if err != nil {
		return "", err
	}

	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid frame url: %s", frameURL)
	}

	q := u.Query()
	if token != "" {
		q.Set("token", token)
	}
	if chainID != "" {
		q.Set("chainId", chainID)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}
