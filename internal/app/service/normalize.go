package service

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidURL signals a target URL that is not an absolute http(s) URL.
var ErrInvalidURL = errors.New("invalid URL format")

var (
	schemePattern    = regexp.MustCompile(`(?i)^https?://`)
	anySchemePattern = regexp.MustCompile(`(?i)^[a-z][a-z0-9+.-]*://`)
)

// NormalizeURL trims the input, defaults the scheme to https:// when none is
// present, and verifies the result parses as an absolute http(s) URL with a
// host. The normalized form is what gets stored and redirected to.
func NormalizeURL(raw string) (string, error) {
	normalized := strings.TrimSpace(raw)
	if normalized == "" {
		return "", ErrInvalidURL
	}

	if !schemePattern.MatchString(normalized) {
		// Any other explicit scheme (ftp:// and friends) is rejected
		// rather than wrapped in https://.
		if anySchemePattern.MatchString(normalized) {
			return "", ErrInvalidURL
		}
		normalized = "https://" + normalized
	}

	u, err := url.Parse(normalized)
	if err != nil {
		return "", ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", ErrInvalidURL
	}
	if u.Host == "" || strings.ContainsAny(u.Host, " ") {
		return "", ErrInvalidURL
	}

	return normalized, nil
}
