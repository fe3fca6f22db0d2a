package links

import (
	"net/url"
	"regexp"
	"strings"
)

// explicitScheme matches a leading "<scheme>://" as defined by RFC 3986.
var explicitScheme = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://`)

// IsValidSlug reports whether s is a non-empty run of ASCII letters, digits,
// dots, dashes and underscores.
func IsValidSlug(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isSlugByte(s[i]) {
			return false
		}
	}
	return true
}

func isSlugByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '.' || c == '-' || c == '_':
		return true
	default:
		return false
	}
}

// NormalizeURL turns operator input into an absolute http or https URL.
// Input without a scheme is assumed to be https; any other explicit scheme
// is rejected.
//
//	example.com/x  -> https://example.com/x
//	http://x.com   -> http://x.com
//	ftp://x.com    -> ErrInvalidURL
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidURL
	}

	lower := strings.ToLower(raw)
	hasHTTPScheme := strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
	if !hasHTTPScheme {
		if explicitScheme.MatchString(raw) {
			return "", ErrInvalidURL
		}
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", ErrInvalidURL
	}
	if u.Hostname() == "" {
		return "", ErrInvalidURL
	}
	return u.String(), nil
}
