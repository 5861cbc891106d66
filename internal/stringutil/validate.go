// Package stringutil provides format checks for free-text fields of info
// headers.
package stringutil

import (
	"net/url"
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// IsValidEmail checks if s is a valid email address.
func IsValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// IsValidURL accepts absolute http and https URLs, and relative URLs that
// start with "/".
func IsValidURL(s string) bool {
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https":
		return u.Host != ""
	case "":
		return strings.HasPrefix(s, "/")
	default:
		return false
	}
}
