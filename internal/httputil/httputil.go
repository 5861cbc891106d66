// Package httputil knows the HTTP vocabulary of Swagger 2.0 operations:
// methods, response codes and media types.
package httputil

import (
	"mime"
	"slices"
	"strconv"
	"strings"
)

// Response codes accepted in a Swagger 2.0 responses object.
const (
	minStatusCode = 100
	maxStatusCode = 599
)

// Operation methods, lowercase as they appear in a path item.
const (
	MethodGet     = "get"
	MethodPut     = "put"
	MethodPost    = "post"
	MethodDelete  = "delete"
	MethodOptions = "options"
	MethodHead    = "head"
	MethodPatch   = "patch"
)

// Methods lists the operation methods of a Swagger 2.0 path item, in the
// order they are emitted.
var Methods = []string{MethodGet, MethodPut, MethodPost, MethodDelete, MethodOptions, MethodHead, MethodPatch}

// IsMethod reports whether m is a Swagger 2.0 operation method (lowercase).
func IsMethod(m string) bool {
	return slices.Contains(Methods, m)
}

// MethodsWithoutBody lists methods whose requests should not carry a body.
var MethodsWithoutBody = []string{MethodGet, MethodHead, MethodDelete, MethodOptions}

// registered holds the RFC 9110 status codes, grouped by class.
var registered = map[byte][]int{
	'1': {100, 101, 102, 103},
	'2': {200, 201, 202, 203, 204, 205, 206, 207, 208, 226},
	'3': {300, 301, 302, 303, 304, 305, 307, 308},
	'4': {400, 401, 402, 403, 404, 405, 406, 407, 408, 409, 410, 411, 412, 413, 414,
		415, 416, 417, 418, 421, 422, 423, 424, 425, 426, 428, 429, 431, 451},
	'5': {500, 501, 502, 503, 504, 505, 506, 507, 508, 510, 511},
}

// statusCode parses a three-digit response key.
func statusCode(key string) (int, bool) {
	if len(key) != 3 {
		return 0, false
	}
	for i := range 3 {
		if key[i] < '0' || key[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(key)
	return n, err == nil
}

// ValidateStatusCode reports whether key may appear in a responses object:
// "default" or a code from 100 to 599.
func ValidateStatusCode(key string) bool {
	if key == "default" {
		return true
	}
	n, ok := statusCode(key)
	return ok && n >= minStatusCode && n <= maxStatusCode
}

// IsSuccessCode reports whether key is a 2xx code or "default".
func IsSuccessCode(key string) bool {
	if key == "default" {
		return true
	}
	n, ok := statusCode(key)
	return ok && n/100 == 2
}

// IsStandardStatusCode reports whether key is a registered HTTP status code.
// Strict validation warns about the rest.
func IsStandardStatusCode(key string) bool {
	n, ok := statusCode(key)
	return ok && slices.Contains(registered[key[0]], n)
}

// IsValidMediaType reports whether mediaType is usable in consumes or produces.
// The wildcards */* and type/* are accepted, */subtype is not.
func IsValidMediaType(mediaType string) bool {
	full, _, _ := strings.Cut(mediaType, ";")
	typ, sub, ok := strings.Cut(strings.TrimSpace(full), "/")
	if !ok || typ == "" || sub == "" || strings.Contains(sub, "/") {
		return false
	}
	if typ == "*" {
		return sub == "*"
	}
	if sub == "*" {
		return true
	}
	_, _, err := mime.ParseMediaType(mediaType)
	return err == nil
}
