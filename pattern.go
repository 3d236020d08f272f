// SPDX-License-Identifier: GPL-3.0-or-later

package httpobs

import "strings"

// contentTypeWildcard matches any value of a content type segment.
const contentTypeWildcard = "*"

// MatchContentType reports whether the concrete content type actual
// matches the given "type/subtype" pattern.
//
// Either pattern segment may be "*", which matches any value. Non-wildcard
// segments are compared with case-sensitive string equality.
//
// Both pattern and actual must split on "/" into exactly two non-empty
// segments; otherwise the result is false. Callers that need to tell a
// malformed pattern from a mismatch should use [ValidContentType].
func MatchContentType(pattern, actual string) bool {
	ptype, psub, ok := splitContentType(pattern)
	if !ok {
		return false
	}
	atype, asub, ok := splitContentType(actual)
	if !ok {
		return false
	}
	return matchSegment(ptype, atype) && matchSegment(psub, asub)
}

// ValidContentType reports whether s has the "type/subtype" shape
// required by [MatchContentType].
func ValidContentType(s string) bool {
	_, _, ok := splitContentType(s)
	return ok
}

func splitContentType(s string) (string, string, bool) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func matchSegment(pattern, actual string) bool {
	return pattern == contentTypeWildcard || pattern == actual
}
