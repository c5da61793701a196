// Package nav turns raw omnibox input into a destination URL.
package nav

import (
	"net/url"
	"strings"
)

// Resolver applies the omnibox policy. It is pure and total: every input
// resolves to some URL string, it never fails.
type Resolver struct {
	SearchTemplate string // search engine URL prefix, query appended encoded
	HTTPSOnly      bool   // rewrite resolved http:// URLs to https://
}

// IsSearchQuery reports whether input reads as a search rather than a
// host/URL: it contains a space, or has no scheme and no dot. Inputs like
// "localhost" therefore resolve to a search.
func IsSearchQuery(input string) bool {
	s := strings.TrimSpace(input)
	if strings.Contains(s, "://") {
		return false
	}
	return strings.Contains(s, " ") || !strings.Contains(s, ".")
}

// Resolve maps omnibox input to a destination URL. Search queries are
// interpolated into the search template; bare hosts get an https:// prefix;
// HTTPSOnly rewrites any http:// result.
func (r Resolver) Resolve(input string) string {
	s := strings.TrimSpace(input)

	switch {
	case IsSearchQuery(s):
		s = r.SearchTemplate + url.QueryEscape(s)
	case !strings.Contains(s, "://"):
		s = "https://" + s
	}

	if r.HTTPSOnly && strings.HasPrefix(s, "http://") {
		s = "https://" + strings.TrimPrefix(s, "http://")
	}
	return s
}

// Domain extracts a registrable-domain-like key from a URL: the hostname
// with a leading "www." stripped. Malformed or hostless URLs yield "".
func Domain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
