// Package sanitize strips active markup from upstream free-text and URL
// fields before they reach clients. Sanitization is type-directed: only
// fields known to originate as human-authored text or URLs are touched.
package sanitize

import (
	"html"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// maxPasses bounds the strip-to-fixpoint loop. Normal input converges in one
// or two passes; the cap guards against pathological entity nesting.
const maxPasses = 4

// Text strips all HTML markup from s and returns plain text. The transform
// is idempotent: running it over its own output yields the same string.
// Entity-encoded markup is decoded and stripped as well, so the result never
// contains an executable tag in either raw or encoded form.
func Text(s string) string {
	if s == "" {
		return ""
	}
	for i := 0; i < maxPasses; i++ {
		out := html.UnescapeString(policy.Sanitize(s))
		if out == s {
			return strings.TrimSpace(out)
		}
		s = out
	}
	// Did not converge; return the fully escaped form, which is inert.
	return strings.TrimSpace(policy.Sanitize(s))
}

// URL validates that s is an absolute http(s) URL and returns it unchanged,
// or "" when the scheme is anything else (javascript:, data:, relative).
func URL(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "http", "https":
		return s
	default:
		return ""
	}
}

// Texts maps Text over a slice, preserving order and length. A nil slice
// stays nil.
func Texts(ss []string) []string {
	if ss == nil {
		return nil
	}
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = Text(s)
	}
	return out
}

// URLs maps URL over a slice, preserving order and length.
func URLs(ss []string) []string {
	if ss == nil {
		return nil
	}
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = URL(s)
	}
	return out
}
