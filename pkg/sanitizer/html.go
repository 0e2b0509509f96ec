// Package sanitizer cleans submitted form values with bluemonday.
//
// The functions match crud.Policy.Sanitize:
//
//	crud.Policy{Sanitize: sanitizer.StripTags}
package sanitizer

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strict     *bluemonday.Policy
	formatting *bluemonday.Policy
	initOnce   sync.Once
)

func policies() {
	initOnce.Do(func() {
		strict = bluemonday.StrictPolicy()

		formatting = bluemonday.NewPolicy()
		formatting.AllowStandardURLs()
		formatting.AllowElements(
			"p", "br", "strong", "b", "em", "i",
			"ul", "ol", "li", "code", "pre", "blockquote",
		)
		formatting.AllowAttrs("href").OnElements("a")
		formatting.RequireNoFollowOnLinks(true)
	})
}

// StripTags removes all markup and trims surrounding space. Entities the
// policy escapes are decoded again, so "a & b" stays "a & b" in storage
// and is escaped once by the view.
func StripTags(s string) string {
	policies()
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// SanitizeHTML keeps basic formatting and links and drops everything
// else, including scripts, event handlers and javascript: URLs.
func SanitizeHTML(s string) string {
	policies()
	return formatting.Sanitize(s)
}

// WithPolicy returns a sanitizer for a custom policy. A nil policy leaves
// values unchanged.
func WithPolicy(p *bluemonday.Policy) func(string) string {
	if p == nil {
		return func(s string) string { return s }
	}
	return p.Sanitize
}
