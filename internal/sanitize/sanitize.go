package sanitize

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// This package is the XSS boundary for free-text input. Cleaning runs before
// a value is stored, logged, or echoed anywhere, regardless of whether the
// field passed validation.

var (
	policy = bluemonday.StrictPolicy()

	jsScheme      = regexp.MustCompile(`(?i)javascript:`)
	eventHandlers = regexp.MustCompile(`(?i)\bon\w+\s*=`)
	angleBrackets = strings.NewReplacer("<", "", ">", "")
)

// Clean strips markup, javascript: URI schemes and inline on*= handler
// fragments from s, then trims surrounding whitespace.
func Clean(s string) string {
	out := policy.Sanitize(s)
	out = angleBrackets.Replace(out)
	out = jsScheme.ReplaceAllString(out, "")
	out = eventHandlers.ReplaceAllString(out, "")

	return strings.TrimSpace(out)
}

// CleanPtr cleans through an optional field in place. nil stays nil.
func CleanPtr(s *string) {
	if s == nil {
		return
	}

	*s = Clean(*s)
}

// Fields cleans every entry of a set of free-text fields in place.
func Fields(fields ...*string) {
	for _, f := range fields {
		CleanPtr(f)
	}
}
