// Package sanitizex scrubs inbound request data of markup-injection and
// query-operator-injection vectors before any domain validation sees it.
package sanitizex

import "strings"

// Policy is the request-scoped sanitization configuration.
type Policy struct {
	// SkipPathPrefixes exempts matching request paths entirely. Used for
	// binary/multipart upload endpoints where body inspection is meaningless
	// or harmful.
	SkipPathPrefixes []string

	// RichTextFields names the fields permitted to retain a constrained
	// HTML subset after sanitization. Every other string field is treated
	// as plain text and fully stripped of markup.
	RichTextFields map[string]struct{}
}

// NewPolicy builds a policy from slices of path prefixes and field names.
func NewPolicy(skipPrefixes, richFields []string) Policy {
	rich := make(map[string]struct{}, len(richFields))
	for _, f := range richFields {
		rich[f] = struct{}{}
	}
	return Policy{SkipPathPrefixes: skipPrefixes, RichTextFields: rich}
}

// SkipsPath reports whether the request path is exempt from sanitization.
func (p Policy) SkipsPath(path string) bool {
	for _, prefix := range p.SkipPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// IsRichText reports whether the named field keeps the constrained HTML
// subset.
func (p Policy) IsRichText(field string) bool {
	_, ok := p.RichTextFields[field]
	return ok
}
