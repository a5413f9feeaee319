package sanitizex

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer applies the XSS-class transforms: plain-text stripping for
// ordinary string fields and a constrained HTML subset for rich-text fields.
type Sanitizer struct {
	policy Policy

	plain *bluemonday.Policy
	rich  *bluemonday.Policy
}

// New builds a sanitizer for the given policy. Plain fields go through the
// strict policy (all markup removed, text preserved); rich-text fields keep
// the UGC subset: common formatting and links, with script and event-handler
// vectors removed.
func New(policy Policy) *Sanitizer {
	return &Sanitizer{
		policy: policy,
		plain:  bluemonday.StrictPolicy(),
		rich:   bluemonday.UGCPolicy(),
	}
}

// Policy returns the sanitizer's configuration.
func (s *Sanitizer) Policy() Policy { return s.policy }

// CleanValue recursively sanitizes a decoded JSON value. String leaves are
// transformed according to the field name they sit under; numbers, booleans
// and nulls are walked but never altered. The input is modified in place
// where possible and returned.
func (s *Sanitizer) CleanValue(value any) any {
	return s.clean(value, "")
}

func (s *Sanitizer) clean(value any, field string) any {
	switch v := value.(type) {
	case string:
		return s.CleanString(v, field)
	case map[string]any:
		for key, item := range v {
			v[key] = s.clean(item, key)
		}
		return v
	case []any:
		// Array elements inherit the field name of the array itself.
		for i, item := range v {
			v[i] = s.clean(item, field)
		}
		return v
	default:
		return value
	}
}

// CleanString sanitizes a single string under the given field name.
func (s *Sanitizer) CleanString(value, field string) string {
	if s.policy.IsRichText(field) {
		return s.rich.Sanitize(value)
	}
	// Plain text: strip every tag, then unescape so "a < b" survives the
	// round trip as literal text rather than an HTML entity.
	return html.UnescapeString(s.plain.Sanitize(value))
}
