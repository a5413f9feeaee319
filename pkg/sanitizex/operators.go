package sanitizex

import "strings"

// StripOperatorKeys removes map keys that could be interpreted as document-
// database query operators: keys starting with '$' or containing '.'. This
// guards a different injection class than the HTML sanitizer (query-operator
// injection vs XSS); the two are not substitutable and both always run.
func StripOperatorKeys(value any) any {
	switch v := value.(type) {
	case map[string]any:
		for key, item := range v {
			if strings.HasPrefix(key, "$") || strings.Contains(key, ".") {
				delete(v, key)
				continue
			}
			v[key] = StripOperatorKeys(item)
		}
		return v
	case []any:
		for i, item := range v {
			v[i] = StripOperatorKeys(item)
		}
		return v
	default:
		return value
	}
}
