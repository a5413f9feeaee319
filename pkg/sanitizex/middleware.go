package sanitizex

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tutora/platform/pkg/errx"
	"github.com/tutora/platform/pkg/httpx"
)

// maxBodyBytes caps how much request body the sanitizer will buffer.
const maxBodyBytes = 1 << 20 // 1 MiB

// Middleware sanitizes query parameters and JSON request bodies before the
// route handler runs, so domain validators never see unsanitized markup.
// Paths under a skip prefix pass through untouched.
func Middleware(s *Sanitizer) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s.policy.SkipsPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			sanitizeQuery(s, r)

			if err := sanitizeBody(s, r); err != nil {
				httpx.WriteError(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// sanitizeQuery rewrites the request's query string with every value run
// through the same field-name policy as body fields, so a rich-text field
// submitted via query keeps the same markup subset it would in a body.
func sanitizeQuery(s *Sanitizer, r *http.Request) {
	query := r.URL.Query()
	if len(query) == 0 {
		return
	}

	clean := make(url.Values, len(query))
	for key, values := range query {
		for _, value := range values {
			clean.Add(key, s.CleanString(value, key))
		}
	}
	r.URL.RawQuery = clean.Encode()
}

// sanitizeBody decodes a JSON body, strips operator keys, sanitizes string
// leaves and replaces the body with the re-encoded result.
func sanitizeBody(s *Sanitizer, r *http.Request) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	contentType := r.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		return nil
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return errx.Validation("unable to read request body").WithCause(err)
	}
	_ = r.Body.Close()

	if len(bytes.TrimSpace(raw)) == 0 {
		r.Body = io.NopCloser(bytes.NewReader(nil))
		return nil
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return errx.Validation("request body is not valid JSON").WithCause(err)
	}

	decoded = StripOperatorKeys(decoded)
	decoded = s.CleanValue(decoded)

	clean, err := json.Marshal(decoded)
	if err != nil {
		return errx.Internal("failed to re-encode sanitized body").WithCause(err)
	}

	r.Body = io.NopCloser(bytes.NewReader(clean))
	r.ContentLength = int64(len(clean))
	return nil
}
