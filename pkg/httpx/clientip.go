package httpx

import (
	"net"
	"net/http"
	"strings"
)

// Proxy headers this package knows how to interpret.
const (
	HeaderRealIP       = "X-Real-IP"
	HeaderForwardedFor = "X-Forwarded-For"
)

// ClientIdentity derives the rate-limit key for a request.
//
// The header list is an explicit trust contract, not a convention: a header
// is only trustworthy if the upstream reverse proxy strips or overwrites
// client-supplied values for it. On an exposed origin the list must be
// empty, otherwise any client can spoof its own key and evade throttling.
type ClientIdentity struct {
	// TrustedHeaders are consulted in order before falling back to the
	// connection address. Only HeaderRealIP and HeaderForwardedFor are
	// understood; X-Forwarded-For yields its first hop.
	TrustedHeaders []string
}

// ClientIP returns the best-available client address: the first trusted
// header carrying a parseable IP, else the bare connection address. The
// result is untrusted input either way; it is a throttling key, not an
// authentication signal.
func (c ClientIdentity) ClientIP(r *http.Request) string {
	for _, header := range c.TrustedHeaders {
		value := r.Header.Get(header)
		if value == "" {
			continue
		}

		if strings.EqualFold(header, HeaderForwardedFor) {
			// First hop is the original client when the proxy appends.
			value = strings.TrimSpace(strings.Split(value, ",")[0])
		} else {
			value = strings.TrimSpace(value)
		}

		if net.ParseIP(value) != nil {
			return value
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
