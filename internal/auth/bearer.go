package auth

import "strings"

// bearerPrefix is the required Authorization scheme prefix. Matching is
// case-sensitive with exactly one space, per RFC 6750's common form.
const bearerPrefix = "Bearer "

// ExtractBearerToken pulls the raw token out of an Authorization header
// value. Returns "" when the header is absent, uses another scheme, or
// carries a blank token; all three look identical to callers.
func ExtractBearerToken(header string) string {
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}
