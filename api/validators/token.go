package validators

import "strings"

// BearerToken extracts the token from an Authorization header value. The
// scheme prefix is optional.
func BearerToken(header string) (string, bool) {
	token := strings.TrimSpace(header)
	if strings.EqualFold(token, "bearer") {
		return "", false
	}
	if len(token) >= 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
