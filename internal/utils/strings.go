package utils

import (
	"strings"
)

// NormalizeSpace collapses repeated whitespace into a single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// StripTokenQuotes removes one leading and one trailing double quote.
// Tokens persisted as JSON strings by the dashboard arrive quoted.
func StripTokenQuotes(token string) string {
	token = strings.TrimPrefix(token, `"`)
	return strings.TrimSuffix(token, `"`)
}

// BearerToken extracts the token of an "Authorization: Bearer ..." header.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	tok := StripTokenQuotes(strings.TrimSpace(parts[1]))
	if tok == "" {
		return "", false
	}
	return tok, true
}
