// Package sanitize provides input cleanup and format predicates. String
// sanitization is defense in depth; persistence still goes through
// parameterized queries.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,30}$`)
	strippedChars   = regexp.MustCompile(`[<>"';]`)
)

var commentSequences = []string{"--", "/*", "*/"}

// String strips angle brackets, quotes, semicolons and comment sequences,
// then trims whitespace.
func String(s string) string {
	s = strippedChars.ReplaceAllString(s, "")
	for _, seq := range commentSequences {
		s = strings.ReplaceAll(s, seq, "")
	}
	return strings.TrimSpace(s)
}

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func ValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

func ValidPassword(password string) bool {
	return len(password) >= 6
}
