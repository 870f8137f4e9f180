// pantry/validate/email.go
package validate

import "strings"

// SimpleEmailValid is a light server-side guardrail, not an RFC validator.
// It rejects empty input, a missing '@', and domains without a dot, so
// local-only addresses such as "user@localhost" fail.
func SimpleEmailValid(s string) bool {
	s = strings.TrimSpace(s)
	at := strings.IndexByte(s, '@')
	if at <= 0 || at == len(s)-1 || strings.Count(s, "@") != 1 {
		return false
	}
	domain := s[at+1:]
	return strings.Contains(domain, ".") && !strings.ContainsAny(s, " \t\r\n")
}
