// pantry/validate/names.go
package validate

import (
	"strings"
	"unicode"
)

// MaxUsernameLen bounds registered usernames.
const MaxUsernameLen = 32

// UsernameValid reports whether s is usable as a username: 2 to
// MaxUsernameLen letters, digits, '-', '_' or '.', with no '@' so it can
// never be confused with an email at sign-in.
func UsernameValid(s string) bool {
	n := 0
	for _, r := range s {
		n++
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return n >= 2 && n <= MaxUsernameLen
}

// NameGiven reports whether a display name carries content. Blank input
// and the "-" placeholder count as absent.
func NameGiven(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && s != "-"
}
