// pantry/text/slug.go
package text

import (
	"strings"
	"unicode"
)

// Slugify turns a display name into a URL path segment: folded, with
// letters and digits kept, "#" and "+" spelled out, and every other run of
// characters collapsed to a single "-".
//
//	Slugify("  Rust & Go ")  == "rust-go"
//	Slugify("C#")            == "csharp"
//	Slugify("Café/Bar")      == "cafe-bar"
func Slugify(s string) string {
	f := Fold(s)
	var b strings.Builder
	b.Grow(len(f))
	dash := false
	for _, r := range f {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case r == '#':
			b.WriteString("sharp")
			dash = false
		case r == '+':
			b.WriteString("plus")
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
