package metadata

import "strings"

// Scrub normalizes a label or record name into an identifier: lower-case,
// every run of non-alphanumeric characters collapsed to one underscore,
// leading and trailing underscores trimmed. Scrub(Scrub(s)) == Scrub(s).
func Scrub(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSep := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}
