package game

import "strings"

// NormalizeWord lowercases s and drops everything outside a-z.
func NormalizeWord(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
