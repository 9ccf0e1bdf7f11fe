package blogservice

import "strings"

// Slugify derives a URL slug from a title: lowercase, runs of anything
// outside [a-z0-9] collapsed to a single hyphen, no leading or trailing
// hyphen. The result is deterministic for a given title; uniqueness is
// enforced by the database, not here.
func Slugify(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	pending := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
		default:
			pending = true
		}
	}

	return b.String()
}
