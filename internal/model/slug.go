package model

import "strings"

// Slugify renders a board title as a URL-safe slug: lower-cased, with
// every run of non-alphanumeric characters collapsed into a single
// hyphen. Computed once at board creation and never recomputed on
// rename.
func Slugify(title string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		default:
			pendingHyphen = true
		}
	}
	return b.String()
}
