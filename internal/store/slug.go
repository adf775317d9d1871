package store

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// maxSlugProbes bounds the collision-probe loop. Once exceeded, a
// timestamp+random suffix is appended unconditionally so slug generation
// always terminates.
const maxSlugProbes = 50

// Slugify normalizes a title into a URL-safe slug: lowercase, every run
// of non-alphanumeric characters collapsed to a single hyphen, leading
// and trailing hyphens trimmed.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// fallbackSlug appends a timestamp plus random suffix to base. Used when
// the probe loop fails to find a free numeric suffix.
func fallbackSlug(base string, now time.Time) string {
	var buf [4]byte
	suffix := ""
	if _, err := rand.Read(buf[:]); err == nil {
		suffix = "-" + hex.EncodeToString(buf[:])
	}
	return fmt.Sprintf("%s-%d%s", base, now.Unix(), suffix)
}
