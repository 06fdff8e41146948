// Package pagename turns page URLs into file names that are stable across
// scans, so a later run finds the images an earlier run wrote.
package pagename

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"strings"
)

const indexName = "index"

// FromURL returns the file name token for rawURL. The host is ignored and
// the path becomes the name; a query string adds a short hash suffix.
func FromURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return orIndex(sanitize(strings.Trim(rawURL, "/")))
	}

	name := orIndex(sanitize(strings.Trim(u.Path, "/")))
	if u.RawQuery != "" {
		sum := sha1.Sum([]byte(u.RawQuery))
		name += "_" + hex.EncodeToString(sum[:])[:8]
	}
	return name
}

func sanitize(p string) string {
	var b strings.Builder
	b.Grow(len(p))
	for _, r := range p {
		switch {
		case r == '/':
			b.WriteByte('_')
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

func orIndex(name string) string {
	if name == "" || strings.Trim(name, ".") == "" {
		return indexName
	}
	return name
}
