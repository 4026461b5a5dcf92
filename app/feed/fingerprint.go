package feed

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Fingerprint computes the stable dedup identity of an item from its URL and
// title. Two entries a human would call the same story must map to the same
// value, so both fields are NFKC-folded, lower-cased and whitespace-collapsed
// before hashing.
func Fingerprint(url, title string) string {
	content := normalizeIdentity(url) + "|" + normalizeIdentity(title)

	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

func normalizeIdentity(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}
