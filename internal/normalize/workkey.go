package normalize

import (
	"crypto/md5" //nolint:gosec // Clustering key, not a security boundary
	"encoding/hex"
)

// WorkKey returns the clustering key shared by all editions of one work.
//
// The key is the lowercase hex MD5 of Text(author) + "|" + Text(title). It is
// order sensitive, and an edition with neither author nor title hashes "|" so
// all such editions fall into a single work.
func WorkKey(author, title string) string {
	sum := md5.Sum([]byte(Text(author) + "|" + Text(title))) //nolint:gosec // See import
	return hex.EncodeToString(sum[:])
}
