package fetch

import (
	"net/url"
	"path"
	"regexp"
	"strconv"

	"github.com/zeebo/xxh3"
)

// filenameCleaner replaces sequences of non-alphanumeric characters with "_".
var filenameCleaner = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// HashString returns a stable 64-bit xxh3 digest of s in hex. Used for
// deterministic spool-file names and content digests in logs.
func HashString(s string) string {
	return strconv.FormatUint(xxh3.HashString(s), 16)
}

// SafeFilenameFromURL derives a filesystem-safe name from a raw URL: the
// cleaned final path element plus a short hash of the whole URL, so distinct
// URLs with the same basename never collide. Falls back to the hash alone
// when the URL does not parse or has no usable path.
func SafeFilenameFromURL(rawURL string) string {
	h := HashString(rawURL)
	u, err := url.Parse(rawURL)
	if err != nil {
		return h
	}
	base := filenameCleaner.ReplaceAllString(path.Base(u.Path), "_")
	if base == "" || base == "_" {
		return h
	}
	return base + "_" + h
}
