package frontmatter

import (
	"strings"

	"github.com/inful/mdfp"
)

// Fingerprint computes a stable content fingerprint for a post.
//
// The front matter is serialized with sorted keys (an existing fingerprint
// field is excluded) so two documents with the same fields and body hash
// identically regardless of key order or delimiter style.
func Fingerprint(fields Fields, body []byte) (string, error) {
	forHash := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == mdfp.FingerprintField {
			continue
		}
		forHash[k] = v
	}

	serialized := ""
	if len(forHash) > 0 {
		out, err := Canonical(forHash)
		if err != nil {
			return "", err
		}
		serialized = strings.TrimSuffix(string(out), "\n")
	}
	return mdfp.CalculateFingerprintFromParts(serialized, string(body)), nil
}
