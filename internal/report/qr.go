package report

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// qrScheme prefixes the manifest digest so a scanned code identifies
// both the producing tool and the hash algorithm.
const qrScheme = "dltgate:manifest:sha256:"

// sha256HexLen is the length of a lowercase hex encoded SHA-256 digest.
const sha256HexLen = 64

// ManifestHashToQR creates a QR code PNG pointing at the evidence
// manifest. The hash must be a full SHA-256 digest in hex; separators
// and case differences from copy-pasted values are tolerated.
func ManifestHashToQR(hash string, size int) ([]byte, error) {
	digest := normalizeDigest(hash)
	if len(digest) != sha256HexLen {
		return nil, fmt.Errorf("manifest hash %q is not a sha256 hex digest", hash)
	}
	if size <= 0 {
		size = 128
	}
	return qrcode.Encode(qrScheme+digest, qrcode.Medium, size)
}

// normalizeDigest lowercases a hex digest and drops whitespace and
// separator characters, keeping only hex digits.
func normalizeDigest(hash string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(hash) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'a' && r <= 'f':
			b.WriteRune(r)
		}
	}
	return b.String()
}
