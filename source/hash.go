package source

import (
	"crypto/sha1"
	"encoding/hex"
	"io"

	"github.com/cespare/xxhash/v2"
)

// SHA1Hex computes the hex-encoded SHA-1 digest of r, the provenance hash
// carried on every packet decoded from a given archive file.
func SHA1Hex(r io.Reader) (string, error) {
	h := sha1.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// FastHash returns a cheap, non-cryptographic 64-bit digest of a single raw
// master frame. It is not a substitute for SHA1Hex's file-level provenance
// hash; it exists so a re-ingest pass can skip a frame already seen without
// re-running SHA-1 over the whole archive.
func FastHash(frame []byte) uint64 {
	return xxhash.Sum64(frame)
}
