package shared

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// Digest algorithm names accepted in checksum specs.
const (
	DigestAlgorithmBLAKE3 = "blake3"
	DigestAlgorithmSHA256 = "sha256"
	DigestAlgorithmMD5    = "md5"
)

// ChecksumSuffix is appended to a file path to name its digest sidecar.
const ChecksumSuffix = ".md5"

// SHA256Hex returns lowercase hex encoded digest for content.
func SHA256Hex(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// BLAKE3Hex returns lowercase hex encoded digest for content.
func BLAKE3Hex(content []byte) string {
	sum := blake3.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// MD5Hex returns lowercase hex encoded digest for content.
func MD5Hex(content []byte) string {
	sum := md5.Sum(content)
	return hex.EncodeToString(sum[:])
}

// FileDigest streams the file at path through the named algorithm and
// returns the lowercase hex digest.
func FileDigest(path, algorithm string) (string, error) {
	hasher, err := newHasher(algorithm)
	if err != nil {
		return "", err
	}
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// WriteChecksumFile stores the md5 digest of the file at path in the
// {path}.md5 sidecar, replacing any previous one. The sidecar holds the
// hex digest and nothing else.
func WriteChecksumFile(path string) error {
	digest, err := FileDigest(path, DigestAlgorithmMD5)
	if err != nil {
		return err
	}
	return os.WriteFile(path+ChecksumSuffix, []byte(digest), 0o644)
}

func newHasher(algorithm string) (hash.Hash, error) {
	switch algorithm {
	case DigestAlgorithmBLAKE3:
		return blake3.New(), nil
	case DigestAlgorithmSHA256:
		return sha256.New(), nil
	case DigestAlgorithmMD5:
		return md5.New(), nil
	default:
		return nil, fmt.Errorf("unsupported checksum algorithm %q", algorithm)
	}
}
