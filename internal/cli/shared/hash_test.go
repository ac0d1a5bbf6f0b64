package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileDigestMatchesKnownVectors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write content failed: %v", err)
	}

	md5Digest, err := FileDigest(path, DigestAlgorithmMD5)
	if err != nil {
		t.Fatalf("md5 digest failed: %v", err)
	}
	if md5Digest != "5d41402abc4b2a76b9719d911017c592" {
		t.Fatalf("unexpected md5 digest: %s", md5Digest)
	}

	sha256Digest, err := FileDigest(path, DigestAlgorithmSHA256)
	if err != nil {
		t.Fatalf("sha256 digest failed: %v", err)
	}
	if sha256Digest != "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824" {
		t.Fatalf("unexpected sha256 digest: %s", sha256Digest)
	}

	blake3Digest, err := FileDigest(path, DigestAlgorithmBLAKE3)
	if err != nil {
		t.Fatalf("blake3 digest failed: %v", err)
	}
	if blake3Digest != BLAKE3Hex([]byte("hello")) {
		t.Fatalf("streamed blake3 digest diverges from in-memory digest: %s", blake3Digest)
	}
}

func TestFileDigestRejectsUnknownAlgorithm(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write content failed: %v", err)
	}
	if _, err := FileDigest(path, "crc32"); err == nil {
		t.Fatalf("expected unsupported algorithm error")
	}
}

func TestWriteChecksumFileWritesAndReplacesSidecar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artifact.zip")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write artifact failed: %v", err)
	}

	if err := WriteChecksumFile(path); err != nil {
		t.Fatalf("WriteChecksumFile failed: %v", err)
	}
	sidecar, err := os.ReadFile(path + ChecksumSuffix)
	if err != nil {
		t.Fatalf("sidecar missing: %v", err)
	}
	if string(sidecar) != "5d41402abc4b2a76b9719d911017c592" {
		t.Fatalf("unexpected sidecar content: %q", string(sidecar))
	}

	if err := os.WriteFile(path, []byte("hello world"), 0o644); err != nil {
		t.Fatalf("rewrite artifact failed: %v", err)
	}
	if err := WriteChecksumFile(path); err != nil {
		t.Fatalf("second WriteChecksumFile failed: %v", err)
	}
	sidecar, err = os.ReadFile(path + ChecksumSuffix)
	if err != nil {
		t.Fatalf("sidecar missing after rewrite: %v", err)
	}
	if string(sidecar) != "5eb63bbbe01eeed093cb22bb8f5acdc3" {
		t.Fatalf("sidecar not replaced: %q", string(sidecar))
	}
}
