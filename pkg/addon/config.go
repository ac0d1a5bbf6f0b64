package addon

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	DefaultManifestName    = "addonsmith.yaml"
	DefaultManifestVersion = 1
)

func NormalizeManifest(cfg *Manifest) {
	if cfg.Version == 0 {
		cfg.Version = DefaultManifestVersion
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "."
	}
	if cfg.Sources == nil {
		cfg.Sources = []SourceSpec{}
	}
}

func IsRemoteManifestLocation(value string) bool {
	parsed, err := url.Parse(strings.TrimSpace(value))
	if err != nil {
		return false
	}
	return parsed.Scheme == "http" || parsed.Scheme == "https"
}

func ValidateManifest(cfg *Manifest) error {
	if cfg.Version != DefaultManifestVersion {
		return fmt.Errorf("unsupported manifest version %d", cfg.Version)
	}
	for i, spec := range cfg.Sources {
		if strings.TrimSpace(spec.Path) == "" {
			return fmt.Errorf("sources[%d].path is required", i)
		}
	}
	return nil
}

// SourceList parses every declared source reference in manifest order.
func SourceList(cfg *Manifest) []Source {
	out := make([]Source, 0, len(cfg.Sources))
	for _, spec := range cfg.Sources {
		src := ParseSource(strings.TrimSpace(spec.Path))
		src.Checksum = normalizeDigest(spec.Checksum)
		out = append(out, src)
	}
	return out
}

func normalizeDigest(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}
