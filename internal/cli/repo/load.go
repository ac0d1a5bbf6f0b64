package repo

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"gopkg.in/yaml.v3"

	"addonsmith/pkg/addon"
)

func LoadManifest(path string) (*Manifest, error) {
	content, err := readManifest(path)
	if err != nil {
		return nil, err
	}

	var cfg Manifest
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, err
	}
	addon.NormalizeManifest(&cfg)
	if err := addon.ValidateManifest(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func IsRemoteManifestLocation(value string) bool {
	return addon.IsRemoteManifestLocation(value)
}

func readManifest(path string) ([]byte, error) {
	if IsRemoteManifestLocation(path) {
		return readRemoteManifest(path)
	}
	return os.ReadFile(path)
}

func readRemoteManifest(location string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("load manifest failed: %s status=%d", location, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
