package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"addonsmith/pkg/addon"
)

// ReadDescriptor parses and validates the addon.xml document at path.
func ReadDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	desc, err := addon.ParseDescriptor(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, path)
	}
	return desc, nil
}

// readDirDescriptor reads the descriptor at the root of an add-on
// directory.
func readDirDescriptor(dir string) (*Descriptor, error) {
	path := filepath.Join(dir, DescriptorFileName)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: no %s in %s", addon.ErrSourceNotFound, DescriptorFileName, dir)
	}
	return ReadDescriptor(path)
}
