package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"addonsmith/pkg/addon"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an addonsmith.yaml template",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := writeIfNotExists(addon.DefaultManifestName, manifestTemplate()); err != nil {
				return err
			}
			fmt.Println("initialized:", addon.DefaultManifestName)
			return nil
		},
	}
	return cmd
}

func writeIfNotExists(path, content string) error {
	_, err := os.Stat(path)
	if err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func manifestTemplate() string {
	return `version: 1
datadir: .
sources:
  - path: .
  - path: https://github.com/example/plugin.video.sample.git#main:plugin.video.sample
  - path: dist/skin.sample-1.0.0.zip
    checksum: sha256:0000000000000000000000000000000000000000000000000000000000000000
`
}
