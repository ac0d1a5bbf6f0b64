package repo

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	texturesMediaDir  = "media"
	texturesThemesDir = "themes"
	skinIDPrefix      = "skin."
)

// TexturePacker compiles one theme directory into a texture bundle.
type TexturePacker interface {
	Pack(ctx context.Context, themeDir, outputFile string) error
}

// ExecTexturePacker shells out to the TexturePacker binary. A non-zero
// exit status is ignored; only failing to run the process is an error.
type ExecTexturePacker struct {
	Command string
}

func (e ExecTexturePacker) Pack(ctx context.Context, themeDir, outputFile string) error {
	cmd := exec.CommandContext(ctx, e.Command, "-dupecheck", "-input", themeDir, "-output", outputFile)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

// packTextures compiles skin media into .xbt bundles before the
// directory is archived: the raw media tree moves aside as the default
// theme, each theme directory is packed into media/, and the theme tree
// is discarded. Skipped unless a packer is configured, the add-on is a
// skin and a media directory exists.
func (p *Packager) packTextures(ctx context.Context, dir, id string) error {
	if p.Textures == nil || !strings.HasPrefix(id, skinIDPrefix) {
		return nil
	}
	mediaPath := filepath.Join(dir, texturesMediaDir)
	if info, err := os.Stat(mediaPath); err != nil || !info.IsDir() {
		return nil
	}

	themesPath := filepath.Join(dir, texturesThemesDir)
	if err := os.MkdirAll(themesPath, 0o755); err != nil {
		return err
	}
	if err := os.Rename(mediaPath, filepath.Join(themesPath, "Textures")); err != nil {
		return err
	}
	if err := os.MkdirAll(mediaPath, 0o755); err != nil {
		return err
	}

	entries, err := os.ReadDir(themesPath)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		themeDir := filepath.Join(themesPath, entry.Name())
		output := filepath.Join(mediaPath, entry.Name()+".xbt")
		if err := p.Textures.Pack(ctx, themeDir, output); err != nil {
			return err
		}
	}
	removeTree(themesPath)
	return nil
}
