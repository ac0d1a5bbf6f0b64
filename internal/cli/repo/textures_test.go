package repo

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

type recordingPacker struct {
	themes []string
}

func (r *recordingPacker) Pack(ctx context.Context, themeDir, outputFile string) error {
	r.themes = append(r.themes, filepath.Base(themeDir))
	return os.WriteFile(outputFile, []byte("xbt"), 0o644)
}

func TestPackTexturesBuildsThemeBundles(t *testing.T) {
	dir := t.TempDir()
	writeAddonDir(t, dir, "skin.demo", "1.0.0", map[string]string{
		"media/background.png": "png",
		"themes/Blue/tint.png": "png",
	})

	packer := &recordingPacker{}
	packager := &Packager{DataDir: t.TempDir(), Textures: packer}
	if err := packager.packTextures(context.Background(), dir, "skin.demo"); err != nil {
		t.Fatalf("packTextures failed: %v", err)
	}

	if !reflect.DeepEqual(packer.themes, []string{"Blue", "Textures"}) {
		t.Fatalf("unexpected packed themes: %v", packer.themes)
	}
	for _, bundle := range []string{"Blue.xbt", "Textures.xbt"} {
		if _, err := os.Stat(filepath.Join(dir, "media", bundle)); err != nil {
			t.Fatalf("bundle %s missing: %v", bundle, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "themes")); !os.IsNotExist(err) {
		t.Fatalf("theme tree should be discarded, err=%v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "media", "background.png")); !os.IsNotExist(err) {
		t.Fatalf("raw media must move into the default theme, err=%v", err)
	}
}

func TestPackTexturesSkipsNonSkinAddons(t *testing.T) {
	dir := t.TempDir()
	writeAddonDir(t, dir, "plugin.video.demo", "1.0.0", map[string]string{"media/a.png": "png"})

	packer := &recordingPacker{}
	packager := &Packager{DataDir: t.TempDir(), Textures: packer}
	if err := packager.packTextures(context.Background(), dir, "plugin.video.demo"); err != nil {
		t.Fatalf("packTextures failed: %v", err)
	}
	if len(packer.themes) != 0 {
		t.Fatalf("non-skin add-on must not be packed: %v", packer.themes)
	}
	if _, err := os.Stat(filepath.Join(dir, "media", "a.png")); err != nil {
		t.Fatalf("media tree must stay untouched: %v", err)
	}
}

func TestPackTexturesSkipsWithoutMediaDir(t *testing.T) {
	dir := t.TempDir()
	writeAddonDir(t, dir, "skin.bare", "1.0.0", nil)

	packer := &recordingPacker{}
	packager := &Packager{DataDir: t.TempDir(), Textures: packer}
	if err := packager.packTextures(context.Background(), dir, "skin.bare"); err != nil {
		t.Fatalf("packTextures failed: %v", err)
	}
	if len(packer.themes) != 0 {
		t.Fatalf("missing media dir must skip packing: %v", packer.themes)
	}
}

func TestExecTexturePackerIgnoresExitStatus(t *testing.T) {
	dir := t.TempDir()
	packer := ExecTexturePacker{Command: "false"}
	if err := packer.Pack(context.Background(), dir, filepath.Join(dir, "out.xbt")); err != nil {
		t.Fatalf("non-zero exit status must be ignored: %v", err)
	}

	missing := ExecTexturePacker{Command: filepath.Join(dir, "no-such-binary")}
	if err := missing.Pack(context.Background(), dir, filepath.Join(dir, "out.xbt")); err == nil {
		t.Fatalf("unrunnable packer must fail")
	}
}
