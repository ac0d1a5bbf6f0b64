package repo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"addonsmith/pkg/addon"
)

func TestFetchAllPreservesSubmissionOrderWithFailures(t *testing.T) {
	dataDir := t.TempDir()
	dirA := t.TempDir()
	dirC := t.TempDir()
	writeAddonDir(t, dirA, "plugin.a", "1.0.0", nil)
	writeAddonDir(t, dirC, "plugin.c", "3.0.0", nil)
	missing := filepath.Join(t.TempDir(), "gone")

	sources := []Source{
		addon.ParseSource(dirA),
		addon.ParseSource(missing),
		addon.ParseSource(dirC),
	}
	outcomes := FetchAll(context.Background(), sources, BuildOptions{DataDir: dataDir})
	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}
	if outcomes[0].Addon == nil || outcomes[0].Addon.ID != "plugin.a" {
		t.Fatalf("outcome 0 should carry plugin.a: %+v", outcomes[0])
	}
	if !errors.Is(outcomes[1].Err, addon.ErrSourceNotFound) {
		t.Fatalf("outcome 1 should fail with ErrSourceNotFound: %+v", outcomes[1])
	}
	if outcomes[1].Source != missing {
		t.Fatalf("outcome 1 should name its source: %+v", outcomes[1])
	}
	if outcomes[2].Addon == nil || outcomes[2].Addon.ID != "plugin.c" {
		t.Fatalf("outcome 2 should carry plugin.c: %+v", outcomes[2])
	}
}

type panickingPacker struct{}

func (panickingPacker) Pack(ctx context.Context, themeDir, outputFile string) error {
	panic("packer exploded")
}

func TestRunPipelineTurnsPanicIntoOutcome(t *testing.T) {
	dataDir := t.TempDir()
	skinDir := t.TempDir()
	writeAddonDir(t, skinDir, "skin.boom", "1.0.0", map[string]string{"media/a.png": "png"})

	outcomes := FetchAll(context.Background(), []Source{addon.ParseSource(skinDir)}, BuildOptions{
		DataDir:  dataDir,
		Textures: panickingPacker{},
	})
	if len(outcomes) != 1 {
		t.Fatalf("expected 1 outcome, got %d", len(outcomes))
	}
	if outcomes[0].Err == nil || !strings.Contains(outcomes[0].Err.Error(), "pipeline panic") {
		t.Fatalf("panic not captured in outcome: %+v", outcomes[0])
	}
}

func TestBuildWritesCatalogWithOnlyValidatedEntries(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "repo")
	dirA := t.TempDir()
	dirB := t.TempDir()
	writeAddonDir(t, dirA, "plugin.alpha", "1.0.0", nil)
	writeAddonDir(t, dirB, "plugin.beta", "2.0.0", nil)
	missing := filepath.Join(t.TempDir(), "gone")

	sources := []Source{
		addon.ParseSource(dirA),
		addon.ParseSource(missing),
		addon.ParseSource(dirB),
	}
	res, err := Build(context.Background(), sources, BuildOptions{DataDir: dataDir})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if res.Included != 2 || res.Failed != 1 || res.Skipped != 0 {
		t.Fatalf("unexpected counts: %+v", res)
	}
	if res.CatalogPath != filepath.Join(dataDir, CatalogFileName) {
		t.Fatalf("unexpected catalog path: %s", res.CatalogPath)
	}

	doc := readCatalogDoc(t, res.CatalogPath)
	alpha := strings.Index(doc, "plugin.alpha")
	beta := strings.Index(doc, "plugin.beta")
	if alpha < 0 || beta < 0 || alpha > beta {
		t.Fatalf("catalog entries missing or out of order:\n%s", doc)
	}
	if _, err := os.Stat(res.CatalogPath + ".md5"); err != nil {
		t.Fatalf("catalog checksum missing: %v", err)
	}
}

func TestBuildReportsEmptySourceAsSkipped(t *testing.T) {
	dataDir := t.TempDir()
	archivePath := filepath.Join(t.TempDir(), "skin.demo-1.0.0.zip")
	buildTestZip(t, archivePath, map[string]string{
		"skin.demo-1.0.0/addon.xml": addonXMLDoc("skin.demo", "1.0.0"),
	})

	res, err := Build(context.Background(), []Source{addon.ParseSource(archivePath)}, BuildOptions{DataDir: dataDir})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if res.Included != 0 || res.Failed != 0 || res.Skipped != 1 {
		t.Fatalf("unexpected counts: %+v", res)
	}
	doc := readCatalogDoc(t, res.CatalogPath)
	if strings.Contains(doc, "skin.demo") {
		t.Fatalf("skipped source leaked into catalog:\n%s", doc)
	}
}

func TestBuildCreatesDataDir(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "nested", "repo")
	if _, err := Build(context.Background(), nil, BuildOptions{DataDir: dataDir}); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	info, err := os.Stat(dataDir)
	if err != nil || !info.IsDir() {
		t.Fatalf("data dir not created: %v", err)
	}
}

func TestBuildRequiresDataDir(t *testing.T) {
	if _, err := Build(context.Background(), nil, BuildOptions{}); err == nil {
		t.Fatalf("expected error without data dir")
	}
}
