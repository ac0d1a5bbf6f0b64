package repo

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"addonsmith/internal/cli/shared"
	"addonsmith/pkg/addon"
)

// Packager publishes add-on sources into the repository layout under
// DataDir: {DataDir}/{id}/{id}-{version}.zip with its checksum sidecar
// and extracted metadata files next to it.
type Packager struct {
	DataDir  string
	Textures TexturePacker
}

// PublishDir packages one add-on directory. An existing archive for the
// same identifier and version is never regenerated. The resulting
// archive continues through PublishArchive.
func (p *Packager) PublishDir(ctx context.Context, dir string) (*Descriptor, error) {
	desc, err := readDirDescriptor(dir)
	if err != nil {
		return nil, err
	}
	if err := p.packTextures(ctx, dir, desc.ID); err != nil {
		return nil, err
	}

	entryDir := filepath.Join(p.DataDir, desc.ID)
	if err := os.MkdirAll(entryDir, 0o755); err != nil {
		return nil, err
	}
	zipPath := filepath.Join(entryDir, fmt.Sprintf("%s-%s.zip", desc.ID, desc.Version))
	if _, err := os.Stat(zipPath); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		// Packaging the repository root itself takes only the
		// metadata whitelist, never the whole tree.
		var names []string
		if sameFile(dir, p.DataDir) {
			names = addon.AuxFileNames
		}
		if err := buildEntryArchive(zipPath, dir, desc.ID, names); err != nil {
			return nil, err
		}
	}
	return p.PublishArchive(zipPath)
}

// PublishArchive places one add-on archive into the repository,
// extracts its metadata files, versions the changelog and writes the
// checksum sidecar. It returns the descriptor extracted into the entry
// directory, or nil without error when the archive carries none for its
// own identifier.
func (p *Packager) PublishArchive(archivePath string) (*Descriptor, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", addon.ErrArchive, archivePath, err)
	}
	defer reader.Close()

	desc, err := peekDescriptor(&reader.Reader)
	if err != nil {
		return nil, err
	}

	entryDir := filepath.Join(p.DataDir, desc.ID)
	destPath := filepath.Join(entryDir, filepath.Base(archivePath))
	if !sameFile(archivePath, destPath) {
		if err := os.MkdirAll(entryDir, 0o755); err != nil {
			return nil, err
		}
		if err := copyFile(archivePath, destPath); err != nil {
			return nil, err
		}
	}

	for _, file := range reader.File {
		if !isAuxMember(file.Name, desc.ID) {
			continue
		}
		if _, err := extractZipFile(file, p.DataDir); err != nil {
			return nil, err
		}
	}

	if err := versionChangelog(entryDir, desc.Version); err != nil {
		return nil, err
	}
	if err := shared.WriteChecksumFile(destPath); err != nil {
		return nil, err
	}
	return takeEntryDescriptor(entryDir)
}

// peekDescriptor extracts the first descriptor member to scratch
// storage just long enough to learn the identifier and version.
func peekDescriptor(archive *zip.Reader) (*Descriptor, error) {
	member, err := findDescriptorMember(archive)
	if err != nil {
		return nil, err
	}
	scratch, err := os.MkdirTemp("", "addonsmith-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(scratch)

	extracted, err := extractZipFile(member, scratch)
	if err != nil {
		return nil, err
	}
	return ReadDescriptor(extracted)
}

// versionChangelog renames a freshly extracted changelog.txt to its
// version-qualified name, or drops it when that name is already taken.
func versionChangelog(entryDir, version string) error {
	changelogPath := filepath.Join(entryDir, ChangelogFileName)
	if _, err := os.Stat(changelogPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	versionedPath := filepath.Join(entryDir, fmt.Sprintf("changelog-%s.txt", version))
	if _, err := os.Stat(versionedPath); err == nil {
		return os.Remove(changelogPath)
	} else if !os.IsNotExist(err) {
		return err
	}
	return os.Rename(changelogPath, versionedPath)
}

// takeEntryDescriptor reads the descriptor extracted into the entry
// directory and removes it, the archive keeps the canonical copy. A
// missing file means the source contributes nothing to the catalog.
func takeEntryDescriptor(entryDir string) (*Descriptor, error) {
	path := filepath.Join(entryDir, DescriptorFileName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	desc, err := ReadDescriptor(path)
	if err != nil {
		return nil, err
	}
	if err := os.Remove(path); err != nil {
		return nil, err
	}
	return desc, nil
}

func isAuxMember(name, id string) bool {
	for _, fileName := range addon.AuxFileNames {
		if name == id+"/"+fileName {
			return true
		}
	}
	return false
}

// sameFile compares file identity, not content. A missing path is never
// the same file.
func sameFile(a, b string) bool {
	infoA, err := os.Stat(a)
	if err != nil {
		return false
	}
	infoB, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(infoA, infoB)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
