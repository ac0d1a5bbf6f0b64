package repo

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"addonsmith/pkg/addon"
)

var zipMagics = [][]byte{
	{'P', 'K', 0x03, 0x04},
	{'P', 'K', 0x05, 0x06},
}

// isZipArchive sniffs the file content; the name plays no part.
func isZipArchive(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	header := make([]byte, 4)
	if _, err := io.ReadFull(file, header); err != nil {
		return false
	}
	for _, magic := range zipMagics {
		if bytes.Equal(header, magic) {
			return true
		}
	}
	return false
}

func isTarball(name string) bool {
	for _, suffix := range []string{".tar.gz", ".tgz", ".tar.xz", ".tar.zst"} {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// findDescriptorMember returns the first archive member whose path ends
// with /addon.xml, case-insensitively.
func findDescriptorMember(archive *zip.Reader) (*zip.File, error) {
	suffix := "/" + DescriptorFileName
	for _, file := range archive.File {
		if strings.HasSuffix(strings.ToLower(file.Name), suffix) {
			return file, nil
		}
	}
	return nil, fmt.Errorf("%w: archive has no %s member", addon.ErrSourceNotFound, DescriptorFileName)
}

// extractZipFile writes one member beneath destRoot, preserving its
// archive path, and returns the target path.
func extractZipFile(file *zip.File, destRoot string) (string, error) {
	target, err := resolveExtractTargetPath(destRoot, file.Name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}

	reader, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", addon.ErrArchive, file.Name, err)
	}
	defer reader.Close()

	mode := file.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, reader); err != nil {
		out.Close()
		return "", err
	}
	return target, out.Close()
}

// resolveExtractTargetPath joins a member path beneath root, refusing
// entries that would escape it.
func resolveExtractTargetPath(root, member string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(member))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: entry path escapes root: %q", addon.ErrArchive, member)
	}
	return filepath.Join(root, cleaned), nil
}

// buildEntryArchive creates the repository archive for one add-on
// directory. When names is non-empty only those top-level files are
// packed; otherwise every regular file in the tree is. Member paths
// live under an id/ prefix.
func buildEntryArchive(zipPath, dir, id string, names []string) error {
	out, err := os.Create(zipPath)
	if err != nil {
		return err
	}
	defer out.Close()

	writer := zip.NewWriter(out)
	if err := packEntryFiles(writer, dir, id, names); err != nil {
		writer.Close()
		return err
	}
	return writer.Close()
}

func packEntryFiles(writer *zip.Writer, dir, id string, names []string) error {
	if len(names) > 0 {
		for _, name := range names {
			filePath := filepath.Join(dir, name)
			if _, err := os.Stat(filePath); err != nil {
				if os.IsNotExist(err) {
					continue
				}
				return err
			}
			if err := writeZipEntry(writer, filePath, path.Join(id, name)); err != nil {
				return err
			}
		}
		return nil
	}
	return filepath.WalkDir(dir, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		return writeZipEntry(writer, p, path.Join(id, filepath.ToSlash(rel)))
	})
}

func writeZipEntry(writer *zip.Writer, filePath, memberName string) error {
	info, err := os.Stat(filePath)
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = memberName
	header.Method = zip.Deflate

	dst, err := writer.CreateHeader(header)
	if err != nil {
		return err
	}
	src, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer src.Close()
	_, err = io.Copy(dst, src)
	return err
}

// unpackTarball expands a tar archive into destDir. The compression is
// chosen from the archive name.
func unpackTarball(archivePath, destDir string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer file.Close()

	reader, closer, err := openTarballReader(file, archivePath)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", addon.ErrArchive, archivePath, err)
	}
	if closer != nil {
		defer closer.Close()
	}

	tarReader := tar.NewReader(reader)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: %s: %v", addon.ErrArchive, archivePath, err)
		}
		if !header.FileInfo().Mode().IsRegular() {
			continue
		}

		target, err := resolveExtractTargetPath(destDir, header.Name)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, header.FileInfo().Mode().Perm())
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, tarReader); err != nil {
			out.Close()
			return err
		}
		if err := out.Close(); err != nil {
			return err
		}
	}
	return nil
}

func openTarballReader(file *os.File, name string) (io.Reader, io.Closer, error) {
	switch {
	case strings.HasSuffix(name, ".tar.gz") || strings.HasSuffix(name, ".tgz"):
		gzipReader, err := gzip.NewReader(file)
		if err != nil {
			return nil, nil, err
		}
		return gzipReader, gzipReader, nil
	case strings.HasSuffix(name, ".tar.xz"):
		xzReader, err := xz.NewReader(file)
		if err != nil {
			return nil, nil, err
		}
		return xzReader, nil, nil
	case strings.HasSuffix(name, ".tar.zst"):
		decoder, err := zstd.NewReader(file)
		if err != nil {
			return nil, nil, err
		}
		rc := decoder.IOReadCloser()
		return rc, rc, nil
	default:
		return nil, nil, fmt.Errorf("unsupported archive encoding for %q", name)
	}
}
