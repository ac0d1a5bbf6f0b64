package repo

import (
	"context"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"addonsmith/internal/cli/shared"
	"addonsmith/pkg/addon"
)

// GitCloner checks out one remote repository into dir.
type GitCloner interface {
	Clone(ctx context.Context, url, branch, dir string) error
}

// Resolver turns source references into local directories or archive
// paths, fetching remote ones into temporary storage.
type Resolver struct {
	Cloner GitCloner
}

// resolvedSource is one source in its local state. Exactly one of dir
// and archive is set; cleanup removes temporary storage and may be nil.
type resolvedSource struct {
	dir     string
	archive string
	cleanup func()
}

func (r *Resolver) Resolve(ctx context.Context, src Source) (*resolvedSource, error) {
	if src.Remote() {
		return r.cloneRemote(ctx, src)
	}
	return resolveLocal(src)
}

func (r *Resolver) cloneRemote(ctx context.Context, src Source) (*resolvedSource, error) {
	if r.Cloner == nil {
		return nil, fmt.Errorf("%w: no git client configured", addon.ErrFetch)
	}
	cloneDir, err := os.MkdirTemp("", "addonsmith-*")
	if err != nil {
		return nil, err
	}
	if err := r.Cloner.Clone(ctx, src.URL, src.Branch, cloneDir); err != nil {
		removeTree(cloneDir)
		return nil, fmt.Errorf("%w: clone %s: %v", addon.ErrFetch, src.URL, err)
	}

	dir := cloneDir
	if src.Subpath != "" {
		dir = filepath.Join(cloneDir, filepath.FromSlash(src.Subpath))
	}
	return &resolvedSource{dir: dir, cleanup: func() { removeTree(cloneDir) }}, nil
}

func resolveLocal(src Source) (*resolvedSource, error) {
	info, err := os.Stat(src.Raw)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", addon.ErrSourceNotFound, src.Raw)
		}
		return nil, err
	}
	if info.IsDir() {
		return &resolvedSource{dir: src.Raw}, nil
	}

	if isZipArchive(src.Raw) {
		if err := verifySourceChecksum(src.Raw, src.Checksum); err != nil {
			return nil, err
		}
		return &resolvedSource{archive: src.Raw}, nil
	}
	if isTarball(src.Raw) {
		if err := verifySourceChecksum(src.Raw, src.Checksum); err != nil {
			return nil, err
		}
		unpackDir, err := os.MkdirTemp("", "addonsmith-*")
		if err != nil {
			return nil, err
		}
		if err := unpackTarball(src.Raw, unpackDir); err != nil {
			removeTree(unpackDir)
			return nil, err
		}
		return &resolvedSource{
			dir:     singleRootDir(unpackDir),
			cleanup: func() { removeTree(unpackDir) },
		}, nil
	}
	return nil, fmt.Errorf("%w: %s is neither an add-on directory nor an archive", addon.ErrArchive, src.Raw)
}

// singleRootDir descends into the sole top-level directory of an
// unpacked tree when the descriptor is not at the root, the usual shape
// of release tarballs.
func singleRootDir(dir string) string {
	if _, err := os.Stat(filepath.Join(dir, DescriptorFileName)); err == nil {
		return dir
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 || !entries[0].IsDir() {
		return dir
	}
	return filepath.Join(dir, entries[0].Name())
}

func verifySourceChecksum(path, checksum string) error {
	if checksum == "" {
		return nil
	}
	algorithm, digest, err := parseChecksumSpec(checksum)
	if err != nil {
		return err
	}
	computed, err := shared.FileDigest(path, algorithm)
	if err != nil {
		return err
	}
	if computed != digest {
		return fmt.Errorf("%w: checksum mismatch for %s", addon.ErrFetch, path)
	}
	return nil
}

func parseChecksumSpec(value string) (string, string, error) {
	raw := strings.TrimSpace(strings.ToLower(value))
	algorithm, digest, ok := strings.Cut(raw, ":")
	if !ok || strings.TrimSpace(algorithm) == "" || strings.TrimSpace(digest) == "" {
		return "", "", fmt.Errorf("invalid checksum format %q", value)
	}
	if _, err := hex.DecodeString(digest); err != nil {
		return "", "", fmt.Errorf("invalid checksum hex %q", value)
	}
	return algorithm, digest, nil
}

// removeTree deletes a temporary tree. Clones leave read-only objects
// behind; on failure every entry is made writable and removal retried.
// Best effort, a second failure is dropped.
func removeTree(path string) {
	if err := os.RemoveAll(path); err == nil {
		return
	}
	_ = filepath.WalkDir(path, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if entry.IsDir() {
			_ = os.Chmod(p, 0o755)
		} else {
			_ = os.Chmod(p, 0o644)
		}
		return nil
	})
	_ = os.RemoveAll(path)
}

type goGitCloner struct{}

// NewGitCloner returns the go-git backed cloner used outside tests.
func NewGitCloner() GitCloner {
	return goGitCloner{}
}

func (goGitCloner) Clone(ctx context.Context, url, branch, dir string) error {
	repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:  url,
		Tags: git.AllTags,
	})
	if err != nil {
		return err
	}
	if branch == "" {
		return nil
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(branch))
	if err != nil {
		// non-default branches exist only as remote-tracking refs
		// right after a clone
		hash, err = repo.ResolveRevision(plumbing.Revision("refs/remotes/origin/" + branch))
		if err != nil {
			return err
		}
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return err
	}
	return worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true})
}
