package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"addonsmith/internal/cli/repo"
	"addonsmith/internal/cli/shared"
	"addonsmith/pkg/addon"
)

func newBuildCmd(ctx *appContext) *cobra.Command {
	var datadir string
	var readmePath string
	var texturePackerCmd string

	cmd := &cobra.Command{
		Use:   "build [source...]",
		Short: "Fetch add-on sources and rebuild the repository catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, sources, err := resolveBuildInputs(cmd, ctx, args, datadir, readmePath)
			if err != nil {
				return err
			}
			res, err := repo.Build(cmd.Context(), sources, repo.BuildOptions{
				DataDir:  dir,
				Cloner:   repo.NewGitCloner(),
				Textures: texturePackerFor(texturePackerCmd),
			})
			if res != nil {
				logger := newLogger()
				for _, outcome := range res.Outcomes {
					switch {
					case outcome.Err != nil:
						logger.Error("add-on will not be included in the repository", "source", outcome.Source, "error", outcome.Err)
					case outcome.Empty():
						logger.Warn("source produced no add-on descriptor", "source", outcome.Source)
					}
				}
				fmt.Printf("included=%d failed=%d skipped=%d\n", res.Included, res.Failed, res.Skipped)
			}
			if err != nil {
				return newExitCodeError(shared.ExitBuildFailed, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&datadir, "datadir", "d", ".", "directory the repository is assembled into")
	cmd.Flags().StringVar(&readmePath, "readme", "README.md", "README listing default add-on sources")
	cmd.Flags().StringVar(&texturePackerCmd, "texture-packer", "TexturePacker.exe", "texture packer executable for skin add-ons")
	return cmd
}

// resolveBuildInputs decides where the repository is assembled and
// which sources feed it. Positional arguments win, then the manifest,
// then the repository root plus its README list.
func resolveBuildInputs(cmd *cobra.Command, ctx *appContext, args []string, datadir, readmePath string) (string, []repo.Source, error) {
	if len(args) > 0 {
		sources := make([]repo.Source, 0, len(args))
		for _, arg := range args {
			sources = append(sources, addon.ParseSource(arg))
		}
		return datadir, sources, nil
	}

	cfg, rootDir, err := loadManifestIfPresent(cmd, ctx)
	if err != nil {
		return "", nil, err
	}
	if cfg != nil {
		if !cmd.Flags().Changed("datadir") && cfg.DataDir != "" {
			datadir = resolveAgainst(rootDir, cfg.DataDir)
		}
		sources := addon.SourceList(cfg)
		for i, src := range sources {
			if !src.Remote() {
				sources[i].Raw = resolveAgainst(rootDir, src.Raw)
			}
		}
		return datadir, sources, nil
	}

	sources := []repo.Source{addon.ParseSource(datadir)}
	fromReadme, err := repo.SourcesFromReadme(resolveAgainst(datadir, readmePath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return datadir, sources, nil
		}
		return "", nil, err
	}
	return datadir, append(sources, fromReadme...), nil
}

// loadManifestIfPresent loads the manifest when --config was given
// explicitly, or when the default manifest file exists. A nil manifest
// with nil error means no manifest takes part in this run.
func loadManifestIfPresent(cmd *cobra.Command, ctx *appContext) (*repo.Manifest, string, error) {
	if !cmd.Flag("config").Changed && !repo.IsRemoteManifestLocation(ctx.configPath) {
		if _, err := os.Stat(ctx.configPath); errors.Is(err, os.ErrNotExist) {
			return nil, "", nil
		}
	}
	return loadManifestAndRoot(ctx.configPath)
}

func resolveAgainst(rootDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(rootDir, path)
}

// texturePackerFor returns the packer wired into skin pipelines. Kodi
// texture bundles are only built on Windows.
func texturePackerFor(command string) repo.TexturePacker {
	if runtime.GOOS != "windows" || command == "" {
		return nil
	}
	return repo.ExecTexturePacker{Command: command}
}

func newLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "addonsmith",
	})
}
