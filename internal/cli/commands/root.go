package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"addonsmith/internal/cli/repo"
	"addonsmith/internal/cli/shared"
	"addonsmith/pkg/addon"
)

type appContext struct {
	configPath string
}

func NewRootCmd(version string) *cobra.Command {
	ctx := &appContext{}
	cmd := &cobra.Command{
		Use:   "addonsmith",
		Short: "Assemble a Kodi add-on repository from local and remote sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&ctx.configPath, "config", addon.DefaultManifestName, "path to repository manifest")

	cmd.AddCommand(newBuildCmd(ctx))
	cmd.AddCommand(newSourcesCmd(ctx))
	cmd.AddCommand(newChecksumCmd())
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newVersionCmd(version))

	return cmd
}

func Execute(version string) int {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return mapExitCode(err)
	}
	return shared.ExitOK
}

func mapExitCode(err error) int {
	var codeErr *exitCodeError
	if errors.As(err, &codeErr) {
		return codeErr.code
	}
	return 1
}

// loadManifestAndRoot loads the manifest behind --config and returns
// the directory its relative paths resolve against. Remote manifests
// resolve against the working directory.
func loadManifestAndRoot(configPath string) (*repo.Manifest, string, error) {
	if repo.IsRemoteManifestLocation(configPath) {
		cfg, err := repo.LoadManifest(configPath)
		if err != nil {
			return nil, "", newExitCodeError(shared.ExitConfigError, err)
		}
		cwd, err := os.Getwd()
		if err != nil {
			return nil, "", err
		}
		return cfg, cwd, nil
	}

	abs, err := filepath.Abs(configPath)
	if err != nil {
		return nil, "", err
	}
	cfg, err := repo.LoadManifest(abs)
	if err != nil {
		return nil, "", newExitCodeError(shared.ExitConfigError, err)
	}
	return cfg, filepath.Dir(abs), nil
}

type exitCodeError struct {
	code int
	err  error
}

func newExitCodeError(code int, err error) *exitCodeError {
	return &exitCodeError{code: code, err: err}
}

func (e *exitCodeError) Error() string {
	return e.err.Error()
}

func (e *exitCodeError) Unwrap() error {
	return e.err
}
