package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/roach88/lazylist/internal/config"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool           `json:"valid"`
	Source   string         `json:"source"`
	Config   *config.Config `json:"config,omitempty"`
	Problems []string       `json:"problems,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [config-file]",
		Short: "Validate a config file",
		Long: `Validate a lazylist YAML config file against the config schema.

The file may be given as an argument or with --config. Every problem is
reported with the key it belongs to.

Exit codes:
  0 - Config is valid
  1 - Config is invalid
  2 - Config file cannot be read`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := rootOpts.Config
			if len(args) == 1 {
				path = args[0]
			}
			return runValidate(rootOpts, path, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if path == "" {
		return NewExitError(ExitCommandError, "no config file given")
	}
	formatter.VerboseLog("Validating %s", path)

	cfg, err := config.Load(path)
	if err == nil {
		if formatter.JSON() {
			return formatter.Success(ValidationResult{Valid: true, Source: path, Config: &cfg})
		}
		return formatter.Success(fmt.Sprintf("✓ %s is valid", path))
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read config", err)
	}

	result := ValidationResult{Source: path}
	var verr *config.ValidationError
	if errors.As(err, &verr) {
		result.Problems = verr.Problems
	} else {
		result.Problems = []string{err.Error()}
	}

	if formatter.JSON() {
		if err := formatter.Error(ErrCodeConfig, "invalid configuration", result); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "✗ %s is invalid\n", path)
		for _, p := range result.Problems {
			fmt.Fprintf(w, "  %s\n", p)
		}
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%d problem(s) in %s", len(result.Problems), path))
}
