package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pinset-io/pinset/internal/checker"
	"github.com/pinset-io/pinset/internal/parser"
)

// CheckResult holds check findings for output.
type CheckResult struct {
	Valid    bool                      `json:"valid"`
	Manifest string                    `json:"manifest"`
	Findings []checker.ValidationError `json:"findings,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [manifest]",
		Short: "Validate a manifest",
		Long: `Parse a manifest and validate it structurally: package names,
version constraints, environment markers, duplicates, and
unsatisfiable constraint sets.

Warnings are reported but do not fail the check. Exit code 1 means
error-severity findings were present.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveManifestArg(rootOpts, args)
			if err != nil {
				return err
			}
			return runCheck(rootOpts, path, cmd)
		},
	}
	return cmd
}

// resolveManifestArg picks the manifest path from the argument or config.
func resolveManifestArg(opts *RootOptions, args []string) (string, error) {
	var arg string
	if len(args) > 0 {
		arg = args[0]
	}
	cfg, err := LoadConfig(opts.Config)
	if err != nil {
		return "", WrapExitError(ExitCommandError, "loading config", err)
	}
	path := firstNonEmpty(arg, cfg.Manifest)
	if path == "" {
		return "", NewExitError(ExitCommandError, "no manifest given (argument or config 'manifest')")
	}
	return path, nil
}

func runCheck(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	m, findings, err := loadManifest(path, parser.CollectAll)
	if err != nil {
		formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "check", err)
	}

	formatter.VerboseLog("Parsed %d line(s) from %s", len(m.Lines), path)
	findings = append(findings, checker.Check(m)...)

	result := CheckResult{
		Valid:    !checker.Errors(findings),
		Manifest: path,
		Findings: findings,
	}
	if err := outputCheckResult(formatter, result); err != nil {
		return err
	}
	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%d finding(s) in %s", len(findings), path))
	}
	return nil
}

func outputCheckResult(f *OutputFormatter, result CheckResult) error {
	if f.Format == "json" {
		if result.Valid {
			return f.Success(result)
		}
		return f.Error(ErrCodeCheckFailed, "manifest has validation findings", result)
	}

	for _, finding := range result.Findings {
		severity := "error"
		if finding.Warning {
			severity = "warning"
		}
		fmt.Fprintf(f.Writer, "%s: %s\n", severity, finding.Error())
	}
	if result.Valid {
		fmt.Fprintf(f.Writer, "%s: ok (%d warning(s))\n", result.Manifest, len(result.Findings))
	} else {
		fmt.Fprintf(f.Writer, "%s: %d finding(s)\n", result.Manifest, len(result.Findings))
	}
	return nil
}
