package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pinset-io/pinset/internal/parser"
	"github.com/pinset-io/pinset/internal/policy"
)

// PolicyOptions holds flags for the policy command.
type PolicyOptions struct {
	*RootOptions
	PolicyDir string
}

// PolicyResult holds policy findings for output.
type PolicyResult struct {
	Manifest   string             `json:"manifest"`
	PolicyDir  string             `json:"policy_dir"`
	Compliant  bool               `json:"compliant"`
	Violations []policy.Violation `json:"violations,omitempty"`
}

// NewPolicyCommand creates the policy command.
func NewPolicyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PolicyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "policy [manifest]",
		Short: "Check a manifest against CUE policy rules",
		Long: `Load CUE policy files and check every declaration against them:
banned packages, version floors, required markers, and required
annotations. Exit code 1 means violations were found.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveManifestArg(rootOpts, args)
			if err != nil {
				return err
			}
			return runPolicy(opts, path, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.PolicyDir, "policy-dir", "", "directory of CUE policy files")

	return cmd
}

func runPolicy(opts *PolicyOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := LoadConfig(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading config", err)
	}
	dir := firstNonEmpty(opts.PolicyDir, cfg.PolicyDir)
	if dir == "" {
		return NewExitError(ExitCommandError, "no policy directory given (--policy-dir or config 'policy_dir')")
	}

	p, err := policy.Load(dir)
	if err != nil {
		formatter.Error(ErrCodePolicyFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "loading policy", err)
	}
	formatter.VerboseLog("Loaded policy from %s: %d ban pattern(s), %d floor(s)", dir, len(p.Ban), len(p.Floor))

	m, findings, err := loadManifest(path, parser.CollectAll)
	if err != nil {
		formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "policy", err)
	}
	for _, f := range findings {
		formatter.VerboseLog("skipping unparsable line %d: %s", f.Line, f.Message)
	}

	violations := policy.Apply(p, m)
	result := PolicyResult{
		Manifest:   path,
		PolicyDir:  dir,
		Compliant:  len(violations) == 0,
		Violations: violations,
	}

	if opts.Format == "json" {
		if result.Compliant {
			if err := formatter.Success(result); err != nil {
				return err
			}
		} else {
			if err := formatter.Error(ErrCodePolicyFailed, "manifest violates policy", result); err != nil {
				return err
			}
		}
	} else {
		for _, v := range violations {
			fmt.Fprintln(formatter.Writer, v.Error())
		}
		if result.Compliant {
			fmt.Fprintf(formatter.Writer, "%s: compliant\n", path)
		} else {
			fmt.Fprintf(formatter.Writer, "%s: %d violation(s)\n", path, len(violations))
		}
	}

	if !result.Compliant {
		return NewExitError(ExitFailure, fmt.Sprintf("%d policy violation(s)", len(violations)))
	}
	return nil
}
