package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pinset-io/pinset/internal/parser"
)

// FmtOptions holds flags for the fmt command.
type FmtOptions struct {
	*RootOptions
	Write bool // rewrite the file in place
	Check bool // exit 1 if formatting would change the file
}

// FmtResult holds fmt output for JSON mode.
type FmtResult struct {
	Manifest  string `json:"manifest"`
	Formatted bool   `json:"formatted"` // true when the file already was canonical
	Rewritten bool   `json:"rewritten,omitempty"`
}

// NewFmtCommand creates the fmt command.
func NewFmtCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FmtOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fmt [manifest]",
		Short: "Canonically format a manifest",
		Long: `Render every declaration in canonical form: no interior whitespace
in constraints, single-space annotation padding. Comment lines, blank
lines, and declaration ORDER are preserved exactly - formatting never
reorders a manifest.

By default the formatted manifest is written to stdout. With -w the
file is rewritten in place; with --check nothing is written and exit
code 1 signals that formatting would change the file.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveManifestArg(rootOpts, args)
			if err != nil {
				return err
			}
			return runFmt(opts, path, cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.Write, "write", "w", false, "rewrite the manifest in place")
	cmd.Flags().BoolVar(&opts.Check, "check", false, "exit non-zero if formatting would change the file")

	return cmd
}

func runFmt(opts *FmtOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	// Formatting requires a fully parsed manifest: fail on the first bad
	// line rather than canonicalizing around it.
	m, findings, err := loadManifest(path, parser.FailFast)
	if err != nil {
		formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "fmt", err)
	}
	if len(findings) > 0 {
		formatter.Error(ErrCodeParseFailed, findings[0].Error(), findings)
		return NewExitError(ExitCommandError, findings[0].Error())
	}

	original := m.Serialize()
	canonical := m.Canonical()
	clean := bytes.Equal(original, canonical)

	switch {
	case opts.Check:
		result := FmtResult{Manifest: path, Formatted: clean}
		if opts.Format == "json" {
			formatter.Success(result)
		} else if !clean {
			fmt.Fprintf(formatter.Writer, "%s: not canonically formatted\n", path)
		}
		if !clean {
			return NewExitError(ExitFailure, fmt.Sprintf("%s needs formatting", path))
		}
		return nil

	case opts.Write:
		if !clean {
			if err := os.WriteFile(path, canonical, 0o644); err != nil {
				formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
				return WrapExitError(ExitCommandError, "rewriting manifest", err)
			}
		}
		result := FmtResult{Manifest: path, Formatted: clean, Rewritten: !clean}
		if opts.Format == "json" {
			return formatter.Success(result)
		}
		if !clean {
			fmt.Fprintf(formatter.Writer, "rewrote %s\n", path)
		}
		return nil

	default:
		// Plain fmt streams the canonical text, even in JSON mode: the
		// payload is the file itself.
		_, err := formatter.Writer.Write(canonical)
		return err
	}
}
