package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pinset-io/pinset/internal/marker"
	"github.com/pinset-io/pinset/internal/parser"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	Env []string // k=v overrides
}

// EvaluatedDeclaration is one declaration with its marker verdict.
type EvaluatedDeclaration struct {
	Line    int    `json:"line"`
	Decl    string `json:"decl"` // canonical rendering
	Marker  string `json:"marker,omitempty"`
	Applies bool   `json:"applies"`
}

// EvalResult lists which declarations apply in an environment.
type EvalResult struct {
	Manifest     string                 `json:"manifest"`
	Env          marker.Env             `json:"env"`
	Declarations []EvaluatedDeclaration `json:"declarations"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval [manifest]",
		Short: "Resolve environment markers",
		Long: `Evaluate every declaration's environment marker against an
environment and report which declarations apply. Unconditional
declarations always apply.

The default environment describes the current platform with
interpreter variables unset; override or extend it with --env:

	pinset eval test-requirements.txt --env python_version=2.7`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveManifestArg(rootOpts, args)
			if err != nil {
				return err
			}
			return runEval(opts, path, cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Env, "env", nil, "environment variable override, key=value (repeatable)")

	return cmd
}

func runEval(opts *EvalOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	env := marker.DefaultEnv()
	for _, kv := range opts.Env {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return NewExitError(ExitCommandError, fmt.Sprintf("invalid --env %q: expected key=value", kv))
		}
		env[key] = value
	}

	m, findings, err := loadManifest(path, parser.CollectAll)
	if err != nil {
		formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "eval", err)
	}
	for _, f := range findings {
		formatter.VerboseLog("skipping unparsable line %d: %s", f.Line, f.Message)
	}

	result := EvalResult{Manifest: path, Env: env}
	for _, line := range m.DeclarationLines() {
		d := line.Decl
		entry := EvaluatedDeclaration{
			Line:   line.Number,
			Decl:   d.String(),
			Marker: d.Marker,
		}
		if d.Marker == "" {
			entry.Applies = true
		} else {
			expr, err := marker.Parse(d.Marker)
			if err != nil {
				formatter.Error(ErrCodeParseFailed, err.Error(), nil)
				return NewExitError(ExitCommandError, err.Error())
			}
			applies, err := marker.Eval(expr, env)
			if err != nil {
				formatter.Error(ErrCodeGeneric, err.Error(), nil)
				return NewExitError(ExitCommandError, err.Error())
			}
			entry.Applies = applies
		}
		result.Declarations = append(result.Declarations, entry)
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	applied := 0
	for _, d := range result.Declarations {
		if d.Applies {
			applied++
			fmt.Fprintln(formatter.Writer, d.Decl)
		} else {
			formatter.VerboseLog("excluded (line %d): %s", d.Line, d.Decl)
		}
	}
	formatter.VerboseLog("%d of %d declaration(s) apply", applied, len(result.Declarations))
	return nil
}
