package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pinset-io/pinset/internal/manifest"
	"github.com/pinset-io/pinset/internal/parser"
)

// ShownDeclaration is one declaration in show output.
type ShownDeclaration struct {
	Line           int                   `json:"line"`
	Name           string                `json:"name"`
	NormalizedName string                `json:"normalized_name"`
	Extras         []string              `json:"extras,omitempty"`
	Constraints    []manifest.Constraint `json:"constraints,omitempty"`
	Marker         string                `json:"marker,omitempty"`
	Comment        string                `json:"comment,omitempty"`
}

// ShowResult holds the parsed view of a manifest.
type ShowResult struct {
	Manifest     string             `json:"manifest"`
	ContentHash  string             `json:"content_hash"`
	Declarations []ShownDeclaration `json:"declarations"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [manifest]",
		Short: "Show parsed declarations",
		Long: `Parse a manifest and print its declarations: name, extras, version
constraints, environment marker, and annotation, in file order.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveManifestArg(rootOpts, args)
			if err != nil {
				return err
			}
			return runShow(rootOpts, path, cmd)
		},
	}
	return cmd
}

func runShow(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	m, findings, err := loadManifest(path, parser.CollectAll)
	if err != nil {
		formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "show", err)
	}
	for _, f := range findings {
		formatter.VerboseLog("skipping unparsable line %d: %s", f.Line, f.Message)
	}

	result := ShowResult{
		Manifest:    path,
		ContentHash: m.Hash(),
	}
	for _, line := range m.DeclarationLines() {
		d := line.Decl
		result.Declarations = append(result.Declarations, ShownDeclaration{
			Line:           line.Number,
			Name:           d.Name,
			NormalizedName: manifest.NormalizeName(d.Name),
			Extras:         d.Extras,
			Constraints:    d.Constraints,
			Marker:         d.Marker,
			Comment:        d.Comment,
		})
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	for _, d := range result.Declarations {
		fmt.Fprintf(formatter.Writer, "%4d  %s", d.Line, d.Name)
		for i, c := range d.Constraints {
			if i == 0 {
				fmt.Fprint(formatter.Writer, "  ")
			} else {
				fmt.Fprint(formatter.Writer, ",")
			}
			fmt.Fprint(formatter.Writer, c.String())
		}
		if d.Marker != "" {
			fmt.Fprintf(formatter.Writer, "  ; %s", d.Marker)
		}
		if d.Comment != "" {
			fmt.Fprintf(formatter.Writer, "  # %s", d.Comment)
		}
		fmt.Fprintln(formatter.Writer)
	}
	fmt.Fprintf(formatter.Writer, "%d declaration(s), hash %s\n", len(result.Declarations), shortHash(result.ContentHash))
	return nil
}

// shortHash abbreviates a content hash for text output.
func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
