package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pinset-io/pinset/internal/manifest"
	"github.com/pinset-io/pinset/internal/parser"
	"github.com/pinset-io/pinset/internal/store"
)

// DiffOptions holds flags for the diff command.
type DiffOptions struct {
	*RootOptions
	Database string
	From     string
	To       string
}

// NewDiffCommand creates the diff command.
func NewDiffCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DiffOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "diff [<a> <b>]",
		Short: "Semantically diff two manifests",
		Long: `Compare declarations between two manifest files, or between two
recorded snapshots with --db, --from, and --to.

Reports added, removed, and changed declarations, plus declarations
whose relative order moved - order matters to installation, so a
pure reorder is a real change.`,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "snapshot store path (snapshot mode)")
	cmd.Flags().StringVar(&opts.From, "from", "", "snapshot ID to diff from")
	cmd.Flags().StringVar(&opts.To, "to", "", "snapshot ID to diff to")

	return cmd
}

func runDiff(opts *DiffOptions, args []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	var diff *store.Diff
	switch {
	case opts.Database != "":
		if opts.From == "" || opts.To == "" {
			return NewExitError(ExitCommandError, "snapshot mode needs both --from and --to")
		}
		s, err := openStore(opts.RootOptions, opts.Database)
		if err != nil {
			formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "opening store", err)
		}
		defer s.Close()

		diff, err = s.DiffSnapshots(cmd.Context(), opts.From, opts.To)
		if err != nil {
			formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "diffing snapshots", err)
		}

	case len(args) == 2:
		from, err := loadDeclRecords(args[0])
		if err != nil {
			formatter.Error(ErrCodeParseFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "diff", err)
		}
		to, err := loadDeclRecords(args[1])
		if err != nil {
			formatter.Error(ErrCodeParseFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "diff", err)
		}
		diff = store.DiffDeclarations(args[0], args[1], from, to)

	default:
		return NewExitError(ExitCommandError, "diff needs two manifest files, or --db with --from/--to")
	}

	if opts.Format == "json" {
		return formatter.Success(diff)
	}
	printDiff(formatter, diff)
	return nil
}

// loadDeclRecords parses a manifest into store declaration records.
// Parse errors fail the diff: comparing a half-parsed manifest lies.
func loadDeclRecords(path string) ([]store.DeclRecord, error) {
	m, findings, err := loadManifest(path, parser.FailFast)
	if err != nil {
		return nil, err
	}
	if len(findings) > 0 {
		return nil, fmt.Errorf("%s", findings[0].Error())
	}
	return declRecords(m), nil
}

// declRecords converts a manifest's declarations to stored-record form.
func declRecords(m *manifest.Manifest) []store.DeclRecord {
	var records []store.DeclRecord
	for i, d := range m.Declarations() {
		records = append(records, store.DeclRecord{
			Position:       i,
			Name:           d.Name,
			NormalizedName: manifest.NormalizeName(d.Name),
			Raw:            d.String(),
		})
	}
	return records
}

func printDiff(f *OutputFormatter, diff *store.Diff) {
	for _, d := range diff.Removed {
		fmt.Fprintf(f.Writer, "- %s\n", d.Raw)
	}
	for _, d := range diff.Added {
		fmt.Fprintf(f.Writer, "+ %s\n", d.Raw)
	}
	for _, c := range diff.Changed {
		fmt.Fprintf(f.Writer, "~ %s: %s -> %s\n", c.Name, c.Before, c.After)
	}
	for _, name := range diff.Moved {
		fmt.Fprintf(f.Writer, "^ %s moved\n", name)
	}
	if diff.Empty() {
		fmt.Fprintln(f.Writer, "no changes")
	}
}
