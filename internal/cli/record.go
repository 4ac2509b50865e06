package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pinset-io/pinset/internal/parser"
	"github.com/pinset-io/pinset/internal/store"
)

// defaultDatabase is the snapshot store path when neither flag nor config
// provide one.
const defaultDatabase = ".pinset.db"

// RecordOptions holds flags for the record command.
type RecordOptions struct {
	*RootOptions
	Database string
}

// RecordResult reports the snapshot written (or reused).
type RecordResult struct {
	Snapshot store.Snapshot `json:"snapshot"`
	Created  bool           `json:"created"`
}

// NewRecordCommand creates the record command.
func NewRecordCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "record [manifest]",
		Short: "Snapshot a manifest into the store",
		Long: `Record the manifest's current declarations in the snapshot store.
Recording is idempotent by content: an unchanged manifest reuses its
existing snapshot.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveManifestArg(rootOpts, args)
			if err != nil {
				return err
			}
			return runRecord(opts, path, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "snapshot store path (default "+defaultDatabase+")")

	return cmd
}

// openStore opens the snapshot store, resolving the path from flag,
// config, then default.
func openStore(opts *RootOptions, flagPath string) (*store.Store, error) {
	cfg, err := LoadConfig(opts.Config)
	if err != nil {
		return nil, err
	}
	return store.Open(firstNonEmpty(flagPath, cfg.Database, defaultDatabase))
}

func runRecord(opts *RecordOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	m, findings, err := loadManifest(path, parser.FailFast)
	if err != nil {
		formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "record", err)
	}
	if len(findings) > 0 {
		formatter.Error(ErrCodeParseFailed, findings[0].Error(), findings)
		return NewExitError(ExitCommandError, findings[0].Error())
	}

	s, err := openStore(opts.RootOptions, opts.Database)
	if err != nil {
		formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening store", err)
	}
	defer s.Close()

	snap, created, err := s.RecordSnapshot(cmd.Context(), m)
	if err != nil {
		formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "recording snapshot", err)
	}

	result := RecordResult{Snapshot: snap, Created: created}
	if opts.Format == "json" {
		return formatter.Success(result)
	}
	if created {
		fmt.Fprintf(formatter.Writer, "recorded %s as %s (hash %s)\n", path, snap.ID, shortHash(snap.ContentHash))
	} else {
		fmt.Fprintf(formatter.Writer, "%s unchanged since %s (snapshot %s)\n", path, snap.TakenAt.Format("2006-01-02 15:04:05"), snap.ID)
	}
	return nil
}
