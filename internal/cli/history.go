package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pinset-io/pinset/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
}

// HistoryResult lists recorded snapshots for a manifest path.
type HistoryResult struct {
	Manifest  string           `json:"manifest"`
	Snapshots []store.Snapshot `json:"snapshots"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [manifest]",
		Short: "List recorded snapshots of a manifest",
		Long: `List every snapshot recorded for a manifest path, oldest first.
Snapshot IDs feed into 'pinset diff --db --from --to'.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveManifestArg(rootOpts, args)
			if err != nil {
				return err
			}
			return runHistory(opts, path, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "snapshot store path (default "+defaultDatabase+")")

	return cmd
}

func runHistory(opts *HistoryOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	s, err := openStore(opts.RootOptions, opts.Database)
	if err != nil {
		formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening store", err)
	}
	defer s.Close()

	snapshots, err := s.ListSnapshots(cmd.Context(), path)
	if err != nil {
		formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "listing snapshots", err)
	}

	result := HistoryResult{Manifest: path, Snapshots: snapshots}
	if opts.Format == "json" {
		return formatter.Success(result)
	}

	if len(snapshots) == 0 {
		fmt.Fprintf(formatter.Writer, "no snapshots recorded for %s\n", path)
		return nil
	}
	for _, snap := range snapshots {
		fmt.Fprintf(formatter.Writer, "%s  %s  %s  %d line(s)\n",
			snap.ID, snap.TakenAt.Format("2006-01-02 15:04:05"), shortHash(snap.ContentHash), snap.LineCount)
	}
	return nil
}
