package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// watchDebounce coalesces editor write bursts (truncate + write, or
// rename-over) into a single re-check.
const watchDebounce = 200 * time.Millisecond

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [manifest]",
		Short: "Re-check a manifest on every change",
		Long: `Watch a manifest file and re-run 'check' whenever it changes.
Runs until interrupted. The containing directory is watched, not the
file itself, because editors replace files on save.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveManifestArg(rootOpts, args)
			if err != nil {
				return err
			}
			return runWatch(rootOpts, path, cmd)
		},
	}
	return cmd
}

func runWatch(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "resolving path", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		formatter.Error(ErrCodeWatchFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "starting watcher", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		formatter.Error(ErrCodeWatchFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "watching directory", err)
	}

	// Initial check so the terminal shows current state immediately.
	// Check failures don't stop the watch.
	recheck(opts, path, cmd, formatter)

	return watchLoop(cmd.Context(), watcher, abs, func() {
		recheck(opts, path, cmd, formatter)
	})
}

// watchLoop dispatches debounced change notifications for target until the
// context is canceled.
func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, target string, onChange func()) error {
	var timer *time.Timer
	pending := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})

		case <-pending:
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return WrapExitError(ExitCommandError, "watcher error", err)
		}
	}
}

func recheck(opts *RootOptions, path string, cmd *cobra.Command, formatter *OutputFormatter) {
	fmt.Fprintf(formatter.GetErrWriter(), "--- %s @ %s\n", path, time.Now().Format("15:04:05"))
	if err := runCheck(opts, path, cmd); err != nil {
		// Findings and parse failures are already printed by runCheck.
		formatter.VerboseLog("check: %v", err)
	}
}
