package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/punnlert/modular-tutorial-fritzing/pkg/runner"
)

const defaultDebounce = 500 * time.Millisecond

func watchCmd(g *globalFlags) *cobra.Command {
	var (
		opts     checkOptions
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Re-check parts whenever they or their graphics change",
		Long: `watch checks the parts below dir again whenever a part document changes,
and every part referencing a graphic whenever that graphic changes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd, *g)
			if err != nil {
				return err
			}
			opts.merge(cmd, cfg)
			if len(args) == 1 {
				opts.path = args[0]
			}
			if opts.path == "" {
				opts.path = "."
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd.OutOrStdout(), log, opts, debounce)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.checks, "checks", "c", nil, "Check(s) to run (default: all)")
	cmd.Flags().BoolVar(&opts.fix, "fix", false, "Try to automatically fix errors when possible")
	cmd.Flags().DurationVar(&debounce, "debounce", defaultDebounce, "Wait this long for more changes before checking")
	return cmd
}

func runWatch(ctx context.Context, w io.Writer, log *logrus.Logger, o checkOptions, debounce time.Duration) error {
	r, err := runner.New(log)
	if err != nil {
		return usageError(err)
	}
	metadata, graphic, err := r.Registry.Split(o.checks)
	if err != nil {
		return usageError(err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if err := addWatches(fsw, o.path, log); err != nil {
		return usageError(err)
	}
	log.WithField("dir", o.path).Info("Watching for changes")

	if debounce <= 0 {
		debounce = defaultDebounce
	}
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	pending := make(map[string]bool)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					if err := addWatches(fsw, event.Name, log); err != nil {
						log.WithError(err).Warn("Failed to watch new directory")
					}
					continue
				}
			}
			if watched(event.Name) {
				pending[event.Name] = true
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Error("Watcher error")

		case <-ticker.C:
			if len(pending) == 0 {
				continue
			}
			targets := affectedTargets(pending, o, log)
			clear(pending)
			if len(targets) == 0 {
				continue
			}
			outcomes, err := r.CheckAll(targets, metadata, graphic, o.fix)
			if err != nil {
				return usageError(err)
			}
			writeText(w, outcomes)
		}
	}
}

func watched(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return runner.IsTarget(name) || ext == ".svg"
}

// affectedTargets maps changed files to the parts that must be checked again.
func affectedTargets(changed map[string]bool, o checkOptions, log logrus.FieldLogger) []string {
	set := make(map[string]bool)
	for name := range changed {
		if runner.IsTarget(name) {
			set[name] = true
			continue
		}
		found, err := runner.SearchTargetsReferencingGraphic(name, o.path)
		if err != nil {
			log.WithError(err).WithField("graphic", name).Warn("Searching referencing parts failed")
			continue
		}
		for _, f := range found {
			set[f] = true
		}
	}

	var out []string
	for t := range set {
		targets, err := runner.CollectTargets(t, runner.CollectOptions{Ignore: o.ignore})
		if err != nil {
			// Removed between the event and the check.
			log.WithError(err).Debug("Skipping target")
			continue
		}
		out = append(out, targets...)
	}
	slices.Sort(out)
	return out
}

func addWatches(fsw *fsnotify.Watcher, root string, log logrus.FieldLogger) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if base := d.Name(); strings.HasPrefix(base, ".") && path != root {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			log.WithError(err).WithField("path", path).Warn("Failed to watch directory")
		}
		return nil
	})
}
