package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// debounceWindow coalesces the event bursts editors produce on save.
const debounceWindow = 200 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch [files...]",
	Short: "Recompile source files whenever they change",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("creating watcher: %w", err)
		}
		defer watcher.Close()

		watched := make(map[string]bool, len(args))
		dirs := make(map[string]bool)
		for _, path := range args {
			abs, err := filepath.Abs(path)
			if err != nil {
				return err
			}
			watched[abs] = true
			dirs[filepath.Dir(abs)] = true
		}
		// Watch directories, not files: editors replace files on save,
		// which drops a direct file watch.
		for dir := range dirs {
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("watching %s: %w", dir, err)
			}
		}
		if err := watcher.Add(protocolPath); err == nil {
			logger.Debug("watching protocol file", zap.String("path", protocolPath))
		}

		rebuild := func() {
			comp, err := newCompiler()
			if err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
				return
			}
			outputs, err := comp.CompileAll(cmd.Context(), args)
			if err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
				return
			}
			for _, path := range args {
				out := outputs[path]
				for _, d := range out.Diagnostics {
					fmt.Fprintln(os.Stderr, d)
				}
				if out.HasErrors() {
					continue
				}
				if err := writeOutput(path, out.Source); err != nil {
					fmt.Fprintln(os.Stderr, "error:", err)
				}
			}
		}

		rebuild()
		logger.Info("watching for changes", zap.Int("files", len(args)))

		var timer *time.Timer
		pending := make(chan struct{}, 1)
		for {
			select {
			case <-cmd.Context().Done():
				return nil

			case ev, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				abs, _ := filepath.Abs(ev.Name)
				if !watched[abs] && ev.Name != protocolPath {
					continue
				}
				logger.Debug("change detected", zap.String("path", ev.Name))
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounceWindow, func() {
					select {
					case pending <- struct{}{}:
					default:
					}
				})

			case <-pending:
				rebuild()

			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				logger.Warn("watch error", zap.Error(err))
			}
		}
	},
}
