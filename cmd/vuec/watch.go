package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"goa.design/clue/log"

	"github.com/recera/vuec/cmd/vuec/internal/config"
	"github.com/recera/vuec/cmd/vuec/internal/ui"
	"github.com/recera/vuec/pkg/compiler"
)

const debounceDelay = 100 * time.Millisecond

func newWatchCommand(a *app) *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Recompile documents as they change",
		Long: `Compile every *.vir.yaml document under dir, then watch the directory
tree and recompile documents whenever they are written.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			dir := a.cfg.Input
			if len(args) > 0 {
				dir = args[0]
			}

			if err := a.openCache(ctx, noCache); err != nil {
				return err
			}
			defer a.close()

			w, err := newWatcher(a, dir)
			if err != nil {
				return err
			}
			defer w.Close()

			return w.Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the result cache")

	return cmd
}

// watcher recompiles documents under a directory tree on change.
type watcher struct {
	app      *app
	dir      string
	reporter *ui.Reporter
	fs       *fsnotify.Watcher
}

func newWatcher(a *app, dir string) (*watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	w := &watcher{
		app:      a,
		dir:      dir,
		reporter: ui.NewReporter(a.out, a.cfg.Output.Format == config.FormatJSON),
		fs:       fsw,
	}
	if err := w.addTree(dir); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *watcher) Close() error {
	return w.fs.Close()
}

// addTree watches root and its subdirectories, skipping hidden ones.
func (w *watcher) addTree(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(info.Name(), ".") {
			return filepath.SkipDir
		}
		return w.fs.Add(path)
	})
}

// Run compiles everything once, then recompiles changed documents until
// ctx is cancelled.
func (w *watcher) Run(ctx context.Context) error {
	results, err := w.app.compilePath(ctx, w.dir)
	if err != nil {
		log.Error(ctx, err, log.KV{K: "msg", V: "initial compile failed"})
	} else if err := w.reporter.Report(results); err != nil {
		return err
	}
	log.Print(ctx, log.KV{K: "msg", V: "watching"}, log.KV{K: "dir", V: w.dir})

	debounce := time.NewTimer(0)
	<-debounce.C // drain initial timer
	defer debounce.Stop()

	pending := make(map[string]struct{})
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						log.Warn(ctx, log.KV{K: "msg", V: "failed to watch directory"}, log.KV{K: "dir", V: event.Name})
					}
					continue
				}
			}
			if !isRelevantEvent(event) {
				continue
			}
			pending[event.Name] = struct{}{}
			debounce.Reset(debounceDelay)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			log.Error(ctx, err, log.KV{K: "msg", V: "watcher error"})

		case <-debounce.C:
			files := make([]string, 0, len(pending))
			for f := range pending {
				files = append(files, f)
			}
			pending = make(map[string]struct{})
			sort.Strings(files)
			w.recompile(ctx, files)
		}
	}
}

func (w *watcher) recompile(ctx context.Context, files []string) {
	var results []*compiler.Result
	for _, file := range files {
		res, err := w.app.compilePath(ctx, file)
		if err != nil {
			// The file may have been removed again before the debounce fired.
			log.Error(ctx, err, log.KV{K: "msg", V: "compile failed"}, log.KV{K: "file", V: file})
			continue
		}
		results = append(results, res...)
	}
	if len(results) == 0 {
		return
	}
	if err := w.reporter.Report(results); err != nil {
		log.Error(ctx, err, log.KV{K: "msg", V: "report failed"})
	}
}

func isRelevantEvent(event fsnotify.Event) bool {
	if !compiler.IsDocument(event.Name) {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}
