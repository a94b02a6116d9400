package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"unicode/utf8"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/dshills/mdcore/internal/engine"
	"github.com/dshills/mdcore/internal/engine/buffer"
	"github.com/dshills/mdcore/internal/engine/command"
	"github.com/dshills/mdcore/internal/engine/snapshot"
)

var watchCmd = &cobra.Command{
	Use:   "watch FILE",
	Short: "Follow external writes to a file and log how anchors move",
	Long: `Follow external writes to a file.

Every time the file changes on disk the difference to the previous content
is applied to the document as one replace command, so block anchors
survive the edit. Each resulting patch is logged. Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	doc, path, err := openDocument(args[0])
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Watch the directory: editors often replace the file by renaming.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("watching", "path", abs, "blocks", len(doc.Snapshot().Blocks))
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if _, err := syncFile(doc, abs); err != nil {
				logger.Error("sync failed", "path", abs, "err", err)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch error", "err", err)
		}
	}
}

// syncFile applies the difference between the document and the file on
// disk to the document and reports which render blocks changed.
func syncFile(doc *engine.Document, path string) (snapshot.Changes, error) {
	data, err := readFile(path)
	if err != nil {
		return snapshot.Changes{}, err
	}
	cmd, ok := diffReplace(doc.Text(), string(data))
	if !ok {
		return snapshot.Changes{}, nil
	}
	before := doc.Snapshot()
	p, err := doc.Apply(cmd)
	if err != nil {
		return snapshot.Changes{}, err
	}
	changes := snapshot.Compare(before, doc.Snapshot())
	logger.Info("file changed",
		"version", p.Version,
		"range", cmd.Range.String(),
		"inserted", len(cmd.Text),
		"region", p.Region.String(),
		"added", len(changes.Added),
		"removed", len(changes.Removed),
		"changed", len(changes.Changed),
	)
	return changes, nil
}

// diffReplace returns the single replacement turning old into cur: the
// bytes between their common prefix and common suffix, cut on rune
// boundaries. It returns false when both are equal.
func diffReplace(old, cur string) (command.ReplaceRange, bool) {
	if old == cur {
		return command.ReplaceRange{}, false
	}
	n := min(len(old), len(cur))
	p := 0
	for p < n && old[p] == cur[p] {
		p++
	}
	for p > 0 && p < len(old) && !utf8.RuneStart(old[p]) {
		p--
	}
	s := 0
	for s < n-p && old[len(old)-1-s] == cur[len(cur)-1-s] {
		s++
	}
	for s > 0 && !utf8.RuneStart(old[len(old)-s]) {
		s--
	}
	return command.ReplaceRange{
		Range: buffer.NewSpan(p, len(old)-s),
		Text:  cur[p : len(cur)-s],
	}, true
}
