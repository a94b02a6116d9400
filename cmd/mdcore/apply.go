package main

import (
	"fmt"
	"io"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/dshills/mdcore/internal/engine"
	"github.com/dshills/mdcore/internal/engine/history"
)

var (
	applyScript  string
	applyDiff    bool
	applyWrite   bool
	applyHistory bool
)

var applyCmd = &cobra.Command{
	Use:   "apply FILE",
	Short: "Apply a YAML edit script to a file",
	Long: `Apply a YAML edit script to a file.

The script is a list of steps, each naming an op and its arguments:

  - op: insert            # at, text
  - op: delete            # start, end
  - op: replace           # start, end, text
  - op: split             # at
  - op: indent            # start, end
  - op: outdent           # start, end
  - op: toggle            # at (line start), marker (-, *, +, 1.)
  - op: content           # block (snapshot index) or anchor, text
  - op: select            # start, end
  - op: undo
  - op: redo

Offsets are bytes in the text as it is when the step runs. By default the
result is printed; --diff prints a unified diff instead, --history lists
the undo and redo entries the script left and --write replaces the file
atomically.`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().StringVarP(&applyScript, "script", "s", "", "YAML edit script (- for stdin)")
	applyCmd.Flags().BoolVar(&applyDiff, "diff", false, "Print a unified diff instead of the result")
	applyCmd.Flags().BoolVarP(&applyWrite, "write", "w", false, "Write the result back to the file")
	applyCmd.Flags().BoolVar(&applyHistory, "history", false, "Print the undo and redo entries instead of the result")
	applyCmd.MarkFlagsMutuallyExclusive("diff", "history")
	_ = applyCmd.MarkFlagRequired("script")
}

func runApply(cmd *cobra.Command, args []string) error {
	doc, path, err := openDocument(args[0])
	if err != nil {
		return err
	}
	before := doc.Text()

	in := cmd.InOrStdin()
	if applyScript != "-" {
		f, err := fsys.Open(applyScript)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	steps, err := readScript(in)
	if err != nil {
		return err
	}
	if err := runScript(doc, steps, logger); err != nil {
		return err
	}
	if err := doc.Check(); err != nil {
		return fmt.Errorf("%s after script: %w", path, err)
	}

	out := cmd.OutOrStdout()
	switch {
	case applyHistory:
		if err := writeHistory(out, doc); err != nil {
			return err
		}
	case applyDiff:
		diff, err := unifiedDiff(path, before, doc.Text())
		if err != nil {
			return err
		}
		fmt.Fprint(out, diff)
	case !applyWrite:
		fmt.Fprint(out, doc.Text())
	}

	if applyWrite && doc.Text() != before {
		if err := writeFile(path, doc.Bytes()); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		logger.Info("file written", "path", path, "bytes", doc.Len(), "version", doc.Version())
	}
	return nil
}

type historyListing struct {
	Undo []history.Info `yaml:"undo"`
	Redo []history.Info `yaml:"redo"`
}

// writeHistory prints the undo and redo entries of doc, oldest first.
func writeHistory(w io.Writer, doc *engine.Document) error {
	return writeYAML(w, historyListing{Undo: doc.UndoInfo(), Redo: doc.RedoInfo()})
}

// unifiedDiff renders the change from a to b with three lines of context.
func unifiedDiff(path, a, b string) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: path,
		ToFile:   path,
		Context:  3,
	})
}
