package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dshills/mdcore/internal/markdown"
	"github.com/dshills/mdcore/internal/markdown/ast"
)

var treeCmd = &cobra.Command{
	Use:   "tree FILE",
	Short: "Print the span tree of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, _, err := openDocument(args[0])
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), ast.Dump(doc.Tree(), doc.Text()))
		return err
	},
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot FILE",
	Short: "Print the render snapshot of a file as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, _, err := openDocument(args[0])
		if err != nil {
			return err
		}
		return writeYAML(cmd.OutOrStdout(), doc.Snapshot())
	},
}

var describeCmd = &cobra.Command{
	Use:   "describe FILE OFFSET",
	Short: "Print the block, content offset and columns at a byte offset",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		off, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("offset %q: %w", args[1], err)
		}
		doc, _, err := openDocument(args[0])
		if err != nil {
			return err
		}
		p, err := doc.DescribePoint(off)
		if err != nil {
			return err
		}
		return writeYAML(cmd.OutOrStdout(), p)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check FILE...",
	Short: "Verify the tree invariants and the byte round trip of files",
	Long: `Verify the tree invariants and the byte round trip of files.

Arguments may be glob patterns; "**" matches any number of directories:

  mdcore check 'notes/**/*.md'

Every file is checked even after a failure. The command fails if any file
does.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

var (
	errRoundTrip   = errors.New("round trip changed the bytes")
	errCheckFailed = errors.New("check failed")
)

func runCheck(cmd *cobra.Command, args []string) error {
	paths, err := resolveFiles(args)
	if err != nil {
		return err
	}
	failed := 0
	for _, path := range paths {
		if err := checkFile(cmd.OutOrStdout(), path); err != nil {
			failed++
			logger.Error("check failed", "path", path, "err", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d files", errCheckFailed, failed, len(paths))
	}
	return nil
}

func checkFile(w io.Writer, path string) error {
	doc, err := loadDocument(path)
	if err != nil {
		return err
	}
	if err := doc.Check(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := checkRoundTrip(doc.Bytes(), path); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s: ok (%d blocks, %s)\n", path, len(doc.Snapshot().Blocks), humanize.Bytes(uint64(doc.Len())))
	return err
}

// checkRoundTrip reparses got from scratch and compares its leaves with
// the bytes they cover.
func checkRoundTrip(got []byte, path string) error {
	src := string(got)
	var out bytes.Buffer
	t := markdown.Parse(src)
	for _, id := range t.Leaves() {
		s := t.Node(id).Span
		out.WriteString(src[s.Start:s.End])
	}
	if !bytes.Equal(out.Bytes(), got) {
		return fmt.Errorf("%s: %w", path, errRoundTrip)
	}
	return nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func init() {
	rootCmd.AddCommand(treeCmd, snapshotCmd, describeCmd, checkCmd)
}
