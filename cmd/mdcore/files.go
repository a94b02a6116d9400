package main

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/natefinch/atomic"
	"github.com/spf13/afero"
)

// fsys is the file system commands read and write. Tests swap in a
// memory file system.
var fsys afero.Fs = afero.NewOsFs()

var errNoMatch = errors.New("no files match")

func readFile(path string) ([]byte, error) {
	return afero.ReadFile(fsys, path)
}

// writeFile replaces the contents of path. On the OS file system the new
// file is renamed into place, so readers never see a partial write.
func writeFile(path string, data []byte) error {
	if _, ok := fsys.(*afero.OsFs); ok {
		return atomic.WriteFile(path, bytes.NewReader(data))
	}
	return afero.WriteFile(fsys, path, data, 0o644)
}

// resolveFiles resolves args against the notes path and expands glob
// patterns, where "**" matches any number of directories. A pattern
// matching no file is an error; plain names are kept without checking.
func resolveFiles(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		path := cfg.Notes.Resolve(arg)
		if !strings.ContainsAny(path, "*?[{") {
			out = append(out, path)
			continue
		}

		base, pattern := doublestar.SplitPattern(filepath.ToSlash(path))
		root, err := filepath.Abs(filepath.FromSlash(base))
		if err != nil {
			return nil, err
		}
		matches, err := doublestar.Glob(afero.NewIOFS(afero.NewBasePathFs(fsys, root)), pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%w %q", errNoMatch, arg)
		}
		for _, m := range matches {
			out = append(out, filepath.Join(root, filepath.FromSlash(m)))
		}
	}
	return out, nil
}
