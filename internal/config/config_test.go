package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[editor]
indent_unit = "    "

[log]
level = "debug"

[notes]
path = "/srv/notes"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := Default()
	want.Editor.IndentUnit = "    "
	want.Log.Level = "debug"
	want.Notes.Path = "/srv/notes"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("expected defaults (-want +got):\n%s", diff)
	}
}

func TestLoad_ParseError(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantLine int
	}{
		{"syntax", "[editor]\nindent_unit = \n", 2},
		{"unknown key", "[history]\nmax_entries = 5\nmaximum = 3\n", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := Load(path)

			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected ParseError, got %v", err)
			}
			if perr.Path != path {
				t.Errorf("expected path %q, got %q", path, perr.Path)
			}
			if perr.Line != tt.wantLine {
				t.Errorf("expected line %d, got %d", tt.wantLine, perr.Line)
			}
			if perr.Unwrap() == nil {
				t.Error("expected wrapped error")
			}
		})
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		path    string
	}{
		{"indent letters", "[editor]\nindent_unit = \"ab\"\n", "editor.indent_unit"},
		{"zero history", "[history]\nmax_entries = 0\n", "history.max_entries"},
		{"bad level", "[log]\nlevel = \"loud\"\n", "log.level"},
		{"bad format", "[log]\nformat = \"xml\"\n", "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromReader(strings.NewReader(tt.content))
			if !errors.Is(err, ErrValidationFailed) {
				t.Fatalf("expected ErrValidationFailed, got %v", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Path != tt.path {
				t.Errorf("expected error for %s, got %v", tt.path, err)
			}
		})
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("MDCORE_LOG_FORMAT", "json")
	t.Setenv("MDCORE_MAX_UNDO", "50")

	path := writeConfig(t, "[log]\nformat = \"text\"\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("expected %q, got %q", "json", cfg.Log.Format)
	}
	if cfg.History.MaxEntries != 50 {
		t.Errorf("expected 50, got %d", cfg.History.MaxEntries)
	}

	t.Setenv("MDCORE_MAX_UNDO", "many")
	if _, err := Load(path); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("expected ErrValidationFailed, got %v", err)
	}
}

func TestNewLogger(t *testing.T) {
	var out bytes.Buffer
	logger, err := LogConfig{Level: "warn", Format: "json"}.NewLogger(&out)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "k", 1)

	got := out.String()
	if strings.Contains(got, "hidden") {
		t.Errorf("info record should be filtered: %q", got)
	}
	if !strings.Contains(got, `"msg":"shown"`) {
		t.Errorf("expected JSON warn record, got %q", got)
	}

	if _, err := (LogConfig{Level: "info", Format: "xml"}).NewLogger(&out); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("expected ErrValidationFailed, got %v", err)
	}
}

func TestNotesResolve(t *testing.T) {
	tests := []struct {
		notes string
		name  string
		want  string
	}{
		{"", "a.md", "a.md"},
		{"/srv/notes", "a.md", filepath.Join("/srv/notes", "a.md")},
		{"/srv/notes", "/tmp/a.md", "/tmp/a.md"},
	}

	for _, tt := range tests {
		got := NotesConfig{Path: tt.notes}.Resolve(tt.name)
		if got != tt.want {
			t.Errorf("Resolve(%q) with %q: expected %q, got %q", tt.name, tt.notes, tt.want, got)
		}
	}
}
