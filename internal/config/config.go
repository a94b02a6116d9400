package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config holds every mdcore setting.
type Config struct {
	Editor  EditorConfig  `toml:"editor"`
	History HistoryConfig `toml:"history"`
	Log     LogConfig     `toml:"log"`
	Notes   NotesConfig   `toml:"notes"`
}

// EditorConfig configures editing commands.
type EditorConfig struct {
	// IndentUnit is inserted by indent and removed by outdent.
	IndentUnit string `toml:"indent_unit"`
}

// HistoryConfig configures undo/redo.
type HistoryConfig struct {
	MaxEntries int `toml:"max_entries"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NotesConfig locates the notes directory.
type NotesConfig struct {
	// Path is the base directory relative file arguments resolve against.
	// Empty means the working directory.
	Path string `toml:"path"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Editor:  EditorConfig{IndentUnit: "  "},
		History: HistoryConfig{MaxEntries: 1000},
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

// DefaultPath returns the user configuration file path, or "" when the
// user configuration directory is unknown.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "mdcore", "config.toml")
}

// Load returns the defaults overridden by the file at path and then by
// the environment. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if err := decode(path, data, &cfg); err != nil {
				return Config{}, err
			}
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFromReader returns the defaults overridden by the TOML read from r.
// The environment is not consulted.
func LoadFromReader(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := decode("<reader>", data, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decode parses data into cfg. Keys absent from data keep their current
// values; unknown keys are an error.
func decode(source string, data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	err := dec.Decode(cfg)
	if err == nil {
		return nil
	}

	perr := &ParseError{Path: source, Message: err.Error(), Err: err}
	var derr *toml.DecodeError
	var serr *toml.StrictMissingError
	switch {
	case errors.As(err, &derr):
		perr.Line, perr.Column = derr.Position()
	case errors.As(err, &serr) && len(serr.Errors) > 0:
		perr.Line, perr.Column = serr.Errors[0].Position()
		perr.Message = "unknown key " + strings.Join(serr.Errors[0].Key(), ".")
	}
	return perr
}

// Validate checks every setting.
func (c Config) Validate() error {
	if c.Editor.IndentUnit == "" || strings.Trim(c.Editor.IndentUnit, " \t") != "" {
		return &ValidationError{Path: "editor.indent_unit", Message: "must be spaces or tabs", Value: c.Editor.IndentUnit}
	}
	if c.History.MaxEntries <= 0 {
		return &ValidationError{Path: "history.max_entries", Message: "must be positive", Value: c.History.MaxEntries}
	}
	if _, err := c.Log.level(); err != nil {
		return &ValidationError{Path: "log.level", Message: "must be debug, info, warn or error", Value: c.Log.Level}
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return &ValidationError{Path: "log.format", Message: "must be text or json", Value: c.Log.Format}
	}
	return nil
}

func (l LogConfig) level() (slog.Level, error) {
	var lvl slog.Level
	err := lvl.UnmarshalText([]byte(l.Level))
	return lvl, err
}

// NewLogger builds a logger writing to w in the configured format at the
// configured level.
func (l LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	lvl, err := l.level()
	if err != nil {
		return nil, &ValidationError{Path: "log.level", Message: err.Error(), Value: l.Level}
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch l.Format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return nil, &ValidationError{Path: "log.format", Message: "must be text or json", Value: l.Format}
}

// Resolve returns name as is when it is absolute or no notes path is
// set, and joined to the notes path otherwise. A leading "~/" in the notes
// path expands to the home directory.
func (n NotesConfig) Resolve(name string) string {
	if n.Path == "" || filepath.IsAbs(name) {
		return name
	}
	base := n.Path
	if rest, ok := strings.CutPrefix(base, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			base = filepath.Join(home, rest)
		}
	}
	return filepath.Join(base, name)
}
