package main

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dshills/mdcore/internal/config"
	"github.com/dshills/mdcore/internal/engine"
)

var rootCmd = &cobra.Command{
	Use:   "mdcore",
	Short: "Inspect and edit Markdown+ files with the mdcore engine",
	Long: `mdcore runs the Markdown+ editing engine over files: it prints the
lossless span tree and the render snapshot, applies scripted edits and
checks the engine invariants.

Examples:
  mdcore tree notes.md                      # indented span tree
  mdcore snapshot notes.md                  # render blocks as YAML
  mdcore apply notes.md -s edits.yaml --diff
  mdcore check 'notes/**/*.md'
  mdcore describe notes.md 120            # block and columns at byte 120
  mdcore watch notes.md --log-level debug`,
	SilenceUsage:      true,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	PersistentPreRunE: setup,
}

var (
	configPath string
	logLevel   = newEnumFlag("debug", "info", "warn", "error")
	logFormat  = newEnumFlag("text", "json")

	// Set by setup before any command runs.
	cfg    config.Config
	logger *slog.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath(), "Path to configuration file")
	rootCmd.PersistentFlags().Var(logLevel, "log-level", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Var(logFormat, "log-format", "Log format (text, json)")
}

// setup loads the configuration, applies the global flags on top and
// builds the logger.
func setup(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel.set {
		cfg.Log.Level = logLevel.value
	}
	if logFormat.set {
		cfg.Log.Format = logFormat.value
	}
	logger, err = cfg.Log.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	logger.Debug("config loaded", "path", configPath, "indent_unit", cfg.Editor.IndentUnit, "max_undo", cfg.History.MaxEntries)
	return nil
}

// openDocument reads the file named by arg, resolved against the notes
// path, into a document configured from cfg.
func openDocument(arg string) (*engine.Document, string, error) {
	path := cfg.Notes.Resolve(arg)
	doc, err := loadDocument(path)
	return doc, path, err
}

func loadDocument(path string) (*engine.Document, error) {
	src, err := readFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := engine.New(src,
		engine.WithLogger(logger),
		engine.WithIndentUnit(cfg.Editor.IndentUnit),
		engine.WithMaxUndo(cfg.History.MaxEntries),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// enumFlag is a string flag restricted to a fixed set of values.
type enumFlag struct {
	allowed []string
	value   string
	set     bool
}

var _ pflag.Value = (*enumFlag)(nil)

func newEnumFlag(allowed ...string) *enumFlag {
	return &enumFlag{allowed: allowed}
}

func (f *enumFlag) String() string { return f.value }

func (f *enumFlag) Set(v string) error {
	v = strings.ToLower(v)
	if !slices.Contains(f.allowed, v) {
		return fmt.Errorf("must be one of %s", strings.Join(f.allowed, ", "))
	}
	f.value, f.set = v, true
	return nil
}

func (f *enumFlag) Type() string { return "string" }
