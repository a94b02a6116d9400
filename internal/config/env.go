package config

import (
	"strconv"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "MDCORE_"

// envMapping maps environment variables to the settings they override.
var envMapping = []struct {
	name string
	set  func(c *Config, v string) error
}{
	{EnvPrefix + "INDENT_UNIT", func(c *Config, v string) error { c.Editor.IndentUnit = v; return nil }},
	{EnvPrefix + "MAX_UNDO", func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &ValidationError{Path: "history.max_entries", Message: "not an integer", Value: v}
		}
		c.History.MaxEntries = n
		return nil
	}},
	{EnvPrefix + "LOG_LEVEL", func(c *Config, v string) error { c.Log.Level = v; return nil }},
	{EnvPrefix + "LOG_FORMAT", func(c *Config, v string) error { c.Log.Format = v; return nil }},
	{EnvPrefix + "NOTES_PATH", func(c *Config, v string) error { c.Notes.Path = v; return nil }},
}

// applyEnv overrides cfg from the environment.
// Note: Empty string values are treated as valid values, not as unset.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	for _, m := range envMapping {
		if v, ok := lookup(m.name); ok {
			if err := m.set(cfg, v); err != nil {
				return err
			}
		}
	}
	return nil
}
