// Package config loads the mdcore configuration.
//
// Settings come from three layers, higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← MDCORE_*
//	├─────────────────────────────┤
//	│  2. User Settings           │  ← ~/.config/mdcore/config.toml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// Command line flags are applied on top by the CLI.
//
// # File Format
//
//	[editor]
//	indent_unit = "  "
//
//	[history]
//	max_entries = 1000
//
//	[log]
//	level = "info"    # debug, info, warn, error
//	format = "text"   # text, json
//
//	[notes]
//	path = "~/notes"  # base directory for relative file arguments
package config
