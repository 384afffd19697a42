// Package config provides configuration loading and defaults for clauderank.
package config

import "time"

// DefaultClaudeHome is the default location of Claude Code's data directory.
const DefaultClaudeHome = "~/.claude"

// DefaultConfigDir is the default location for clauderank configuration.
const DefaultConfigDir = "~/.config/clauderank"

// DefaultDataDir holds the database and the derived rank.json and badge.
const DefaultDataDir = "~/.claude-rank"

// DefaultDBName is the filename for the SQLite database.
const DefaultDBName = "rank.db"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// EnvPrefix prefixes environment overrides, e.g. CLAUDERANK_DATA_DIR.
const EnvPrefix = "CLAUDERANK"

// Streak recovery policies.
const (
	RecoveryNone   = "none"
	RecoveryFreeze = "freeze"
	RecoveryGrace  = "grace"
)

// DefaultLog holds the default logging settings.
var DefaultLog = Log{
	Level:  "warn",
	Format: "text",
}

// DefaultSync holds the default sync throttling.
var DefaultSync = Sync{
	MinInterval: 30 * time.Second,
}

// DefaultWatch holds the default watcher settings.
var DefaultWatch = Watch{
	Debounce: 2 * time.Second,
}
