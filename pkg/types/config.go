// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// DictionaryConfig says where vocabularies come from.
type DictionaryConfig struct {
	// Dir holds <role>.txt vocabulary files loaded under the role named by
	// the file (e.g. observation.txt, negator.txt).
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// Files maps a role name to additional dictionary files.
	Files map[string][]string `json:"files,omitempty" yaml:"files,omitempty" mapstructure:"files"`

	// DisableBuiltinCues skips the embedded cue vocabulary that is otherwise
	// loaded before any file. The zero value keeps negation and speculation
	// working.
	DisableBuiltinCues bool `json:"disable_builtin_cues" yaml:"disable_builtin_cues" mapstructure:"disable_builtin_cues"`
}

// ScopeConfig tunes the certainty scope rules.
type ScopeConfig struct {
	// ForwardWindow is how many word tokens after a cue it still governs.
	ForwardWindow int `json:"forward_window" yaml:"forward_window" mapstructure:"forward_window"`

	// BackwardWindow is how many word tokens before a cue it still governs.
	BackwardWindow int `json:"backward_window" yaml:"backward_window" mapstructure:"backward_window"`

	// SplitOnNewline treats every line break as a sentence boundary.
	SplitOnNewline bool `json:"split_on_newline" yaml:"split_on_newline" mapstructure:"split_on_newline"`

	// MaxInputBytes rejects larger texts. Zero means unlimited.
	MaxInputBytes int `json:"max_input_bytes" yaml:"max_input_bytes" mapstructure:"max_input_bytes"`
}

// CacheConfig controls the extraction result cache.
type CacheConfig struct {
	Enabled         bool          `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	TTL             time.Duration `json:"ttl" yaml:"ttl" mapstructure:"ttl"`
	CleanupInterval time.Duration `json:"cleanup_interval" yaml:"cleanup_interval" mapstructure:"cleanup_interval"`
}

// StoreConfig holds settings for the SQLite result store.
type StoreConfig struct {
	// Dir is the base directory for the store (contains index/).
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// BatchConfig holds settings for directory-wide extraction.
type BatchConfig struct {
	// NotesDir contains the *.txt notes to extract.
	NotesDir string `json:"notes_dir" yaml:"notes_dir" mapstructure:"notes_dir"`

	// OutputDir receives one <id>-objects.yaml file per note.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// Workers bounds concurrent extractions (default 4).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`
}

// LogConfig carries zap logger construction parameters.
type LogConfig struct {
	// Level is one of debug, info, warn, error. Defaults to info.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is json or console. Defaults to console.
	Format string `json:"format" yaml:"format" mapstructure:"format"`

	// OutputPaths defaults to ["stderr"].
	OutputPaths []string `json:"output_paths,omitempty" yaml:"output_paths,omitempty" mapstructure:"output_paths"`
}

// Config groups every setting the CLI reads.
type Config struct {
	Dictionary DictionaryConfig `json:"dictionary" yaml:"dictionary" mapstructure:"dictionary"`
	Scope      ScopeConfig      `json:"scope" yaml:"scope" mapstructure:"scope"`
	Cache      CacheConfig      `json:"cache" yaml:"cache" mapstructure:"cache"`
	Store      StoreConfig      `json:"store" yaml:"store" mapstructure:"store"`
	Batch      BatchConfig      `json:"batch" yaml:"batch" mapstructure:"batch"`
	Log        LogConfig        `json:"log" yaml:"log" mapstructure:"log"`

	// MetricsFile, when set, receives a Prometheus textfile after batch runs.
	MetricsFile string `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty" mapstructure:"metrics_file"`
}

// DefaultScopeConfig returns the scope windows used when none are configured.
func DefaultScopeConfig() ScopeConfig {
	return ScopeConfig{
		ForwardWindow:  6,
		BackwardWindow: 3,
		SplitOnNewline: true,
	}
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Dictionary: DictionaryConfig{
			Dir: "dictionaries",
		},
		Scope: DefaultScopeConfig(),
		Cache: CacheConfig{
			Enabled:         false,
			TTL:             10 * time.Minute,
			CleanupInterval: 5 * time.Minute,
		},
		Store: StoreConfig{
			Dir:        "output",
			MaxResults: 20,
		},
		Batch: BatchConfig{
			NotesDir:  "notes",
			OutputDir: "output/extracted",
			Workers:   4,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
