// Package config handles configuration loading and validation for quill.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// Themes accepted by tui.theme.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Config holds the application configuration.
type Config struct {
	Editor   EditorConfig   `yaml:"editor"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Recovery RecoveryConfig `yaml:"recovery"`
	Watch    WatchConfig    `yaml:"watch"`
	TUI      TUIConfig      `yaml:"tui"`
	DataDir  string         `yaml:"-"` // set by caller, not from config file
}

// EditorConfig controls presentation of open documents.
type EditorConfig struct {
	// VirtualizeThreshold is the line count above which a document opens
	// read-only and virtualized.
	VirtualizeThreshold int           `yaml:"virtualize_threshold"`
	Overscan            int           `yaml:"overscan"`
	StatusDebounce      time.Duration `yaml:"status_debounce"`
	TabWidth            int           `yaml:"tab_width"`
}

// IngestConfig controls chunked file reads.
type IngestConfig struct {
	ChunkSize ByteSize `yaml:"chunk_size"`
	MaxBytes  ByteSize `yaml:"max_bytes"`
}

// RecoveryConfig controls the unsaved-document recovery slot.
type RecoveryConfig struct {
	Debounce time.Duration `yaml:"debounce"`
	Key      string        `yaml:"key"`
	MaxAge   time.Duration `yaml:"max_age"` // zero keeps the slot until restored
}

// WatchConfig controls detection of external file changes.
type WatchConfig struct {
	Enabled bool `yaml:"enabled"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	// Theme is the initial theme. A theme toggled in the editor is remembered
	// in the data directory and takes precedence.
	Theme string `yaml:"theme"`
}

// ByteSize is a size in bytes that may be written in YAML as a plain integer
// or a human-readable string such as "2MiB" or "200 MB".
type ByteSize int64

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *ByteSize) UnmarshalYAML(node *yaml.Node) error {
	var n int64
	if err := node.Decode(&n); err == nil {
		*b = ByteSize(n)
		return nil
	}

	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("line %d: expected size: %w", node.Line, err)
	}
	v, err := humanize.ParseBytes(s)
	if err != nil {
		return fmt.Errorf("line %d: invalid size %q: %w", node.Line, s, err)
	}
	*b = ByteSize(v)
	return nil
}

// String formats the size with IEC units.
func (b ByteSize) String() string {
	if b < 0 {
		return fmt.Sprintf("%d B", int64(b))
	}
	return humanize.IBytes(uint64(b))
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Editor: EditorConfig{
			VirtualizeThreshold: 2000,
			Overscan:            15,
			StatusDebounce:      60 * time.Millisecond,
			TabWidth:            4,
		},
		Ingest: IngestConfig{
			ChunkSize: 2 << 20,
			MaxBytes:  200 << 20,
		},
		Recovery: RecoveryConfig{
			Debounce: 2 * time.Second,
			Key:      "editor-unsaved-tabs",
		},
		Watch: WatchConfig{
			Enabled: true,
		},
		TUI: TUIConfig{
			Theme: ThemeLight,
		},
	}
}

// Load reads configuration from the given path and validates it. If
// configPath is empty or doesn't exist, returns defaults with the provided
// dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg, err := Read(configPath, dataDir)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Read parses the config file and applies defaults without validating.
func Read(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.DataDir = dataDir
	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults fills options that cannot meaningfully be zero.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Editor.VirtualizeThreshold == 0 {
		c.Editor.VirtualizeThreshold = defaults.Editor.VirtualizeThreshold
	}
	if c.Editor.TabWidth == 0 {
		c.Editor.TabWidth = defaults.Editor.TabWidth
	}
	if c.Ingest.ChunkSize == 0 {
		c.Ingest.ChunkSize = defaults.Ingest.ChunkSize
	}
	if c.Ingest.MaxBytes == 0 {
		c.Ingest.MaxBytes = defaults.Ingest.MaxBytes
	}
	if c.Recovery.Debounce == 0 {
		c.Recovery.Debounce = defaults.Recovery.Debounce
	}
	if c.Recovery.Key == "" {
		c.Recovery.Key = defaults.Recovery.Key
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
}
