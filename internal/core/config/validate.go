package config

import (
	"fmt"
	"os"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/quill/internal/core/validate"
)

const (
	minChunkSize = 4 << 10
	maxTabWidth  = 16
)

// Validate performs structural validation of the configuration.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if c.DataDir == "" {
		errs = errs.Append("data_dir", fmt.Errorf("cannot be empty"))
	}

	if c.Editor.VirtualizeThreshold < 1 {
		errs = errs.Append("editor.virtualize_threshold", fmt.Errorf("must be at least 1"))
	}
	if c.Editor.Overscan < 0 {
		errs = errs.Append("editor.overscan", fmt.Errorf("cannot be negative"))
	}
	if c.Editor.StatusDebounce < 0 {
		errs = errs.Append("editor.status_debounce", fmt.Errorf("cannot be negative"))
	}
	if c.Editor.TabWidth < 1 || c.Editor.TabWidth > maxTabWidth {
		errs = errs.Append("editor.tab_width", fmt.Errorf("must be between 1 and %d", maxTabWidth))
	}

	if c.Ingest.ChunkSize < minChunkSize {
		errs = errs.Append("ingest.chunk_size", fmt.Errorf("must be at least %s", ByteSize(minChunkSize)))
	}
	if c.Ingest.MaxBytes < c.Ingest.ChunkSize {
		errs = errs.Append("ingest.max_bytes", fmt.Errorf("must be at least chunk_size (%s)", c.Ingest.ChunkSize))
	}

	if c.Recovery.Debounce < 0 {
		errs = errs.Append("recovery.debounce", fmt.Errorf("cannot be negative"))
	}
	if err := validate.SlotKey(c.Recovery.Key); err != nil {
		errs = errs.Append("recovery.key", err)
	}
	if c.Recovery.MaxAge < 0 {
		errs = errs.Append("recovery.max_age", fmt.Errorf("cannot be negative"))
	}

	if err := validate.OneOf(c.TUI.Theme, ThemeLight, ThemeDark); err != nil {
		errs = errs.Append("tui.theme", err)
	}

	return errs.ToError()
}

// ValidateDeep performs Validate plus file system checks on the config file
// and data directory.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}
