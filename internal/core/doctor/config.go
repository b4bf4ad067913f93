package doctor

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/quill/internal/core/config"
)

// ConfigCheck reports whether the config file exists and passes validation.
type ConfigCheck struct {
	path string
	cfg  *config.Config
}

// NewConfigCheck creates a config check for the file at path, already loaded
// into cfg.
func NewConfigCheck(path string, cfg *config.Config) *ConfigCheck {
	return &ConfigCheck{path: path, cfg: cfg}
}

func (c *ConfigCheck) Name() string {
	return "Configuration"
}

func (c *ConfigCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	if _, err := os.Stat(c.path); err != nil {
		result.Items = append(result.Items, pass("config file", "not found, using defaults"))
	} else {
		result.Items = append(result.Items, pass("config file", c.path))
	}

	err := c.cfg.ValidateDeep(c.path)
	var fieldErrs criterio.FieldErrors
	switch {
	case err == nil:
		result.Items = append(result.Items, pass("validation", fmt.Sprintf("virtualize above %d lines", c.cfg.Editor.VirtualizeThreshold)))
	case errors.As(err, &fieldErrs):
		for _, fe := range fieldErrs {
			result.Items = append(result.Items, fail(fe.Field, fe.Err.Error()))
		}
	default:
		result.Items = append(result.Items, fail("validation", err.Error()))
	}

	return result
}
