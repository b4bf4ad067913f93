// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/hay-kot/criterio"
)

// Path validates user-entered file path input is non-empty after trimming
// whitespace.
func Path(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("path is required")
	}
	if strings.ContainsRune(input, 0) {
		return fmt.Errorf("path contains a NUL byte")
	}
	return nil
}

// PathField returns a criterio validator for path input.
func PathField(field, input string) error {
	return criterio.Run(field, input, Path)
}

// SlotKey validates a durable storage key: non-empty, no whitespace or
// control characters.
func SlotKey(key string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}
	for _, r := range key {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("key %q contains whitespace or control characters", key)
		}
	}
	return nil
}

// OneOf validates that value is one of allowed.
func OneOf(value string, allowed ...string) error {
	if slices.Contains(allowed, value) {
		return nil
	}
	return fmt.Errorf("must be one of %s, got %q", strings.Join(allowed, ", "), value)
}
