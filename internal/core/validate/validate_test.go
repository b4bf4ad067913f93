package validate

import (
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"absolute", "/tmp/notes.txt", false},
		{"relative", "notes.txt", false},
		{"glob", "docs/**/*.md", false},
		{"empty string", "", true},
		{"only spaces", "   ", true},
		{"nul byte", "a\x00b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Path(tt.input)
			assert.Equal(t, tt.wantErr, err != nil, "Path(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		})
	}
}

func TestPathField(t *testing.T) {
	err := PathField("path", "")
	require.Error(t, err)

	var fe criterio.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, err.Error(), "path")

	assert.NoError(t, PathField("path", "/x"))
}

func TestSlotKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"default key", "editor-unsaved-tabs", false},
		{"namespaced", "ui:theme", false},
		{"empty", "", true},
		{"with space", "my key", true},
		{"with tab", "key\t", true},
		{"control char", "key\x01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SlotKey(tt.input)
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func TestOneOf(t *testing.T) {
	assert.NoError(t, OneOf("dark", "light", "dark"))

	err := OneOf("blue", "light", "dark")
	require.Error(t, err)
	assert.Equal(t, `must be one of light, dark, got "blue"`, err.Error())
}
