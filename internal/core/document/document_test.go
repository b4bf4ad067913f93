package document

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		content   string
		wantDirty bool
	}{
		{"untitled empty starts dirty", "", "", true},
		{"untitled with content starts dirty", "", "draft", true},
		{"path bound starts clean", "/tmp/a.txt", "hello", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(tt.path, tt.content)
			assert.Equal(t, tt.wantDirty, d.Dirty)
			assert.Equal(t, tt.path, d.Path)
			assert.Equal(t, tt.content, d.Content)
		})
	}
}

func TestNew_IDsIncrease(t *testing.T) {
	a := New("", "")
	b := New("", "")
	c := New("/x", "")

	assert.Less(t, a.ID, b.ID)
	assert.Less(t, b.ID, c.ID)
}

func TestMarkSaved(t *testing.T) {
	d := New("", "old")
	d.MarkDirty()
	d.Truncated = true

	d.MarkSaved("/tmp/out.txt", "written text")

	assert.False(t, d.Dirty)
	assert.False(t, d.Truncated)
	assert.Equal(t, "/tmp/out.txt", d.Path)
	assert.Equal(t, "written text", d.Content)
}

func TestMarkDirty_BumpsGeneration(t *testing.T) {
	d := New("/a", "x")
	gen := d.Generation

	d.MarkDirty()

	assert.True(t, d.Dirty)
	assert.Equal(t, gen+1, d.Generation)
}

func TestSetContent(t *testing.T) {
	d := New("/a", "x")

	d.SetContent("x")
	assert.Equal(t, uint64(0), d.Generation, "unchanged content keeps generation")

	d.SetContent("y")
	assert.Equal(t, uint64(1), d.Generation)
	assert.False(t, d.Dirty, "SetContent does not mark dirty")
}

func TestSnapshotForRecovery(t *testing.T) {
	tests := []struct {
		name    string
		doc     *Document
		wantOK  bool
		wantEnt Entry
	}{
		{
			name:    "blank untitled is included",
			doc:     New("", ""),
			wantOK:  true,
			wantEnt: Entry{Path: "", Content: ""},
		},
		{
			name:    "clean path-bound is excluded",
			doc:     New("/a.txt", "saved"),
			wantOK:  false,
			wantEnt: Entry{},
		},
		{
			name: "dirty path-bound is included",
			doc: func() *Document {
				d := New("/a.txt", "edited")
				d.MarkDirty()
				return d
			}(),
			wantOK:  true,
			wantEnt: Entry{Path: "/a.txt", Content: "edited"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ent, ok := tt.doc.SnapshotForRecovery()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantEnt, ent)
		})
	}
}

func TestIsBlank(t *testing.T) {
	assert.True(t, New("", "").IsBlank())
	assert.True(t, New("", "  \n\t ").IsBlank())
	assert.False(t, New("", " a ").IsBlank())
}

func TestLabel(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"", UntitledLabel},
		{"/home/user/notes.txt", "notes.txt"},
		{`C:\Users\me\todo.md`, "todo.md"},
		{"plain.txt", "plain.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Label(tt.path))
		})
	}
}

func TestEntry_JSON(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		want  string
	}{
		{name: "untitled path is null", entry: Entry{Content: "draft"}, want: `{"path":null,"content":"draft"}`},
		{name: "bound path", entry: Entry{Path: "/tmp/a.txt", Content: "x"}, want: `{"path":"/tmp/a.txt","content":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal([]Entry{tt.entry})
			require.NoError(t, err)
			assert.JSONEq(t, "["+tt.want+"]", string(data))

			var back []Entry
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, []Entry{tt.entry}, back)
		})
	}
}
