package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/quill/internal/core/config"
	"github.com/colonyops/quill/internal/core/document"
	"github.com/colonyops/quill/internal/core/kv"
	"github.com/colonyops/quill/internal/printer"
	"github.com/colonyops/quill/internal/quill"
)

type harness struct {
	flags *Flags
	app   *quill.App
	root  *cli.Command
	out   bytes.Buffer
	err   bytes.Buffer
}

func newHarness(t *testing.T, mutate func(*config.Config)) *harness {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	if mutate != nil {
		mutate(&cfg)
	}

	h := &harness{flags: &Flags{Config: &cfg, DataDir: cfg.DataDir}}
	h.app = quill.New(&cfg, afero.NewOsFs(), nil, kv.NewMemory(), quill.BuildInfo{Version: "test"}, zerolog.Nop())
	h.root = &cli.Command{
		Name:      "quill",
		Writer:    &h.out,
		ErrWriter: &h.err,
		// cli.Exit would otherwise end the test binary.
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
	NewSortCmd(h.flags, h.app).Register(h.root)
	NewRecoveryCmd(h.flags, h.app).Register(h.root)
	NewDoctorCmd(h.flags, h.app).Register(h.root)
	NewConfigValidateCmd(h.flags).Register(h.root)
	return h
}

func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()
	ctx := printer.WithPrinter(context.Background(), printer.New(&h.out, &h.err))
	return h.root.Run(ctx, append([]string{"quill"}, args...))
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestSort_Stdout(t *testing.T) {
	h := newHarness(t, nil)
	path := writeFile(t, t.TempDir(), "names.txt", "cherry\napple\nbanana")

	require.NoError(t, h.run(t, "sort", path))
	assert.Equal(t, "apple\nbanana\ncherry", h.out.String())

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "cherry\napple\nbanana", string(body), "input untouched")
}

func TestSort_Output(t *testing.T) {
	h := newHarness(t, nil)
	dir := t.TempDir()
	path := writeFile(t, dir, "names.txt", "b\na")
	dest := filepath.Join(dir, "sorted", "names.txt")

	require.NoError(t, h.run(t, "sort", path, "-o", dest))

	body, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "a\nb", string(body))
	assert.Contains(t, h.out.String(), "Sorted")
}

func TestSort_InPlace(t *testing.T) {
	h := newHarness(t, nil)
	path := writeFile(t, t.TempDir(), "names.txt", "b\na")

	require.NoError(t, h.run(t, "sort", "--in-place", path))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\nb", string(body))
}

func TestSort_InPlaceTruncatedNeedsForce(t *testing.T) {
	h := newHarness(t, func(c *config.Config) {
		c.Ingest.ChunkSize = 4 << 10
		c.Ingest.MaxBytes = 4 << 10
	})
	body := strings.Repeat("z\ny\n", 4<<10)
	path := writeFile(t, t.TempDir(), "big.txt", body)

	err := h.run(t, "sort", "-i", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	got, rerr := os.ReadFile(path)
	require.NoError(t, rerr)
	assert.Equal(t, body, string(got), "file untouched")

	require.NoError(t, h.run(t, "sort", "-i", "--force", path))
	got, rerr = os.ReadFile(path)
	require.NoError(t, rerr)
	assert.Len(t, got, 4<<10)
}

func TestSort_BlankFile(t *testing.T) {
	h := newHarness(t, nil)
	path := writeFile(t, t.TempDir(), "blank.txt", "  \n\t\n")

	require.NoError(t, h.run(t, "sort", path))
	assert.Contains(t, h.out.String(), "nothing to sort")
}

func TestSort_BadArgs(t *testing.T) {
	h := newHarness(t, nil)

	assert.Error(t, h.run(t, "sort"))
	assert.Error(t, h.run(t, "sort", "a.txt", "-o", "b.txt", "-i"))
	assert.Error(t, h.run(t, "sort", filepath.Join(t.TempDir(), "missing.txt")))
}

func TestRecovery_ShowEmpty(t *testing.T) {
	h := newHarness(t, nil)

	require.NoError(t, h.run(t, "recovery", "show"))
	assert.Contains(t, h.out.String(), "Nothing to recover")
}

func TestRecovery_ImportShowExportClear(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	rec := h.app.Editor.Recovery()
	require.True(t, rec.PersistNow(ctx, []document.Entry{{Content: "first draft"}}))

	file := writeFile(t, t.TempDir(), "drafts.json", `[{"path":"/notes/todo.txt","content":"buy milk"}]`)
	require.NoError(t, h.run(t, "recovery", "import", "-f", file))
	assert.Contains(t, h.out.String(), "2 documents waiting to be restored")
	assert.Contains(t, h.err.String(), "not durable")

	h.out.Reset()
	require.NoError(t, h.run(t, "recovery", "show"))
	assert.Contains(t, h.out.String(), document.UntitledLabel)
	assert.Contains(t, h.out.String(), "/notes/todo.txt")

	h.out.Reset()
	require.NoError(t, h.run(t, "recovery", "export"))
	var exported []document.Entry
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &exported))
	assert.Equal(t, []document.Entry{
		{Content: "first draft"},
		{Path: "/notes/todo.txt", Content: "buy milk"},
	}, exported)

	require.NoError(t, h.run(t, "recovery", "clear"))
	_, ok := rec.Load(ctx)
	assert.False(t, ok)
}

func TestRecovery_ImportReplace(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	rec := h.app.Editor.Recovery()
	require.True(t, rec.PersistNow(ctx, []document.Entry{{Content: "old"}}))

	file := writeFile(t, t.TempDir(), "drafts.json", `[{"path":"","content":"new"}]`)
	require.NoError(t, h.run(t, "recovery", "import", "--replace", "-f", file))

	snap, ok := rec.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, []document.Entry{{Content: "new"}}, snap.Entries)
}

func TestRecovery_ExportEmptyIsList(t *testing.T) {
	h := newHarness(t, nil)

	require.NoError(t, h.run(t, "recovery", "export"))
	assert.Equal(t, "[]\n", h.out.String())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		format  string
		wantErr bool
		want    string
	}{
		{name: "valid text", body: "editor:\n  tab_width: 2\n", format: "text", want: "Configuration is valid"},
		{name: "invalid text", body: "editor:\n  tab_width: 99\n", format: "text", wantErr: true},
		{name: "valid json", body: "", format: "json", want: `"valid": true`},
		{name: "invalid json", body: "recovery:\n  key: \"has space\"\n", format: "json", wantErr: true, want: `"field": "recovery.key"`},
		{name: "unparsable", body: "editor: [", format: "json", wantErr: true, want: `"field": "config_file"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			h.flags.ConfigPath = writeFile(t, t.TempDir(), "config.yaml", tt.body)

			err := h.run(t, "config", "validate", "--format", tt.format)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if tt.want != "" {
				assert.Contains(t, h.out.String(), tt.want)
			}
			if tt.name == "invalid text" {
				assert.Contains(t, h.err.String(), "editor.tab_width")
			}
		})
	}
}

func TestDoctor_JSON(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Watch.Enabled = false })

	// Memory storage fails the database check.
	err := h.run(t, "doctor", "--format", "json")
	require.Error(t, err)

	var report struct {
		Healthy bool `json:"healthy"`
		Checks  []struct {
			Name  string `json:"name"`
			Items []struct {
				Label  string `json:"label"`
				Status string `json:"status"`
			} `json:"items"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &report))
	assert.False(t, report.Healthy)
	require.Len(t, report.Checks, 3)
	assert.Equal(t, "Storage", report.Checks[1].Name)
	assert.Equal(t, "database", report.Checks[1].Items[1].Label)
	assert.Equal(t, "fail", report.Checks[1].Items[1].Status)
}

func TestDoctor_Text(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Watch.Enabled = false })

	_ = h.run(t, "doctor")
	out := h.err.String()
	assert.Contains(t, out, "Quill Doctor")
	assert.Contains(t, out, "recovery slot")
	assert.Contains(t, out, "failed")
}

func TestRecentPathCompleter(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	dir := t.TempDir()
	a, b := filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, nil, 0o644))
	require.NoError(t, os.WriteFile(b, nil, 0o644))

	require.NoError(t, h.app.Recent.Add(ctx, a))
	require.NoError(t, h.app.Recent.Add(ctx, b))
	require.NoError(t, h.app.Recent.Add(ctx, filepath.Join(dir, "deleted.txt")))

	RecentPathCompleter(h.app)(ctx, h.root)

	assert.Equal(t, b+"\n"+a+"\n", h.out.String(), "missing files are skipped")
}
