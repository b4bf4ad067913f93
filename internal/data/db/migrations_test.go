package db

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := Open(t.TempDir(), DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestOpen_AppliesEmbeddedMigrations(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	steps, err := readMigrations(migrationsFS, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, steps)

	version, err := database.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, steps[len(steps)-1].version, version)

	_, err = database.Conn().ExecContext(ctx, "SELECT key, value, expires_at FROM kv_store LIMIT 0")
	require.NoError(t, err, "kv_store table should exist")
}

func TestMigrate_Idempotent(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, migrate(ctx, database.Conn(), zerolog.Nop()))

	var count int
	require.NoError(t, database.Conn().QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	steps, err := readMigrations(migrationsFS, "migrations")
	require.NoError(t, err)
	assert.Equal(t, len(steps), count)
}

func TestReadMigrations(t *testing.T) {
	tests := []struct {
		name    string
		files   fstest.MapFS
		want    []int
		wantErr string
	}{
		{
			name: "ordered by version",
			files: fstest.MapFS{
				"m/0010_later.sql":  {Data: []byte("SELECT 1;")},
				"m/0002_second.sql": {Data: []byte("SELECT 1;")},
				"m/0001_first.sql":  {Data: []byte("SELECT 1;")},
			},
			want: []int{1, 2, 10},
		},
		{
			name: "duplicate version",
			files: fstest.MapFS{
				"m/0001_a.sql": {Data: []byte("SELECT 1;")},
				"m/0001_b.sql": {Data: []byte("SELECT 1;")},
			},
			wantErr: "share version 1",
		},
		{
			name:    "empty body",
			files:   fstest.MapFS{"m/0001_blank.sql": {Data: []byte("  \n")}},
			wantErr: "is empty",
		},
		{
			name:    "bad name",
			files:   fstest.MapFS{"m/initial.sql": {Data: []byte("SELECT 1;")}},
			wantErr: "want NNNN_name.sql",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			steps, err := readMigrations(tt.files, "m")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)

			got := make([]int, 0, len(steps))
			for _, s := range steps {
				got = append(got, s.version)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitMigrationName(t *testing.T) {
	tests := []struct {
		file        string
		wantVersion int
		wantName    string
		wantErr     bool
	}{
		{"0001_kv_store.sql", 1, "kv_store", false},
		{"0100_big_version.sql", 100, "big_version", false},
		{"0001_kv_store.up.sql", 1, "kv_store.up", false},
		{"bad.sql", 0, "", true},
		{"0001_kv_store.txt", 0, "", true},
		{"0000_zero.sql", 0, "", true},
		{"-1_negative.sql", 0, "", true},
		{"abc_notnumber.sql", 0, "", true},
		{"0001_.sql", 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			version, name, err := splitMigrationName(tt.file)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantVersion, version)
			assert.Equal(t, tt.wantName, name)
		})
	}
}
