package doctor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/colonyops/quill/internal/core/document"
	"github.com/colonyops/quill/internal/core/kv"
	"github.com/colonyops/quill/internal/data/db"
)

// StorageCheck verifies the data directory, the database, and the recovery
// slot. With autofix it removes leftover corrupt database copies and a
// recovery slot that cannot be decoded.
type StorageCheck struct {
	dataDir  string
	database *db.DB
	store    kv.KV
	slot     string
	autofix  bool
}

// NewStorageCheck creates a storage check. database is nil when store is
// held in memory.
func NewStorageCheck(dataDir string, database *db.DB, store kv.KV, slot string, autofix bool) *StorageCheck {
	return &StorageCheck{dataDir: dataDir, database: database, store: store, slot: slot, autofix: autofix}
}

func (c *StorageCheck) Name() string {
	return "Storage"
}

func (c *StorageCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}
	result.Items = append(result.Items,
		c.checkDataDir(),
		c.checkDatabase(ctx),
	)
	result.Items = append(result.Items, c.checkBackups()...)
	result.Items = append(result.Items, c.checkSlot(ctx))
	return result
}

func (c *StorageCheck) checkDataDir() CheckItem {
	f, err := os.CreateTemp(c.dataDir, ".doctor-*")
	if err != nil {
		return fail("data directory", fmt.Sprintf("%s is not writable: %v", c.dataDir, err))
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return pass("data directory", c.dataDir)
}

func (c *StorageCheck) checkDatabase(ctx context.Context) CheckItem {
	if c.database == nil {
		return fail("database", "could not be opened; unsaved documents are kept in memory only")
	}
	version, err := c.database.SchemaVersion(ctx)
	if err != nil {
		return fail("database", err.Error())
	}
	return pass("database", fmt.Sprintf("%s (schema %d)", c.database.Path(), version))
}

func (c *StorageCheck) checkBackups() []CheckItem {
	matches, _ := filepath.Glob(filepath.Join(c.dataDir, db.FileName+".corrupt.*"))
	var items []CheckItem
	for _, m := range matches {
		item := warn("corrupt copy", filepath.Base(m))
		item.Fixable = true
		if c.autofix {
			if err := os.Remove(m); err != nil {
				item.Detail = fmt.Sprintf("%s: %v", filepath.Base(m), err)
			} else {
				item.Status = StatusPass
				item.Fixed = true
				item.Detail = "removed " + filepath.Base(m)
			}
		}
		items = append(items, item)
	}
	return items
}

func (c *StorageCheck) checkSlot(ctx context.Context) CheckItem {
	const label = "recovery slot"

	raw, err := c.store.GetRaw(ctx, c.slot)
	if kv.IsNotFound(err) {
		return pass(label, "empty")
	}
	if err != nil {
		return fail(label, err.Error())
	}

	var entries []document.Entry
	if err := json.Unmarshal(raw.Value, &entries); err != nil {
		item := warn(label, "cannot be decoded and will be ignored")
		item.Fixable = true
		if c.autofix {
			if derr := c.store.Delete(ctx, c.slot); derr == nil {
				item.Status = StatusPass
				item.Fixed = true
				item.Detail = "cleared undecodable slot"
			}
		}
		return item
	}

	var size int
	for _, e := range entries {
		size += len(e.Content)
	}
	detail := fmt.Sprintf("%d unsaved, %s, saved %s", len(entries), humanize.IBytes(uint64(size)), humanize.Time(raw.UpdatedAt))
	if raw.ExpiresAt != nil {
		detail += ", expires " + humanize.Time(*raw.ExpiresAt)
	}
	return pass(label, detail)
}
