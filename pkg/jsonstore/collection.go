package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	pkgerrors "github.com/notpazar/notpazar-backend/pkg/errors"
)

// Collection is a typed view over one JSON file owned by a Store. The
// snapshot type S is either a mapping keyed by the natural key or an
// ordered sequence; empty produces the snapshot used when the file does
// not exist yet.
type Collection[S any] struct {
	store *Store
	name  string
	empty func() S
}

// NewCollection binds a snapshot type to the named file under the store
// directory. The name may contain a subdirectory (for per-user files).
func NewCollection[S any](store *Store, name string, empty func() S) *Collection[S] {
	return &Collection[S]{store: store, name: name, empty: empty}
}

// Name returns the collection's file name relative to the store root.
func (c *Collection[S]) Name() string {
	return c.name
}

func (c *Collection[S]) path() string {
	return filepath.Join(c.store.dir, filepath.FromSlash(c.name))
}

// Load returns an independent copy of the collection's current
// contents. A missing file is an empty snapshot, not an error.
// Malformed JSON is surfaced as CORRUPT_COLLECTION and never repaired
// or reset here.
func (c *Collection[S]) Load(ctx context.Context) (S, error) {
	return c.read()
}

func (c *Collection[S]) read() (S, error) {
	raw, err := os.ReadFile(c.path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return c.empty(), nil
		}
		var zero S
		return zero, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "reading collection "+c.name)
	}

	snapshot := c.empty()
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		var zero S
		return zero, pkgerrors.Wrap(pkgerrors.CodeCorrupt, err, "decoding collection "+c.name)
	}
	return snapshot, nil
}

// Update runs fn inside the collection's critical section: the current
// snapshot is read, fn transforms it, and the result is persisted with
// a write-to-temp-then-rename so a crash mid-write leaves the previous
// snapshot fully valid. The persisted snapshot is returned. Errors from
// fn abort the update and propagate unchanged.
func (c *Collection[S]) Update(ctx context.Context, fn func(S) (S, error)) (S, error) {
	var zero S

	lock := c.store.lockFor(c.name)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()
	defer c.store.observe(c.name, start)

	snapshot, err := c.read()
	if err != nil {
		c.store.recordFailure(ctx, c.name, failureReason(err), err)
		return zero, err
	}

	updated, err := fn(snapshot)
	if err != nil {
		c.store.recordFailure(ctx, c.name, "update", err)
		return zero, err
	}

	if err := c.write(updated); err != nil {
		c.store.recordFailure(ctx, c.name, failureReason(err), err)
		return zero, err
	}

	c.store.recordSuccess(ctx, c.name)
	return updated, nil
}

// write serializes the snapshot to a temporary file in the collection's
// directory and atomically replaces the collection file.
func (c *Collection[S]) write(snapshot S) error {
	path := c.path()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "creating collection directory for "+c.name)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "creating temp file for "+c.name)
	}
	tmpName := tmp.Name()

	enc := json.NewEncoder(tmp)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snapshot); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "encoding collection "+c.name)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "syncing collection "+c.name)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "closing temp file for "+c.name)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "replacing collection "+c.name)
	}
	return nil
}

func failureReason(err error) string {
	switch {
	case pkgerrors.HasCode(err, pkgerrors.CodeCorrupt):
		return "corrupt"
	case pkgerrors.HasCode(err, pkgerrors.CodePersistence):
		return "persistence"
	default:
		return "unknown"
	}
}
