package dirtab

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/calvinalkan/dirtab/internal/fs"
)

// filePerm is the mode for newly created entry files.
const filePerm = 0o644

// Table is a directory viewed as a keyed table of values.
//
// A Table is stateless between calls: no cached listing, no generation
// counter, no open handles. Each operation performs a few blocking
// filesystem calls against the directory's current contents, which is
// what keeps the table correct while a human edits the same directory.
// The price is a race window between any internal existence check and
// the following action; an external edit landing in that window surfaces
// as [ErrNotFound] or a wrapped IO error, never as a silently stale read.
//
// A Table is safe for concurrent use in the trivial sense that it holds
// no shared mutable state; operations on the same key issued
// concurrently (by goroutines, other processes, or a human) are subject
// to the host filesystem's own atomicity for single-file operations and
// nothing stronger. The table never locks the directory and never
// assumes exclusive access.
type Table[V any] struct {
	dir      string
	codec    Codec[V]
	keys     KeyPolicy
	readOnly bool
	onSkip   func(name string, reason error)
	fs       fs.FS
}

// Dir returns the directory this table reads and writes.
func (t *Table[V]) Dir() string {
	return t.dir
}

// Get reads and decodes the entry stored under key.
//
// Fails with [ErrNotFound] when no file maps to key and with [ErrDecode]
// when the file exists but the codec rejects its content.
func (t *Table[V]) Get(key string) (V, error) {
	var zero V

	name, err := t.nameFor(key)
	if err != nil {
		return zero, err
	}

	data, err := t.fs.ReadFile(t.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return zero, withContext(ErrNotFound, key, name)
		}

		return zero, withContext(err, key, name)
	}

	value, decodeErr := t.codec.Decode(data)
	if decodeErr != nil {
		return zero, withContext(fmt.Errorf("%w: %w", ErrDecode, decodeErr), key, name)
	}

	return value, nil
}

// Put writes value under key, creating the entry if absent and fully
// replacing its content if present. The filesystem does not distinguish
// insert from update without a racy existence check, so neither does
// Put; use [Table.Insert] for the strict variant.
//
// The write is atomic (temp file + rename), so a human reading the file
// mid-write sees either the old content or the new, never a torn mix.
func (t *Table[V]) Put(key string, value V) error {
	if t.readOnly {
		return withContext(ErrReadOnly, key, "")
	}

	name, err := t.nameFor(key)
	if err != nil {
		return err
	}

	data, err := t.codec.Encode(value)
	if err != nil {
		return withContext(fmt.Errorf("encode: %w", err), key, name)
	}

	writeErr := t.fs.WriteFileAtomic(t.path(name), data, filePerm)
	if writeErr != nil {
		return withContext(writeErr, key, name)
	}

	return nil
}

// Insert writes value under key only if no entry exists yet, failing
// with [ErrExists] otherwise. The existence check is the O_EXCL create
// itself, so there is no check-then-act window.
func (t *Table[V]) Insert(key string, value V) error {
	if t.readOnly {
		return withContext(ErrReadOnly, key, "")
	}

	name, err := t.nameFor(key)
	if err != nil {
		return err
	}

	data, err := t.codec.Encode(value)
	if err != nil {
		return withContext(fmt.Errorf("encode: %w", err), key, name)
	}

	path := t.path(name)

	file, err := t.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		if os.IsExist(err) {
			return withContext(ErrExists, key, name)
		}

		return withContext(err, key, name)
	}

	_, writeErr := file.Write(data)
	if writeErr == nil {
		writeErr = file.Sync()
	}

	closeErr := file.Close()

	if writeErr != nil {
		// Don't leave a torn entry behind.
		_ = t.fs.Remove(path)

		return withContext(errors.Join(writeErr, closeErr), key, name)
	}

	if closeErr != nil {
		return withContext(closeErr, key, name)
	}

	return nil
}

// Delete removes the entry stored under key.
//
// Fails with [ErrNotFound] when the file does not exist, including on a
// second Delete of the same key; callers wanting idempotent delete
// treat [ErrNotFound] as success.
func (t *Table[V]) Delete(key string) error {
	if t.readOnly {
		return withContext(ErrReadOnly, key, "")
	}

	name, err := t.nameFor(key)
	if err != nil {
		return err
	}

	removeErr := t.fs.Remove(t.path(name))
	if removeErr != nil {
		if os.IsNotExist(removeErr) {
			return withContext(ErrNotFound, key, name)
		}

		return withContext(removeErr, key, name)
	}

	return nil
}

// Contains reports whether a regular file is stored under key, without
// decoding it.
//
// Contains never fails: an invalid key or an IO error on the existence
// check degrades to false, because "cannot prove existence" and "does
// not exist" are not distinguished here. A known imprecision, not a
// defect; callers that need the error use [Table.Get].
func (t *Table[V]) Contains(key string) bool {
	name, err := t.nameFor(key)
	if err != nil {
		return false
	}

	info, statErr := t.fs.Stat(t.path(name))

	return statErr == nil && info.Mode().IsRegular()
}

// Rename moves the entry stored under oldKey to newKey in one rename
// call, without decoding the content.
//
// Fails with [ErrNotFound] when oldKey has no entry and with [ErrExists]
// when newKey already has one. The target check runs before the rename,
// so an external edit can slip between them; the rename then overwrites,
// which matches the filesystem's own semantics.
func (t *Table[V]) Rename(oldKey, newKey string) error {
	if t.readOnly {
		return withContext(ErrReadOnly, oldKey, "")
	}

	oldName, err := t.nameFor(oldKey)
	if err != nil {
		return err
	}

	newName, err := t.nameFor(newKey)
	if err != nil {
		return err
	}

	taken, _ := t.fs.Exists(t.path(newName))
	if taken {
		return withContext(ErrExists, newKey, newName)
	}

	renameErr := t.fs.Rename(t.path(oldName), t.path(newName))
	if renameErr != nil {
		if os.IsNotExist(renameErr) {
			return withContext(ErrNotFound, oldKey, oldName)
		}

		return withContext(renameErr, oldKey, oldName)
	}

	return nil
}

// SoftDelete removes the entry from the table without destroying its
// content: the file is renamed to carry [SoftDeleteSuffix], which no
// sane key policy claims, so the bytes stay on disk for the human to
// inspect or restore while the key reads as absent.
//
// Fails with [ErrNotFound] when the entry does not exist.
func (t *Table[V]) SoftDelete(key string) error {
	if t.readOnly {
		return withContext(ErrReadOnly, key, "")
	}

	name, err := t.nameFor(key)
	if err != nil {
		return err
	}

	target := name + SoftDeleteSuffix

	if _, claimed := t.keys.NameToKey(target); claimed {
		return withContext(fmt.Errorf("key policy still claims soft-deleted name %q", target), key, name)
	}

	renameErr := t.fs.Rename(t.path(name), t.path(target))
	if renameErr != nil {
		if os.IsNotExist(renameErr) {
			return withContext(ErrNotFound, key, name)
		}

		return withContext(renameErr, key, name)
	}

	return nil
}

// nameFor validates key and returns its file name.
//
// Beyond the policy's own validation, the key must round-trip through
// KeyToName/NameToKey unchanged. That closes the door on policies that
// would write a file they never list again.
func (t *Table[V]) nameFor(key string) (string, error) {
	err := t.keys.ValidateKey(key)
	if err != nil {
		return "", withContext(err, key, "")
	}

	name := t.keys.KeyToName(key)

	back, ok := t.keys.NameToKey(name)
	if !ok || back != key {
		return "", withContext(fmt.Errorf("%w: key does not round-trip through file name %q", ErrInvalidKey, name), key, name)
	}

	return name, nil
}

func (t *Table[V]) path(name string) string {
	return filepath.Join(t.dir, name)
}
