package dirtab

import (
	"fmt"
	"strings"
)

// SoftDeleteSuffix is appended to an entry's file name by
// [Table.SoftDelete]. Keys ending in it are invalid and the built-in
// policies never claim file names carrying it, so soft-deleted files
// stay in the directory but drop out of the table.
const SoftDeleteSuffix = ".deleted"

// KeyPolicy maps entry keys to file names and back, and decides which
// file names belong to the table at all.
//
// KeyToName and NameToKey must be inverse for every valid key; the table
// enforces the round-trip at each operation boundary so a broken policy
// fails loudly instead of writing a file it can never read back.
type KeyPolicy interface {
	// KeyToName returns the file name storing the given key.
	KeyToName(key string) string

	// NameToKey maps a file name back to its key. ok is false for
	// foreign files (editor droppings, hidden files, wrong extension),
	// which the table then ignores rather than rejects.
	NameToKey(name string) (key string, ok bool)

	// ValidateKey reports whether key may be used at all. A non-nil
	// result wraps [ErrInvalidKey].
	ValidateKey(key string) error
}

// checkKey holds the baseline rules shared by the built-in policies: a
// key is one plain, visible path component that cannot escape the table
// directory or collide with soft-deleted files.
func checkKey(key string) error {
	switch {
	case key == "":
		return fmt.Errorf("%w: key is empty", ErrInvalidKey)
	case key == "." || key == "..":
		return fmt.Errorf("%w: %q is a reserved name", ErrInvalidKey, key)
	case strings.HasPrefix(key, "."):
		return fmt.Errorf("%w: %q is a hidden file name", ErrInvalidKey, key)
	case strings.ContainsAny(key, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidKey, key)
	case strings.ContainsRune(key, 0):
		return fmt.Errorf("%w: key contains a NUL byte", ErrInvalidKey)
	case strings.HasSuffix(key, SoftDeleteSuffix):
		return fmt.Errorf("%w: %q ends with reserved suffix %q", ErrInvalidKey, key, SoftDeleteSuffix)
	}

	return nil
}

// PlainKeys is the default [KeyPolicy]: the key is the file name.
//
// Hidden files (leading dot) and names carrying [SoftDeleteSuffix] are
// treated as foreign, so .gitignore and friends never surface as entries.
type PlainKeys struct{}

func (PlainKeys) KeyToName(key string) string { return key }

func (PlainKeys) NameToKey(name string) (string, bool) {
	if checkKey(name) != nil {
		return "", false
	}

	return name, true
}

func (PlainKeys) ValidateKey(key string) error { return checkKey(key) }

// ExtKeys is a [KeyPolicy] that stores every entry under a fixed file
// extension (including the leading dot): ExtKeys(".json") maps key
// "alpha" to file "alpha.json" and treats any other extension as foreign.
type ExtKeys string

func (e ExtKeys) KeyToName(key string) string { return key + string(e) }

func (e ExtKeys) NameToKey(name string) (string, bool) {
	base, found := strings.CutSuffix(name, string(e))
	if !found || checkKey(base) != nil {
		return "", false
	}

	return base, true
}

func (e ExtKeys) ValidateKey(key string) error { return checkKey(key) }

// Compile-time interface checks.
var (
	_ KeyPolicy = PlainKeys{}
	_ KeyPolicy = ExtKeys("")
)
