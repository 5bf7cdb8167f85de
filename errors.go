package dirtab

import (
	"errors"
	"strings"
)

// Sentinel errors returned by table operations. Filesystem failures that
// have no entry-level meaning (permission denied, disk full, directory
// vanished) pass through wrapped, so checks like
// errors.Is(err, fs.ErrNotExist) on the underlying os error keep working.
var (
	// ErrInvalidKey indicates a key rejected by the table's [KeyPolicy].
	ErrInvalidKey = errors.New("invalid key")

	// ErrNotFound indicates an operation referencing an absent entry.
	ErrNotFound = errors.New("entry not found")

	// ErrExists indicates a strict insert or rename onto an existing entry.
	ErrExists = errors.New("entry already exists")

	// ErrDecode indicates the codec rejected an entry's file content.
	ErrDecode = errors.New("cannot decode entry")

	// ErrBuild indicates [Open] could not produce a table from its config.
	ErrBuild = errors.New("cannot open table")

	// ErrReadOnly indicates a mutating operation on a read-only table.
	ErrReadOnly = errors.New("table is read-only")

	// ErrForeignName marks a skipped file whose name the key policy
	// does not claim. Only ever passed to [Config.OnSkip].
	ErrForeignName = errors.New("file name not claimed by key policy")

	// ErrDuplicateKey marks a skipped file whose name maps to a key
	// already taken by an earlier file in listing order. Only ever
	// passed to [Config.OnSkip].
	ErrDuplicateKey = errors.New("duplicate key")
)

// Error is the uniform error type returned by all table operations.
//
// Provides structured entry context (Key, Path) appended to error messages.
// The underlying error message appears first, followed by entry context:
//
//	invalid JSON: unexpected end of input (key=alpha path=alpha.json)
//
// Use [errors.As] to extract structured fields:
//
//	var tErr *dirtab.Error
//	if errors.As(err, &tErr) {
//	    fmt.Printf("failed for entry %s at %s\n", tErr.Key, tErr.Path)
//	}
//
// Use [errors.Is] to check for sentinel errors:
//
//	if errors.Is(err, dirtab.ErrNotFound) { ... }
type Error struct {
	// Key is the entry key the operation was addressing. May be the
	// requested key for lookups that failed.
	Key string

	// Path is the entry's file name inside the table directory. This is
	// NOT the absolute filesystem path - that appears in the underlying
	// error (e.g., from os.PathError).
	Path string

	// Err is the underlying cause.
	Err error
}

// Error formats as "<cause> (key=X path=Y)".
func (e *Error) Error() string {
	if e == nil {
		return ""
	}

	cause := e.cause()
	suffix := e.suffix()

	if suffix == "" {
		return cause
	}

	if cause == "" {
		return suffix
	}

	return cause + " " + suffix
}

// String implements fmt.Stringer.
func (e *Error) String() string {
	return e.Error()
}

// Unwrap returns the underlying error for use with [errors.Is] and [errors.As].
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.Err
}

// suffix builds the "(key=X path=Y)" portion.
func (e *Error) suffix() string {
	var parts []string

	if e.Key != "" {
		parts = append(parts, "key="+e.Key)
	}

	if e.Path != "" {
		parts = append(parts, "path="+e.Path)
	}

	if len(parts) == 0 {
		return ""
	}

	return "(" + strings.Join(parts, " ") + ")"
}

// cause returns the underlying error message.
func (e *Error) cause() string {
	if e.Err == nil {
		return ""
	}

	return e.Err.Error()
}

// withContext attaches entry context at API boundaries and returns *Error.
// If err is already *Error, missing fields are filled in-place (existing values preserved).
func withContext(err error, key string, path string) error {
	if err == nil {
		return nil
	}

	existing := &Error{}
	if errors.As(err, &existing) {
		if existing.Key == "" && key != "" {
			existing.Key = key
		}

		if existing.Path == "" && path != "" {
			existing.Path = path
		}

		return existing
	}

	return &Error{Key: key, Path: path, Err: err}
}
