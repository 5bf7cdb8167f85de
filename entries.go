package dirtab

import (
	"fmt"
	"iter"
	"os"
)

// Entry is one item yielded by [Table.Entries].
type Entry[V any] struct {
	// Key identifies the entry.
	Key string

	// Value is the decoded content. Zero when Err is non-nil.
	Value V

	// Err reports a per-entry failure: [ErrDecode] for content the
	// codec rejects, [ErrNotFound] for a file removed between listing
	// and read, or a wrapped IO error. One malformed entry never
	// aborts iteration over the rest.
	Err error
}

// claimed is a directory entry the key policy accepted, in listing order.
type claimed struct {
	key  string
	name string
}

// Entries returns a lazy, single-pass sequence over the directory's
// current contents. The directory is re-listed when iteration starts
// and each entry is read and decoded only when yielded, so two
// iterations of the same table can legitimately see different entries.
//
// Files the key policy does not claim, and later files whose key an
// earlier file already took, are excluded from the sequence (not from
// the filesystem) and reported through [Config.OnSkip]. A failure to
// list the directory itself yields a single Entry with Err set and an
// empty Key.
func (t *Table[V]) Entries() iter.Seq[Entry[V]] {
	return func(yield func(Entry[V]) bool) {
		listed, err := t.scan()
		if err != nil {
			yield(Entry[V]{Err: err})

			return
		}

		for _, ent := range listed {
			if !yield(t.read(ent)) {
				return
			}
		}
	}
}

// Keys returns a lazy, single-pass sequence of the directory's current
// keys without reading or decoding any content. Use it when only
// presence and naming matter. A listing failure ends the sequence
// early; callers that need the error use [Table.Entries] or [Table.Len].
func (t *Table[V]) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		listed, err := t.scan()
		if err != nil {
			return
		}

		for _, ent := range listed {
			if !yield(ent.key) {
				return
			}
		}
	}
}

// Len counts the entries currently in the table without decoding them.
func (t *Table[V]) Len() (int, error) {
	listed, err := t.scan()
	if err != nil {
		return 0, err
	}

	return len(listed), nil
}

// scan lists the directory and keeps the file names the key policy
// claims, in listing order. os.ReadDir sorts by name, so when a lossy
// policy maps two names to one key the tie-break is deterministic:
// first name in sorted order wins, later ones are skipped and reported.
func (t *Table[V]) scan() ([]claimed, error) {
	dirents, err := t.fs.ReadDir(t.dir)
	if err != nil {
		return nil, fmt.Errorf("read table dir: %w", err)
	}

	var out []claimed

	seen := make(map[string]struct{}, len(dirents))

	for _, dirent := range dirents {
		if dirent.IsDir() {
			// Subdirectories are never entries, not even as a diagnostic.
			continue
		}

		name := dirent.Name()

		key, ok := t.keys.NameToKey(name)
		if !ok {
			t.skip(name, ErrForeignName)

			continue
		}

		if _, dup := seen[key]; dup {
			t.skip(name, fmt.Errorf("%w: %q already taken by an earlier file", ErrDuplicateKey, key))

			continue
		}

		seen[key] = struct{}{}

		out = append(out, claimed{key: key, name: name})
	}

	return out, nil
}

// read loads and decodes one claimed entry, folding any failure into
// the returned Entry instead of an error return.
func (t *Table[V]) read(ent claimed) Entry[V] {
	out := Entry[V]{Key: ent.key}

	data, err := t.fs.ReadFile(t.path(ent.name))

	switch {
	case os.IsNotExist(err):
		// Removed between listing and read. Surfaced, not hidden.
		out.Err = withContext(ErrNotFound, ent.key, ent.name)
	case err != nil:
		out.Err = withContext(err, ent.key, ent.name)
	default:
		value, decodeErr := t.codec.Decode(data)
		if decodeErr != nil {
			out.Err = withContext(fmt.Errorf("%w: %w", ErrDecode, decodeErr), ent.key, ent.name)
		} else {
			out.Value = value
		}
	}

	return out
}

func (t *Table[V]) skip(name string, reason error) {
	if t.onSkip != nil {
		t.onSkip(name, reason)
	}
}
