// Package dirtab presents a directory as a logical table: each regular
// file directly inside the directory is one entry, the file name is the
// entry's key, and the file content is the entry's value, converted
// through a pluggable [Codec].
//
// It is intentionally designed for data a human co-edits with ordinary
// tools (git-friendly, human-readable diffs). A [Table] holds no cache,
// no open handles, and no locks; every operation is a fresh filesystem
// interaction, so edits made outside the program are always visible and
// the directory itself is the only persisted state.
package dirtab
