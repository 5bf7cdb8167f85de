package dirtab

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/calvinalkan/dirtab/internal/fs"
)

// Config provides all settings for opening a table.
type Config[V any] struct {
	// Dir is the directory holding one file per entry.
	//
	// Required. It must exist and be a directory, or be creatable when
	// CreateDir is set. It only has to exist at open time; operations
	// re-validate on use, since a human may remove it at any moment.
	Dir string

	// Codec converts between file bytes and entry values.
	//
	// Required. Use [Raw] for opaque bytes, [JSON] or [YAML] for
	// structured values, or any custom [Codec].
	Codec Codec[V]

	//
	//
	// -----------------------------------------------
	// OPTIONAL SETTINGS (SENSIBLE DEFAULTS PROVIDED)
	// -----------------------------------------------
	//
	//

	// Keys decides which file names are entries and how keys map to
	// file names.
	//
	// Optional. Default: [PlainKeys] (key == file name, hidden files
	// are foreign).
	Keys KeyPolicy

	// CreateDir creates Dir (and missing parents) when it does not
	// exist. Without it, a missing Dir fails [Open] with [ErrBuild].
	//
	// A path that exists but is not a directory fails with [ErrBuild]
	// regardless of CreateDir.
	CreateDir bool

	// ReadOnly makes every mutating operation (Put, Insert, Delete,
	// Rename, SoftDelete) fail with [ErrReadOnly]. Combining ReadOnly
	// with CreateDir is a configuration error: creating a table is
	// itself a write.
	ReadOnly bool

	// OnSkip is invoked once per directory entry excluded from
	// iteration: foreign names (reason wraps [ErrForeignName]) and
	// names whose key an earlier file already took under a lossy
	// policy (reason wraps [ErrDuplicateKey]).
	//
	// Optional. When nil, skipped files are ignored silently. The hook
	// is for diagnostics only; it cannot veto the skip.
	OnSkip func(name string, reason error)

	// FS overrides the filesystem, for tests. Optional, default: the
	// real filesystem.
	FS fs.FS
}

// Open validates cfg and returns a ready-to-use table.
//
// Validation order: config sanity, then stat of Dir, then creation when
// CreateDir allows it. Every config failure wraps [ErrBuild]; filesystem
// failures pass through wrapped. No partial table is ever returned.
func Open[V any](cfg Config[V]) (*Table[V], error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("%w: Config.Dir is required", ErrBuild)
	}

	if cfg.Codec == nil {
		return nil, fmt.Errorf("%w: Config.Codec is required", ErrBuild)
	}

	if cfg.ReadOnly && cfg.CreateDir {
		return nil, fmt.Errorf("%w: CreateDir requires a writable table", ErrBuild)
	}

	keys := cfg.Keys
	if keys == nil {
		keys = PlainKeys{}
	}

	fsys := cfg.FS
	if fsys == nil {
		fsys = fs.NewReal()
	}

	dir := filepath.Clean(cfg.Dir)

	info, err := fsys.Stat(dir)

	switch {
	case err == nil:
		if !info.IsDir() {
			return nil, fmt.Errorf("%w: %s is not a directory", ErrBuild, dir)
		}
	case os.IsNotExist(err):
		if !cfg.CreateDir {
			return nil, fmt.Errorf("%w: %s does not exist", ErrBuild, dir)
		}

		mkdirErr := fsys.MkdirAll(dir, 0o755)
		if mkdirErr != nil {
			return nil, fmt.Errorf("create table dir: %w", mkdirErr)
		}
	default:
		return nil, fmt.Errorf("stat table dir: %w", err)
	}

	return &Table[V]{
		dir:      dir,
		codec:    cfg.Codec,
		keys:     keys,
		readOnly: cfg.ReadOnly,
		onSkip:   cfg.OnSkip,
		fs:       fsys,
	}, nil
}
