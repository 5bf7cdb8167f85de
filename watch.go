package dirtab

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Op classifies a [Event].
type Op uint8

const (
	// OpPut means the entry was created or its content changed.
	OpPut Op = iota + 1

	// OpDelete means the entry was removed or renamed away.
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpPut:
		return "put"
	case OpDelete:
		return "delete"
	default:
		return fmt.Sprintf("op(%d)", uint8(o))
	}
}

// Event reports one observed change to an entry.
type Event struct {
	Key string
	Op  Op
}

// Watch streams changes to the table's entries, whether made through
// this table, another process, or a human with a text editor.
//
// File events are filtered through the key policy, so editor temp files
// and other foreign names never surface. An atomic save (temp file +
// rename, which [Table.Put] and most editors use) arrives as a single
// OpPut for the final name.
//
// The channel is closed when ctx is done or the underlying watcher
// fails; a caller that needs to survive watcher failure calls Watch
// again. Events are best-effort notifications: by the time a caller
// reacts, [Table.Get] may already see a newer state, which is the same
// race every operation on this table lives with.
func (t *Table[V]) Watch(ctx context.Context) (<-chan Event, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch table dir: %w", err)
	}

	addErr := watcher.Add(t.dir)
	if addErr != nil {
		_ = watcher.Close()

		return nil, fmt.Errorf("watch table dir: %w", addErr)
	}

	events := make(chan Event)

	go func() {
		defer close(events)
		defer func() { _ = watcher.Close() }()

		for {
			select {
			case <-ctx.Done():
				return
			case notif, ok := <-watcher.Events:
				if !ok {
					return
				}

				event, relevant := t.translate(notif)
				if !relevant {
					continue
				}

				select {
				case events <- event:
				case <-ctx.Done():
					return
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}

				// A failing watcher cannot promise completeness;
				// ending the stream is more honest than gaps.
				return
			}
		}
	}()

	return events, nil
}

// translate maps a filesystem notification to a table event, dropping
// notifications for names the key policy does not claim.
func (t *Table[V]) translate(notif fsnotify.Event) (Event, bool) {
	key, ok := t.keys.NameToKey(filepath.Base(notif.Name))
	if !ok {
		return Event{}, false
	}

	switch {
	case notif.Op.Has(fsnotify.Create) || notif.Op.Has(fsnotify.Write):
		return Event{Key: key, Op: OpPut}, true
	case notif.Op.Has(fsnotify.Remove) || notif.Op.Has(fsnotify.Rename):
		// Rename fires for the old name; the new name, if still an
		// entry, arrives as its own Create.
		return Event{Key: key, Op: OpDelete}, true
	default:
		return Event{}, false
	}
}
