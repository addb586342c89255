package rebalance

import (
	"go.uber.org/zap"

	"github.com/l1jgo/itemforge/internal/core/event"
	"github.com/l1jgo/itemforge/internal/patch"
)

// CommitOptions controls how computed documents reach disk.
type CommitOptions struct {
	Scope  patch.Scope
	Merge  bool
	Backup bool
}

// Commit writes the computed documents through store. A write failure
// latches the store and is raised as a critical event.
func (e *Engine) Commit(store *patch.Store, ch *Changes, opts CommitOptions) error {
	if err := store.Critical(); err != nil {
		return err
	}
	if opts.Backup {
		if _, err := store.Backup(opts.Scope); err != nil {
			// A failed backup leaves the documents untouched; keep going.
			e.log.Warn("patch backup failed", zap.Error(err))
		}
	}
	if err := store.Write(opts.Scope, ch.Documents, opts.Merge); err != nil {
		event.Emit(e.bus, event.CriticalError{Err: err})
		return err
	}
	e.log.Info("changes written",
		zap.String("scope", string(opts.Scope)),
		zap.Int("documents", len(ch.Documents)),
		zap.Bool("merge", opts.Merge))
	return nil
}
