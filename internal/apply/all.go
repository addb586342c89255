package apply

import (
	"go.uber.org/zap"

	"github.com/l1jgo/itemforge/internal/core/event"
	"github.com/l1jgo/itemforge/internal/patch"
)

// DocumentResult is the outcome of one document in a batch.
type DocumentResult struct {
	Scope  patch.Scope
	Origin string
	Result
}

// Summary is the outcome of ApplyAll.
type Summary struct {
	Documents []DocumentResult
	Total     Result
	// Invalid counts document files that could not be read or parsed.
	Invalid int
}

// ApplyAll replays every stored document: shared ones first, then local
// ones, so local edits win. Each scope uses its own permissions.
func (a *Applier) ApplyAll(store *patch.Store) *Summary {
	sum := &Summary{}
	scopes := []struct {
		scope patch.Scope
		perms Permissions
	}{
		{patch.ScopeShared, a.cfg.Shared},
		{patch.ScopeLocal, a.cfg.Local},
	}
	for _, sc := range scopes {
		docs, invalid, err := store.LoadAll(sc.scope)
		if err != nil {
			a.log.Warn("patch scope unreadable", zap.String("scope", string(sc.scope)), zap.Error(err))
			event.Emit(a.bus, event.DocumentInvalid{Path: string(sc.scope), Err: err})
			sum.Invalid++
			continue
		}
		for _, bad := range invalid {
			event.Emit(a.bus, event.DocumentInvalid{Path: bad.Path, Err: bad.Err})
		}
		sum.Invalid += len(invalid)
		for _, doc := range docs {
			res := a.ApplyDocument(sc.scope, doc, sc.perms)
			sum.Documents = append(sum.Documents, DocumentResult{Scope: sc.scope, Origin: doc.Origin, Result: res})
			sum.Total.Applied += res.Applied
			sum.Total.Failed += res.Failed
			sum.Total.Skipped += res.Skipped
		}
	}
	return sum
}
