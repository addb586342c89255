package event

import "github.com/l1jgo/itemforge/internal/catalog"

// Diagnostics raised by the engines. None of them abort a batch.

// ItemSkipped: a target item was left unmodified during change computation.
type ItemSkipped struct {
	ID     catalog.FormID
	Name   string
	Reason string
}

// SetAmbiguous: set matching kept more than one candidate for a slot.
type SetAmbiguous struct {
	Anchor     catalog.FormID
	Slot       string
	Candidates []catalog.FormID
}

// LootAnnotationFailed: the loot rarity hook failed for an item; its record
// keeps the request's default rarity.
type LootAnnotationFailed struct {
	ID   catalog.FormID
	Name string
	Err  error
}

// RecordFailed: a change record could not be applied.
type RecordFailed struct {
	Scope  string
	Origin string
	Key    string
	Err    error
}

// RecordSkipped: the record's source is not installed. Benign.
type RecordSkipped struct {
	Scope  string
	Origin string
	Key    string
	Source string
}

// DocumentInvalid: a whole patch document was unreadable or malformed.
type DocumentInvalid struct {
	Path string
	Err  error
}

// CriticalError: writes are disabled for the rest of the session.
type CriticalError struct {
	Err error
}
