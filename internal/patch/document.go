// Package patch holds the persisted change documents: one JSON object per
// origin scope, keyed by local item id, each value a change record.
package patch

import (
	"bytes"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Document is the change set for one origin scope. Records are kept as raw
// JSON so a malformed record fails on its own instead of sinking the file.
type Document struct {
	Origin  string
	entries *orderedmap.OrderedMap[string, json.RawMessage]
}

// NewDocument returns an empty document for origin.
func NewDocument(origin string) *Document {
	return &Document{Origin: origin, entries: orderedmap.New[string, json.RawMessage]()}
}

// ParseDocument decodes a document. The top level must be an object; the
// records inside are only decoded on access.
func ParseDocument(origin string, data []byte) (*Document, error) {
	d := NewDocument(origin)
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, fmt.Errorf("document %s: top level is not an object", origin)
	}
	if err := d.entries.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("document %s: %w", origin, err)
	}
	return d, nil
}

// Len returns the number of records.
func (d *Document) Len() int { return d.entries.Len() }

// Keys returns the record keys in document order.
func (d *Document) Keys() []string {
	keys := make([]string, 0, d.entries.Len())
	for p := d.entries.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

// Raw returns the undecoded record stored under key.
func (d *Document) Raw(key string) (json.RawMessage, bool) {
	return d.entries.Get(key)
}

// Record decodes the record stored under key.
func (d *Document) Record(key string) (*Record, error) {
	raw, ok := d.entries.Get(key)
	if !ok {
		return nil, fmt.Errorf("record %s: not present", key)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("record %s: %w", key, err)
	}
	return &rec, nil
}

// Upsert stores rec under key. Without merge the record replaces whatever
// was there; with merge only the fields present in rec are written into the
// existing record.
func (d *Document) Upsert(key string, rec *Record, merge bool) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", key, err)
	}
	if merge {
		if old, ok := d.entries.Get(key); ok {
			raw = Merge(old, raw)
		}
	}
	d.entries.Set(key, raw)
	return nil
}

// Absorb upserts every record of update into d, in update's order.
func (d *Document) Absorb(update *Document, merge bool) {
	for p := update.entries.Oldest(); p != nil; p = p.Next() {
		raw := p.Value
		if merge {
			if old, ok := d.entries.Get(p.Key); ok {
				raw = Merge(old, raw)
			}
		}
		d.entries.Set(p.Key, raw)
	}
}

// Delete removes the record under key.
func (d *Document) Delete(key string) bool {
	_, ok := d.entries.Delete(key)
	return ok
}

// Merge writes every field of update into existing, keeping the fields
// update does not mention. A malformed existing record is replaced.
func Merge(existing, update json.RawMessage) json.RawMessage {
	base := orderedmap.New[string, json.RawMessage]()
	if err := base.UnmarshalJSON(existing); err != nil || !isObject(existing) {
		return update
	}
	fields := orderedmap.New[string, json.RawMessage]()
	if err := fields.UnmarshalJSON(update); err != nil {
		return update
	}
	for p := fields.Oldest(); p != nil; p = p.Next() {
		base.Set(p.Key, p.Value)
	}
	out, err := base.MarshalJSON()
	if err != nil {
		return update
	}
	return out
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

// MarshalJSON emits the records in document order.
func (d *Document) MarshalJSON() ([]byte, error) {
	return d.entries.MarshalJSON()
}

// Encode renders the document tab-indented for diffable files.
func (d *Document) Encode() ([]byte, error) {
	out, err := json.MarshalIndent(d, "", "\t")
	if err != nil {
		return nil, fmt.Errorf("encode document %s: %w", d.Origin, err)
	}
	return append(out, '\n'), nil
}
