package docstore

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrUnavailable signals that the remote store cannot be reached. Callers
// recover locally; nothing surfaces this to the user as a blocking error.
var ErrUnavailable = errors.New("remote document store unavailable")

// Document is a raw JSON document.
type Document = json.RawMessage

// Store is the remote document service contract. Paths are scoped per user by
// the caller (e.g. "users/<id>/plan").
type Store interface {
	// Get fetches a document. The boolean reports presence; absence is not
	// an error.
	Get(ctx context.Context, path string) (Document, bool, error)
	// Set writes a document. With merge set, top-level fields of doc are
	// merged into the existing document instead of replacing it wholesale.
	Set(ctx context.Context, path string, doc Document, merge bool) error
	// Watch invokes onChange for every remote change to path until the
	// returned stop function is called.
	Watch(ctx context.Context, path string, onChange func(Document)) (stop func())
}

// Merge applies top-level merge semantics: fields of overlay replace fields
// of base; everything else in base survives.
func Merge(base, overlay Document) (Document, error) {
	baseFields := map[string]json.RawMessage{}
	if len(base) > 0 {
		if err := json.Unmarshal(base, &baseFields); err != nil {
			return nil, err
		}
	}
	overlayFields := map[string]json.RawMessage{}
	if len(overlay) > 0 {
		if err := json.Unmarshal(overlay, &overlayFields); err != nil {
			return nil, err
		}
	}
	for key, value := range overlayFields {
		baseFields[key] = value
	}
	return json.Marshal(baseFields)
}
