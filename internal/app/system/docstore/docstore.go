// Package docstore is a real-time document store: named collections of
// documents keyed by string id, with snapshot subscriptions that redeliver
// the full result set whenever it changes.
//
// Subscribers receive whole snapshots, never diffs. Each snapshot says
// whether it was read from the server or served from a local cache, so a
// consumer can tell "confirmed empty" apart from "nothing cached yet".
package docstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

var (
	// ErrNotFound is returned when a single document read finds nothing.
	ErrNotFound = errors.New("docstore: document not found")

	// ErrClosed is returned by operations on a store after Close.
	ErrClosed = errors.New("docstore: store closed")
)

// Fields is a partial document used for merge writes.
type Fields = bson.M

// Document is one stored document. Raw always includes the _id field.
type Document struct {
	ID  string
	Raw bson.Raw
}

// Decode unmarshals the document into v. Fields v does not declare are ignored.
func (d Document) Decode(v any) error {
	if err := bson.Unmarshal(d.Raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", d.ID, err)
	}
	return nil
}

// NewDocument encodes v as a document with the given id. Any _id in v is
// replaced by id.
func NewDocument(id string, v any) (Document, error) {
	d, err := toD(v)
	if err != nil {
		return Document{}, err
	}
	d = append(bson.D{{Key: "_id", Value: id}}, d...)
	raw, err := bson.Marshal(d)
	if err != nil {
		return Document{}, fmt.Errorf("encode %s: %w", id, err)
	}
	return Document{ID: id, Raw: raw}, nil
}

// Snapshot is the complete contents of a collection at one point in time.
type Snapshot struct {
	Docs       []Document
	FromServer bool
}

// DocSnapshot is the state of a single document at one point in time.
type DocSnapshot struct {
	Doc        Document
	Exists     bool
	FromServer bool
}

// Subscription is a live snapshot listener.
type Subscription interface {
	// Close stops delivery and waits for any in-progress callback to return.
	// It must not be called from inside that subscription's own callback.
	Close()
}

// WriteKind selects how a Write is applied.
type WriteKind int

const (
	// WriteSet replaces the whole document, creating it if missing.
	WriteSet WriteKind = iota
	// WriteMerge sets only the given top-level fields, creating the document if missing.
	WriteMerge
	// WriteDelete removes the document. Deleting a missing document is not an error.
	WriteDelete
)

func (k WriteKind) String() string {
	switch k {
	case WriteSet:
		return "set"
	case WriteMerge:
		return "merge"
	case WriteDelete:
		return "delete"
	}
	return fmt.Sprintf("WriteKind(%d)", int(k))
}

// Write is one operation in a Batch.
type Write struct {
	Kind       WriteKind
	Collection string
	ID         string
	Data       any // struct or Fields; unused for deletes
}

// SetWrite returns a full-document write.
func SetWrite(collection, id string, data any) Write {
	return Write{Kind: WriteSet, Collection: collection, ID: id, Data: data}
}

// MergeWrite returns a partial write of the given fields.
func MergeWrite(collection, id string, fields Fields) Write {
	return Write{Kind: WriteMerge, Collection: collection, ID: id, Data: fields}
}

// DeleteWrite returns a delete.
func DeleteWrite(collection, id string) Write {
	return Write{Kind: WriteDelete, Collection: collection, ID: id}
}

// Store is the document store used by the content store.
type Store interface {
	// SubscribeCollection delivers a Snapshot of the collection now and
	// after every change. Callbacks for one subscription never overlap.
	SubscribeCollection(ctx context.Context, collection string, onSnapshot func(Snapshot), onError func(error)) (Subscription, error)

	// SubscribeDocument is SubscribeCollection for a single document.
	SubscribeDocument(ctx context.Context, collection, id string, onSnapshot func(DocSnapshot), onError func(error)) (Subscription, error)

	// Set writes data to collection/id. With merge, only the fields present
	// in data are written and the rest of the document is left alone.
	Set(ctx context.Context, collection, id string, data any, merge bool) error

	// Delete removes collection/id.
	Delete(ctx context.Context, collection, id string) error

	// Batch applies writes in order, atomically where the backend supports it.
	Batch(ctx context.Context, writes []Write) error
}

// Cache persists the last server snapshot of each subscription so a restart
// can serve content before the server answers.
type Cache interface {
	Load(ctx context.Context, key string) (docs []Document, ok bool, err error)
	Save(ctx context.Context, key string, docs []Document) error
}

// toD encodes v as an ordered document, dropping any _id field.
func toD(v any) (bson.D, error) {
	if v == nil {
		return bson.D{}, nil
	}
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var d bson.D
	if err := bson.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	out := d[:0]
	for _, e := range d {
		if e.Key != "_id" {
			out = append(out, e)
		}
	}
	return out, nil
}

// idString renders a document key as a string. Keys written by this package
// are strings; ObjectIDs from external writers are rendered as hex.
func idString(raw bson.Raw) string {
	v, err := raw.LookupErr("_id")
	if err != nil {
		return ""
	}
	if s, ok := v.StringValueOK(); ok {
		return s
	}
	if oid, ok := v.ObjectIDOK(); ok {
		return oid.Hex()
	}
	return v.String()
}
