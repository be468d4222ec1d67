// Package fakes provides in-memory stand-ins for the document store and the
// identity provider so the content store can be tested without a database.
package fakes

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/folio/internal/app/system/docstore"
	"github.com/dalemusser/folio/internal/domain/models"
)

// DocStore is a docstore.Store that records writes and only delivers
// snapshots when a test emits them. Writes are never echoed back to
// subscribers, which lets tests control exactly what the store observes.
type DocStore struct {
	mu      sync.Mutex
	writes  []docstore.Write
	batches [][]docstore.Write
	subs    map[string][]*sub

	// WriteErr, when set, fails every Set, Delete and Batch.
	WriteErr error
	// SubscribeErr, when set, fails every subscribe call.
	SubscribeErr error
}

// NewDocStore returns an empty fake.
func NewDocStore() *DocStore {
	return &DocStore{subs: map[string][]*sub{}}
}

var _ docstore.Store = (*DocStore)(nil)

type sub struct {
	mu      sync.Mutex
	closed  bool
	onColl  func(docstore.Snapshot)
	onDoc   func(docstore.DocSnapshot)
	onError func(error)
}

func (s *sub) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// live runs fn while holding the subscription lock, unless it was closed.
func (s *sub) live(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		fn()
	}
}

func docKey(collection, id string) string { return collection + "/" + id }

// SubscribeCollection implements docstore.Store.
func (f *DocStore) SubscribeCollection(_ context.Context, collection string, onSnapshot func(docstore.Snapshot), onError func(error)) (docstore.Subscription, error) {
	return f.add(collection, &sub{onColl: onSnapshot, onError: onError})
}

// SubscribeDocument implements docstore.Store.
func (f *DocStore) SubscribeDocument(_ context.Context, collection, id string, onSnapshot func(docstore.DocSnapshot), onError func(error)) (docstore.Subscription, error) {
	return f.add(docKey(collection, id), &sub{onDoc: onSnapshot, onError: onError})
}

func (f *DocStore) add(key string, s *sub) (docstore.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SubscribeErr != nil {
		return nil, f.SubscribeErr
	}
	f.subs[key] = append(f.subs[key], s)
	return s, nil
}

// Set implements docstore.Store.
func (f *DocStore) Set(_ context.Context, collection, id string, data any, merge bool) error {
	kind := docstore.WriteSet
	if merge {
		kind = docstore.WriteMerge
	}
	return f.record(docstore.Write{Kind: kind, Collection: collection, ID: id, Data: data})
}

// Delete implements docstore.Store.
func (f *DocStore) Delete(_ context.Context, collection, id string) error {
	return f.record(docstore.DeleteWrite(collection, id))
}

// Batch implements docstore.Store. A failing batch records nothing.
func (f *DocStore) Batch(_ context.Context, writes []docstore.Write) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteErr != nil {
		return f.WriteErr
	}
	f.batches = append(f.batches, append([]docstore.Write(nil), writes...))
	f.writes = append(f.writes, writes...)
	return nil
}

func (f *DocStore) record(w docstore.Write) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteErr != nil {
		return f.WriteErr
	}
	f.writes = append(f.writes, w)
	return nil
}

// SetWriteErr changes WriteErr safely while writers may be running.
func (f *DocStore) SetWriteErr(err error) {
	f.mu.Lock()
	f.WriteErr = err
	f.mu.Unlock()
}

// Writes returns every accepted write in order, including batched ones.
func (f *DocStore) Writes() []docstore.Write {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]docstore.Write(nil), f.writes...)
}

// WritesTo returns the accepted writes for one collection.
func (f *DocStore) WritesTo(collection string) []docstore.Write {
	var out []docstore.Write
	for _, w := range f.Writes() {
		if w.Collection == collection {
			out = append(out, w)
		}
	}
	return out
}

// Batches returns the accepted batches.
func (f *DocStore) Batches() [][]docstore.Write {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]docstore.Write(nil), f.batches...)
}

// WaitForWrites blocks until at least n writes have been accepted and fails
// the test if that takes longer than a few seconds.
func (f *DocStore) WaitForWrites(t testing.TB, n int) []docstore.Write {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		w := f.Writes()
		if len(w) >= n {
			return w
		}
		if time.Now().After(deadline) {
			t.Fatalf("got %d writes, want at least %d", len(w), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// Subscribers reports how many open subscriptions exist for a collection,
// or for a single document when id is given.
func (f *DocStore) Subscribers(collection string, id ...string) int {
	key := collection
	if len(id) > 0 {
		key = docKey(collection, id[0])
	}
	f.mu.Lock()
	subs := append([]*sub(nil), f.subs[key]...)
	f.mu.Unlock()

	n := 0
	for _, s := range subs {
		s.live(func() { n++ })
	}
	return n
}

func (f *DocStore) subscribers(key string) []*sub {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*sub(nil), f.subs[key]...)
}

// EmitCollection delivers a snapshot of entities to every subscriber of the
// collection, synchronously.
func EmitCollection[T models.Entity](f *DocStore, collection string, fromServer bool, entities ...T) {
	docs := make([]docstore.Document, 0, len(entities))
	for _, e := range entities {
		d, err := docstore.NewDocument(e.EntityID(), e)
		if err != nil {
			panic(fmt.Sprintf("fakes: encode %s: %v", e.EntityID(), err))
		}
		docs = append(docs, d)
	}
	f.EmitDocs(collection, docstore.Snapshot{Docs: docs, FromServer: fromServer})
}

// EmitDocs delivers a prepared snapshot to every subscriber of the collection.
func (f *DocStore) EmitDocs(collection string, snap docstore.Snapshot) {
	for _, s := range f.subscribers(collection) {
		s.live(func() {
			if s.onColl != nil {
				s.onColl(snap)
			}
		})
	}
}

// EmitDocument delivers an existing document to its subscribers.
func (f *DocStore) EmitDocument(collection, id string, v any, fromServer bool) {
	d, err := docstore.NewDocument(id, v)
	if err != nil {
		panic(fmt.Sprintf("fakes: encode %s: %v", id, err))
	}
	f.emitDoc(collection, id, docstore.DocSnapshot{Doc: d, Exists: true, FromServer: fromServer})
}

// EmitMissing tells document subscribers the document does not exist.
func (f *DocStore) EmitMissing(collection, id string, fromServer bool) {
	f.emitDoc(collection, id, docstore.DocSnapshot{FromServer: fromServer})
}

func (f *DocStore) emitDoc(collection, id string, snap docstore.DocSnapshot) {
	for _, s := range f.subscribers(docKey(collection, id)) {
		s.live(func() {
			if s.onDoc != nil {
				s.onDoc(snap)
			}
		})
	}
}

// EmitError delivers err to the subscribers of a collection, or of a single
// document when id is given.
func (f *DocStore) EmitError(err error, collection string, id ...string) {
	key := collection
	if len(id) > 0 {
		key = docKey(collection, id[0])
	}
	for _, s := range f.subscribers(key) {
		s.live(func() {
			if s.onError != nil {
				s.onError(err)
			}
		})
	}
}
