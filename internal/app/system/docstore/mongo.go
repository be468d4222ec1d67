// internal/app/system/docstore/mongo.go
package docstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/folio/internal/app/system/tasks"
	"github.com/dalemusser/folio/internal/app/system/txn"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// DefaultPollInterval is used when change streams are unavailable and
// MongoOptions.PollInterval is zero.
const DefaultPollInterval = 2 * time.Second

// MongoOptions configures a Mongo store.
type MongoOptions struct {
	// PollInterval is how often subscriptions re-query when the server does
	// not support change streams (standalone mongod).
	PollInterval time.Duration

	// Cache, if set, receives every server snapshot and supplies the first
	// (FromServer=false) snapshot of each new subscription.
	Cache Cache
}

// Mongo is a Store backed by a MongoDB database. Subscriptions use change
// streams when the deployment supports them and fall back to polling.
type Mongo struct {
	db     *mongo.Database
	log    *zap.Logger
	tx     *txn.Runner
	poller *tasks.Runner
	cache  Cache
	every  time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	subs   map[*mongoSub]struct{}
}

// NewMongo returns a store over db. Call Close to stop all subscriptions.
func NewMongo(db *mongo.Database, logger *zap.Logger, opts MongoOptions) *Mongo {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Mongo{
		db:     db,
		log:    logger,
		tx:     txn.New(db, logger),
		poller: tasks.New(logger),
		cache:  opts.Cache,
		every:  opts.PollInterval,
		ctx:    ctx,
		cancel: cancel,
		subs:   make(map[*mongoSub]struct{}),
	}
}

// SubscribeCollection implements Store.
func (m *Mongo) SubscribeCollection(ctx context.Context, collection string, onSnapshot func(Snapshot), onError func(error)) (Subscription, error) {
	q := query{
		key:        collection,
		collection: collection,
		filter:     bson.D{},
	}
	return m.subscribe(ctx, q, func(docs []Document, fromServer bool) {
		onSnapshot(Snapshot{Docs: docs, FromServer: fromServer})
	}, onError)
}

// SubscribeDocument implements Store.
func (m *Mongo) SubscribeDocument(ctx context.Context, collection, id string, onSnapshot func(DocSnapshot), onError func(error)) (Subscription, error) {
	q := query{
		key:        collection + "/" + id,
		collection: collection,
		filter:     bson.D{{Key: "_id", Value: id}},
		pipeline: mongo.Pipeline{
			{{Key: "$match", Value: bson.D{{Key: "documentKey._id", Value: id}}}},
		},
	}
	return m.subscribe(ctx, q, func(docs []Document, fromServer bool) {
		snap := DocSnapshot{FromServer: fromServer}
		if len(docs) > 0 {
			snap.Doc = docs[0]
			snap.Exists = true
		}
		onSnapshot(snap)
	}, onError)
}

// Get reads a single document.
func (m *Mongo) Get(ctx context.Context, collection, id string) (Document, error) {
	var raw bson.Raw
	err := m.db.Collection(collection).FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return Document{ID: id, Raw: raw}, nil
}

// List reads a whole collection in natural order.
func (m *Mongo) List(ctx context.Context, collection string) ([]Document, error) {
	return m.fetch(ctx, query{collection: collection, filter: bson.D{}})
}

// Set implements Store.
func (m *Mongo) Set(ctx context.Context, collection, id string, data any, merge bool) error {
	if err := m.checkOpen(); err != nil {
		return err
	}
	kind := WriteSet
	if merge {
		kind = WriteMerge
	}
	return m.apply(ctx, Write{Kind: kind, Collection: collection, ID: id, Data: data})
}

// Delete implements Store.
func (m *Mongo) Delete(ctx context.Context, collection, id string) error {
	if err := m.checkOpen(); err != nil {
		return err
	}
	return m.apply(ctx, DeleteWrite(collection, id))
}

// Batch implements Store. Writes run inside one transaction on replica sets
// and sequentially, stopping at the first failure, elsewhere.
func (m *Mongo) Batch(ctx context.Context, writes []Write) error {
	if len(writes) == 0 {
		return nil
	}
	if err := m.checkOpen(); err != nil {
		return err
	}
	err := m.tx.Run(ctx, func(ctx context.Context) error {
		for _, w := range writes {
			if err := m.apply(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("batch of %d writes: %w", len(writes), err)
	}
	return nil
}

// Atomic reports whether Batch still runs inside transactions.
func (m *Mongo) Atomic() bool {
	return m.tx.Atomic()
}

// Close stops every subscription and the poller. It waits for in-flight
// callbacks until ctx is done.
func (m *Mongo) Close(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	subs := make([]*mongoSub, 0, len(m.subs))
	for s := range m.subs {
		subs = append(subs, s)
	}
	m.mu.Unlock()

	m.cancel()
	for _, s := range subs {
		s.Close()
	}
	return m.poller.Stop(ctx)
}

func (m *Mongo) checkOpen() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	return nil
}

func (m *Mongo) apply(ctx context.Context, w Write) error {
	coll := m.db.Collection(w.Collection)
	filter := bson.D{{Key: "_id", Value: w.ID}}

	switch w.Kind {
	case WriteSet:
		doc, err := toD(w.Data)
		if err != nil {
			return fmt.Errorf("set %s/%s: %w", w.Collection, w.ID, err)
		}
		_, err = coll.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("set %s/%s: %w", w.Collection, w.ID, err)
		}
	case WriteMerge:
		doc, err := toD(w.Data)
		if err != nil {
			return fmt.Errorf("merge %s/%s: %w", w.Collection, w.ID, err)
		}
		if len(doc) == 0 {
			return nil
		}
		_, err = coll.UpdateOne(ctx, filter, bson.D{{Key: "$set", Value: doc}}, options.Update().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("merge %s/%s: %w", w.Collection, w.ID, err)
		}
	case WriteDelete:
		if _, err := coll.DeleteOne(ctx, filter); err != nil {
			return fmt.Errorf("delete %s/%s: %w", w.Collection, w.ID, err)
		}
	default:
		return fmt.Errorf("write %s/%s: unknown kind %v", w.Collection, w.ID, w.Kind)
	}
	return nil
}

// query describes what a subscription watches.
type query struct {
	key        string // cache key and log label
	collection string
	filter     bson.D
	pipeline   mongo.Pipeline // change stream filter; nil watches the whole collection
}

func (m *Mongo) fetch(ctx context.Context, q query) ([]Document, error) {
	cur, err := m.db.Collection(q.collection).Find(ctx, q.filter)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", q.key, err)
	}
	defer cur.Close(ctx)

	docs := []Document{}
	for cur.Next(ctx) {
		raw := append(bson.Raw(nil), cur.Current...)
		docs = append(docs, Document{ID: idString(raw), Raw: raw})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("find %s: %w", q.key, err)
	}
	return docs, nil
}

type mongoSub struct {
	m      *Mongo
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func (s *mongoSub) Close() {
	s.once.Do(func() {
		s.cancel()
		<-s.done
		s.m.mu.Lock()
		delete(s.m.subs, s)
		s.m.mu.Unlock()
	})
}

type deliverFunc func(docs []Document, fromServer bool)

func (m *Mongo) subscribe(ctx context.Context, q query, deliver deliverFunc, onError func(error)) (Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if onError == nil {
		onError = func(error) {}
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	subCtx, cancel := context.WithCancel(m.ctx)
	s := &mongoSub{m: m, cancel: cancel, done: make(chan struct{})}
	m.subs[s] = struct{}{}
	m.mu.Unlock()

	go func() {
		defer close(s.done)
		m.run(subCtx, q, deliver, onError)
	}()
	return s, nil
}

// run drives one subscription until ctx is cancelled.
func (m *Mongo) run(ctx context.Context, q query, deliver deliverFunc, onError func(error)) {
	log := m.log.With(zap.String("subscription", q.key))
	w := &watcher{m: m, q: q, deliver: deliver, onError: onError, log: log}

	w.deliverCached(ctx)

	// Open the stream before the initial read so no change falls between them.
	cs, err := m.db.Collection(q.collection).Watch(ctx, q.pipeline)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		if !IsChangeStreamUnsupported(err) {
			w.fail(fmt.Errorf("watch %s: %w", q.key, err))
		}
		log.Info("change streams unavailable, polling", zap.Duration("interval", m.every))
		w.poll(ctx)
		return
	}

	if !w.refresh(ctx) {
		cs.Close(context.Background())
		w.poll(ctx)
		return
	}

	for cs.Next(ctx) {
		w.refresh(ctx)
	}
	err = cs.Err()
	cs.Close(context.Background())
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		w.fail(fmt.Errorf("watch %s: %w", q.key, err))
	}
	log.Warn("change stream ended, polling", zap.Error(err))
	w.poll(ctx)
}

// watcher holds the per-subscription delivery state. It is only touched by
// one goroutine at a time.
type watcher struct {
	m       *Mongo
	q       query
	deliver deliverFunc
	onError func(error)
	log     *zap.Logger

	last    []byte // concatenated raw docs of the last delivery
	hasLast bool
	failing bool
}

func (w *watcher) deliverCached(ctx context.Context) {
	if w.m.cache == nil {
		return
	}
	docs, ok, err := w.m.cache.Load(ctx, w.q.key)
	if err != nil {
		w.log.Warn("snapshot cache load failed", zap.Error(err))
		return
	}
	if ok {
		w.deliver(docs, false)
	}
}

// refresh re-reads the query and delivers it if it differs from the last
// server delivery. It reports whether the read succeeded.
func (w *watcher) refresh(ctx context.Context) bool {
	docs, err := w.m.fetch(ctx, w.q)
	if err != nil {
		if ctx.Err() == nil {
			w.fail(err)
		}
		return false
	}
	w.failing = false

	fp := fingerprint(docs)
	if w.hasLast && bytes.Equal(fp, w.last) {
		return true
	}
	w.last, w.hasLast = fp, true
	w.deliver(docs, true)

	if w.m.cache != nil {
		if err := w.m.cache.Save(ctx, w.q.key, docs); err != nil {
			w.log.Warn("snapshot cache save failed", zap.Error(err))
		}
	}
	return true
}

// fail reports err once per run of consecutive failures.
func (w *watcher) fail(err error) {
	if w.failing {
		return
	}
	w.failing = true
	w.onError(err)
}

func (w *watcher) poll(ctx context.Context) {
	stop := w.m.poller.Go(tasks.Job{
		Name:     "docstore-poll:" + w.q.key,
		Interval: w.m.every,
		Run: func(ctx context.Context) error {
			w.refresh(ctx)
			return nil
		},
	})
	<-ctx.Done()
	stop()
}

func fingerprint(docs []Document) []byte {
	var b bytes.Buffer
	for _, d := range docs {
		b.Write(d.Raw)
	}
	return b.Bytes()
}

// IsChangeStreamUnsupported reports whether err means the deployment cannot
// open change streams (a standalone server, or a backend without them).
func IsChangeStreamUnsupported(err error) bool {
	if err == nil {
		return false
	}
	var se mongo.ServerError
	if errors.As(err, &se) && se.HasErrorCode(40573) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "only supported on replica sets") ||
		strings.Contains(msg, "changestream") && strings.Contains(msg, "not supported")
}
