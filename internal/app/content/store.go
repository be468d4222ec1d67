// Package content keeps an in-memory projection of the site's content in
// sync with the document store.
//
// The Store subscribes to the site configuration document and to the four
// entity collections. Each subscription callback is the only writer of its
// slice of State: mutations go to the document store and come back through
// the subscription. When a collection is confirmed empty by the server the
// Store writes the default content for it, once per Store lifetime.
package content

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dalemusser/folio/internal/app/system/docstore"
	"github.com/dalemusser/folio/internal/app/system/identity"
	"github.com/dalemusser/folio/internal/app/system/seeding"
	"github.com/dalemusser/folio/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrClosed is returned by Initialize after Close.
var ErrClosed = errors.New("content: store closed")

// State is the content the site renders, plus the flags that tell "still
// loading" apart from "confirmed empty".
type State struct {
	SiteConfig   models.SiteConfig    `json:"siteConfig"`
	Projects     []models.Project     `json:"projects"`
	Skills       []models.Skill       `json:"skills"`
	Experiences  []models.Experience  `json:"experiences"`
	Certificates []models.Certificate `json:"certificates"`

	IsAdminLoggedIn bool `json:"isAdminLoggedIn"`

	// ConfigLoaded and ProjectsLoaded become true on the first snapshot or
	// error for their subscription and never go back.
	ConfigLoaded   bool `json:"configLoaded"`
	ProjectsLoaded bool `json:"projectsLoaded"`
	// AuthInitialized becomes true on the first auth-state callback.
	AuthInitialized bool `json:"authInitialized"`
}

// Clone returns a deep copy of st.
func (st State) Clone() State {
	c := seeding.Content{
		SiteConfig:   st.SiteConfig,
		Projects:     st.Projects,
		Skills:       st.Skills,
		Experiences:  st.Experiences,
		Certificates: st.Certificates,
	}.Clone()
	out := st
	out.SiteConfig = c.SiteConfig
	out.Projects = c.Projects
	out.Skills = c.Skills
	out.Experiences = c.Experiences
	out.Certificates = c.Certificates
	return out
}

// Store is the content store. Create it with New and start it with Initialize.
type Store struct {
	remote   docstore.Store
	idp      identity.Provider
	defaults seeding.Content
	log      *zap.Logger

	mu     sync.RWMutex
	state  State
	seeded map[string]bool
	closed bool
	seeds  sync.WaitGroup

	seedCtx    context.Context
	seedCancel context.CancelFunc

	lifeMu      sync.Mutex
	initialized bool
	subs        []docstore.Subscription
	unsubAuth   func()

	watchMu  sync.Mutex
	watchers map[int]func(State)
	nextW    int
}

// New returns a store over remote and idp that seeds empty collections with
// defaults. The store does nothing until Initialize is called.
func New(remote docstore.Store, idp identity.Provider, defaults seeding.Content, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Store{
		remote:   remote,
		idp:      idp,
		defaults: defaults.Clone(),
		log:      logger,
		state: State{
			SiteConfig:   models.EmptySiteConfig(),
			Projects:     []models.Project{},
			Skills:       []models.Skill{},
			Experiences:  []models.Experience{},
			Certificates: []models.Certificate{},
		},
		seeded:     map[string]bool{},
		seedCtx:    ctx,
		seedCancel: cancel,
		watchers:   map[int]func(State){},
	}
}

// Initialize attaches the auth-state subscription and the five content
// subscriptions. Calling it again after a successful call does nothing. If
// any subscription fails, the ones already attached are closed and the
// error is returned; Initialize may then be retried.
func (s *Store) Initialize(ctx context.Context) error {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()

	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	if s.initialized {
		return nil
	}

	unsubAuth := s.idp.OnAuthStateChange(s.onAuth)

	var (
		subsMu sync.Mutex
		subs   []docstore.Subscription
	)
	keep := func(sub docstore.Subscription) {
		subsMu.Lock()
		subs = append(subs, sub)
		subsMu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sub, err := s.remote.SubscribeDocument(gctx, models.CollectionConfig, models.SiteConfigDocID,
			s.onSiteConfig, s.onError(models.CollectionConfig))
		if err != nil {
			return fmt.Errorf("subscribe %s/%s: %w", models.CollectionConfig, models.SiteConfigDocID, err)
		}
		keep(sub)
		return nil
	})
	for _, h := range s.handlers() {
		h := h
		g.Go(func() error {
			sub, err := s.remote.SubscribeCollection(gctx, h.collection, h.onSnapshot, s.onError(h.collection))
			if err != nil {
				return fmt.Errorf("subscribe %s: %w", h.collection, err)
			}
			keep(sub)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, sub := range subs {
			sub.Close()
		}
		unsubAuth()
		s.log.Error("content store failed to subscribe", zap.Error(err))
		return err
	}

	s.subs = subs
	s.unsubAuth = unsubAuth
	s.initialized = true
	s.log.Info("content store subscribed", zap.Int("subscriptions", len(subs)))
	return nil
}

// Close detaches every subscription and waits for in-flight seed writes. If
// ctx ends first, the seed writes are cancelled and ctx's error is returned.
func (s *Store) Close(ctx context.Context) error {
	s.lifeMu.Lock()
	subs, unsubAuth := s.subs, s.unsubAuth
	s.subs, s.unsubAuth = nil, nil
	s.initialized = false
	s.lifeMu.Unlock()

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	// Subscription.Close waits for running callbacks, which take s.mu.
	for _, sub := range subs {
		sub.Close()
	}
	if unsubAuth != nil {
		unsubAuth()
	}

	done := make(chan struct{})
	go func() {
		s.seeds.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.seedCancel()
		return nil
	case <-ctx.Done():
		s.seedCancel()
		return ctx.Err()
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Project returns the project with the given id from the current state.
func (s *Store) Project(id string) (models.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.state.Projects {
		if p.ID == id {
			return p.Clone(), true
		}
	}
	return models.Project{}, false
}

// Watch calls fn with a fresh State after every change until the returned
// function is called. fn runs on the goroutine that delivered the change and
// must not block.
func (s *Store) Watch(fn func(State)) func() {
	s.watchMu.Lock()
	id := s.nextW
	s.nextW++
	s.watchers[id] = fn
	s.watchMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.watchMu.Lock()
			delete(s.watchers, id)
			s.watchMu.Unlock()
		})
	}
}

func (s *Store) notify() {
	s.watchMu.Lock()
	fns := make([]func(State), 0, len(s.watchers))
	for _, fn := range s.watchers {
		fns = append(fns, fn)
	}
	s.watchMu.Unlock()
	if len(fns) == 0 {
		return
	}
	st := s.Snapshot()
	for _, fn := range fns {
		fn(st)
	}
}
