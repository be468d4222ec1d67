// internal/app/content/sync.go
package content

import (
	"github.com/dalemusser/folio/internal/app/system/docstore"
	"github.com/dalemusser/folio/internal/app/system/identity"
	"github.com/dalemusser/folio/internal/domain/models"
	"go.uber.org/zap"
)

type handler struct {
	collection string
	onSnapshot func(docstore.Snapshot)
}

func (s *Store) handlers() []handler {
	return []handler{
		{models.CollectionProjects, collectionHandler(s, models.CollectionProjects, s.defaults.Projects,
			func(st *State, v []models.Project) {
				st.Projects = v
				st.ProjectsLoaded = true
			})},
		{models.CollectionSkills, collectionHandler(s, models.CollectionSkills, s.defaults.Skills,
			func(st *State, v []models.Skill) { st.Skills = v })},
		{models.CollectionExperiences, collectionHandler(s, models.CollectionExperiences, s.defaults.Experiences,
			func(st *State, v []models.Experience) { st.Experiences = v })},
		{models.CollectionCertificates, collectionHandler(s, models.CollectionCertificates, s.defaults.Certificates,
			func(st *State, v []models.Certificate) { st.Certificates = v })},
	}
}

// collectionHandler returns a snapshot callback that replaces one slice of
// the state wholesale and seeds defaults on a server-confirmed empty result.
func collectionHandler[T models.Entity](s *Store, collection string, defaults []T, apply func(*State, []T)) func(docstore.Snapshot) {
	return func(snap docstore.Snapshot) {
		items := decodeAll[T](s.log, collection, snap.Docs)

		s.mu.Lock()
		apply(&s.state, items)
		seed := len(snap.Docs) == 0 && snap.FromServer && s.claimSeed(collection)
		s.mu.Unlock()

		if seed {
			writes := make([]docstore.Write, 0, len(defaults))
			for _, d := range defaults {
				writes = append(writes, docstore.SetWrite(collection, d.EntityID(), d))
			}
			go s.runSeed(collection, writes)
		}
		s.notify()
	}
}

func (s *Store) onSiteConfig(snap docstore.DocSnapshot) {
	var (
		cfg     models.SiteConfig
		decoded bool
	)
	if snap.Exists {
		if err := snap.Doc.Decode(&cfg); err != nil {
			s.log.Warn("site config could not be decoded", zap.Error(err))
		} else {
			decoded = true
		}
	}

	s.mu.Lock()
	if decoded {
		s.state.SiteConfig = cfg
	}
	s.state.ConfigLoaded = true
	seed := !snap.Exists && snap.FromServer && s.claimSeed(models.CollectionConfig)
	s.mu.Unlock()

	if seed {
		go s.runSeed(models.CollectionConfig, []docstore.Write{
			docstore.SetWrite(models.CollectionConfig, models.SiteConfigDocID, s.defaults.SiteConfig),
		})
	}
	s.notify()
}

func (s *Store) onError(collection string) func(error) {
	return func(err error) {
		s.log.Warn("content subscription error",
			zap.String("collection", collection), zap.Error(err))

		s.mu.Lock()
		switch collection {
		case models.CollectionConfig:
			s.state.ConfigLoaded = true
		case models.CollectionProjects:
			s.state.ProjectsLoaded = true
		}
		s.mu.Unlock()
		s.notify()
	}
}

func (s *Store) onAuth(a *identity.Admin) {
	s.mu.Lock()
	s.state.IsAdminLoggedIn = a != nil
	s.state.AuthInitialized = true
	s.mu.Unlock()
	s.notify()
}

// claimSeed reports whether the caller should seed collection, marking it
// seeded. s.mu must be held. On success it registers the seed with s.seeds.
//
// The claim lasts for the life of the Store: a collection that is emptied
// after it was first seeded, for example by deleting every project, stays
// empty until the process restarts or ResetToDefaults runs.
func (s *Store) claimSeed(collection string) bool {
	if s.closed || s.seeded[collection] {
		return false
	}
	s.seeded[collection] = true
	s.seeds.Add(1)
	return true
}

// runSeed writes each default document individually. Failures are logged
// and the remaining writes still go out.
func (s *Store) runSeed(collection string, writes []docstore.Write) {
	defer s.seeds.Done()

	s.log.Info("seeding default content",
		zap.String("collection", collection), zap.Int("documents", len(writes)))
	failed := 0
	for _, w := range writes {
		if err := s.remote.Set(s.seedCtx, w.Collection, w.ID, w.Data, false); err != nil {
			failed++
			s.log.Error("seed write failed",
				zap.String("collection", w.Collection), zap.String("id", w.ID), zap.Error(err))
		}
	}
	if failed > 0 {
		s.log.Warn("seeding incomplete",
			zap.String("collection", collection), zap.Int("failed", failed))
	}
}

// decodeAll decodes docs in order, skipping any that do not decode.
func decodeAll[T any](log *zap.Logger, collection string, docs []docstore.Document) []T {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := d.Decode(&v); err != nil {
			log.Warn("skipping undecodable document",
				zap.String("collection", collection), zap.String("id", d.ID), zap.Error(err))
			continue
		}
		out = append(out, v)
	}
	return out
}
