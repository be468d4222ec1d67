// internal/app/content/mutate.go
package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/folio/internal/app/system/docstore"
	"github.com/dalemusser/folio/internal/app/system/identity"
	"github.com/dalemusser/folio/internal/app/system/seeding"
	"github.com/dalemusser/folio/internal/domain/models"
	"go.uber.org/zap"
)

var (
	// ErrMissingID is returned when an entity or order entry has no id.
	ErrMissingID = errors.New("content: id is required")

	// ErrInvalidOrder is returned for an order entry with a non-positive order.
	ErrInvalidOrder = errors.New("content: order must be a positive integer")
)

// OrderEntry assigns a sort position to one entity.
type OrderEntry struct {
	ID    string `json:"id"`
	Order int    `json:"order"`
}

// The entity mutations below only write to the document store and return
// its error. Local state follows once the subscription delivers the change.

// AddProject writes p in full under its id.
func (s *Store) AddProject(ctx context.Context, p models.Project) error {
	return s.add(ctx, models.CollectionProjects, p.ID, p)
}

// UpdateProject merges fields into the project with the given id.
func (s *Store) UpdateProject(ctx context.Context, id string, fields docstore.Fields) error {
	return s.update(ctx, models.CollectionProjects, id, fields)
}

// DeleteProject removes the project with the given id.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	return s.remove(ctx, models.CollectionProjects, id)
}

// AddSkill writes sk in full under its id.
func (s *Store) AddSkill(ctx context.Context, sk models.Skill) error {
	return s.add(ctx, models.CollectionSkills, sk.ID, sk)
}

// UpdateSkill merges fields into the skill with the given id.
func (s *Store) UpdateSkill(ctx context.Context, id string, fields docstore.Fields) error {
	return s.update(ctx, models.CollectionSkills, id, fields)
}

// DeleteSkill removes the skill with the given id.
func (s *Store) DeleteSkill(ctx context.Context, id string) error {
	return s.remove(ctx, models.CollectionSkills, id)
}

// AddExperience writes e in full under its id.
func (s *Store) AddExperience(ctx context.Context, e models.Experience) error {
	return s.add(ctx, models.CollectionExperiences, e.ID, e)
}

// UpdateExperience merges fields into the experience with the given id.
func (s *Store) UpdateExperience(ctx context.Context, id string, fields docstore.Fields) error {
	return s.update(ctx, models.CollectionExperiences, id, fields)
}

// DeleteExperience removes the experience with the given id.
func (s *Store) DeleteExperience(ctx context.Context, id string) error {
	return s.remove(ctx, models.CollectionExperiences, id)
}

// AddCertificate writes c in full under its id.
func (s *Store) AddCertificate(ctx context.Context, c models.Certificate) error {
	return s.add(ctx, models.CollectionCertificates, c.ID, c)
}

// UpdateCertificate merges fields into the certificate with the given id.
func (s *Store) UpdateCertificate(ctx context.Context, id string, fields docstore.Fields) error {
	return s.update(ctx, models.CollectionCertificates, id, fields)
}

// DeleteCertificate removes the certificate with the given id.
func (s *Store) DeleteCertificate(ctx context.Context, id string) error {
	return s.remove(ctx, models.CollectionCertificates, id)
}

// UpdateSiteConfig merges fields into the site configuration document.
func (s *Store) UpdateSiteConfig(ctx context.Context, fields docstore.Fields) error {
	return s.update(ctx, models.CollectionConfig, models.SiteConfigDocID, fields)
}

// add writes the whole entity. Local state changes only when the
// subscription delivers the write.
func (s *Store) add(ctx context.Context, collection, id string, v any) error {
	if id == "" {
		return fmt.Errorf("add to %s: %w", collection, ErrMissingID)
	}
	err := s.remote.Set(ctx, collection, id, v, false)
	return s.logWrite("add", collection, id, err)
}

// update merge-writes only the given fields.
func (s *Store) update(ctx context.Context, collection, id string, fields docstore.Fields) error {
	if id == "" {
		return fmt.Errorf("update %s: %w", collection, ErrMissingID)
	}
	if len(fields) == 0 {
		return nil
	}
	err := s.remote.Set(ctx, collection, id, fields, true)
	return s.logWrite("update", collection, id, err)
}

func (s *Store) remove(ctx context.Context, collection, id string) error {
	if id == "" {
		return fmt.Errorf("delete from %s: %w", collection, ErrMissingID)
	}
	err := s.remote.Delete(ctx, collection, id)
	return s.logWrite("delete", collection, id, err)
}

func (s *Store) logWrite(op, collection, id string, err error) error {
	if err == nil {
		return nil
	}
	s.log.Error("content write failed",
		zap.String("op", op),
		zap.String("collection", collection),
		zap.String("id", id),
		zap.Error(err))
	return fmt.Errorf("%s %s/%s: %w", op, collection, id, err)
}

// ReorderProjects writes the new order of each listed project.
func (s *Store) ReorderProjects(ctx context.Context, entries []OrderEntry) error {
	return s.reorder(ctx, models.CollectionProjects, entries)
}

// ReorderCertificates writes the new order of each listed certificate.
func (s *Store) ReorderCertificates(ctx context.Context, entries []OrderEntry) error {
	return s.reorder(ctx, models.CollectionCertificates, entries)
}

// reorder sends one merge write of {order: N} per entry, as a single batch.
func (s *Store) reorder(ctx context.Context, collection string, entries []OrderEntry) error {
	if len(entries) == 0 {
		return nil
	}
	writes := make([]docstore.Write, 0, len(entries))
	for _, e := range entries {
		if e.ID == "" {
			return fmt.Errorf("reorder %s: %w", collection, ErrMissingID)
		}
		if e.Order <= 0 {
			return fmt.Errorf("reorder %s/%s: %w", collection, e.ID, ErrInvalidOrder)
		}
		writes = append(writes, docstore.MergeWrite(collection, e.ID, docstore.Fields{"order": e.Order}))
	}
	if err := s.remote.Batch(ctx, writes); err != nil {
		s.log.Error("reorder failed",
			zap.String("collection", collection), zap.Int("entries", len(entries)), zap.Error(err))
		return fmt.Errorf("reorder %s: %w", collection, err)
	}
	return nil
}

// LoginAdmin signs the admin in. It reports false on any failure and
// leaves IsAdminLoggedIn to the auth-state subscription.
func (s *Store) LoginAdmin(ctx context.Context, email, password string) bool {
	if _, err := s.idp.SignIn(ctx, email, password); err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) || errors.Is(err, identity.ErrLockedOut) {
			s.log.Info("admin login rejected", zap.Error(err))
		} else {
			s.log.Error("admin login failed", zap.Error(err))
		}
		return false
	}
	return true
}

// LogoutAdmin signs the admin out and clears IsAdminLoggedIn without
// waiting for the auth-state callback.
func (s *Store) LogoutAdmin(ctx context.Context) error {
	if err := s.idp.SignOut(ctx); err != nil {
		s.log.Error("admin logout failed", zap.Error(err))
		return fmt.Errorf("sign out: %w", err)
	}
	s.mu.Lock()
	s.state.IsAdminLoggedIn = false
	s.mu.Unlock()
	s.notify()
	return nil
}

// ResetToDefaults replaces the local content with the defaults right away,
// then writes the defaults to the document store in one batch. Documents
// that are not part of the defaults are left in place.
func (s *Store) ResetToDefaults(ctx context.Context) error {
	d := s.defaults.Clone()

	s.mu.Lock()
	s.state.SiteConfig = d.SiteConfig
	s.state.Projects = d.Projects
	s.state.Skills = d.Skills
	s.state.Experiences = d.Experiences
	s.state.Certificates = d.Certificates
	s.mu.Unlock()
	s.notify()

	writes := DefaultWrites(s.defaults)
	if err := s.remote.Batch(ctx, writes); err != nil {
		s.log.Error("reset to defaults failed", zap.Int("writes", len(writes)), zap.Error(err))
		return fmt.Errorf("reset to defaults: %w", err)
	}
	s.log.Info("content reset to defaults", zap.Int("writes", len(writes)))
	return nil
}

// DefaultWrites returns full-document writes for the site config and every
// default entity, config first.
func DefaultWrites(c seeding.Content) []docstore.Write {
	c = c.Clone()
	writes := []docstore.Write{
		docstore.SetWrite(models.CollectionConfig, models.SiteConfigDocID, c.SiteConfig),
	}
	for _, p := range c.Projects {
		writes = append(writes, docstore.SetWrite(models.CollectionProjects, p.ID, p))
	}
	for _, sk := range c.Skills {
		writes = append(writes, docstore.SetWrite(models.CollectionSkills, sk.ID, sk))
	}
	for _, e := range c.Experiences {
		writes = append(writes, docstore.SetWrite(models.CollectionExperiences, e.ID, e))
	}
	for _, cert := range c.Certificates {
		writes = append(writes, docstore.SetWrite(models.CollectionCertificates, cert.ID, cert))
	}
	return writes
}
