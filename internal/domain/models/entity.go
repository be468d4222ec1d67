// internal/domain/models/entity.go
package models

// Entity is a collection member keyed by a stable string identifier.
type Entity interface {
	EntityID() string
}

// Ordered is an Entity with a relative sort position.
type Ordered interface {
	Entity
	SortOrder() int
}

// Collection and document names in the document store.
const (
	CollectionConfig       = "config"
	CollectionProjects     = "projects"
	CollectionSkills       = "skills"
	CollectionExperiences  = "experiences"
	CollectionCertificates = "certificates"

	// SiteConfigDocID is the key of the singleton document in CollectionConfig.
	SiteConfigDocID = "siteConfig"
)
